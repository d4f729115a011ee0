package crate

import (
	"fmt"
	"math"
	"net/url"
	"reflect"
	"strings"
	"time"
)

var (
	urlType       = reflect.TypeFor[url.URL]()
	timeType      = reflect.TypeFor[time.Time]()
	assetType     = reflect.TypeFor[Asset]()
	referenceType = reflect.TypeFor[Reference]()
)

// recordValue converts a field value into a record value.
//
// Rules, first match wins:
//   - URLs: file scheme becomes an Asset, anything else its string form;
//     file URLs naming a remote host are rejected
//   - booleans become int64 1 or 0
//   - record values pass through ([]byte is copied)
//   - other Go scalars widen to string, int64 or float64
//   - non-nil pointers are dereferenced
//
// It reports false for anything else.
func recordValue(v any) (any, bool) {
	switch x := v.(type) {
	case nil:
		return nil, false
	case *url.URL:
		if x == nil {
			return nil, false
		}
		return urlValue(x)
	case url.URL:
		return urlValue(&x)
	case bool:
		return boolValue(x), true
	case []byte:
		if x == nil {
			return x, true
		}
		return append([]byte{}, x...), true
	case string, int64, float64, time.Time, Asset, Reference:
		return x, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, false
		}
		return recordValue(rv.Elem().Interface())
	case reflect.Bool:
		return boolValue(rv.Bool()), true
	case reflect.String:
		return rv.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			if rv.IsNil() {
				return []byte(nil), true
			}
			return append([]byte{}, rv.Bytes()...), true
		}
	case reflect.Struct:
		if rv.Type().ConvertibleTo(timeType) {
			return rv.Convert(timeType).Interface(), true
		}
	}

	return nil, false
}

func urlValue(u *url.URL) (any, bool) {
	if u.Scheme != "file" {
		return u.String(), true
	}
	if u.Host != "" && u.Host != "localhost" {
		return nil, false
	}
	return NewAsset(u.Path), true
}

func boolValue(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// mismatch describes why a stored value could not be assigned.
type mismatch struct {
	err    error // ErrTypeMismatch or ErrValueNotFound
	detail string
}

func typeMismatch(format string, args ...any) *mismatch {
	return &mismatch{err: ErrTypeMismatch, detail: fmt.Sprintf(format, args...)}
}

// assign stores raw into dst, converting it to dst's type.
// Stored values must already be of the matching kind; the only conversions
// are int64 to bool, Asset or string to URL, and width changes between Go
// numeric types that fit.
func assign(dst reflect.Value, raw any) *mismatch {
	t := dst.Type()

	switch {
	case t == urlType:
		u, m := urlFromValue(raw)
		if m != nil {
			return m
		}
		dst.Set(reflect.ValueOf(*u))
		return nil

	case t.Kind() == reflect.Pointer:
		elem := reflect.New(t.Elem())
		if m := assign(elem.Elem(), raw); m != nil {
			return m
		}
		dst.Set(elem)
		return nil

	case t.Kind() == reflect.Bool:
		i, ok := raw.(int64)
		if !ok {
			return typeMismatch("bool should have been encoded as int64, found %s", describe(raw))
		}
		dst.SetBool(i == 1)
		return nil

	case t == timeType, t == assetType, t == referenceType:
		rv := reflect.ValueOf(raw)
		if !rv.IsValid() || rv.Type() != t {
			return typeMismatch("record value %s couldn't be converted to %s", describe(raw), t)
		}
		dst.Set(rv)
		return nil

	case t.Kind() == reflect.Interface:
		rv := reflect.ValueOf(raw)
		if !rv.IsValid() || !rv.Type().AssignableTo(t) {
			return typeMismatch("record value %s couldn't be converted to %s", describe(raw), t)
		}
		dst.Set(rv)
		return nil
	}

	switch t.Kind() {
	case reflect.String:
		s, ok := raw.(string)
		if !ok {
			break
		}
		dst.SetString(s)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, ok := raw.(int64)
		if !ok {
			break
		}
		if dst.OverflowInt(i) {
			return typeMismatch("%d overflows %s", i, t)
		}
		dst.SetInt(i)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i, ok := raw.(int64)
		if !ok {
			break
		}
		if i < 0 || dst.OverflowUint(uint64(i)) {
			return typeMismatch("%d overflows %s", i, t)
		}
		dst.SetUint(uint64(i))
		return nil

	case reflect.Float32, reflect.Float64:
		f, ok := raw.(float64)
		if !ok {
			break
		}
		if dst.OverflowFloat(f) {
			return typeMismatch("%g overflows %s", f, t)
		}
		dst.SetFloat(f)
		return nil

	case reflect.Slice:
		b, ok := raw.([]byte)
		if !ok || t.Elem().Kind() != reflect.Uint8 {
			break
		}
		if b == nil {
			dst.Set(reflect.Zero(t))
			return nil
		}
		dst.SetBytes(append([]byte{}, b...))
		return nil

	case reflect.Struct:
		tm, ok := raw.(time.Time)
		if !ok || !timeType.ConvertibleTo(t) {
			break
		}
		dst.Set(reflect.ValueOf(tm).Convert(t))
		return nil
	}

	return typeMismatch("record value %s couldn't be converted to %s", describe(raw), t)
}

// urlFromValue resolves an Asset to its file URL or parses a string.
func urlFromValue(raw any) (*url.URL, *mismatch) {
	switch v := raw.(type) {
	case Asset:
		u := v.FileURL()
		if u == nil {
			return nil, &mismatch{err: ErrValueNotFound, detail: "URL value not found"}
		}
		return u, nil
	case string:
		if v == "" || strings.IndexFunc(v, isNotURIChar) >= 0 {
			return nil, typeMismatch("the string %q is not a valid URL", v)
		}
		u, err := url.Parse(v)
		if err != nil {
			return nil, typeMismatch("the string %q is not a valid URL", v)
		}
		return u, nil
	default:
		return nil, typeMismatch("URL should have been encoded as string, found %s", describe(raw))
	}
}

// isNotURIChar reports whether r may not appear in an RFC 3986 URI:
// anything but unreserved, reserved, and percent.
func isNotURIChar(r rune) bool {
	switch {
	case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9':
		return false
	}
	return !strings.ContainsRune("-._~:/?#[]@!$&'()*+,;=%", r)
}

// describe names a record value's kind for diagnostics.
func describe(raw any) string {
	if k := KindOf(raw); k != KindInvalid {
		return string(k)
	}
	return fmt.Sprintf("%T", raw)
}
