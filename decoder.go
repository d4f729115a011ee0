package crate

import (
	"context"
	"fmt"
	"reflect"
	"time"
)

// RecordDecoder decodes records into values.
//
// A RecordDecoder holds only configuration and is safe for concurrent use
// on independent records. Callers must not mutate a record while it is
// being decoded.
type RecordDecoder struct {
	cfg config
}

// NewDecoder creates a RecordDecoder.
func NewDecoder(opts ...Option) *RecordDecoder {
	d := &RecordDecoder{cfg: newConfig(opts)}
	emitDecoderCreated(context.Background(), d.cfg.archiver.ContentType())
	return d
}

// Unmarshal decodes rec into a new T with a RecordDecoder configured by opts.
func Unmarshal[T any](ctx context.Context, rec *Record, opts ...Option) (T, error) {
	primePlan[T]()

	var v T
	d := &RecordDecoder{cfg: newConfig(opts)}
	err := d.Decode(ctx, rec, &v)
	return v, err
}

// Decode fills the value out points to from rec.
//
// out must be a non-nil pointer to a struct, or implement RecordUnmarshaler.
func (d *RecordDecoder) Decode(ctx context.Context, rec *Record, out any) (err error) {
	rv := reflect.ValueOf(out)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &DecodingError{Err: ErrInvalidTarget, Detail: fmt.Sprintf("%T is not a non-nil pointer", out)}
	}
	if rec == nil {
		return &DecodingError{Err: ErrInvalidTarget, Type: rv.Type().Elem(), Detail: "nil record"}
	}

	typeName := typeNameOf(out)

	start := clock()
	emitDecodeStart(ctx, typeName, rec)
	defer func() {
		emitDecodeComplete(ctx, typeName, rec, time.Since(start), err)
	}()

	dec := &Decoder{
		ctx:      ctx,
		record:   rec,
		archiver: d.cfg.archiver,
		userInfo: d.cfg.userInfo,
	}

	return decodeValue(dec, rv)
}

// decodeValue runs the decode procedure of the value ptr points to.
func decodeValue(dec *Decoder, ptr reflect.Value) error {
	for {
		if u, ok := ptr.Interface().(RecordUnmarshaler); ok {
			return u.UnmarshalRecord(dec)
		}
		elem := ptr.Elem()
		if elem.Kind() != reflect.Pointer {
			break
		}
		if elem.IsNil() {
			elem.Set(reflect.New(elem.Type().Elem()))
		}
		ptr = elem
	}

	rv := ptr.Elem()
	if rv.Kind() != reflect.Struct {
		dec.SingleValueContainer()
	}

	plan, err := planFor(rv.Type())
	if err != nil {
		return err
	}
	if len(plan.fields) == 0 {
		return nil
	}

	c := DecodeContainer[string](dec)
	for _, f := range plan.fields {
		fv, err := rv.FieldByIndexErr(f.index)
		if err != nil {
			continue
		}

		target := fv.Addr().Interface()
		if f.optional || f.system {
			c.DecodeIfPresent(f.key, target)
			continue
		}
		if err := c.Decode(f.key, target); err != nil {
			return err
		}
	}

	return nil
}

// Decoder coordinates a single decode. It hands out exactly one keyed
// container reading from the source record.
type Decoder struct {
	ctx        context.Context
	record     *Record
	archiver   *Archiver
	codingPath []string
	userInfo   map[UserInfoKey]any

	state coordinatorState
}

// Context returns the context of the Decode call.
func (d *Decoder) Context() context.Context { return d.ctx }

// CodingPath returns the keys leading to the current position.
func (d *Decoder) CodingPath() []string { return copyPath(d.codingPath) }

// UserInfo returns a value registered with WithUserInfo.
func (d *Decoder) UserInfo(key UserInfoKey) (any, bool) {
	v, ok := d.userInfo[key]
	return v, ok
}

// UnkeyedContainer always panics: records have no ordered containers.
func (d *Decoder) UnkeyedContainer() {
	unsupportedDecode("unkeyed container", d.codingPath)
}

// SingleValueContainer always panics: a record cannot be a single value.
func (d *Decoder) SingleValueContainer() {
	unsupportedDecode("single value container", d.codingPath)
}

// DecodingContainer reads fields keyed by K from the source record.
type DecodingContainer[K Key] struct {
	dec        *Decoder
	record     *Record
	codingPath []string

	// system-fields blob, archived on first use
	systemFields     []byte
	systemFieldsErr  error
	systemFieldsDone bool
}

// DecodeContainer requests dec's keyed container. It panics if dec has
// already handed one out.
func DecodeContainer[K Key](dec *Decoder) *DecodingContainer[K] {
	if dec.state != stateUninitialized {
		unsupportedDecode("a second container from one decoder", dec.codingPath)
	}
	dec.state = stateContainerRequested

	return &DecodingContainer[K]{
		dec:        dec,
		record:     dec.record,
		codingPath: copyPath(dec.codingPath),
	}
}

// CodingPath returns the keys leading to this container.
func (c *DecodingContainer[K]) CodingPath() []string { return copyPath(c.codingPath) }

// AllKeys returns the record's keys plus the always-present systemFields key.
func (c *DecodingContainer[K]) AllKeys() []K {
	keys := c.record.Keys()
	out := make([]K, 0, len(keys)+1)
	out = append(out, K(SystemFieldsKey))
	for _, k := range keys {
		if k == SystemFieldsKey {
			continue
		}
		out = append(out, K(k))
	}
	return out
}

// Contains reports whether key can be decoded.
func (c *DecodingContainer[K]) Contains(key K) bool {
	if string(key) == SystemFieldsKey {
		return true
	}
	_, ok := c.record.Get(string(key))
	return ok
}

// DecodeNil reports whether key holds no value.
func (c *DecodingContainer[K]) DecodeNil(key K) (bool, error) {
	if err := c.checkCanDecode(key); err != nil {
		return false, err
	}

	if string(key) == SystemFieldsKey {
		blob, err := c.systemFieldsBlob()
		if err != nil {
			return false, err
		}
		return len(blob) == 0, nil
	}

	v, ok := c.record.Get(string(key))
	return !ok || v == nil, nil
}

// Decode stores the value under key into out, which must be a non-nil
// pointer. Decoding systemFields yields the record's archived identity.
func (c *DecodingContainer[K]) Decode(key K, out any) error {
	k := string(key)

	rv := reflect.ValueOf(out)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &DecodingError{
			Err:    ErrInvalidTarget,
			Key:    k,
			Path:   copyPath(c.codingPath, k),
			Detail: fmt.Sprintf("%T is not a non-nil pointer", out),
		}
	}
	if err := c.checkCanDecode(key); err != nil {
		return err
	}

	dst := rv.Elem()

	var raw any
	if k == SystemFieldsKey {
		blob, err := c.systemFieldsBlob()
		if err != nil {
			return err
		}
		raw = blob
	} else {
		raw = c.record.Value(k)
	}

	if m := assign(dst, raw); m != nil {
		return &DecodingError{
			Err:    m.err,
			Key:    k,
			Type:   dst.Type(),
			Path:   copyPath(c.codingPath, k),
			Detail: m.detail,
		}
	}

	return nil
}

// DecodeIfPresent is Decode with every failure reported as absence.
func (c *DecodingContainer[K]) DecodeIfPresent(key K, out any) bool {
	return c.Decode(key, out) == nil
}

// Nested always panics: records are flat.
func (c *DecodingContainer[K]) Nested(key K) {
	unsupportedDecode("nested keyed container", copyPath(c.codingPath, string(key)))
}

// NestedUnkeyed always panics: records are flat.
func (c *DecodingContainer[K]) NestedUnkeyed(key K) {
	unsupportedDecode("nested unkeyed container", copyPath(c.codingPath, string(key)))
}

// SuperDecoder returns a fresh Decoder over the same record.
func (c *DecodingContainer[K]) SuperDecoder() *Decoder {
	return &Decoder{
		ctx:      c.dec.ctx,
		record:   c.record,
		archiver: c.dec.archiver,
		userInfo: c.dec.userInfo,
	}
}

// SuperDecoderForKey returns a fresh Decoder over the same record whose
// coding path is key.
func (c *DecodingContainer[K]) SuperDecoderForKey(key K) *Decoder {
	d := c.SuperDecoder()
	d.codingPath = []string{string(key)}
	return d
}

func (c *DecodingContainer[K]) checkCanDecode(key K) error {
	if c.Contains(key) {
		return nil
	}
	return &DecodingError{
		Err:    ErrKeyNotFound,
		Key:    string(key),
		Path:   copyPath(c.codingPath),
		Detail: fmt.Sprintf("key not found: %s", string(key)),
	}
}

// systemFieldsBlob archives the record's system fields once per container.
func (c *DecodingContainer[K]) systemFieldsBlob() ([]byte, error) {
	if !c.systemFieldsDone {
		c.systemFieldsDone = true
		blob, err := c.dec.archiver.Archive(c.dec.ctx, c.record)
		if err != nil {
			c.systemFieldsErr = &DecodingError{
				Err:   ErrValueNotFound,
				Key:   SystemFieldsKey,
				Path:  copyPath(c.codingPath, SystemFieldsKey),
				Cause: err,
			}
		}
		c.systemFields = blob
	}
	return c.systemFields, c.systemFieldsErr
}

// Decode is the generic form of DecodingContainer.Decode.
func Decode[T any, K Key](c *DecodingContainer[K], key K) (T, error) {
	var v T
	err := c.Decode(key, &v)
	return v, err
}

// DecodeIfPresent is the generic form of DecodingContainer.DecodeIfPresent.
func DecodeIfPresent[T any, K Key](c *DecodingContainer[K], key K) (T, bool) {
	var v T
	if !c.DecodeIfPresent(key, &v) {
		var zero T
		return zero, false
	}
	return v, true
}
