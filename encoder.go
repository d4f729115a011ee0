package crate

import (
	"context"
	"fmt"
	"reflect"
	"time"
)

// RecordEncoder encodes values into records.
//
// A RecordEncoder holds only configuration and is safe for concurrent use.
// Each call to Encode gets its own Encoder and container.
type RecordEncoder struct {
	cfg config
}

// NewEncoder creates a RecordEncoder.
func NewEncoder(opts ...Option) *RecordEncoder {
	e := &RecordEncoder{cfg: newConfig(opts)}
	emitEncoderCreated(context.Background(), e.cfg.archiver.ContentType())
	return e
}

// Marshal encodes v with a RecordEncoder configured by opts.
func Marshal[T any](ctx context.Context, v T, opts ...Option) (*Record, error) {
	primePlan[T]()

	e := &RecordEncoder{cfg: newConfig(opts)}
	return e.Encode(ctx, v)
}

// Encode converts v into a record.
//
// v must be a struct, a pointer to one, or a RecordMarshaler. If v carries
// a system-fields blob the record keeps the identity captured in it;
// otherwise it is minted by the type's factory.
func (e *RecordEncoder) Encode(ctx context.Context, v any) (rec *Record, err error) {
	typeName := typeNameOf(v)

	start := clock()
	emitEncodeStart(ctx, typeName)
	defer func() {
		emitEncodeComplete(ctx, typeName, rec, time.Since(start), err)
	}()

	if v == nil {
		return nil, &EncodingError{Err: ErrUnsupportedValue, Detail: "cannot encode nil"}
	}

	enc := &Encoder{
		ctx:      ctx,
		factory:  factoryFor(v, typeName, e.cfg.namer),
		archiver: e.cfg.archiver,
		userInfo: e.cfg.userInfo,
	}

	if err := encodeValue(enc, v); err != nil {
		return nil, err
	}

	return enc.record()
}

// encodeValue runs v's encode procedure against enc.
func encodeValue(enc *Encoder, v any) error {
	if m, ok := v.(RecordMarshaler); ok {
		return m.MarshalRecord(enc)
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return &EncodingError{Err: ErrUnsupportedValue, Detail: "cannot encode nil"}
		}
		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Struct {
		enc.SingleValueContainer()
	}

	plan, err := planFor(rv.Type())
	if err != nil {
		return err
	}
	if len(plan.fields) == 0 {
		return nil
	}

	c := EncodeContainer[string](enc)
	for _, f := range plan.fields {
		fv, err := rv.FieldByIndexErr(f.index)
		if err != nil {
			continue
		}

		if f.optional || f.system {
			err = c.EncodeIfPresent(fv.Interface(), f.key)
		} else {
			err = c.Encode(fv.Interface(), f.key)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// typeNameOf returns the name of v's type with pointers stripped.
func typeNameOf(v any) string {
	rt := reflect.TypeOf(v)
	if rt == nil {
		return ""
	}
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return rt.Name()
}

// Encoder coordinates a single encode. It hands out exactly one keyed
// container and owns the record that container fills.
type Encoder struct {
	ctx        context.Context
	factory    RecordFactory
	archiver   *Archiver
	codingPath []string
	userInfo   map[UserInfoKey]any

	state   coordinatorState
	storage *encodeStorage
}

// Context returns the context of the Encode call.
func (e *Encoder) Context() context.Context { return e.ctx }

// CodingPath returns the keys leading to the current position.
func (e *Encoder) CodingPath() []string { return copyPath(e.codingPath) }

// UserInfo returns a value registered with WithUserInfo.
func (e *Encoder) UserInfo(key UserInfoKey) (any, bool) {
	v, ok := e.userInfo[key]
	return v, ok
}

// UnkeyedContainer always panics: records have no ordered containers.
func (e *Encoder) UnkeyedContainer() {
	unsupported("unkeyed container", e.codingPath)
}

// SingleValueContainer always panics: a record cannot be a single value.
func (e *Encoder) SingleValueContainer() {
	unsupported("single value container", e.codingPath)
}

// record materializes the output: the record restored from system fields
// if there was one, else a fresh one, with every staged field applied.
func (e *Encoder) record() (*Record, error) {
	if e.storage == nil {
		return e.newRecord()
	}

	out := e.storage.internal
	if out == nil {
		var err error
		if out, err = e.newRecord(); err != nil {
			return nil, err
		}
	}

	for k, v := range e.storage.staged {
		out.fields[k] = v
	}

	return out, nil
}

func (e *Encoder) newRecord() (*Record, error) {
	r := e.factory()
	if r == nil {
		return nil, &EncodingError{Err: ErrNilRecord}
	}
	if r.fields == nil {
		r.fields = make(map[string]any)
	}
	return r, nil
}

// encodeStorage is the untyped state behind an EncodingContainer.
type encodeStorage struct {
	enc        *Encoder
	codingPath []string
	internal   *Record
	staged     map[string]any
}

// EncodingContainer writes fields keyed by K into the record being encoded.
type EncodingContainer[K Key] struct {
	s *encodeStorage
}

// EncodeContainer requests enc's keyed container. It panics if enc has
// already handed one out.
func EncodeContainer[K Key](enc *Encoder) *EncodingContainer[K] {
	if enc.state != stateUninitialized {
		unsupported("a second container from one encoder", enc.codingPath)
	}
	enc.state = stateContainerRequested

	enc.storage = &encodeStorage{
		enc:        enc,
		codingPath: copyPath(enc.codingPath),
		staged:     make(map[string]any),
	}
	return &EncodingContainer[K]{s: enc.storage}
}

// CodingPath returns the keys leading to this container.
func (c *EncodingContainer[K]) CodingPath() []string { return copyPath(c.s.codingPath) }

// Encode stores v under key after applying the record value coercions.
// The systemFields key takes the system-fields blob instead, which then
// supplies the record's identity.
func (c *EncodingContainer[K]) Encode(v any, key K) error {
	k := string(key)
	if k == SystemFieldsKey {
		return c.encodeSystemFields(v)
	}

	value, ok := recordValue(v)
	if !ok {
		return &EncodingError{
			Err:    ErrUnsupportedValue,
			Key:    k,
			Path:   copyPath(c.s.codingPath, k),
			Detail: fmt.Sprintf("%T cannot be converted to a record value", v),
		}
	}

	c.s.staged[k] = value
	return nil
}

// EncodeIfPresent encodes v unless it is nil.
func (c *EncodingContainer[K]) EncodeIfPresent(v any, key K) error {
	if isNil(v) {
		return nil
	}
	return c.Encode(v, key)
}

// EncodeNil leaves key out of the record, dropping anything staged for it.
func (c *EncodingContainer[K]) EncodeNil(key K) error {
	delete(c.s.staged, string(key))
	return nil
}

// Nested always panics: records are flat.
func (c *EncodingContainer[K]) Nested(key K) {
	unsupported("nested keyed container", copyPath(c.s.codingPath, string(key)))
}

// NestedUnkeyed always panics: records are flat.
func (c *EncodingContainer[K]) NestedUnkeyed(key K) {
	unsupported("nested unkeyed container", copyPath(c.s.codingPath, string(key)))
}

// SuperEncoder always panics: records are flat.
func (c *EncodingContainer[K]) SuperEncoder() {
	unsupported("super encoder", c.s.codingPath)
}

// SuperEncoderForKey always panics: records are flat.
func (c *EncodingContainer[K]) SuperEncoderForKey(key K) {
	unsupported("super encoder", copyPath(c.s.codingPath, string(key)))
}

func (c *EncodingContainer[K]) encodeSystemFields(v any) error {
	blob, ok := asBytes(v)
	if !ok {
		return &EncodingError{
			Err:    ErrSystemFieldsDecode,
			Key:    SystemFieldsKey,
			Path:   copyPath(c.s.codingPath, SystemFieldsKey),
			Detail: fmt.Sprintf("%s property must be of type []byte, got %T", SystemFieldsKey, v),
		}
	}
	if len(blob) == 0 {
		return nil
	}

	rec, err := c.s.enc.archiver.Unarchive(c.s.enc.ctx, blob)
	if err != nil {
		return &EncodingError{
			Err:   ErrSystemFieldsDecode,
			Key:   SystemFieldsKey,
			Path:  copyPath(c.s.codingPath, SystemFieldsKey),
			Cause: err,
		}
	}

	c.s.internal = rec
	return nil
}

// asBytes accepts []byte and named byte slice types.
func asBytes(v any) ([]byte, bool) {
	if b, ok := v.([]byte); ok {
		return b, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		return rv.Bytes(), true
	}
	return nil, false
}

// isNil reports whether v is nil or a nil pointer, slice, map or interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
