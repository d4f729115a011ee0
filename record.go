package crate

import (
	"fmt"
	"net/url"
	"sort"
	"time"
)

// DefaultOwner is the owner name used for zones created with NewZoneID.
const DefaultOwner = "__defaultOwner__"

// ZoneID designates the partition a record lives in.
type ZoneID struct {
	Name  string
	Owner string
}

// DefaultZone is the zone every record type uses unless it says otherwise.
var DefaultZone = ZoneID{Name: "_defaultZone", Owner: DefaultOwner}

// NewZoneID returns a zone owned by DefaultOwner.
func NewZoneID(name string) ZoneID {
	return ZoneID{Name: name, Owner: DefaultOwner}
}

func (z ZoneID) String() string {
	return z.Owner + "/" + z.Name
}

// RecordID is the unique address of a record: its name within a zone.
type RecordID struct {
	Name string
	Zone ZoneID
}

func (id RecordID) String() string {
	return id.Zone.String() + "/" + id.Name
}

// Asset references a local file stored alongside a record.
type Asset struct {
	Path string
}

// NewAsset returns an asset for the file at path.
func NewAsset(path string) Asset {
	return Asset{Path: path}
}

// FileURL resolves the asset to a file URL. It returns nil when the
// asset has no path.
func (a Asset) FileURL() *url.URL {
	if a.Path == "" {
		return nil
	}
	return &url.URL{Scheme: "file", Path: a.Path}
}

// ReferenceAction controls what happens to a record when its referenced
// record is deleted.
type ReferenceAction uint8

const (
	// ReferenceNone leaves the referencing record in place.
	ReferenceNone ReferenceAction = iota
	// ReferenceDeleteSelf deletes the referencing record as well.
	ReferenceDeleteSelf
)

// Reference points at another record.
type Reference struct {
	ID     RecordID
	Action ReferenceAction
}

// Kind names a record value kind.
type Kind string

// Record value kinds.
const (
	KindInvalid   Kind = ""
	KindString    Kind = "string"
	KindInt64     Kind = "int64"
	KindDouble    Kind = "double"
	KindTime      Kind = "time"
	KindBytes     Kind = "bytes"
	KindAsset     Kind = "asset"
	KindReference Kind = "reference"
)

// KindOf reports the record value kind of v, or KindInvalid if v cannot
// be stored in a record.
func KindOf(v any) Kind {
	switch v.(type) {
	case string:
		return KindString
	case int64:
		return KindInt64
	case float64:
		return KindDouble
	case time.Time:
		return KindTime
	case []byte:
		return KindBytes
	case Asset:
		return KindAsset
	case Reference:
		return KindReference
	default:
		return KindInvalid
	}
}

// IsValue reports whether v is one of the record value kinds.
func IsValue(v any) bool {
	return KindOf(v) != KindInvalid
}

// Record is a named, flat key-value store with a fixed type and identity.
//
// Type and ID never change after creation. ChangeTag, CreatedAt and
// ModifiedAt are bookkeeping owned by whatever store persists the record.
// Records are not safe for concurrent mutation.
type Record struct {
	recordType string
	id         RecordID
	changeTag  string
	createdAt  time.Time
	modifiedAt time.Time
	fields     map[string]any
}

// NewRecord creates an empty record.
func NewRecord(recordType string, id RecordID) *Record {
	return &Record{
		recordType: recordType,
		id:         id,
		fields:     make(map[string]any),
	}
}

// Type returns the record type name.
func (r *Record) Type() string { return r.recordType }

// ID returns the record identity.
func (r *Record) ID() RecordID { return r.id }

// ChangeTag returns the store-assigned change tag.
func (r *Record) ChangeTag() string { return r.changeTag }

// CreatedAt returns the store-assigned creation time.
func (r *Record) CreatedAt() time.Time { return r.createdAt }

// ModifiedAt returns the store-assigned modification time.
func (r *Record) ModifiedAt() time.Time { return r.modifiedAt }

// SetChangeTag records the tag a store assigned on save.
func (r *Record) SetChangeTag(tag string) { r.changeTag = tag }

// Touch stamps the record as modified at t, setting the creation time on
// first call.
func (r *Record) Touch(t time.Time) {
	if r.createdAt.IsZero() {
		r.createdAt = t
	}
	r.modifiedAt = t
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.fields[key]
	return v, ok
}

// Value returns the value stored under key, or nil.
func (r *Record) Value(key string) any {
	return r.fields[key]
}

// Set stores v under key. A nil v deletes the key.
func (r *Record) Set(key string, v any) error {
	if v == nil {
		delete(r.fields, key)
		return nil
	}
	if !IsValue(v) {
		return fmt.Errorf("%w: %T for key %q", ErrInvalidValue, v, key)
	}
	r.fields[key] = v
	return nil
}

// Delete removes key.
func (r *Record) Delete(key string) {
	delete(r.fields, key)
}

// Keys returns the field names in sorted order.
func (r *Record) Keys() []string {
	keys := make([]string, 0, len(r.fields))
	for k := range r.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of fields.
func (r *Record) Len() int { return len(r.fields) }

// Clone returns a copy with its own field map. Byte values are copied.
func (r *Record) Clone() *Record {
	c := *r
	c.fields = make(map[string]any, len(r.fields))
	for k, v := range r.fields {
		if b, ok := v.([]byte); ok {
			v = append([]byte(nil), b...)
		}
		c.fields[k] = v
	}
	return &c
}
