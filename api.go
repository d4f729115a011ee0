// Package crate maps Go structs to and from flat key-value records.
//
// A Record has a type name, an identity (record name plus zone) and a single
// level of fields holding primitive values. crate encodes a struct into such
// a record field by field, and decodes a record back into a struct, applying
// a fixed table of type coercions for the values a record cannot hold natively.
//
// # Record Values
//
// A record field holds exactly one of:
//
//	string, int64, float64, time.Time, []byte, Asset, Reference
//
// Go integers and floats of other widths are widened on encode and range
// checked on decode. Booleans are stored as int64 1 or 0. URLs are stored as
// strings, except file URLs which become an Asset.
//
// # Declaring a Type
//
//	type Note struct {
//	    SystemFields []byte
//	    Title        string
//	    CreatedAt    time.Time `record:"created"`
//	    Source       *url.URL
//	}
//
// Exported fields are mapped by key. The key is the `record` tag if present,
// otherwise the field name with its leading initialism lower-cased
// (CreatedAt becomes createdAt, ID becomes id). A `record:"-"` tag skips the
// field. Pointer and interface fields are optional: nil is omitted on encode
// and a missing key leaves the field nil on decode.
//
// # System Fields
//
// The reserved systemFields key carries an opaque blob capturing a record's
// identity and store bookkeeping. Decoding fills it from the source record;
// encoding a value that carries one restores that exact identity instead of
// minting a new record. The blob is produced by an Archiver, which pairs a
// Codec with an optional Sealer.
//
// # Basic Usage
//
//	rec, err := crate.Marshal(ctx, note)
//	// ... save rec, fetch it back ...
//	note, err = crate.Unmarshal[Note](ctx, rec)
//
// # Identity
//
// New records are minted by the type's RecordProvider if it has one, else by
// DefaultFactory using RecordTyper, RecordZoner and the configured Namer.
//
// # Explicit Procedures
//
// Types can skip reflection by implementing RecordMarshaler and
// RecordUnmarshaler and driving a keyed container directly:
//
//	type noteKey string
//
//	func (n Note) MarshalRecord(enc *crate.Encoder) error {
//	    c := crate.EncodeContainer[noteKey](enc)
//	    return c.Encode(n.Title, "title")
//	}
//
// A coordinator hands out exactly one container. Asking for a second one, or
// for any nested, unkeyed or single-value container, panics: a record is flat.
package crate

import "time"

// SystemFieldsKey is the reserved key for the system-fields blob.
const SystemFieldsKey = "systemFields"

// RecordFactory mints a fresh record for a value that has no system fields.
type RecordFactory func() *Record

// RecordProvider overrides the default factory for a type.
type RecordProvider interface {
	NewRecord() *Record
}

// RecordZoner designates the zone new records of a type are created in.
type RecordZoner interface {
	RecordZone() ZoneID
}

// RecordTyper overrides the record type name, which defaults to the Go type name.
type RecordTyper interface {
	RecordType() string
}

// RecordMarshaler bypasses reflection on encode.
// Implementations request one container from enc and encode every field.
type RecordMarshaler interface {
	MarshalRecord(enc *Encoder) error
}

// RecordUnmarshaler bypasses reflection on decode.
// Implementations request one container from dec and decode every field.
type RecordUnmarshaler interface {
	UnmarshalRecord(dec *Decoder) error
}

// Key constrains the key type of a keyed container. Types usually declare
// their keys as constants of a named string type.
type Key interface {
	~string
}

// UserInfoKey identifies a value in a coordinator's user info.
type UserInfoKey string

// clock stamps the start of timed operations.
var clock = time.Now
