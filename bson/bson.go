// Package bson archives record system fields as BSON.
package bson

import (
	"github.com/zoobzio/crate"
	"go.mongodb.org/mongo-driver/bson"
)

// bsonCodec implements crate.Codec for BSON.
type bsonCodec struct{}

// New returns a BSON codec.
func New() crate.Codec {
	return &bsonCodec{}
}

// Archiver returns a crate.Archiver that writes system fields as BSON.
func Archiver(opts ...crate.ArchiverOption) *crate.Archiver {
	return crate.NewArchiver(New(), opts...)
}

// ContentType returns the MIME type for BSON.
func (c *bsonCodec) ContentType() string {
	return "application/bson"
}

// Marshal encodes v as BSON.
func (c *bsonCodec) Marshal(v any) ([]byte, error) {
	return bson.Marshal(v)
}

// Unmarshal decodes BSON data into v.
func (c *bsonCodec) Unmarshal(data []byte, v any) error {
	return bson.Unmarshal(data, v)
}
