// Package json archives record system fields as JSON.
package json

import (
	"encoding/json"

	"github.com/zoobzio/crate"
)

// jsonCodec implements crate.Codec for JSON.
type jsonCodec struct{}

// New returns a JSON codec.
func New() crate.Codec {
	return &jsonCodec{}
}

// Archiver returns a crate.Archiver that writes system fields as JSON.
func Archiver(opts ...crate.ArchiverOption) *crate.Archiver {
	return crate.NewArchiver(New(), opts...)
}

// ContentType returns the MIME type for JSON.
func (c *jsonCodec) ContentType() string {
	return "application/json"
}

// Marshal encodes v as JSON.
func (c *jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes JSON data into v.
func (c *jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
