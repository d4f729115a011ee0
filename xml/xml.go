// Package xml archives record system fields as XML.
package xml

import (
	"encoding/xml"

	"github.com/zoobzio/crate"
)

// xmlCodec implements crate.Codec for XML.
type xmlCodec struct{}

// New returns a XML codec.
func New() crate.Codec {
	return &xmlCodec{}
}

// Archiver returns a crate.Archiver that writes system fields as XML.
func Archiver(opts ...crate.ArchiverOption) *crate.Archiver {
	return crate.NewArchiver(New(), opts...)
}

// ContentType returns the MIME type for XML.
func (c *xmlCodec) ContentType() string {
	return "application/xml"
}

// Marshal encodes v as XML.
func (c *xmlCodec) Marshal(v any) ([]byte, error) {
	return xml.Marshal(v)
}

// Unmarshal decodes XML data into v.
func (c *xmlCodec) Unmarshal(data []byte, v any) error {
	return xml.Unmarshal(data, v)
}
