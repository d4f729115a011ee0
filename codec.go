package crate

import "github.com/vmihailenco/msgpack/v5"

// Codec provides content-type aware marshaling for system-fields archives.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}

// msgpackCodec is the default archive codec.
type msgpackCodec struct{}

// MessagePack returns the MessagePack codec used by DefaultArchiver.
func MessagePack() Codec {
	return msgpackCodec{}
}

func (msgpackCodec) ContentType() string {
	return "application/msgpack"
}

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (msgpackCodec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}
