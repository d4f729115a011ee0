package crate

import (
	"context"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"hash/crc32"
	"time"
)

// Archive layout:
//
//	[Magic(4)][Version(1)][SealAlgo(1)][ContentTypeLen(1)][ContentType][CRC32(4)][Payload]
//
// CRC32 (IEEE, little-endian) covers the payload as written, sealed or not.
const (
	archiveMagic   = "CRSF"
	archiveVersion = 1
	// magic + version + algo + content type length
	archivePrefixSize = 7
	archiveCRCSize    = 4
)

// systemFields is the archived form of a record's identity and bookkeeping.
// Times are Unix nanoseconds so every codec round-trips them exactly; zero
// means unset.
type systemFields struct {
	XMLName    xml.Name `json:"-" yaml:"-" msgpack:"-" bson:"-" xml:"systemFields"`
	RecordType string   `json:"recordType" yaml:"recordType" msgpack:"recordType" bson:"recordType" xml:"recordType"`
	RecordName string   `json:"recordName" yaml:"recordName" msgpack:"recordName" bson:"recordName" xml:"recordName"`
	ZoneName   string   `json:"zoneName" yaml:"zoneName" msgpack:"zoneName" bson:"zoneName" xml:"zoneName"`
	ZoneOwner  string   `json:"zoneOwner" yaml:"zoneOwner" msgpack:"zoneOwner" bson:"zoneOwner" xml:"zoneOwner"`
	ChangeTag  string   `json:"changeTag,omitempty" yaml:"changeTag,omitempty" msgpack:"changeTag,omitempty" bson:"changeTag,omitempty" xml:"changeTag,omitempty"`
	CreatedAt  int64    `json:"createdAt,omitempty" yaml:"createdAt,omitempty" msgpack:"createdAt,omitempty" bson:"createdAt,omitempty" xml:"createdAt,omitempty"`
	ModifiedAt int64    `json:"modifiedAt,omitempty" yaml:"modifiedAt,omitempty" msgpack:"modifiedAt,omitempty" bson:"modifiedAt,omitempty" xml:"modifiedAt,omitempty"`
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

// Archiver turns a record's system fields into an opaque blob and back.
// Archivers are immutable and safe for concurrent use.
type Archiver struct {
	codec  Codec
	sealer Sealer
}

// ArchiverOption configures an Archiver.
type ArchiverOption func(*Archiver)

// WithSealer encrypts archives with s.
func WithSealer(s Sealer) ArchiverOption {
	return func(a *Archiver) {
		a.sealer = s
	}
}

// NewArchiver creates an archiver that encodes system fields with codec.
func NewArchiver(codec Codec, opts ...ArchiverOption) *Archiver {
	a := &Archiver{codec: codec}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var defaultArchiver = NewArchiver(MessagePack())

// DefaultArchiver returns the unsealed MessagePack archiver.
func DefaultArchiver() *Archiver {
	return defaultArchiver
}

// ContentType returns the codec's content type.
func (a *Archiver) ContentType() string {
	return a.codec.ContentType()
}

// Sealed reports whether archives are encrypted.
func (a *Archiver) Sealed() bool {
	return a.sealer != nil
}

// Archive captures r's type, identity, zone and bookkeeping.
func (a *Archiver) Archive(ctx context.Context, r *Record) (data []byte, err error) {
	start := clock()
	defer func() {
		emitArchiveComplete(ctx, a.codec.ContentType(), r.Type(), len(data), a.Sealed(), time.Since(start), err)
	}()

	sf := systemFields{
		RecordType: r.recordType,
		RecordName: r.id.Name,
		ZoneName:   r.id.Zone.Name,
		ZoneOwner:  r.id.Zone.Owner,
		ChangeTag:  r.changeTag,
		CreatedAt:  unixNano(r.createdAt),
		ModifiedAt: unixNano(r.modifiedAt),
	}

	payload, err := a.codec.Marshal(&sf)
	if err != nil {
		return nil, newArchiveError(ErrInvalidArchive, "archive", err)
	}

	algo := SealNone
	if a.sealer != nil {
		algo = a.sealer.Algo()
		payload, err = a.sealer.Seal(payload)
		if err != nil {
			return nil, newArchiveError(ErrInvalidArchive, "archive", err)
		}
	}

	contentType := a.codec.ContentType()
	if len(contentType) > 255 {
		contentType = contentType[:255]
	}

	data = make([]byte, 0, archivePrefixSize+len(contentType)+archiveCRCSize+len(payload))
	data = append(data, archiveMagic...)
	data = append(data, archiveVersion, byte(algo), byte(len(contentType)))
	data = append(data, contentType...)
	data = binary.LittleEndian.AppendUint32(data, crc32.ChecksumIEEE(payload))
	data = append(data, payload...)

	return data, nil
}

// Unarchive reconstructs an empty record carrying the identity and
// bookkeeping captured by Archive.
func (a *Archiver) Unarchive(ctx context.Context, data []byte) (r *Record, err error) {
	start := clock()
	defer func() {
		recordType := ""
		if r != nil {
			recordType = r.Type()
		}
		emitUnarchiveComplete(ctx, a.codec.ContentType(), recordType, len(data), time.Since(start), err)
	}()

	if len(data) < archivePrefixSize || string(data[:4]) != archiveMagic {
		return nil, newArchiveError(ErrInvalidArchive, "unarchive", nil)
	}
	if data[4] != archiveVersion {
		return nil, newArchiveError(ErrInvalidArchive, "unarchive", errUnknownVersion(data[4]))
	}

	algo := SealAlgo(data[5])
	if !IsValidSealAlgo(algo) {
		return nil, newArchiveError(ErrInvalidArchive, "unarchive", errUnknownAlgo(algo))
	}

	ctLen := int(data[6])
	offset := archivePrefixSize + ctLen
	if len(data) < offset+archiveCRCSize {
		return nil, newArchiveError(ErrInvalidArchive, "unarchive", nil)
	}

	contentType := string(data[archivePrefixSize:offset])
	if contentType != a.codec.ContentType() {
		return nil, newArchiveError(ErrCodecMismatch, "unarchive", errContentType(contentType, a.codec.ContentType()))
	}

	sum := binary.LittleEndian.Uint32(data[offset:])
	payload := data[offset+archiveCRCSize:]
	if crc32.ChecksumIEEE(payload) != sum {
		return nil, newArchiveError(ErrChecksumMismatch, "unarchive", nil)
	}

	if algo != SealNone {
		if a.sealer == nil || a.sealer.Algo() != algo {
			return nil, newArchiveError(ErrSealed, "unarchive", errUnknownAlgo(algo))
		}
		payload, err = a.sealer.Open(payload)
		if err != nil {
			return nil, newArchiveError(ErrInvalidArchive, "unarchive", err)
		}
	}

	var sf systemFields
	if err := a.codec.Unmarshal(payload, &sf); err != nil {
		return nil, newArchiveError(ErrInvalidArchive, "unarchive", err)
	}

	r = NewRecord(sf.RecordType, RecordID{
		Name: sf.RecordName,
		Zone: ZoneID{Name: sf.ZoneName, Owner: sf.ZoneOwner},
	})
	r.changeTag = sf.ChangeTag
	r.createdAt = fromUnixNano(sf.CreatedAt)
	r.modifiedAt = fromUnixNano(sf.ModifiedAt)

	return r, nil
}

// EncodeSystemFields archives r's identity and bookkeeping with a.
func (r *Record) EncodeSystemFields(a *Archiver) ([]byte, error) {
	return a.Archive(context.Background(), r)
}

// RecordFromSystemFields rebuilds an empty record from a blob produced by
// EncodeSystemFields.
func RecordFromSystemFields(a *Archiver, data []byte) (*Record, error) {
	return a.Unarchive(context.Background(), data)
}

func errUnknownVersion(v byte) error {
	return fmt.Errorf("unknown version %d", v)
}

func errUnknownAlgo(algo SealAlgo) error {
	return fmt.Errorf("seal algorithm %s (%d)", algo, uint8(algo))
}

func errContentType(got, want string) error {
	return fmt.Errorf("archived as %q, archiver uses %q", got, want)
}
