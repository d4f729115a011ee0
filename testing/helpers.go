// Package testing provides fixtures and assertions for crate tests.
package testing

import (
	"context"
	"testing"
	"time"

	"github.com/zoobzio/crate"
)

// TesterName is the name every fixture carries.
const TesterName = "Tester Testerson"

// TesterCreatedAt is the creation time every fixture carries.
var TesterCreatedAt = time.Unix(0, 0).UTC()

// TestKey returns a valid 32-byte sealing key for testing.
func TestKey(tb testing.TB) []byte {
	tb.Helper()
	return []byte("32-byte-key-for-aes-256-encrypt!")
}

// TestSealer returns an AES sealer configured for testing.
func TestSealer(tb testing.TB) crate.Sealer {
	tb.Helper()
	s, err := crate.AES(TestKey(tb))
	if err != nil {
		tb.Fatalf("AES() error: %v", err)
	}
	return s
}

// Tester is a record type in the default zone.
type Tester struct {
	SystemFields []byte
	Name         string
	CreatedAt    time.Time
}

// NewTester returns the sample Tester with no system fields.
func NewTester() Tester {
	return Tester{Name: TesterName, CreatedAt: TesterCreatedAt}
}

// Equal compares field values, ignoring system fields.
func (t Tester) Equal(o Tester) bool {
	return t.Name == o.Name && t.CreatedAt.Equal(o.CreatedAt)
}

// TesterCustomZone is a record type whose records live in zone ABCDE.
type TesterCustomZone struct {
	SystemFields []byte
	Name         string
	CreatedAt    time.Time
}

// CustomZone is the zone of TesterCustomZone records.
var CustomZone = crate.NewZoneID("ABCDE")

// NewTesterCustomZone returns the sample TesterCustomZone.
func NewTesterCustomZone() TesterCustomZone {
	return TesterCustomZone{Name: TesterName, CreatedAt: TesterCreatedAt}
}

// RecordZone implements crate.RecordZoner.
func (TesterCustomZone) RecordZone() crate.ZoneID { return CustomZone }

// Equal compares field values, ignoring system fields.
func (t TesterCustomZone) Equal(o TesterCustomZone) bool {
	return t.Name == o.Name && t.CreatedAt.Equal(o.CreatedAt)
}

// TesterCustomIdentifier is a record type whose factory always mints
// TEST-ID in zone Zone12345.
type TesterCustomIdentifier struct {
	SystemFields []byte
	Name         string
	CreatedAt    time.Time
}

// CustomIdentifierZone is the zone of TesterCustomIdentifier records.
var CustomIdentifierZone = crate.NewZoneID("Zone12345")

// CustomIdentifierName is the record name of TesterCustomIdentifier records.
const CustomIdentifierName = "TEST-ID"

// NewTesterCustomIdentifier returns the sample TesterCustomIdentifier.
func NewTesterCustomIdentifier() TesterCustomIdentifier {
	return TesterCustomIdentifier{Name: TesterName, CreatedAt: TesterCreatedAt}
}

// NewRecord implements crate.RecordProvider.
func (TesterCustomIdentifier) NewRecord() *crate.Record {
	return crate.NewRecord("TesterCustomIdentifier", crate.RecordID{
		Name: CustomIdentifierName,
		Zone: CustomIdentifierZone,
	})
}

// Equal compares field values, ignoring system fields.
func (t TesterCustomIdentifier) Equal(o TesterCustomIdentifier) bool {
	return t.Name == o.Name && t.CreatedAt.Equal(o.CreatedAt)
}

// SystemFieldsRecordID is the identity captured by SystemFieldsForTesting.
var SystemFieldsRecordID = crate.RecordID{
	Name: "RecordABCD",
	Zone: crate.ZoneID{Name: "ZoneABCD", Owner: "OwnerABCD"},
}

// SystemFieldsRecordType is the type captured by SystemFieldsForTesting.
const SystemFieldsRecordType = "TypeABCD"

// SystemFieldsForTesting archives a record that was never produced by any
// fixture, simulating a value that was fetched from a store earlier.
func SystemFieldsForTesting(tb testing.TB, a *crate.Archiver) []byte {
	tb.Helper()
	rec := crate.NewRecord(SystemFieldsRecordType, SystemFieldsRecordID)
	data, err := a.Archive(context.Background(), rec)
	if err != nil {
		tb.Fatalf("Archive() error: %v", err)
	}
	return data
}

// Expect describes the identity ValidateFields checks. Empty values are not checked.
type Expect struct {
	Type string
	Name string
	Zone *crate.ZoneID
}

// ValidateFields checks that rec holds the fixture fields, has the expected
// identity, and does not store the system-fields blob as a field.
func ValidateFields(tb testing.TB, rec *crate.Record, want Expect) {
	tb.Helper()

	if want.Type != "" && rec.Type() != want.Type {
		tb.Errorf("Type() = %q, want %q", rec.Type(), want.Type)
	}
	if want.Name != "" && rec.ID().Name != want.Name {
		tb.Errorf("ID().Name = %q, want %q", rec.ID().Name, want.Name)
	}
	if want.Zone != nil && rec.ID().Zone != *want.Zone {
		tb.Errorf("ID().Zone = %v, want %v", rec.ID().Zone, *want.Zone)
	}

	if name, _ := rec.Value("name").(string); name != TesterName {
		tb.Errorf("name = %q, want %q", name, TesterName)
	}
	if created, _ := rec.Value("createdAt").(time.Time); !created.Equal(TesterCreatedAt) {
		tb.Errorf("createdAt = %v, want %v", created, TesterCreatedAt)
	}
	if _, ok := rec.Get(crate.SystemFieldsKey); ok {
		tb.Errorf("%s should NOT be encoded to the record directly", crate.SystemFieldsKey)
	}
}

// UnderlyingRecord inflates a value's system fields, or returns nil.
func UnderlyingRecord(a *crate.Archiver, systemFields []byte) *crate.Record {
	if len(systemFields) == 0 {
		return nil
	}
	rec, err := a.Unarchive(context.Background(), systemFields)
	if err != nil {
		return nil
	}
	return rec
}
