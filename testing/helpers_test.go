package testing

import (
	"testing"

	"github.com/zoobzio/crate"
)

func TestTestKey(t *testing.T) {
	key := TestKey(t)
	if len(key) != 32 {
		t.Errorf("TestKey() length = %d, want 32", len(key))
	}
}

func TestTestSealer(t *testing.T) {
	s := TestSealer(t)
	if s.Algo() != crate.SealAES {
		t.Errorf("Algo() = %v, want %v", s.Algo(), crate.SealAES)
	}

	plaintext := []byte("test")
	ciphertext, err := s.Seal(plaintext)
	if err != nil {
		t.Fatalf("Seal() error: %v", err)
	}

	opened, err := s.Open(ciphertext)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	if string(opened) != string(plaintext) {
		t.Errorf("round-trip failed")
	}
}

func TestSystemFieldsForTesting(t *testing.T) {
	a := crate.DefaultArchiver()
	data := SystemFieldsForTesting(t, a)

	rec := UnderlyingRecord(a, data)
	if rec == nil {
		t.Fatal("UnderlyingRecord() = nil")
	}
	if rec.ID() != SystemFieldsRecordID {
		t.Errorf("ID() = %v, want %v", rec.ID(), SystemFieldsRecordID)
	}
	if rec.Type() != SystemFieldsRecordType {
		t.Errorf("Type() = %q, want %q", rec.Type(), SystemFieldsRecordType)
	}
}

func TestUnderlyingRecord_Empty(t *testing.T) {
	if rec := UnderlyingRecord(crate.DefaultArchiver(), nil); rec != nil {
		t.Errorf("UnderlyingRecord(nil) = %v, want nil", rec)
	}
	if rec := UnderlyingRecord(crate.DefaultArchiver(), []byte("garbage")); rec != nil {
		t.Errorf("UnderlyingRecord(garbage) = %v, want nil", rec)
	}
}

func TestFixtures_Equal(t *testing.T) {
	a := NewTester()
	b := NewTester()
	b.SystemFields = []byte{1, 2, 3}
	if !a.Equal(b) {
		t.Error("Equal() should ignore system fields")
	}

	b.Name = "Someone Else"
	if a.Equal(b) {
		t.Error("Equal() should compare Name")
	}
}

func TestTesterCustomIdentifier_NewRecord(t *testing.T) {
	rec := NewTesterCustomIdentifier().NewRecord()
	if rec.ID().Name != CustomIdentifierName {
		t.Errorf("ID().Name = %q, want %q", rec.ID().Name, CustomIdentifierName)
	}
	if rec.ID().Zone != CustomIdentifierZone {
		t.Errorf("ID().Zone = %v, want %v", rec.ID().Zone, CustomIdentifierZone)
	}
}

func TestTesterCustomZone_RecordZone(t *testing.T) {
	if z := NewTesterCustomZone().RecordZone(); z != CustomZone {
		t.Errorf("RecordZone() = %v, want %v", z, CustomZone)
	}
}
