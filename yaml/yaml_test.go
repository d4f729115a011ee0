package yaml

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zoobzio/crate"
)

func TestContentType(t *testing.T) {
	c := New()
	if c.ContentType() != "application/yaml" {
		t.Errorf("ContentType() = %q, want %q", c.ContentType(), "application/yaml")
	}
}

func TestArchiver(t *testing.T) {
	a := Archiver()
	if a.ContentType() != "application/yaml" {
		t.Errorf("ContentType() = %q, want %q", a.ContentType(), "application/yaml")
	}
	if a.Sealed() {
		t.Error("Archiver() without options should not be sealed")
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	a := Archiver()

	zone := crate.ZoneID{Name: "ZoneABCD", Owner: "OwnerABCD"}
	rec := crate.NewRecord("TypeABCD", crate.RecordID{Name: "RecordABCD", Zone: zone})
	rec.SetChangeTag("tag-1")
	rec.Touch(time.Unix(1700000000, 123).UTC())

	data, err := a.Archive(ctx, rec)
	if err != nil {
		t.Fatalf("Archive() error: %v", err)
	}

	restored, err := a.Unarchive(ctx, data)
	if err != nil {
		t.Fatalf("Unarchive() error: %v", err)
	}

	if restored.Type() != "TypeABCD" {
		t.Errorf("Type() = %q, want %q", restored.Type(), "TypeABCD")
	}
	if restored.ID() != rec.ID() {
		t.Errorf("ID() = %v, want %v", restored.ID(), rec.ID())
	}
	if restored.ChangeTag() != "tag-1" {
		t.Errorf("ChangeTag() = %q, want %q", restored.ChangeTag(), "tag-1")
	}
	if !restored.ModifiedAt().Equal(rec.ModifiedAt()) {
		t.Errorf("ModifiedAt() = %v, want %v", restored.ModifiedAt(), rec.ModifiedAt())
	}
	if restored.Len() != 0 {
		t.Errorf("Len() = %d, want 0", restored.Len())
	}
}

func TestArchiveSealed(t *testing.T) {
	ctx := context.Background()
	sealer, err := crate.AES([]byte("32-byte-key-for-aes-256-encrypt!"))
	if err != nil {
		t.Fatalf("AES() error: %v", err)
	}

	a := Archiver(crate.WithSealer(sealer))
	rec := crate.NewRecord("Note", crate.RecordID{Name: "n-1", Zone: crate.DefaultZone})

	data, err := a.Archive(ctx, rec)
	if err != nil {
		t.Fatalf("Archive() error: %v", err)
	}

	if _, err := Archiver().Unarchive(ctx, data); !errors.Is(err, crate.ErrSealed) {
		t.Errorf("Unarchive() without sealer error = %v, want ErrSealed", err)
	}

	restored, err := a.Unarchive(ctx, data)
	if err != nil {
		t.Fatalf("Unarchive() error: %v", err)
	}
	if restored.ID() != rec.ID() {
		t.Errorf("ID() = %v, want %v", restored.ID(), rec.ID())
	}
}

func TestUnarchiveCodecMismatch(t *testing.T) {
	ctx := context.Background()
	rec := crate.NewRecord("Note", crate.RecordID{Name: "n-1", Zone: crate.DefaultZone})

	data, err := crate.DefaultArchiver().Archive(ctx, rec)
	if err != nil {
		t.Fatalf("Archive() error: %v", err)
	}

	if _, err := Archiver().Unarchive(ctx, data); !errors.Is(err, crate.ErrCodecMismatch) {
		t.Errorf("Unarchive() error = %v, want ErrCodecMismatch", err)
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	c := New()

	var v struct {
		Name string `yaml:"name"`
	}
	if err := c.Unmarshal([]byte("name: [invalid"), &v); err == nil {
		t.Error("Unmarshal(invalid) should return error")
	}
}
