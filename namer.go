package crate

import (
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// Namer mints record names for new records.
type Namer func() string

// UUIDNamer names records with random UUIDs. It is the default.
func UUIDNamer() string {
	return uuid.NewString()
}

// KSUIDNamer names records with KSUIDs, which sort by creation time.
func KSUIDNamer() string {
	return ksuid.New().String()
}

// DefaultFactory returns a factory minting empty records of recordType in
// zone, named by namer. A nil namer means UUIDNamer.
func DefaultFactory(recordType string, zone ZoneID, namer Namer) RecordFactory {
	if namer == nil {
		namer = UUIDNamer
	}
	return func() *Record {
		return NewRecord(recordType, RecordID{Name: namer(), Zone: zone})
	}
}

// factoryFor resolves the record factory for v: its RecordProvider if it
// has one, else DefaultFactory with the type's name and zone.
func factoryFor(v any, typeName string, namer Namer) RecordFactory {
	if p, ok := v.(RecordProvider); ok {
		return p.NewRecord
	}

	recordType := typeName
	if t, ok := v.(RecordTyper); ok {
		recordType = t.RecordType()
	}

	zone := DefaultZone
	if z, ok := v.(RecordZoner); ok {
		zone = z.RecordZone()
	}

	return DefaultFactory(recordType, zone, namer)
}
