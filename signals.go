package crate

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for crate events.
var (
	SignalEncoderCreated    = capitan.NewSignal("crate.encoder.created", "RecordEncoder instantiated")
	SignalDecoderCreated    = capitan.NewSignal("crate.decoder.created", "RecordDecoder instantiated")
	SignalEncodeStart       = capitan.NewSignal("crate.encode.start", "Encode operation beginning")
	SignalEncodeComplete    = capitan.NewSignal("crate.encode.complete", "Encode operation finished")
	SignalDecodeStart       = capitan.NewSignal("crate.decode.start", "Decode operation beginning")
	SignalDecodeComplete    = capitan.NewSignal("crate.decode.complete", "Decode operation finished")
	SignalArchiveComplete   = capitan.NewSignal("crate.archive.complete", "System fields archived")
	SignalUnarchiveComplete = capitan.NewSignal("crate.unarchive.complete", "System fields unarchived")
)

// Keys for typed event data.
var (
	KeyContentType = capitan.NewStringKey("content_type")
	KeyTypeName    = capitan.NewStringKey("type_name")
	KeyRecordType  = capitan.NewStringKey("record_type")
	KeyRecordName  = capitan.NewStringKey("record_name")
	KeyZone        = capitan.NewStringKey("zone")
	KeySealed      = capitan.NewStringKey("sealed")
	KeyFieldCount  = capitan.NewIntKey("field_count")
	KeySize        = capitan.NewIntKey("size")
	KeyDuration    = capitan.NewDurationKey("duration")
	KeyError       = capitan.NewErrorKey("error")
)

// emitEncoderCreated emits an event when an encoder is created.
func emitEncoderCreated(ctx context.Context, contentType string) {
	capitan.Emit(ctx, SignalEncoderCreated,
		KeyContentType.Field(contentType),
	)
}

// emitDecoderCreated emits an event when a decoder is created.
func emitDecoderCreated(ctx context.Context, contentType string) {
	capitan.Emit(ctx, SignalDecoderCreated,
		KeyContentType.Field(contentType),
	)
}

// emitEncodeStart emits an event when encode begins.
func emitEncodeStart(ctx context.Context, typeName string) {
	capitan.Emit(ctx, SignalEncodeStart,
		KeyTypeName.Field(typeName),
	)
}

// emitEncodeComplete emits an event when encode finishes.
func emitEncodeComplete(ctx context.Context, typeName string, rec *Record, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyDuration.Field(duration),
	}
	if rec != nil {
		fields = append(fields,
			KeyRecordType.Field(rec.Type()),
			KeyRecordName.Field(rec.ID().Name),
			KeyZone.Field(rec.ID().Zone.String()),
			KeyFieldCount.Field(rec.Len()),
		)
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalEncodeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalEncodeComplete, fields...)
	}
}

// emitDecodeStart emits an event when decode begins.
func emitDecodeStart(ctx context.Context, typeName string, rec *Record) {
	capitan.Emit(ctx, SignalDecodeStart,
		KeyTypeName.Field(typeName),
		KeyRecordType.Field(rec.Type()),
		KeyRecordName.Field(rec.ID().Name),
	)
}

// emitDecodeComplete emits an event when decode finishes.
func emitDecodeComplete(ctx context.Context, typeName string, rec *Record, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyRecordType.Field(rec.Type()),
		KeyRecordName.Field(rec.ID().Name),
		KeyFieldCount.Field(rec.Len()),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalDecodeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalDecodeComplete, fields...)
	}
}

// emitArchiveComplete emits an event when system fields are archived.
func emitArchiveComplete(ctx context.Context, contentType, recordType string, size int, sealed bool, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyRecordType.Field(recordType),
		KeySize.Field(size),
		KeySealed.Field(sealedLabel(sealed)),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalArchiveComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalArchiveComplete, fields...)
	}
}

// emitUnarchiveComplete emits an event when system fields are unarchived.
func emitUnarchiveComplete(ctx context.Context, contentType, recordType string, size int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyRecordType.Field(recordType),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalUnarchiveComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalUnarchiveComplete, fields...)
	}
}

func sealedLabel(sealed bool) string {
	if sealed {
		return "true"
	}
	return "false"
}
