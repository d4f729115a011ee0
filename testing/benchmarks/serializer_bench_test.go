package benchmarks

import (
	"context"
	"testing"

	"github.com/zoobzio/crate"
	"github.com/zoobzio/crate/json"
	cratetest "github.com/zoobzio/crate/testing"
)

func BenchmarkEncoder_Encode_Fresh(b *testing.B) {
	enc := crate.NewEncoder()
	value := cratetest.NewTester()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = enc.Encode(context.Background(), value)
	}
}

func BenchmarkEncoder_Encode_KSUID(b *testing.B) {
	enc := crate.NewEncoder(crate.WithNamer(crate.KSUIDNamer))
	value := cratetest.NewTester()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = enc.Encode(context.Background(), value)
	}
}

func BenchmarkEncoder_Encode_WithSystemFields(b *testing.B) {
	enc := crate.NewEncoder()
	value := cratetest.NewTester()
	value.SystemFields = cratetest.SystemFieldsForTesting(b, crate.DefaultArchiver())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = enc.Encode(context.Background(), value)
	}
}

func BenchmarkEncoder_Encode_Sealed(b *testing.B) {
	a := crate.NewArchiver(crate.MessagePack(), crate.WithSealer(cratetest.TestSealer(b)))
	enc := crate.NewEncoder(crate.WithArchiver(a))
	value := cratetest.NewTester()
	value.SystemFields = cratetest.SystemFieldsForTesting(b, a)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = enc.Encode(context.Background(), value)
	}
}

func BenchmarkDecoder_Decode(b *testing.B) {
	dec := crate.NewDecoder()
	rec, _ := crate.Marshal(context.Background(), cratetest.NewTester())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var out cratetest.Tester
		_ = dec.Decode(context.Background(), rec, &out)
	}
}

func BenchmarkDecoder_Decode_JSONArchive(b *testing.B) {
	a := json.Archiver()
	dec := crate.NewDecoder(crate.WithArchiver(a))
	rec, _ := crate.Marshal(context.Background(), cratetest.NewTester(), crate.WithArchiver(a))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var out cratetest.Tester
		_ = dec.Decode(context.Background(), rec, &out)
	}
}

func BenchmarkArchiver_Archive(b *testing.B) {
	a := crate.DefaultArchiver()
	rec := crate.NewRecord("Tester", crate.RecordID{Name: "bench", Zone: crate.DefaultZone})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = a.Archive(context.Background(), rec)
	}
}

func BenchmarkArchiver_Unarchive(b *testing.B) {
	a := crate.DefaultArchiver()
	data := cratetest.SystemFieldsForTesting(b, a)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = a.Unarchive(context.Background(), data)
	}
}

func BenchmarkRoundTrip_Parallel(b *testing.B) {
	enc := crate.NewEncoder()
	dec := crate.NewDecoder()
	value := cratetest.NewTester()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			rec, err := enc.Encode(context.Background(), value)
			if err != nil {
				continue
			}
			var out cratetest.Tester
			_ = dec.Decode(context.Background(), rec, &out)
		}
	})
}
