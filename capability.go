package crate

// SealAlgo identifies the algorithm that sealed a system-fields archive.
// The value is written into the archive header.
type SealAlgo uint8

const (
	// SealNone marks an unsealed archive.
	SealNone SealAlgo = iota

	// SealAES uses AES-GCM.
	SealAES

	// SealXChaCha20 uses XChaCha20-Poly1305.
	SealXChaCha20
)

// validSealAlgos contains every algorithm an archive header may name.
var validSealAlgos = map[SealAlgo]string{
	SealNone:      "none",
	SealAES:       "aes",
	SealXChaCha20: "xchacha20",
}

// IsValidSealAlgo returns true if the algorithm is known.
func IsValidSealAlgo(algo SealAlgo) bool {
	_, ok := validSealAlgos[algo]
	return ok
}

func (a SealAlgo) String() string {
	if name, ok := validSealAlgos[a]; ok {
		return name
	}
	return "unknown"
}
