package crate

import "golang.org/x/crypto/argon2"

// KeyParams configures Argon2id key derivation.
type KeyParams struct {
	Time    uint32 // Number of iterations
	Memory  uint32 // Memory usage in KiB
	Threads uint8  // Parallelism factor
	KeyLen  uint32 // Output key length
}

// DefaultKeyParams returns recommended Argon2id parameters for a 32-byte key.
func DefaultKeyParams() KeyParams {
	return KeyParams{
		Time:    1,
		Memory:  64 * 1024, // 64 MiB
		Threads: 4,
		KeyLen:  32,
	}
}

// DeriveKey stretches a passphrase into a sealing key. The same passphrase,
// salt and params always yield the same key, so the salt must be stored
// wherever the passphrase is configured.
func DeriveKey(passphrase, salt []byte, params KeyParams) []byte {
	return argon2.IDKey(passphrase, salt, params.Time, params.Memory, params.Threads, params.KeyLen)
}
