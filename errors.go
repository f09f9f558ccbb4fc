package provrsa

import (
	"errors"
	"fmt"
)

// Parameter errors.
var (
	// ErrInvalidExponent is returned when e is even or outside (2^16, 2^256).
	ErrInvalidExponent = errors.New("public exponent must be odd and in (2^16, 2^256)")

	// ErrUnsupportedKeyLength is returned for modulus lengths other than 2048, 3072, 7680 and 15360.
	ErrUnsupportedKeyLength = errors.New("unsupported modulus length")

	// ErrSeedTooShort is returned when a seed has fewer than 2 x security_strength bits.
	ErrSeedTooShort = errors.New("seed shorter than twice the security strength")

	// ErrInvalidParams is returned when a parameter set or configuration is inconsistent.
	ErrInvalidParams = errors.New("invalid parameters")
)

// Generation errors.
var (
	// ErrPrimeConstructionExhausted is returned when a bounded prime search runs out of attempts.
	// Callers may retry with a fresh seed.
	ErrPrimeConstructionExhausted = errors.New("prime construction exhausted its retry budget")

	// ErrPrimesTooClose is returned when two factors violate the minimum separation bound.
	ErrPrimesTooClose = errors.New("prime factors are too close")
)

// Key and primitive errors.
var (
	// ErrMessageOutOfRange is returned when a message representative is not in [0, n).
	ErrMessageOutOfRange = errors.New("message representative out of range")

	// ErrCiphertextOutOfRange is returned when a ciphertext representative is not in [0, n).
	ErrCiphertextOutOfRange = errors.New("ciphertext representative out of range")

	// ErrInvalidPrime is returned when an externally supplied factor fails primality testing.
	ErrInvalidPrime = errors.New("factor is not prime")

	// ErrInvalidKey is returned when key material violates a structural invariant.
	ErrInvalidKey = errors.New("invalid key")
)

// GenerationError describes a failure inside a bounded prime search.
type GenerationError struct {
	Stage    string // Construction step that failed
	Length   int    // Requested bit length
	Attempts int    // Candidates tried before giving up
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("%s (length %d) failed after %d attempts: %v", e.Stage, e.Length, e.Attempts, e.Err)
	}
	return fmt.Sprintf("%s (length %d) failed: %v", e.Stage, e.Length, e.Err)
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Err
}
