package utils

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"runtime"
)

var RandReader io.Reader = rand.Reader

// SecureRandomBytes generates n cryptographically secure random bytes.
// It reads from RandReader, which defaults to crypto/rand.
func SecureRandomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(RandReader, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// GenerateSeed draws a seed of exactly bits bits from RandReader.
// When bits is not a multiple of 8 the unused high bits of the first byte are cleared.
func GenerateSeed(bits int) ([]byte, error) {
	if bits <= 0 {
		return nil, errors.New("seed length must be positive")
	}
	seed, err := SecureRandomBytes((bits + 7) / 8)
	if err != nil {
		return nil, fmt.Errorf("drawing seed: %w", err)
	}
	if extra := len(seed)*8 - bits; extra > 0 {
		seed[0] &= 0xFF >> extra
	}
	return seed, nil
}

// RandomIntRange returns a uniformly random integer in [min, max].
// It uses rejection sampling over the bit length of max-min.
func RandomIntRange(min, max *big.Int) (*big.Int, error) {
	if min.Cmp(max) > 0 {
		return nil, errors.New("empty range")
	}
	span := new(big.Int).Sub(max, min)
	span.Add(span, bigOne)

	bits := span.BitLen()
	byteLen := (bits + 7) / 8
	mask := byte(0xFF >> (byteLen*8 - bits))
	v := new(big.Int)
	for {
		buf, err := SecureRandomBytes(byteLen)
		if err != nil {
			return nil, err
		}
		buf[0] &= mask
		v.SetBytes(buf)
		if v.Cmp(span) < 0 {
			return v.Add(v, min), nil
		}
	}
}

// ValidateSeedEntropy rejects obviously weak seeds (all bytes equal, or a
// sequential byte pattern). This is a sanity check, not a randomness test.
func ValidateSeedEntropy(seed []byte) error {
	if len(seed) < 2 {
		return nil
	}

	first := seed[0]
	allSame := true
	for i := 1; i < len(seed); i++ {
		if seed[i] != first {
			allSame = false
			break
		}
	}
	if allSame {
		return errors.New("seed has low entropy: all bytes are identical")
	}

	isAscending := true
	isDescending := true
	for i := 1; i < len(seed); i++ {
		if seed[i] != byte((int(seed[i-1])+1)%256) {
			isAscending = false
		}
		if seed[i] != byte((int(seed[i-1])-1+256)%256) {
			isDescending = false
		}
		if !isAscending && !isDescending {
			break
		}
	}
	if isAscending || isDescending {
		return errors.New("seed has low entropy: sequential pattern detected")
	}
	return nil
}

// Zeroize overwrites a byte slice with zeros.
// runtime.KeepAlive keeps the compiler from eliminating the stores.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
