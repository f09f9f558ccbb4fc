// Package utils provides random, hashing, integer encoding and bounds-checked
// decoding helpers.
// This file contains the limits used when decoding untrusted key material.

package utils

import (
	"encoding/binary"
	"errors"
	"math/big"
)

// Maximum allowed sizes when decoding serialized keys.
const (
	// MaxIntegerBytes bounds a single encoded integer (a 15360-bit modulus is 1920 bytes).
	MaxIntegerBytes = 4096

	// MaxAdditionalPrimes bounds the number of additional prime records in a CRT key.
	MaxAdditionalPrimes = 16

	// MaxPayloadLength is the maximum allowed length of a serialized key.
	MaxPayloadLength = 1 << 20
)

var (
	// ErrOverflow indicates an integer overflow occurred.
	ErrOverflow = errors.New("integer overflow")

	// ErrExceedsLimit indicates a value exceeds the allowed limit.
	ErrExceedsLimit = errors.New("value exceeds allowed limit")

	// ErrInvalidLength indicates an invalid length value.
	ErrInvalidLength = errors.New("invalid length")
)

// CheckLength validates that length is within [0, maxAllowed].
func CheckLength(length, maxAllowed int) error {
	if length < 0 {
		return ErrInvalidLength
	}
	if length > maxAllowed {
		return ErrExceedsLimit
	}
	return nil
}

// SafeReadLength reads a little-endian uint32 length from data at offset, validates it, and returns the value.
// Returns error if not enough bytes available or length exceeds maxAllowed.
func SafeReadLength(data []byte, offset, maxAllowed int) (length int, newOffset int, err error) {
	if offset < 0 || offset+4 > len(data) {
		return 0, offset, errors.New("truncated length field")
	}
	length = int(binary.LittleEndian.Uint32(data[offset:]))
	if err := CheckLength(length, maxAllowed); err != nil {
		return 0, offset, err
	}
	return length, offset + 4, nil
}

// ValidateSliceAccess checks that accessing data[offset:offset+size] is safe.
func ValidateSliceAccess(data []byte, offset, size int) error {
	if offset < 0 || size < 0 {
		return ErrInvalidLength
	}
	if offset+size < offset {
		return ErrOverflow
	}
	if offset+size > len(data) {
		return errors.New("slice access out of bounds")
	}
	return nil
}

// AppendInt appends a length-prefixed big-endian encoding of v to buf.
func AppendInt(buf []byte, v *big.Int) []byte {
	b := v.Bytes()
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(b)))
	return append(buf, b...)
}

// ReadInt reads an integer written by AppendInt.
func ReadInt(data []byte, offset int) (*big.Int, int, error) {
	n, off, err := SafeReadLength(data, offset, MaxIntegerBytes)
	if err != nil {
		return nil, offset, err
	}
	if err := ValidateSliceAccess(data, off, n); err != nil {
		return nil, offset, err
	}
	return new(big.Int).SetBytes(data[off : off+n]), off + n, nil
}
