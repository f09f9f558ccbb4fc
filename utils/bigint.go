package utils

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var bigOne = big.NewInt(1)

// Endianness selects the byte order for integer encodings.
type Endianness string

const (
	BigEndian    Endianness = "big"
	LittleEndian Endianness = "little"
)

// ToBytes encodes v modulo 2^(8*size) into exactly size bytes.
func ToBytes(v *big.Int, size int, order Endianness) []byte {
	out := make([]byte, size)
	if v.Sign() >= 0 && (v.BitLen()+7)/8 <= size {
		v.FillBytes(out)
	} else {
		m := new(big.Int).Lsh(bigOne, uint(8*size))
		new(big.Int).Mod(v, m).FillBytes(out)
	}
	if order == LittleEndian {
		reverse(out)
	}
	return out
}

// FromBytes decodes an unsigned integer.
func FromBytes(b []byte, order Endianness) *big.Int {
	if order == LittleEndian {
		c := make([]byte, len(b))
		copy(c, b)
		reverse(c)
		return new(big.Int).SetBytes(c)
	}
	return new(big.Int).SetBytes(b)
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// ParseHex parses a hexadecimal integer. A leading "0x" and surrounding
// whitespace are accepted.
func ParseHex(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return nil, errors.New("empty hex string")
	}
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex integer %q", s)
	}
	return v, nil
}

// Hex renders v as lowercase hexadecimal without a prefix.
func Hex(v *big.Int) string {
	return v.Text(16)
}

// XOR returns the bitwise exclusive or of all values.
func XOR(vals ...*big.Int) *big.Int {
	out := new(big.Int)
	for _, v := range vals {
		out.Xor(out, v)
	}
	return out
}

// CeilDiv returns ceil(a / b) for positive b.
func CeilDiv(a, b *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(a, b, new(big.Int))
	if r.Sign() > 0 {
		q.Add(q, bigOne)
	}
	return q
}
