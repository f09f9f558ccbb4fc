package keyio

import (
	"testing"
)

// FuzzDeserializePublicKey tests public key decoding with random inputs
func FuzzDeserializePublicKey(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0})
	f.Add([]byte{0, 0, 0, 0})
	f.Add([]byte{0xff, 0xff, 0xff, 0xff}) // Max uint32
	f.Add([]byte{1, 0, 0, 0, 7, 1, 0, 0, 0, 3})

	f.Fuzz(func(t *testing.T, data []byte) {
		// Should not panic, may return error
		_, _ = DeserializePublicKey(data)
	})
}

// FuzzDeserializePrivateKey tests private key decoding with random inputs
func FuzzDeserializePrivateKey(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{tagSimple})
	f.Add([]byte{tagCRT, 0xff, 0xff, 0xff, 0xff})
	f.Add(make([]byte, 32))

	f.Fuzz(func(t *testing.T, data []byte) {
		_, _ = DeserializePrivateKey(data)
	})
}

// FuzzParsePKCS1PrivateKey tests DER decoding with random inputs
func FuzzParsePKCS1PrivateKey(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0x30, 0x00})
	f.Add([]byte{0x30, 0x03, 0x02, 0x01, 0x00})

	f.Fuzz(func(t *testing.T, data []byte) {
		_, _ = ParsePKCS1PrivateKey(data)
		_, _ = ParsePKCS1PublicKey(data)
	})
}

// FuzzUnmarshalJSON tests JSON import with random inputs
func FuzzUnmarshalJSON(f *testing.F) {
	f.Add([]byte(`{}`))
	f.Add([]byte(`{"id":"00000000-0000-0000-0000-000000000000","public_key":{"n":"0x10","e":"3"}}`))
	f.Add([]byte(`{"primes":[{"prime":"5"}]}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		_, _ = UnmarshalJSON(data)
	})
}
