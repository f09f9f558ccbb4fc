package keyio

import (
	"encoding/asn1"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"

	provrsa "github.com/BackendStack21/provable-rsa-go"
)

// PEM block types.
const (
	PEMPublicKey  = "RSA PUBLIC KEY"
	PEMPrivateKey = "RSA PRIVATE KEY"
)

// pkcs1PublicKey mirrors the RSAPublicKey ASN.1 structure. E is an INTEGER of any size.
type pkcs1PublicKey struct {
	N *big.Int
	E *big.Int
}

type pkcs1OtherPrime struct {
	Prime *big.Int
	Exp   *big.Int
	Coeff *big.Int
}

// pkcs1PrivateKey mirrors the RSAPrivateKey ASN.1 structure of RFC 8017 appendix A.1.2.
type pkcs1PrivateKey struct {
	Version     int
	N           *big.Int
	E           *big.Int
	D           *big.Int
	P           *big.Int
	Q           *big.Int
	Dp          *big.Int
	Dq          *big.Int
	Qinv        *big.Int
	OtherPrimes []pkcs1OtherPrime `asn1:"optional,omitempty"`
}

// MarshalPKCS1PublicKey encodes pub as a DER RSAPublicKey.
func MarshalPKCS1PublicKey(pub *provrsa.PublicKey) ([]byte, error) {
	if pub == nil || pub.N == nil || pub.E == nil {
		return nil, fmt.Errorf("%w: missing public key", provrsa.ErrInvalidKey)
	}
	return asn1.Marshal(pkcs1PublicKey{N: pub.N, E: pub.E})
}

// ParsePKCS1PublicKey decodes a DER RSAPublicKey.
func ParsePKCS1PublicKey(der []byte) (*provrsa.PublicKey, error) {
	var pub pkcs1PublicKey
	rest, err := asn1.Unmarshal(der, &pub)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, asn1.SyntaxError{Msg: "trailing data"}
	}
	if pub.N.Sign() <= 0 || pub.E.Sign() <= 0 {
		return nil, fmt.Errorf("%w: public key contains zero or negative value", provrsa.ErrInvalidKey)
	}
	return &provrsa.PublicKey{N: pub.N, E: pub.E}, nil
}

// MarshalPKCS1PrivateKey encodes kp as a DER RSAPrivateKey. Both the private exponent and
// the CRT form must be present. Keys with more than two primes use version 1.
func MarshalPKCS1PrivateKey(kp *provrsa.KeyPair) ([]byte, error) {
	if kp == nil || kp.Simple == nil || kp.CRT == nil || kp.PublicKey.N == nil || kp.PublicKey.E == nil {
		return nil, fmt.Errorf("%w: PKCS#1 needs the public key, d and the CRT values", provrsa.ErrInvalidKey)
	}
	crt := kp.CRT
	priv := pkcs1PrivateKey{
		N:    kp.PublicKey.N,
		E:    kp.PublicKey.E,
		D:    kp.Simple.D,
		P:    crt.P,
		Q:    crt.Q,
		Dp:   crt.Dp,
		Dq:   crt.Dq,
		Qinv: crt.Qinv,
	}
	if len(crt.Additional) > 0 {
		priv.Version = 1
		priv.OtherPrimes = make([]pkcs1OtherPrime, len(crt.Additional))
		for i, a := range crt.Additional {
			priv.OtherPrimes[i] = pkcs1OtherPrime{Prime: a.R, Exp: a.D, Coeff: a.T}
		}
	}
	return asn1.Marshal(priv)
}

// ParsePKCS1PrivateKey decodes a DER RSAPrivateKey into a key pair.
func ParsePKCS1PrivateKey(der []byte) (*provrsa.KeyPair, error) {
	var priv pkcs1PrivateKey
	rest, err := asn1.Unmarshal(der, &priv)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, asn1.SyntaxError{Msg: "trailing data"}
	}
	if priv.Version > 1 {
		return nil, errors.New("unsupported PKCS#1 private key version")
	}
	if len(priv.OtherPrimes) > 0 && priv.Version != 1 {
		return nil, errors.New("additional primes require PKCS#1 version 1")
	}
	for _, v := range []*big.Int{priv.N, priv.E, priv.D, priv.P, priv.Q} {
		if v.Sign() <= 0 {
			return nil, fmt.Errorf("%w: private key contains zero or negative value", provrsa.ErrInvalidKey)
		}
	}
	for _, v := range []*big.Int{priv.Dp, priv.Dq, priv.Qinv} {
		if v.Sign() < 0 {
			return nil, fmt.Errorf("%w: private key contains negative CRT value", provrsa.ErrInvalidKey)
		}
	}

	kp := &provrsa.KeyPair{
		PublicKey: provrsa.PublicKey{N: priv.N, E: priv.E},
		Simple:    &provrsa.SimplePrivateKey{N: new(big.Int).Set(priv.N), D: priv.D},
		CRT: &provrsa.CRTPrivateKey{
			P:    priv.P,
			Q:    priv.Q,
			Dp:   priv.Dp,
			Dq:   priv.Dq,
			Qinv: priv.Qinv,
		},
	}
	for _, o := range priv.OtherPrimes {
		if o.Prime.Sign() <= 0 {
			return nil, fmt.Errorf("%w: private key contains zero or negative prime", provrsa.ErrInvalidKey)
		}
		if o.Exp.Sign() < 0 || o.Coeff.Sign() < 0 {
			return nil, fmt.Errorf("%w: private key contains negative CRT value", provrsa.ErrInvalidKey)
		}
		kp.CRT.Additional = append(kp.CRT.Additional, provrsa.AdditionalPrimeData{R: o.Prime, D: o.Exp, T: o.Coeff})
	}
	return kp, nil
}

// EncodePEM wraps der in a PEM block of the given type.
func EncodePEM(blockType string, der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
}

// DecodePEM returns the DER payload of the first PEM block, which must have the given type.
func DecodePEM(blockType string, data []byte) ([]byte, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	if block.Type != blockType {
		return nil, fmt.Errorf("unexpected PEM block %q, want %q", block.Type, blockType)
	}
	return block.Bytes, nil
}
