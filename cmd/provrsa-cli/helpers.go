package main

import (
	"bytes"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"

	provrsa "github.com/BackendStack21/provable-rsa-go"
	"github.com/BackendStack21/provable-rsa-go/keyio"
)

// startSpinner shows a spinner on stderr while a long operation runs. It stays silent
// when stderr is not a terminal or when verbose output would interleave with it.
// The returned function stops the spinner.
func (a *app) startSpinner(message string) func() {
	if a.verbose || a.debug || !term.IsTerminal(int(os.Stderr.Fd())) {
		a.log.Infof("%s", message)
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message
	// Ignore color errors - continue without colored spinner if it fails.
	_ = s.Color("cyan")
	s.Start()
	return s.Stop
}

// writeOutput writes data to filename with the given permissions, or to w when
// filename is empty.
func writeOutput(w io.Writer, data []byte, filename string, perm os.FileMode) error {
	if filename == "" {
		_, err := w.Write(ensureNewline(data))
		return err
	}
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	// Ensure permissions are enforced even if umask is permissive
	return os.Chmod(filename, perm)
}

func ensureNewline(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\n' {
		return b
	}
	return append(b, '\n')
}

// loadKey reads a key file in any supported format: PKCS#1 PEM, the JSON export, or
// hex-encoded binary. Keys that carry only part of the material come back with the
// missing parts nil.
func loadKey(path string) (*provrsa.KeyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)

	switch {
	case bytes.HasPrefix(data, []byte("-----BEGIN")):
		block, _ := pem.Decode(data)
		if block == nil {
			return nil, errors.New("malformed PEM file")
		}
		switch block.Type {
		case keyio.PEMPrivateKey:
			return keyio.ParsePKCS1PrivateKey(block.Bytes)
		case keyio.PEMPublicKey:
			pub, err := keyio.ParsePKCS1PublicKey(block.Bytes)
			if err != nil {
				return nil, err
			}
			return &provrsa.KeyPair{PublicKey: *pub}, nil
		default:
			return nil, fmt.Errorf("unsupported PEM block %q", block.Type)
		}
	case bytes.HasPrefix(data, []byte("{")):
		return keyio.UnmarshalJSON(data)
	}

	raw, err := hex.DecodeString(string(data))
	if err != nil {
		return nil, fmt.Errorf("unrecognized key format: %w", err)
	}
	priv, err := keyio.DeserializePrivateKey(raw)
	if err != nil {
		pub, pubErr := keyio.DeserializePublicKey(raw)
		if pubErr != nil {
			return nil, fmt.Errorf("unrecognized key format: %w", errors.Join(err, pubErr))
		}
		return &provrsa.KeyPair{PublicKey: *pub}, nil
	}
	kp := &provrsa.KeyPair{PublicKey: provrsa.PublicKey{N: priv.Modulus()}}
	switch k := priv.(type) {
	case *provrsa.SimplePrivateKey:
		kp.Simple = k
	case *provrsa.CRTPrivateKey:
		kp.CRT = k
	}
	return kp, nil
}

// parseHexInt parses a hex integer argument.
func parseHexInt(name, v string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(trimHexPrefix(v), 16)
	if !ok {
		return nil, fmt.Errorf("--%s: invalid hex integer", name)
	}
	return n, nil
}

func trimHexPrefix(v string) string {
	v = strings.TrimSpace(v)
	return strings.TrimPrefix(strings.TrimPrefix(v, "0x"), "0X")
}
