package main

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	provrsa "github.com/BackendStack21/provable-rsa-go"
	"github.com/BackendStack21/provable-rsa-go/keygen"
	"github.com/BackendStack21/provable-rsa-go/primality"
	"github.com/BackendStack21/provable-rsa-go/primitives"
)

func (a *app) benchmarkCmd() *cobra.Command {
	var iterations int
	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Time key generation and the RSA primitives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if iterations < 1 {
				iterations = 1
			}
			return a.runBenchmark(cmd, iterations)
		},
	}
	cmd.Flags().IntVarP(&iterations, "iterations", "n", 3, "iterations per operation")
	return cmd
}

func (a *app) runBenchmark(cmd *cobra.Command, iterations int) error {
	params, err := a.settings.Params()
	if err != nil {
		return err
	}
	cfg, err := a.settings.Config(a.log)
	if err != nil {
		return err
	}
	e, err := a.settings.PublicExponent()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	avg := func(total time.Duration) time.Duration { return total / time.Duration(iterations) }

	fmt.Fprintf(out, "Provable RSA Benchmark Results\n")
	fmt.Fprintf(out, "==============================\n")
	fmt.Fprintf(out, "Modulus: %d bits, %d primes\n", params.ModulusBits, cfg.Primes)
	fmt.Fprintf(out, "Iterations: %d\n\n", iterations)

	var (
		total time.Duration
		kp    *provrsa.KeyPair
	)
	for i := 0; i < iterations; i++ {
		start := time.Now()
		kp, err = keygen.GenerateKeyPair(params, cfg, e)
		total += time.Since(start)
		if err != nil {
			return fmt.Errorf("keygen: %w", err)
		}
	}
	fmt.Fprintf(out, "  KeyGen:         %v (avg)\n", avg(total))

	m, err := rand.Int(rand.Reader, kp.PublicKey.N)
	if err != nil {
		return err
	}
	total = 0
	c := m
	for i := 0; i < iterations; i++ {
		start := time.Now()
		c, err = primitives.Encrypt(&kp.PublicKey, m)
		total += time.Since(start)
		if err != nil {
			return fmt.Errorf("encrypt: %w", err)
		}
	}
	fmt.Fprintf(out, "  Encrypt:        %v (avg)\n", avg(total))

	for _, run := range []struct {
		label string
		priv  provrsa.PrivateKey
	}{
		{"Decrypt (CRT):  ", kp.CRT},
		{"Decrypt (n, d): ", kp.Simple},
	} {
		total = 0
		for i := 0; i < iterations; i++ {
			start := time.Now()
			got, err := primitives.Decrypt(run.priv, c)
			total += time.Since(start)
			if err != nil {
				return fmt.Errorf("decrypt: %w", err)
			}
			if got.Cmp(m) != 0 {
				return errors.New("decrypt: round trip mismatch")
			}
		}
		fmt.Fprintf(out, "  %s%v (avg)\n", run.label, avg(total))
	}

	total = 0
	for i := 0; i < iterations; i++ {
		start := time.Now()
		ok := primality.IsProbablePrime(kp.CRT.P, params.MillerRabinRounds)
		total += time.Since(start)
		if !ok {
			return errors.New("primality: generated factor rejected")
		}
	}
	fmt.Fprintf(out, "  Primality:      %v (avg)\n", avg(total))

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Benchmark complete!")
	return nil
}
