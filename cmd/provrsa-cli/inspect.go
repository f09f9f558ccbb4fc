package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/BackendStack21/provable-rsa-go/keygen"
	"github.com/BackendStack21/provable-rsa-go/keyio"
)

// keySummary is the structured form of inspect's report.
type keySummary struct {
	ModulusBits int    `json:"modulus_bits"`
	Exponent    string `json:"exponent,omitempty"`
	Primes      int    `json:"primes,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Private     bool   `json:"private"`
	Valid       bool   `json:"valid"`
	Problem     string `json:"problem,omitempty"`
}

func (a *app) inspectCmd() *cobra.Command {
	var (
		keyPath string
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show key parameters and re-check the key's invariants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if keyPath == "" {
				return errors.New("--key is required")
			}
			kp, err := loadKey(keyPath)
			if err != nil {
				return err
			}

			s := keySummary{
				ModulusBits: kp.PublicKey.N.BitLen(),
				Private:     kp.Simple != nil || kp.CRT != nil,
			}
			if kp.PublicKey.E != nil {
				s.Exponent = kp.PublicKey.E.String()
				s.Fingerprint = keyio.Fingerprint(&kp.PublicKey)
			}
			if kp.CRT != nil {
				s.Primes = kp.CRT.PrimeCount()
			}
			if err := keygen.Validate(kp); err != nil {
				s.Problem = err.Error()
			} else {
				s.Valid = true
			}
			a.log.Debugf("loaded key from %s", keyPath)

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := json.MarshalIndent(s, "", "  ")
				if err != nil {
					return err
				}
				return writeOutput(out, data, "", 0)
			}
			fmt.Fprintf(out, "Modulus:     %d bits\n", s.ModulusBits)
			if s.Exponent != "" {
				fmt.Fprintf(out, "Exponent:    %s\n", s.Exponent)
				fmt.Fprintf(out, "Fingerprint: %s\n", s.Fingerprint)
			}
			if s.Primes > 0 {
				fmt.Fprintf(out, "Primes:      %d\n", s.Primes)
			}
			fmt.Fprintf(out, "Private:     %t\n", s.Private)
			if s.Valid {
				fmt.Fprintf(out, "Status:      %s\n", color.GreenString("valid"))
			} else {
				fmt.Fprintf(out, "Status:      %s (%s)\n", color.RedString("invalid"), s.Problem)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&keyPath, "key", "k", "", "key file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}
