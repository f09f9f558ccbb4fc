package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/BackendStack21/provable-rsa-go/internal/config"
	"github.com/BackendStack21/provable-rsa-go/primality"
)

func (a *app) primalityCmd() *cobra.Command {
	var rounds int
	cmd := &cobra.Command{
		Use:   "primality N [N...]",
		Short: "Test integers with Miller-Rabin followed by a Lucas test",
		Long: `Runs trial division, Miller-Rabin with --rounds random bases and a strong Lucas
test on each argument. Integers are decimal, or hex with a 0x prefix.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if rounds < 1 {
				return fmt.Errorf("--rounds must be positive")
			}
			out := cmd.OutOrStdout()
			for _, arg := range args {
				n, err := config.ParseInteger(arg)
				if err != nil {
					return err
				}
				a.log.Debugf("testing %d-bit integer with %d rounds", n.BitLen(), rounds)
				if primality.IsProbablePrime(n, rounds) {
					fmt.Fprintf(out, "%s: %s\n", arg, color.GreenString("probably prime"))
				} else {
					fmt.Fprintf(out, "%s: %s\n", arg, color.RedString("composite"))
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&rounds, "rounds", "r", 64, "Miller-Rabin rounds")
	return cmd
}
