// Package main provides provrsa-cli, a command line interface for generating provable
// RSA keys and running the RSA primitives on them.
package main

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"

	provrsa "github.com/BackendStack21/provable-rsa-go"
	"github.com/BackendStack21/provable-rsa-go/internal/config"
	"github.com/BackendStack21/provable-rsa-go/internal/logging"
)

const (
	version = "1.0.0"
	appName = "provrsa-cli"
)

// app holds the state shared by all commands of one invocation.
type app struct {
	configPath string
	envFile    string
	verbose    bool
	debug      bool

	settings config.Settings
	log      logging.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logging.Logger{}.Errorf("%v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           appName,
		Short:         "Provable-prime RSA key generation and primitives",
		Long:          `Generates RSA keys whose factors are constructed with a primality certificate (FIPS 186 Appendix C.6/C.10) and runs the RSAEP/RSADP primitives of RFC 8017 on them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), figure.NewFigure("provrsa", "", true).String())
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.log = logging.Logger{
				Verbose: a.verbose,
				Debug:   a.debug,
				Out:     cmd.ErrOrStderr(),
				Err:     cmd.ErrOrStderr(),
			}
			a.log.Debugf("loading settings from config=%q env=%q", a.configPath, a.envFile)
			s, err := config.Load(a.configPath, a.envFile)
			if err != nil {
				return err
			}
			a.settings = s
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "TOML configuration file")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file with PROVRSA_* overrides")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().BoolVarP(&a.debug, "debug", "d", false, "enable debug output")

	root.AddCommand(
		a.keygenCmd(),
		a.encryptCmd(),
		a.decryptCmd(),
		a.primalityCmd(),
		a.inspectCmd(),
		a.benchmarkCmd(),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, version)
			fmt.Fprintf(cmd.OutOrStdout(), "provable-rsa library version %s\n", provrsa.Version)
		},
	}
}
