package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vybium/vybium-console/internal/vybium-console/utils"
	vybiumconsole "github.com/vybium/vybium-console/pkg/vybium-console"
)

// GlobalFlags are shared by every command
type GlobalFlags struct {
	ConfigPath string
	LogLevel   string
	Depth      int
}

var (
	globalFlags GlobalFlags
	logger      *zap.Logger
	console     *vybiumconsole.Console
)

var rootCmd = &cobra.Command{
	Use:   "vybium-console",
	Short: "Native cryptographic primitives of the Vybium ledger",
	Long: `vybium-console exposes the console primitives from the command line:
hashes, commitments, Schnorr keys and signatures, Merkle trees and test
vectors. Field elements are given as unsigned decimal integers; bit
strings are given as hex and read little-endian.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := vybiumconsole.DefaultConfig()
		if globalFlags.ConfigPath != "" {
			var err error
			if config, err = vybiumconsole.LoadConfig(globalFlags.ConfigPath); err != nil {
				return err
			}
		}
		if globalFlags.LogLevel != "" {
			config.WithLogLevel(globalFlags.LogLevel)
		}
		if globalFlags.Depth != 0 {
			config.WithMerkleDepth(globalFlags.Depth)
		}

		var err error
		if logger, err = utils.NewLogger(config.LogLevel); err != nil {
			return err
		}
		console, err = vybiumconsole.New(config, vybiumconsole.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("initialize console: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigPath, "config", "c", "", "YAML config file (default: built-in network profile)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.LogLevel, "log-level", "", "log level: debug|info|warn|error")
	rootCmd.PersistentFlags().IntVar(&globalFlags.Depth, "depth", 0, "Merkle tree depth (default: from config)")

	rootCmd.AddCommand(hashCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(keygenCmd)
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(merkleCmd)
	rootCmd.AddCommand(vectorsCmd)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
