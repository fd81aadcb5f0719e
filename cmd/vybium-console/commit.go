package main

import (
	"strconv"

	"github.com/spf13/cobra"

	vybiumconsole "github.com/vybium/vybium-console/pkg/vybium-console"
)

var (
	commitDomain     string
	commitRandomizer uint64
)

var commitCmd = &cobra.Command{
	Use:   "commit <scheme> <hex>",
	Short: "Commit to a bit string",
	Long: `Commit to a hex bit string with a scalar randomizer.

Schemes: bhp256, bhp512, bhp768, bhp1024, ped64, ped128.

Example:
  vybium-console commit bhp256 --randomizer 7 cafe`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		domain, err := vybiumconsole.ParseDomain(commitDomain)
		if err != nil {
			return err
		}
		bits, err := parseBits(args[1])
		if err != nil {
			return err
		}
		scheme := vybiumconsole.CommitmentScheme(args[0])
		commitment, err := console.Commit(scheme, domain, bits, vybiumconsole.ScalarFromUint64(commitRandomizer))
		if err != nil {
			return err
		}
		return printJSON(cmd, map[string]string{
			"scheme":     string(scheme),
			"domain":     domain.String(),
			"randomizer": strconv.FormatUint(commitRandomizer, 10),
			"commitment": commitment.String(),
		})
	},
}

func init() {
	commitCmd.Flags().StringVarP(&commitDomain, "domain", "d", vybiumconsole.DomainCommitment.String(), "domain name")
	commitCmd.Flags().Uint64VarP(&commitRandomizer, "randomizer", "r", 0, "commitment randomizer")
}
