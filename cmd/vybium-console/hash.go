package main

import (
	"fmt"

	"github.com/spf13/cobra"

	vybiumconsole "github.com/vybium/vybium-console/pkg/vybium-console"
)

var hashDomain string

var hashCmd = &cobra.Command{
	Use:   "hash <algorithm> <input...>",
	Short: "Hash field elements or a bit string",
	Long: `Hash the input under a domain.

Field algorithms (psd2, psd4, psd8, poseidon2) take decimal field elements.
Bit algorithms (bhp256, bhp512, bhp768, bhp1024, ped64, ped128) take a
single hex string.

Examples:
  vybium-console hash psd4 1 2 3
  vybium-console hash bhp256 --domain prf deadbeef`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		domain, err := vybiumconsole.ParseDomain(hashDomain)
		if err != nil {
			return err
		}
		algorithm, input := args[0], args[1:]

		fieldHashes := map[string]func(vybiumconsole.Domain, []vybiumconsole.Field) (vybiumconsole.Field, error){
			"psd2":      console.HashPSD2,
			"psd4":      console.HashPSD4,
			"psd8":      console.HashPSD8,
			"poseidon2": console.HashPoseidon2,
		}
		bitHashes := map[string]func(vybiumconsole.Domain, []bool) (vybiumconsole.Field, error){
			"bhp256":  console.HashBHP256,
			"bhp512":  console.HashBHP512,
			"bhp768":  console.HashBHP768,
			"bhp1024": console.HashBHP1024,
			"ped64":   console.HashPED64,
			"ped128":  console.HashPED128,
		}

		var digest vybiumconsole.Field
		switch {
		case fieldHashes[algorithm] != nil:
			fs, err := parseFields(input)
			if err != nil {
				return err
			}
			if digest, err = fieldHashes[algorithm](domain, fs); err != nil {
				return err
			}
		case bitHashes[algorithm] != nil:
			if len(input) != 1 {
				return fmt.Errorf("%s takes one hex bit string, got %d arguments", algorithm, len(input))
			}
			bits, err := parseBits(input[0])
			if err != nil {
				return err
			}
			if digest, err = bitHashes[algorithm](domain, bits); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown algorithm %q", algorithm)
		}

		logger.Debug("hashed input", zapAlgorithm(algorithm), zapDomain(domain))
		return printJSON(cmd, map[string]string{
			"algorithm": algorithm,
			"domain":    domain.String(),
			"digest":    digest.String(),
		})
	},
}

func init() {
	hashCmd.Flags().StringVarP(&hashDomain, "domain", "d", vybiumconsole.DomainCommitment.String(), "domain name")
}
