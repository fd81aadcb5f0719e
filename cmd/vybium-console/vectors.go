package main

import (
	"encoding/hex"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vybium/vybium-console/internal/vybium-console/utils"
	vybiumconsole "github.com/vybium/vybium-console/pkg/vybium-console"
)

var (
	vectorsLabel string
	vectorsCount int
)

// Vector is one reproducible set of primitive outputs
type Vector struct {
	Input        []string          `json:"input"`
	Bits         string            `json:"bits"`
	Hashes       map[string]string `json:"hashes"`
	Randomizer   string            `json:"randomizer"`
	Commitments  map[string]string `json:"commitments"`
	PRF          string            `json:"prf"`
	VerifyingKey string            `json:"verifying_key"`
	Signature    string            `json:"signature"`
	Homomorphic  string            `json:"homomorphic"`
}

var vectorsCmd = &cobra.Command{
	Use:   "vectors",
	Short: "Print deterministic test vectors",
	Long: `Print test vectors derived from a labelled SHAKE256 transcript. The same
label and count always produce the same output.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ch := utils.NewChannel(vectorsLabel)
		vectors := make([]Vector, 0, vectorsCount)
		for i := 0; i < vectorsCount; i++ {
			v, err := vector(ch)
			if err != nil {
				return err
			}
			vectors = append(vectors, v)
		}
		logger.Debug("generated vectors", zap.Int("count", len(vectors)), zap.Int("transcript", len(ch.Transcript())))
		return printJSON(cmd, vectors)
	},
}

func vector(ch *utils.Channel) (Vector, error) {
	domain := vybiumconsole.DomainCommitment
	input := []vybiumconsole.Field{ch.ReceiveField(), ch.ReceiveField(), ch.ReceiveField()}
	bits := ch.ReceiveBits(64)
	randomizer := ch.ReceiveScalar()

	v := Vector{
		Input:       fieldStrings(input),
		Bits:        hex.EncodeToString(utils.BitsToBytesLE(bits)),
		Hashes:      make(map[string]string),
		Randomizer:  randomizer.String(),
		Commitments: make(map[string]string),
	}

	fieldHashes := map[string]func(vybiumconsole.Domain, []vybiumconsole.Field) (vybiumconsole.Field, error){
		"psd2":      console.HashPSD2,
		"psd4":      console.HashPSD4,
		"psd8":      console.HashPSD8,
		"poseidon2": console.HashPoseidon2,
	}
	for name, h := range fieldHashes {
		d, err := h(domain, input)
		if err != nil {
			return Vector{}, err
		}
		v.Hashes[name] = d.String()
	}
	bitHashes := map[string]func(vybiumconsole.Domain, []bool) (vybiumconsole.Field, error){
		"bhp256":  console.HashBHP256,
		"bhp512":  console.HashBHP512,
		"bhp768":  console.HashBHP768,
		"bhp1024": console.HashBHP1024,
		"ped64":   console.HashPED64,
		"ped128":  console.HashPED128,
	}
	for name, h := range bitHashes {
		d, err := h(domain, bits)
		if err != nil {
			return Vector{}, err
		}
		v.Hashes[name] = d.String()
	}

	for _, scheme := range vybiumconsole.CommitmentSchemes() {
		c, err := console.Commit(scheme, domain, bits, randomizer)
		if err != nil {
			return Vector{}, err
		}
		v.Commitments[string(scheme)] = c.String()
	}

	prf, err := console.PRF(input[0], input[1:])
	if err != nil {
		return Vector{}, err
	}
	v.PRF = prf.String()

	kp, err := console.KeyPairFromSeed(input[0])
	if err != nil {
		return Vector{}, err
	}
	sig, err := console.Sign(kp.SigningKey, input, ch)
	if err != nil {
		return Vector{}, err
	}
	vk := kp.VerifyingKey.Bytes()
	enc := sig.Bytes()
	v.VerifyingKey = hex.EncodeToString(vk[:])
	v.Signature = hex.EncodeToString(enc[:])

	acc, err := console.HomomorphicHash(vybiumconsole.DomainHomomorphic, input)
	if err != nil {
		return Vector{}, err
	}
	v.Homomorphic = acc.String()
	return v, nil
}

func init() {
	vectorsCmd.Flags().StringVar(&vectorsLabel, "label", "vybium-console/vectors", "transcript label")
	vectorsCmd.Flags().IntVarP(&vectorsCount, "count", "n", 4, "number of vectors")
}
