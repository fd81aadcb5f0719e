package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	vybiumconsole "github.com/vybium/vybium-console/pkg/vybium-console"
)

var (
	keySeed      uint64
	verifyKeyHex string
	signatureHex string
)

type keyOutput struct {
	SigningKey   string `json:"signing_key"`
	VerifyingKey string `json:"verifying_key"`
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a Schnorr key pair",
	Long: `Generate a key pair from the system randomness, or derive it from a
field seed with --seed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kp, err := keyPair(cmd)
		if err != nil {
			return err
		}
		sk := kp.SigningKey.Bytes()
		vk := kp.VerifyingKey.Bytes()
		return printJSON(cmd, keyOutput{
			SigningKey:   hex.EncodeToString(sk[:]),
			VerifyingKey: hex.EncodeToString(vk[:]),
		})
	},
}

var signCmd = &cobra.Command{
	Use:   "sign --seed <n> <message...>",
	Short: "Sign field elements with a seeded key",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("seed") {
			return fmt.Errorf("sign requires --seed")
		}
		kp, err := keyPair(cmd)
		if err != nil {
			return err
		}
		msg, err := parseFields(args)
		if err != nil {
			return err
		}
		sig, err := console.Sign(kp.SigningKey, msg, rand.Reader)
		if err != nil {
			return err
		}
		enc := sig.Bytes()
		vk := kp.VerifyingKey.Bytes()
		return printJSON(cmd, map[string]string{
			"verifying_key": hex.EncodeToString(vk[:]),
			"signature":     hex.EncodeToString(enc[:]),
		})
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify --key <hex> --signature <hex> <message...>",
	Short: "Verify a Schnorr signature over field elements",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rawKey, err := parseHex(verifyKeyHex)
		if err != nil {
			return fmt.Errorf("verifying key: %w", err)
		}
		vk, err := vybiumconsole.GroupFromBytes(rawKey)
		if err != nil {
			return err
		}
		rawSig, err := parseHex(signatureHex)
		if err != nil {
			return fmt.Errorf("signature: %w", err)
		}
		sig, err := vybiumconsole.SignatureFromBytes(rawSig)
		if err != nil {
			return err
		}
		msg, err := parseFields(args)
		if err != nil {
			return err
		}
		valid := console.Verify(vk, msg, sig)
		if err := printJSON(cmd, map[string]bool{"valid": valid}); err != nil {
			return err
		}
		if !valid {
			return fmt.Errorf("signature does not verify")
		}
		return nil
	},
}

func keyPair(cmd *cobra.Command) (*vybiumconsole.KeyPair, error) {
	if cmd.Flags().Changed("seed") {
		return console.KeyPairFromSeed(vybiumconsole.FieldFromUint64(keySeed))
	}
	return console.GenerateKeyPair(rand.Reader)
}

func init() {
	keygenCmd.Flags().Uint64Var(&keySeed, "seed", 0, "derive the key from this field seed")
	signCmd.Flags().Uint64Var(&keySeed, "seed", 0, "derive the key from this field seed")
	verifyCmd.Flags().StringVar(&verifyKeyHex, "key", "", "verifying key (hex)")
	verifyCmd.Flags().StringVar(&signatureHex, "signature", "", "signature (hex)")
	_ = verifyCmd.MarkFlagRequired("key")
	_ = verifyCmd.MarkFlagRequired("signature")
}
