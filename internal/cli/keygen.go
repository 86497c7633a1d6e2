package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usereml/lightecho-stellar-oracle/internal/crypto"
)

var (
	keyType string
	keySeed string
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a signing key and its account address",
	Long: `Generate an ed25519 or secp256k1 key pair. The address is what initialize
and write_admin take as admin; the private key is what rpc --secret takes.
With --seed the key is derived deterministically from the passphrase.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kt, err := crypto.ParseKeyType(keyType)
		if err != nil {
			return err
		}
		var seed []byte
		if keySeed != "" {
			seed = []byte(keySeed)
		}
		kp, err := crypto.GenerateKeyPair(kt, seed)
		if err != nil {
			return err
		}
		addr, err := kp.Address()
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(map[string]string{
			"key_type":    kt.String(),
			"address":     addr,
			"public_key":  kp.PublicHex(),
			"private_key": kp.PrivateHex(),
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().StringVar(&keyType, "type", "ed25519", "key type: ed25519 or secp256k1")
	keygenCmd.Flags().StringVar(&keySeed, "seed", "", "passphrase to derive the key from (random when empty)")
}
