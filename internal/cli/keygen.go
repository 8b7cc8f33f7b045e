package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	addresscodec "github.com/LeJamon/goEscrowd/internal/codec/address-codec"
	"github.com/LeJamon/goEscrowd/internal/crypto/algorithms/ed25519"
)

var keygenOut string

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an ed25519 keypair",
	Long: `Generate a random ed25519 keypair. The public key is the account
address. A keypair can also serve as a mint address.

With --out the keypair is written to a key file readable by --key.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kp, err := ed25519.NewED25519Provider().GenerateRandomKeypair()
		if err != nil {
			return err
		}
		if keygenOut == "" {
			return printJSON(keyFile{
				Address: addresscodec.EncodeAddress(kp.PublicKey),
				Secret:  kp.Secret(),
			})
		}
		if err := writeKey(keygenOut, kp); err != nil {
			return err
		}
		fmt.Println(addresscodec.EncodeAddress(kp.PublicKey))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().StringVarP(&keygenOut, "out", "o", "", "write the keypair to this file")
}
