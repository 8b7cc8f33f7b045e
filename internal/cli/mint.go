package cli

import (
	"github.com/spf13/cobra"

	addresscodec "github.com/LeJamon/goEscrowd/internal/codec/address-codec"
	"github.com/LeJamon/goEscrowd/internal/core/tx/token"
)

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Create and issue tokens",
}

var mintCreateFlags struct {
	clientFlags
	key      string
	mint     string
	mintKey  string
	decimals uint8
}

var mintCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a mint with the signer as authority",
	Long: `Create a mint. The mint address must be an ed25519 public key, given
with --mint or taken from --mint-key. The signer (--key) becomes the mint
authority.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &mintCreateFlags
		kp, err := loadKey(f.key)
		if err != nil {
			return err
		}
		mint, err := addressOrKey(f.mint, f.mintKey)
		if err != nil {
			return err
		}
		authority := addresscodec.EncodeAddress(kp.PublicKey)
		return submit(cmd.Context(), f.client(), token.NewMintCreate(authority, mint, f.decimals), kp)
	},
}

var mintToFlags struct {
	clientFlags
	key    string
	mint   string
	to     string
	amount string
	raw    bool
}

var mintToCmd = &cobra.Command{
	Use:   "to",
	Short: "Issue tokens into an account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &mintToFlags
		kp, err := loadKey(f.key)
		if err != nil {
			return err
		}
		client := f.client()
		amount, err := parseAmount(cmd.Context(), client, f.amount, f.mint, f.raw)
		if err != nil {
			return err
		}
		authority := addresscodec.EncodeAddress(kp.PublicKey)
		to := f.to
		if to == "" {
			to = authority
		}
		return submit(cmd.Context(), client, token.NewMintTo(authority, f.mint, to, amount), kp)
	},
}

func init() {
	rootCmd.AddCommand(mintCmd)
	mintCmd.AddCommand(mintCreateCmd, mintToCmd)

	mintCreateFlags.register(mintCreateCmd)
	mintCreateCmd.Flags().StringVar(&mintCreateFlags.key, "key", "", "authority key file")
	mintCreateCmd.Flags().StringVar(&mintCreateFlags.mint, "mint", "", "mint address")
	mintCreateCmd.Flags().StringVar(&mintCreateFlags.mintKey, "mint-key", "", "key file whose public key is the mint address")
	mintCreateCmd.Flags().Uint8Var(&mintCreateFlags.decimals, "decimals", 9, "decimal places of the UI amount")

	mintToFlags.register(mintToCmd)
	mintToCmd.Flags().StringVar(&mintToFlags.key, "key", "", "authority key file")
	mintToCmd.Flags().StringVar(&mintToFlags.mint, "mint", "", "mint address")
	mintToCmd.Flags().StringVar(&mintToFlags.to, "to", "", "recipient (default: the authority)")
	mintToCmd.Flags().StringVar(&mintToFlags.amount, "amount", "", "amount in whole tokens, e.g. 1.5")
	mintToCmd.Flags().BoolVar(&mintToFlags.raw, "raw", false, "amount is in raw units")
	mintToCmd.MarkFlagRequired("mint")
	mintToCmd.MarkFlagRequired("amount")
}
