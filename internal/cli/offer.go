package cli

import (
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	addresscodec "github.com/LeJamon/goEscrowd/internal/codec/address-codec"
	"github.com/LeJamon/goEscrowd/internal/core/ledger/keylet"
	"github.com/LeJamon/goEscrowd/internal/core/tx/escrow"
)

var offerCmd = &cobra.Command{
	Use:   "offer",
	Short: "Make, take and inspect swap offers",
}

var offerMakeFlags struct {
	clientFlags
	key     string
	id      string
	mintA   string
	mintB   string
	offered string
	wanted  string
	raw     bool
}

var offerMakeCmd = &cobra.Command{
	Use:   "make",
	Short: "Lock token A and offer it for token B",
	Long: `Lock --offered of --mint-a in a vault and ask --wanted of --mint-b for it.
Amounts are whole tokens unless --raw is set. Without --id a random 64-bit
id is chosen. The offer address is printed before submitting.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &offerMakeFlags
		kp, err := loadKey(f.key)
		if err != nil {
			return err
		}
		id, err := offerID(f.id)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		client := f.client()
		offered, err := parseAmount(ctx, client, f.offered, f.mintA, f.raw)
		if err != nil {
			return err
		}
		wanted, err := parseAmount(ctx, client, f.wanted, f.mintB, f.raw)
		if err != nil {
			return err
		}

		maker := addresscodec.EncodeAddress(kp.PublicKey)
		k, bump := keylet.Offer(kp.PublicKey, id)
		log.WithFields(log.Fields{
			"offer_id": id,
			"offer":    addresscodec.EncodeAddress(k.Key),
			"bump":     bump,
		}).Info("Making offer")

		return submit(ctx, client, escrow.NewMakeOffer(maker, id, f.mintA, f.mintB, offered, wanted), kp)
	},
}

var offerTakeFlags struct {
	clientFlags
	key   string
	maker string
	id    uint64
	offer string
}

var offerTakeCmd = &cobra.Command{
	Use:   "take",
	Short: "Pay the wanted token B and receive the vault",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &offerTakeFlags
		kp, err := loadKey(f.key)
		if err != nil {
			return err
		}
		taker := addresscodec.EncodeAddress(kp.PublicKey)
		take := escrow.NewTakeOffer(taker, f.maker, f.id)
		take.Offer = f.offer
		return submit(cmd.Context(), f.client(), take, kp)
	},
}

var offerShowFlags struct {
	clientFlags
	maker string
	id    string
	offer string
}

var offerShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show an offer and its vault",
	Long:  `Show an offer named by --offer, or by --maker and --id.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &offerShowFlags
		params := map[string]interface{}{}
		switch {
		case f.offer != "":
			params["offer"] = f.offer
		case f.maker != "" && f.id != "":
			params["maker"] = f.maker
			params["offer_id"] = f.id
		default:
			return fmt.Errorf("either --offer or --maker and --id are required")
		}
		return call(cmd.Context(), f.client(), "offer_info", params)
	},
}

// offerID parses s, or picks a random id when s is empty
func offerID(s string) (uint64, error) {
	if s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid offer id %q: %w", s, err)
		}
		return id, nil
	}
	return escrow.RandomOfferID()
}

func init() {
	rootCmd.AddCommand(offerCmd)
	offerCmd.AddCommand(offerMakeCmd, offerTakeCmd, offerShowCmd)

	offerMakeFlags.register(offerMakeCmd)
	mf := offerMakeCmd.Flags()
	mf.StringVar(&offerMakeFlags.key, "key", "", "maker key file")
	mf.StringVar(&offerMakeFlags.id, "id", "", "offer id (default: random)")
	mf.StringVar(&offerMakeFlags.mintA, "mint-a", "", "mint of the offered token")
	mf.StringVar(&offerMakeFlags.mintB, "mint-b", "", "mint of the wanted token")
	mf.StringVar(&offerMakeFlags.offered, "offered", "", "amount of token A to lock")
	mf.StringVar(&offerMakeFlags.wanted, "wanted", "", "amount of token B asked")
	mf.BoolVar(&offerMakeFlags.raw, "raw", false, "amounts are in raw units")
	for _, name := range []string{"mint-a", "mint-b", "offered", "wanted"} {
		offerMakeCmd.MarkFlagRequired(name)
	}

	offerTakeFlags.register(offerTakeCmd)
	tf := offerTakeCmd.Flags()
	tf.StringVar(&offerTakeFlags.key, "key", "", "taker key file")
	tf.StringVar(&offerTakeFlags.maker, "maker", "", "maker address")
	tf.Uint64Var(&offerTakeFlags.id, "id", 0, "offer id")
	tf.StringVar(&offerTakeFlags.offer, "offer", "", "expected offer address")
	offerTakeCmd.MarkFlagRequired("maker")
	offerTakeCmd.MarkFlagRequired("id")

	offerShowFlags.register(offerShowCmd)
	sf := offerShowCmd.Flags()
	sf.StringVar(&offerShowFlags.maker, "maker", "", "maker address")
	sf.StringVar(&offerShowFlags.id, "id", "", "offer id")
	sf.StringVar(&offerShowFlags.offer, "offer", "", "offer address")
}
