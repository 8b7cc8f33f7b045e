package cli

import (
	"github.com/spf13/cobra"
)

var balanceFlags clientFlags

var balanceCmd = &cobra.Command{
	Use:   "balance <account> <mint>",
	Short: "Show the balance of an account's associated token account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd.Context(), balanceFlags.client(), "account_balance", map[string]interface{}{
			"account": args[0],
			"mint":    args[1],
		})
	},
}

var mintInfoCmd = &cobra.Command{
	Use:   "info <mint>",
	Short: "Show a mint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd.Context(), balanceFlags.client(), "mint_info", map[string]interface{}{"mint": args[0]})
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	mintCmd.AddCommand(mintInfoCmd)
	balanceFlags.register(balanceCmd)
	balanceFlags.register(mintInfoCmd)
}
