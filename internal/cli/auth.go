package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dlfarias/teamvault/internal/auth"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored bearer token",
}

var authSetCmd = &cobra.Command{
	Use:   "set TOKEN",
	Short: "Store a bearer token in the OS keyring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := auth.Store(args[0]); err != nil {
			return err
		}
		fmt.Println("Token stored")
		return nil
	},
	SilenceUsage: true,
}

var authClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored bearer token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := auth.Clear(); err != nil {
			return err
		}
		fmt.Println("Token cleared")
		return nil
	},
	SilenceUsage: true,
}

func init() {
	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authClearCmd)
}
