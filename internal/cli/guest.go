package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	addUserFlags(importGuestCmd, &importUser, nil)
	addUserFlags(tokenCmd, &tokenUser, nil)
	rootCmd.AddCommand(importGuestCmd, tokenCmd)
}

var (
	importUser string
	tokenUser  string
)

var importGuestCmd = &cobra.Command{
	Use:   "import-guest",
	Short: "Merge the local guest streak into an account (once)",
	RunE:  runImportGuest,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API bearer token for a user",
	Long:  `Issue a signed bearer token using auth.jwt_secret from the config.`,
	RunE:  runToken,
}

func runImportGuest(cmd *cobra.Command, args []string) error {
	if err := requireUser(importUser); err != nil {
		return err
	}

	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	s, err := d.Engine.ImportGuest(context.Background(), importUser)
	if err != nil {
		return err
	}
	fmt.Printf("Imported. Streak: %d day(s) (longest %d)\n", s.CurrentStreak, s.LongestStreak)
	return nil
}

func runToken(cmd *cobra.Command, args []string) error {
	if err := requireUser(tokenUser); err != nil {
		return err
	}

	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	if d.Config.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is not set (config.toml or NOOR_JWT_SECRET)")
	}
	tok, err := d.Auth.Issue(tokenUser)
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}
