package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/noor-reader/noor/internal/daemon"
)

// openDaemon builds a daemon for one-shot commands. CLI runs log warnings
// and above only so the command output stays readable.
func openDaemon() (*daemon.Daemon, error) {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if os.Getenv("NOOR_LOG_LEVEL") == "" {
		cfg.Logging.Level = "warn"
	}
	d, err := daemon.NewWithConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize daemon: %w", err)
	}
	return d, nil
}

// addUserFlags registers --user and --guest on cmd.
func addUserFlags(cmd *cobra.Command, user *string, guest *bool) {
	cmd.Flags().StringVarP(user, "user", "u", "", "Account user id")
	if guest != nil {
		cmd.Flags().BoolVar(guest, "guest", false, "Use the local guest-mode streak")
	}
}

func requireUser(user string) error {
	if user == "" {
		return errors.New("--user is required")
	}
	return nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
