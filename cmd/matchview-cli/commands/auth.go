package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/davideneu/hattrick-matchview/services/keychain"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(clearCmd)
}

// terminalAuthorizer walks the user through the authorize page by
// hand: it prints the url and reads the pasted redirect back.
type terminalAuthorizer struct{}

func (terminalAuthorizer) LaunchInteractive(ctx context.Context, authorizeUrl string) (string, error) {
	fmt.Println("Open this url in a browser and approve access:")
	fmt.Println()
	fmt.Println("  " + authorizeUrl)
	fmt.Println()
	fmt.Print("Paste the url you were redirected to: ")

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return "", scanner.Err()
	}
	return strings.TrimSpace(scanner.Text()), nil
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Run the interactive oauth handshake and persist the access token.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, store, err := openClient(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		err = client.Authenticate(ctx, terminalAuthorizer{})
		if err != nil {
			store.SetStatus(ctx, keychain.StatusFailed, err.Error())
			return err
		}

		fmt.Println("authenticated")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the persisted authentication status.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		config, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := keychain.Open(config.KeychainPath)
		if err != nil {
			return err
		}
		defer store.Close()

		status, lastError, err := store.Status(ctx)
		if err != nil {
			return err
		}
		fmt.Println(status)
		if lastError != "" {
			fmt.Println("last error: " + lastError)
		}
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all persisted credentials.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		config, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := keychain.Open(config.KeychainPath)
		if err != nil {
			return err
		}
		defer store.Close()
		return store.Clear(ctx)
	},
}
