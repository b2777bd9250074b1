package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/davideneu/hattrick-matchview/lib/configutil"
	"github.com/davideneu/hattrick-matchview/lib/scrapers/chpp"
	"github.com/davideneu/hattrick-matchview/services/keychain"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "matchview-cli",
	Short: "matchview-cli fetches and scrapes Hattrick match data.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type Config struct {
	ConsumerKey    string `json:"consumer_key"`
	ConsumerSecret string `json:"consumer_secret"`
	CallbackUrl    string `json:"callback_url"`
	KeychainPath   string `json:"keychain_path"`
	BaseUrl        string `json:"base_url"`
}

func loadConfig() (Config, error) {
	config, err := configutil.ReadRecursively[Config]("matchview.json5")
	if err != nil {
		return Config{}, fmt.Errorf("read matchview.json5: %w", err)
	}
	if config.CallbackUrl == "" {
		config.CallbackUrl = "oob"
	}
	if config.KeychainPath == "" {
		config.KeychainPath = "matchview.db"
	}
	return config, nil
}

// openClient builds a chpp client wired to the keychain, with any
// previously persisted credentials installed. The caller owns closing
// the returned store.
func openClient(ctx context.Context) (*chpp.Client, keychain.Store, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, keychain.Store{}, err
	}

	store, err := keychain.Open(config.KeychainPath)
	if err != nil {
		return nil, keychain.Store{}, err
	}

	client, err := chpp.NewClient(chpp.ClientOptions{
		BaseUrl:        config.BaseUrl,
		ConsumerKey:    config.ConsumerKey,
		ConsumerSecret: config.ConsumerSecret,
		CallbackUrl:    config.CallbackUrl,
		Store:          store,
	})
	if err != nil {
		store.Close()
		return nil, keychain.Store{}, err
	}

	creds, err := store.Credentials(ctx)
	if err != nil {
		store.Close()
		return nil, keychain.Store{}, err
	}
	if creds.Complete() {
		client.SetCredentials(creds)
	}
	return client, store, nil
}
