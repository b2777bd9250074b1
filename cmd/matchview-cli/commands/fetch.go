package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/davideneu/hattrick-matchview/services/matchdata"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <matchID>",
	Short: "Fetch a match over the authenticated api and print it as json.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, store, err := openClient(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		if !client.IsAuthenticated() {
			return fmt.Errorf("no credentials stored, run 'matchview-cli auth' first")
		}

		orch := matchdata.NewOrchestrator(client, nil)
		data, err := orch.ExtractMatchData(ctx, args[0])
		if err != nil {
			return err
		}
		return printJson(data)
	},
}

func printJson(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
