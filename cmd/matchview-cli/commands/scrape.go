package commands

import (
	"errors"
	"os"
	"time"

	"github.com/davideneu/hattrick-matchview/lib/scrapers/matchpage"
	"github.com/davideneu/hattrick-matchview/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

func init() {
	scrapeCmd.Flags().StringVar(&scrapeUrl, "url", "", "page address; with no file argument the page is fetched from it")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeUrl string

var scrapeCmd = &cobra.Command{
	Use:   "scrape [file.html]",
	Short: "Extract match data from a match page and print it as json.",
	Long: "Extract match data from a match page and print it as json.\n\n" +
		"With a file argument the saved page is parsed as-is; --url then only\n" +
		"recovers the match id. With --url alone the page is fetched live.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			if scrapeUrl == "" {
				return errors.New("either a saved page file or --url is required")
			}

			client := resty.New()
			telemetry.InstrumentResty(client, "matchview.commands.scrape")
			extractor := matchpage.NewExtractor(matchpage.ExtractorOptions{
				Source:   matchpage.FetchSource{Http: client, Url: scrapeUrl},
				MatchUrl: scrapeUrl,
			})
			return printJson(extractor.Extract(cmd.Context()))
		}

		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer file.Close()

		doc, err := goquery.NewDocumentFromReader(file)
		if err != nil {
			return err
		}

		extractor := matchpage.NewExtractor(matchpage.ExtractorOptions{
			Source:   matchpage.StaticSource{Doc: doc},
			MatchUrl: scrapeUrl,
			// a saved page is as rendered as it will ever get
			WaitCeiling: time.Millisecond,
		})
		return printJson(extractor.Extract(cmd.Context()))
	},
}
