package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pders01/forumsearch/internal/feed"
	"github.com/pders01/forumsearch/internal/tui"
)

var importSection string

var importCmd = &cobra.Command{
	Use:   "import <file|url>...",
	Short: "Import RSS or Atom items as articles",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if importSection != "" {
			cfg.Import.SectionID = importSection
		}

		b, err := openBackend(cfg)
		if err != nil {
			return err
		}
		b.start(cmd.Context())

		fetcher := feed.NewFetcher(cfg.Import.HTTPTimeout, cfg.Import.UserAgent)
		importer := feed.NewImporter(b.articles, fetcher, cfg.Import.SectionID)

		n, importErr := importer.ImportAll(cmd.Context(), args)
		if closeErr := b.close(); closeErr != nil && importErr == nil {
			importErr = closeErr
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, tui.StatusSuccessStyle.Render(fmt.Sprintf("Imported %d articles", n)))
		if importErr != nil {
			return fmt.Errorf("import: %w", importErr)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importSection, "section", "", "Section id for imported articles (overrides config)")
}
