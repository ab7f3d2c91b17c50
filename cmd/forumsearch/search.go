package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pders01/forumsearch/internal/search"
	"github.com/pders01/forumsearch/internal/tui"
)

var (
	searchJSON  bool
	searchStats bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Query the search index",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		b, err := openBackend(cfg)
		if err != nil {
			return err
		}
		defer b.close()
		b.start(cmd.Context())

		ctx, cancel := queryContext(cmd.Context(), cfg.Server.QueryTimeout)
		defer cancel()

		query := strings.Join(args, " ")
		hits, err := b.index.Query(ctx, query)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if searchJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Query string       `json:"query"`
				Hits  []search.Hit `json:"hits"`
			}{query, hits})
		}

		fmt.Fprint(out, tui.FormatHits(query, hits))
		if searchStats {
			n, err := b.index.DocCount(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, tui.StatusInfoStyle.Render(fmt.Sprintf("%d documents indexed", n)))
		}
		return nil
	},
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Add every stored article to the search index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		b, err := openBackend(cfg)
		if err != nil {
			return err
		}
		b.start(cmd.Context())

		n, err := b.articles.Reindex(cmd.Context())
		// close drains the queued Add commands before returning.
		if closeErr := b.close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return fmt.Errorf("reindex: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), tui.StatusSuccessStyle.Render(fmt.Sprintf("Reindexed %d articles", n)))
		return nil
	},
}

// queryContext bounds a query by timeout; zero or less means no deadline.
func queryContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(parent, timeout)
	}
	return context.WithCancel(parent)
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print results as JSON")
	searchCmd.Flags().BoolVar(&searchStats, "stats", false, "Print the indexed document count")
}
