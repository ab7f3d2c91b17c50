package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/forumsearch/internal/debuglog"
	"github.com/pders01/forumsearch/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Search interactively in the terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// Records on stderr would tear the alt screen.
		if cfg.Log.File == "" {
			debuglog.SetLevel(debuglog.LevelOff)
		}

		b, err := openBackend(cfg)
		if err != nil {
			return err
		}
		defer b.close()
		b.start(cmd.Context())

		tui.ApplyTheme(cfg.UI.Colors)
		p := tea.NewProgram(tui.NewApp(b.index, b.articles, cfg), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("tui: %w", err)
		}
		return nil
	},
}
