package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/BorhanSaflo/cali/app/lang"
)

var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:     "cali [file]",
		Short:   "Notepad calculator for the terminal",
		Long:    "cali is a line-oriented calculator: type expressions, read results in the gutter.",
		Args:    cobra.MaximumNArgs(1),
		Version: version,
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			rates := lang.NewRatesFrom(cfg.Currency.URL, time.Duration(cfg.Currency.TTLMinutes)*time.Minute)
			doc := lang.NewDocument(rates)
			doc.SetDebounce(time.Duration(cfg.DebounceMs) * time.Millisecond)

			var path string
			if len(args) == 1 {
				path = args[0]
				if err := loadFile(doc, path); err != nil {
					return err
				}
			}

			p := tea.NewProgram(newModel(doc, path, cfg), tea.WithAltScreen())
			if watch && path != "" {
				stop, err := watchFile(path, p)
				if err != nil {
					return fmt.Errorf("watch %s: %w", path, err)
				}
				defer stop()
			}
			_, err = p.Run()
			return err
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the document when the file changes on disk")
	return cmd
}

// loadFile reads path into the document. A file that does not exist yet is
// fine: the document starts blank and the path is used on the first save.
func loadFile(doc *lang.Document, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	doc.Load(strings.Split(strings.TrimRight(string(data), "\n"), "\n"))
	return nil
}
