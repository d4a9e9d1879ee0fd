package main

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"phonefinder/internal/config"
	"phonefinder/internal/engine"
	"phonefinder/internal/logging"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	var cfg config.Config

	rootCmd := &cobra.Command{
		Use:           "phonefinder",
		Short:         "Phone recommendations from a local catalog",
		Long:          "Normalizes shopping preferences, searches the phone catalog with progressive relaxation and prints ranked picks.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg = *c

			logging.Init(logging.Config{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				Output: cmd.ErrOrStderr(),
			})
			return nil
		},
	}

	rootCmd.AddCommand(
		newRecommendCmd(&cfg),
		newCountCmd(&cfg),
		newImportCmd(&cfg),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// intentFlags are shared by the commands that take preferences
type intentFlags struct {
	catalog string
	intent  string
	text    string
}

func (f *intentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.catalog, "catalog", "", "CSV catalog to use instead of the configured source")
	cmd.Flags().StringVar(&f.intent, "intent", "", `explicit intent as JSON, e.g. '{"budget": 600, "os": "android"}'`)
	cmd.Flags().StringVar(&f.text, "text", "", "free-text request for the intent extractors")
}

// apply points cfg at the --catalog file when one is given
func (f *intentFlags) apply(cfg *config.Config) {
	if f.catalog != "" {
		cfg.Catalog.Source = config.SourceCSV
		cfg.Catalog.CSVPath = f.catalog
	}
}

func (f *intentFlags) rawIntent() (engine.RawIntent, error) {
	if f.intent == "" {
		return engine.RawIntent{}, nil
	}
	var raw engine.RawIntent
	if err := json.Unmarshal([]byte(f.intent), &raw); err != nil {
		return nil, fmt.Errorf("parse --intent: %w", err)
	}
	if raw == nil {
		raw = engine.RawIntent{}
	}
	return raw, nil
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
