package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/KaramelBytes/dataqa-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/dataqa-cli/internal/config"
	"github.com/KaramelBytes/dataqa-cli/internal/observability"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

var (
	// Global flags
	cfgFile            string
	debug              bool
	flagHTTPTimeoutSec int
	flagProvider       string
	flagModel          string

	// Loaded configuration and process logger
	cfg    *cfgpkg.Global
	logger = observability.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "dataqa",
	Short: "dataqa: ask questions about a CSV or Excel dataset",
	Long: `dataqa loads a tabular dataset (CSV, semicolon CSV, TSV or Excel), shows a preview,
and answers natural-language questions about it using an OpenAI-compatible chat model (Groq by default).`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.dataqa/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "model provider: groq | openrouter | openai (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "model identifier (overrides config)")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = c

	// Apply CLI overrides if provided
	f := cmd.Flags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("provider") {
		if err := cfg.Set("provider", flagProvider); err != nil {
			return err
		}
		// a provider switch drops the configured model unless one is given
		if p, ok := ai.LookupProvider(flagProvider); ok && !f.Changed("model") {
			cfg.Model = p.DefaultModel
		}
	}
	if f.Changed("model") {
		if err := cfg.Set("model", flagModel); err != nil {
			return err
		}
	}

	level := cfg.LogLevel
	if level == "" {
		level = "warn"
		if cmd.Name() == "serve" {
			level = "info"
		}
	}
	if debug {
		level = "debug"
	}
	logger = observability.NewLogger(level, cfg.LogFormat, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	if cfg.ModelsFile != "" {
		m, err := ai.LoadCatalogFromJSON(cfg.ModelsFile)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: failed to load models_file: %v\n", err)
		} else {
			ai.MergeCatalog(m)
		}
	}
	return nil
}
