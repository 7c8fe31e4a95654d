// Package main provides the frmr2oscal binary entry point.
// frmr2oscal converts FedRAMP Machine-Readable (FRMR) source documents
// into an OSCAL catalog and a mapping collection.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/c360studio/frmr2oscal/config"
	"github.com/c360studio/frmr2oscal/frmr"
	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "frmr2oscal"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		inputGlob  string
		outputDir  string
		logLevel   string
		watch      bool
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Convert FRMR compliance data to OSCAL",
		Long: `frmr2oscal converts FedRAMP Machine-Readable (FRMR) source documents
into two OSCAL interchange documents:

- a catalog of requirement processes, key security indicators, and the
  glossary as back-matter resources
- a mapping collection cross-referencing each indicator against the
  external controls it subsumes

Source files are matched by glob, merged, structurally validated, and
converted in one pass. Identifiers are deterministic, so repeated runs
over the same source produce identical documents.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(configPath, inputGlob, outputDir, logLevel)
			if err != nil {
				return err
			}
			app := NewApp(cfg, logger)
			if watch {
				return app.Watch(cmd.Context())
			}
			return app.Convert(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.Flags().StringVarP(&inputGlob, "input", "i", "", "Source file glob (overrides config)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Output directory (overrides config)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-run conversion when source files change")

	// Check command: source validation only
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Validate source structure without converting",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(configPath, inputGlob, outputDir, logLevel)
			if err != nil {
				return err
			}
			doc, err := frmr.LoadGlob(cfg.Input.Pattern)
			if err != nil {
				return err
			}
			violations := frmr.Validate(doc)
			if len(violations) > 0 {
				for _, v := range violations {
					fmt.Fprintf(os.Stderr, "✗ %s\n", v)
				}
				return fmt.Errorf("source has %d structural violation(s)", len(violations))
			}
			fmt.Println("✓ Source structure valid")
			return nil
		},
	}
	checkCmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	checkCmd.Flags().StringVarP(&inputGlob, "input", "i", "", "Source file glob (overrides config)")
	cmd.AddCommand(checkCmd)

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// setup configures logging and loads layered configuration with flag
// overrides applied last.
func setup(configPath, inputGlob, outputDir, logLevel string) (*config.Config, *slog.Logger, error) {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	var cfg *config.Config
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	} else {
		loaded, err := config.NewLoader(logger).Load()
		if err != nil {
			return nil, nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if inputGlob != "" {
		cfg.Input.Pattern = inputGlob
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, logger, nil
}
