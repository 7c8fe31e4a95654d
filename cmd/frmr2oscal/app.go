package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/c360studio/frmr2oscal/config"
	"github.com/c360studio/frmr2oscal/frmr"
	"github.com/c360studio/frmr2oscal/output"
	"github.com/c360studio/frmr2oscal/transform"
)

// App wires the loader, validator, transform engines, and writer together
// for one conversion run.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewApp creates a new application instance.
func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{cfg: cfg, logger: logger}
}

// Convert runs one full conversion: load and merge sources, validate
// structure, build both documents, write them, then run the advisory
// schema validation pass.
func (a *App) Convert(ctx context.Context) error {
	doc, err := frmr.LoadGlob(a.cfg.Input.Pattern)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Loaded source (version %s)\n", doc.Info.Version)

	if violations := frmr.Validate(doc); len(violations) > 0 {
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "✗ %s\n", v)
		}
		return fmt.Errorf("source has %d structural violation(s)", len(violations))
	}
	fmt.Println("✓ Source structure valid")

	index := transform.BuildTermIndex(doc.Glossary)
	catalog := transform.NewCatalogBuilder(index).Build(doc)
	mapping := transform.NewMappingBuilder(a.cfg.Output.CatalogFile).Build(doc)

	writer := output.NewWriter(a.cfg.Output.Dir, a.logger)
	if err := writer.WriteAll(catalog, mapping, a.cfg.Output.CatalogFile, a.cfg.Output.MappingFile); err != nil {
		return err
	}
	catalogPath := filepath.Join(a.cfg.Output.Dir, a.cfg.Output.CatalogFile)
	mappingPath := filepath.Join(a.cfg.Output.Dir, a.cfg.Output.MappingFile)
	fmt.Printf("✓ Wrote %s\n", catalogPath)
	fmt.Printf("✓ Wrote %s\n", mappingPath)

	if !a.cfg.Validator.Disabled {
		output.NewSchemaValidator(a.cfg.Validator.Command, a.logger).Report(ctx, catalogPath, mappingPath)
	}
	return nil
}

// Watch converts once, then re-runs the conversion whenever a matched
// source file changes, debounced. Conversion errors in watch mode are
// logged rather than fatal.
func (a *App) Watch(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Convert(ctx); err != nil {
		a.logger.Error("Initial conversion failed", slog.String("error", err.Error()))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dirs, err := sourceDirs(a.cfg.Input.Pattern)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		a.logger.Debug("Watching directory", slog.String("dir", dir))
	}
	fmt.Println("✓ Watching for source changes (Ctrl-C to stop)")

	debounce := a.cfg.Watch.GetDebounceDelay()
	var timer *time.Timer
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			match, err := doublestar.PathMatch(filepath.ToSlash(a.cfg.Input.Pattern), filepath.ToSlash(event.Name))
			if err != nil || !match {
				continue
			}
			a.logger.Debug("Source changed", slog.String("path", event.Name))
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			pending = timer.C
		case <-pending:
			pending = nil
			if err := a.Convert(ctx); err != nil {
				a.logger.Error("Conversion failed", slog.String("error", err.Error()))
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("Watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// sourceDirs lists the directories holding files the pattern currently
// matches, so the watcher covers every source file's parent.
func sourceDirs(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no source files match %s", pattern)
	}
	seen := make(map[string]bool)
	var dirs []string
	for _, m := range matches {
		dir := filepath.Dir(m)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs, nil
}
