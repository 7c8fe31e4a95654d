// Package output serializes converted documents to disk and runs the
// optional advisory schema validation pass.
package output

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/c360studio/frmr2oscal/oscal"
)

// Writer writes the catalog and mapping documents. Output is all or
// nothing: both documents are serialized and staged before either final
// file appears, so a failure never leaves one document without the other.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a writer targeting the given directory.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{dir: dir, logger: logger}
}

// WriteAll serializes both documents and moves them into place. On any
// failure no final file is created or replaced.
func (w *Writer) WriteAll(catalog oscal.CatalogDocument, mapping oscal.MappingDocument, catalogFile, mappingFile string) error {
	catalogData, err := marshalDocument(catalog)
	if err != nil {
		return fmt.Errorf("serialize catalog: %w", err)
	}
	mappingData, err := marshalDocument(mapping)
	if err != nil {
		return fmt.Errorf("serialize mapping collection: %w", err)
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	staged := make([]string, 0, 2)
	cleanup := func() {
		for _, path := range staged {
			if err := os.Remove(path); err != nil {
				w.logger.Warn("Failed to remove staged file", slog.String("path", path), slog.String("error", err.Error()))
			}
		}
	}

	files := []struct {
		name string
		data []byte
	}{
		{catalogFile, catalogData},
		{mappingFile, mappingData},
	}
	for _, f := range files {
		tmp := filepath.Join(w.dir, f.name+".tmp")
		if err := os.WriteFile(tmp, f.data, 0644); err != nil {
			cleanup()
			return fmt.Errorf("write %s: %w", f.name, err)
		}
		staged = append(staged, tmp)
	}

	finalized := make([]string, 0, 2)
	for i, f := range files {
		final := filepath.Join(w.dir, f.name)
		if err := os.Rename(staged[i], final); err != nil {
			staged = append(staged[i:], finalized...)
			cleanup()
			return fmt.Errorf("finalize %s: %w", f.name, err)
		}
		finalized = append(finalized, final)
		w.logger.Debug("Wrote document", slog.String("path", final), slog.Int("bytes", len(f.data)))
	}
	return nil
}

// marshalDocument renders a document with two-space indentation and a
// trailing newline, matching common OSCAL tooling output.
func marshalDocument(doc any) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
