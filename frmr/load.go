package frmr

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Load reads and decodes a single FRMR source file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &doc, nil
}

// LoadGlob expands pattern with ** support, loads every matched file, and
// merges them into one document. FRMR data is published as per-family
// files, so a pattern like "data/FRMR.*.json" assembles the full release.
// Matches are loaded in sorted path order so output is stable regardless
// of filesystem order. Zero matches is an error.
func LoadGlob(pattern string) (*Document, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no source files match %s", pattern)
	}
	sort.Strings(matches)

	docs := make([]*Document, 0, len(matches))
	for _, path := range matches {
		doc, err := Load(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return Merge(docs), nil
}

// Merge combines per-family documents into one. Info comes from the first
// document that carries a version; glossary partitions, processes, and
// indicator domains are appended in document order.
func Merge(docs []*Document) *Document {
	merged := &Document{}
	for _, doc := range docs {
		if merged.Info.Version == "" && doc.Info.Version != "" {
			merged.Info = doc.Info
		}
		merged.Glossary = append(merged.Glossary, doc.Glossary...)
		merged.Requirements = append(merged.Requirements, doc.Requirements...)
		merged.Indicators = append(merged.Indicators, doc.Indicators...)
	}
	return merged
}
