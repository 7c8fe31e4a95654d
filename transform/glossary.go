// Package transform converts loaded FRMR source documents into the OSCAL
// catalog and mapping-collection wire shape.
package transform

import (
	"strings"

	"github.com/c360studio/frmr2oscal/frmr"
	"github.com/c360studio/frmr2oscal/identity"
	"github.com/c360studio/frmr2oscal/oscal"
)

// TermIndex resolves case-folded term text to the identifier of the
// glossary resource that defines it. It is built once per run and
// read-only afterwards.
type TermIndex map[string]string

// BuildTermIndex registers every term's display name and aliases across
// all applicability partitions. If two terms register the same text the
// later registration wins; source data is not expected to carry true
// duplicates, and a silent overwrite is the accepted policy.
func BuildTermIndex(glossary []frmr.GlossaryPartition) TermIndex {
	idx := make(TermIndex)
	for _, part := range glossary {
		for _, term := range part.Terms {
			id := identity.Identifier(identity.TagGlossaryTerm, term.Key)
			idx[strings.ToLower(term.Name)] = id
			for _, alias := range term.Aliases {
				idx[strings.ToLower(alias)] = id
			}
		}
	}
	return idx
}

// Resolve looks up term text, case-insensitively. Unresolved text is not
// an error: glossary coverage is allowed to be partial.
func (x TermIndex) Resolve(text string) (string, bool) {
	id, ok := x[strings.ToLower(text)]
	return id, ok
}

// glossaryResources renders the back-matter appendix: one resource per
// term, in source iteration order across partitions.
func glossaryResources(glossary []frmr.GlossaryPartition) []oscal.Resource {
	var resources []oscal.Resource
	for _, part := range glossary {
		for _, term := range part.Terms {
			res := oscal.Resource{
				UUID:        identity.Identifier(identity.TagGlossaryTerm, term.Key),
				Title:       term.Name,
				Description: term.Definition,
				Props:       []oscal.Prop{{Name: "term-key", Value: term.Key}},
			}
			for _, alias := range term.Aliases {
				res.Props = append(res.Props, oscal.Prop{Name: "prior-name", Value: alias})
			}
			if term.Reference != "" {
				res.Citation = &oscal.Citation{Text: term.Reference}
			}
			resources = append(resources, res)
		}
	}
	return resources
}
