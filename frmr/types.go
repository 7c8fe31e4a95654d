// Package frmr provides types, loading, and structural validation for
// FedRAMP Machine-Readable (FRMR) source documents: glossary definitions,
// process requirements, and key security indicators.
package frmr

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Document is a fully loaded FRMR source document.
type Document struct {
	// Info carries the release version and document front matter.
	Info Info `json:"info"`

	// Glossary holds term definitions partitioned by applicability.
	Glossary []GlossaryPartition `json:"glossary"`

	// Requirements holds the named requirement processes.
	Requirements []Process `json:"requirements"`

	// Indicators holds the key security indicator domains.
	Indicators []Domain `json:"indicators"`
}

// Info is the document front matter.
type Info struct {
	Title       string `json:"title,omitempty"`
	Version     string `json:"version"`
	LastUpdated string `json:"last_updated,omitempty"`
}

// GlossaryPartition groups terms by the deployment context they apply to.
type GlossaryPartition struct {
	Applicability string `json:"applicability"`
	Terms         []Term `json:"terms"`
}

// Term is a single glossary definition.
type Term struct {
	// Key is the term's identity within its applicability partition.
	Key string `json:"key"`

	// Name is the canonical display text.
	Name string `json:"name"`

	// Aliases are alternate spellings that resolve to this term.
	Aliases []string `json:"aliases,omitempty"`

	// Definition is the term's prose definition.
	Definition string `json:"definition"`

	// Reference cites the authority the definition was taken from.
	Reference string `json:"reference,omitempty"`
}

// Process is a named collection of requirements plus front matter.
type Process struct {
	Key         string                 `json:"key"`
	Name        string                 `json:"name"`
	ShortName   string                 `json:"short_name,omitempty"`
	Purpose     string                 `json:"purpose,omitempty"`
	Authorities []Citation             `json:"authorities,omitempty"`
	Partitions  []RequirementPartition `json:"partitions"`
}

// Citation is an authority reference in process front matter.
type Citation struct {
	Reference   string `json:"reference"`
	Description string `json:"description,omitempty"`
	Delegation  string `json:"delegation,omitempty"`
}

// RequirementPartition groups a process's requirements by applicability.
type RequirementPartition struct {
	Applicability string       `json:"applicability"`
	Groups        []LabelGroup `json:"groups"`
}

// LabelGroup groups requirements under a normative label (MUST, SHOULD, ...).
type LabelGroup struct {
	Label        string        `json:"label"`
	Requirements []Requirement `json:"requirements"`
}

// Requirement is a single compliance requirement. Its statement is either
// flat prose or a set of per-level variants, never both; the Statement sum
// type enforces the exclusivity at decode time.
type Requirement struct {
	Key           string
	Name          string
	PriorNames    []string
	Statement     Statement
	Examples      []Example
	Note          string
	Notes         []string
	FollowUps     []string
	Bullets       []string
	Notifications []Notification
	Terms         []string
	Danger        string
	Impact        *Impact
}

// rawRequirement mirrors the source JSON, where flat and level-variant
// statements are two optional sibling fields.
type rawRequirement struct {
	Key           string         `json:"key"`
	Name          string         `json:"name,omitempty"`
	PriorNames    []string       `json:"prior_names,omitempty"`
	Statement     string         `json:"statement,omitempty"`
	Keyword       string         `json:"keyword,omitempty"`
	Timeframe     string         `json:"timeframe,omitempty"`
	VariesByLevel []LevelVariant `json:"varies_by_level,omitempty"`
	Examples      []Example      `json:"examples,omitempty"`
	Note          string         `json:"note,omitempty"`
	Notes         []string       `json:"notes,omitempty"`
	FollowUps     []string       `json:"follow_ups,omitempty"`
	Bullets       []string       `json:"bullet_items,omitempty"`
	Notifications []Notification `json:"notifications,omitempty"`
	Terms         []string       `json:"terms,omitempty"`
	Danger        string         `json:"danger,omitempty"`
	Impact        *Impact        `json:"impact,omitempty"`
}

// UnmarshalJSON decodes a requirement, folding the statement/varies_by_level
// union into the Statement sum type. A requirement carrying both forms is
// malformed input; a requirement carrying neither decodes with
// StatementNone and is left for the structural validator to report.
func (r *Requirement) UnmarshalJSON(data []byte) error {
	var raw rawRequirement
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	stmt, err := newStatement(raw)
	if err != nil {
		return fmt.Errorf("requirement %q: %w", raw.Key, err)
	}

	*r = Requirement{
		Key:           raw.Key,
		Name:          raw.Name,
		PriorNames:    raw.PriorNames,
		Statement:     stmt,
		Examples:      raw.Examples,
		Note:          raw.Note,
		Notes:         raw.Notes,
		FollowUps:     raw.FollowUps,
		Bullets:       raw.Bullets,
		Notifications: raw.Notifications,
		Terms:         raw.Terms,
		Danger:        raw.Danger,
		Impact:        raw.Impact,
	}
	return nil
}

// MarshalJSON re-emits the source shape so documents survive a decode/encode
// round trip.
func (r Requirement) MarshalJSON() ([]byte, error) {
	raw := rawRequirement{
		Key:           r.Key,
		Name:          r.Name,
		PriorNames:    r.PriorNames,
		Examples:      r.Examples,
		Note:          r.Note,
		Notes:         r.Notes,
		FollowUps:     r.FollowUps,
		Bullets:       r.Bullets,
		Notifications: r.Notifications,
		Terms:         r.Terms,
		Danger:        r.Danger,
		Impact:        r.Impact,
	}
	switch r.Statement.Kind {
	case StatementFlat:
		raw.Statement = r.Statement.Flat.Text
		raw.Keyword = r.Statement.Flat.Keyword
		raw.Timeframe = r.Statement.Flat.Timeframe
	case StatementByLevel:
		raw.VariesByLevel = r.Statement.Variants
	}
	return json.Marshal(raw)
}

// StatementKind discriminates the Statement sum type.
type StatementKind int

const (
	// StatementNone means the source supplied no statement at all.
	// The structural validator reports this as a violation.
	StatementNone StatementKind = iota

	// StatementFlat is a single prose statement.
	StatementFlat

	// StatementByLevel is a set of per-impact-level statement variants.
	StatementByLevel
)

// Statement is the requirement prose, either flat or varying by level.
// Exactly one of Flat and Variants is populated for a non-None kind.
type Statement struct {
	Kind     StatementKind
	Flat     *FlatStatement
	Variants []LevelVariant
}

// FlatStatement is the single-prose statement form.
type FlatStatement struct {
	Text      string
	Keyword   string
	Timeframe string
}

// LevelVariant is one per-level alternate statement.
type LevelVariant struct {
	Level     string `json:"level"`
	Keyword   string `json:"keyword,omitempty"`
	Timeframe string `json:"timeframe,omitempty"`
	Statement string `json:"statement"`
}

func newStatement(raw rawRequirement) (Statement, error) {
	switch {
	case raw.Statement != "" && len(raw.VariesByLevel) > 0:
		return Statement{}, fmt.Errorf("statement and varies_by_level are mutually exclusive")
	case raw.Statement != "":
		return Statement{
			Kind: StatementFlat,
			Flat: &FlatStatement{
				Text:      raw.Statement,
				Keyword:   raw.Keyword,
				Timeframe: raw.Timeframe,
			},
		}, nil
	case len(raw.VariesByLevel) > 0:
		return Statement{Kind: StatementByLevel, Variants: raw.VariesByLevel}, nil
	default:
		return Statement{Kind: StatementNone}, nil
	}
}

// Example is a worked example attached to a requirement.
type Example struct {
	ID       string   `json:"id"`
	KeyTests []string `json:"key_tests,omitempty"`
	Bullets  []string `json:"bullets,omitempty"`
}

// Notification describes who must be notified, how, and where.
type Notification struct {
	Party  string `json:"party"`
	Method string `json:"method"`
	Target string `json:"target"`
}

// Impact is the requirement's impact annotation, which the source supplies
// either as free text or as a set of named boolean flags. Exactly one of
// Text and Flags is populated.
type Impact struct {
	Text  string
	Flags map[string]bool
}

// UnmarshalJSON resolves the text-or-flag-map union at the decode boundary.
func (i *Impact) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*i = Impact{Text: text}
		return nil
	}
	var flags map[string]bool
	if err := json.Unmarshal(data, &flags); err == nil {
		*i = Impact{Flags: flags}
		return nil
	}
	return fmt.Errorf("impact must be a string or an object of boolean flags")
}

// MarshalJSON re-emits whichever form the source carried.
func (i Impact) MarshalJSON() ([]byte, error) {
	if i.Flags != nil {
		return json.Marshal(i.Flags)
	}
	return json.Marshal(i.Text)
}

// Render returns the impact as display text: the free text verbatim, or
// the names of the true flags, sorted and comma-joined.
func (i Impact) Render() string {
	if i.Flags == nil {
		return i.Text
	}
	names := make([]string, 0, len(i.Flags))
	for name, set := range i.Flags {
		if set {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// Domain is a themed group of key security indicators.
type Domain struct {
	Key        string      `json:"key"`
	Theme      string      `json:"theme"`
	Name       string      `json:"name"`
	Indicators []Indicator `json:"indicators"`
}

// Indicator is a single key security indicator.
type Indicator struct {
	Key       string   `json:"key"`
	Name      string   `json:"name"`
	Statement string   `json:"statement"`
	Controls  []string `json:"controls,omitempty"`
	Terms     []string `json:"terms,omitempty"`
}
