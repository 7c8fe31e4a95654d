package transform

import (
	"fmt"
	"strings"
	"time"

	"github.com/c360studio/frmr2oscal/frmr"
	"github.com/c360studio/frmr2oscal/identity"
	"github.com/c360studio/frmr2oscal/oscal"
)

const (
	// catalogKeyPrefix combined with the source version forms the catalog
	// document's identifier key.
	catalogKeyPrefix = "fedramp-catalog-"

	// defaultCatalogTitle is used when the source carries no title.
	defaultCatalogTitle = "FedRAMP Requirements and Key Security Indicators"

	// ksiGroupID is the id of the indicators top-level group.
	ksiGroupID = "ksi"
)

// CatalogBuilder walks the requirements and indicator trees and produces
// the canonical catalog document. The term index is built once by the
// caller and passed in; the builder holds no other state between runs.
type CatalogBuilder struct {
	index TermIndex
	now   func() time.Time
}

// NewCatalogBuilder creates a catalog builder backed by the given term index.
func NewCatalogBuilder(index TermIndex) *CatalogBuilder {
	return &CatalogBuilder{index: index, now: time.Now}
}

// Build converts a validated source document into a catalog. Apart from
// the metadata timestamp the output is fully determined by the input.
func (b *CatalogBuilder) Build(doc *frmr.Document) oscal.CatalogDocument {
	title := doc.Info.Title
	if title == "" {
		title = defaultCatalogTitle
	}

	groups := make([]oscal.Group, 0, len(doc.Requirements)+1)
	for _, proc := range doc.Requirements {
		groups = append(groups, b.processGroup(proc))
	}
	groups = append(groups, b.indicatorsGroup(doc.Indicators))

	return oscal.CatalogDocument{
		Catalog: oscal.Catalog{
			UUID:     identity.Identifier(identity.TagCatalog, catalogKeyPrefix+doc.Info.Version),
			Metadata: buildMetadata(title, doc.Info, b.now()),
			Groups:   groups,
			BackMatter: &oscal.BackMatter{
				Resources: glossaryResources(doc.Glossary),
			},
		},
	}
}

// processGroup renders one requirement process as a top-level group.
func (b *CatalogBuilder) processGroup(proc frmr.Process) oscal.Group {
	group := oscal.Group{
		ID:    strings.ToLower(proc.Key),
		Title: proc.Name,
	}
	if proc.ShortName != "" {
		group.Props = append(group.Props, oscal.Prop{Name: "short-name", Value: proc.ShortName})
	}
	if proc.Purpose != "" {
		group.Parts = append(group.Parts, oscal.Part{
			ID:    group.ID + "-purpose",
			Name:  "purpose",
			Prose: proc.Purpose,
		})
	}
	if len(proc.Authorities) > 0 {
		group.Parts = append(group.Parts, oscal.Part{
			ID:    group.ID + "-authority",
			Name:  "authority",
			Prose: renderAuthorities(proc.Authorities),
		})
	}

	recurring := recurringKeys(proc)
	for _, part := range proc.Partitions {
		for _, lg := range part.Groups {
			for _, req := range lg.Requirements {
				id := controlID(req.Key, part.Applicability, recurring)
				group.Controls = append(group.Controls, b.buildControl(req, lg.Label, part.Applicability, id))
			}
		}
	}
	return group
}

// recurringKeys finds requirement keys that appear in more than one
// applicability partition within a process. Those keys need the
// applicability tag appended to their control ids to stay unique.
func recurringKeys(proc frmr.Process) map[string]bool {
	partitions := make(map[string]int)
	for _, part := range proc.Partitions {
		seen := make(map[string]bool)
		for _, lg := range part.Groups {
			for _, req := range lg.Requirements {
				if !seen[req.Key] {
					seen[req.Key] = true
					partitions[req.Key]++
				}
			}
		}
	}
	recurring := make(map[string]bool)
	for key, n := range partitions {
		if n > 1 {
			recurring[key] = true
		}
	}
	return recurring
}

// controlID forms the output id for a requirement: the bare lowercased
// key, disambiguated with the lowercased applicability tag only when the
// key recurs across partitions.
func controlID(key, applicability string, recurring map[string]bool) string {
	id := strings.ToLower(key)
	if recurring[key] {
		id += "_" + strings.ToLower(applicability)
	}
	return id
}

// buildControl renders one requirement as a control.
func (b *CatalogBuilder) buildControl(req frmr.Requirement, label, applicability, id string) oscal.Control {
	title := req.Name
	if title == "" {
		title = req.Key
	}
	ctl := oscal.Control{
		ID:    id,
		Title: title,
		Props: []oscal.Prop{
			{Name: "label", Value: label},
			{Name: "applicability", Value: applicability},
		},
	}
	for _, prior := range req.PriorNames {
		ctl.Props = append(ctl.Props, oscal.Prop{Name: "prior-name", Value: prior})
	}

	switch req.Statement.Kind {
	case frmr.StatementByLevel:
		ctl.Parts = append(ctl.Parts, levelStatementPart(id, req.Statement.Variants))
	case frmr.StatementFlat:
		flat := req.Statement.Flat
		if flat.Keyword != "" {
			ctl.Props = append(ctl.Props, oscal.Prop{Name: "keyword", Value: flat.Keyword})
		}
		if flat.Timeframe != "" {
			ctl.Props = append(ctl.Props, oscal.Prop{Name: "timeframe", Value: flat.Timeframe})
		}
		ctl.Parts = append(ctl.Parts, flatStatementPart(id, flat.Text, req.FollowUps, req.Bullets))
	}

	if len(req.Examples) > 0 {
		ctl.Parts = append(ctl.Parts, oscal.Part{
			ID:    id + "_gdn",
			Name:  "guidance",
			Prose: renderExamples(req.Examples),
		})
	}
	if notes := renderNotes(req.Note, req.Notes); notes != "" {
		ctl.Parts = append(ctl.Parts, oscal.Part{
			ID:    id + "_asm",
			Name:  "assessment",
			Prose: notes,
		})
	}

	if req.Danger != "" {
		ctl.Props = append(ctl.Props, oscal.Prop{Name: "danger", Value: req.Danger})
	}
	if req.Impact != nil {
		ctl.Props = append(ctl.Props, oscal.Prop{Name: "impact", Value: req.Impact.Render()})
	}
	for i, n := range req.Notifications {
		suffix := fmt.Sprintf("-%d", i+1)
		ctl.Props = append(ctl.Props,
			oscal.Prop{Name: "notify-party" + suffix, Value: n.Party},
			oscal.Prop{Name: "notify-method" + suffix, Value: n.Method},
			oscal.Prop{Name: "notify-target" + suffix, Value: n.Target},
		)
	}

	ctl.Links = b.appendTermLinks(ctl.Links, req.Terms)
	return ctl
}

// levelStatementPart nests one sub-part per level variant under a single
// statement part. Level, keyword, and timeframe travel as part props; the
// variant prose is the sub-part body.
func levelStatementPart(controlID string, variants []frmr.LevelVariant) oscal.Part {
	parent := oscal.Part{
		ID:   controlID + "_smt",
		Name: "statement",
	}
	for _, v := range variants {
		sub := oscal.Part{
			ID:    parent.ID + "." + strings.ToLower(v.Level),
			Name:  "statement",
			Props: []oscal.Prop{{Name: "level", Value: v.Level}},
			Prose: v.Statement,
		}
		if v.Keyword != "" {
			sub.Props = append(sub.Props, oscal.Prop{Name: "keyword", Value: v.Keyword})
		}
		if v.Timeframe != "" {
			sub.Props = append(sub.Props, oscal.Prop{Name: "timeframe", Value: v.Timeframe})
		}
		parent.Parts = append(parent.Parts, sub)
	}
	return parent
}

// flatStatementPart renders the single-prose statement with its follow-up
// items as ordered children. Free-form follow-ups come first, then bullet
// items; each list numbers from 1 and embeds its own id infix so the two
// sequences cannot collide.
func flatStatementPart(controlID, prose string, followUps, bullets []string) oscal.Part {
	part := oscal.Part{
		ID:    controlID + "_smt",
		Name:  "statement",
		Prose: prose,
	}
	for i, item := range followUps {
		part.Parts = append(part.Parts, oscal.Part{
			ID:    fmt.Sprintf("%s.itm-%d", part.ID, i+1),
			Name:  "item",
			Prose: item,
		})
	}
	for i, item := range bullets {
		part.Parts = append(part.Parts, oscal.Part{
			ID:    fmt.Sprintf("%s.blt-%d", part.ID, i+1),
			Name:  "item",
			Prose: item,
		})
	}
	return part
}

// indicatorsGroup renders all indicator domains under one top-level group.
func (b *CatalogBuilder) indicatorsGroup(domains []frmr.Domain) oscal.Group {
	group := oscal.Group{
		ID:    ksiGroupID,
		Title: "Key Security Indicators",
	}
	for _, domain := range domains {
		sub := oscal.Group{
			ID:    strings.ToLower(domain.Key),
			Title: domain.Name,
			Props: []oscal.Prop{{Name: "theme", Value: domain.Theme}},
		}
		for _, ind := range domain.Indicators {
			sub.Controls = append(sub.Controls, b.buildIndicatorControl(ind))
		}
		group.Groups = append(group.Groups, sub)
	}
	return group
}

func (b *CatalogBuilder) buildIndicatorControl(ind frmr.Indicator) oscal.Control {
	id := strings.ToLower(ind.Key)
	ctl := oscal.Control{
		ID:    id,
		Title: ind.Name,
		Parts: []oscal.Part{{
			ID:    id + "_smt",
			Name:  "statement",
			Prose: ind.Statement,
		}},
	}
	for _, ref := range ind.Controls {
		ctl.Links = appendLink(ctl.Links, oscal.Link{
			Href: "#" + ref,
			Rel:  "related",
			Text: strings.ToUpper(ref),
		})
	}
	ctl.Links = b.appendTermLinks(ctl.Links, ind.Terms)
	return ctl
}

// appendTermLinks resolves glossary term references and appends one link
// per resolved term. Unresolved references are dropped: glossary coverage
// is allowed to be partial.
func (b *CatalogBuilder) appendTermLinks(links []oscal.Link, terms []string) []oscal.Link {
	for _, text := range terms {
		id, ok := b.index.Resolve(text)
		if !ok {
			continue
		}
		links = appendLink(links, oscal.Link{
			Href: "#" + id,
			Rel:  "reference",
			Text: text,
		})
	}
	return links
}

// appendLink appends a link unless one with the same href and rel is
// already present.
func appendLink(links []oscal.Link, link oscal.Link) []oscal.Link {
	for _, existing := range links {
		if existing.Href == link.Href && existing.Rel == link.Rel {
			return links
		}
	}
	return append(links, link)
}

// renderAuthorities renders the process authority citations: a bolded
// reference line, the description, and any delegation note, paragraphs
// joined by a blank line.
func renderAuthorities(citations []frmr.Citation) string {
	var blocks []string
	for _, c := range citations {
		blocks = append(blocks, "**"+c.Reference+"**")
		if c.Description != "" {
			blocks = append(blocks, c.Description)
		}
		if c.Delegation != "" {
			blocks = append(blocks, c.Delegation)
		}
	}
	return strings.Join(blocks, "\n\n")
}

// renderExamples renders guidance prose: each example as a bolded
// identifier line, an optional key-test bullet list, and optional extra
// bullets, examples joined by a blank line.
func renderExamples(examples []frmr.Example) string {
	var blocks []string
	for _, ex := range examples {
		blocks = append(blocks, "**"+ex.ID+"**")
		if len(ex.KeyTests) > 0 {
			blocks = append(blocks, "Key tests:\n"+bulletList(ex.KeyTests))
		}
		if len(ex.Bullets) > 0 {
			blocks = append(blocks, bulletList(ex.Bullets))
		}
	}
	return strings.Join(blocks, "\n\n")
}

func bulletList(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}

// renderNotes concatenates the singular note and the note list, singular
// first, paragraphs joined by a blank line.
func renderNotes(note string, notes []string) string {
	var blocks []string
	if note != "" {
		blocks = append(blocks, note)
	}
	for _, n := range notes {
		if n != "" {
			blocks = append(blocks, n)
		}
	}
	return strings.Join(blocks, "\n\n")
}
