package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/frmr2oscal/frmr"
	"github.com/c360studio/frmr2oscal/identity"
	"github.com/c360studio/frmr2oscal/oscal"
)

func propNames(props []oscal.Prop) []string {
	names := make([]string, len(props))
	for i, p := range props {
		names[i] = p.Name
	}
	return names
}

func propValue(t *testing.T, props []oscal.Prop, name string) string {
	t.Helper()
	for _, p := range props {
		if p.Name == name {
			return p.Value
		}
	}
	t.Fatalf("prop %q not found in %v", name, props)
	return ""
}

func fixedClock() func() time.Time {
	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func flatReq(key, prose string) frmr.Requirement {
	return frmr.Requirement{
		Key:       key,
		Statement: frmr.Statement{Kind: frmr.StatementFlat, Flat: &frmr.FlatStatement{Text: prose}},
	}
}

func testDocument() *frmr.Document {
	return &frmr.Document{
		Info: frmr.Info{Title: "Test Release", Version: "25.06", LastUpdated: "2026-06-01"},
		Glossary: []frmr.GlossaryPartition{{
			Applicability: "federal",
			Terms: []frmr.Term{{
				Key: "ab", Name: "Authorization Boundary", Aliases: []string{"AB"},
				Definition: "Scope of authorization.",
			}},
		}},
		Requirements: []frmr.Process{{
			Key: "MAS", Name: "Minimum Assessment Standard", ShortName: "MAS",
			Purpose: "Establish assessment baselines.",
			Authorities: []frmr.Citation{{
				Reference: "FedRAMP Authorization Act", Description: "Codifies the program.", Delegation: "Delegated to the PMO.",
			}},
			Partitions: []frmr.RequirementPartition{
				{
					Applicability: "csp",
					Groups: []frmr.LabelGroup{{
						Label:        "MUST",
						Requirements: []frmr.Requirement{flatReq("MAS-01", "Maintain an inventory."), flatReq("MAS-02", "Report monthly.")},
					}},
				},
				{
					Applicability: "agency",
					Groups: []frmr.LabelGroup{{
						Label:        "SHOULD",
						Requirements: []frmr.Requirement{flatReq("MAS-01", "Review the inventory.")},
					}},
				},
			},
		}},
		Indicators: []frmr.Domain{{
			Key: "KSI-IAM", Theme: "identity", Name: "Identity and Access Management",
			Indicators: []frmr.Indicator{{
				Key: "KSI-IAM-01", Name: "Phishing-Resistant MFA",
				Statement: "Enforce phishing-resistant MFA.",
				Controls:  []string{"ac-2", "ia-2"},
				Terms:     []string{"AB"},
			}},
		}},
	}
}

func buildCatalog(t *testing.T, doc *frmr.Document) oscal.Catalog {
	t.Helper()
	b := NewCatalogBuilder(BuildTermIndex(doc.Glossary))
	b.now = fixedClock()
	return b.Build(doc).Catalog
}

func collectIDs(t *testing.T, groups []oscal.Group, into map[string]int) {
	t.Helper()
	for _, g := range groups {
		into[g.ID]++
		for _, c := range g.Controls {
			into[c.ID]++
		}
		collectIDs(t, g.Groups, into)
	}
}

func TestCatalogIDsUnique(t *testing.T) {
	catalog := buildCatalog(t, testDocument())

	ids := make(map[string]int)
	collectIDs(t, catalog.Groups, ids)
	for id, n := range ids {
		assert.Equal(t, 1, n, "id %q appears %d times", id, n)
	}
}

func TestCollisionDisambiguation(t *testing.T) {
	catalog := buildCatalog(t, testDocument())
	mas := catalog.Groups[0]
	require.Equal(t, "mas", mas.ID)

	var ids []string
	for _, c := range mas.Controls {
		ids = append(ids, c.ID)
	}
	// MAS-01 recurs across partitions, so both occurrences carry the
	// applicability suffix; MAS-02 is unique and stays bare.
	assert.Equal(t, []string{"mas-01_csp", "mas-02", "mas-01_agency"}, ids)
}

func TestControlCarriesLabelAndApplicability(t *testing.T) {
	catalog := buildCatalog(t, testDocument())
	ctl := catalog.Groups[0].Controls[0]

	assert.Equal(t, "MUST", propValue(t, ctl.Props, "label"))
	assert.Equal(t, "csp", propValue(t, ctl.Props, "applicability"))
}

func TestStatementExclusivity(t *testing.T) {
	doc := testDocument()
	doc.Requirements[0].Partitions = []frmr.RequirementPartition{{
		Applicability: "csp",
		Groups: []frmr.LabelGroup{{
			Label: "MUST",
			Requirements: []frmr.Requirement{
				{
					Key: "MAS-10",
					Statement: frmr.Statement{Kind: frmr.StatementByLevel, Variants: []frmr.LevelVariant{
						{Level: "Low", Keyword: "SHOULD", Statement: "Review annually."},
						{Level: "High", Keyword: "MUST", Timeframe: "weekly", Statement: "Review weekly."},
					}},
				},
				{
					Key: "MAS-11",
					Statement: frmr.Statement{Kind: frmr.StatementFlat, Flat: &frmr.FlatStatement{
						Text: "Flat prose.", Keyword: "MUST", Timeframe: "monthly",
					}},
				},
			},
		}},
	}}

	catalog := buildCatalog(t, doc)
	variant := catalog.Groups[0].Controls[0]
	flat := catalog.Groups[0].Controls[1]

	// Level-variant: nested per-level parts, no top-level prose, no
	// control-level keyword/timeframe props.
	require.Len(t, variant.Parts, 1)
	smt := variant.Parts[0]
	assert.Equal(t, "mas-10_smt", smt.ID)
	assert.Empty(t, smt.Prose)
	require.Len(t, smt.Parts, 2)
	assert.Equal(t, "mas-10_smt.low", smt.Parts[0].ID)
	assert.Equal(t, "mas-10_smt.high", smt.Parts[1].ID)
	assert.Equal(t, "Low", propValue(t, smt.Parts[0].Props, "level"))
	assert.Equal(t, "weekly", propValue(t, smt.Parts[1].Props, "timeframe"))
	assert.Equal(t, "Review weekly.", smt.Parts[1].Prose)
	assert.NotContains(t, propNames(variant.Props), "keyword")

	// Flat: prose on the statement part, keyword/timeframe on the control.
	require.Len(t, flat.Parts, 1)
	assert.Equal(t, "Flat prose.", flat.Parts[0].Prose)
	assert.Empty(t, flat.Parts[0].Parts)
	assert.Equal(t, "MUST", propValue(t, flat.Props, "keyword"))
	assert.Equal(t, "monthly", propValue(t, flat.Props, "timeframe"))
}

func TestFollowUpItemNumbering(t *testing.T) {
	doc := testDocument()
	req := flatReq("MAS-20", "Prose.")
	req.FollowUps = []string{"first follow-up", "second follow-up"}
	req.Bullets = []string{"first bullet"}
	doc.Requirements[0].Partitions = []frmr.RequirementPartition{{
		Applicability: "csp",
		Groups:        []frmr.LabelGroup{{Label: "MUST", Requirements: []frmr.Requirement{req}}},
	}}

	catalog := buildCatalog(t, doc)
	smt := catalog.Groups[0].Controls[0].Parts[0]
	require.Len(t, smt.Parts, 3)

	// Free-form items first, then bullets; each sequence numbers from 1
	// with its own id infix.
	assert.Equal(t, "mas-20_smt.itm-1", smt.Parts[0].ID)
	assert.Equal(t, "mas-20_smt.itm-2", smt.Parts[1].ID)
	assert.Equal(t, "mas-20_smt.blt-1", smt.Parts[2].ID)
	for _, p := range smt.Parts {
		assert.Equal(t, "item", p.Name)
	}
}

func TestGuidanceRendering(t *testing.T) {
	doc := testDocument()
	req := flatReq("MAS-30", "Prose.")
	req.Examples = []frmr.Example{
		{ID: "EX-1", KeyTests: []string{"test one", "test two"}, Bullets: []string{"extra detail"}},
		{ID: "EX-2"},
	}
	doc.Requirements[0].Partitions = []frmr.RequirementPartition{{
		Applicability: "csp",
		Groups:        []frmr.LabelGroup{{Label: "MUST", Requirements: []frmr.Requirement{req}}},
	}}

	catalog := buildCatalog(t, doc)
	ctl := catalog.Groups[0].Controls[0]
	require.Len(t, ctl.Parts, 2)

	gdn := ctl.Parts[1]
	assert.Equal(t, "mas-30_gdn", gdn.ID)
	assert.Equal(t, "guidance", gdn.Name)
	want := "**EX-1**\n\nKey tests:\n- test one\n- test two\n\n- extra detail\n\n**EX-2**"
	assert.Equal(t, want, gdn.Prose)
}

func TestAssessmentNotesConcatenation(t *testing.T) {
	doc := testDocument()
	req := flatReq("MAS-40", "Prose.")
	req.Note = "Singular note first."
	req.Notes = []string{"Listed note."}
	doc.Requirements[0].Partitions = []frmr.RequirementPartition{{
		Applicability: "csp",
		Groups:        []frmr.LabelGroup{{Label: "MUST", Requirements: []frmr.Requirement{req}}},
	}}

	catalog := buildCatalog(t, doc)
	asm := catalog.Groups[0].Controls[0].Parts[1]
	assert.Equal(t, "assessment", asm.Name)
	assert.Equal(t, "Singular note first.\n\nListed note.", asm.Prose)
}

func TestNotificationProps(t *testing.T) {
	doc := testDocument()
	req := flatReq("MAS-50", "Prose.")
	req.Notifications = []frmr.Notification{
		{Party: "CISA", Method: "email", Target: "soc@cisa.gov"},
		{Party: "Agency", Method: "portal", Target: "https://portal.example"},
	}
	doc.Requirements[0].Partitions = []frmr.RequirementPartition{{
		Applicability: "csp",
		Groups:        []frmr.LabelGroup{{Label: "MUST", Requirements: []frmr.Requirement{req}}},
	}}

	catalog := buildCatalog(t, doc)
	props := catalog.Groups[0].Controls[0].Props

	assert.Equal(t, "CISA", propValue(t, props, "notify-party-1"))
	assert.Equal(t, "email", propValue(t, props, "notify-method-1"))
	assert.Equal(t, "soc@cisa.gov", propValue(t, props, "notify-target-1"))
	assert.Equal(t, "portal", propValue(t, props, "notify-method-2"))
}

func TestTermLinkResolutionAndDedup(t *testing.T) {
	doc := testDocument()
	req := flatReq("MAS-60", "Prose.")
	// "AB" and "Authorization Boundary" resolve to the same resource;
	// "unknown term" resolves to nothing and is dropped.
	req.Terms = []string{"AB", "Authorization Boundary", "unknown term"}
	doc.Requirements[0].Partitions = []frmr.RequirementPartition{{
		Applicability: "csp",
		Groups:        []frmr.LabelGroup{{Label: "MUST", Requirements: []frmr.Requirement{req}}},
	}}

	catalog := buildCatalog(t, doc)
	links := catalog.Groups[0].Controls[0].Links
	require.Len(t, links, 1)

	resourceID := identity.Identifier(identity.TagGlossaryTerm, "ab")
	assert.Equal(t, "#"+resourceID, links[0].Href)
	assert.Equal(t, "reference", links[0].Rel)
	assert.Equal(t, "AB", links[0].Text)
}

func TestIndicatorsGroup(t *testing.T) {
	catalog := buildCatalog(t, testDocument())
	require.Len(t, catalog.Groups, 2)

	ksi := catalog.Groups[1]
	assert.Equal(t, "ksi", ksi.ID)
	require.Len(t, ksi.Groups, 1)

	domain := ksi.Groups[0]
	assert.Equal(t, "ksi-iam", domain.ID)
	assert.Equal(t, "identity", propValue(t, domain.Props, "theme"))

	require.Len(t, domain.Controls, 1)
	ctl := domain.Controls[0]
	assert.Equal(t, "ksi-iam-01", ctl.ID)
	require.Len(t, ctl.Parts, 1)
	assert.Equal(t, "ksi-iam-01_smt", ctl.Parts[0].ID)
	assert.Equal(t, "Enforce phishing-resistant MFA.", ctl.Parts[0].Prose)

	// Two related control links, upper-cased text, plus one glossary link.
	require.Len(t, ctl.Links, 3)
	assert.Equal(t, "#ac-2", ctl.Links[0].Href)
	assert.Equal(t, "related", ctl.Links[0].Rel)
	assert.Equal(t, "AC-2", ctl.Links[0].Text)
	assert.Equal(t, "IA-2", ctl.Links[1].Text)
	assert.Equal(t, "reference", ctl.Links[2].Rel)
}

func TestProcessGroupFrontMatter(t *testing.T) {
	catalog := buildCatalog(t, testDocument())
	mas := catalog.Groups[0]

	assert.Equal(t, "MAS", propValue(t, mas.Props, "short-name"))
	require.Len(t, mas.Parts, 2)
	assert.Equal(t, "purpose", mas.Parts[0].Name)
	assert.Equal(t, "Establish assessment baselines.", mas.Parts[0].Prose)
	assert.Equal(t, "authority", mas.Parts[1].Name)
	assert.Equal(t, "**FedRAMP Authorization Act**\n\nCodifies the program.\n\nDelegated to the PMO.", mas.Parts[1].Prose)
}

func TestCatalogMetadataAndUUID(t *testing.T) {
	catalog := buildCatalog(t, testDocument())

	assert.Equal(t, identity.Identifier(identity.TagCatalog, "fedramp-catalog-25.06"), catalog.UUID)
	assert.Equal(t, "Test Release", catalog.Metadata.Title)
	assert.Equal(t, "25.06", catalog.Metadata.Version)
	assert.Equal(t, oscal.Version, catalog.Metadata.OSCALVersion)
	assert.Equal(t, "2026-08-30T12:00:00Z", catalog.Metadata.LastModified)
	assert.Contains(t, catalog.Metadata.Remarks, "2026-06-01")

	require.Len(t, catalog.Metadata.Parties, 1)
	party := catalog.Metadata.Parties[0]
	assert.Equal(t, identity.Identifier(identity.TagParty, "fedramp"), party.UUID)
	assert.Equal(t, "FedRAMP", party.Name)
	require.Len(t, catalog.Metadata.ResponsibleParties, 1)
	assert.Equal(t, "publisher", catalog.Metadata.ResponsibleParties[0].RoleID)
	assert.Equal(t, []string{party.UUID}, catalog.Metadata.ResponsibleParties[0].PartyUUIDs)
}

func TestCatalogDeterministic(t *testing.T) {
	first := buildCatalog(t, testDocument())
	second := buildCatalog(t, testDocument())
	assert.Equal(t, first, second)
}
