package frmr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeDocument() *Document {
	return &Document{
		Info: Info{Version: "25.06"},
		Glossary: []GlossaryPartition{
			{Applicability: "federal", Terms: []Term{{Key: "ab", Name: "Authorization Boundary", Definition: "Scope."}}},
		},
		Requirements: []Process{{
			Key:  "mas",
			Name: "Minimum Assessment Standard",
			Partitions: []RequirementPartition{{
				Applicability: "csp",
				Groups: []LabelGroup{{
					Label: "MUST",
					Requirements: []Requirement{{
						Key:       "mas-01",
						Statement: Statement{Kind: StatementFlat, Flat: &FlatStatement{Text: "Do the thing."}},
					}},
				}},
			}},
		}},
		Indicators: []Domain{{
			Key: "ksi-iam", Theme: "identity", Name: "IAM",
			Indicators: []Indicator{{Key: "ksi-iam-01", Name: "MFA", Statement: "Enforce MFA."}},
		}},
	}
}

func TestValidateCompleteDocument(t *testing.T) {
	assert.Empty(t, Validate(completeDocument()))
}

func TestValidateMissingSections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Document)
		section string
	}{
		{"missing version", func(d *Document) { d.Info.Version = "" }, "info"},
		{"missing glossary", func(d *Document) { d.Glossary = nil }, "glossary"},
		{"empty requirements", func(d *Document) { d.Requirements = nil }, "requirements"},
		{"empty indicators", func(d *Document) { d.Indicators = nil }, "indicators"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := completeDocument()
			tt.mutate(doc)
			violations := Validate(doc)
			require.Len(t, violations, 1)
			assert.Equal(t, tt.section, violations[0].Section)
		})
	}
}

func TestValidateStatementlessRequirement(t *testing.T) {
	doc := completeDocument()
	doc.Requirements[0].Partitions[0].Groups[0].Requirements = append(
		doc.Requirements[0].Partitions[0].Groups[0].Requirements,
		Requirement{Key: "mas-02"},
	)

	violations := Validate(doc)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0].Message, "mas-02")
}

// All checks run independently; a missing section must not suppress
// requirement-level checks.
func TestValidateCollectsAllViolations(t *testing.T) {
	doc := completeDocument()
	doc.Indicators = nil
	doc.Requirements[0].Partitions[0].Groups[0].Requirements = []Requirement{{Key: "mas-09"}}

	violations := Validate(doc)
	require.Len(t, violations, 2)
	assert.Equal(t, "indicators", violations[0].Section)
	assert.Contains(t, violations[1].Message, "mas-09")
}
