package transform

import (
	"strings"
	"time"

	"github.com/c360studio/frmr2oscal/frmr"
	"github.com/c360studio/frmr2oscal/identity"
	"github.com/c360studio/frmr2oscal/oscal"
)

const (
	mappingKeyPrefix = "fedramp-mapping-collection-"
	mappingTitle     = "FedRAMP Key Security Indicator Mappings"

	// relationshipSupersetOf is the fixed relationship for every entry:
	// each indicator subsumes the external controls it maps to.
	relationshipSupersetOf = "superset-of"

	// TargetCatalogHref is the external catalog every indicator maps into.
	TargetCatalogHref = "https://csrc.nist.gov/pubs/sp/800/53/r5/upd1/final"

	provenanceMethod       = "manual"
	provenanceCompleteness = "complete"
)

// MappingBuilder produces the mapping-collection document that links each
// indicator to the external control identifiers it subsumes. CatalogHref
// is the produced catalog's filename, used as the relative source link.
type MappingBuilder struct {
	catalogHref string
	now         func() time.Time
}

// NewMappingBuilder creates a mapping builder whose source resource points
// at the given catalog filename.
func NewMappingBuilder(catalogHref string) *MappingBuilder {
	return &MappingBuilder{catalogHref: catalogHref, now: time.Now}
}

// Build walks the indicator domains in source order and emits one map
// entry per indicator that declares at least one external control
// reference. Indicators without references are skipped.
func (b *MappingBuilder) Build(doc *frmr.Document) oscal.MappingDocument {
	var maps []oscal.Map
	for _, domain := range doc.Indicators {
		for _, ind := range domain.Indicators {
			if len(ind.Controls) == 0 {
				continue
			}
			entry := oscal.Map{
				UUID:         identity.Identifier(identity.TagMappingEntry, ind.Key),
				Relationship: relationshipSupersetOf,
				Sources: []oscal.MapItem{
					{Type: "control", IDRef: strings.ToLower(ind.Key)},
				},
			}
			for _, ref := range ind.Controls {
				entry.Targets = append(entry.Targets, oscal.MapItem{Type: "control", IDRef: ref})
			}
			maps = append(maps, entry)
		}
	}

	collectionUUID := identity.Identifier(identity.TagMappingCollection, mappingKeyPrefix+doc.Info.Version)
	return oscal.MappingDocument{
		MappingCollection: oscal.MappingCollection{
			UUID:     collectionUUID,
			Metadata: buildMetadata(mappingTitle, doc.Info, b.now()),
			Provenance: oscal.Provenance{
				Method:       provenanceMethod,
				Completeness: provenanceCompleteness,
			},
			Mappings: []oscal.Mapping{{
				UUID:           identity.Identifier(identity.TagMappingEntry, mappingKeyPrefix+doc.Info.Version),
				SourceResource: oscal.ResourceRef{Type: "catalog", Href: b.catalogHref},
				TargetResource: oscal.ResourceRef{Type: "catalog", Href: TargetCatalogHref},
				Maps:           maps,
			}},
		},
	}
}
