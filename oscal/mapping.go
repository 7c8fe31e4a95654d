package oscal

// MappingDocument is the root wrapper of a mapping-collection file.
type MappingDocument struct {
	MappingCollection MappingCollection `json:"mapping-collection"`
}

// MappingCollection cross-references indicators against an external catalog.
type MappingCollection struct {
	UUID       string     `json:"uuid"`
	Metadata   Metadata   `json:"metadata"`
	Provenance Provenance `json:"provenance"`
	Mappings   []Mapping  `json:"mappings"`
}

// Provenance describes how the mapping data was produced.
type Provenance struct {
	Method       string `json:"method"`
	Completeness string `json:"completeness"`
}

// Mapping relates one source catalog to one target catalog.
type Mapping struct {
	UUID           string      `json:"uuid"`
	SourceResource ResourceRef `json:"source-resource"`
	TargetResource ResourceRef `json:"target-resource"`
	Maps           []Map       `json:"maps"`
}

// ResourceRef points at a mapped document.
type ResourceRef struct {
	Type string `json:"type"`
	Href string `json:"href"`
}

// Map is one cross-reference entry: one source control related to one or
// more target controls.
type Map struct {
	UUID         string    `json:"uuid"`
	Relationship string    `json:"relationship"`
	Sources      []MapItem `json:"sources"`
	Targets      []MapItem `json:"targets"`
}

// MapItem references a control by id on either side of a map.
type MapItem struct {
	Type  string `json:"type"`
	IDRef string `json:"id-ref"`
}
