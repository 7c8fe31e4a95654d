// Package oscal defines the target wire contract: the subset of the OSCAL
// catalog and mapping-collection models the converter emits. Field names
// and nesting are fixed by the downstream schema and must not change.
package oscal

// Version is the OSCAL schema version the emitted documents declare.
const Version = "1.1.3"

// CatalogDocument is the root wrapper of a catalog file.
type CatalogDocument struct {
	Catalog Catalog `json:"catalog"`
}

// Catalog is a tree of groups and controls plus back-matter resources.
type Catalog struct {
	UUID       string      `json:"uuid"`
	Metadata   Metadata    `json:"metadata"`
	Groups     []Group     `json:"groups"`
	BackMatter *BackMatter `json:"back-matter,omitempty"`
}

// Metadata is the document metadata block shared by both output documents.
type Metadata struct {
	Title              string             `json:"title"`
	LastModified       string             `json:"last-modified"`
	Version            string             `json:"version"`
	OSCALVersion       string             `json:"oscal-version"`
	Parties            []Party            `json:"parties,omitempty"`
	ResponsibleParties []ResponsibleParty `json:"responsible-parties,omitempty"`
	Remarks            string             `json:"remarks,omitempty"`
}

// Party identifies an organization or person in metadata.
type Party struct {
	UUID string `json:"uuid"`
	Type string `json:"type"`
	Name string `json:"name"`
}

// ResponsibleParty binds a metadata role to parties.
type ResponsibleParty struct {
	RoleID     string   `json:"role-id"`
	PartyUUIDs []string `json:"party-uuids"`
}

// Group is a thematic node in the catalog tree.
type Group struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Props    []Prop    `json:"props,omitempty"`
	Parts    []Part    `json:"parts,omitempty"`
	Groups   []Group   `json:"groups,omitempty"`
	Controls []Control `json:"controls,omitempty"`
}

// Control is a leaf requirement or indicator in the catalog tree.
type Control struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Props []Prop `json:"props,omitempty"`
	Links []Link `json:"links,omitempty"`
	Parts []Part `json:"parts,omitempty"`
}

// Prop is an ordered name/value annotation.
type Prop struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Class string `json:"class,omitempty"`
}

// Link is a typed reference to another resource or fragment.
type Link struct {
	Href string `json:"href"`
	Rel  string `json:"rel,omitempty"`
	Text string `json:"text,omitempty"`
}

// Part is a node in a control's narrative tree.
type Part struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Props []Prop `json:"props,omitempty"`
	Prose string `json:"prose,omitempty"`
	Parts []Part `json:"parts,omitempty"`
}

// BackMatter holds the document's appendix resources.
type BackMatter struct {
	Resources []Resource `json:"resources"`
}

// Resource is one back-matter entry, here always a glossary term.
type Resource struct {
	UUID        string    `json:"uuid"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Props       []Prop    `json:"props,omitempty"`
	Citation    *Citation `json:"citation,omitempty"`
}

// Citation is a resource's bibliographic reference.
type Citation struct {
	Text string `json:"text"`
}
