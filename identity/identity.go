// Package identity derives deterministic identifiers for converted entities.
// Every identifier is a name-based (version 5) UUID computed from a fixed
// root namespace, an entity-kind tag, and a semantic key, so repeated runs
// over the same source produce byte-identical documents.
package identity

import "github.com/google/uuid"

// Tag partitions the identifier space by entity kind. Two entities of
// different kinds never collide, even when they share a semantic key.
type Tag string

const (
	// TagGlossaryTerm identifies back-matter glossary resources.
	TagGlossaryTerm Tag = "glossary-term"

	// TagParty identifies metadata parties.
	TagParty Tag = "party"

	// TagCatalog identifies the catalog document itself.
	TagCatalog Tag = "catalog"

	// TagMappingCollection identifies the mapping-collection document.
	TagMappingCollection Tag = "mapping-collection"

	// TagMappingEntry identifies individual cross-reference entries.
	TagMappingEntry Tag = "mapping-entry"
)

// rootNamespace anchors all derived namespaces. Changing it changes every
// identifier this package has ever produced, so it is frozen.
var rootNamespace = uuid.MustParse("8e5dd8f4-6a2b-51f1-8a5f-cd70ffa1345e")

// Namespace returns the sub-namespace UUID for an entity-kind tag,
// derived by hashing the tag under the root namespace.
func Namespace(tag Tag) uuid.UUID {
	return uuid.NewSHA1(rootNamespace, []byte(tag))
}

// Identifier returns the deterministic identifier for key within the
// tag's namespace. It is a pure function: any string key is valid and
// the same (tag, key) pair always yields the same value.
func Identifier(tag Tag, key string) string {
	return uuid.NewSHA1(Namespace(tag), []byte(key)).String()
}
