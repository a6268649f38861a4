// Package slug maps volatile vendor identifiers to stable, human-readable
// external identifiers.
//
// Each plugin identity is a namespace. Within a namespace the mapping is
// injective in both directions: one slug per vendor id and one vendor id
// per slug. A slug, once assigned, never changes; renaming the vendor
// entity only changes its display name.
//
// New mappings are flushed synchronously to a [Store]. Flush failures are
// logged and swallowed: the in-memory mapping stays authoritative for the
// life of the process.
//
// Mappings are never garbage collected. Slugs for entities deleted on the
// backend stay reserved so that a returning entity keeps its identifier.
package slug
