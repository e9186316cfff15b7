// Package rules persists the learned extension-to-folder table and the
// exclusion list as a JSON document under the archive root.
//
// Lookups are case-insensitive and keyed by extension; Record learns a
// mapping at most once and overwrites the backing file atomically before
// returning, so the in-memory and on-disk views never diverge for a recorded
// key. The file layout (category -> extension list plus an Exclusions entry)
// is meant to be hand-editable between runs.
package rules
