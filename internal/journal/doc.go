// Package journal records run history in SQLite for the history CLI views.
//
// Each organizing pass gets a runs row plus one run_items row per decision
// (moved, excluded, too recent, failed, ...). The journal is write-only from
// the pipeline's perspective: triage and the batch stages decide from the
// filesystem and the rule store alone, so deleting the database never changes
// organizing behavior. Schema changes bump schemaVersion in store.go.
package journal
