// Package services defines the shared error taxonomy and context annotations
// used by pipeline stages and external-service clients.
//
// Errors are tagged with sentinel markers (transient, permanent, validation,
// configuration) via Wrap so callers classify failures with errors.Is instead
// of string matching. The retry subpackage turns transient failures into
// either a success or a permanent per-item failure.
package services
