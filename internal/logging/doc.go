// Package logging wraps log/slog with curator's handler setup and attribute
// conventions.
//
// New builds a console handler (colorized when attached to a terminal) with an
// optional JSON file copy. Helpers expose typed attribute constructors, the
// standardized field keys used across packages, and context-derived loggers so
// stages inherit run and stage fields without threading them manually.
package logging
