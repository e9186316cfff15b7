// Package classifier is the remote classification boundary backed by the
// Gemini API.
//
// Each operation sends one structured-output request (JSON response schema)
// and decodes the answer into a typed result: folder suggestions for unknown
// extensions, project labels for code samples, descriptive titles for image
// batches, and subfolder assignments for PDFs. Failures are tagged transient
// so the caller's retry policy decides how often to re-ask; the package never
// retries on its own.
package classifier
