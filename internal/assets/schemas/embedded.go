// Package schemasassets provides embedded JSON schemas for standalone binary behavior.
//
// Schemas are embedded at compile time so validation works regardless of
// the working directory or installation location.
package schemasassets

import _ "embed"

// ProfileDocumentSchema is the embedded profile-document JSON schema.
//
// Uploaded profile documents are validated against it before metadata
// normalization. The schema constrains only the metadata fields the
// service itself consumes; all other keys pass through unconstrained.
//
//go:embed profile-document.schema.json
var ProfileDocumentSchema []byte
