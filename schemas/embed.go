// Package schemas holds the JSON Schema files for the data exchanged with
// clients and stored in caches.
package schemas

import "embed"

// Files contains every *.schema.json file in this directory.
//
//go:embed *.schema.json
var Files embed.FS

// ResumeDocument is the file name of the resume document schema.
const ResumeDocument = "resume_document.schema.json"
