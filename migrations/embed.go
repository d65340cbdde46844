package migrations

import "embed"

// Files stores forward-only SQLite migrations embedded into the binary.
// The first migration matches the schema written by the earlier Flask and
// Express backends so their endocare.db files upgrade in place.
//
//go:embed *.sql
var Files embed.FS
