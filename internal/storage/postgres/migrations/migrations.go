// Package migrations embeds the SQL schema for the postgres storage backend.
package migrations

import "embed"

// FS holds the *.sql migration files.
//
//go:embed *.sql
var FS embed.FS
