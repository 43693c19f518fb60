// Package migrations embeds the SQL schema applied at start-up.
package migrations

import "embed"

// FS holds the goose migration files.
//
//go:embed *.sql
var FS embed.FS
