// Package migrations embeds the ordered SQL schema files applied at startup
// by database.RunMigrations.
package migrations

import "embed"

// FS holds the *.up.sql files, applied in lexical order.
//
//go:embed *.sql
var FS embed.FS
