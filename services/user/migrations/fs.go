// Package migrations embeds the user service schema migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
