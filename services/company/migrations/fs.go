// Package migrations embeds the company service schema migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
