// Package migrations embeds the notification service schema migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
