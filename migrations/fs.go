// Package migrations embeds SQL migrations for the sync server database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
