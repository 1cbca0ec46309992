// Package migrations holds the goose SQL migrations of the auto-setup
// database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
