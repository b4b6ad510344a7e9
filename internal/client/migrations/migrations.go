// Package migrations embeds the ordered schema steps of the local store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
