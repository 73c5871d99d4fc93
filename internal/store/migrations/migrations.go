// Package migrations embeds the jobs-table schema so the compiled
// queuectl binary carries its own migration history instead of
// re-issuing CREATE TABLE IF NOT EXISTS on every open.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
