package migrations

import "embed"

// FS holds the SQL migrations applied by cmd/migrate and migrate-on-boot.
//
//go:embed *.sql
var FS embed.FS
