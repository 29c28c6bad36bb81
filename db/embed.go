package db

import "embed"

// Seeders holds the sample-data SQL applied by `cli seed`.
//
//go:embed seeders/*.sql
var Seeders embed.FS
