package ingest

import (
	"bytes"

	"ppetl/internal/config"
)

// sqliteMagic opens every SQLite 3 database file.
var sqliteMagic = []byte("SQLite format 3\x00")

// sniffLen is how many leading bytes Detect needs.
const sniffLen = 16

// Detect classifies an input by its leading bytes: config.SourceDatabase
// for a SQLite file, config.SourceFile otherwise.
func Detect(head []byte) string {
	if bytes.HasPrefix(head, sqliteMagic) {
		return config.SourceDatabase
	}
	return config.SourceFile
}
