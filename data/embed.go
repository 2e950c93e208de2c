package data

import (
	_ "embed"
)

// SeedCatalog is the demo catalog loaded by the seed operation
//
//go:embed seed/catalog.json
var SeedCatalog []byte
