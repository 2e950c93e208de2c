package models

import (
	"github.com/google/uuid"
)

// ensureID assigns a new UUID when the record has none yet
func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// AllModels lists every persisted model in dependency order, parents first
func AllModels() []interface{} {
	return []interface{}{
		&StoreSettings{},
		&Category{},
		&Collection{},
		&Product{},
		&ProductCollection{},
		&Variant{},
		&DigitalFile{},
		&Order{},
		&DownloadLink{},
		&AdminUser{},
		&BlobCleanup{},
	}
}
