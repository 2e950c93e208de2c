package database_test

import (
	"testing"

	"github.com/localnerve/storefront-data/internal/config"
	"github.com/localnerve/storefront-data/internal/database"
	"github.com/localnerve/storefront-data/internal/models"
	"github.com/localnerve/storefront-data/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialector(t *testing.T) {
	tests := []struct {
		dbType string
		name   string
	}{
		{"mysql", "mysql"},
		{"mariadb", "mysql"},
		{"postgres", "postgres"},
		{"sqlite", "sqlite"},
		{"sqlite-purego", "sqlite"},
		{"sqlserver", "sqlserver"},
	}
	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			dialector, err := database.Dialector(&config.Config{
				DBType: tt.dbType, DBHost: "localhost", DBPort: "1", DBDatabase: "shop", DBUser: "shop",
			})
			require.NoError(t, err)
			assert.Equal(t, tt.name, dialector.Name())
		})
	}

	_, err := database.Dialector(&config.Config{DBType: "oracle"})
	assert.Error(t, err)
}

func TestPureGoSQLiteMigrates(t *testing.T) {
	cfg := testutil.Config(t)
	cfg.DBType = "sqlite-purego"
	db := testutil.ConnectDB(t, cfg)

	for _, model := range models.AllModels() {
		assert.True(t, db.Migrator().HasTable(model), "%T has no table", model)
	}
	assert.True(t, db.Migrator().HasIndex(&models.Variant{}, "SKU"))
}
