package services_test

import (
	"context"
	"testing"

	"github.com/localnerve/storefront-data/internal/services"
	"github.com/localnerve/storefront-data/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHealthCheck(t *testing.T) {
	cfg := testutil.Config(t)
	db := testutil.ConnectDB(t, cfg)
	store := testutil.NewFlakyStore(testutil.NewStore(t))

	result := services.HealthCheck(context.Background(), cfg, db, store)
	assert.Equal(t, "healthy", result.Status)
	assert.Equal(t, "ok", result.Database)
	assert.Equal(t, "ok", result.BlobStore)
	assert.Equal(t, "sqlite", result.Details["database_type"])

	store.SetFailing(true)
	result = services.HealthCheck(context.Background(), cfg, db, store)
	assert.Equal(t, "unhealthy", result.Status)
	assert.Equal(t, "unreachable", result.BlobStore)
	assert.Contains(t, result.ErrorMessage, testutil.ErrStoreDown.Error())
}
