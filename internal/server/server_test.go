// server_test.go
//
// Storefront data service for catalog, orders and digital delivery
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of storefront-data.
// storefront-data is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// storefront-data is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with storefront-data.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/storefront-data/internal/server"
	"github.com/localnerve/storefront-data/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	app   *fiber.App
	db    *gorm.DB
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := testutil.Config(t)
	db := testutil.ConnectDB(t, cfg)
	store := testutil.NewStore(t)

	return &testServer{
		app:   server.NewApp(cfg, db, store, server.Options{}),
		db:    db,
		token: testutil.AcquireAdminToken(t, db, "admin"),
	}
}

// do sends a request, authenticated when admin is set, and decodes a JSON response into out
func (s *testServer) do(t *testing.T, method, path string, admin bool, body interface{}, out interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err, "Failed to execute request")

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out), "Failed to decode response")
	}
	return resp
}

type mutation struct {
	ID string `json:"id"`
	Ok bool   `json:"ok"`
}

type errorEnvelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Ok      bool   `json:"ok"`
	Type    string `json:"type"`
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	var result map[string]interface{}
	resp := s.do(t, "GET", "/api/health", false, nil, &result)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", result["status"])
	assert.Equal(t, "1.0.0", resp.Header.Get("X-Api-Version"))
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	var envelope errorEnvelope
	resp := s.do(t, "GET", "/api/nothing-here", false, nil, &envelope)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.False(t, envelope.Ok)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	var envelope errorEnvelope
	resp := s.do(t, "POST", "/api/categories", false, map[string]interface{}{"name": "A", "slug": "a"}, &envelope)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Authorization bearer token not found", envelope.Message)

	resp = s.do(t, "POST", "/api/admin/login", false, map[string]string{"username": "admin", "password": "wrong-password"}, &envelope)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid username or password", envelope.Message)
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t)

	var created mutation
	resp := s.do(t, "POST", "/api/categories", true, map[string]interface{}{"name": "Agendas", "slug": "agendas"}, &created)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, created.Ok)
	categoryID := created.ID

	var envelope errorEnvelope
	resp = s.do(t, "POST", "/api/categories", true, map[string]interface{}{"name": "Otra", "slug": "agendas"}, &envelope)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "duplicate", envelope.Type)

	resp = s.do(t, "POST", "/api/products", true, map[string]interface{}{
		"name":        "Agenda Patche 2025",
		"slug":        "agenda-2025",
		"description": "Agenda anual",
		"basePrice":   "299",
		"type":        "physical",
		"categoryId":  categoryID,
	}, &created)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	productID := created.ID

	resp = s.do(t, "POST", "/api/variants", true, map[string]interface{}{
		"productId": productID,
		"name":      "Agenda - Rosa",
		"stock":     3,
		"sku":       "AGD-2025-RS",
	}, &created)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	variantID := created.ID

	var product map[string]interface{}
	resp = s.do(t, "GET", "/api/products/slug/agenda-2025", false, nil, &product)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, productID, product["id"])

	var products []map[string]interface{}
	resp = s.do(t, "GET", "/api/products/search?q=anual", false, nil, &products)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, products, 1)

	resp = s.do(t, "GET", "/api/products?type=service", false, nil, &envelope)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	t.Run("decrement", func(t *testing.T) {
		resp := s.do(t, "POST", "/api/variants/"+variantID+"/decrement", false, map[string]interface{}{"quantity": "2"}, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var envelope errorEnvelope
		resp = s.do(t, "POST", "/api/variants/"+variantID+"/decrement", false, map[string]interface{}{"quantity": 2}, &envelope)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
		assert.Equal(t, "Insufficient stock", envelope.Message)

		resp = s.do(t, "POST", "/api/variants/"+variantID+"/decrement", false, map[string]interface{}{"quantity": 0.5}, &envelope)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var variant map[string]interface{}
		resp = s.do(t, "GET", "/api/variants/sku/AGD-2025-RS", false, nil, &variant)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.EqualValues(t, 1, variant["stock"])
	})

	t.Run("category in use", func(t *testing.T) {
		var envelope errorEnvelope
		resp := s.do(t, "DELETE", "/api/categories/"+categoryID, true, nil, &envelope)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
		assert.Equal(t, "Cannot delete category with associated products", envelope.Message)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/categories", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.token)
		resp, err := s.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestSettingsRoutes(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, "GET", "/api/settings", false, nil, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	var envelope errorEnvelope
	resp = s.do(t, "POST", "/api/settings/next-order-number", true, nil, &envelope)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = s.do(t, "POST", "/api/settings/initialize", true, nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var next struct {
		OrderNumber string `json:"orderNumber"`
	}
	resp = s.do(t, "POST", "/api/settings/next-order-number", true, nil, &next)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "#PTCH1001", next.OrderNumber)

	var settings map[string]interface{}
	resp = s.do(t, "GET", "/api/settings", false, nil, &settings)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1001, settings["lastOrderNumber"])
}

func TestDigitalOrderFlow(t *testing.T) {
	s := newTestServer(t)

	var seeded map[string]int
	resp := s.do(t, "POST", "/api/admin/seed", true, nil, &seeded)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 7, seeded["products"])

	var product struct {
		ID string `json:"id"`
	}
	resp = s.do(t, "GET", "/api/products/slug/wallpapers-pack", false, nil, &product)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var files []struct {
		ID string `json:"id"`
	}
	resp = s.do(t, "GET", "/api/products/"+product.ID+"/files", false, nil, &files)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, files, 1)

	// upload the file content and attach it
	var upload struct {
		UploadURL string `json:"uploadUrl"`
	}
	resp = s.do(t, "POST", "/api/storage/upload-url", true, nil, &upload)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	path := strings.TrimPrefix(upload.UploadURL, "http://localhost:3000")

	req := httptest.NewRequest("POST", path, strings.NewReader("PK-zip-bytes"))
	req.Header.Set("Content-Type", "application/zip")
	uploadResp, err := s.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, uploadResp.StatusCode)
	var stored struct {
		StorageID string `json:"storageId"`
	}
	require.NoError(t, json.NewDecoder(uploadResp.Body).Decode(&stored))

	resp = s.do(t, "PATCH", "/api/files/"+files[0].ID, true, map[string]interface{}{"storageId": stored.StorageID}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var order struct {
		ID          string `json:"id"`
		OrderNumber string `json:"orderNumber"`
		Total       string `json:"total"`
	}
	resp = s.do(t, "POST", "/api/orders", false, map[string]interface{}{
		"email":                 "luis@example.com",
		"items":                 []map[string]interface{}{{"productId": product.ID, "quantity": 1}},
		"paymentMethod":         "card",
		"stripePaymentIntentId": "pi_flow",
	}, &order)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "#PTCH1001", order.OrderNumber)
	assert.Equal(t, "49.00", order.Total)

	var envelope errorEnvelope
	resp = s.do(t, "POST", "/api/orders/"+order.ID+"/downloads", true, nil, &envelope)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = s.do(t, "PATCH", "/api/orders/"+order.ID+"/status", true, map[string]string{"status": "pending"}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var links []struct {
		Token              string `json:"token"`
		DownloadsRemaining int    `json:"downloadsRemaining"`
	}
	resp = s.do(t, "GET", "/api/orders/"+order.ID+"/downloads", true, nil, &links)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, links, 1)
	assert.Equal(t, 5, links[0].DownloadsRemaining)

	for i := 0; i < 5; i++ {
		resp = s.do(t, "GET", "/api/downloads/"+links[0].Token, false, nil, nil)
		require.Equal(t, fiber.StatusFound, resp.StatusCode)
		assert.Equal(t, "http://localhost:3000/api/storage/files/"+stored.StorageID, resp.Header.Get("Location"))
	}

	resp = s.do(t, "GET", "/api/downloads/"+links[0].Token, false, nil, &envelope)
	assert.Equal(t, fiber.StatusGone, resp.StatusCode)
	assert.Equal(t, "Download limit reached", envelope.Message)

	req = httptest.NewRequest("GET", "/api/storage/files/"+stored.StorageID, nil)
	fileResp, err := s.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, fileResp.StatusCode)
	assert.Equal(t, "application/zip", fileResp.Header.Get("Content-Type"))
	content, err := io.ReadAll(fileResp.Body)
	require.NoError(t, err)
	assert.Equal(t, "PK-zip-bytes", string(content))

	var found map[string]interface{}
	resp = s.do(t, "GET", "/api/orders/number/PTCH1001", true, nil, &found)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "pending", found["status"])

	resp = s.do(t, "POST", "/api/admin/clear", true, nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = s.do(t, "GET", "/api/products/"+product.ID, false, nil, &envelope)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestStorageURLs(t *testing.T) {
	s := newTestServer(t)

	var upload struct {
		UploadURL string `json:"uploadUrl"`
	}
	resp := s.do(t, "POST", "/api/storage/upload-url", true, nil, &upload)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	req := httptest.NewRequest("POST", strings.TrimPrefix(upload.UploadURL, "http://localhost:3000"), strings.NewReader("poster"))
	req.Header.Set("Content-Type", "image/png")
	uploadResp, err := s.app.Test(req)
	require.NoError(t, err)
	var stored struct {
		StorageID string `json:"storageId"`
	}
	require.NoError(t, json.NewDecoder(uploadResp.Body).Decode(&stored))

	fileURL := "http://localhost:3000/api/storage/files/" + stored.StorageID

	// a single id is accepted in place of a list
	var urls []*string
	resp = s.do(t, "POST", "/api/storage/urls", true, map[string]interface{}{"storageIds": stored.StorageID}, &urls)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, urls, 1)
	assert.Equal(t, fileURL, *urls[0])

	urls = nil
	resp = s.do(t, "POST", "/api/storage/urls", true, map[string]interface{}{"storageIds": []string{stored.StorageID, " ", "missing"}}, &urls)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, urls, 2)
	assert.Equal(t, fileURL, *urls[0])
	assert.Nil(t, urls[1])

	urls = nil
	resp = s.do(t, "POST", "/api/storage/urls?ids=missing,"+stored.StorageID, true, nil, &urls)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, urls, 2)
	assert.Nil(t, urls[0])
	assert.Equal(t, fileURL, *urls[1])

	// a second upload with the spent token is refused
	req = httptest.NewRequest("POST", strings.TrimPrefix(upload.UploadURL, "http://localhost:3000"), strings.NewReader("again"))
	againResp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, againResp.StatusCode)
}
