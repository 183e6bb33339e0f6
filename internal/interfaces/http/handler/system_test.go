package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func systemEngine(h *SystemHandler) *gin.Engine {
	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.NoRoute(h.NoRoute)
	engine.NoMethod(h.NoMethod)
	engine.GET("/health", h.Health)
	engine.GET("/system/info", h.GetSystemInfo)
	engine.GET("/system/ping", h.Ping)
	return engine
}

func TestSystemHandler_Info(t *testing.T) {
	engine := systemEngine(NewSystemHandler("checkout-service", "1.2.3"))

	w := testutil.PerformRequest(t, engine, http.MethodGet, "/system/info", nil, nil)

	testutil.RequireStatus(t, w, http.StatusOK)
	d := data(t, w)
	assert.Equal(t, "checkout-service", d["name"])
	assert.Equal(t, "1.2.3", d["version"])
	assert.NotEmpty(t, d["go_version"])
}

func TestSystemHandler_Ping(t *testing.T) {
	engine := systemEngine(NewSystemHandler("checkout-service", "dev"))

	w := testutil.PerformRequest(t, engine, http.MethodGet, "/system/ping", nil, nil)

	testutil.RequireStatus(t, w, http.StatusOK)
	assert.Equal(t, "pong", data(t, w)["message"])
}

func TestSystemHandler_Health(t *testing.T) {
	t.Run("all dependencies up", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		sqlDB, err := db.DB()
		require.NoError(t, err)
		h := NewSystemHandler("checkout-service", "dev").
			AddCheck("database", sqlDB.PingContext)

		w := testutil.PerformRequest(t, systemEngine(h), http.MethodGet, "/health", nil, nil)

		testutil.RequireStatus(t, w, http.StatusOK)
		resp := testutil.DecodeResponse(t, w)
		assert.Equal(t, "healthy", resp["status"])
		assert.Equal(t, "ok", resp["dependencies"].(map[string]any)["database"])
	})

	t.Run("one dependency down", func(t *testing.T) {
		h := NewSystemHandler("checkout-service", "dev").
			AddCheck("database", func(context.Context) error { return nil }).
			AddCheck("redis", func(context.Context) error { return errors.New("dial tcp: connection refused") })

		w := testutil.PerformRequest(t, systemEngine(h), http.MethodGet, "/health", nil, nil)

		testutil.RequireStatus(t, w, http.StatusServiceUnavailable)
		resp := testutil.DecodeResponse(t, w)
		assert.Equal(t, "unhealthy", resp["status"])
		deps := resp["dependencies"].(map[string]any)
		assert.Equal(t, "ok", deps["database"])
		assert.Equal(t, "error", deps["redis"])
	})
}

func TestSystemHandler_Fallbacks(t *testing.T) {
	engine := systemEngine(NewSystemHandler("checkout-service", "dev"))

	w := testutil.PerformRequest(t, engine, http.MethodGet, "/nowhere", nil, nil)
	testutil.RequireStatus(t, w, http.StatusNotFound)
	assert.Equal(t, "ERR_NOT_FOUND", errorCode(t, w))

	w = testutil.PerformRequest(t, engine, http.MethodPost, "/system/ping", nil, nil)
	testutil.RequireStatus(t, w, http.StatusMethodNotAllowed)
	assert.Equal(t, "ERR_METHOD_NOT_ALLOWED", errorCode(t, w))
}
