package router

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/infrastructure/metrics"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestSetup_Routes(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.New(reg).ObserveCacheHit()

	router := Setup(Deps{
		Analysis:       usecase.NewAnalysisUsecase(usecase.Dependencies{}),
		Gatherer:       reg,
		MaxUploadBytes: 1 << 20,
		Logger:         zap.NewNop(),
	})

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{name: "health reports missing models", method: http.MethodGet, path: "/health", status: http.StatusServiceUnavailable},
		{name: "not ready without models", method: http.MethodGet, path: "/ready", status: http.StatusServiceUnavailable},
		{name: "metrics", method: http.MethodGet, path: "/metrics", status: http.StatusOK},
		{name: "models", method: http.MethodGet, path: "/api/v1/models", status: http.StatusOK},
		{name: "history disabled", method: http.MethodGet, path: "/api/v1/analyses", status: http.StatusServiceUnavailable},
		{name: "preflight", method: http.MethodOptions, path: "/api/v1/analyze", status: http.StatusNoContent},
		{name: "unknown route", method: http.MethodGet, path: "/api/v1/analyses/latest/heatmap", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}

	t.Run("metrics exposes collectors", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Contains(t, w.Body.String(), "paddy_cache_hits_total 1")
	})
}

func TestSetup_AnalyzeWithoutModels(t *testing.T) {
	router := Setup(Deps{
		Analysis:       usecase.NewAnalysisUsecase(usecase.Dependencies{}),
		Gatherer:       prometheus.NewRegistry(),
		MaxUploadBytes: 1 << 20,
		Logger:         zap.NewNop(),
	})

	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.NRGBA{0, 200, 0, 255})
	var data bytes.Buffer
	require.NoError(t, png.Encode(&data, img))

	for _, path := range []string{"/analyze", "/api/v1/analyze"} {
		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		part, err := writer.CreateFormFile("file", "leaf.png")
		require.NoError(t, err)
		_, err = part.Write(data.Bytes())
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req, _ := http.NewRequest(http.MethodPost, path, &body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
		assert.Contains(t, w.Body.String(), "MODELS_UNAVAILABLE", path)
	}
}
