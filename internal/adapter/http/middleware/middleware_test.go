package middleware_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/adapter/http/handler"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/adapter/http/middleware"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/usecase"
)

const analyzePath = "/api/v1/analyze"

func init() {
	gin.SetMode(gin.TestMode)
}

// uploadRequest builds a multipart analyze request carrying one leaf image
func uploadRequest(t *testing.T) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "leaf.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG fake leaf"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, analyzePath, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

// analyzeRouter mounts the middleware chain in front of an analyze route
// that answers with the given usecase error, or 200 when err is nil
func analyzeRouter(logger *zap.Logger, err error) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(logger), middleware.Recovery(logger), middleware.CORS())
	router.POST(analyzePath, func(c *gin.Context) {
		if _, ferr := c.FormFile("file"); ferr != nil {
			handler.HandleInvalidRequest(c, "missing file")
			return
		}
		if err != nil {
			handler.HandleUsecaseError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"disease": "Leaf Blast", "status_code": 1})
	})
	return router
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) handler.Response {
	t.Helper()
	var resp handler.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRequestID(t *testing.T) {
	t.Run("generates an ID for an upload without one", func(t *testing.T) {
		router := analyzeRouter(zap.NewNop(), nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, uploadRequest(t))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, w.Header().Get(middleware.RequestIDHeader), 36)
	})

	t.Run("caller ID reaches the error envelope", func(t *testing.T) {
		router := analyzeRouter(zap.NewNop(), fmt.Errorf("%w: bad header", usecase.ErrDecodeFailure))
		req := uploadRequest(t)
		req.Header.Set(middleware.RequestIDHeader, "field-scan-0042")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "field-scan-0042", w.Header().Get(middleware.RequestIDHeader))
		resp := decodeEnvelope(t, w)
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "DECODE_FAILURE", resp.Error.Code)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, "field-scan-0042", resp.Meta.RequestID)
	})
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
		level   zapcore.Level
	}{
		{name: "analysis completed", status: http.StatusOK, message: "Request completed", level: zapcore.InfoLevel},
		{name: "undecodable upload is a warning", err: usecase.ErrDecodeFailure, status: http.StatusUnprocessableEntity, message: "Request rejected", level: zapcore.WarnLevel},
		{name: "models unavailable is an error", err: usecase.ErrModelsUnavailable, status: http.StatusServiceUnavailable, message: "Request failed", level: zapcore.ErrorLevel},
		{name: "all models failing is an error", err: usecase.ErrNoUsablePredictions, status: http.StatusBadGateway, message: "Request failed", level: zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			router := analyzeRouter(zap.New(core), tt.err)
			req := uploadRequest(t)
			req.Header.Set(middleware.RequestIDHeader, "req-"+tt.name)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			entries := logs.FilterMessage(tt.message).All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.level, entries[0].Level)

			fields := entries[0].ContextMap()
			assert.Equal(t, http.MethodPost, fields["method"])
			assert.Equal(t, analyzePath, fields["path"])
			assert.Equal(t, "req-"+tt.name, fields["request_id"])
			assert.EqualValues(t, tt.status, fields["status"])
			if tt.status >= http.StatusInternalServerError {
				assert.Contains(t, fields["errors"], tt.err.Error())
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	t.Run("panic during analysis becomes an envelope", func(t *testing.T) {
		core, logs := observer.New(zapcore.ErrorLevel)
		logger := zap.New(core)
		router := gin.New()
		router.Use(middleware.RequestID(), middleware.Recovery(logger))
		router.POST(analyzePath, func(c *gin.Context) {
			panic("renderer crashed")
		})
		req := uploadRequest(t)
		req.Header.Set(middleware.RequestIDHeader, "req-42")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeEnvelope(t, w)
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, "req-42", resp.Meta.RequestID)
		assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
	})

	t.Run("missing upload passes through untouched", func(t *testing.T) {
		router := analyzeRouter(zap.NewNop(), nil)
		req := httptest.NewRequest(http.MethodPost, analyzePath, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_REQUEST", decodeEnvelope(t, w).Error.Code)
	})
}

func TestCORS(t *testing.T) {
	t.Run("preflight for an upload is answered without running the handler", func(t *testing.T) {
		called := false
		router := gin.New()
		router.Use(middleware.CORS())
		router.POST(analyzePath, func(c *gin.Context) {
			called = true
		})
		req := httptest.NewRequest(http.MethodOptions, analyzePath, nil)
		req.Header.Set("Origin", "https://agri.example.org")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Content-Type, X-Request-ID")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.False(t, called)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), middleware.RequestIDHeader)
	})

	t.Run("upload response exposes the request ID", func(t *testing.T) {
		router := analyzeRouter(zap.NewNop(), nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, uploadRequest(t))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, middleware.RequestIDHeader, w.Header().Get("Access-Control-Expose-Headers"))
	})
}
