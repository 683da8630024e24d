package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelClient_Predict(t *testing.T) {
	t.Run("successful prediction", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/models/resnet50:predict", r.URL.Path)
			assert.Equal(t, "POST", r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var req PredictRequest
			err := json.NewDecoder(r.Body).Decode(&req)
			require.NoError(t, err)
			require.Len(t, req.Instances, 1)
			assert.Equal(t, float32(3), req.Instances[0][0][1][0])

			resp := PredictResponse{Predictions: [][]float32{{0.1, 0.9}}}
			w.Header().Set("Content-Type", "application/json")
			err = json.NewEncoder(w).Encode(resp)
			require.NoError(t, err)
		}))
		defer server.Close()

		client := NewModelClient(server.URL, "resnet50", 5*time.Second)
		result, err := client.Predict(context.Background(), [][][][]float32{{{{1, 2}, {3, 4}}}})

		require.NoError(t, err)
		assert.Equal(t, [][]float32{{0.1, 0.9}}, result.Predictions)
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, err := w.Write([]byte("internal error"))
			require.NoError(t, err)
		}))
		defer server.Close()

		client := NewModelClient(server.URL, "resnet50", 5*time.Second)
		_, err := client.Predict(context.Background(), nil)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "500")
		assert.Contains(t, err.Error(), "internal error")
	})

	t.Run("malformed response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("{"))
		}))
		defer server.Close()

		client := NewModelClient(server.URL, "resnet50", 5*time.Second)
		_, err := client.Predict(context.Background(), nil)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "decode")
	})

	t.Run("connection error", func(t *testing.T) {
		client := NewModelClient("http://localhost:99999", "resnet50", 1*time.Second)
		_, err := client.Predict(context.Background(), nil)

		assert.Error(t, err)
	})
}

func TestModelClient_Gradient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models/vgg16:predict", r.URL.Path)

		var req GradientRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		require.NoError(t, err)
		assert.Equal(t, GradientSignature, req.SignatureName)
		assert.Equal(t, []int{4}, req.Inputs.ClassIndex)
		require.Len(t, req.Inputs.Image, 1)

		err = json.NewEncoder(w).Encode(GradientResponse{Outputs: [][][][]float32{{{{0.5}}}}})
		require.NoError(t, err)
	}))
	defer server.Close()

	client := NewModelClient(server.URL, "vgg16", 5*time.Second)
	result, err := client.Gradient(context.Background(), [][][]float32{{{1}}}, 4)

	require.NoError(t, err)
	assert.Equal(t, float32(0.5), result.Outputs[0][0][0][0])
}

func TestModelClient_Status(t *testing.T) {
	t.Run("available model", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/models/xception", r.URL.Path)
			assert.Equal(t, "GET", r.Method)

			resp := StatusResponse{ModelVersionStatus: []VersionStatus{{Version: "1", State: "AVAILABLE"}}}
			w.Header().Set("Content-Type", "application/json")
			err := json.NewEncoder(w).Encode(resp)
			require.NoError(t, err)
		}))
		defer server.Close()

		client := NewModelClient(server.URL, "xception", 5*time.Second)
		result, err := client.Status(context.Background())

		require.NoError(t, err)
		assert.True(t, result.Available())
	})

	t.Run("loading model is not available", func(t *testing.T) {
		status := StatusResponse{ModelVersionStatus: []VersionStatus{{Version: "2", State: "LOADING"}}}

		assert.False(t, status.Available())
	})

	t.Run("unknown model", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewModelClient(server.URL, "missing", 5*time.Second)
		_, err := client.Status(context.Background())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})
}
