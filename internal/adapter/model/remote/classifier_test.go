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

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/entity"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/service"
)

func testTensor() *entity.Tensor {
	t := entity.NewImageTensor(2, 2, 3)
	for i := range t.Data {
		t.Data[i] = float32(i)
	}
	return t
}

func TestClassifier_Predict(t *testing.T) {
	t.Run("nested instance layout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req PredictRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Len(t, req.Instances, 1)
			// pixel (y=1, x=0) starts at flat index 6
			assert.Equal(t, []float32{6, 7, 8}, req.Instances[0][1][0])

			json.NewEncoder(w).Encode(PredictResponse{Predictions: [][]float32{{0.2, 0.3, 0.5}}})
		}))
		defer server.Close()

		classifier := NewClassifier(NewModelClient(server.URL, "m", 5*time.Second))

		probs, err := classifier.Predict(context.Background(), testTensor())

		require.NoError(t, err)
		assert.Equal(t, [][]float32{{0.2, 0.3, 0.5}}, probs)
	})

	t.Run("prediction count mismatch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(PredictResponse{})
		}))
		defer server.Close()

		classifier := NewClassifier(NewModelClient(server.URL, "m", 5*time.Second))

		_, err := classifier.Predict(context.Background(), testTensor())

		assert.Error(t, err)
	})

	t.Run("invalid tensor", func(t *testing.T) {
		classifier := NewClassifier(NewModelClient("http://unused", "m", time.Second))

		_, err := classifier.Predict(context.Background(), &entity.Tensor{Shape: []int{2}})

		assert.Error(t, err)
	})
}

func TestClassifier_Gradient(t *testing.T) {
	t.Run("round trips shape", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req GradientRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			// echo the image back as its own gradient
			json.NewEncoder(w).Encode(GradientResponse{Outputs: req.Inputs.Image})
		}))
		defer server.Close()

		classifier := NewClassifier(NewModelClient(server.URL, "m", 5*time.Second))
		input := testTensor()

		grad, err := classifier.Gradient(context.Background(), input, 1)

		require.NoError(t, err)
		assert.Equal(t, input.Shape, grad.Shape)
		assert.Equal(t, input.Data, grad.Data)
	})

	t.Run("wrong gradient shape", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(GradientResponse{Outputs: [][][][]float32{{{{1}}}}})
		}))
		defer server.Close()

		classifier := NewClassifier(NewModelClient(server.URL, "m", 5*time.Second))

		_, err := classifier.Gradient(context.Background(), testTensor(), 0)

		assert.ErrorIs(t, err, service.ErrInvalidGradient)
	})

	t.Run("missing gradient", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(GradientResponse{})
		}))
		defer server.Close()

		classifier := NewClassifier(NewModelClient(server.URL, "m", 5*time.Second))

		_, err := classifier.Gradient(context.Background(), testTensor(), 0)

		assert.ErrorIs(t, err, service.ErrInvalidGradient)
	})
}

func TestClassifier_Close(t *testing.T) {
	classifier := NewClassifier(NewModelClient("http://unused", "m", time.Second))

	assert.NoError(t, classifier.Close())
}
