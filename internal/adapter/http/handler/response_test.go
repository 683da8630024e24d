package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/entity"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, h gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.GET("/test", h)
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRespondSuccess(t *testing.T) {
	t.Run("wraps an analysis result", func(t *testing.T) {
		result := &entity.AnalysisResult{
			AnalysisID: uuid.New(),
			Disease:    "Bacterial Leaf Blight",
			StatusCode: entity.StatusDisease,
			Images:     map[string][]byte{"agreement_matrix.png": {0x89, 'P', 'N', 'G'}},
		}

		w := serve(t, func(c *gin.Context) {
			c.Set("request_id", "test-request-id")
			respondSuccess(c, http.StatusOK, result)
		})

		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Success bool                  `json:"success"`
			Data    entity.AnalysisResult `json:"data"`
			Meta    MetaInfo              `json:"meta"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response.Success)
		assert.Equal(t, "Bacterial Leaf Blight", response.Data.Disease)
		assert.Equal(t, result.Images, response.Data.Images)
		assert.Equal(t, "test-request-id", response.Meta.RequestID)
		assert.Contains(t, w.Body.String(), base64.StdEncoding.EncodeToString([]byte{0x89, 'P', 'N', 'G'}))
	})
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		code    string
		message string
	}{
		{name: "bad request", status: http.StatusBadRequest, code: "INVALID_REQUEST", message: "invalid input"},
		{name: "decode failure", status: http.StatusUnprocessableEntity, code: "DECODE_FAILURE", message: "not an image"},
		{name: "internal", status: http.StatusInternalServerError, code: "INTERNAL_ERROR", message: "something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, func(c *gin.Context) {
				respondError(c, tt.status, tt.code, tt.message)
			})

			assert.Equal(t, tt.status, w.Code)

			var response Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.False(t, response.Success)
			assert.Nil(t, response.Data)
			require.NotNil(t, response.Error)
			assert.Equal(t, tt.code, response.Error.Code)
			assert.Equal(t, tt.message, response.Error.Message)
			assert.NotEmpty(t, response.Meta.RequestID)
		})
	}
}

func TestNewMeta(t *testing.T) {
	t.Run("uses existing request ID", func(t *testing.T) {
		w := serve(t, func(c *gin.Context) {
			c.Set("request_id", "existing-id")
			c.JSON(http.StatusOK, newMeta(c))
		})

		var meta MetaInfo
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
		assert.Equal(t, "existing-id", meta.RequestID)
		assert.NotEmpty(t, meta.Timestamp)
	})

	t.Run("generates new request ID when not set", func(t *testing.T) {
		w := serve(t, func(c *gin.Context) {
			c.JSON(http.StatusOK, newMeta(c))
		})

		var meta MetaInfo
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
		_, err := uuid.Parse(meta.RequestID)
		assert.NoError(t, err)
	})
}
