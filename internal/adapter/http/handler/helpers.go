package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/entity"
)

// PaginationParams holds pagination parameters
type PaginationParams struct {
	Limit  int
	Offset int
}

// Default pagination values
const (
	DefaultLimit  = 20
	MaxLimit      = 100
	DefaultOffset = 0
)

// UploadFields are the accepted multipart field names, in lookup order
var UploadFields = []string{"file", "image"}

// Upload errors
var (
	ErrNoFile       = errors.New("no image file provided")
	ErrFileTooLarge = errors.New("image file too large")
)

// ParsePagination extracts and validates pagination parameters from the request.
// It returns validated PaginationParams with safe default values.
func ParsePagination(c *gin.Context) *PaginationParams {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", strconv.Itoa(DefaultOffset)))
	if err != nil || offset < 0 {
		offset = DefaultOffset
	}

	return &PaginationParams{
		Limit:  limit,
		Offset: offset,
	}
}

// ExtractUUIDParam extracts and parses a UUID parameter from the URL path.
// Returns the parsed UUID or an error if the parameter is invalid.
func ExtractUUIDParam(c *gin.Context, param string) (uuid.UUID, error) {
	idStr := c.Param(param)
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", param, err)
	}
	return id, nil
}

// ParseStatusFilter reads the optional status_code query parameter.
// It returns nil when the parameter is absent.
func ParseStatusFilter(c *gin.Context) (*int, error) {
	raw, ok := c.GetQuery("status_code")
	if !ok || raw == "" {
		return nil, nil
	}
	code, err := strconv.Atoi(raw)
	if err != nil || !IsValidStatusCode(code) {
		return nil, fmt.Errorf("invalid status_code %q", raw)
	}
	return &code, nil
}

// IsValidStatusCode checks if code is one of the verdict status codes
func IsValidStatusCode(code int) bool {
	switch code {
	case entity.StatusHealthy, entity.StatusDisease, entity.StatusNotPaddy:
		return true
	}
	return false
}

// ReadUpload reads the uploaded image from the first present field in UploadFields.
// The request body is capped at maxBytes when maxBytes is positive.
func ReadUpload(c *gin.Context, maxBytes int64) (string, []byte, error) {
	if maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	}

	for _, field := range UploadFields {
		file, header, err := c.Request.FormFile(field)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return "", nil, ErrFileTooLarge
			}
			continue
		}

		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return "", nil, fmt.Errorf("read upload: %w", err)
		}
		if len(data) == 0 {
			return "", nil, ErrNoFile
		}
		return header.Filename, data, nil
	}
	return "", nil, ErrNoFile
}
