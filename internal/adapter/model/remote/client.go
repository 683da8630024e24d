package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// GradientSignature is the serving signature that returns input gradients
const GradientSignature = "input_gradients"

// PredictRequest is a row-format predict request
type PredictRequest struct {
	SignatureName string          `json:"signature_name,omitempty"`
	Instances     [][][][]float32 `json:"instances"`
}

// PredictResponse is a row-format predict response
type PredictResponse struct {
	Predictions [][]float32 `json:"predictions"`
}

// GradientInputs are the named inputs of the gradient signature
type GradientInputs struct {
	Image      [][][][]float32 `json:"image"`
	ClassIndex []int           `json:"class_index"`
}

// GradientRequest is a columnar-format request to the gradient signature
type GradientRequest struct {
	SignatureName string         `json:"signature_name"`
	Inputs        GradientInputs `json:"inputs"`
}

// GradientResponse holds the input gradient, shaped like the image input
type GradientResponse struct {
	Outputs [][][][]float32 `json:"outputs"`
}

// VersionStatus describes one served model version
type VersionStatus struct {
	Version string `json:"version"`
	State   string `json:"state"`
}

// StatusResponse is the model status response
type StatusResponse struct {
	ModelVersionStatus []VersionStatus `json:"model_version_status"`
}

// Available reports whether any version is being served
func (s StatusResponse) Available() bool {
	for _, v := range s.ModelVersionStatus {
		if v.State == "AVAILABLE" {
			return true
		}
	}
	return false
}

// ModelClient is an HTTP client for one model on a model server
type ModelClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewModelClient creates a new model server client
func NewModelClient(baseURL, model string, timeout time.Duration) *ModelClient {
	return &ModelClient{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *ModelClient) modelURL() string {
	return c.baseURL + "/v1/models/" + url.PathEscape(c.model)
}

// Predict runs the default serving signature
func (c *ModelClient) Predict(ctx context.Context, instances [][][][]float32) (*PredictResponse, error) {
	var result PredictResponse
	if err := c.post(ctx, c.modelURL()+":predict", PredictRequest{Instances: instances}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Gradient runs the gradient signature for one image and class
func (c *ModelClient) Gradient(ctx context.Context, image [][][]float32, classIndex int) (*GradientResponse, error) {
	reqBody := GradientRequest{
		SignatureName: GradientSignature,
		Inputs: GradientInputs{
			Image:      [][][][]float32{image},
			ClassIndex: []int{classIndex},
		},
	}

	var result GradientResponse
	if err := c.post(ctx, c.modelURL()+":predict", reqBody, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Status checks the served versions of the model
func (c *ModelClient) Status(ctx context.Context) (*StatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.modelURL(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model server returned status %d", resp.StatusCode)
	}

	var result StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

func (c *ModelClient) post(ctx context.Context, endpoint string, reqBody, out interface{}) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err != nil {
			return fmt.Errorf("model server returned status %d", resp.StatusCode)
		}
		return fmt.Errorf("model server returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
