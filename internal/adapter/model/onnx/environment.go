package onnx

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	envOnce sync.Once
	envErr  error
)

// InitEnvironment loads the ONNX Runtime shared library once per process
func InitEnvironment(sharedLibraryPath string) error {
	envOnce.Do(func() {
		if sharedLibraryPath != "" {
			ort.SetSharedLibraryPath(sharedLibraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			envErr = fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
	})
	return envErr
}

// DestroyEnvironment releases the ONNX Runtime environment
func DestroyEnvironment() error {
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}
