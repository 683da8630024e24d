package preprocess

import (
	"fmt"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/entity"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/service"
)

// Preprocessing modes of the common ImageNet backbones
const (
	ModeCaffe = "caffe"
	ModeTF    = "tf"
	ModeTorch = "torch"
	ModeUnit  = "unit"
	ModeRaw   = "raw"
)

// ImageNet channel means in BGR order, as used by caffe-style models
var caffeMeanBGR = [3]float32{103.939, 116.779, 123.68}

var (
	torchMean = [3]float32{0.485, 0.456, 0.406}
	torchStd  = [3]float32{0.229, 0.224, 0.225}
)

// ForMode returns the preprocessing function for a mode name
func ForMode(mode string) (service.PreprocessFunc, error) {
	switch mode {
	case ModeCaffe:
		return Caffe, nil
	case ModeTF:
		return TF, nil
	case ModeTorch:
		return Torch, nil
	case ModeUnit:
		return Unit, nil
	case ModeRaw, "":
		return Raw, nil
	default:
		return nil, fmt.Errorf("unknown preprocessing mode %q", mode)
	}
}

// Caffe converts RGB to BGR and subtracts the ImageNet mean without scaling
func Caffe(in *entity.Tensor) *entity.Tensor {
	out := in.Clone()
	for i := 0; i+2 < len(out.Data); i += 3 {
		r, g, b := in.Data[i], in.Data[i+1], in.Data[i+2]
		out.Data[i] = b - caffeMeanBGR[0]
		out.Data[i+1] = g - caffeMeanBGR[1]
		out.Data[i+2] = r - caffeMeanBGR[2]
	}
	return out
}

// TF scales pixels to [-1, 1]
func TF(in *entity.Tensor) *entity.Tensor {
	out := in.Clone()
	for i, v := range out.Data {
		out.Data[i] = v/127.5 - 1
	}
	return out
}

// Torch scales to [0, 1] and normalizes each channel with the ImageNet statistics
func Torch(in *entity.Tensor) *entity.Tensor {
	out := in.Clone()
	for i, v := range out.Data {
		c := i % 3
		out.Data[i] = (v/255 - torchMean[c]) / torchStd[c]
	}
	return out
}

// Unit scales pixels to [0, 1]
func Unit(in *entity.Tensor) *entity.Tensor {
	out := in.Clone()
	for i, v := range out.Data {
		out.Data[i] = v / 255
	}
	return out
}

// Raw passes pixels through unchanged
func Raw(in *entity.Tensor) *entity.Tensor {
	return in.Clone()
}
