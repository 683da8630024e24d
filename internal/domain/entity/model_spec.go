package entity

// Model backends
const (
	BackendONNX   = "onnx"
	BackendRemote = "remote"
)

// ModelSpec describes one model to load into the registry
type ModelSpec struct {
	Name          string `json:"name" mapstructure:"name"`
	Backend       string `json:"backend" mapstructure:"backend"`
	ArtifactPath  string `json:"artifact_path,omitempty" mapstructure:"artifact_path"`
	GradientPath  string `json:"gradient_path,omitempty" mapstructure:"gradient_path"`
	Endpoint      string `json:"endpoint,omitempty" mapstructure:"endpoint"`
	InputSize     Size   `json:"input_size" mapstructure:"input_size"`
	Preprocess    string `json:"preprocess" mapstructure:"preprocess"`
	ChannelsFirst bool   `json:"channels_first,omitempty" mapstructure:"channels_first"`

	// Graph tensor names for the ONNX backend
	InputName          string `json:"-" mapstructure:"input_name"`
	OutputName         string `json:"-" mapstructure:"output_name"`
	ClassInputName     string `json:"-" mapstructure:"class_input_name"`
	GradientOutputName string `json:"-" mapstructure:"gradient_output_name"`
}

// DefaultModelSpecs returns the four bundled ImageNet backbones
func DefaultModelSpecs() []ModelSpec {
	return []ModelSpec{
		{Name: "resnet50", Backend: BackendONNX, ArtifactPath: "./model/resnet50.onnx", GradientPath: "./model/resnet50_grad.onnx", InputSize: Size{224, 224}, Preprocess: "caffe"},
		{Name: "vgg16", Backend: BackendONNX, ArtifactPath: "./model/vgg16.onnx", GradientPath: "./model/vgg16_grad.onnx", InputSize: Size{224, 224}, Preprocess: "caffe"},
		{Name: "inceptionv3", Backend: BackendONNX, ArtifactPath: "./model/inceptionv3.onnx", GradientPath: "./model/inceptionv3_grad.onnx", InputSize: Size{299, 299}, Preprocess: "tf"},
		{Name: "xception", Backend: BackendONNX, ArtifactPath: "./model/xception.onnx", GradientPath: "./model/xception_grad.onnx", InputSize: Size{299, 299}, Preprocess: "tf"},
	}
}
