package entity

// NotPaddyLeaf is the final class reported when the ensemble does not reach quorum
const NotPaddyLeaf = "Not a paddy leaf"

// Status codes returned to clients
const (
	StatusHealthy  = 0
	StatusDisease  = 1
	StatusNotPaddy = 2
)

// DefaultLabels is the class vocabulary the bundled models were trained on
var DefaultLabels = []string{
	"Bacterial Leaf Blight",
	"Brown Spot",
	"Healthy Rice Leaf",
	"Leaf Blast",
	"Leaf scald",
	"Narrow Brown Leaf Spot",
	"Neck_Blast",
	"Rice Hispa",
	"Sheath Blight",
}

// DefaultHealthyLabel is the class that maps to StatusHealthy
const DefaultHealthyLabel = "Healthy Rice Leaf"

// Labels is the ordered class vocabulary shared by every model
type Labels struct {
	Names   []string
	Healthy string
}

// NewLabels creates a vocabulary
func NewLabels(names []string, healthy string) Labels {
	n := make([]string, len(names))
	copy(n, names)
	return Labels{Names: n, Healthy: healthy}
}

// Len returns the vocabulary size
func (l Labels) Len() int {
	return len(l.Names)
}

// Name returns the label at idx, or an empty string when out of range
func (l Labels) Name(idx int) string {
	if idx < 0 || idx >= len(l.Names) {
		return ""
	}
	return l.Names[idx]
}

// Index returns the position of name, or -1
func (l Labels) Index(name string) int {
	for i, n := range l.Names {
		if n == name {
			return i
		}
	}
	return -1
}

// StatusCode maps a final class to the client status code
func (l Labels) StatusCode(finalClass string) int {
	switch {
	case l.Healthy != "" && finalClass == l.Healthy:
		return StatusHealthy
	case l.Index(finalClass) >= 0:
		return StatusDisease
	default:
		return StatusNotPaddy
	}
}
