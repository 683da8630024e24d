package entity

import "math"

// SaliencyMap is a per-pixel relevance grid normalized to [0,1]
type SaliencyMap struct {
	Height int
	Width  int
	Values []float64 // row-major
}

// At returns the value at row y, column x
func (s *SaliencyMap) At(y, x int) float64 {
	return s.Values[y*s.Width+x]
}

// Range returns the minimum and maximum value
func (s *SaliencyMap) Range() (float64, float64) {
	if len(s.Values) == 0 {
		return 0, 0
	}
	lo, hi := s.Values[0], s.Values[0]
	for _, v := range s.Values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// NewSaliencyFromGradient reduces a [1,H,W,C] gradient (already averaged over
// samples) to a normalized map: abs, mean over channels, first batch element,
// then (x-min)/(max-min). A constant gradient yields an all-zero map.
func NewSaliencyFromGradient(grad []float64, h, w, c int) *SaliencyMap {
	m := &SaliencyMap{Height: h, Width: w, Values: make([]float64, h*w)}
	if c <= 0 {
		return m
	}

	for p := 0; p < h*w; p++ {
		var sum float64
		base := p * c
		for k := 0; k < c; k++ {
			v := grad[base+k]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			sum += math.Abs(v)
		}
		m.Values[p] = sum / float64(c)
	}

	m.normalize()
	return m
}

func (s *SaliencyMap) normalize() {
	lo, hi := s.Range()
	span := hi - lo
	if span <= 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		for i := range s.Values {
			s.Values[i] = 0
		}
		return
	}
	for i, v := range s.Values {
		n := (v - lo) / span
		if n < 0 {
			n = 0
		} else if n > 1 {
			n = 1
		}
		s.Values[i] = n
	}
}
