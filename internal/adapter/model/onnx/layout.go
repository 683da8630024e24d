package onnx

// nhwcToNCHW copies an interleaved image into planar layout
func nhwcToNCHW(dst, src []float32, h, w, c int) {
	plane := h * w
	for p := 0; p < plane; p++ {
		for ch := 0; ch < c; ch++ {
			dst[ch*plane+p] = src[p*c+ch]
		}
	}
}

// nchwToNHWC copies a planar image into interleaved layout
func nchwToNHWC(dst, src []float32, h, w, c int) {
	plane := h * w
	for p := 0; p < plane; p++ {
		for ch := 0; ch < c; ch++ {
			dst[p*c+ch] = src[ch*plane+p]
		}
	}
}

// oneHot writes a one-hot class selector into dst
func oneHot(dst []float32, class int) {
	for i := range dst {
		dst[i] = 0
	}
	if class >= 0 && class < len(dst) {
		dst[class] = 1
	}
}
