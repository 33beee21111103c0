package types

// Clip is a source video waiting to be cut into a frame sequence.
// Key names the output directory; RawData holds the encoded video.
type Clip struct {
	Key     string
	RawData []byte
}
