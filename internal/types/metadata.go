package types

// SequenceMetadata describes a prepared frame sequence. It is written as
// metadata.json next to the numbered frames.
type SequenceMetadata struct {
	Key        string `json:"key"`
	FPS        int    `json:"fps"`
	FrameCount int    `json:"frame_count"`
	StartFrame int    `json:"start_frame"`
	Ext        string `json:"ext"`
	Size       []int  `json:"size"`
}

// Descriptor turns the metadata into a playable descriptor rooted at basePath.
func (m SequenceMetadata) Descriptor(basePath string) SequenceDescriptor {
	return NewSequenceDescriptor(m.Key, "", basePath, m.Ext, m.FrameCount, m.StartFrame)
}
