package main

import (
	"fmt"

	"github.com/satori-video/streams/packet"
	"github.com/satori-video/streams/pipeline"
)

// newRawRGBDecode builds a pipeline.Decode for sources whose codec façade
// already hands back decoded pixels rather than compressed packets, as
// codec/gstsource does for the camera input kind (its Streams() reports
// codec name "rawvideo/rgb"). It is the default decode this binary wires
// for camera/pubsub input; file/url input needs a real compressed-format
// decoder, which spec.md §6 leaves as a collaborator this binary does not
// supply (see Dependencies.NewCodecSource in pipeline/build.go).
func newRawRGBDecode(width, height int) pipeline.Decode {
	w, h := uint16(width), uint16(height)
	stride := uint32(width) * 4
	return func(f packet.EncodedFrame) (packet.ImageFrame, error) {
		if len(f.Data) < int(stride)*height {
			return packet.ImageFrame{}, fmt.Errorf("botrun: raw rgb decode: frame %s too short for %dx%d", f.ID, width, height)
		}
		img := packet.ImageFrame{
			ID:          f.ID,
			PixelFormat: packet.PixelFormatRGBA,
			Width:       w,
			Height:      h,
		}
		img.PlaneData[0] = f.Data
		img.PlaneStrides[0] = stride
		return img, nil
	}
}
