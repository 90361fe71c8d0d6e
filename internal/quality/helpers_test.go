package quality

import (
	"github.com/CodingBot000/miracle3day-sub001/internal/frame"
)

const (
	testWidth  = 640
	testHeight = 480
)

// faceBuffer draws a 136px striped skin square centered on a light
// non-skin background. The stripes give the edge density a real face has.
func faceBuffer() *frame.PixelBuffer {
	buf := frame.NewPixelBuffer(testWidth, testHeight)
	buf.Fill(200, 200, 235)
	for y := 172; y < 308; y++ {
		for x := 252; x < 388; x++ {
			if x%8 < 4 {
				buf.Set(x, y, 170, 130, 100)
			} else {
				buf.Set(x, y, 120, 90, 70)
			}
		}
	}
	return buf
}

// centeredMetrics is a face that passes every detection threshold and sits
// exactly on the frame center
func centeredMetrics() FrameMetrics {
	return FrameMetrics{
		FrameWidth:         testWidth,
		FrameHeight:        testHeight,
		SampledPixelCount:  10000,
		SkinPixelCount:     5000,
		SkinRatio:          0.5,
		AvgBrightness:      120,
		BrightnessVariance: 50,
		EdgeRatio:          0.1,
		HasFace:            true,
		FaceSizePercent:    70,
		FaceCenterX:        testWidth / 2,
		FaceCenterY:        testHeight / 2,
		FallbackCenterX:    testWidth / 2,
		FallbackCenterY:    testHeight / 2,
	}
}
