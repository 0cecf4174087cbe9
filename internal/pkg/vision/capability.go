package vision

import (
	"image"

	"gocv.io/x/gocv"
)

const (
	EngineAuto       = "auto"
	EngineFull       = "full"
	EngineReduced    = "reduced"
	EngineSimulation = "simulation"
)

// Capability describes which enhancement tiers this process can offer. It is
// probed once at startup and passed into the chain constructor; requests
// never re-check it.
type Capability struct {
	PixelOps   bool // full OpenCV stage library usable
	ImageOps   bool // generic image-editing fallback usable
	FaceDetect bool // cascade classifiers loaded
	Note       string
}

// Probe resolves the capability descriptor from the configured engine mode
// and a runtime self-test. The returned cascades are nil unless FaceDetect
// is set.
func Probe(engine, cascadeDir string) (Capability, *Cascades) {
	switch engine {
	case EngineSimulation:
		return Capability{Note: "enhancement disabled by configuration"}, nil
	case EngineReduced:
		return Capability{ImageOps: true, Note: "reduced engine forced by configuration"}, nil
	}

	c := Capability{ImageOps: true}
	if !selfTest() {
		c.Note = "pixel runtime self-test failed, running reduced"
		return c, nil
	}
	c.PixelOps = true

	cascades, err := LoadCascades(cascadeDir)
	if err != nil {
		c.Note = "face models unavailable: " + err.Error()
		return c, nil
	}

	c.FaceDetect = true
	c.Note = "full enhancement available"
	return c, cascades
}

// selfTest exercises a minimal allocate/transform round trip so a broken
// pixel runtime is caught at startup instead of on the first request.
func selfTest() (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	m := gocv.NewMatWithSize(8, 8, gocv.MatTypeCV8UC3)
	defer m.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(m, &blurred, image.Pt(3, 3), 0.5, 0.5, gocv.BorderDefault)

	return !blurred.Empty()
}
