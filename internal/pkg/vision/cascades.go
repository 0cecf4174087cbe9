package vision

import (
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"gocv.io/x/gocv"
)

const (
	faceCascadeFile = "haarcascade_frontalface_default.xml"
	eyeCascadeFile  = "haarcascade_eye.xml"
)

// well-known haarcascade install locations, tried after the configured dir
var cascadeSearchDirs = []string{
	"./models/haarcascades",
	"/usr/local/share/opencv4/haarcascades",
	"/usr/share/opencv4/haarcascades",
	"/opt/homebrew/share/opencv4/haarcascades",
}

// Cascades holds the process-lifetime Haar classifiers. detectMultiScale is
// not safe for concurrent use on a shared classifier, so detection calls are
// serialized.
type Cascades struct {
	mu     sync.Mutex
	face   gocv.CascadeClassifier
	eye    gocv.CascadeClassifier
	hasEye bool
}

// LoadCascades requires the frontal face model; the eye model is optional
// and only disables eye sub-region work when missing.
func LoadCascades(cascadeDir string) (*Cascades, error) {
	face := gocv.NewCascadeClassifier()
	if !loadCascade(&face, cascadeDir, faceCascadeFile) {
		face.Close()
		return nil, fmt.Errorf("face cascade %s not found in %q or well-known locations", faceCascadeFile, cascadeDir)
	}

	c := &Cascades{face: face}

	eye := gocv.NewCascadeClassifier()
	if loadCascade(&eye, cascadeDir, eyeCascadeFile) {
		c.eye = eye
		c.hasEye = true
	} else {
		eye.Close()
	}

	return c, nil
}

func loadCascade(classifier *gocv.CascadeClassifier, cascadeDir, name string) bool {
	if cascadeDir != "" && classifier.Load(filepath.Join(cascadeDir, name)) {
		return true
	}
	for _, dir := range cascadeSearchDirs {
		if classifier.Load(filepath.Join(dir, name)) {
			return true
		}
	}
	return classifier.Load(name)
}

func (c *Cascades) DetectFaces(gray gocv.Mat, scale float64, minNeighbors, minSize int) []image.Rectangle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.face.DetectMultiScaleWithParams(gray, scale, minNeighbors, 0,
		image.Pt(minSize, minSize), image.Point{})
}

func (c *Cascades) DetectEyes(gray gocv.Mat, scale float64, minNeighbors, minSize int) []image.Rectangle {
	if !c.hasEye {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye.DetectMultiScaleWithParams(gray, scale, minNeighbors, 0,
		image.Pt(minSize, minSize), image.Point{})
}

func (c *Cascades) Close() {
	c.face.Close()
	if c.hasEye {
		c.eye.Close()
	}
}
