// Package overlay draws the engine status onto camera frames for the preview
// stream: mode banner, control margin, calibration prompt, volume bar,
// virtual keyboard, typed text and hand skeletons.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/engine"
)

var (
	colorMargin   = color.RGBA{R: 255, G: 0, B: 255, A: 0}
	colorBanner   = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	colorPrompt   = color.RGBA{R: 0, G: 255, B: 255, A: 0}
	colorWarning  = color.RGBA{R: 255, G: 80, B: 80, A: 0}
	colorKey      = color.RGBA{R: 255, G: 0, B: 255, A: 0}
	colorKeyHover = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	colorText     = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	colorVolume   = color.RGBA{R: 0, G: 200, B: 0, A: 0}
	colorJoint    = color.RGBA{R: 0, G: 0, B: 255, A: 0}
	colorBone     = color.RGBA{R: 220, G: 220, B: 220, A: 0}
)

// handConnections are the skeleton edges between landmark indices.
var handConnections = [][2]int{
	{detector.Wrist, detector.ThumbCMC}, {detector.ThumbCMC, detector.ThumbMCP}, {detector.ThumbMCP, detector.ThumbIP}, {detector.ThumbIP, detector.ThumbTip},
	{detector.Wrist, detector.IndexMCP}, {detector.IndexMCP, detector.IndexPIP}, {detector.IndexPIP, detector.IndexDIP}, {detector.IndexDIP, detector.IndexTip},
	{detector.IndexMCP, detector.MiddleMCP}, {detector.MiddleMCP, detector.MiddlePIP}, {detector.MiddlePIP, detector.MiddleDIP}, {detector.MiddleDIP, detector.MiddleTip},
	{detector.MiddleMCP, detector.RingMCP}, {detector.RingMCP, detector.RingPIP}, {detector.RingPIP, detector.RingDIP}, {detector.RingDIP, detector.RingTip},
	{detector.RingMCP, detector.PinkyMCP}, {detector.PinkyMCP, detector.PinkyPIP}, {detector.PinkyPIP, detector.PinkyDIP}, {detector.PinkyDIP, detector.PinkyTip},
	{detector.Wrist, detector.PinkyMCP},
}

// Config controls what the renderer draws.
type Config struct {
	Margin    float64
	Layout    []engine.Key
	Skeletons bool
}

// DefaultConfig matches the engine defaults.
func DefaultConfig() Config {
	return Config{
		Margin:    engine.DefaultConfig().Margin,
		Layout:    engine.DefaultLayout(),
		Skeletons: true,
	}
}

// Renderer draws Status onto frames. It holds no per-frame state.
type Renderer struct {
	config Config
}

// NewRenderer creates a Renderer.
func NewRenderer(config Config) *Renderer {
	if config.Layout == nil {
		config.Layout = engine.DefaultLayout()
	}
	return &Renderer{config: config}
}

// Draw annotates img in place.
func (r *Renderer) Draw(img *gocv.Mat, st engine.Status, set detector.FrameSet) {
	if img == nil || img.Empty() {
		return
	}
	w, h := img.Cols(), img.Rows()

	if st.Mode.Active() {
		m := int(r.config.Margin)
		gocv.Rectangle(img, image.Rect(m, m, w-m, h-m), colorMargin, 2)
	}

	if r.config.Skeletons {
		size := detector.FrameSize{Width: float64(w), Height: float64(h)}
		for _, s := range set.Samples {
			drawHand(img, s.Points, size)
		}
	}

	switch st.Mode {
	case engine.ModeCalibrating:
		r.drawCalibration(img, st)
	case engine.ModeSystemControl:
		drawVolume(img, st)
	case engine.ModeKeyboard:
		r.drawKeyboard(img, st)
	}

	banner := fmt.Sprintf("Mode: %s", st.Mode)
	if st.LastGesture != "" {
		banner += "  " + st.LastGesture
	}
	gocv.PutText(img, banner, image.Pt(10, 30), gocv.FontHersheySimplex, 0.9, colorBanner, 2)

	if st.Prompt != "" && st.Mode != engine.ModeCalibrating {
		gocv.PutText(img, st.Prompt, image.Pt(10, h-20), gocv.FontHersheySimplex, 0.6, colorPrompt, 2)
	}

	for i, warning := range st.Warnings {
		gocv.PutText(img, warning, image.Pt(10, 60+i*25), gocv.FontHersheySimplex, 0.6, colorWarning, 2)
	}
}

func (r *Renderer) drawCalibration(img *gocv.Mat, st engine.Status) {
	gocv.PutText(img, fmt.Sprintf("Calibration %d/3", st.CalibrationStep+1), image.Pt(10, 100), gocv.FontHersheySimplex, 0.8, colorPrompt, 2)
	gocv.PutText(img, st.Prompt, image.Pt(10, 135), gocv.FontHersheySimplex, 0.7, colorPrompt, 2)

	const barW, barH = 300, 20
	bar := image.Rect(10, 150, 10+barW, 150+barH)
	gocv.Rectangle(img, bar, colorText, 1)
	fill := int(math.Round(clamp01(st.CalibrationProgress) * barW))
	if fill > 0 {
		gocv.Rectangle(img, image.Rect(10, 150, 10+fill, 150+barH), colorPrompt, -1)
	}
}

func drawVolume(img *gocv.Mat, st engine.Status) {
	if !st.VolumeEnabled {
		return
	}
	const x, top, bottom, width = 50, 150, 400, 35
	gocv.Rectangle(img, image.Rect(x, top, x+width, bottom), colorVolume, 2)
	level := bottom - int(math.Round(clamp01(st.VolumePercent/100)*float64(bottom-top)))
	gocv.Rectangle(img, image.Rect(x, level, x+width, bottom), colorVolume, -1)
	gocv.PutText(img, fmt.Sprintf("%d%%", int(math.Round(st.VolumePercent))), image.Pt(x-10, bottom+40), gocv.FontHersheyComplex, 1, colorVolume, 2)
}

func (r *Renderer) drawKeyboard(img *gocv.Mat, st engine.Status) {
	for _, k := range r.config.Layout {
		rect := image.Rect(int(k.Rect.X), int(k.Rect.Y), int(k.Rect.X+k.Rect.W), int(k.Rect.Y+k.Rect.H))
		c := colorKey
		thickness := 2
		if k.Label == st.HoveredKey {
			c = colorKeyHover
			thickness = -1
		}
		gocv.Rectangle(img, rect, c, thickness)
		gocv.PutText(img, k.Label, image.Pt(rect.Min.X+20, rect.Min.Y+55), gocv.FontHersheyPlain, 3, colorText, 3)
	}

	text := st.Text
	const maxShown = 40
	if runes := []rune(text); len(runes) > maxShown {
		text = string(runes[len(runes)-maxShown:])
	}
	gocv.Rectangle(img, image.Rect(50, 50, 1100, 120), colorKey, 2)
	gocv.PutText(img, text, image.Pt(60, 105), gocv.FontHersheyPlain, 4, colorText, 4)
}

func drawHand(img *gocv.Mat, points [detector.NumLandmarks]detector.Point3D, size detector.FrameSize) {
	pt := func(i int) image.Point {
		p := size.Pixel(points[i])
		return image.Pt(int(p.X), int(p.Y))
	}
	for _, c := range handConnections {
		gocv.Line(img, pt(c[0]), pt(c[1]), colorBone, 2)
	}
	for i := range points {
		gocv.Circle(img, pt(i), 4, colorJoint, -1)
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// EncodeJPEG encodes img for the preview stream.
func EncodeJPEG(img gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()
	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
