package main

import (
	"io"
	"math"

	"github.com/schollz/progressbar/v3"

	"github.com/ayusman/mudra/internal/engine"
)

// calibrationSteps is the number of hold steps shown on the bar.
const calibrationSteps = 2

// calibrationProgress renders calibration holds as a terminal progress bar.
// Update is called from the frame goroutine only.
type calibrationProgress struct {
	w      io.Writer
	bar    *progressbar.ProgressBar
	prompt string
}

func newCalibrationProgress(w io.Writer) *calibrationProgress {
	return &calibrationProgress{w: w}
}

// Update advances the bar while calibrating and finishes it when calibration ends.
func (p *calibrationProgress) Update(st engine.Status) {
	if st.Mode != engine.ModeCalibrating {
		if p.bar != nil {
			p.bar.Finish()
			p.bar = nil
			p.prompt = ""
		}
		return
	}

	if p.bar == nil {
		p.bar = progressbar.NewOptions(calibrationSteps*100,
			progressbar.OptionSetDescription("Calibrating"),
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionClearOnFinish(),
		)
	}
	if st.Prompt != p.prompt {
		p.prompt = st.Prompt
		p.bar.Describe(st.Prompt)
	}
	p.bar.Set(p.value(st))
}

// value maps step and hold progress to 0..calibrationSteps*100.
func (p *calibrationProgress) value(st engine.Status) int {
	step := min(st.CalibrationStep, calibrationSteps)
	v := step*100 + int(math.Round(math.Max(0, math.Min(1, st.CalibrationProgress))*100))
	return min(v, calibrationSteps*100)
}

// Active reports whether a bar is being shown.
func (p *calibrationProgress) Active() bool {
	return p.bar != nil
}
