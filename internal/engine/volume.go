package engine

import (
	"log"
	"math"

	"github.com/ayusman/mudra/internal/actuator"
)

// volume maps the right thumb–index distance onto the system volume range.
type volume struct {
	enabled bool
	min     float64
	max     float64
	percent float64

	// sent is the whole percent last handed to the actuator; valid when hasSent.
	sent    int
	hasSent bool
}

// newVolume probes the actuator once. A missing backend disables the controller.
func newVolume(vc actuator.VolumeControl) (*volume, error) {
	min, max, err := vc.VolumeRange()
	if err != nil {
		log.Printf("Volume control disabled: %v", err)
		return &volume{}, err
	}
	return &volume{enabled: true, min: min, max: max}, nil
}

// level returns the volume for a fingertip distance. Distances outside
// [VolMinDist, VolMaxDist] clamp to the nearest end of the range.
func (v *volume) level(dist float64, th Thresholds) float64 {
	v.percent = interp(dist, th.VolMinDist, th.VolMaxDist, 0, 100)
	return interp(dist, th.VolMinDist, th.VolMaxDist, v.min, v.max)
}

// update computes the level for dist and reports whether it differs, in whole
// percent, from the level last sent.
func (v *volume) update(dist float64, th Thresholds) (float64, bool) {
	level := v.level(dist, th)
	p := int(math.Round(v.percent))
	if v.hasSent && p == v.sent {
		return level, false
	}
	v.sent, v.hasSent = p, true
	return level, true
}

// forget makes the next update send its level unconditionally.
func (v *volume) forget() {
	v.hasSent = false
}
