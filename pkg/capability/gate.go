// Package capability decides whether platform dependent features are available
// by comparing the host API level with fixed minimum levels.
package capability

import (
	"github.com/sameehj/locgate/pkg/platform"
)

// SpeedAndBearingAccuracy names the ability to report speed and bearing
// accuracy values alongside a location fix.
const SpeedAndBearingAccuracy = "speed_bearing_accuracy"

// MinSpeedAndBearingAccuracy is the first API level that provides speed and
// bearing accuracy.
const MinSpeedAndBearingAccuracy = platform.O

// Gate is a stateless predicate over the current platform API level.
type Gate struct {
	Name string
	Min  platform.APILevel
	src  platform.Source
}

// Status is the outcome of a single evaluation.
type Status struct {
	Name      string            `json:"name"`
	Min       platform.APILevel `json:"min_api_level"`
	Level     platform.APILevel `json:"api_level"`
	Known     bool              `json:"known"`
	Supported bool              `json:"supported"`
}

func New(name string, min platform.APILevel, src platform.Source) Gate {
	return Gate{Name: name, Min: min, src: src}
}

// NewSpeedAndBearingAccuracy returns the speed and bearing accuracy gate.
func NewSpeedAndBearingAccuracy(src platform.Source) Gate {
	return New(SpeedAndBearingAccuracy, MinSpeedAndBearingAccuracy, src)
}

// Supported reports whether the level is at least Min. An unavailable level is
// treated as unsupported.
func (g Gate) Supported() bool {
	return g.Evaluate().Supported
}

// Evaluate reads the source once and reports the comparison.
func (g Gate) Evaluate() Status {
	st := Status{Name: g.Name, Min: g.Min}
	if g.src == nil {
		return st
	}
	level, ok := g.src.APILevel()
	if !ok {
		return st
	}
	st.Level = level
	st.Known = true
	st.Supported = level >= g.Min
	return st
}

// IsSpeedAndBearingAccuracySupported reports whether the host platform can
// provide speed and bearing accuracy values.
func IsSpeedAndBearingAccuracySupported() bool {
	return NewSpeedAndBearingAccuracy(platform.Host()).Supported()
}
