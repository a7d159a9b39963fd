package location

import (
	"time"

	"github.com/sameehj/locgate/pkg/capability"
)

// Fix is a single location reading. Optional accuracies are only meaningful
// when their Has flag is set.
type Fix struct {
	Provider  string    `json:"provider"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Time      time.Time `json:"time"`
	Altitude  float64   `json:"altitude"`
	Speed     float32   `json:"speed"`
	Bearing   float32   `json:"bearing"`

	Accuracy           float32 `json:"-"`
	HasAccuracy        bool    `json:"-"`
	SpeedAccuracy      float32 `json:"-"`
	HasSpeedAccuracy   bool    `json:"-"`
	BearingAccuracy    float32 `json:"-"`
	HasBearingAccuracy bool    `json:"-"`
}

func (f *Fix) SetAccuracy(meters float32) {
	f.Accuracy = meters
	f.HasAccuracy = true
}

// SetSpeedAccuracy records the speed accuracy in meters per second.
func (f *Fix) SetSpeedAccuracy(mps float32) {
	f.SpeedAccuracy = mps
	f.HasSpeedAccuracy = true
}

// SetBearingAccuracy records the bearing accuracy in degrees.
func (f *Fix) SetBearingAccuracy(degrees float32) {
	f.BearingAccuracy = degrees
	f.HasBearingAccuracy = true
}

const sampleTimeMillis = 1633375741711

// Sample returns the demo fix. Speed and bearing accuracies are filled in only
// when gate passes.
func Sample(gate capability.Gate) Fix {
	fix := Fix{
		Provider:  "temp",
		Latitude:  28.92973474,
		Longitude: -87.4345494,
		Time:      time.UnixMilli(sampleTimeMillis).UTC(),
		Altitude:  13.5,
		Speed:     21.5,
		Bearing:   240,
	}
	fix.SetAccuracy(123)
	if gate.Supported() {
		fix.SetSpeedAccuracy(1)
		fix.SetBearingAccuracy(2)
	}
	return fix
}
