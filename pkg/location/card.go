package location

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/sameehj/locgate/pkg/capability"
)

// Row is one label/value pair of a card column.
type Row struct {
	Label string
	Value string
}

// Card is the two column summary of a fix.
type Card struct {
	Left  []Row
	Right []Row
}

// NewCard lays out fix. The speed and bearing accuracy labels are always
// present; their values are only filled in when gate passes. An absent
// accuracy renders as an empty value.
func NewCard(fix Fix, gate capability.Gate, ttff time.Duration) Card {
	supported := gate.Supported()

	left := []Row{
		{"Lat:", formatFloat64(fix.Latitude)},
		{"Long:", formatFloat64(fix.Longitude)},
		{"Alt:", formatFloat64(fix.Altitude)},
		{"Speed:", formatFloat32(fix.Speed)},
		{"Speed Acc:", optional(supported && fix.HasSpeedAccuracy, fix.SpeedAccuracy)},
	}

	right := []Row{
		{"Time:", strconv.FormatInt(fix.Time.UnixMilli(), 10)},
		{"TTFF:", formatTTFF(ttff)},
		{"H/V Acc:", optional(fix.HasAccuracy, fix.Accuracy)},
		{"Bearing:", formatFloat32(fix.Bearing)},
		{"Bearing Acc:", optional(supported && fix.HasBearingAccuracy, fix.BearingAccuracy)},
	}
	return Card{Left: left, Right: right}
}

// Render writes the card as an aligned four column table.
func (c Card) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	n := len(c.Left)
	if len(c.Right) > n {
		n = len(c.Right)
	}
	for i := 0; i < n; i++ {
		l, r := rowAt(c.Left, i), rowAt(c.Right, i)
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", l.Label, l.Value, r.Label, r.Value); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// Report is the JSON form of a fix.
type Report struct {
	ID                               string    `json:"id"`
	GeneratedAt                      time.Time `json:"generated_at"`
	SpeedAndBearingAccuracySupported bool      `json:"speed_bearing_accuracy_supported"`
	Fix                              Fix       `json:"fix"`
	Accuracy                         *float32  `json:"accuracy,omitempty"`
	SpeedAccuracyMetersPerSecond     *float32  `json:"speed_accuracy_mps,omitempty"`
	BearingAccuracyDegrees           *float32  `json:"bearing_accuracy_degrees,omitempty"`
}

func NewReport(fix Fix, gate capability.Gate) Report {
	report := Report{
		ID:                               uuid.NewString(),
		GeneratedAt:                      time.Now().UTC(),
		SpeedAndBearingAccuracySupported: gate.Supported(),
		Fix:                              fix,
	}
	if fix.HasAccuracy {
		v := fix.Accuracy
		report.Accuracy = &v
	}
	if report.SpeedAndBearingAccuracySupported {
		if fix.HasSpeedAccuracy {
			v := fix.SpeedAccuracy
			report.SpeedAccuracyMetersPerSecond = &v
		}
		if fix.HasBearingAccuracy {
			v := fix.BearingAccuracy
			report.BearingAccuracyDegrees = &v
		}
	}
	return report
}

func rowAt(rows []Row, i int) Row {
	if i < len(rows) {
		return rows[i]
	}
	return Row{}
}

func optional(ok bool, v float32) string {
	if !ok {
		return ""
	}
	return formatFloat32(v)
}

func formatFloat64(v float64) string {
	return withPoint(strconv.FormatFloat(v, 'f', -1, 64))
}

func formatFloat32(v float32) string {
	return withPoint(strconv.FormatFloat(float64(v), 'f', -1, 32))
}

// withPoint keeps whole numbers readable as decimals ("240.0").
func withPoint(s string) string {
	if strings.ContainsAny(s, ".eEnN") {
		return s
	}
	return s + ".0"
}

func formatTTFF(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	return fmt.Sprintf("%d sec", int(d.Round(time.Second)/time.Second))
}
