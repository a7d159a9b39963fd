package location

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/sameehj/locgate/pkg/capability"
	"github.com/sameehj/locgate/pkg/platform"
)

func gateAt(level platform.APILevel) capability.Gate {
	return capability.NewSpeedAndBearingAccuracy(platform.Fixed(level))
}

func TestSampleSupported(t *testing.T) {
	fix := Sample(gateAt(platform.O))
	if !fix.HasSpeedAccuracy || fix.SpeedAccuracy != 1 {
		t.Fatalf("expected speed accuracy 1, got %v (%v)", fix.SpeedAccuracy, fix.HasSpeedAccuracy)
	}
	if !fix.HasBearingAccuracy || fix.BearingAccuracy != 2 {
		t.Fatalf("expected bearing accuracy 2, got %v (%v)", fix.BearingAccuracy, fix.HasBearingAccuracy)
	}
	if fix.Time.UnixMilli() != 1633375741711 {
		t.Fatalf("unexpected time %v", fix.Time)
	}
}

func TestSampleUnsupported(t *testing.T) {
	fix := Sample(gateAt(platform.NMR1))
	if fix.HasSpeedAccuracy || fix.HasBearingAccuracy {
		t.Fatalf("expected no speed/bearing accuracy below O, got %+v", fix)
	}
	if !fix.HasAccuracy || fix.Accuracy != 123 {
		t.Fatalf("horizontal accuracy should not depend on the gate")
	}
}

func TestNewCardSupported(t *testing.T) {
	card := NewCard(Sample(gateAt(platform.P)), gateAt(platform.P), 3*time.Second)
	want := Card{
		Left: []Row{
			{"Lat:", "28.92973474"},
			{"Long:", "-87.4345494"},
			{"Alt:", "13.5"},
			{"Speed:", "21.5"},
			{"Speed Acc:", "1.0"},
		},
		Right: []Row{
			{"Time:", "1633375741711"},
			{"TTFF:", "3 sec"},
			{"H/V Acc:", "123.0"},
			{"Bearing:", "240.0"},
			{"Bearing Acc:", "2.0"},
		},
	}
	if diff := cmp.Diff(want, card); diff != "" {
		t.Fatalf("card mismatch (-want +got):\n%s", diff)
	}
}

func TestNewCardUnsupportedBlanksAccuracyValues(t *testing.T) {
	// A fix that carries accuracies still shows blanks when the gate fails.
	fix := Sample(gateAt(platform.O))
	card := NewCard(fix, gateAt(25), 0)
	if len(card.Left) != 5 || len(card.Right) != 5 {
		t.Fatalf("expected five rows per column, got %d/%d", len(card.Left), len(card.Right))
	}
	if got := card.Left[4]; got.Label != "Speed Acc:" || got.Value != "" {
		t.Fatalf("unexpected speed accuracy row %+v", got)
	}
	if got := card.Right[4]; got.Label != "Bearing Acc:" || got.Value != "" {
		t.Fatalf("unexpected bearing accuracy row %+v", got)
	}
	if card.Right[1].Value != "" {
		t.Fatalf("expected empty TTFF, got %q", card.Right[1].Value)
	}
}

func TestNewCardMissingAccuracyIsEmpty(t *testing.T) {
	fix := Fix{Time: time.UnixMilli(0)}
	card := NewCard(fix, gateAt(30), time.Second)
	if got := card.Left[4]; got.Label != "Speed Acc:" || got.Value != "" {
		t.Fatalf("unexpected speed accuracy row %+v", got)
	}
	if got := card.Right[2]; got.Value != "" {
		t.Fatalf("unexpected H/V accuracy row %+v", got)
	}
}

func TestCardRender(t *testing.T) {
	var buf bytes.Buffer
	card := NewCard(Sample(gateAt(30)), gateAt(30), 3*time.Second)
	if err := card.Render(&buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "Lat:") || !strings.Contains(lines[0], "Time:") {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if !strings.Contains(lines[4], "Bearing Acc:") {
		t.Fatalf("expected bearing accuracy row, got %q", lines[4])
	}
}

func TestNewReport(t *testing.T) {
	report := NewReport(Sample(gateAt(30)), gateAt(30))
	if _, err := uuid.Parse(report.ID); err != nil {
		t.Fatalf("invalid report id %q: %v", report.ID, err)
	}
	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload["speed_accuracy_mps"] != 1.0 || payload["bearing_accuracy_degrees"] != 2.0 {
		t.Fatalf("expected accuracy fields, got %s", data)
	}
}

func TestNewReportOmitsUnsupportedAccuracy(t *testing.T) {
	report := NewReport(Sample(gateAt(24)), gateAt(24))
	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "speed_accuracy_mps") || strings.Contains(string(data), "bearing_accuracy_degrees") {
		t.Fatalf("expected accuracy fields to be omitted, got %s", data)
	}
	if !strings.Contains(string(data), `"accuracy":123`) {
		t.Fatalf("expected horizontal accuracy, got %s", data)
	}
}
