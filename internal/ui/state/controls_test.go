package state

import (
	"testing"

	"github.com/atomicstack/earctl/internal/backend"
)

func TestNewControlsDefaults(t *testing.T) {
	c := NewControls()
	if c.ANC != ANCUnknown || c.LowLatency != ToggleUnknown || c.InEarDetection != ToggleUnknown {
		t.Fatalf("expected unknown selections, got %#v", c)
	}
	if c.ANCMode != backend.NoiseControlAdaptive {
		t.Fatalf("expected adaptive ANC strength, got %s", c.ANCMode)
	}
	if c.Enabled(RowANCMode) {
		t.Fatalf("expected ANC mode row to be disabled until ANC is on")
	}
	for _, row := range []Row{RowANC, RowLowLatency, RowInEarDetection} {
		if got := c.Selected(row); got != -1 {
			t.Fatalf("expected no selection for %s, got %d", row, got)
		}
	}
}

func TestChooseANCOnSendsSelectedStrength(t *testing.T) {
	c := NewControls()
	c, cmd := Reduce(c, Choose{Row: RowANC, Option: 2})
	if c.ANC != ANCOn {
		t.Fatalf("expected ANC on, got %v", c.ANC)
	}
	if cmd != (backend.SetNoiseControlMode{Mode: backend.NoiseControlAdaptive}) {
		t.Fatalf("expected adaptive command, got %#v", cmd)
	}
	if !c.Enabled(RowANCMode) {
		t.Fatalf("expected ANC mode row to be enabled")
	}

	c, cmd = Reduce(c, Choose{Row: RowANCMode, Option: 0})
	if c.ANCMode != backend.NoiseControlHigh {
		t.Fatalf("expected high strength, got %s", c.ANCMode)
	}
	if cmd != (backend.SetNoiseControlMode{Mode: backend.NoiseControlHigh}) {
		t.Fatalf("expected high command, got %#v", cmd)
	}
}

func TestChooseANCOffAndTransparency(t *testing.T) {
	c, cmd := Reduce(NewControls(), Choose{Row: RowANC, Option: 0})
	if c.ANC != ANCOff || cmd != (backend.SetNoiseControlMode{Mode: backend.NoiseControlOff}) {
		t.Fatalf("expected off, got %v / %#v", c.ANC, cmd)
	}
	c, cmd = Reduce(c, Choose{Row: RowANC, Option: 1})
	if c.ANC != ANCTransparency || cmd != (backend.SetNoiseControlMode{Mode: backend.NoiseControlTransparency}) {
		t.Fatalf("expected transparency, got %v / %#v", c.ANC, cmd)
	}
}

func TestChooseDisabledANCModeIsIgnored(t *testing.T) {
	prior := NewControls()
	next, cmd := Reduce(prior, Choose{Row: RowANCMode, Option: 1})
	if cmd != nil {
		t.Fatalf("expected no command while ANC is not on, got %#v", cmd)
	}
	if next != prior {
		t.Fatalf("expected controls unchanged, got %#v", next)
	}
}

func TestChooseSameOptionResends(t *testing.T) {
	c, _ := Reduce(NewControls(), Choose{Row: RowLowLatency, Option: 1})
	_, cmd := Reduce(c, Choose{Row: RowLowLatency, Option: 1})
	if cmd != (backend.SetLowLatency{Enabled: true}) {
		t.Fatalf("expected repeated low latency command, got %#v", cmd)
	}
}

func TestChooseOutOfRangeOption(t *testing.T) {
	prior := NewControls()
	for _, ev := range []Event{
		Choose{Row: RowInEarDetection, Option: 2},
		Choose{Row: RowInEarDetection, Option: -1},
		Choose{Row: Row(42), Option: 0},
	} {
		next, cmd := Reduce(prior, ev)
		if cmd != nil || next != prior {
			t.Fatalf("expected %#v to be ignored, got %#v / %#v", ev, next, cmd)
		}
	}
}

func TestMoveCursorClamps(t *testing.T) {
	c := NewControls()
	c, _ = Reduce(c, MoveCursor{Delta: -1})
	if c.Cursor != RowANC {
		t.Fatalf("expected cursor to stay on first row, got %s", c.Cursor)
	}
	c, _ = Reduce(c, MoveCursor{Delta: 10})
	if c.Cursor != RowInEarDetection {
		t.Fatalf("expected cursor on last row, got %s", c.Cursor)
	}
}

func TestStepFromUnknownSelection(t *testing.T) {
	c := NewControls()
	c.Cursor = RowInEarDetection
	next, cmd := Reduce(c, Step{Delta: 1})
	if next.InEarDetection != ToggleOff || cmd != (backend.SetInEarDetection{Enabled: false}) {
		t.Fatalf("expected first option (off), got %v / %#v", next.InEarDetection, cmd)
	}
	next, cmd = Reduce(c, Step{Delta: -1})
	if next.InEarDetection != ToggleOn || cmd != (backend.SetInEarDetection{Enabled: true}) {
		t.Fatalf("expected last option (on), got %v / %#v", next.InEarDetection, cmd)
	}
}

func TestStepStopsAtEnds(t *testing.T) {
	c := NewControls()
	c.Cursor = RowLowLatency
	c, _ = Reduce(c, Step{Delta: -1})
	if c.LowLatency != ToggleOn {
		t.Fatalf("expected on, got %v", c.LowLatency)
	}
	next, cmd := Reduce(c, Step{Delta: 1})
	if cmd != nil || next != c {
		t.Fatalf("expected step past the end to be ignored, got %#v", cmd)
	}
	next, cmd = Reduce(c, Step{Delta: -1})
	if next.LowLatency != ToggleOff || cmd != (backend.SetLowLatency{Enabled: false}) {
		t.Fatalf("expected off, got %v / %#v", next.LowLatency, cmd)
	}
}

func TestStepOnDisabledRow(t *testing.T) {
	c := NewControls()
	c.Cursor = RowANCMode
	next, cmd := Reduce(c, Step{Delta: 1})
	if cmd != nil || next != c {
		t.Fatalf("expected disabled row to ignore steps, got %#v", cmd)
	}
}

func TestOptionsMatchSelectionTables(t *testing.T) {
	if len(Options(RowANC)) != len(ancOptions) ||
		len(Options(RowANCMode)) != len(ancModeOptions) ||
		len(Options(RowLowLatency)) != len(toggleOptions) {
		t.Fatalf("option labels out of sync with selection tables")
	}
}
