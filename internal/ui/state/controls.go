// Package state holds the pure input reducer for the control panel. User
// events are folded into Controls and may yield one device command; no
// channel I/O happens here.
package state

import "github.com/atomicstack/earctl/internal/backend"

// ANC is the top-level noise control choice.
type ANC int

const (
	ANCUnknown ANC = iota
	ANCOff
	ANCTransparency
	ANCOn
)

// Toggle is a two-state setting that starts out unknown.
type Toggle int

const (
	ToggleUnknown Toggle = iota
	ToggleOff
	ToggleOn
)

// Row identifies one radio group on screen.
type Row int

const (
	RowANC Row = iota
	RowANCMode
	RowLowLatency
	RowInEarDetection
	rowCount
)

// Rows lists every radio group in display order.
var Rows = []Row{RowANC, RowANCMode, RowLowLatency, RowInEarDetection}

var (
	ancOptions     = []ANC{ANCOff, ANCTransparency, ANCOn}
	ancModeOptions = []backend.NoiseControlMode{
		backend.NoiseControlHigh,
		backend.NoiseControlMid,
		backend.NoiseControlLow,
		backend.NoiseControlAdaptive,
	}
	toggleOptions = []Toggle{ToggleOff, ToggleOn}
)

func (r Row) String() string {
	switch r {
	case RowANC:
		return "anc"
	case RowANCMode:
		return "anc-mode"
	case RowLowLatency:
		return "low-latency"
	case RowInEarDetection:
		return "in-ear-detection"
	default:
		return "unknown"
	}
}

// Label is the caption shown next to the row.
func (r Row) Label() string {
	switch r {
	case RowANC:
		return "ANC:"
	case RowANCMode:
		return "ANC Mode:"
	case RowLowLatency:
		return "Low Latency:"
	case RowInEarDetection:
		return "In Ear Detection:"
	default:
		return ""
	}
}

// Controls is the per-setting selection plus the keyboard cursor. The
// selection reflects what the user chose, not what the device confirmed.
type Controls struct {
	Cursor         Row
	ANC            ANC
	ANCMode        backend.NoiseControlMode
	LowLatency     Toggle
	InEarDetection Toggle
}

// NewControls returns the initial selection: nothing known, ANC strength
// preset to adaptive.
func NewControls() Controls {
	return Controls{ANCMode: backend.NoiseControlAdaptive}
}

// Enabled reports whether a row accepts input. The ANC strength only applies
// while ANC is on.
func (c Controls) Enabled(row Row) bool {
	if row == RowANCMode {
		return c.ANC == ANCOn
	}
	return row >= 0 && row < rowCount
}

// Options returns the option labels for row, in display order.
func Options(row Row) []string {
	switch row {
	case RowANC:
		return []string{"Off", "Transparency", "On"}
	case RowANCMode:
		return []string{"High", "Mid", "Low", "Adaptive"}
	case RowLowLatency, RowInEarDetection:
		return []string{"Off", "On"}
	default:
		return nil
	}
}

// Selected returns the index of the selected option for row, or -1.
func (c Controls) Selected(row Row) int {
	switch row {
	case RowANC:
		return indexOf(ancOptions, c.ANC)
	case RowANCMode:
		return indexOf(ancModeOptions, c.ANCMode)
	case RowLowLatency:
		return indexOf(toggleOptions, c.LowLatency)
	case RowInEarDetection:
		return indexOf(toggleOptions, c.InEarDetection)
	default:
		return -1
	}
}

// Event is a user input the reducer understands.
type Event interface {
	isEvent()
}

// MoveCursor moves the keyboard cursor by Delta rows, clamped to the ends.
type MoveCursor struct {
	Delta int
}

// Choose selects Option in Row, like clicking a radio button. Choosing the
// option that is already selected sends the command again.
type Choose struct {
	Row    Row
	Option int
}

// Step moves the selection on the cursor row by Delta options, clamped to
// the ends. From an unknown selection a positive step picks the first option
// and a negative step the last.
type Step struct {
	Delta int
}

func (MoveCursor) isEvent() {}
func (Choose) isEvent()     {}
func (Step) isEvent()       {}

// Reduce folds ev into prior. The returned command is nil when the event does
// not change a device setting.
func Reduce(prior Controls, ev Event) (Controls, backend.Command) {
	switch e := ev.(type) {
	case MoveCursor:
		next := prior
		next.Cursor = clampRow(int(prior.Cursor) + e.Delta)
		return next, nil
	case Choose:
		return choose(prior, e.Row, e.Option)
	case Step:
		if e.Delta == 0 {
			return prior, nil
		}
		n := len(Options(prior.Cursor))
		current := prior.Selected(prior.Cursor)
		var target int
		switch {
		case current < 0 && e.Delta > 0:
			target = 0
		case current < 0:
			target = n - 1
		default:
			target = clamp(current+e.Delta, 0, n-1)
			if target == current {
				return prior, nil
			}
		}
		return choose(prior, prior.Cursor, target)
	default:
		return prior, nil
	}
}

func choose(prior Controls, row Row, option int) (Controls, backend.Command) {
	if !prior.Enabled(row) || option < 0 || option >= len(Options(row)) {
		return prior, nil
	}
	next := prior
	switch row {
	case RowANC:
		next.ANC = ancOptions[option]
		switch next.ANC {
		case ANCOff:
			return next, backend.SetNoiseControlMode{Mode: backend.NoiseControlOff}
		case ANCTransparency:
			return next, backend.SetNoiseControlMode{Mode: backend.NoiseControlTransparency}
		default:
			return next, backend.SetNoiseControlMode{Mode: next.ANCMode}
		}
	case RowANCMode:
		next.ANCMode = ancModeOptions[option]
		return next, backend.SetNoiseControlMode{Mode: next.ANCMode}
	case RowLowLatency:
		next.LowLatency = toggleOptions[option]
		return next, backend.SetLowLatency{Enabled: next.LowLatency == ToggleOn}
	case RowInEarDetection:
		next.InEarDetection = toggleOptions[option]
		return next, backend.SetInEarDetection{Enabled: next.InEarDetection == ToggleOn}
	}
	return prior, nil
}

func clampRow(r int) Row {
	return Row(clamp(r, 0, int(rowCount)-1))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func indexOf[T comparable](options []T, v T) int {
	for i, opt := range options {
		if opt == v {
			return i
		}
	}
	return -1
}
