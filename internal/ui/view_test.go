package ui

import (
	"strings"
	"testing"

	"github.com/atomicstack/earctl/internal/backend"
	"github.com/charmbracelet/lipgloss"
)

func TestViewWaitingForDevice(t *testing.T) {
	f := newModelFixture(t)
	view := f.h.View()
	if !strings.Contains(view, defaultTitle) {
		t.Fatalf("expected title in view:\n%s", view)
	}
	if !strings.Contains(view, waitingText) {
		t.Fatalf("expected waiting text in view:\n%s", view)
	}
	if strings.Contains(view, "ANC") {
		t.Fatalf("expected settings to be hidden while waiting:\n%s", view)
	}
}

func TestViewShowsDeviceInfo(t *testing.T) {
	f := newModelFixture(t)
	f.connect(t)
	view := f.h.View()
	for _, want := range []string{"Address:", "AA:BB:CC", "Firmware:", "1.2.3", "Serial:", "SN42", "ANC Mode:", "In Ear Detection:"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
	if strings.Contains(view, waitingText) {
		t.Fatalf("expected waiting text to be gone:\n%s", view)
	}
	if got := strings.Count(view, "(•)"); got != 1 {
		t.Fatalf("expected only the preset ANC strength to be selected, got %d selections:\n%s", got, view)
	}
	if !strings.Contains(view, "(•) Adaptive") {
		t.Fatalf("expected adaptive preset in the ANC mode row:\n%s", view)
	}
	for _, label := range []string{"ANC:", "Low Latency:", "In Ear Detection:"} {
		line := lineWith(view, label)
		if strings.Contains(line, "(•)") {
			t.Fatalf("expected no selection on %q before any input, got %q", label, line)
		}
	}
}

func lineWith(view, label string) string {
	for _, line := range strings.Split(view, "\n") {
		if strings.Contains(line, label) {
			return line
		}
	}
	return ""
}

func TestViewShowsErrorAboveDeviceInfo(t *testing.T) {
	f := newModelFixture(t)
	f.connect(t)
	f.emit(t, backend.ErrorResponse{Message: "timeout"})
	view := f.h.View()
	errAt := strings.Index(view, "timeout")
	infoAt := strings.Index(view, "Address:")
	if errAt < 0 || infoAt < 0 || errAt > infoAt {
		t.Fatalf("expected error above device info:\n%s", view)
	}
}

func TestViewMarksSelection(t *testing.T) {
	f := newModelFixture(t)
	f.connect(t)
	f.h.Key("2")
	view := f.h.View()
	if !strings.Contains(view, "(•) Transparency") {
		t.Fatalf("expected transparency to be selected:\n%s", view)
	}
	if !strings.Contains(view, rowIndicator+" ANC:") {
		t.Fatalf("expected cursor on the ANC row:\n%s", view)
	}
}

func TestViewTruncatesToWidth(t *testing.T) {
	respTx, respRx := backend.NewChannel[backend.Response]()
	defer respRx.Close()
	_ = respTx.Send(backend.DeviceInfo{Address: "AA:BB:CC:DD:EE:FF", FirmwareVersion: "1.0.0", SerialNumber: "SN"})
	m := NewModel(nil, respRx, nil, 20)
	h := NewHarness(m)
	h.Redraw()
	for _, line := range strings.Split(h.View(), "\n") {
		if w := lipgloss.Width(line); w > 20 {
			t.Fatalf("expected lines truncated to 20 cells, got %d: %q", w, line)
		}
	}
}

func TestHelpToggle(t *testing.T) {
	f := newModelFixture(t)
	f.connect(t)
	if !strings.Contains(f.h.View(), "q quit") {
		t.Fatalf("expected help footer by default")
	}
	f.h.Key("?")
	if strings.Contains(f.h.View(), "q quit") {
		t.Fatalf("expected help footer to be hidden")
	}
}
