package backend

// Redrawer asks the presentation layer to render a new frame soon. Calls must
// not block and may come from any goroutine.
type Redrawer interface {
	RequestRedraw()
}

// RedrawFunc adapts a plain function to Redrawer.
type RedrawFunc func()

func (f RedrawFunc) RequestRedraw() {
	if f != nil {
		f()
	}
}

// Notifier is a coalescing redraw signal: any number of requests made before
// the UI observes C collapse into a single wake-up.
type Notifier struct {
	ch chan struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan struct{}, 1)}
}

func (n *Notifier) RequestRedraw() {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}

// C delivers a value whenever at least one redraw was requested since the
// previous receive.
func (n *Notifier) C() <-chan struct{} {
	return n.ch
}
