package display

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/talgya/torus/internal/engine"
	"github.com/talgya/torus/internal/torus"
)

// Text writes each frame as plain lines framed by the status lines.
type Text struct {
	w io.Writer

	mu  sync.Mutex
	err error
}

// NewText creates a Text display writing to w.
func NewText(w io.Writer) *Text {
	return &Text{w: w}
}

// Frame writes one frame. Use it as the engine's frame callback.
// After the first write error later frames are dropped.
func (t *Text) Frame(f *torus.Frame, st engine.Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, "%s\n%s\n%s\n\n", FrameLabel(st.Frame), f.String(), RotationLabel(st.RotationDegrees))
}

// Err returns the first write error, if any.
func (t *Text) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Limit forwards the first n frames to next and then calls stop once.
// Frames that race past the limit are dropped.
func Limit(n uint64, stop func(), next func(*torus.Frame, engine.Status)) func(*torus.Frame, engine.Status) {
	var once sync.Once
	return func(f *torus.Frame, st engine.Status) {
		if st.Frame >= n {
			return
		}
		next(f, st)
		if st.Frame+1 == n {
			once.Do(stop)
		}
	}
}

// LogEvery returns a frame callback that logs a summary every n frames.
func LogEvery(n uint64) func(*torus.Frame, engine.Status) {
	if n == 0 {
		n = 1
	}
	return func(f *torus.Frame, st engine.Status) {
		if st.Frame%n != 0 {
			return
		}
		slog.Info("frame",
			"frame", humanize.Comma(int64(st.Frame)),
			"rotation", st.RotationDegrees,
			"filled", f.Filled(),
			"hue", fmt.Sprintf("%.3f", st.Hue),
		)
	}
}
