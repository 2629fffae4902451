package render

import (
	"sync"

	"github.com/inamate/whiteboard/internal/document"
)

// Recorder compiles every rendered state into a Frame. OnFrame, when set, is
// called with each new frame.
type Recorder struct {
	OnFrame func(Frame)

	mu     sync.Mutex
	last   Frame
	frames int
}

func (r *Recorder) Render(state document.State) {
	frame := CompileFrame(state)
	r.mu.Lock()
	r.last = frame
	r.frames++
	fn := r.OnFrame
	r.mu.Unlock()

	if fn != nil {
		fn(frame)
	}
}

// Last returns the most recent frame and how many frames were rendered.
func (r *Recorder) Last() (Frame, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.frames
}
