// Package lightbox implements the image viewer overlay as a small state machine.
//
// A Viewer is either Closed or Open. Open always holds a non-empty image sequence and an
// index inside it; out-of-range input is clamped and empty input is a no-op, so no
// operation fails.
package lightbox

// State is the visibility state of the viewer.
type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// Key names understood by HandleKey. They match KeyboardEvent.key values.
const (
	KeyEscape     = "Escape"
	KeyArrowRight = "ArrowRight"
	KeyArrowLeft  = "ArrowLeft"
)

// Target identifies what a pointer click landed on.
type Target int

const (
	TargetBackdrop Target = iota
	TargetImage
)

// ParseTarget maps the form value posted by the overlay to a Target.
func ParseTarget(v string) Target {
	if v == "backdrop" {
		return TargetBackdrop
	}
	return TargetImage
}

// Viewer owns the image sequence being browsed and the current position.
type Viewer struct {
	images  []string
	index   int
	visible bool
}

// Snapshot is the serializable form of a Viewer.
type Snapshot struct {
	Images  []string `json:"images,omitempty"`
	Index   int      `json:"index,omitempty"`
	Visible bool     `json:"visible,omitempty"`
}

// Restore rebuilds a viewer from a snapshot, re-establishing the index invariant.
func Restore(s Snapshot) *Viewer {
	v := &Viewer{images: copyImages(s.Images)}
	v.index = clamp(s.Index, len(v.images))
	v.visible = s.Visible && len(v.images) > 0
	return v
}

// Snapshot captures the viewer state.
func (v *Viewer) Snapshot() Snapshot {
	return Snapshot{Images: copyImages(v.images), Index: v.index, Visible: v.visible}
}

// Open replaces the sequence, clamps start into range and shows the overlay.
// An empty sequence leaves the viewer Closed with no current image.
func (v *Viewer) Open(images []string, start int) {
	v.images = copyImages(images)
	v.index = clamp(start, len(v.images))
	v.visible = len(v.images) > 0
}

// Next advances with wraparound.
func (v *Viewer) Next() {
	if len(v.images) == 0 {
		return
	}
	v.index = (v.index + 1) % len(v.images)
}

// Prev retreats with wraparound.
func (v *Viewer) Prev() {
	if len(v.images) == 0 {
		return
	}
	v.index = (v.index - 1 + len(v.images)) % len(v.images)
}

// Close hides the overlay. The sequence and index are kept until the next Open.
func (v *Viewer) Close() { v.visible = false }

// HandleKey applies a keyboard binding. Keys are ignored while the viewer is closed.
// It reports whether the key was bound.
func (v *Viewer) HandleKey(key string) bool {
	if !v.visible {
		return false
	}
	switch key {
	case KeyEscape:
		v.Close()
	case KeyArrowRight:
		v.Next()
	case KeyArrowLeft:
		v.Prev()
	default:
		return false
	}
	return true
}

// HandleClick closes the viewer when the click hit the backdrop rather than the image.
func (v *Viewer) HandleClick(t Target) bool {
	if !v.visible || t != TargetBackdrop {
		return false
	}
	v.Close()
	return true
}

// State reports Open or Closed.
func (v *Viewer) State() State {
	if v.visible {
		return Open
	}
	return Closed
}

// Visible reports whether the overlay is shown.
func (v *Viewer) Visible() bool { return v.visible }

// Index returns the current position.
func (v *Viewer) Index() int { return v.index }

// Len returns the number of images in the sequence.
func (v *Viewer) Len() int { return len(v.images) }

// Current returns the image at the current position.
func (v *Viewer) Current() (string, bool) {
	if len(v.images) == 0 {
		return "", false
	}
	return v.images[v.index], true
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

func copyImages(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
