package lightbox

import "testing"

func TestOpenClampsStartIndex(t *testing.T) {
	var v Viewer
	v.Open([]string{"a", "b", "c"}, 5)
	if v.Index() != 2 {
		t.Fatalf("expected index 2, got %d", v.Index())
	}
	if src, _ := v.Current(); src != "c" {
		t.Fatalf("expected current c, got %q", src)
	}
	if v.State() != Open {
		t.Fatalf("expected open state")
	}
	v.Open([]string{"a", "b"}, -3)
	if v.Index() != 0 {
		t.Fatalf("expected negative start to clamp to 0, got %d", v.Index())
	}
}

func TestOpenEmptyLeavesNoCurrentImage(t *testing.T) {
	var v Viewer
	v.Open(nil, 0)
	if _, ok := v.Current(); ok {
		t.Fatalf("expected no current image")
	}
	if v.State() != Closed {
		t.Fatalf("expected viewer to stay closed for empty sequence")
	}
	v.Next()
	v.Prev()
	if v.Index() != 0 || v.Len() != 0 {
		t.Fatalf("navigation on empty sequence must be a no-op")
	}
}

func TestNextPrevWrapAround(t *testing.T) {
	var v Viewer
	v.Open([]string{"a", "b", "c"}, 2)
	v.Next()
	if v.Index() != 0 {
		t.Fatalf("expected next from 2 to wrap to 0, got %d", v.Index())
	}
	v.Prev()
	if v.Index() != 2 {
		t.Fatalf("expected prev from 0 to wrap to 2, got %d", v.Index())
	}
}

func TestCloseThenOpenResetsToNewSequence(t *testing.T) {
	var v Viewer
	v.Open([]string{"a", "b", "c"}, 1)
	v.Next()
	v.Close()
	if v.Visible() {
		t.Fatalf("expected hidden after close")
	}
	if src, _ := v.Current(); src != "c" {
		t.Fatalf("close must keep images and index, got %q", src)
	}
	v.Open([]string{"x", "y"}, 9)
	if v.Index() != 1 {
		t.Fatalf("expected clamped index 1, got %d", v.Index())
	}
	if src, _ := v.Current(); src != "y" {
		t.Fatalf("expected y, got %q", src)
	}
	if v.Len() != 2 {
		t.Fatalf("expected new sequence of 2, got %d", v.Len())
	}
}

func TestOpenCopiesInput(t *testing.T) {
	images := []string{"a", "b"}
	var v Viewer
	v.Open(images, 0)
	images[0] = "mutated"
	if src, _ := v.Current(); src != "a" {
		t.Fatalf("viewer must not alias caller slice, got %q", src)
	}
}

func TestHandleKeyOnlyWhileVisible(t *testing.T) {
	var v Viewer
	if v.HandleKey(KeyArrowRight) {
		t.Fatalf("keys must be ignored while closed")
	}
	v.Open([]string{"a", "b", "c"}, 0)
	v.HandleKey(KeyArrowRight)
	if v.Index() != 1 {
		t.Fatalf("expected ArrowRight to advance, got %d", v.Index())
	}
	v.HandleKey(KeyArrowLeft)
	v.HandleKey(KeyArrowLeft)
	if v.Index() != 2 {
		t.Fatalf("expected ArrowLeft to wrap, got %d", v.Index())
	}
	if v.HandleKey("Enter") {
		t.Fatalf("unbound key must report false")
	}
	v.HandleKey(KeyEscape)
	if v.Visible() {
		t.Fatalf("expected Escape to close")
	}
	v.HandleKey(KeyArrowRight)
	if v.Index() != 2 {
		t.Fatalf("arrow keys must be ignored after close")
	}
}

func TestHandleClickClosesOnBackdropOnly(t *testing.T) {
	var v Viewer
	v.Open([]string{"a"}, 0)
	if v.HandleClick(TargetImage) {
		t.Fatalf("click on image must not close")
	}
	if !v.Visible() {
		t.Fatalf("expected still visible")
	}
	if !v.HandleClick(ParseTarget("backdrop")) {
		t.Fatalf("expected backdrop click to close")
	}
	if v.Visible() {
		t.Fatalf("expected closed after backdrop click")
	}
}

func TestSnapshotRoundTripRepairsIndex(t *testing.T) {
	var v Viewer
	v.Open([]string{"a", "b", "c"}, 1)
	r := Restore(v.Snapshot())
	if r.Index() != 1 || !r.Visible() || r.Len() != 3 {
		t.Fatalf("unexpected restored viewer: index=%d visible=%v len=%d", r.Index(), r.Visible(), r.Len())
	}
	r = Restore(Snapshot{Images: []string{"a"}, Index: 4, Visible: true})
	if r.Index() != 0 {
		t.Fatalf("expected out-of-range snapshot index clamped, got %d", r.Index())
	}
	r = Restore(Snapshot{Visible: true})
	if r.Visible() {
		t.Fatalf("empty snapshot must restore closed")
	}
}
