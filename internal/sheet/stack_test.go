package sheet_test

import (
	"testing"

	"github.com/gridsheet/gridsheet/internal/options"
	"github.com/gridsheet/gridsheet/internal/sheet"
)

func TestStack_PushMovesToTop(t *testing.T) {
	opts := options.New()
	a := sheet.New("a", opts)
	b := sheet.New("b", opts)
	st := sheet.NewStack()

	st.Push(a)
	st.Push(b)
	if st.Top() != b {
		t.Fatal("Top() != last pushed sheet")
	}

	// re-pushing moves rather than duplicates
	st.Push(a)
	if st.Top() != a {
		t.Error("re-push did not move sheet to top")
	}
	if st.Len() != 2 {
		t.Errorf("Len() = %d after re-push, want 2", st.Len())
	}
}

func TestStack_PushNil(t *testing.T) {
	st := sheet.NewStack()
	st.Push(nil)
	if st.Len() != 0 {
		t.Errorf("Len() = %d after Push(nil), want 0", st.Len())
	}
}

func TestStack_Remove(t *testing.T) {
	opts := options.New()
	a := sheet.New("a", opts)
	b := sheet.New("b", opts)
	st := sheet.NewStack()
	st.Push(a)
	st.Push(b)

	st.Remove(b)
	if st.Top() != a {
		t.Error("Top() after Remove != remaining sheet")
	}
	st.Remove(b) // absent, no-op
	if st.Len() != 1 {
		t.Errorf("Len() = %d, want 1", st.Len())
	}
	st.Remove(a)
	if st.Top() != nil {
		t.Error("Top() on empty stack != nil")
	}
}

func TestStack_Get(t *testing.T) {
	opts := options.New()
	a := sheet.New("data", opts)
	st := sheet.NewStack()
	st.Push(a)

	if st.Get("data") != a {
		t.Error("Get(data) did not return the pushed sheet")
	}
	if st.Get("missing") != nil {
		t.Error("Get(missing) != nil")
	}
}
