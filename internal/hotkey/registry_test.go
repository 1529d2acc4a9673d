package hotkey

import (
	"errors"
	"testing"
)

// fakeBackend records native registrations so tests can assert on the state
// the OS would see.
type fakeBackend struct {
	active map[int]Combination
	fail   map[Combination]bool
	calls  []string
	fired  chan int
	closed bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		active: make(map[int]Combination),
		fail:   make(map[Combination]bool),
		fired:  make(chan int, 4),
	}
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Register(id int, c Combination) error {
	f.calls = append(f.calls, "register "+c.String())
	if f.fail[c] {
		return errors.New("combination already grabbed")
	}
	if _, dup := f.active[id]; dup {
		return errors.New("id already registered")
	}
	f.active[id] = c
	return nil
}

func (f *fakeBackend) Unregister(id int, c Combination) error {
	f.calls = append(f.calls, "unregister "+c.String())
	if f.active[id] != c {
		return errors.New("unregister with mismatched combination")
	}
	delete(f.active, id)
	return nil
}

func (f *fakeBackend) Fired() <-chan int { return f.fired }

func (f *fakeBackend) Close() error {
	f.closed = true
	return nil
}

func TestRegistry_ReplaceLeavesOneRegistration(t *testing.T) {
	fb := newFakeBackend()
	r := NewRegistry(fb)

	a := MustParseCombination("Ctrl+Shift+V")
	b := MustParseCombination("Ctrl+Alt+H")
	if !r.RegisterBinding(0, a) {
		t.Fatal("first registration failed")
	}
	if !r.RegisterBinding(0, b) {
		t.Fatal("replacement registration failed")
	}

	if len(fb.active) != 1 {
		t.Fatalf("active native registrations = %d, want 1", len(fb.active))
	}
	if fb.active[0] != b {
		t.Errorf("active combination = %s, want %s", fb.active[0], b)
	}
	want := []string{"register Ctrl+Shift+V", "unregister Ctrl+Shift+V", "register Ctrl+Alt+H"}
	if len(fb.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", fb.calls, want)
	}
	for i := range want {
		if fb.calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, fb.calls[i], want[i])
		}
	}
}

func TestRegistry_FailedReplaceDropsOldBinding(t *testing.T) {
	fb := newFakeBackend()
	r := NewRegistry(fb)

	old := MustParseCombination("Ctrl+Shift+V")
	bad := MustParseCombination("Ctrl+Alt+Delete")
	fb.fail[bad] = true

	r.RegisterBinding(0, old)
	if r.RegisterBinding(0, bad) {
		t.Fatal("registration of failing combination reported success")
	}
	if len(fb.active) != 0 {
		t.Errorf("native registrations after failed replace = %v, want none", fb.active)
	}
	if _, ok := r.Binding(0); ok {
		t.Error("registry still holds a binding for id 0")
	}
}

func TestRegistry_Unregister(t *testing.T) {
	fb := newFakeBackend()
	r := NewRegistry(fb)

	if r.UnregisterBinding(3) {
		t.Error("UnregisterBinding of unknown id = true")
	}
	r.RegisterBinding(3, MustParseCombination("F9"))
	b, ok := r.Binding(3)
	if !ok || !b.Registered || b.Combo.Key != "F9" {
		t.Errorf("Binding(3) = %+v, %v", b, ok)
	}
	if !r.UnregisterBinding(3) {
		t.Error("UnregisterBinding(3) = false")
	}
	if len(fb.active) != 0 || r.Len() != 0 {
		t.Errorf("leftover registrations: backend %v, registry %d", fb.active, r.Len())
	}
}

func TestRegistry_UnregisterAllAndClose(t *testing.T) {
	fb := newFakeBackend()
	r := NewRegistry(fb)
	r.RegisterBinding(0, MustParseCombination("Ctrl+Shift+V"))
	r.RegisterBinding(1, MustParseCombination("Ctrl+Shift+C"))

	r.UnregisterAll()
	if len(fb.active) != 0 || r.Len() != 0 {
		t.Fatalf("UnregisterAll left registrations: %v", fb.active)
	}

	r.RegisterBinding(0, MustParseCombination("Ctrl+Shift+V"))
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !fb.closed || len(fb.active) != 0 {
		t.Errorf("Close: backend closed=%v active=%v", fb.closed, fb.active)
	}
}

func TestRegistry_FiredPassThrough(t *testing.T) {
	fb := newFakeBackend()
	r := NewRegistry(fb)
	fb.fired <- 0
	fb.fired <- 0
	for range 2 {
		if id := <-r.Fired(); id != 0 {
			t.Errorf("fired id = %d, want 0", id)
		}
	}
}

func TestDeliverDropsWhenFull(t *testing.T) {
	ch := make(chan int, 1)
	deliver(ch, 1)
	deliver(ch, 2) // must not block
	if got := <-ch; got != 1 {
		t.Errorf("first delivered id = %d, want 1", got)
	}
}
