package manager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"go.klb.dev/xclipy/internal/clip/cliptest"
	"go.klb.dev/xclipy/internal/history"
	"go.klb.dev/xclipy/internal/hotkey"
	"go.klb.dev/xclipy/internal/hotkey/hotkeytest"
	"go.klb.dev/xclipy/internal/settings"
)

type fakePersister struct {
	mu           sync.Mutex
	settings     settings.Settings
	history      []string
	settingSaves int
	historySaves int
}

func (p *fakePersister) SaveSettings(s settings.Settings) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settings = s
	p.settingSaves++
	return nil
}

func (p *fakePersister) SaveHistory(entries []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history = slices.Clone(entries)
	p.historySaves++
	return nil
}

func (p *fakePersister) saved() (settings.Settings, []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settings, slices.Clone(p.history)
}

type fakeLogin struct {
	calls     []bool
	err       error
	installed bool
}

func (l *fakeLogin) Set(enabled bool) error {
	l.calls = append(l.calls, enabled)
	if l.err == nil {
		l.installed = enabled
	}
	return l.err
}

func (l *fakeLogin) Enabled() bool { return l.installed }

// recorder collects events on a buffered channel.
type recorder chan Event

func (r recorder) Notify(ev Event) { r <- ev }

func (r recorder) drain() []Event {
	var out []Event
	for {
		select {
		case ev := <-r:
			out = append(out, ev)
		default:
			return out
		}
	}
}

type fixture struct {
	m       *Manager
	cb      *cliptest.Clipboard
	keys    *hotkeytest.Backend
	persist *fakePersister
	events  recorder
}

func newFixture(t *testing.T, st settings.Settings, entries ...string) *fixture {
	t.Helper()
	f := &fixture{
		cb:      cliptest.New(),
		keys:    hotkeytest.New(),
		persist: &fakePersister{},
		events:  make(recorder, 64),
	}
	f.m = New(Config{
		Clipboard:    f.cb,
		Hotkeys:      hotkey.NewRegistry(f.keys),
		Store:        f.persist,
		Settings:     st,
		History:      entries,
		PollInterval: 5 * time.Millisecond,
	})
	t.Cleanup(f.m.Subscribe(f.events))
	return f
}

func TestWriteText_NextTickSuppressed(t *testing.T) {
	f := newFixture(t, settings.Defaults())

	if err := f.m.WriteText("X"); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	f.m.Poll()
	if h := f.m.History(); len(h) != 0 {
		t.Fatalf("history after self-copy = %q, want empty", h)
	}

	f.cb.SetText("Y")
	f.m.Poll()
	if h := f.m.History(); !slices.Equal(h, []string{"Y"}) {
		t.Errorf("history = %q, want [Y]", h)
	}
}

func TestWriteText_SelfCopyNeverRecorded(t *testing.T) {
	f := newFixture(t, settings.Defaults())
	if err := f.m.WriteText("mine"); err != nil {
		t.Fatal(err)
	}
	for range 3 {
		f.m.Poll()
	}
	if h := f.m.History(); len(h) != 0 {
		t.Errorf("history = %q, self-copied text recorded", h)
	}
}

func TestWriteText_FailureDisarmsSuppression(t *testing.T) {
	f := newFixture(t, settings.Defaults())
	f.cb.FailWrites(true)
	if err := f.m.WriteText("X"); err == nil {
		t.Fatal("WriteText succeeded on failing clipboard")
	}
	f.cb.FailWrites(false)

	f.cb.SetText("external")
	f.m.Poll()
	if h := f.m.History(); !slices.Equal(h, []string{"external"}) {
		t.Errorf("history = %q, want [external]", h)
	}
}

func TestWriteFiles(t *testing.T) {
	f := newFixture(t, settings.Defaults())
	if err := f.m.WriteFiles(nil); !errors.Is(err, ErrNoFiles) {
		t.Errorf("WriteFiles(nil) = %v, want ErrNoFiles", err)
	}
	paths := []string{"/tmp/a", "/tmp/b"}
	if err := f.m.WriteFiles(paths); err != nil {
		t.Fatalf("WriteFiles: %v", err)
	}
	f.m.Poll()
	f.m.Poll()
	if h := f.m.History(); len(h) != 0 {
		t.Errorf("history = %q, self-copied files recorded", h)
	}
	if !slices.Equal(f.cb.Files(), paths) {
		t.Errorf("clipboard files = %q", f.cb.Files())
	}
}

func TestPoll_RecordsPersistsAndNotifies(t *testing.T) {
	f := newFixture(t, settings.Defaults(), "older")

	f.cb.SetText("fresh")
	f.m.Poll()
	f.m.Poll()

	want := []string{"fresh", "older"}
	if h := f.m.History(); !slices.Equal(h, want) {
		t.Fatalf("history = %q, want %q", h, want)
	}
	if _, saved := f.persist.saved(); !slices.Equal(saved, want) {
		t.Errorf("persisted history = %q, want %q", saved, want)
	}
	evs := f.events.drain()
	if len(evs) != 1 || evs[0].Kind != EventHistoryChanged || !slices.Equal(evs[0].History, want) {
		t.Errorf("events = %+v, want one historyChanged", evs)
	}
}

func TestPoll_FilesEntry(t *testing.T) {
	f := newFixture(t, settings.Defaults())
	f.cb.SetFiles([]string{"/srv/a", "/srv/b"}, "")
	f.m.Poll()
	if h := f.m.History(); !slices.Equal(h, []string{"/srv/a\n/srv/b"}) {
		t.Errorf("history = %q", h)
	}
}

func TestPoll_BoundHolds(t *testing.T) {
	st := settings.Defaults()
	st.MaxHistorySize = 3
	f := newFixture(t, st)
	for _, s := range []string{"a", "b", "c", "d", "e"} {
		f.cb.SetText(s)
		f.m.Poll()
		if n := f.m.HistoryLen(); n > 3 {
			t.Fatalf("len = %d after %q, bound 3", n, s)
		}
	}
	if h := f.m.History(); !slices.Equal(h, []string{"e", "d", "c"}) {
		t.Errorf("history = %q", h)
	}
}

func TestClearHistory_FiresOnceWithEmptyList(t *testing.T) {
	for _, seed := range [][]string{{"a", "b"}, nil} {
		f := newFixture(t, settings.Defaults(), seed...)
		f.m.ClearHistory()

		if n := f.m.HistoryLen(); n != 0 {
			t.Errorf("len after clear = %d", n)
		}
		evs := f.events.drain()
		if len(evs) != 1 {
			t.Fatalf("seed %q: %d events, want 1", seed, len(evs))
		}
		if evs[0].History == nil || len(evs[0].History) != 0 {
			t.Errorf("clear event history = %#v, want empty non-nil", evs[0].History)
		}
	}
}

func TestRemoveEntry(t *testing.T) {
	f := newFixture(t, settings.Defaults(), "a", "b")

	if f.m.RemoveEntry("zzz") {
		t.Error("RemoveEntry(absent) = true")
	}
	if evs := f.events.drain(); len(evs) != 0 {
		t.Errorf("absent remove fired %d events", len(evs))
	}

	if !f.m.RemoveEntry("a") {
		t.Error("RemoveEntry(a) = false")
	}
	if h := f.m.History(); !slices.Equal(h, []string{"b"}) {
		t.Errorf("history = %q", h)
	}
	if evs := f.events.drain(); len(evs) != 1 {
		t.Errorf("remove fired %d events, want 1", len(evs))
	}

	if err := f.m.RemoveAt(5); !errors.Is(err, ErrNoSuchEntry) {
		t.Errorf("RemoveAt(5) = %v", err)
	}
	if err := f.m.RemoveAt(0); err != nil || f.m.HistoryLen() != 0 {
		t.Errorf("RemoveAt(0) = %v, len %d", err, f.m.HistoryLen())
	}
}

func TestSetMaxHistorySize(t *testing.T) {
	f := newFixture(t, settings.Defaults(), "5", "4", "3", "2", "1")

	for _, n := range []int{0, -4} {
		err := f.m.SetMaxHistorySize(n)
		if !errors.Is(err, ErrInvalidHistorySize) || !errors.Is(err, history.ErrInvalidSize) {
			t.Errorf("SetMaxHistorySize(%d) = %v", n, err)
		}
	}
	if got := f.m.MaxHistorySize(); got != history.DefaultMaxSize {
		t.Fatalf("bound changed to %d after invalid input", got)
	}

	if err := f.m.SetMaxHistorySize(3); err != nil {
		t.Fatalf("SetMaxHistorySize(3): %v", err)
	}
	if h := f.m.History(); !slices.Equal(h, []string{"5", "4", "3"}) {
		t.Errorf("history = %q, want 3 most recent", h)
	}
	st, saved := f.persist.saved()
	if st.MaxHistorySize != 3 || len(saved) != 3 {
		t.Errorf("persisted size %d, history %q", st.MaxHistorySize, saved)
	}
	if evs := f.events.drain(); len(evs) != 1 {
		t.Errorf("%d events, want 1", len(evs))
	}

	if err := f.m.SetMaxHistorySize(3); err != nil {
		t.Fatal(err)
	}
	if evs := f.events.drain(); len(evs) != 0 {
		t.Errorf("equal bound fired %d events", len(evs))
	}
}

func TestHotkey_RegisteredOnStart(t *testing.T) {
	f := newFixture(t, settings.Defaults())
	c, ok := f.keys.Active(ToggleHistoryID)
	if !ok || c.String() != "Ctrl+Shift+V" {
		t.Errorf("active = %v %v, want Ctrl+Shift+V", c, ok)
	}
	if !f.m.Snapshot().HotkeyRegistered {
		t.Error("Snapshot().HotkeyRegistered = false")
	}
}

func TestSetHotkey_ReplacesRegistration(t *testing.T) {
	f := newFixture(t, settings.Defaults())

	if err := f.m.SetHotkey("alt+f9"); err != nil {
		t.Fatalf("SetHotkey: %v", err)
	}
	if n := f.keys.Count(); n != 1 {
		t.Errorf("%d active registrations, want 1", n)
	}
	if c, _ := f.keys.Active(ToggleHistoryID); c.String() != "Alt+F9" {
		t.Errorf("active = %v, want Alt+F9", c)
	}
	if got := f.m.Hotkey(); got != "Alt+F9" {
		t.Errorf("Hotkey() = %q", got)
	}
	if st, _ := f.persist.saved(); st.Hotkey != "Alt+F9" {
		t.Errorf("persisted hotkey = %q", st.Hotkey)
	}

	if err := f.m.SetHotkey("Ctrl+Nope"); !errors.Is(err, hotkey.ErrUnknownKey) {
		t.Errorf("SetHotkey(bad) = %v, want ErrUnknownKey", err)
	}
	if got := f.m.Hotkey(); got != "Alt+F9" {
		t.Errorf("Hotkey() after bad input = %q", got)
	}
}

func TestSetHotkey_FailedRegistrationLeavesNone(t *testing.T) {
	f := newFixture(t, settings.Defaults())
	f.keys.Grab(hotkey.MustParseCombination("Ctrl+Alt+K"))

	if err := f.m.SetHotkey("Ctrl+Alt+K"); err != nil {
		t.Fatalf("SetHotkey: %v", err)
	}
	if n := f.keys.Count(); n != 0 {
		t.Errorf("%d active registrations, want 0", n)
	}
	if f.m.Snapshot().HotkeyRegistered {
		t.Error("Snapshot reports a registered hotkey after failure")
	}
	if got := f.m.Hotkey(); got != "Ctrl+Alt+K" {
		t.Errorf("preference not stored: %q", got)
	}
}

func TestSetHotkeyEnabled(t *testing.T) {
	f := newFixture(t, settings.Defaults())

	f.m.SetHotkeyEnabled(false)
	if n := f.keys.Count(); n != 0 {
		t.Errorf("disabled: %d registrations", n)
	}
	if err := f.m.SetHotkey("Ctrl+F1"); err != nil {
		t.Fatal(err)
	}
	if n := f.keys.Count(); n != 0 {
		t.Errorf("SetHotkey while disabled registered %d", n)
	}

	f.m.SetHotkeyEnabled(true)
	if c, ok := f.keys.Active(ToggleHistoryID); !ok || c.String() != "Ctrl+F1" {
		t.Errorf("re-enabled: active = %v %v", c, ok)
	}
}

func TestHotkeysUnsupported(t *testing.T) {
	p := &fakePersister{}
	m := New(Config{Clipboard: cliptest.New(), Store: p, Settings: settings.Defaults()})

	m.SetHotkeyEnabled(false)
	if err := m.SetHotkey("Ctrl+F2"); err != nil {
		t.Fatalf("SetHotkey: %v", err)
	}
	m.SetHotkeyEnabled(true)

	snap := m.Snapshot()
	if snap.HotkeySupported || snap.HotkeyRegistered {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.Settings.Hotkey != "Ctrl+F2" || !snap.Settings.HotkeyEnabled {
		t.Errorf("settings = %+v", snap.Settings)
	}
}

func TestNew_InvalidStoredHotkeyFallsBack(t *testing.T) {
	st := settings.Defaults()
	st.Hotkey = "Hyper+Q"
	f := newFixture(t, st)
	if got := f.m.Hotkey(); got != settings.DefaultHotkey {
		t.Errorf("Hotkey() = %q, want default", got)
	}
}

func TestSetAutoStart(t *testing.T) {
	login := &fakeLogin{err: errors.New("read-only home")}
	p := &fakePersister{}
	m := New(Config{Clipboard: cliptest.New(), Store: p, Login: login, Settings: settings.Defaults()})

	m.SetAutoStart(true)
	if !m.AutoStart() {
		t.Error("AutoStart() = false after failed login item")
	}
	if st, _ := p.saved(); !st.AutoStart {
		t.Error("autoStart not persisted")
	}
	m.SetAutoStart(false)
	if !slices.Equal(login.calls, []bool{true, false}) {
		t.Errorf("login calls = %v", login.calls)
	}
}

func TestSetShowTrayIcon(t *testing.T) {
	f := newFixture(t, settings.Defaults())
	f.m.SetShowTrayIcon(false)
	if f.m.ShowTrayIcon() {
		t.Error("ShowTrayIcon() = true")
	}
	if st, _ := f.persist.saved(); st.ShowTrayIcon {
		t.Error("showTrayIcon not persisted")
	}
}

func TestCopyEntry(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(a, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	f := newFixture(t, settings.Defaults(), "plain words", a+"\n"+dir)

	if err := f.m.CopyEntry(0, CopyAuto); err != nil {
		t.Fatal(err)
	}
	if f.cb.Text() != "plain words" {
		t.Errorf("clipboard text = %q", f.cb.Text())
	}
	if err := f.m.CopyEntry(1, CopyAuto); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(f.cb.Files(), []string{a, dir}) {
		t.Errorf("clipboard files = %q", f.cb.Files())
	}
	if err := f.m.CopyEntry(2, CopyAuto); !errors.Is(err, ErrNoSuchEntry) {
		t.Errorf("CopyEntry(2) = %v", err)
	}

	f.m.Poll()
	if n := f.m.HistoryLen(); n != 2 {
		t.Errorf("copying an entry changed history length to %d", n)
	}
}

func TestApply(t *testing.T) {
	f := newFixture(t, settings.Defaults())
	tests := []struct {
		key, value string
		wantErr    error
	}{
		{settings.KeyMaxHistorySize, "10", nil},
		{settings.KeyMaxHistorySize, "0", ErrInvalidHistorySize},
		{settings.KeyMaxHistorySize, "ten", ErrInvalidHistorySize},
		{settings.KeyShowTrayIcon, "false", nil},
		{settings.KeyHotkey, "Meta+Space", nil},
		{settings.KeyHotkey, "", hotkey.ErrEmptyCombination},
		{settings.KeyHotkeyEnabled, "false", nil},
		{"colour", "blue", ErrUnknownSetting},
	}
	for _, tt := range tests {
		err := f.m.Apply(tt.key, tt.value)
		if tt.wantErr == nil && err != nil {
			t.Errorf("Apply(%s, %s) = %v", tt.key, tt.value, err)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("Apply(%s, %s) = %v, want %v", tt.key, tt.value, err, tt.wantErr)
		}
	}
	if err := f.m.Apply(settings.KeyAutoStart, "maybe"); err == nil {
		t.Error("Apply(autoStart, maybe) succeeded")
	}

	st := f.m.Settings()
	want := settings.Settings{
		MaxHistorySize: 10,
		ShowTrayIcon:   false,
		Hotkey:         "Meta+Space",
		HotkeyEnabled:  false,
	}
	if st != want {
		t.Errorf("settings = %+v, want %+v", st, want)
	}
}

func TestRun_DispatchesAndShutsDown(t *testing.T) {
	f := newFixture(t, settings.Defaults())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.m.Run(ctx) }()

	f.keys.Press(ToggleHistoryID)
	f.cb.SetText("while running")

	var sawToggle, sawHistory bool
	deadline := time.After(2 * time.Second)
	for !sawToggle || !sawHistory {
		select {
		case ev := <-f.events:
			switch ev.Kind {
			case EventToggleHistory:
				sawToggle = true
			case EventHistoryChanged:
				sawHistory = slices.Contains(ev.History, "while running")
			}
		case <-deadline:
			t.Fatalf("timed out: toggle=%v history=%v", sawToggle, sawHistory)
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if n := f.keys.Count(); n != 0 {
		t.Errorf("%d registrations after shutdown", n)
	}
	if _, saved := f.persist.saved(); !slices.Equal(saved, []string{"while running"}) {
		t.Errorf("history saved on shutdown = %q", saved)
	}
}

func TestCopyEntry_Modes(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "hosts")
	if err := os.WriteFile(a, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	f := newFixture(t, settings.Defaults(), a, "not a path")

	if err := f.m.CopyEntry(0, CopyText); err != nil {
		t.Fatal(err)
	}
	if f.cb.Text() != a || len(f.cb.Files()) != 0 {
		t.Errorf("as text: text %q files %q", f.cb.Text(), f.cb.Files())
	}

	if err := f.m.CopyEntry(0, CopyFiles); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(f.cb.Files(), []string{a}) {
		t.Errorf("as files: files %q", f.cb.Files())
	}

	if err := f.m.CopyEntry(1, CopyFiles); err != nil {
		t.Fatal(err)
	}
	if f.cb.Text() != "not a path" || len(f.cb.Files()) != 0 {
		t.Errorf("files fallback: text %q files %q", f.cb.Text(), f.cb.Files())
	}

	if err := f.m.CopyEntry(0, "html"); !errors.Is(err, ErrInvalidCopyMode) {
		t.Errorf("CopyEntry(bogus mode) = %v", err)
	}
}

func TestParseCopyMode(t *testing.T) {
	tests := map[string]CopyMode{"": CopyAuto, "auto": CopyAuto, "text": CopyText, "files": CopyFiles}
	for in, want := range tests {
		if got, err := ParseCopyMode(in); err != nil || got != want {
			t.Errorf("ParseCopyMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseCopyMode("TEXT/HTML"); !errors.Is(err, ErrInvalidCopyMode) {
		t.Errorf("ParseCopyMode(bad) = %v", err)
	}
}

func TestEvents_DeliveredInMutationOrder(t *testing.T) {
	f := newFixture(t, settings.Defaults())

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	t.Cleanup(f.m.Subscribe(ListenerFunc(func(ev Event) {
		if ev.Kind != EventHistoryChanged {
			return
		}
		once.Do(func() {
			close(entered)
			<-release
		})
	})))

	var mu sync.Mutex
	var last []string
	t.Cleanup(f.m.Subscribe(ListenerFunc(func(ev Event) {
		if ev.Kind == EventHistoryChanged {
			mu.Lock()
			last = ev.History
			mu.Unlock()
		}
	})))

	f.cb.SetText("X")
	polled := make(chan struct{})
	go func() {
		f.m.Poll()
		close(polled)
	}()

	<-entered
	f.m.ClearHistory()
	close(release)
	<-polled

	mu.Lock()
	defer mu.Unlock()
	if h := f.m.History(); len(h) != 0 || last == nil || len(last) != 0 {
		t.Errorf("last delivered history = %q, manager history = %q", last, h)
	}
}

func TestEvents_ListenerMayCallBack(t *testing.T) {
	f := newFixture(t, settings.Defaults())
	var seen []int
	t.Cleanup(f.m.Subscribe(ListenerFunc(func(ev Event) {
		seen = append(seen, f.m.HistoryLen())
		if len(seen) == 1 {
			f.m.ClearHistory()
		}
	})))

	f.cb.SetText("X")
	f.m.Poll()
	if !slices.Equal(seen, []int{1, 0}) {
		t.Errorf("history lengths seen by listener = %v, want [1 0]", seen)
	}
}

func TestSnapshot_LoginItemInstalled(t *testing.T) {
	login := &fakeLogin{}
	m := New(Config{Clipboard: cliptest.New(), Login: login, Settings: settings.Defaults()})
	if m.Snapshot().AutoStartInstalled {
		t.Error("AutoStartInstalled before enabling")
	}
	m.SetAutoStart(true)
	if !m.Snapshot().AutoStartInstalled {
		t.Error("AutoStartInstalled = false after enabling")
	}
}
