package clip

// headlessBackend is a no-op clipboard backend for environments without a
// display server (headless Linux servers, containers, etc.).
// Reads are always empty and writes are silently discarded.
type headlessBackend struct{}

func (headlessBackend) Name() string                 { return "headless (no-op)" }
func (headlessBackend) ReadText() (string, error)    { return "", nil }
func (headlessBackend) ReadFiles() ([]string, error) { return nil, nil }
func (headlessBackend) WriteText(string) error       { return nil }
func (headlessBackend) WriteFiles([]string) error    { return nil }
func (headlessBackend) Close()                       {}
