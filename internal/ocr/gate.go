package ocr

// Gate keeps at most one recognition in flight. A second trigger while
// one is pending is rejected outright, it is not queued. The gate is
// owned by the interactive loop and is not safe for concurrent use.
type Gate struct {
	busy    bool
	pending string
}

// TryStart claims the gate for filename. It reports false, leaving the
// gate untouched, when another recognition is still pending.
func (g *Gate) TryStart(filename string) bool {
	if g.busy {
		return false
	}
	g.busy = true
	g.pending = filename
	return true
}

// Done releases the gate. Call it exactly once per successful TryStart,
// whatever the outcome of the recognition.
func (g *Gate) Done() {
	g.busy = false
	g.pending = ""
}

// Busy reports whether a recognition is pending.
func (g *Gate) Busy() bool { return g.busy }

// Pending returns the filename the in-flight recognition belongs to,
// or "" when idle.
func (g *Gate) Pending() string { return g.pending }
