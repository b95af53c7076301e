package chat

import "sync"

// Log is the ordered conversation history for one session. It is append-only
// during a session and cleared wholesale on explicit user action. Safe for
// concurrent use: the web view can serve overlapping requests that share a
// session id.
type Log struct {
	mu    sync.Mutex
	turns []Turn
}

// NewLog creates an empty conversation log.
func NewLog() *Log {
	return &Log{}
}

// Append adds a turn to the end of the log and returns it.
func (l *Log) Append(role Role, content string) Turn {
	l.mu.Lock()
	defer l.mu.Unlock()

	t := Turn{Role: role, Content: content}
	l.turns = append(l.turns, t)
	return t
}

// Turns returns a copy of the log in append order.
func (l *Log) Turns() []Turn {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Len returns the number of turns in the log.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.turns)
}

// Clear discards all turns, resetting the log to empty.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.turns = nil
}
