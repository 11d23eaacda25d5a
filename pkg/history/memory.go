package history

import "sync"

// Memory is an in-process store bounded to a fixed number of entries. Older
// entries are discarded as new ones arrive.
type Memory struct {
	mu      sync.Mutex
	max     int
	entries []Entry
}

// NewMemory creates a memory store holding at most max entries.
func NewMemory(max int) *Memory {
	return &Memory{max: max}
}

func (m *Memory) Record(e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, e)
	if len(m.entries) > m.max {
		m.entries = m.entries[len(m.entries)-m.max:]
	}
	return nil
}

func (m *Memory) Recent(n int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n > len(m.entries) {
		n = len(m.entries)
	}

	out := make([]Entry, n)
	for i := 0; i < n; i++ {
		out[i] = m.entries[len(m.entries)-1-i]
	}
	return out, nil
}

func (m *Memory) Close() error {
	return nil
}
