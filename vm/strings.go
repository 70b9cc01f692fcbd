package vm

import "sync"

// ---------------------------------------------------------------------------
// StringTable: Interned string values
// ---------------------------------------------------------------------------

// StringTable interns string contents to IDs so strings fit in a Value.
// Interned strings live as long as the table; they are not traced.
type StringTable struct {
	mu     sync.RWMutex
	byText map[string]uint32
	byID   []string
}

// NewStringTable creates a new empty string table.
func NewStringTable() *StringTable {
	return &StringTable{
		byText: make(map[string]uint32),
		byID:   make([]string, 0, 256),
	}
}

// Intern returns the ID for s, adding it if needed.
func (st *StringTable) Intern(s string) uint32 {
	st.mu.RLock()
	if id, ok := st.byText[s]; ok {
		st.mu.RUnlock()
		return id
	}
	st.mu.RUnlock()

	st.mu.Lock()
	defer st.mu.Unlock()

	// Double-check after acquiring write lock
	if id, ok := st.byText[s]; ok {
		return id
	}

	id := uint32(len(st.byID))
	st.byText[s] = id
	st.byID = append(st.byID, s)
	return id
}

// Lookup returns the text for an ID.
func (st *StringTable) Lookup(id uint32) (string, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	if int(id) >= len(st.byID) {
		return "", false
	}
	return st.byID[id], true
}

// Len returns the number of interned strings.
func (st *StringTable) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.byID)
}
