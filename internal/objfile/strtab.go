package objfile

import "bytes"

// StringTable is an ELF string table: NUL-terminated strings addressed by
// byte offset.
type StringTable struct {
	data []byte
}

// NewStringTable wraps raw string table bytes. The slice is not copied.
func NewStringTable(data []byte) StringTable {
	return StringTable{data: data}
}

// Len returns the size of the table in bytes.
func (t StringTable) Len() int {
	return len(t.data)
}

// Lookup returns the string starting at off. It returns false when off is
// outside the table or the string is not NUL-terminated within it.
func (t StringTable) Lookup(off uint32) (string, bool) {
	if uint64(off) >= uint64(len(t.data)) {
		return "", false
	}
	rest := t.data[off:]
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return "", false
	}
	return string(rest[:end]), true
}
