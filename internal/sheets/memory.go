package sheets

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-memory ValueSource. It backs tests and local runs
// where a real spreadsheet is not wanted.
type Memory struct {
	mu     sync.Mutex
	tables map[string][][]string // row 0 is the header
}

func NewMemory() *Memory {
	return &Memory{tables: make(map[string][][]string)}
}

// SetTable installs a table; the first row is the header.
func (m *Memory) SetTable(name string, rows [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([][]string, len(rows))
	for i, r := range rows {
		cp[i] = append([]string(nil), r...)
	}
	m.tables[name] = cp
}

func (m *Memory) Header(ctx context.Context, table string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.tables[table]
	if !ok {
		return nil, fmt.Errorf("memory: no table %q", table)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return append([]string(nil), rows[0]...), nil
}

func (m *Memory) Rows(ctx context.Context, table string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.tables[table]
	if !ok {
		return nil, fmt.Errorf("memory: no table %q", table)
	}
	out := make([][]string, 0, len(rows))
	for _, r := range rows[1:] {
		out = append(out, append([]string(nil), r...))
	}
	return out, nil
}

func (m *Memory) Append(ctx context.Context, table string, row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[table]; !ok {
		return fmt.Errorf("memory: no table %q", table)
	}
	m.tables[table] = append(m.tables[table], append([]string(nil), row...))
	return nil
}

func (m *Memory) Update(ctx context.Context, table string, rowIndex int, cells []Cell) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.tables[table]
	if !ok {
		return fmt.Errorf("memory: no table %q", table)
	}
	i := rowIndex + 1 // skip header
	if i < 1 || i >= len(rows) {
		return fmt.Errorf("memory: row %d out of range in %q", rowIndex, table)
	}
	row := rows[i]
	for _, c := range cells {
		for len(row) <= c.Col {
			row = append(row, "")
		}
		row[c.Col] = c.Value
	}
	rows[i] = row
	return nil
}
