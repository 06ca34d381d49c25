// Package store is the data-access layer: a read-through/write-through
// cache per logical table, plus typed repositories that validate rows
// at the boundary and hand entities to the rest of the bot. Nothing
// outside this package touches the backing spreadsheet.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/romanselivan/goldantilop/internal/domain"
	"github.com/romanselivan/goldantilop/internal/sheets"
)

// Record is a fully materialized row, keyed by header field name.
type Record map[string]string

// DefaultTTL is how long a table snapshot is served from memory before
// the next read pulls a fresh one.
const DefaultTTL = 10 * time.Minute

// Table caches one logical table. All cache state sits behind one
// mutex so interleaved conversations serialize on it; writes still go
// to the backing store synchronously and patch the cache optimistically
// without a re-fetch.
type Table struct {
	src     sheets.ValueSource
	name    string
	idField string
	ttl     time.Duration
	log     zerolog.Logger
	now     func() time.Time

	mu      sync.Mutex
	fields  map[string]int // header field name -> column index
	rows    [][]string     // data rows in sheet order
	byID    map[string]int // id value -> index into rows
	expires time.Time
}

func NewTable(src sheets.ValueSource, name, idField string, ttl time.Duration, log zerolog.Logger) *Table {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Table{
		src:     src,
		name:    name,
		idField: idField,
		ttl:     ttl,
		log:     log.With().Str("table", name).Logger(),
		now:     time.Now,
	}
}

// refreshLocked pulls a full snapshot: header first (field indices are
// re-derived so appended columns are picked up without a redeploy),
// then all data rows.
func (t *Table) refreshLocked(ctx context.Context) error {
	header, err := t.src.Header(ctx, t.name)
	if err != nil {
		return err
	}
	fields := make(map[string]int, len(header))
	for i, h := range header {
		if h != "" {
			fields[h] = i
		}
	}
	idCol, ok := fields[t.idField]
	if !ok {
		return fmt.Errorf("%w: table %s has no %q column", domain.ErrSchemaMismatch, t.name, t.idField)
	}

	rows, err := t.src.Rows(ctx, t.name)
	if err != nil {
		return err
	}
	byID := make(map[string]int, len(rows))
	for i, row := range rows {
		if idCol < len(row) && row[idCol] != "" {
			byID[row[idCol]] = i
		}
	}

	t.fields = fields
	t.rows = rows
	t.byID = byID
	t.expires = t.now().Add(t.ttl)
	t.log.Debug().Int("rows", len(rows)).Msg("cache refreshed")
	return nil
}

func (t *Table) ensureFreshLocked(ctx context.Context) error {
	if t.fields != nil && t.now().Before(t.expires) {
		return nil
	}
	return t.refreshLocked(ctx)
}

func (t *Table) recordLocked(row []string) Record {
	rec := make(Record, len(t.fields))
	for field, col := range t.fields {
		if col < len(row) {
			rec[field] = row[col]
		} else {
			rec[field] = ""
		}
	}
	return rec
}

// Get returns the record for id, or domain.ErrNotFound.
func (t *Table) Get(ctx context.Context, id string) (Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureFreshLocked(ctx); err != nil {
		return nil, err
	}
	i, ok := t.byID[id]
	if !ok {
		return nil, fmt.Errorf("%s %q: %w", t.name, id, domain.ErrNotFound)
	}
	return t.recordLocked(t.rows[i]), nil
}

// GetAll returns every record in sheet order.
func (t *Table) GetAll(ctx context.Context) ([]Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureFreshLocked(ctx); err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, t.recordLocked(row))
	}
	return out, nil
}

// PutNew appends a record. The header is re-read first so the write
// lands in the store's current column layout; the caller is responsible
// for id collision pre-checks. Fields absent from the header are
// dropped with a warning.
func (t *Table) PutNew(ctx context.Context, rec Record) (string, error) {
	id, ok := rec[t.idField]
	if !ok || id == "" {
		return "", fmt.Errorf("%w: %q must be set on new %s rows", domain.ErrSchemaMismatch, t.idField, t.name)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.refreshHeaderLocked(ctx); err != nil {
		return "", err
	}

	width := 0
	for _, col := range t.fields {
		if col+1 > width {
			width = col + 1
		}
	}
	row := make([]string, width)
	for field, value := range rec {
		col, ok := t.fields[field]
		if !ok {
			t.log.Warn().Str("field", field).Msg("field not in sheet header, skipping")
			continue
		}
		row[col] = value
	}

	if err := t.src.Append(ctx, t.name, row); err != nil {
		return "", err
	}
	t.rows = append(t.rows, row)
	t.byID[id] = len(t.rows) - 1
	return id, nil
}

func (t *Table) refreshHeaderLocked(ctx context.Context) error {
	if t.fields == nil {
		return t.refreshLocked(ctx)
	}
	header, err := t.src.Header(ctx, t.name)
	if err != nil {
		return err
	}
	fields := make(map[string]int, len(header))
	for i, h := range header {
		if h != "" {
			fields[h] = i
		}
	}
	if _, ok := fields[t.idField]; !ok {
		return fmt.Errorf("%w: table %s has no %q column", domain.ErrSchemaMismatch, t.name, t.idField)
	}
	t.fields = fields
	return nil
}

// UpdateFields patches only the named fields of the row, leaving the
// rest untouched. A miss on the cached snapshot forces a refresh before
// the id is declared absent.
func (t *Table) UpdateFields(ctx context.Context, id string, fields map[string]string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureFreshLocked(ctx); err != nil {
		return err
	}
	i, ok := t.byID[id]
	if !ok {
		if err := t.refreshLocked(ctx); err != nil {
			return err
		}
		if i, ok = t.byID[id]; !ok {
			return fmt.Errorf("%s %q: %w", t.name, id, domain.ErrNotFound)
		}
	}

	cells := make([]sheets.Cell, 0, len(fields))
	for field, value := range fields {
		col, found := t.fields[field]
		if !found {
			t.log.Warn().Str("field", field).Msg("field not in sheet header, skipping")
			continue
		}
		cells = append(cells, sheets.Cell{Col: col, Value: value})
	}
	if err := t.src.Update(ctx, t.name, i, cells); err != nil {
		return err
	}

	row := t.rows[i]
	for _, cell := range cells {
		for len(row) <= cell.Col {
			row = append(row, "")
		}
		row[cell.Col] = cell.Value
	}
	t.rows[i] = row
	return nil
}

func isNotFound(err error) bool { return errors.Is(err, domain.ErrNotFound) }
