// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeRecord struct {
	hash   string
	height int64
	doc    []byte
}

// fakeDB emulates the header table for the statements HeaderStore issues.
// execErr / rowErr, when set, are returned instead of touching the table.
type fakeDB struct {
	mu      sync.Mutex
	records map[string]fakeRecord
	execErr error
	rowErr  error
	stmts   []string
}

func newFakeDB() *fakeDB {
	return &fakeDB{records: make(map[string]fakeRecord)}
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stmts = append(f.stmts, sql)

	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}

	switch {
	case strings.Contains(sql, "CREATE TABLE"):
		return pgconn.NewCommandTag("CREATE TABLE"), nil
	case strings.HasPrefix(sql, "INSERT"):
		rec := fakeRecord{hash: args[0].(string), height: args[1].(int64), doc: args[2].([]byte)}
		if _, ok := f.records[rec.hash]; ok {
			return pgconn.NewCommandTag("INSERT 0 0"), nil
		}
		for _, r := range f.records {
			if r.height == rec.height {
				return pgconn.NewCommandTag("INSERT 0 0"), nil
			}
		}
		f.records[rec.hash] = rec
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	case strings.HasPrefix(sql, "DELETE"):
		hash := args[0].(string)
		if _, ok := f.records[hash]; !ok {
			return pgconn.NewCommandTag("DELETE 0"), nil
		}
		delete(f.records, hash)
		return pgconn.NewCommandTag("DELETE 1"), nil
	}
	return pgconn.CommandTag{}, fmt.Errorf("fakeDB: unexpected exec %q", sql)
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stmts = append(f.stmts, sql)

	if f.rowErr != nil {
		return fakeRow{err: f.rowErr}
	}

	switch {
	case strings.HasPrefix(sql, "SELECT COUNT"):
		return fakeRow{vals: []any{int64(len(f.records))}}
	case strings.Contains(sql, "WHERE hash"):
		if r, ok := f.records[args[0].(string)]; ok {
			return r.row()
		}
	case strings.Contains(sql, "WHERE height"):
		for _, r := range f.records {
			if r.height == args[0].(int64) {
				return r.row()
			}
		}
	case strings.Contains(sql, "ORDER BY height DESC"):
		recs := make([]fakeRecord, 0, len(f.records))
		for _, r := range f.records {
			recs = append(recs, r)
		}
		sort.Slice(recs, func(i, j int) bool { return recs[i].height > recs[j].height })
		if len(recs) > 0 {
			return recs[0].row()
		}
	default:
		return fakeRow{err: fmt.Errorf("fakeDB: unexpected query %q", sql)}
	}
	return fakeRow{err: pgx.ErrNoRows}
}

// put stores a raw row, bypassing HeaderStore, to simulate corrupt data.
func (f *fakeDB) put(rec fakeRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[rec.hash] = rec
}

func (r fakeRecord) row() fakeRow {
	return fakeRow{vals: []any{r.hash, r.height, r.doc}}
}

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.vals) {
		return fmt.Errorf("fakeRow: %d destinations for %d values", len(dest), len(r.vals))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.vals[i].(string)
		case *int64:
			*p = r.vals[i].(int64)
		case *[]byte:
			*p = r.vals[i].([]byte)
		default:
			return fmt.Errorf("fakeRow: unsupported destination %T", d)
		}
	}
	return nil
}
