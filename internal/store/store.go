// Package store keeps a local SQLite snapshot of the imported catalog and
// a log of the selections the CLI has published. The rotation engine never
// reads from it; selections are always recomputed from the catalog.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/matheuskafuri/folio/internal/catalog"
	"github.com/matheuskafuri/folio/internal/classify"
	"github.com/matheuskafuri/folio/internal/rotation"
	"github.com/matheuskafuri/folio/internal/seed"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a selection or meta key is absent.
var ErrNotFound = errors.New("not found")

type Store struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

// QueryOpts filters Records. Zero values match everything.
type QueryOpts struct {
	Kind     catalog.Kind
	Category classify.Category
	Search   string
	Limit    int
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	s := &Store{writeDB: writeDB}
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}

	// Read handle opens after the schema exists
	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}
	s.readDB = readDB
	return s, nil
}

func (s *Store) init() error {
	_, err := s.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			kind      TEXT NOT NULL,
			id        INTEGER NOT NULL,
			source    TEXT NOT NULL DEFAULT '',
			slug      TEXT NOT NULL DEFAULT '',
			title     TEXT NOT NULL,
			role      TEXT NOT NULL DEFAULT '',
			summary   TEXT NOT NULL DEFAULT '',
			category  TEXT NOT NULL,
			url       TEXT NOT NULL DEFAULT '',
			image     TEXT NOT NULL DEFAULT '',
			tags      TEXT NOT NULL DEFAULT '',
			date      TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (kind, id)
		);
		CREATE INDEX IF NOT EXISTS idx_records_category ON records(category);

		CREATE TABLE IF NOT EXISTS selections (
			date        TEXT NOT NULL,
			kind        TEXT NOT NULL,
			view        TEXT NOT NULL,
			ids         TEXT NOT NULL,
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (date, kind, view)
		);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	var errs []error
	if s.readDB != nil {
		errs = append(errs, s.readDB.Close())
	}
	if s.writeDB != nil {
		errs = append(errs, s.writeDB.Close())
	}
	return errors.Join(errs...)
}

// ReplaceCatalog swaps the stored snapshot of each listed kind for the
// matching records in one transaction. Kinds not listed keep their rows.
func (s *Store) ReplaceCatalog(kinds []catalog.Kind, records []catalog.Record) error {
	if len(kinds) == 0 {
		return nil
	}
	replace := make(map[catalog.Kind]bool, len(kinds))
	for _, k := range kinds {
		replace[k] = true
	}

	tx, err := s.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for k := range replace {
		if _, err := tx.Exec("DELETE FROM records WHERE kind = ?", string(k)); err != nil {
			return fmt.Errorf("clearing %s records: %w", k, err)
		}
	}

	stmt, err := tx.Prepare(`
		INSERT INTO records (kind, id, source, slug, title, role, summary, category, url, image, tags, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind, id) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if !replace[r.Kind] {
			continue
		}
		_, err := stmt.Exec(string(r.Kind), r.ID, r.Source, r.Slug, r.Title, r.Role, r.Summary,
			string(r.Category), r.URL, r.Image, strings.Join(r.Tags, ","), r.Date)
		if err != nil {
			return fmt.Errorf("inserting record %s/%d: %w", r.Kind, r.ID, err)
		}
	}

	return tx.Commit()
}

// Records returns stored records ordered by id, newest first.
func (s *Store) Records(opts QueryOpts) ([]catalog.Record, error) {
	var (
		where []string
		args  []any
	)
	if opts.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(opts.Kind))
	}
	if opts.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(opts.Category))
	}
	if opts.Search != "" {
		where = append(where, "(title LIKE ? OR summary LIKE ?)")
		term := "%" + opts.Search + "%"
		args = append(args, term, term)
	}

	query := "SELECT kind, id, source, slug, title, role, summary, category, url, image, tags, date FROM records"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC"
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := s.readDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []catalog.Record
	for rows.Next() {
		var (
			r              catalog.Record
			kind, cat, tag string
		)
		if err := rows.Scan(&kind, &r.ID, &r.Source, &r.Slug, &r.Title, &r.Role, &r.Summary,
			&cat, &r.URL, &r.Image, &tag, &r.Date); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		r.Kind = catalog.Kind(kind)
		r.Category = classify.Category(cat)
		if tag != "" {
			r.Tags = strings.Split(tag, ",")
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// RecordSelection logs what a view over one kind of record showed on a
// day. Re-recording the same day, kind and view overwrites the earlier entry.
func (s *Store) RecordSelection(kind catalog.Kind, sel rotation.Selection) error {
	ids := make([]string, len(sel.Records))
	for i, r := range sel.Records {
		ids[i] = strconv.Itoa(r.ID)
	}
	_, err := s.writeDB.Exec(`
		INSERT INTO selections (date, kind, view, ids, recorded_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date, kind, view) DO UPDATE SET ids = excluded.ids, recorded_at = excluded.recorded_at
	`, sel.Date, string(kind), string(sel.View), strings.Join(ids, ","), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording selection %s/%s/%s: %w", sel.Date, kind, sel.View, err)
	}
	return nil
}

// Selection returns the ids logged for a day, kind and view.
func (s *Store) Selection(date string, kind catalog.Kind, view rotation.View) ([]int, error) {
	var raw string
	err := s.readDB.QueryRow("SELECT ids FROM selections WHERE date = ? AND kind = ? AND view = ?",
		date, string(kind), string(view)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading selection: %w", err)
	}
	ids := []int{}
	if raw == "" {
		return ids, nil
	}
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("corrupt selection %s/%s: %w", date, view, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Prune deletes selection log entries for days before today minus olderThan.
func (s *Store) Prune(today string, olderThan time.Duration) (int64, error) {
	days := int(olderThan.Hours() / 24)
	cutoff, err := seed.OffsetSeedString(today, -days)
	if err != nil {
		return 0, err
	}
	res, err := s.writeDB.Exec("DELETE FROM selections WHERE date < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning selections: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		_, _ = s.writeDB.Exec("VACUUM")
	}
	return n, nil
}

// Stats reports row counts and the on-disk size of the database.
func (s *Store) Stats(dbPath string) (records, selections int, size int64, err error) {
	if err = s.readDB.QueryRow("SELECT COUNT(*) FROM records").Scan(&records); err != nil {
		return 0, 0, 0, fmt.Errorf("counting records: %w", err)
	}
	if err = s.readDB.QueryRow("SELECT COUNT(*) FROM selections").Scan(&selections); err != nil {
		return 0, 0, 0, fmt.Errorf("counting selections: %w", err)
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("stat %s: %w", dbPath, err)
	}
	return records, selections, info.Size(), nil
}

func (s *Store) NeedsImport(interval time.Duration) bool {
	value, err := s.meta("last_import")
	if err != nil {
		return true
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return true
	}
	return time.Since(t) > interval
}

func (s *Store) SetLastImport() error {
	return s.setMeta("last_import", time.Now().Format(time.RFC3339))
}

func (s *Store) meta(key string) (string, error) {
	var value string
	err := s.readDB.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

func (s *Store) setMeta(key, value string) error {
	_, err := s.writeDB.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
