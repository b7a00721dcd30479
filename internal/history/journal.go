package history

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ivlev/tweener/internal/changes"
	"github.com/ivlev/tweener/internal/curve"
)

//go:embed schema.sql
var schemaSQL string

//go:embed pragmas.sql
var pragmasSQL string

// Record is one released gesture as stored in the journal.
type Record struct {
	ID        string
	Scene     string
	Shape     string
	Factor    float64
	Before    string // scene digest before the gesture
	After     string // scene digest after the gesture
	Undone    bool
	CreatedAt time.Time
	Entries   []changes.Entry
}

// Document is a scene the journal can undo and redo against.
type Document interface {
	changes.Writer
	Digest() (string, error)
}

// Commit persists whatever the journal entry describes, typically by saving
// the scene. It runs inside the journal transaction: when it fails the
// journal is left as it was.
type Commit func() error

// Journal persists gesture caches so undo and redo work across runs.
type Journal struct {
	conn *sql.DB
	path string
}

// Open opens or creates a journal database at path.
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}
	conn, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	conn.SetMaxOpenConns(1)

	for _, pragma := range strings.Split(pragmasSQL, "\n") {
		pragma = strings.TrimSpace(pragma)
		if pragma == "" || strings.HasPrefix(pragma, "--") {
			continue
		}
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Journal{conn: conn, path: path}, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.conn.Close()
}

// Append stores a released gesture and then runs commit, if any. Undone
// records of the same scene are discarded first: a new edit ends the redo
// branch. Nothing is stored when commit fails.
func (j *Journal) Append(rec Record, commit Commit) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	tx, err := j.conn.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sessions WHERE scene = ? AND undone = 1`, rec.Scene); err != nil {
		return "", fmt.Errorf("dropping redo branch: %w", err)
	}
	res, err := tx.Exec(
		`INSERT INTO sessions (id, scene, shape, factor, digest_before, digest_after, undone, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		rec.ID, rec.Scene, rec.Shape, rec.Factor, rec.Before, rec.After, rec.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("inserting session: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return "", err
	}
	for i, e := range rec.Entries {
		_, err := tx.Exec(
			`INSERT INTO entries (session_seq, ord, curve, key_index, original, final) VALUES (?, ?, ?, ?, ?, ?)`,
			seq, i, string(e.Curve), e.Key, e.Original, e.Final,
		)
		if err != nil {
			return "", fmt.Errorf("inserting entry: %w", err)
		}
	}
	if commit != nil {
		if err := commit(); err != nil {
			return "", err
		}
	}
	return rec.ID, tx.Commit()
}

// List returns the newest records of a scene, newest first.
func (j *Journal) List(scene string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.conn.Query(
		`SELECT seq, id, scene, shape, factor, digest_before, digest_after, undone, created_at
		 FROM sessions WHERE scene = ? ORDER BY seq DESC LIMIT ?`, scene, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var recs []Record
	var seqs []int64
	for rows.Next() {
		rec, seq, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
		seqs = append(seqs, seq)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range recs {
		if recs[i].Entries, err = j.entries(seqs[i]); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

// Undo reverts the newest live record of scene on doc, then runs commit.
// If commit fails the record stays live and doc is put back.
func (j *Journal) Undo(scene string, doc Document, commit Commit) (*Record, error) {
	return j.step(scene, doc, false, commit)
}

// Redo reapplies the most recently undone record of scene on doc, then
// runs commit. If commit fails the record stays undone and doc is put back.
func (j *Journal) Redo(scene string, doc Document, commit Commit) (*Record, error) {
	return j.step(scene, doc, true, commit)
}

func (j *Journal) step(scene string, doc Document, redo bool, commit Commit) (*Record, error) {
	rec, seq, err := j.find(scene, redo)
	if errors.Is(err, sql.ErrNoRows) {
		if redo {
			return nil, ErrNothingToRedo
		}
		return nil, ErrNothingToUndo
	}
	if err != nil {
		return nil, err
	}

	want := rec.After
	if redo {
		want = rec.Before
	}
	if err := checkDigest(doc, want); err != nil {
		return nil, err
	}

	cache := changes.Restore(doc, rec.Entries)
	apply, revert := cache.Undo, cache.Redo
	if redo {
		apply, revert = cache.Redo, cache.Undo
	}
	if err := apply(); err != nil {
		return nil, errors.Join(err, revert())
	}

	tx, err := j.conn.Begin()
	if err != nil {
		return nil, errors.Join(err, revert())
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE sessions SET undone = ? WHERE seq = ?`, !redo, seq); err != nil {
		return nil, errors.Join(fmt.Errorf("updating session: %w", err), revert())
	}
	if commit != nil {
		if err := commit(); err != nil {
			return nil, errors.Join(err, revert())
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	rec.Undone = !redo
	return &rec, nil
}

// find returns the record undo or redo acts on. Undo takes the newest live
// record; redo the oldest undone one, which is the one undone last.
func (j *Journal) find(scene string, undone bool) (Record, int64, error) {
	order := "DESC"
	if undone {
		order = "ASC"
	}
	row := j.conn.QueryRow(
		`SELECT seq, id, scene, shape, factor, digest_before, digest_after, undone, created_at
		 FROM sessions WHERE scene = ? AND undone = ? ORDER BY seq `+order+` LIMIT 1`,
		scene, undone)
	rec, seq, err := scanRecord(row)
	if err != nil {
		return Record{}, 0, err
	}
	rec.Entries, err = j.entries(seq)
	return rec, seq, err
}

func (j *Journal) entries(seq int64) ([]changes.Entry, error) {
	rows, err := j.conn.Query(
		`SELECT curve, key_index, original, final FROM entries WHERE session_seq = ? ORDER BY ord`, seq)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var out []changes.Entry
	for rows.Next() {
		var e changes.Entry
		var id string
		if err := rows.Scan(&id, &e.Key, &e.Original, &e.Final); err != nil {
			return nil, err
		}
		e.Curve = curve.ID(id)
		out = append(out, e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, int64, error) {
	var rec Record
	var seq, created int64
	err := sc.Scan(&seq, &rec.ID, &rec.Scene, &rec.Shape, &rec.Factor, &rec.Before, &rec.After, &rec.Undone, &created)
	if err != nil {
		return Record{}, 0, err
	}
	rec.CreatedAt = time.UnixMilli(created)
	return rec, seq, nil
}

func checkDigest(doc Document, want string) error {
	got, err := doc.Digest()
	if err != nil {
		return err
	}
	if got != want {
		return ErrSceneChanged
	}
	return nil
}
