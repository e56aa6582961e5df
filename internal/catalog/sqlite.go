package catalog

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"
)

const piecesTable = `
	CREATE TABLE IF NOT EXISTS pieces (
		piecetype TEXT,
		piecename TEXT,
		content TEXT,
		catchall TEXT
	);`

const piecesIndex = `CREATE INDEX IF NOT EXISTS idx_pieces_type_name ON pieces(piecetype, piecename);`

// SQLite is a catalog backed by the pieces table of a SQLite database
type SQLite struct {
	db       *sql.DB
	filename string
	readOnly bool
	psql     squirrel.StatementBuilderType
}

// Open opens an existing catalog database read-only
func Open(filename string) (*SQLite, error) {
	db, err := sql.Open("sqlite", "file:"+filename+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", filename, err)
	}
	s := newSQLite(db, filename, true)
	if err := s.validateSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog %s: %w", filename, err)
	}
	return s, nil
}

// Create opens filename read-write, creating the database and schema if needed
func Create(filename string) (*SQLite, error) {
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return nil, fmt.Errorf("create catalog %s: %w", filename, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create catalog %s: %w", filename, err)
	}
	for _, stmt := range []string{piecesTable, piecesIndex} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create catalog schema: %w", err)
		}
	}
	return newSQLite(db, filename, false), nil
}

func newSQLite(db *sql.DB, filename string, readOnly bool) *SQLite {
	return &SQLite{
		db:       db,
		filename: filename,
		readOnly: readOnly,
		psql:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// validateSchema checks that the pieces table exists
func (s *SQLite) validateSchema() error {
	var name string
	err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='pieces'").Scan(&name)
	if err == sql.ErrNoRows {
		return fmt.Errorf("missing pieces table")
	}
	if err != nil {
		return fmt.Errorf("failed to validate schema: %w", err)
	}
	return nil
}

// Filename returns the path the catalog was opened from
func (s *SQLite) Filename() string {
	return s.filename
}

// Close closes the database
func (s *SQLite) Close() error {
	return s.db.Close()
}

// likePattern escapes LIKE wildcards in name and wraps it for the mode
func likePattern(name string, mode MatchMode) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(name)
	switch mode {
	case Prefix:
		return escaped + "%"
	case Suffix:
		return "%" + escaped
	default:
		return "%" + escaped + "%"
	}
}

// Lookup implements Catalog
func (s *SQLite) Lookup(t PieceType, name string, mode MatchMode) (Template, bool, error) {
	query := s.psql.Select("piecename", "content", "catchall").
		From("pieces").
		Where(squirrel.Eq{"piecetype": string(t)})
	if mode == Exact {
		query = query.Where(squirrel.Eq{"piecename": name})
	} else {
		query = query.Where(squirrel.Expr(`piecename LIKE ? ESCAPE '\'`, likePattern(name, mode)))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return Template{}, false, fmt.Errorf("build lookup query: %w", err)
	}
	rows, err := s.db.Query(stmt, args...)
	if err != nil {
		return Template{}, false, fmt.Errorf("lookup %s %q: %w", t, name, err)
	}
	defer rows.Close()

	var candidates []Template
	for rows.Next() {
		tpl := Template{Type: t}
		var token sql.NullString
		if err := rows.Scan(&tpl.Name, &tpl.Content, &token); err != nil {
			return Template{}, false, fmt.Errorf("scan %s %q: %w", t, name, err)
		}
		tpl.Token = token.String
		// LIKE is case-insensitive in SQLite; the catalog contract is not.
		if mode.Matches(tpl.Name, name) {
			candidates = append(candidates, tpl)
		}
	}
	if err := rows.Err(); err != nil {
		return Template{}, false, fmt.Errorf("lookup %s %q: %w", t, name, err)
	}
	tpl, ok := pick(candidates, name)
	return tpl, ok, nil
}

// All implements Enumerator
func (s *SQLite) All() ([]Template, error) {
	stmt, args, err := s.psql.Select("piecetype", "piecename", "content", "catchall").
		From("pieces").
		OrderBy("piecetype", "piecename").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list pieces: %w", err)
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		var tpl Template
		var typ string
		var token sql.NullString
		if err := rows.Scan(&typ, &tpl.Name, &tpl.Content, &token); err != nil {
			return nil, fmt.Errorf("scan piece: %w", err)
		}
		tpl.Type = PieceType(typ)
		tpl.Token = token.String
		out = append(out, tpl)
	}
	return out, rows.Err()
}

// Upsert creates a piece or updates the content and catchall of an existing one
func (s *SQLite) Upsert(tpl Template) error {
	if s.readOnly {
		return fmt.Errorf("catalog %s is read-only", s.filename)
	}
	var exists int
	err := s.db.QueryRow("SELECT COUNT(*) FROM pieces WHERE piecetype=? AND piecename=?", string(tpl.Type), tpl.Name).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check %s %q: %w", tpl.Type, tpl.Name, err)
	}

	var query squirrel.Sqlizer
	if exists == 0 {
		query = s.psql.Insert("pieces").
			Columns("piecetype", "piecename", "content", "catchall").
			Values(string(tpl.Type), tpl.Name, tpl.Content, tpl.Token)
	} else {
		query = s.psql.Update("pieces").
			Set("content", tpl.Content).
			Set("catchall", tpl.Token).
			Where(squirrel.Eq{"piecetype": string(tpl.Type), "piecename": tpl.Name})
	}
	stmt, args, err := query.ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(stmt, args...); err != nil {
		return fmt.Errorf("upsert %s %q: %w", tpl.Type, tpl.Name, err)
	}
	return nil
}
