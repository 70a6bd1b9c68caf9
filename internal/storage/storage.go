package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"knot/internal/task"
)

type ClusterNotFoundError struct {
	Name string
}

func (e ClusterNotFoundError) Error() string {
	return fmt.Sprintf("cluster not found: %s", e.Name)
}

// Store keeps one row per cluster, each holding the cluster's JSON
// document. The document format comes from task.Cluster's JSON methods.
type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	dsn := sqliteDSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS clusters (
	name TEXT PRIMARY KEY,
	doc TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`
	_, err := s.db.Exec(ddl)
	return err
}

func (s *Store) Load(name string) (*task.Cluster, error) {
	var doc string
	err := s.db.QueryRow(`SELECT doc FROM clusters WHERE name = ?;`, name).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ClusterNotFoundError{Name: name}
	}
	if err != nil {
		return nil, err
	}
	c := task.NewCluster(name)
	if err := json.Unmarshal([]byte(doc), c); err != nil {
		return nil, err
	}
	// The row key names the cluster, whatever the document says.
	c.Name = name
	return c, nil
}

func (s *Store) Save(c *task.Cluster) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(`INSERT INTO clusters (name, doc, updated_at) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at;`,
		c.Name, string(doc), now)
	return err
}

// Create opens an existing cluster or starts an empty one under the name.
func (s *Store) Create(name string) (*task.Cluster, error) {
	c, err := s.Load(name)
	if err == nil {
		return c, nil
	}
	var notFound ClusterNotFoundError
	if !errors.As(err, &notFound) {
		return nil, err
	}
	c = task.NewCluster(name)
	if err := s.Save(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) Exists(name string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM clusters WHERE name = ?;`, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) List() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM clusters ORDER BY name;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
