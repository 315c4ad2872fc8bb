package datasource

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/linktree/pkg/debug"
	"github.com/vanderheijden86/linktree/pkg/metrics"
	"github.com/vanderheijden86/linktree/pkg/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS issues (
	key                TEXT PRIMARY KEY,
	summary            TEXT NOT NULL DEFAULT '',
	project_key        TEXT,
	project_name       TEXT,
	status_name        TEXT,
	status_description TEXT
);
CREATE TABLE IF NOT EXISTS issue_links (
	issue_key  TEXT NOT NULL,
	position   INTEGER NOT NULL,
	link_name  TEXT,
	target_key TEXT NOT NULL,
	PRIMARY KEY (issue_key, position)
);
`

// SQLiteReader provides read access to an issue snapshot database
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a SQLite snapshot for reading
func NewSQLiteReader(source DataSource) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	return &SQLiteReader{
		db:   db,
		path: source.Path,
	}, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadIssues reads all issues in insertion order, links in position order.
func (r *SQLiteReader) LoadIssues() ([]model.Issue, error) {
	defer metrics.Timer(metrics.IssueLoad)()

	rows, err := r.db.Query(`
		SELECT key, summary, project_key, project_name, status_name, status_description
		FROM issues
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var issues []model.Issue
	index := make(map[string]int)
	for rows.Next() {
		var issue model.Issue
		var projectKey, projectName, statusName, statusDesc sql.NullString

		if err := rows.Scan(&issue.Key, &issue.Summary, &projectKey, &projectName, &statusName, &statusDesc); err != nil {
			debug.Log("datasource: skipping unreadable issue row: %v", err)
			continue
		}
		if projectKey.Valid {
			issue.Project = &model.Project{Key: projectKey.String, Name: projectName.String}
		}
		if statusName.Valid {
			issue.Status = &model.Status{Name: statusName.String, Description: statusDesc.String}
		}

		index[issue.Key] = len(issues)
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating issues: %w", err)
	}

	if err := r.loadLinks(issues, index); err != nil {
		return nil, err
	}
	return issues, nil
}

func (r *SQLiteReader) loadLinks(issues []model.Issue, index map[string]int) error {
	rows, err := r.db.Query(`
		SELECT issue_key, link_name, target_key
		FROM issue_links
		ORDER BY issue_key, position
	`)
	if err != nil {
		return fmt.Errorf("query links failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var issueKey, targetKey string
		var linkName sql.NullString
		if err := rows.Scan(&issueKey, &linkName, &targetKey); err != nil {
			continue
		}
		i, ok := index[issueKey]
		if !ok {
			continue
		}
		issues[i].Links = append(issues[i].Links, model.Link{Name: linkName.String, TargetKey: targetKey})
	}
	return rows.Err()
}

// CountIssues returns the number of issues in the snapshot
func (r *SQLiteReader) CountIssues() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM issues").Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// WriteSQLite writes issues into a fresh snapshot at path. The database is
// built next to the target and renamed into place.
func WriteSQLite(path string, issues []model.Issue) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	tmp := path + ".tmp"
	_ = os.Remove(tmp)

	db, err := sql.Open("sqlite", "file:"+tmp)
	if err != nil {
		return fmt.Errorf("cannot open database: %w", err)
	}

	if err := writeIssues(db, issues); err != nil {
		db.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := db.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("closing database: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

func writeIssues(db *sql.DB, issues []model.Issue) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	issueStmt, err := tx.Prepare(`INSERT OR REPLACE INTO issues
		(key, summary, project_key, project_name, status_name, status_description)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare issues: %w", err)
	}
	defer issueStmt.Close()

	linkStmt, err := tx.Prepare(`INSERT OR REPLACE INTO issue_links
		(issue_key, position, link_name, target_key) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare links: %w", err)
	}
	defer linkStmt.Close()

	for _, issue := range issues {
		var projectKey, projectName, statusName, statusDesc sql.NullString
		if issue.Project != nil {
			projectKey = sql.NullString{String: issue.Project.Key, Valid: true}
			projectName = sql.NullString{String: issue.Project.Name, Valid: true}
		}
		if issue.Status != nil {
			statusName = sql.NullString{String: issue.Status.Name, Valid: true}
			statusDesc = sql.NullString{String: issue.Status.Description, Valid: true}
		}

		if _, err := issueStmt.Exec(issue.Key, issue.Summary, projectKey, projectName, statusName, statusDesc); err != nil {
			return fmt.Errorf("insert %s: %w", issue.Key, err)
		}
		for pos, link := range issue.Links {
			name := sql.NullString{String: link.Name, Valid: link.Name != ""}
			if _, err := linkStmt.Exec(issue.Key, pos, name, link.TargetKey); err != nil {
				return fmt.Errorf("insert link %s#%d: %w", issue.Key, pos, err)
			}
		}
	}

	return tx.Commit()
}
