// Copyright 2025 Lumenframe Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package lexical

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/lumenframe/cliplens/core"
)

const schema = `
CREATE VIRTUAL TABLE IF NOT EXISTS clips_fts USING fts5(
    clip_id UNINDEXED,
    file_name,
    summary,
    transcript_preview,
    tags,
    category
);
`

// SQLiteIndex implements Index on an FTS5 virtual table.
type SQLiteIndex struct {
	db *sql.DB
}

var _ Index = (*SQLiteIndex)(nil)

// OpenSQLiteIndex opens (or creates) a full-text index at dbPath.
// Pass ":memory:" for an ephemeral index.
func OpenSQLiteIndex(dbPath string) (*SQLiteIndex, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open index database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create index schema: %w", err)
	}

	return &SQLiteIndex{db: db}, nil
}

// Close closes the underlying database.
func (x *SQLiteIndex) Close() error {
	return x.db.Close()
}

// Put indexes clip documents, replacing any prior entry for the same id.
func (x *SQLiteIndex) Put(ctx context.Context, docs ...*core.ClipDocument) error {
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, doc := range docs {
		if err := core.ValidateClipDocument(doc); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM clips_fts WHERE clip_id = ?", int64(doc.Id)); err != nil {
			return fmt.Errorf("failed to clear prior index entry: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO clips_fts(clip_id, file_name, summary, transcript_preview, tags, category)
			VALUES (?, ?, ?, ?, ?, ?)`,
			int64(doc.Id),
			doc.FileName,
			doc.Summary,
			doc.TranscriptPreview,
			strings.Join(doc.Tags, " "),
			doc.Category,
		); err != nil {
			return fmt.Errorf("failed to index clip: %w", err)
		}
	}

	return tx.Commit()
}

// Delete removes a clip from the index.
func (x *SQLiteIndex) Delete(ctx context.Context, id core.ID) error {
	if _, err := x.db.ExecContext(ctx,
		"DELETE FROM clips_fts WHERE clip_id = ?", int64(id)); err != nil {
		return fmt.Errorf("failed to delete index entry: %w", err)
	}
	return nil
}

// Search ranks clips matching the query across all indexed fields.
func (x *SQLiteIndex) Search(ctx context.Context, query string, limit int) ([]ScoredClip, error) {
	return x.search(ctx, query, limit, "")
}

// SearchTranscripts ranks clips whose transcript preview matches the query.
func (x *SQLiteIndex) SearchTranscripts(ctx context.Context, query string, limit int) ([]ScoredClip, error) {
	return x.search(ctx, query, limit, "transcript_preview")
}

func (x *SQLiteIndex) search(ctx context.Context, query string, limit int, column string) ([]ScoredClip, error) {
	sanitized := sanitizeFTSQuery(query)
	if sanitized == "" {
		return nil, ErrEmptyQuery
	}
	if column != "" {
		// FTS5 column filter restricts the match to one field
		sanitized = column + " : (" + sanitized + ")"
	}

	rows, err := x.db.QueryContext(ctx, `
		SELECT clip_id, bm25(clips_fts) as score
		FROM clips_fts
		WHERE clips_fts MATCH ?
		ORDER BY score
		LIMIT ?`, sanitized, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to execute full-text search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []ScoredClip
	for rows.Next() {
		var clipID int64
		var score float64
		if err := rows.Scan(&clipID, &score); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		// bm25() reports lower-is-better; negate so callers see higher-is-better
		results = append(results, ScoredClip{
			ClipID: core.ID(clipID),
			Score:  -score,
		})
	}
	return results, rows.Err()
}

// FTS5 operator pattern for escaping Boolean operators
var ftsOperatorPattern = regexp.MustCompile(`\b(AND|OR|NOT|NEAR)\b`)

// sanitizeFTSQuery quotes each term so user input cannot inject FTS5 query
// syntax. Terms that survive are joined as an implicit conjunction.
func sanitizeFTSQuery(query string) string {
	query = ftsOperatorPattern.ReplaceAllStringFunc(query, strings.ToLower)

	terms := strings.Fields(query)
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.ReplaceAll(term, `"`, "")
		term = strings.Trim(term, `*():^-`)
		if term == "" {
			continue
		}
		quoted = append(quoted, `"`+term+`"`)
	}
	return strings.Join(quoted, " ")
}
