package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/helix-agent/backend/internal/storage/models"
	"github.com/helix-agent/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))
	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS policy_documents (
		id TEXT PRIMARY KEY,
		name TEXT UNIQUE NOT NULL,
		source_type TEXT NOT NULL,
		pages INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS policy_chunks (
		id TEXT PRIMARY KEY,
		doc_id TEXT NOT NULL,
		page INTEGER NOT NULL,
		text TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (doc_id) REFERENCES policy_documents(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_chunks_doc ON policy_chunks(doc_id);

	CREATE TABLE IF NOT EXISTS query_history (
		id TEXT PRIMARY KEY,
		query_text TEXT NOT NULL,
		response TEXT,
		intent TEXT,
		confidence_score REAL,
		confidence_level TEXT,
		employee_found INTEGER DEFAULT 0,
		policy_results INTEGER DEFAULT 0,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_query_created ON query_history(created_at);

	CREATE TABLE IF NOT EXISTS query_citations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query_id TEXT NOT NULL,
		citation TEXT NOT NULL,
		FOREIGN KEY (query_id) REFERENCES query_history(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_citations_query ON query_citations(query_id);

	CREATE TABLE IF NOT EXISTS feedback (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query_id TEXT NOT NULL,
		helpful INTEGER NOT NULL,
		comment TEXT,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (query_id) REFERENCES query_history(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_feedback_query ON feedback(query_id);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertPolicyDocument(doc *models.PolicyDocument) error {
	query := `
		INSERT INTO policy_documents (id, name, source_type, pages, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			source_type = excluded.source_type,
			pages = excluded.pages
	`

	_, err := c.db.Exec(query, doc.ID, doc.Name, doc.SourceType, doc.Pages, doc.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert policy document: %w", err)
	}

	logger.Debug("Policy document recorded", zap.String("doc_id", doc.ID), zap.String("name", doc.Name))
	return nil
}

func (c *Client) InsertPolicyChunk(chunkID, docID string, page int, text string) error {
	query := `INSERT INTO policy_chunks (id, doc_id, page, text, created_at) VALUES (?, ?, ?, ?, ?)`

	_, err := c.db.Exec(query, chunkID, docID, page, text, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to insert policy chunk: %w", err)
	}
	return nil
}

func (c *Client) InsertQueryRecord(record *models.QueryRecord) error {
	query := `
		INSERT INTO query_history (id, query_text, response, intent, confidence_score,
			confidence_level, employee_found, policy_results, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	employeeFound := 0
	if record.EmployeeFound {
		employeeFound = 1
	}

	_, err := c.db.Exec(
		query,
		record.ID,
		record.QueryText,
		record.Response,
		record.Intent,
		record.ConfidenceScore,
		record.ConfidenceLevel,
		employeeFound,
		record.PolicyResults,
		record.LatencyMS,
		record.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert query record: %w", err)
	}

	logger.Debug("Query recorded",
		zap.String("query_id", record.ID),
		zap.Float64("confidence", record.ConfidenceScore),
	)
	return nil
}

func (c *Client) InsertQueryCitation(queryID, citation string) error {
	query := `INSERT INTO query_citations (query_id, citation) VALUES (?, ?)`

	if _, err := c.db.Exec(query, queryID, citation); err != nil {
		return fmt.Errorf("failed to insert query citation: %w", err)
	}
	return nil
}

func (c *Client) GetQueryHistory(limit int) ([]models.QueryRecord, error) {
	query := `
		SELECT id, query_text, response, intent, confidence_score, confidence_level,
			employee_found, policy_results, latency_ms, created_at
		FROM query_history
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get query history: %w", err)
	}
	defer rows.Close()

	var records []models.QueryRecord
	for rows.Next() {
		var r models.QueryRecord
		var employeeFound int
		var createdAt int64

		err := rows.Scan(&r.ID, &r.QueryText, &r.Response, &r.Intent, &r.ConfidenceScore,
			&r.ConfidenceLevel, &employeeFound, &r.PolicyResults, &r.LatencyMS, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.EmployeeFound = employeeFound == 1
		r.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, r)
	}

	return records, rows.Err()
}

func (c *Client) StoreFeedback(feedback *models.Feedback) error {
	query := `INSERT INTO feedback (query_id, helpful, comment, created_at) VALUES (?, ?, ?, ?)`

	helpful := 0
	if feedback.Helpful {
		helpful = 1
	}

	_, err := c.db.Exec(query, feedback.QueryID, helpful, feedback.Comment, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to store feedback: %w", err)
	}

	logger.Info("Feedback stored",
		zap.String("query_id", feedback.QueryID),
		zap.Bool("helpful", feedback.Helpful),
	)
	return nil
}
