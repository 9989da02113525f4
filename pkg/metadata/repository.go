// Package metadata persists Questions and their Insights in the
// transactional metadata store.
package metadata

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/getlens/lens/pkg/bi"
	"github.com/getlens/lens/pkg/config"
	"github.com/getlens/lens/pkg/logger"
)

const (
	createQuestionsTableSQL = `
CREATE TABLE IF NOT EXISTS questions (
    id BIGSERIAL PRIMARY KEY,
    text TEXT NOT NULL,
    user_id VARCHAR(255) NOT NULL,
    processed BOOLEAN NOT NULL DEFAULT FALSE,
    response TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_questions_user_id ON questions(user_id);
CREATE INDEX IF NOT EXISTS idx_questions_created_at ON questions(created_at);
`

	createInsightsTableSQL = `
CREATE TABLE IF NOT EXISTS insights (
    id BIGSERIAL PRIMARY KEY,
    question_id BIGINT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
    title VARCHAR(200) NOT NULL,
    description TEXT NOT NULL,
    category VARCHAR(50) NOT NULL,
    confidence_score DOUBLE PRECISION NOT NULL,
    data_sources TEXT NOT NULL,
    action_items TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_insights_question_id ON insights(question_id);
`
)

// Repository stores questions and insights.
type Repository struct {
	db     *sql.DB
	logger *slog.Logger
}

// New opens the metadata database and ensures the schema exists.
func New(cfg config.MetadataConfig) (*Repository, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to metadata database: %w", err)
	}

	r := &Repository{db: db, logger: logger.GetLogger()}
	if err := r.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return r, nil
}

// NewWithDB wraps an existing connection without schema setup. Used by tests.
func NewWithDB(db *sql.DB) *Repository {
	return &Repository{db: db, logger: logger.GetLogger()}
}

func (r *Repository) initSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createQuestionsTableSQL); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, createInsightsTableSQL); err != nil {
		return err
	}
	return nil
}

// Close releases the connection pool.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Create persists a new unprocessed question and returns it with its
// assigned id and timestamps.
func (r *Repository) Create(ctx context.Context, text, userID string) (*bi.Question, error) {
	now := time.Now().UTC()
	q := &bi.Question{
		Text:      text,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	const stmt = `
		INSERT INTO questions (text, user_id, processed, response, created_at, updated_at)
		VALUES ($1, $2, FALSE, '', $3, $3)
		RETURNING id`

	if err := r.db.QueryRowContext(ctx, stmt, text, userID, now).Scan(&q.ID); err != nil {
		return nil, fmt.Errorf("%w: %v", bi.ErrMetadataUnavailable, err)
	}

	return q, nil
}

// MarkProcessed flags a question as answered and records its summary.
func (r *Repository) MarkProcessed(ctx context.Context, id int64, summary string) error {
	const stmt = `
		UPDATE questions
		SET processed = TRUE, response = $2, updated_at = $3
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, stmt, id, summary, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: %v", bi.ErrMetadataUnavailable, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("question %d not found", id)
	}
	return nil
}

// Get returns a question by id, or (nil, nil) when absent.
func (r *Repository) Get(ctx context.Context, id int64) (*bi.Question, error) {
	const stmt = `
		SELECT id, text, user_id, processed, response, created_at, updated_at
		FROM questions
		WHERE id = $1`

	var q bi.Question
	err := r.db.QueryRowContext(ctx, stmt, id).Scan(
		&q.ID, &q.Text, &q.UserID, &q.Processed, &q.Response, &q.CreatedAt, &q.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bi.ErrMetadataUnavailable, err)
	}

	return &q, nil
}

// List returns a page of questions, newest first.
func (r *Repository) List(ctx context.Context, offset, limit int) ([]bi.Question, error) {
	if limit < 1 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const stmt = `
		SELECT id, text, user_id, processed, response, created_at, updated_at
		FROM questions
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, stmt, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bi.ErrMetadataUnavailable, err)
	}
	defer rows.Close()

	var questions []bi.Question
	for rows.Next() {
		var q bi.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.UserID, &q.Processed, &q.Response,
			&q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", bi.ErrMetadataUnavailable, err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", bi.ErrMetadataUnavailable, err)
	}

	return questions, nil
}

// StoreInsights persists all insights for a question in one transaction.
// Either every insight lands or none do.
func (r *Repository) StoreInsights(ctx context.Context, questionID int64, insights []bi.Insight) error {
	if len(insights) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", bi.ErrMetadataUnavailable, err)
	}
	defer tx.Rollback()

	const stmt = `
		INSERT INTO insights (question_id, title, description, category, confidence_score,
		                      data_sources, action_items, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	now := time.Now().UTC()
	for _, in := range insights {
		sources, err := json.Marshal(in.DataSources)
		if err != nil {
			return fmt.Errorf("failed to encode data sources: %w", err)
		}
		actions, err := json.Marshal(in.ActionItems)
		if err != nil {
			return fmt.Errorf("failed to encode action items: %w", err)
		}

		if _, err := tx.ExecContext(ctx, stmt, questionID, in.Title, in.Description,
			string(in.Category), in.ConfidenceScore, string(sources), string(actions), now); err != nil {
			return fmt.Errorf("%w: %v", bi.ErrMetadataUnavailable, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", bi.ErrMetadataUnavailable, err)
	}

	return nil
}

// InsightsFor returns the stored insights for a question, oldest first.
func (r *Repository) InsightsFor(ctx context.Context, questionID int64) ([]bi.Insight, error) {
	const stmt = `
		SELECT id, question_id, title, description, category, confidence_score,
		       data_sources, action_items, created_at
		FROM insights
		WHERE question_id = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, stmt, questionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bi.ErrMetadataUnavailable, err)
	}
	defer rows.Close()

	var insights []bi.Insight
	for rows.Next() {
		var in bi.Insight
		var category, sources, actions string
		if err := rows.Scan(&in.ID, &in.QuestionID, &in.Title, &in.Description, &category,
			&in.ConfidenceScore, &sources, &actions, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", bi.ErrMetadataUnavailable, err)
		}
		in.Category = bi.InsightCategory(category)
		if err := json.Unmarshal([]byte(sources), &in.DataSources); err != nil {
			r.logger.Warn("malformed data sources in insight row", "insight_id", in.ID, "error", err)
		}
		if err := json.Unmarshal([]byte(actions), &in.ActionItems); err != nil {
			r.logger.Warn("malformed action items in insight row", "insight_id", in.ID, "error", err)
		}
		insights = append(insights, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", bi.ErrMetadataUnavailable, err)
	}

	return insights, nil
}
