package metadata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getlens/lens/pkg/bi"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO questions`).
		WithArgs("show me sales", "user-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	q, err := repo.Create(context.Background(), "show me sales", "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), q.ID)
	assert.Equal(t, "show me sales", q.Text)
	assert.False(t, q.Processed)
	assert.False(t, q.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateFailure(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO questions`).
		WillReturnError(errors.New("connection refused"))

	_, err := repo.Create(context.Background(), "text ok", "")
	assert.ErrorIs(t, err, bi.ErrMetadataUnavailable)
}

func TestMarkProcessed(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE questions`).
		WithArgs(int64(42), "Revenue up", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.MarkProcessed(context.Background(), 42, "Revenue up"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkProcessedMissingRow(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE questions`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkProcessed(context.Background(), 99, "x")
	assert.Error(t, err)
}

func TestGetNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT id, text, user_id`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	q, err := repo.Get(context.Background(), 7)
	assert.NoError(t, err)
	assert.Nil(t, q)
}

func TestList(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "text", "user_id", "processed", "response", "created_at", "updated_at"}).
		AddRow(int64(2), "newer", "u", true, "done", now, now).
		AddRow(int64(1), "older", "u", true, "done", now.Add(-time.Hour), now.Add(-time.Hour))

	mock.ExpectQuery(`SELECT id, text, user_id`).
		WithArgs(20, 0).
		WillReturnRows(rows)

	questions, err := repo.List(context.Background(), 0, 20)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "newer", questions[0].Text)
}

func TestStoreInsightsTransactional(t *testing.T) {
	repo, mock := newMockRepo(t)

	insights := []bi.Insight{
		{Title: "A", Description: "d", Category: bi.CategoryTrend, ConfidenceScore: 0.8,
			DataSources: []bi.DataSource{bi.SourceSales}, ActionItems: []string{"act"}},
		{Title: "B", Description: "d", Category: bi.CategorySummary, ConfidenceScore: 0.5},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO insights`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO insights`).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.StoreInsights(context.Background(), 42, insights))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreInsightsRollsBackOnFailure(t *testing.T) {
	repo, mock := newMockRepo(t)

	insights := []bi.Insight{
		{Title: "A", Description: "d", Category: bi.CategoryTrend},
		{Title: "B", Description: "d", Category: bi.CategoryTrend},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO insights`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO insights`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.StoreInsights(context.Background(), 42, insights)
	assert.ErrorIs(t, err, bi.ErrMetadataUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreInsightsEmpty(t *testing.T) {
	repo, mock := newMockRepo(t)
	assert.NoError(t, repo.StoreInsights(context.Background(), 42, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsightsFor(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "question_id", "title", "description", "category",
		"confidence_score", "data_sources", "action_items", "created_at"}).
		AddRow(int64(1), int64(42), "A", "d", "trend", 0.8,
			`["sales_data"]`, `["act"]`, time.Now())

	mock.ExpectQuery(`SELECT id, question_id, title`).
		WithArgs(int64(42)).
		WillReturnRows(rows)

	list, err := repo.InsightsFor(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, bi.CategoryTrend, list[0].Category)
	assert.Equal(t, []bi.DataSource{bi.SourceSales}, list[0].DataSources)
	assert.Equal(t, []string{"act"}, list[0].ActionItems)
}
