package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"lingua-voice/pkg/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	fixedID  = uuid.MustParse("7f4c1f5e-2b8a-4d3c-9e61-0a1b2c3d4e5f")
	fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

func newTestLedger(t *testing.T) (*Ledger, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	l := NewLedger(db, zap.NewNop())
	l.newID = func() uuid.UUID { return fixedID }
	l.now = func() time.Time { return fixedNow }
	return l, mock
}

func TestLedger_StartRun(t *testing.T) {
	l, mock := newTestLedger(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO generation_runs")).
		WithArgs(fixedID, fixedNow, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := l.StartRun(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, fixedID.String(), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_StartRunError(t *testing.T) {
	l, mock := newTestLedger(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO generation_runs")).
		WillReturnError(errors.New("connection refused"))

	_, err := l.StartRun(context.Background(), 2)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_RecordUnit(t *testing.T) {
	l, mock := newTestLedger(t)

	unit := models.TextUnit{Text: "I'm going to sleep.", GroupID: "1", SubGroupID: "1-1"}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO generation_units")).
		WithArgs(fixedID, "abc123def456", unit.Text, "1", "1-1", "failed", "синтез не удался", fixedNow).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := l.RecordUnit(context.Background(), fixedID.String(), unit, "abc123def456", models.OutcomeFailed, errors.New("синтез не удался"))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_RecordUnitInvalidRun(t *testing.T) {
	l, mock := newTestLedger(t)

	err := l.RecordUnit(context.Background(), "not-a-uuid", models.TextUnit{Text: "x"}, "k", models.OutcomeGenerated, nil)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_FinishRun(t *testing.T) {
	l, mock := newTestLedger(t)

	result := models.BatchRunResult{Attempted: 2, Succeeded: 2, CacheHits: 1, Generated: 1}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE generation_runs")).
		WithArgs(fixedID, fixedNow, 2, 2, 1, 1, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, l.FinishRun(context.Background(), fixedID.String(), result))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_FinishRunNotFound(t *testing.T) {
	l, mock := newTestLedger(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE generation_runs")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := l.FinishRun(context.Background(), fixedID.String(), models.BatchRunResult{})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNopRecorder(t *testing.T) {
	var r RunRecorder = NopRecorder{}

	id, err := r.StartRun(context.Background(), 10)
	assert.NoError(t, err)
	assert.Empty(t, id)
	assert.NoError(t, r.RecordUnit(context.Background(), id, models.TextUnit{}, "", models.OutcomeGenerated, nil))
	assert.NoError(t, r.FinishRun(context.Background(), id, models.BatchRunResult{}))
}
