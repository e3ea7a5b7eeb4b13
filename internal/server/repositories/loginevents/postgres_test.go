package loginevents

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/ccxpauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

const insertEvent = `(?s)^INSERT\s+INTO\s+login_events\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7\)$`
const insertAttempt = `(?s)^INSERT\s+INTO\s+login_attempts\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3\)$`

func testEvent() *models.LoginEvent {
	return &models.LoginEvent{
		ID:          "0b6c1f4e-9f0e-4bb5-8a3e-2f0f7d3c1a11",
		Operation:   "signin",
		Outcome:     "Success",
		SubjectHash: "ab12",
		Duration:    1500 * time.Millisecond,
		Attempts:    []models.LoginAttempt{{Number: 1, Outcome: "CaptchaMismatch"}, {Number: 2, Outcome: "Success"}},
		CreatedAt:   time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestCreateEvent_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	e := testEvent()
	mock.ExpectExec(insertEvent).
		WithArgs(e.ID, "signin", "Success", "ab12", 2, int64(1500), e.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CreateEvent(context.Background(), e))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEvent_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertEvent).WillReturnError(errors.New("db down"))

	err := repo.CreateEvent(context.Background(), testEvent())
	require.Error(t, err)
	assert.Regexp(t, `error performing sql request: .*db down`, err.Error())
}

func TestCreateAttempts_OneRowPerCycle(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	e := testEvent()
	mock.ExpectExec(insertAttempt).WithArgs(e.ID, 1, "CaptchaMismatch").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertAttempt).WithArgs(e.ID, 2, "Success").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CreateAttempts(context.Background(), e.ID, e.Attempts))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAttempts_StopsOnError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertAttempt).WillReturnError(errors.New("constraint"))

	err := repo.CreateAttempts(context.Background(), "id", testEvent().Attempts)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
