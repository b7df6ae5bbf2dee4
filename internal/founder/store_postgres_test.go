package founder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var founderCols = []string{
	"id", "name", "normalized_name", "email", "linkedin_url", "title", "bio", "location",
	"education", "experience", "skills", "twitter", "github", "website", "source", "stage",
	"created_at", "updated_at",
}

func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })
	return NewPostgresStore(mock), mock
}

func founderRow(mock pgxmock.PgxPoolIface, id, name string) *pgxmock.Rows {
	now := time.Now().UTC()
	return mock.NewRows(founderCols).AddRow(
		id, name, "jane doe", "jane@x.com", "linkedin.com/in/janedoe", "", "", "",
		"", "", []string{"Go"}, "", "", "", SourceManual, DefaultStage,
		now, now,
	)
}

func TestPostgresStore_FindByLinkedIn_Found(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`strpos\(lower\(linkedin_url\), lower\(\$1\)\) > 0`).
		WithArgs("janedoe").
		WillReturnRows(founderRow(mock, "f-1", "Jane Doe"))

	got, err := s.FindByLinkedIn(context.Background(), "janedoe")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "f-1", got.ID)
	assert.Equal(t, []string{"Go"}, got.Skills)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindByLinkedIn_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM founders`).
		WithArgs("nobody").
		WillReturnError(pgx.ErrNoRows)

	got, err := s.FindByLinkedIn(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindByLinkedIn_EmptySkipsQuery(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	got, err := s.FindByLinkedIn(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindByEmail_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`WHERE email = lower\(\$1\)`).
		WithArgs("jane@x.com").
		WillReturnError(errors.New("connection refused"))

	_, err := s.FindByEmail(context.Background(), "jane@x.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "find by email")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindByNameToken(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	now := time.Now().UTC()
	rows := mock.NewRows(founderCols).
		AddRow("f-1", "Jon Smith", "jon smith", "", "", "", "", "", "", "", []string{}, "", "", "", SourceManual, DefaultStage, now, now).
		AddRow("f-2", "Jo Smith", "jo smith", "", "", "", "", "", "", "", []string{}, "", "", "", SourceManual, DefaultStage, now, now)
	mock.ExpectQuery(`strpos\(normalized_name, \$1\) > 0`).
		WithArgs("smith").
		WillReturnRows(rows)

	got, err := s.FindByNameToken(context.Background(), "smith")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "f-1", got[0].ID)
	assert.Equal(t, "f-2", got[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Create(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	f := NewFounder(Record{Name: "Amy Lee", Email: "amy@x.com"}, SourceCSVImport)
	now := time.Now().UTC()
	mock.ExpectQuery(`INSERT INTO founders`).
		WithArgs(f.ID, "Amy Lee", "amy lee", "amy@x.com", "", "", "", "",
			"", "", []string{}, "", "", "", SourceCSVImport, DefaultStage).
		WillReturnRows(mock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	require.NoError(t, s.Create(context.Background(), f))
	assert.Equal(t, now, f.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Update_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE founders SET`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.Update(context.Background(), &Founder{ID: "missing", Name: "Ghost"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS founders`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
