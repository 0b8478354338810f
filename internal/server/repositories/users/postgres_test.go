package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/skinkeeper/internal/common"
	"github.com/dmitrijs2005/skinkeeper/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{
	"id", "username", "email", "password_hash", "profile_completed",
	"gender", "age", "skin_type", "skin_concerns", "allergies", "preferences", "extra",
	"created_at", "updated_at",
}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const insertQ = `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*username,\s*email,\s*password_hash,\s*created_at,\s*updated_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)$`

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQ).
		WithArgs(sqlmock.AnyArg(), "alice", "alice@example.com", "$argon2id$hash", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := repo.Create(context.Background(), &models.User{
		Username: "alice", Email: "alice@example.com", PasswordHash: "$argon2id$hash",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
	assert.NotNil(t, got.SkinConcerns)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQ).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key"})

	_, err := repo.Create(context.Background(), &models.User{Username: "alice", Email: "a@b.c"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQ).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{Username: "alice", Email: "a@b.c"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(columns).AddRow(
		"u1", "alice", "alice@example.com", "hash", true,
		"female", int64(28), "combination",
		[]byte(`["acne","redness"]`), []byte(`["fragrance"]`), []byte(`["vegan"]`), []byte(`{"routine":"am"}`),
		created, created.Add(time.Hour),
	)
	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("u1").
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "alice", got.Username)
	assert.True(t, got.ProfileCompleted)
	assert.Equal(t, models.GenderFemale, got.Gender)
	assert.Equal(t, 28, got.Age)
	assert.Equal(t, models.SkinCombination, got.SkinType)
	assert.Equal(t, []models.Concern{models.ConcernAcne, models.ConcernRedness}, got.SkinConcerns)
	assert.Equal(t, []string{"fragrance"}, got.Allergies)
	assert.Equal(t, []models.Preference{models.PrefVegan}, got.Preferences)
	assert.Equal(t, map[string]string{"routine": "am"}, got.Extra)
	assert.Equal(t, created.Add(time.Hour), got.UpdatedAt)
}

func TestGetByID_NullProfile(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(columns).AddRow(
		"u2", "bob", "bob@example.com", "hash", false,
		nil, nil, nil,
		[]byte(`[]`), []byte(`[]`), []byte(`[]`), []byte(`{}`),
		now, now,
	)
	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+id`).WithArgs("u2").WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "u2")
	require.NoError(t, err)

	assert.Empty(t, got.Gender)
	assert.Zero(t, got.Age)
	assert.Empty(t, got.SkinType)
	assert.NotNil(t, got.SkinConcerns)
	assert.Empty(t, got.SkinConcerns)
	assert.NotNil(t, got.Allergies)
	assert.Nil(t, got.Extra)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+id`).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByID_MalformedIDIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	malformed := &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "missing-id"`}
	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`).WithArgs("missing-id").WillReturnError(malformed)
	mock.ExpectQuery(`FOR\s+UPDATE$`).WithArgs("missing-id").WillReturnError(malformed)

	_, err := repo.GetByID(context.Background(), "missing-id")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.GetForUpdate(context.Background(), "missing-id")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+id`).WillReturnError(errors.New("conn reset"))

	_, err := repo.GetByID(context.Background(), "u1")
	require.Error(t, err)
	assert.Regexp(t, `db error: .*conn reset`, err.Error())
}

func TestGetByID_CorruptSet(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(columns).AddRow(
		"u1", "alice", "a@b.c", "hash", false,
		nil, nil, nil,
		[]byte(`{not json`), []byte(`[]`), []byte(`[]`), []byte(`{}`),
		now, now,
	)
	mock.ExpectQuery(`FROM\s+users`).WillReturnRows(rows)

	_, err := repo.GetByID(context.Background(), "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode skin_concerns")
}

func TestGetForUpdate_LocksRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(columns).AddRow(
		"u1", "alice", "a@b.c", "hash", false,
		nil, nil, nil, []byte(`[]`), []byte(`[]`), []byte(`[]`), []byte(`{}`), now, now,
	)
	mock.ExpectQuery(`(?s)FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s+FOR\s+UPDATE$`).
		WithArgs("u1").
		WillReturnRows(rows)

	got, err := repo.GetForUpdate(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByLogin_MatchesUsernameOrEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(columns).AddRow(
		"u1", "alice", "alice@example.com", "hash", false,
		nil, nil, nil, []byte(`[]`), []byte(`[]`), []byte(`[]`), []byte(`{}`), now, now,
	)
	mock.ExpectQuery(`(?s)WHERE\s+username\s*=\s*\$1\s+OR\s+email\s*=\s*\$2$`).
		WithArgs("Alice@Example.com", "alice@example.com").
		WillReturnRows(rows)

	got, err := repo.GetByLogin(context.Background(), "Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
}

const updateQ = `(?s)^UPDATE\s+users\s+SET.*profile_completed\s*=\s*\$2.*updated_at\s*=\s*\$10\s+WHERE\s+id\s*=\s*\$1$`

func TestUpdateProfile_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	updated := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	u := &models.User{
		ID:               "u1",
		ProfileCompleted: true,
		Profile: models.Profile{
			Gender:       models.GenderMale,
			Age:          30,
			SkinType:     models.SkinOily,
			SkinConcerns: []models.Concern{models.ConcernAcne},
			Allergies:    []string{},
			Preferences:  []models.Preference{},
		},
		UpdatedAt: updated,
	}

	mock.ExpectExec(updateQ).
		WithArgs("u1", true, "male", int64(30), "oily", `["acne"]`, `[]`, `[]`, `{}`, updated).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateProfile(context.Background(), u))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfile_ClearedFieldsAreNull(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := &models.User{ID: "u1", Profile: models.Profile{Extra: map[string]string{"k": "v"}}}

	mock.ExpectExec(updateQ).
		WithArgs("u1", false, nil, nil, nil, `[]`, `[]`, `[]`, `{"k":"v"}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateProfile(context.Background(), u))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfile_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(updateQ).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateProfile(context.Background(), &models.User{ID: "ghost"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdateProfile_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(updateQ).WillReturnError(errors.New("deadlock"))

	err := repo.UpdateProfile(context.Background(), &models.User{ID: "u1"})
	require.Error(t, err)
	assert.Regexp(t, `db error: .*deadlock`, err.Error())
}
