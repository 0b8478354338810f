package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/skinkeeper/internal/dbx"
	"github.com/dmitrijs2005/skinkeeper/internal/models"
	refreshtokensrepo "github.com/dmitrijs2005/skinkeeper/internal/server/repositories/refreshtokens"
	usersrepo "github.com/dmitrijs2005/skinkeeper/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type fakeUsersRepo struct {
	createErr error
	created   *models.User

	getOut *models.User
	getErr error

	lockErr error

	updateErr error
	updated   []*models.User
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	cp := *u
	cp.ID = "u1"
	f.created = &cp
	return &cp, nil
}

func (f *fakeUsersRepo) GetByID(context.Context, string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	cp := *f.getOut
	return &cp, nil
}

func (f *fakeUsersRepo) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	return f.GetByID(ctx, login)
}

func (f *fakeUsersRepo) GetForUpdate(ctx context.Context, id string) (*models.User, error) {
	if f.lockErr != nil {
		return nil, f.lockErr
	}
	return f.GetByID(ctx, id)
}

func (f *fakeUsersRepo) UpdateProfile(_ context.Context, u *models.User) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	cp := *u
	f.updated = append(f.updated, &cp)
	// Later reads see the write.
	f.getOut = &cp
	return nil
}

type fakeRefreshRepo struct {
	createErr error
	created   []string

	findOut *models.RefreshToken
	findErr error

	consumeErr error
	consumed   []string

	delErr  error
	deleted []string

	purged   int64
	purgeErr error
}

func (f *fakeRefreshRepo) Create(_ context.Context, userID, token string, _ time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, userID+":"+token)
	return nil
}

func (f *fakeRefreshRepo) Find(context.Context, string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Consume(_ context.Context, token string) (*models.RefreshToken, error) {
	if f.consumeErr != nil {
		return nil, f.consumeErr
	}
	f.consumed = append(f.consumed, token)
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(_ context.Context, token string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, token)
	return nil
}

func (f *fakeRefreshRepo) DeleteExpired(context.Context, time.Time) (int64, error) {
	return f.purged, f.purgeErr
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error        { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokensrepo.Repository { return m.r }
