package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/skinkeeper/internal/common"
	"github.com/dmitrijs2005/skinkeeper/internal/dbx"
	"github.com/dmitrijs2005/skinkeeper/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation      = "23505"
	pgInvalidTextRepresent = "22P02"
)

const userColumns = `id, username, email, password_hash, profile_completed,
		gender, age, skin_type, skin_concerns, allergies, preferences, extra,
		created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts user. An empty ID is filled with a new UUID; CreatedAt and
// UpdatedAt default to now.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.UpdatedAt = user.CreatedAt
	user.EnsureSets()

	query := `INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = $2`
	return scanUser(r.db.QueryRowContext(ctx, query, login, models.NormalizeEmail(login)))
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	user.EnsureSets()
	concerns, err := json.Marshal(user.SkinConcerns)
	if err != nil {
		return fmt.Errorf("encode skin concerns: %w", err)
	}
	allergies, err := json.Marshal(user.Allergies)
	if err != nil {
		return fmt.Errorf("encode allergies: %w", err)
	}
	prefs, err := json.Marshal(user.Preferences)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	extra := user.Extra
	if extra == nil {
		extra = map[string]string{}
	}
	extraJSON, err := json.Marshal(extra)
	if err != nil {
		return fmt.Errorf("encode extra: %w", err)
	}

	query := `UPDATE users SET
			profile_completed = $2,
			gender = $3,
			age = $4,
			skin_type = $5,
			skin_concerns = $6,
			allergies = $7,
			preferences = $8,
			extra = $9,
			updated_at = $10
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.ProfileCompleted,
		nullString(string(user.Gender)),
		nullInt(user.Age),
		nullString(string(user.SkinType)),
		string(concerns),
		string(allergies),
		string(prefs),
		string(extraJSON),
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		u                                  models.User
		gender, skinType                   sql.NullString
		age                                sql.NullInt64
		concerns, allergies, prefs, extras []byte
	)

	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.ProfileCompleted,
		&gender, &age, &skinType, &concerns, &allergies, &prefs, &extras,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		// An id that is not a uuid cannot match any row.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresent {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	u.Gender = models.Gender(gender.String)
	u.SkinType = models.SkinType(skinType.String)
	u.Age = int(age.Int64)

	if err := decodeJSON(concerns, &u.SkinConcerns); err != nil {
		return nil, fmt.Errorf("decode skin_concerns: %w", err)
	}
	if err := decodeJSON(allergies, &u.Allergies); err != nil {
		return nil, fmt.Errorf("decode allergies: %w", err)
	}
	if err := decodeJSON(prefs, &u.Preferences); err != nil {
		return nil, fmt.Errorf("decode preferences: %w", err)
	}
	if err := decodeJSON(extras, &u.Extra); err != nil {
		return nil, fmt.Errorf("decode extra: %w", err)
	}
	if len(u.Extra) == 0 {
		u.Extra = nil
	}
	u.EnsureSets()

	return &u, nil
}

func decodeJSON(b []byte, dst any) error {
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, dst)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(v int) any {
	if v == 0 {
		return nil
	}
	return int64(v)
}
