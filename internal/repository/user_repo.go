package repository

import (
	"database/sql"

	"classquest/internal/database"
	"classquest/internal/models"
)

// UserRepository handles account database operations
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts an account. A duplicate email surfaces as a unique
// violation, detectable with IsDuplicate.
func (r *UserRepository) Create(email, passwordHash, displayName string, role models.Role) (*models.User, error) {
	query := "INSERT INTO users (email, password_hash, display_name, role) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, email, passwordHash, displayName, role)
	if err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

// IsDuplicate reports whether err is a unique-constraint violation
func (r *UserRepository) IsDuplicate(err error) bool {
	return r.db.IsUniqueViolation(err)
}

// GetByID retrieves an account by primary key
func (r *UserRepository) GetByID(userID int64) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, display_name, role, created_at, updated_at
		FROM users
		WHERE id = ?
	`
	return r.scanUser(r.db.QueryRow(query, userID))
}

// GetByEmail retrieves an account by email. Returns nil without error when
// no account matches.
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, display_name, role, created_at, updated_at
		FROM users
		WHERE email = ?
	`
	user, err := r.scanUser(r.db.QueryRow(query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

func (r *UserRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
