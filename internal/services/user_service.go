package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gorgio/shortlink-be/internal/database"
	"github.com/gorgio/shortlink-be/internal/models"
	"github.com/gorgio/shortlink-be/internal/validator"
)

// dummyHash is compared against when the username is unknown so the
// login path costs the same whether the user exists or not.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("shortlink-dummy-password"), bcrypt.DefaultCost)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(ctx context.Context, username, password string) (models.User, error)
	Authenticate(ctx context.Context, username, password string) (models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
}

// UserService provides business logic for accounts and credentials.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// Register creates a new user with a bcrypt-hashed password and returns it.
// A taken username surfaces as models.ErrConflict, driven by the UNIQUE
// constraint rather than a separate existence check.
func (s *UserService) Register(ctx context.Context, username, password string) (models.User, error) {
	if err := validator.ValidateUsername(username); err != nil {
		return models.User{}, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	if err := validator.ValidatePassword(password); err != nil {
		return models.User{}, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:       uuid.New().String(),
		Username: username,
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users (id, username, password_hash) VALUES (?, ?, ?)",
		user.ID, user.Username, string(hashed))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.User{}, fmt.Errorf("%w: username taken", models.ErrConflict)
		}
		return models.User{}, err
	}

	return user, nil
}

// Authenticate verifies a user's credentials. Unknown username and wrong
// password return the same error; both paths run a bcrypt compare.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	var user models.User
	row := s.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, created_at FROM users WHERE username = ?", username)
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return models.User{}, fmt.Errorf("%w: invalid credentials", models.ErrUnauthorized)
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, fmt.Errorf("%w: invalid credentials", models.ErrUnauthorized)
	}

	user.PasswordHash = ""
	return user, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	row := s.db.QueryRowContext(ctx,
		"SELECT id, username, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Username, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, fmt.Errorf("%w: user %s", models.ErrNotFound, id)
		}
		return models.User{}, err
	}
	return user, nil
}
