package store

import (
	"fmt"

	"fieldform/backend/database"
	"fieldform/backend/models"
)

// CreateUser registers a user. Email must be unique. The first registered
// user becomes the admin; everyone after that defaults to a regular user.
func CreateUser(email, name string) (*models.User, error) {
	if email == "" || name == "" {
		return nil, fmt.Errorf("%w: email and name are required", ErrConstraintViolation)
	}

	var existing int
	err := database.DB.QueryRow("SELECT COUNT(*) FROM users WHERE email = ?", email).Scan(&existing)
	if err != nil {
		return nil, fmt.Errorf("error checking email uniqueness: %w", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: email %s already registered", ErrConstraintViolation, email)
	}

	var total int
	err = database.DB.QueryRow("SELECT COUNT(*) FROM users").Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("error counting users: %w", err)
	}

	role := models.RoleUser
	if total == 0 {
		role = models.RoleAdmin
	}

	now := nowUTC()
	user := &models.User{
		ID:        newID(),
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = database.DB.Exec(`
		INSERT INTO users (id, email, name, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Name, user.Role, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error inserting user: %w", err)
	}

	return user, nil
}

// GetUserByID returns the user, or nil if there is no such user.
func GetUserByID(id string) (*models.User, error) {
	return scanUser("SELECT id, email, name, role, created_at, updated_at FROM users WHERE id = ?", id)
}

// GetUserByEmail returns the user with the given email, or nil.
func GetUserByEmail(email string) (*models.User, error) {
	return scanUser("SELECT id, email, name, role, created_at, updated_at FROM users WHERE email = ?", email)
}

func scanUser(query string, arg any) (*models.User, error) {
	rows, err := database.DB.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("error querying user: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	var u models.User
	if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, fmt.Errorf("error scanning user: %w", err)
	}
	return &u, nil
}

// ListUsers returns all users, newest first.
func ListUsers() ([]models.User, error) {
	rows, err := database.DB.Query(`
		SELECT id, email, name, role, created_at, updated_at
		FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("error querying users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UserUpdate holds the fields UpdateUser may change. Nil means leave alone.
type UserUpdate struct {
	Name *string
	Role *string
}

// UpdateUser merges the supplied fields and refreshes updatedAt.
func UpdateUser(id string, update UserUpdate) error {
	if update.Role != nil && *update.Role != models.RoleAdmin && *update.Role != models.RoleUser {
		return fmt.Errorf("%w: invalid role %q", ErrConstraintViolation, *update.Role)
	}

	query := "UPDATE users SET updated_at = ?"
	args := []any{nowUTC()}

	if update.Name != nil {
		query += ", name = ?"
		args = append(args, *update.Name)
	}
	if update.Role != nil {
		query += ", role = ?"
		args = append(args, *update.Role)
	}

	query += " WHERE id = ?"
	args = append(args, id)

	result, err := database.DB.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("error updating user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	return nil
}
