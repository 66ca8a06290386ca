package user

import (
	"context"
	"fmt"

	"github.com/codeclimbers/leetboard/internal/infrastructure/driver"
	"github.com/codeclimbers/leetboard/internal/infrastructure/uuid"
)

// UserSQL UserRepository over the universal SQL driver
type UserSQL struct {
	Conn          driver.ITransactionalDB
	UUIDGenerator uuid.Generator
}

var _ UserRepository = &UserSQL{}

func NewUserRepository(Conn driver.ITransactionalDB, UUIDGenerator uuid.Generator) *UserSQL {
	return &UserSQL{Conn, UUIDGenerator}
}

// EnsureSchema create the users table if missing
func (repo *UserSQL) EnsureSchema(ctx context.Context) error {
	_, err := repo.Conn.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS users(
	id VARCHAR(32) PRIMARY KEY,
	username VARCHAR(64) NOT NULL UNIQUE,
	solved_count INTEGER NOT NULL DEFAULT 0)`)
	if err != nil {
		return fmt.Errorf("ensure users schema: %w", err)
	}
	return nil
}

// SaveUser insert a new member, solved_count starts at zero
func (repo *UserSQL) SaveUser(ctx context.Context, post *UserModel) error {
	// generate id
	if id, err := repo.UUIDGenerator.Generate(); err == nil {
		post.ID = id
	} else {
		return err
	}

	_, err := repo.Conn.ExecContext(ctx, `INSERT INTO users(id, username, solved_count)
	VALUES($1,$2,0)`, post.ID, post.Username)
	if driver.IsDuplicate(err) {
		return ErrDuplicatedUser
	}
	return err
}

// Exists report whether username is registered
func (repo *UserSQL) Exists(ctx context.Context, username string) (bool, error) {
	rows, err := repo.Conn.QueryContext(ctx, `SELECT 1 FROM users WHERE username=$1`, username)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	return rows.Next(), nil
}

// ListUsernames every registered username, in no particular order
func (repo *UserSQL) ListUsernames(ctx context.Context) ([]string, error) {
	rows, err := repo.Conn.QueryContext(ctx, `SELECT username FROM users`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usernames []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, err
		}
		usernames = append(usernames, username)
	}
	return usernames, nil
}

// ListBySolved members ordered by cumulative count descending, username
// ascending within equal counts
func (repo *UserSQL) ListBySolved(ctx context.Context) ([]*UserModel, error) {
	rows, err := repo.Conn.QueryContext(ctx, `SELECT id, username, solved_count
	FROM users
	ORDER BY solved_count DESC, username ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*UserModel
	for rows.Next() {
		item := new(UserModel)
		if err := rows.Scan(&item.ID, &item.Username, &item.SolvedCount); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, nil
}

// AddSolved fold a weekly delta into the cumulative counter
func (repo *UserSQL) AddSolved(ctx context.Context, username string, delta int) error {
	_, err := repo.Conn.ExecContext(ctx, `UPDATE users
	SET solved_count=solved_count+$1
	WHERE username=$2`, delta, username)
	return err
}
