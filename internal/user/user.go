package user

import (
	"context"
	"errors"
)

// UserModel a registered board member. Username is unique and immutable
// once created; SolvedCount only ever grows and only the snapshot job
// writes it
type UserModel struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	SolvedCount int    `json:"solved_count"`
}

// StandingEntry one row of the cumulative board
type StandingEntry struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	SolvedCount int    `json:"solved_count"`
	Position    int    `json:"position"`
}

// ErrDuplicatedUser unique key constraint violation
var ErrDuplicatedUser = errors.New("Username is already registered")

// ErrUnknownProfile the username has no profile on the activity provider
var ErrUnknownProfile = errors.New("No such user on the activity provider")

// UserRepository persistence surface of the user registry
type UserRepository interface {
	SaveUser(ctx context.Context, post *UserModel) error
	Exists(ctx context.Context, username string) (bool, error)
	ListUsernames(ctx context.Context) ([]string, error)
	ListBySolved(ctx context.Context) ([]*UserModel, error)
	AddSolved(ctx context.Context, username string, delta int) error
}

// ProfileChecker registration-time validation against the upstream
// provider: a username is only worth tracking if a profile exists for it
type ProfileChecker interface {
	CheckProfile(ctx context.Context, username string) error
}

// UserUseCase .
type UserUseCase interface {
	Register(ctx context.Context, username string) (*UserModel, error)
	Standings(ctx context.Context) ([]*StandingEntry, error)
}
