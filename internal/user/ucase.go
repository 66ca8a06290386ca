package user

import (
	"context"

	"github.com/codeclimbers/leetboard/internal/weekly"
	"go.elastic.co/apm"
)

// UserUseCaseImpl ...
type UserUseCaseImpl struct {
	UserRepository UserRepository
	ProfileChecker ProfileChecker
}

var _ UserUseCase = &UserUseCaseImpl{}

// NewUserUseCase ...
func NewUserUseCase(UserRepository UserRepository, ProfileChecker ProfileChecker) *UserUseCaseImpl {
	return &UserUseCaseImpl{
		UserRepository: UserRepository,
		ProfileChecker: ProfileChecker,
	}
}

// Register validate the username upstream and create the member
func (uu *UserUseCaseImpl) Register(ctx context.Context, username string) (*UserModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "UserUseCaseImpl.Register", "service")
	defer apmSpan.End()

	// a known username fails fast without an upstream round trip; the
	// unique constraint still backstops concurrent registrations
	taken, err := uu.UserRepository.Exists(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicatedUser
	}

	if err := uu.ProfileChecker.CheckProfile(ctx, username); err != nil {
		return nil, err
	}

	post := &UserModel{Username: username}
	if err := uu.UserRepository.SaveUser(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Standings cumulative board, equal totals share a rank
func (uu *UserUseCaseImpl) Standings(ctx context.Context) ([]*StandingEntry, error) {
	apmSpan, _ := apm.StartSpan(ctx, "UserUseCaseImpl.Standings", "service")
	defer apmSpan.End()

	members, err := uu.UserRepository.ListBySolved(ctx)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*UserModel, len(members))
	scores := make([]weekly.UserScore, 0, len(members))
	for _, m := range members {
		byName[m.Username] = m
		scores = append(scores, weekly.UserScore{Username: m.Username, Score: m.SolvedCount})
	}

	ranked := weekly.RankWithTies(scores)
	standings := make([]*StandingEntry, 0, len(ranked))
	for _, r := range ranked {
		standings = append(standings, &StandingEntry{
			ID:          byName[r.Username].ID,
			Username:    r.Username,
			SolvedCount: r.Score,
			Position:    r.Position,
		})
	}
	return standings, nil
}
