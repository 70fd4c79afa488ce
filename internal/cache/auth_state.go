package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/edukart-next/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// UserAuthState is a cached snapshot of the fields the auth middleware
// checks on every request, so a hot token does not hit the database.
type UserAuthState struct {
	UserID    uint  `json:"user_id"`
	IsActive  bool  `json:"is_active"`
	UpdatedAt int64 `json:"updated_at"`
}

func userAuthStateKey(userID uint) string {
	return fmt.Sprintf("auth:user:%d", userID)
}

// BuildUserAuthState snapshots a user row.
func BuildUserAuthState(user *models.User) *UserAuthState {
	if user == nil {
		return nil
	}
	return &UserAuthState{
		UserID:    user.ID,
		IsActive:  user.IsActive,
		UpdatedAt: time.Now().Unix(),
	}
}

// GetUserAuthState reads the cached snapshot. The second return reports
// whether the cache held one.
func GetUserAuthState(ctx context.Context, userID uint) (*UserAuthState, bool, error) {
	if userID == 0 {
		return nil, false, nil
	}
	var state UserAuthState
	hit, err := GetJSON(ctx, userAuthStateKey(userID), &state)
	if err != nil || !hit {
		return nil, false, err
	}
	return &state, true, nil
}

// SetUserAuthState stores the snapshot.
func SetUserAuthState(ctx context.Context, state *UserAuthState) error {
	if state == nil || state.UserID == 0 {
		return nil
	}
	return SetJSON(ctx, userAuthStateKey(state.UserID), state, authStateCacheTTL)
}

// InvalidateUserAuthState drops the snapshot after a user update.
func InvalidateUserAuthState(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	return Del(ctx, userAuthStateKey(userID))
}
