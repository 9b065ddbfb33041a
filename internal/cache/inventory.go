package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix = "user:%d"
	ClubKeyPrefix = "club:%d"
)

const (
	// UserTTL is short because the user row carries the cached global
	// role, which governance workflows mutate.
	UserTTL = 5 * time.Minute
	ClubTTL = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func ClubKey(clubID uint) string {
	return fmt.Sprintf(ClubKeyPrefix, clubID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateUser must be called whenever a workflow mutates a user's
// global role so stale roles never serve authorization decisions.
func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateClub(ctx context.Context, clubID uint) {
	Invalidate(ctx, ClubKey(clubID))
}
