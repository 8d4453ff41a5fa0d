package util

import (
	"context"
	"fmt"
	"time"

	"github.com/clinicore/clinicore/config"
)

// Redis keeps two structures per login: a session:<token> entry carrying
// "<userID>:<roleID>" with a TTL matching the DB row, and a user_sessions:<id>
// set listing the user's live tokens so a password change can revoke all of
// them at once. All helpers are no-ops when Redis is unavailable.

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

func userSetKey(userID uint) string {
	return fmt.Sprintf("user_sessions:%d", userID)
}

// StoreSession records a session token in Redis with the given TTL.
func StoreSession(userID uint, roleID uint32, token string, ttl time.Duration) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	ctx := context.Background()
	val := fmt.Sprintf("%d:%d", userID, roleID)
	if err := rdb.Set(ctx, sessionKey(token), val, ttl).Err(); err != nil {
		return err
	}
	return AddSessionToUserSet(userID, token)
}

// SessionExists reports whether the token is present in Redis. The second
// return value is false when Redis is unavailable and the caller must fall
// back to the database.
func SessionExists(token string) (bool, bool) {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return false, false
	}
	ctx := context.Background()
	n, err := rdb.Exists(ctx, sessionKey(token)).Result()
	if err != nil {
		return false, false
	}
	return n > 0, true
}

// AddSessionToUserSet adds the session token to the per-user Redis set. The
// set has no TTL and persists until explicitly cleaned up via
// RemoveSessionTokenFromUserSet or InvalidateUserSessions.
func AddSessionToUserSet(userID uint, token string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	ctx := context.Background()
	if err := rdb.SAdd(ctx, userSetKey(userID), token).Err(); err != nil {
		return err
	}
	return rdb.Persist(ctx, userSetKey(userID)).Err()
}

// RemoveSessionTokenFromUserSet removes a single session token from the
// per-user set and deletes the session entry. If the set becomes empty after
// removal, it is deleted.
func RemoveSessionTokenFromUserSet(userID uint, token string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	ctx := context.Background()
	if err := rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
		return err
	}
	// Atomically remove the token and delete the set if empty.
	script := `
		local removed = redis.call('SREM', KEYS[1], ARGV[1])
		if removed > 0 then
			local count = redis.call('SCARD', KEYS[1])
			if count == 0 then
				redis.call('DEL', KEYS[1])
			end
		end
		return removed
	`
	return rdb.Eval(ctx, script, []string{userSetKey(userID)}, token).Err()
}

// InvalidateUserSessions removes every session entry for a user from Redis.
// Used when a password changes or an account is deleted.
func InvalidateUserSessions(userID uint) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	ctx := context.Background()
	tokens, err := rdb.SMembers(ctx, userSetKey(userID)).Result()
	if err != nil {
		return err
	}
	for _, token := range tokens {
		if err := rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
			return err
		}
	}
	return rdb.Del(ctx, userSetKey(userID)).Err()
}
