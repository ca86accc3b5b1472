package repo

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/Skotchmaster/auth_service/internal/token"
	"github.com/redis/go-redis/v9"
)

// RedisRevocations keeps the revocation list in a sorted set scored by expiry
// (unix seconds) plus a hash of digest -> kind.
type RedisRevocations struct {
	Client *redis.Client
	Prefix string
	Now    func() time.Time
}

func NewRedisRevocations(client *redis.Client, prefix string) *RedisRevocations {
	if prefix == "" {
		prefix = "auth"
	}
	return &RedisRevocations{Client: client, Prefix: prefix}
}

func (r *RedisRevocations) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Both keys carry the prefix as a hash tag so the scripts touch a single
// cluster slot.
func (r *RedisRevocations) expiryKey() string { return "{" + r.Prefix + "}:revoked" }
func (r *RedisRevocations) kindKey() string   { return "{" + r.Prefix + "}:revoked:kind" }

// KEYS[1] expiry zset, KEYS[2] kind hash; ARGV member, score, kind.
// Existing entries are kept untouched.
const claimRevocationScript = `
if redis.call("ZSCORE", KEYS[1], ARGV[1]) then
  return 0
end
redis.call("ZADD", KEYS[1], ARGV[2], ARGV[1])
redis.call("HSET", KEYS[2], ARGV[1], ARGV[3])
return 1
`

var claimRevocationLua = redis.NewScript(claimRevocationScript)

// KEYS[1] expiry zset, KEYS[2] kind hash; ARGV now. Removes scores < now.
const purgeExpiredScript = `
local members = redis.call("ZRANGEBYSCORE", KEYS[1], "-inf", "(" .. ARGV[1])
local removed = 0
for i = 1, #members do
  removed = removed + redis.call("ZREM", KEYS[1], members[i])
  redis.call("HDEL", KEYS[2], members[i])
end
return removed
`

var purgeExpiredLua = redis.NewScript(purgeExpiredScript)

func (r *RedisRevocations) AddRevocation(ctx context.Context, tokenStr string, expiresAt time.Time, kind token.Kind) error {
	_, err := r.ClaimRevocation(ctx, tokenStr, expiresAt, kind)
	return err
}

func (r *RedisRevocations) ClaimRevocation(ctx context.Context, tokenStr string, expiresAt time.Time, kind token.Kind) (bool, error) {
	created, err := claimRevocationLua.Run(ctx, r.Client,
		[]string{r.expiryKey(), r.kindKey()},
		token.Digest(tokenStr), expiresAt.Unix(), string(kind),
	).Int64()
	if err != nil {
		return false, err
	}
	return created == 1, nil
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, tokenStr string) (bool, error) {
	score, err := r.Client.ZScore(ctx, r.expiryKey(), token.Digest(tokenStr)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return int64(score) > r.now().Unix(), nil
}

func (r *RedisRevocations) PurgeExpired(ctx context.Context) (int64, error) {
	return purgeExpiredLua.Run(ctx, r.Client,
		[]string{r.expiryKey(), r.kindKey()},
		strconv.FormatInt(r.now().Unix(), 10),
	).Int64()
}

