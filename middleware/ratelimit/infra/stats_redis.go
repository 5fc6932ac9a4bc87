package infra

import (
	"context"
	"strings"
	"time"

	"chimeral-forms/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStatsStore acumula as decisões no Redis:
//
//	<prefix>:total                            hash allowed|denied
//	<prefix>:<endpoint>:<table>               hash allowed|denied
//	<prefix>:<endpoint>:<table>:<yyyymmddhhmm> hash allowed|denied (expira em ttl)
//	<prefix>:<endpoint>:<table>:denied        zset chave -> rejeições (só com trackKeys, expira em ttl)
//
// O zset de rejeições responde "quem mais bateu no limite" com ZREVRANGE.
type RedisStatsStore struct {
	rdb redis.Cmdable

	prefix string
	ttl    time.Duration
	bucket string // "minute" (padrão) ou "none"

	trackKeys bool
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func WithStatsTrackKeys(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackKeys = track }
}

func NewRedisStatsStore(rdb redis.Cmdable, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "forms:stats",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type statsKeys struct {
	total  string
	table  string
	minute string // vazio sem bucket
	denied string // vazio sem trackKeys
}

func (s *RedisStatsStore) keysFor(ev domain.StatsEvent, at time.Time) statsKeys {
	endpoint := strings.Trim(strings.TrimSpace(ev.Endpoint), "/")
	if endpoint == "" {
		endpoint = "unknown"
	}
	table := strings.TrimSpace(ev.Table)
	if table == "" {
		table = "default"
	}

	base := s.prefix + ":" + endpoint + ":" + table
	k := statsKeys{
		total: s.prefix + ":total",
		table: base,
	}
	if s.bucket == "minute" {
		k.minute = base + ":" + at.UTC().Format("200601021504")
	}
	if s.trackKeys {
		k.denied = base + ":denied"
	}
	return k
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	keys := s.keysFor(ev, at)

	field := "denied"
	if ev.Allowed {
		field = "allowed"
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, keys.total, field, 1)
	pipe.HIncrBy(ctx, keys.table, field, 1)

	if keys.minute != "" {
		pipe.HIncrBy(ctx, keys.minute, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, keys.minute, s.ttl)
		}
	}

	if keys.denied != "" && !ev.Allowed {
		if k := strings.TrimSpace(string(ev.Key)); k != "" {
			pipe.ZIncrBy(ctx, keys.denied, 1, k)
			if s.ttl > 0 {
				pipe.Expire(ctx, keys.denied, s.ttl)
			}
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}
