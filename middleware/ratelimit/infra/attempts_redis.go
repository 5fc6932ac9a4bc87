package infra

import (
	"context"
	"strconv"
	"strings"
	"time"

	"chimeral-forms/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

// RedisAttemptLog guarda as tentativas em um sorted set por chave
// (score = unix ms), permitindo dividir a janela entre várias instâncias.
//
// Mesma semântica da tabela em memória: leitura e escrita são comandos
// separados, sem compare-and-swap.
type RedisAttemptLog struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

type RedisAttemptOption func(*RedisAttemptLog)

func WithAttemptPrefix(prefix string) RedisAttemptOption {
	return func(l *RedisAttemptLog) { l.prefix = strings.Trim(prefix, ":") }
}

// NewRedisAttemptLog cria o log. window vira o TTL de cada chave, então chaves
// ociosas expiram sozinhas no Redis.
func NewRedisAttemptLog(rdb redis.Cmdable, window time.Duration, opts ...RedisAttemptOption) *RedisAttemptLog {
	l := &RedisAttemptLog{
		rdb:    rdb,
		prefix: "ratelimit:attempts",
		ttl:    window,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *RedisAttemptLog) key(k domain.Key) string {
	return l.prefix + ":" + string(k)
}

func (l *RedisAttemptLog) Attempts(ctx context.Context, key domain.Key) ([]time.Time, error) {
	zs, err := l.rdb.ZRangeWithScores(ctx, l.key(key), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, 0, len(zs))
	for _, z := range zs {
		out = append(out, time.UnixMilli(int64(z.Score)))
	}
	return out, nil
}

func (l *RedisAttemptLog) SetAttempts(ctx context.Context, key domain.Key, attempts []time.Time) error {
	k := l.key(key)

	pipe := l.rdb.TxPipeline()
	pipe.Del(ctx, k)
	if len(attempts) > 0 {
		members := make([]redis.Z, 0, len(attempts))
		for i, t := range attempts {
			// membro único: tentativas no mesmo ms não podem colapsar no set
			members = append(members, redis.Z{
				Score:  float64(t.UnixMilli()),
				Member: strconv.FormatInt(t.UnixNano(), 10) + "-" + strconv.Itoa(i),
			})
		}
		pipe.ZAdd(ctx, k, members...)
		if l.ttl > 0 {
			pipe.PExpire(ctx, k, l.ttl)
		}
	}
	_, err := pipe.Exec(ctx)
	return err
}

var _ domain.AttemptLog = (*RedisAttemptLog)(nil)
