package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisTimeout = 5 * time.Second

// RedisStore хранит множество в Redis SET, чтобы несколько машин видели
// одни и те же обработанные вакансии. Семантика та же, что у FileStore:
// множество загружается один раз, Add меняет только локальную копию,
// Persist отправляет новые идентификаторы.
type RedisStore struct {
	client  redis.UniversalClient
	key     string
	ids     map[string]struct{}
	pending map[string]struct{}
}

var _ Store = (*RedisStore)(nil)

func OpenRedis(ctx context.Context, client redis.UniversalClient, key string) (*RedisStore, error) {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	members, err := client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("load processed jobs from redis %q: %w", key, err)
	}

	s := &RedisStore{
		client:  client,
		key:     key,
		ids:     make(map[string]struct{}, len(members)),
		pending: make(map[string]struct{}),
	}
	for _, id := range members {
		s.ids[id] = struct{}{}
	}
	return s, nil
}

func (s *RedisStore) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *RedisStore) Add(id string) {
	if _, ok := s.ids[id]; ok {
		return
	}
	s.ids[id] = struct{}{}
	s.pending[id] = struct{}{}
}

func (s *RedisStore) Len() int {
	return len(s.ids)
}

func (s *RedisStore) IDs() []string {
	return sortedIDs(s.ids)
}

func (s *RedisStore) Persist() error {
	if len(s.pending) == 0 {
		return nil
	}

	members := make([]any, 0, len(s.pending))
	for _, id := range sortedIDs(s.pending) {
		members = append(members, id)
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := s.client.SAdd(ctx, s.key, members...).Err(); err != nil {
		return fmt.Errorf("persist processed jobs to redis %q: %w", s.key, err)
	}

	s.pending = make(map[string]struct{})
	return nil
}
