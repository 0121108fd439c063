package redissession

import (
	"context"
	"encoding/json"

	"github.com/BuyBridge/shopcore/internal/session"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const defaultKey = "shopcore:session"

// Store хранит снапшот сессии в Redis без TTL: срок жизни сессии
// ограничен самим refresh-токеном, а не кэшем.
type Store struct {
	c   *redis.Client
	key string
}

func New(addr string) *Store {
	return &Store{
		c:   redis.NewClient(&redis.Options{Addr: addr}),
		key: defaultKey,
	}
}

func NewWithClient(c *redis.Client, key string) *Store {
	if key == "" {
		key = defaultKey
	}
	return &Store{c: c, key: key}
}

func (s *Store) Load(ctx context.Context) (session.Snapshot, bool, error) {
	b, err := s.c.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return session.Snapshot{}, false, nil
	}
	if err != nil {
		return session.Snapshot{}, false, errors.Wrap(err, "redis get session")
	}
	var snap session.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		// битый снапшот считаем отсутствующим, а не фатальным
		return session.Snapshot{}, false, nil
	}
	return snap, true, nil
}

func (s *Store) Save(ctx context.Context, snap session.Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "marshal session")
	}
	if err := s.c.Set(ctx, s.key, b, 0).Err(); err != nil {
		return errors.Wrap(err, "redis set session")
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.c.Del(ctx, s.key).Err(); err != nil {
		return errors.Wrap(err, "redis del session")
	}
	return nil
}
