package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"sfinx/internal/interview"
)

// ErrInterviewNotFound se devuelve cuando no hay sesion viva con ese id.
var ErrInterviewNotFound = errors.New("interview not found")

// LiveInterview es lo que se guarda por entrevista activa: el contexto del motor
// mas el ultimo par pregunta/respuesta que se le pasa al juez.
type LiveInterview struct {
	ID            string            `json:"id"`
	CandidateName string            `json:"candidate_name"`
	Session       interview.Session `json:"session"`
	LastQuestion  string            `json:"last_question,omitempty"`
	LastAnswer    string            `json:"last_answer,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// SessionStore guarda el estado vivo de cada entrevista.
type SessionStore interface {
	Save(ctx context.Context, live LiveInterview) error
	Get(ctx context.Context, id string) (LiveInterview, error)
	Delete(ctx context.Context, id string) error
}

type memorySessionStore struct {
	cache *cache.Cache
}

// NewMemorySessionStore guarda sesiones en proceso; expiran tras ttl sin actividad.
func NewMemorySessionStore(ttl time.Duration) SessionStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &memorySessionStore{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (s *memorySessionStore) Save(_ context.Context, live LiveInterview) error {
	if strings.TrimSpace(live.ID) == "" {
		return errors.New("session store: empty id")
	}
	// se guarda una copia; los arrays del scorer se copian por valor
	s.cache.Set(live.ID, live, cache.DefaultExpiration)
	return nil
}

func (s *memorySessionStore) Get(_ context.Context, id string) (LiveInterview, error) {
	if x, found := s.cache.Get(id); found {
		return x.(LiveInterview), nil
	}
	return LiveInterview{}, ErrInterviewNotFound
}

func (s *memorySessionStore) Delete(_ context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}

type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisSessionStore struct {
	client redisKV
	ttl    time.Duration
	prefix string
}

// NewRedisSessionStore serializa cada sesion como JSON con TTL renovado en cada escritura.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) SessionStore {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &redisSessionStore{
		client: client,
		ttl:    ttl,
		prefix: "interview:session:",
	}
}

func (s *redisSessionStore) Save(ctx context.Context, live LiveInterview) error {
	if strings.TrimSpace(live.ID) == "" {
		return errors.New("session store: empty id")
	}
	payload, err := json.Marshal(live)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.client.Set(ctx, s.prefix+live.ID, payload, s.ttl).Err()
}

func (s *redisSessionStore) Get(ctx context.Context, id string) (LiveInterview, error) {
	raw, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return LiveInterview{}, ErrInterviewNotFound
	}
	if err != nil {
		return LiveInterview{}, fmt.Errorf("redis get session: %w", err)
	}
	var live LiveInterview
	if err := json.Unmarshal(raw, &live); err != nil {
		return LiveInterview{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return live, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.prefix+id).Err()
}
