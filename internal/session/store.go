package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/BuyBridge/shopcore/internal/models"
	"github.com/pkg/errors"
)

// Snapshot — текущее состояние сессии. Инвариант: IsLoggedIn == true только если
// непустой AccessToken был установлен через login или refresh.
type Snapshot struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	IsLoggedIn   bool         `json:"isLoggedIn"`
	Online       bool         `json:"online"`
	User         *models.User `json:"user,omitempty"`
}

type EventKind string

const (
	EventSignedIn      EventKind = "signed_in"
	EventRefreshed     EventKind = "refreshed"
	EventSignedOut     EventKind = "signed_out"
	EventInvalidated   EventKind = "invalidated"
	EventOnlineChanged EventKind = "online_changed"
)

type Event struct {
	Kind   EventKind
	Online bool
}

// SnapshotStore — опциональная персистенция снапшота (см. redissession).
type SnapshotStore interface {
	Load(ctx context.Context) (Snapshot, bool, error)
	Save(ctx context.Context, snap Snapshot) error
	Clear(ctx context.Context) error
}

type Store struct {
	mu      sync.RWMutex
	snap    Snapshot
	persist SnapshotStore
	subs    map[int]func(Event)
	nextSub int
}

func New() *Store {
	return &Store{
		snap: Snapshot{Online: true},
		subs: map[int]func(Event){},
	}
}

// NewPersistent загружает снапшот из persist, если он там есть.
// Снапшот, нарушающий инвариант (залогинен без токена), принудительно разлогинивается.
func NewPersistent(ctx context.Context, persist SnapshotStore) (*Store, error) {
	s := New()
	s.persist = persist

	snap, ok, err := persist.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load session snapshot")
	}
	if ok {
		if snap.AccessToken == "" {
			snap.IsLoggedIn = false
		}
		snap.Online = true
		s.snap = snap
	}
	return s, nil
}

func (s *Store) State() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *Store) LoginSucceeded(access, refresh string, user *models.User) error {
	if access == "" {
		return errors.New("login without access token")
	}
	s.mu.Lock()
	s.snap.AccessToken = access
	s.snap.RefreshToken = refresh
	s.snap.IsLoggedIn = true
	if user != nil {
		s.snap.User = user
	}
	snap := s.snap
	s.mu.Unlock()

	s.save(snap)
	s.notify(Event{Kind: EventSignedIn})
	return nil
}

func (s *Store) TokensRefreshed(access, refresh string) error {
	if access == "" {
		return errors.New("refresh without access token")
	}
	s.mu.Lock()
	s.snap.AccessToken = access
	if refresh != "" {
		s.snap.RefreshToken = refresh
	}
	s.snap.IsLoggedIn = true
	snap := s.snap
	s.mu.Unlock()

	s.save(snap)
	s.notify(Event{Kind: EventRefreshed})
	return nil
}

// MergeProfile обновляет только профильные поля, не трогая токены.
func (s *Store) MergeProfile(user models.User) {
	s.mu.Lock()
	if s.snap.User == nil {
		u := user
		s.snap.User = &u
	} else {
		merged := *s.snap.User
		if user.ID != "" {
			merged.ID = user.ID
		}
		if user.Email != "" {
			merged.Email = user.Email
		}
		if user.Name != "" {
			merged.Name = user.Name
		}
		if user.Phone != "" {
			merged.Phone = user.Phone
		}
		if user.AvatarURL != "" {
			merged.AvatarURL = user.AvatarURL
		}
		if user.Country != "" {
			merged.Country = user.Country
		}
		s.snap.User = &merged
	}
	snap := s.snap
	s.mu.Unlock()

	s.save(snap)
}

func (s *Store) SetOnline(online bool) {
	s.mu.Lock()
	changed := s.snap.Online != online
	s.snap.Online = online
	s.mu.Unlock()

	if changed {
		s.notify(Event{Kind: EventOnlineChanged, Online: online})
	}
}

func (s *Store) Online() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Online
}

// SignOut возвращает сессию в пустое начальное состояние. Флаг online
// описывает связность, а не авторизацию, поэтому переживает выход.
func (s *Store) SignOut() {
	s.reset()
	s.notify(Event{Kind: EventSignedOut})
}

// Invalidate — выход, инициированный сервером (HTTP 403). Отдельное событие,
// чтобы UI мог отличить "сессия протухла" от добровольного выхода.
func (s *Store) Invalidate() {
	s.reset()
	s.notify(Event{Kind: EventInvalidated})
}

func (s *Store) reset() {
	s.mu.Lock()
	online := s.snap.Online
	s.snap = Snapshot{Online: online}
	s.mu.Unlock()

	if s.persist != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.persist.Clear(ctx); err != nil {
			slog.Warn("clear session snapshot", "error", err.Error())
		}
	}
}

// Subscribe регистрирует слушателя; возвращает функцию отписки.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(ev Event) {
	s.mu.RLock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Персистенция best-effort: ошибка записи не должна ломать вызов.
func (s *Store) save(snap Snapshot) {
	if s.persist == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.persist.Save(ctx, snap); err != nil {
		slog.Warn("save session snapshot", "error", err.Error())
	}
}
