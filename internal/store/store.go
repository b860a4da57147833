package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	bolt "go.etcd.io/bbolt"

	"github.com/mmcdole/releasebot/internal/domain"
)

// DefaultMaxLists bounds the number of result lists kept when no limit is configured
const DefaultMaxLists = 1000

// Bucket names
var (
	bucketChats  = []byte("chats")
	bucketLists  = []byte("lists")
	bucketGenres = []byte("genres")
)

// chatRecord is the persisted form of a subscription
type chatRecord struct {
	SubscribedAt time.Time `json:"subscribed_at"`
}

// State implements domain.Store using BoltDB with in-memory indexes.
// Result lists are held in a bounded LRU; evicted lists are removed from disk
// and answer ErrListNotFound afterwards.
type State struct {
	db     *bolt.DB
	logger *slog.Logger

	mu     sync.RWMutex // Protects chats and genres
	chats  map[int64]time.Time
	genres map[domain.MediaKind]map[int]string

	lists *lru.Cache[string, domain.ResultList]

	newID func() string
	now   func() time.Time
}

// Options configures a State
type Options struct {
	Path     string // Empty = memory only
	MaxLists int
	Logger   *slog.Logger
}

// Open opens (or creates) the state database and loads it into memory
func Open(opts Options) (*State, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxLists <= 0 {
		opts.MaxLists = DefaultMaxLists
	}

	s := &State{
		logger: opts.Logger,
		chats:  make(map[int64]time.Time),
		genres: make(map[domain.MediaKind]map[int]string),
		newID:  uuid.NewString,
		now:    time.Now,
	}

	lists, err := lru.NewWithEvict(opts.MaxLists, s.onEvict)
	if err != nil {
		return nil, fmt.Errorf("failed to create list cache: %w", err)
	}
	s.lists = lists

	if opts.Path == "" {
		// Memory-only mode (no persistence)
		return s, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(opts.Path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketChats, bucketLists, bucketGenres} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// load reads every bucket into memory. Lists are replayed oldest first so the
// LRU keeps the newest ones when the database holds more than the limit.
func (s *State) load() error {
	var lists []domain.ResultList
	err := s.db.View(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketChats).ForEach(func(k, v []byte) error {
			id, err := strconv.ParseInt(string(k), 10, 64)
			if err != nil {
				s.logger.Warn("skipping malformed chat key", "key", string(k))
				return nil
			}
			var rec chatRecord
			_ = json.Unmarshal(v, &rec)
			s.chats[id] = rec.SubscribedAt
			return nil
		}); err != nil {
			return err
		}

		if err := tx.Bucket(bucketGenres).ForEach(func(k, v []byte) error {
			var names map[int]string
			if err := json.Unmarshal(v, &names); err != nil {
				s.logger.Warn("skipping malformed genre cache", "kind", string(k), "error", err)
				return nil
			}
			s.genres[domain.MediaKind(k)] = names
			return nil
		}); err != nil {
			return err
		}

		return tx.Bucket(bucketLists).ForEach(func(k, v []byte) error {
			var list domain.ResultList
			if err := json.Unmarshal(v, &list); err != nil {
				s.logger.Warn("skipping malformed list", "id", string(k), "error", err)
				return nil
			}
			lists = append(lists, list)
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	sort.SliceStable(lists, func(i, j int) bool {
		return lists[i].CreatedAt.Before(lists[j].CreatedAt)
	})
	for _, list := range lists {
		s.lists.Add(list.ID, list)
	}

	s.logger.Info("state loaded",
		"chats", len(s.chats),
		"lists", s.lists.Len(),
		"genre_kinds", len(s.genres),
	)
	return nil
}

// Close closes the underlying database
func (s *State) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *State) put(bucket []byte, key string, value any) error {
	if s.db == nil {
		return nil // Memory-only mode
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func (s *State) delete(bucket []byte, key string) error {
	if s.db == nil {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Delete([]byte(key))
	})
}

// === Result lists ===

// CreateList stores an immutable list and returns its fresh id
func (s *State) CreateList(caption string, items []domain.Record) (string, error) {
	list := domain.ResultList{
		ID:        s.newID(),
		Caption:   caption,
		Items:     slices.Clone(items),
		CreatedAt: s.now().UTC(),
	}
	if err := s.put(bucketLists, list.ID, list); err != nil {
		return "", fmt.Errorf("failed to persist list: %w", err)
	}
	s.lists.Add(list.ID, list)
	return list.ID, nil
}

// GetList returns a list by id, or ErrListNotFound
func (s *State) GetList(id string) (domain.ResultList, error) {
	list, ok := s.lists.Get(id)
	if !ok {
		return domain.ResultList{}, domain.ErrListNotFound
	}
	return list, nil
}

// ListCount returns the number of retained lists
func (s *State) ListCount() int {
	return s.lists.Len()
}

// Lists returns every retained list, oldest first, without touching recency
func (s *State) Lists() []domain.ResultList {
	keys := s.lists.Keys()
	out := make([]domain.ResultList, 0, len(keys))
	for _, id := range keys {
		if list, ok := s.lists.Peek(id); ok {
			out = append(out, list)
		}
	}
	return out
}

func (s *State) onEvict(id string, _ domain.ResultList) {
	if err := s.delete(bucketLists, id); err != nil {
		s.logger.Warn("failed to drop evicted list", "id", id, "error", err)
	}
}

// === Subscriptions ===

// Subscribe adds a chat to the daily broadcast; false when already subscribed
func (s *State) Subscribe(chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chats[chatID]; ok {
		return false, nil
	}
	rec := chatRecord{SubscribedAt: s.now().UTC()}
	if err := s.put(bucketChats, strconv.FormatInt(chatID, 10), rec); err != nil {
		return false, fmt.Errorf("failed to persist subscription: %w", err)
	}
	s.chats[chatID] = rec.SubscribedAt
	return true, nil
}

// Unsubscribe removes a chat; false when it was not subscribed
func (s *State) Unsubscribe(chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chats[chatID]; !ok {
		return false, nil
	}
	if err := s.delete(bucketChats, strconv.FormatInt(chatID, 10)); err != nil {
		return false, fmt.Errorf("failed to remove subscription: %w", err)
	}
	delete(s.chats, chatID)
	return true, nil
}

// Subscribers returns subscribed chat ids in ascending order
func (s *State) Subscribers() []int64 {
	s.mu.RLock()
	ids := make([]int64, 0, len(s.chats))
	for id := range s.chats {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	slices.Sort(ids)
	return ids
}

// SubscriberCount returns the number of subscribed chats
func (s *State) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chats)
}

// === Genre cache ===

// SaveGenres caches the last successfully fetched taxonomy for a kind
func (s *State) SaveGenres(kind domain.MediaKind, names map[int]string) error {
	cp := make(map[int]string, len(names))
	for id, name := range names {
		cp[id] = name
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.put(bucketGenres, string(kind), cp); err != nil {
		return fmt.Errorf("failed to persist genres: %w", err)
	}
	s.genres[kind] = cp
	return nil
}

// LoadGenres returns the cached taxonomy for a kind
func (s *State) LoadGenres(kind domain.MediaKind) (map[int]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names, ok := s.genres[kind]
	if !ok {
		return nil, false
	}
	cp := make(map[int]string, len(names))
	for id, name := range names {
		cp[id] = name
	}
	return cp, true
}
