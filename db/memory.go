package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/NoEmotionGuy/genshin-teammate-bot/models"
)

// MemoryStore — хранилище в памяти с теми же наблюдаемыми свойствами, что и
// у MongoStore: upsert по tg_id, каскадное удаление лайков, выдача новых
// анкет первыми, уникальность пары лайка под общим замком. Используется в
// тестах вместо живой базы.
type MemoryStore struct {
	mu       sync.Mutex
	profiles map[int64]*memProfile
	likes    map[likeKey]models.Like
	seq      int64
}

type memProfile struct {
	profile models.Profile
	seq     int64 // порядок вставки, разрешает равные created_at
}

type likeKey struct {
	viewerID int64
	ownerID  int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[int64]*memProfile),
		likes:    make(map[likeKey]models.Like),
	}
}

func (s *MemoryStore) SaveProfile(_ context.Context, p models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.profiles[p.TgID]; ok {
		p.CreatedAt = existing.profile.CreatedAt
		existing.profile = p
		return nil
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.seq++
	s.profiles[p.TgID] = &memProfile{profile: p, seq: s.seq}
	return nil
}

func (s *MemoryStore) ProfileByTg(_ context.Context, tgID int64) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mp, ok := s.profiles[tgID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	p := mp.profile
	return &p, nil
}

func (s *MemoryStore) DeleteProfile(_ context.Context, tgID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, tgID)
	for k := range s.likes {
		if k.ownerID == tgID {
			delete(s.likes, k)
		}
	}
	return nil
}

func (s *MemoryStore) CountProfiles(_ context.Context, server string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, mp := range s.profiles {
		if mp.profile.Server == server {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) ListProfiles(_ context.Context, server string, limit, offset int64) ([]models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []*memProfile
	for _, mp := range s.profiles {
		if mp.profile.Server == server {
			matched = append(matched, mp)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.profile.CreatedAt.Equal(b.profile.CreatedAt) {
			return a.profile.CreatedAt.After(b.profile.CreatedAt)
		}
		return a.seq > b.seq
	})
	if offset >= int64(len(matched)) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit < int64(len(matched)) {
		matched = matched[:limit]
	}
	out := make([]models.Profile, 0, len(matched))
	for _, mp := range matched {
		out = append(out, mp.profile)
	}
	return out, nil
}

func (s *MemoryStore) AddLike(_ context.Context, viewerID, ownerID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := likeKey{viewerID: viewerID, ownerID: ownerID}
	if _, ok := s.likes[k]; ok {
		return false, nil
	}
	s.likes[k] = models.Like{ViewerID: viewerID, OwnerID: ownerID, CreatedAt: time.Now().UTC()}
	return true, nil
}

func (s *MemoryStore) HasLiked(_ context.Context, viewerID, ownerID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.likes[likeKey{viewerID: viewerID, ownerID: ownerID}]
	return ok, nil
}

func (s *MemoryStore) CountLikes(_ context.Context, ownerID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k := range s.likes {
		if k.ownerID == ownerID {
			n++
		}
	}
	return n, nil
}
