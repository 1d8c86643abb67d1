package db

// Тесты хранилища в памяти. Оно повторяет наблюдаемые свойства MongoStore,
// поэтому инварианты (upsert, порядок выдачи, уникальность лайка, каскад)
// проверяются именно здесь.

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/NoEmotionGuy/genshin-teammate-bot/models"
)

// Upsert: повторное сохранение перезаписывает поля, но не создаёт вторую
// анкету и не трогает дату создания.
func TestMemoryStore_SaveProfileUpsert(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	created := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveProfile(ctx, models.Profile{TgID: 1, Server: "Europe", Nickname: "до", CreatedAt: created}))
	require.NoError(t, s.SaveProfile(ctx, models.Profile{TgID: 1, Server: "Europe", Nickname: "после"}))

	n, err := s.CountProfiles(ctx, "Europe")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	prof, err := s.ProfileByTg(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "после", prof.Nickname)
	require.True(t, prof.CreatedAt.Equal(created))
}

// Чтение отсутствующей анкеты — ErrProfileNotFound.
func TestMemoryStore_ProfileNotFound(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.ProfileByTg(context.Background(), 404)
	require.ErrorIs(t, err, ErrProfileNotFound)
}

// Выдача по серверу: новые первыми, limit и offset соблюдаются.
func TestMemoryStore_ListProfilesOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveProfile(ctx, models.Profile{TgID: 1, Server: "Asia", Nickname: "первая", CreatedAt: base}))
	require.NoError(t, s.SaveProfile(ctx, models.Profile{TgID: 2, Server: "Asia", Nickname: "вторая", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, s.SaveProfile(ctx, models.Profile{TgID: 3, Server: "Europe", Nickname: "чужой сервер", CreatedAt: base.Add(2 * time.Hour)}))

	got, err := s.ListProfiles(ctx, "Asia", 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "вторая", got[0].Nickname)
	require.Equal(t, "первая", got[1].Nickname)

	got, err = s.ListProfiles(ctx, "Asia", 1, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "первая", got[0].Nickname)

	got, err = s.ListProfiles(ctx, "Asia", 1, 5)
	require.NoError(t, err)
	require.Empty(t, got)
}

// Лайк уникален на пару: ровно одно true на пару, повтор — false без ошибки.
func TestMemoryStore_AddLikeIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	inserted, err := s.AddLike(ctx, 1, 100)
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = s.AddLike(ctx, 1, 100)
	require.NoError(t, err)
	require.False(t, inserted)

	n, err := s.CountLikes(ctx, 100)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	liked, err := s.HasLiked(ctx, 1, 100)
	require.NoError(t, err)
	require.True(t, liked)

	// Обратное направление — отдельная пара.
	liked, err = s.HasLiked(ctx, 100, 1)
	require.NoError(t, err)
	require.False(t, liked)
}

// Удаление анкеты каскадно убирает лайки, где она была целью.
func TestMemoryStore_DeleteProfileCascadesLikes(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.SaveProfile(ctx, models.Profile{TgID: 100, Server: "Europe"}))
	_, err := s.AddLike(ctx, 1, 100)
	require.NoError(t, err)
	_, err = s.AddLike(ctx, 2, 100)
	require.NoError(t, err)
	// Лайк, поставленный самим владельцем кому-то другому, не каскадируется.
	_, err = s.AddLike(ctx, 100, 2)
	require.NoError(t, err)

	require.NoError(t, s.DeleteProfile(ctx, 100))

	_, err = s.ProfileByTg(ctx, 100)
	require.ErrorIs(t, err, ErrProfileNotFound)

	n, err := s.CountLikes(ctx, 100)
	require.NoError(t, err)
	require.EqualValues(t, 0, n)

	liked, err := s.HasLiked(ctx, 100, 2)
	require.NoError(t, err)
	require.True(t, liked)
}

// Удаление отсутствующей анкеты — не ошибка.
func TestMemoryStore_DeleteMissingProfile(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.DeleteProfile(context.Background(), 404))
}
