// db содержит хранилища анкет и лайков: интерфейсы, реализацию на MongoDB
// и реализацию в памяти для тестов.
package db

import (
	"context"
	"errors"

	"github.com/NoEmotionGuy/genshin-teammate-bot/models"
)

// ErrProfileNotFound возвращается, когда анкета с указанным tg_id отсутствует.
var ErrProfileNotFound = errors.New("анкета не найдена")

// ProfileStore — хранилище анкет.
type ProfileStore interface {
	// SaveProfile вставляет анкету или полностью перезаписывает существующую
	// по tg_id (upsert). Дата создания существующей анкеты сохраняется.
	SaveProfile(ctx context.Context, p models.Profile) error
	// ProfileByTg возвращает анкету по tg_id либо ErrProfileNotFound.
	ProfileByTg(ctx context.Context, tgID int64) (*models.Profile, error)
	// DeleteProfile удаляет анкету и каскадно все лайки, адресованные ей.
	// Отсутствие анкеты ошибкой не считается.
	DeleteProfile(ctx context.Context, tgID int64) error
	// CountProfiles — число анкет на сервере.
	CountProfiles(ctx context.Context, server string) (int64, error)
	// ListProfiles — анкеты сервера, новые первыми (по created_at по убыванию).
	ListProfiles(ctx context.Context, server string, limit, offset int64) ([]models.Profile, error)
}

// LikeStore — хранилище лайков.
type LikeStore interface {
	// AddLike вставляет лайк. false означает, что пара уже существовала;
	// повторная вставка — ожидаемый исход, а не ошибка. Уникальность пары
	// (viewer, owner) обеспечивает само хранилище, поэтому гонка двух
	// одновременных лайков даёт ровно одну успешную вставку.
	AddLike(ctx context.Context, viewerID, ownerID int64) (bool, error)
	// HasLiked сообщает, ставил ли viewer лайк анкете owner.
	HasLiked(ctx context.Context, viewerID, ownerID int64) (bool, error)
	// CountLikes — число лайков анкеты owner.
	CountLikes(ctx context.Context, ownerID int64) (int64, error)
}
