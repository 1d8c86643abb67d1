package handlers

import (
	"context"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/NoEmotionGuy/genshin-teammate-bot/models"
)

// cmdStart — /start: при существующей анкете показывает меню управления,
// иначе начинает диалог создания.
func (h *Handlers) cmdStart(ctx context.Context, userID int64) {
	if _, err := h.profiles.ProfileByTg(ctx, userID); err == nil {
		msg := tgbotapi.NewMessage(userID, "У вас уже есть сохранённая анкета. Что вы хотите сделать?")
		msg.ReplyMarkup = profileMenuKeyboard()
		h.send(msg)
		return
	}
	h.startCreate(userID)
}

// showMyProfile показывает собственную анкету со свежим счётчиком лайков.
func (h *Handlers) showMyProfile(ctx context.Context, userID int64) {
	prof, err := h.profiles.ProfileByTg(ctx, userID)
	if err != nil {
		h.send(tgbotapi.NewMessage(userID, "Анкета не найдена. Создать: /start"))
		return
	}
	likeNum, err := h.likes.CountLikes(ctx, prof.TgID)
	if err != nil {
		h.log.Warn("не удалось посчитать лайки", "owner_id", prof.TgID, "err", err)
	}
	msg := tgbotapi.NewMessage(userID, ownProfileCard(prof, likeNum))
	msg.ReplyMarkup = ownProfileKeyboard()
	h.send(msg)
}

// requestDeleteProfile — первый шаг удаления своей анкеты: подтверждение.
func (h *Handlers) requestDeleteProfile(userID int64) {
	msg := tgbotapi.NewMessage(userID, "Вы уверены, что хотите удалить вашу анкету? Это действие нельзя отменить.")
	msg.ReplyMarkup = deleteConfirmKeyboard()
	h.send(msg)
}

// confirmDeleteProfile — второй шаг: удаление анкеты вместе с её лайками.
func (h *Handlers) confirmDeleteProfile(ctx context.Context, userID int64) {
	if err := h.profiles.DeleteProfile(ctx, userID); err != nil {
		h.log.Error("не удалось удалить анкету", "user_id", userID, "err", err)
		h.send(tgbotapi.NewMessage(userID, "Ошибка при удалении анкеты."))
		return
	}
	h.send(tgbotapi.NewMessage(userID, "Ваша анкета удалена."))
	h.send(tgbotapi.NewMessage(userID, "Если хотите создать новую анкету — используйте /start"))
}

// ownProfileCard — карточка собственной анкеты (с сервером).
func ownProfileCard(p *models.Profile, likes int64) string {
	return "Ваша анкета:\n\n" +
		"Сервер: " + p.Server + "\n" +
		"Ник: " + p.Nickname + "\n" +
		"UID: " + p.UID + "\n" +
		"AR: " + p.AdventureRank + "\n" +
		"Языки: " + models.FormatLanguageFlags(p.Languages) + "\n" +
		"Часовой пояс (от MSK): " + p.Playtime + "\n" +
		"О себе: " + p.Bio + "\n" +
		"Лайков: " + strconv.FormatInt(likes, 10) + "\n"
}
