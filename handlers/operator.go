package handlers

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// isOperator — явная проверка прав: совпадение с настроенным id оператора.
// При ненастроенном операторе привилегированных пользователей нет.
func (h *Handlers) isOperator(userID int64) bool {
	return h.operatorID != 0 && userID == h.operatorID
}

// handleComplain — callback "complain:<owner_id>:<profile_id>" под чужой
// анкетой. Для отправителя жалоба всегда успешна; оператору пересылается
// снимок анкеты с кнопкой принудительного удаления.
func (h *Handlers) handleComplain(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	h.ack(cq, "Жалоба зарегистрирована. Спасибо.")
	parts := strings.SplitN(cq.Data, ":", 3)
	if len(parts) < 3 {
		h.log.Warn("некорректный callback жалобы", "data", cq.Data)
		return
	}
	ownerPart, profilePart := parts[1], parts[2]
	reporter := senderName(cq.From) + " (id=" + strconv.FormatInt(cq.From.ID, 10) + ")"

	var profileInfo string
	ownerID, err := strconv.ParseInt(ownerPart, 10, 64)
	if err != nil || ownerID == 0 {
		ownerID = 0
		profileInfo = "Неполные данные анкеты: profile_id=" + profilePart + ", owner=" + ownerPart
	} else if prof, err := h.profiles.ProfileByTg(ctx, ownerID); err == nil {
		profileInfo = browseCard(prof, 0)
	} else {
		profileInfo = "Анкета с owner_id=" + ownerPart + " не найдена в БД."
	}

	devMsg := "⚠️ Поступила жалоба на анкету\n\n" +
		"Отправитель: " + reporter + "\n" +
		"Анкета (owner_id=" + ownerPart + ", profile_id=" + profilePart + "):\n\n" +
		profileInfo + "\n"

	if h.operatorID == 0 {
		h.log.Warn("оператор не настроен, жалоба отброшена", "complaint", devMsg)
		return
	}
	msg := tgbotapi.NewMessage(h.operatorID, devMsg)
	if ownerID != 0 {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Удалить анкету (DEV)", "dev:delete:"+ownerPart),
			),
		)
	}
	if _, err := h.bot.Send(msg); err != nil {
		h.log.Error("не удалось переслать жалобу оператору", "err", err)
		return
	}
	h.log.Info("жалоба переслана оператору", "reporter", reporter, "owner_id", ownerID)
}

// handleDevDelete — callback "dev:delete:<tg_id>" из пересланной жалобы.
func (h *Handlers) handleDevDelete(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if !h.isOperator(cq.From.ID) {
		h.ack(cq, "Нет доступа")
		return
	}
	parts := strings.Split(cq.Data, ":")
	if len(parts) != 3 {
		h.ack(cq, "Ошибка данных")
		h.log.Warn("некорректный callback удаления", "data", cq.Data)
		return
	}
	targetID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		h.ack(cq, "Неверный tg_id")
		return
	}
	if err := h.profiles.DeleteProfile(ctx, targetID); err != nil {
		h.ack(cq, "Ошибка при удалении")
		h.log.Error("не удалось удалить анкету по жалобе", "target_id", targetID, "err", err)
		return
	}
	h.ack(cq, "Анкета удалена")
	h.send(tgbotapi.NewMessage(cq.From.ID, "Анкета пользователя "+parts[2]+" удалена."))
	if _, err := h.bot.Send(tgbotapi.NewMessage(targetID, "Ваша анкета была удалена администратором.")); err != nil {
		h.log.Debug("не удалось уведомить владельца об удалении", "target_id", targetID, "err", err)
	}
}

// cmdDeleteProfile — команда оператора /delete_profile <tg_id>.
func (h *Handlers) cmdDeleteProfile(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	if !h.isOperator(userID) {
		h.send(tgbotapi.NewMessage(userID, "Команда доступна только разработчику."))
		return
	}
	parts := strings.Fields(message.Text)
	if len(parts) < 2 {
		h.send(tgbotapi.NewMessage(userID, "Использование: /delete_profile <tg_id>"))
		return
	}
	targetID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		h.send(tgbotapi.NewMessage(userID, "Неверный tg_id."))
		return
	}
	if err := h.profiles.DeleteProfile(ctx, targetID); err != nil {
		h.log.Error("не удалось удалить анкету", "target_id", targetID, "err", err)
		h.send(tgbotapi.NewMessage(userID, "Ошибка при удалении анкеты."))
		return
	}
	h.send(tgbotapi.NewMessage(userID, "Анкета "+parts[1]+" удалена."))
	if _, err := h.bot.Send(tgbotapi.NewMessage(targetID, "Ваша анкета была удалена администратором.")); err != nil {
		h.log.Debug("не удалось уведомить владельца об удалении", "target_id", targetID, "err", err)
	}
}
