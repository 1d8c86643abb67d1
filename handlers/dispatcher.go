package handlers

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// HandleUpdate — единая точка входа обработчиков. Событие обрабатывается
// под мьютексом пользователя: два события одного пользователя не могут
// перемешать обновления его курсора или сеанса диалога.
func (h *Handlers) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		lock := h.locks.acquire(update.CallbackQuery.From.ID)
		defer lock.Unlock()
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.From != nil:
		lock := h.locks.acquire(update.Message.From.ID)
		defer lock.Unlock()
		h.handleMessage(ctx, update.Message)
	}
}

// handleCallback разбирает callback-токены по пространствам имён.
// Непонятный токен внутри известного пространства логируется и молча
// игнорируется.
func (h *Handlers) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	data := cq.Data
	userID := cq.From.ID

	switch {
	case strings.HasPrefix(data, "server:"):
		h.handleServerChosen(cq, strings.TrimPrefix(data, "server:"))

	case strings.HasPrefix(data, "browse_server:"):
		h.ack(cq, "")
		h.sendProfileWithActions(ctx, userID, strings.TrimPrefix(data, "browse_server:"), 0)

	case strings.HasPrefix(data, "lang:"):
		h.handleLangToggle(cq, strings.TrimPrefix(data, "lang:"))

	case strings.HasPrefix(data, "confirm:"):
		h.handleConfirm(ctx, cq, strings.TrimPrefix(data, "confirm:"))

	case strings.HasPrefix(data, "complain:"):
		h.handleComplain(ctx, cq)

	case strings.HasPrefix(data, "dev:delete:"):
		h.handleDevDelete(ctx, cq)

	case strings.HasPrefix(data, "profile:"):
		h.handleProfileCallback(ctx, cq, strings.TrimPrefix(data, "profile:"))

	default:
		h.log.Debug("неизвестный callback", "data", data)
	}
}

func (h *Handlers) handleProfileCallback(ctx context.Context, cq *tgbotapi.CallbackQuery, action string) {
	userID := cq.From.ID
	switch action {
	case "view":
		h.ack(cq, "")
		h.showMyProfile(ctx, userID)
	case "edit":
		h.ack(cq, "")
		h.startEdit(ctx, userID)
	case "delete":
		h.ack(cq, "")
		h.requestDeleteProfile(userID)
	case "delete_confirm":
		h.ack(cq, "")
		h.confirmDeleteProfile(ctx, userID)
	case "delete_cancel":
		h.ack(cq, "Удаление отменено.")
		h.send(tgbotapi.NewMessage(userID, "Удаление отменено. Ваша анкета сохранена."))
	case "cancel":
		h.ack(cq, "Отменено.")
	default:
		h.ack(cq, "")
		h.log.Warn("неизвестное действие профиля", "data", cq.Data)
	}
}

// handleMessage маршрутизирует входящее сообщение: сначала команды, затем
// текст активного диалога, затем кнопки панелей.
func (h *Handlers) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID

	if message.IsCommand() {
		h.handleCommand(ctx, message)
		return
	}

	// Активный диалог перехватывает любой текст, включая текст кнопок:
	// например, на шаге языков текстовый ввод отклоняется подсказкой.
	if sess := h.forms.get(userID); sess != nil {
		h.handleFormText(ctx, message, sess)
		return
	}

	switch message.Text {
	case btnLike, btnMessage, btnDislike, btnStop:
		h.handleAction(ctx, message)
	case btnBrowse:
		h.startBrowse(userID)
	case btnMyProfile:
		h.showMyProfile(ctx, userID)
	}
}

func (h *Handlers) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	switch message.Command() {
	case "start", "help":
		h.cmdStart(ctx, userID)
	case "search":
		h.startBrowse(userID)
	case "edit":
		h.startEdit(ctx, userID)
	case "myprofile":
		h.showMyProfile(ctx, userID)
	case "cancel":
		h.cancelDialog(userID)
	case "delete_profile":
		h.cmdDeleteProfile(ctx, message)
	default:
		h.log.Debug("неизвестная команда", "command", message.Command())
	}
}
