package handlers

import (
	"context"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/NoEmotionGuy/genshin-teammate-bot/db"
	"github.com/NoEmotionGuy/genshin-teammate-bot/models"
)

// viewContext — курсор просмотра: какая анкета какого сервера сейчас
// показана пользователю. Живёт только в памяти процесса: перезапуск бота
// сбрасывает все курсоры, это принятое ограничение.
type viewContext struct {
	Server    string
	Offset    int64
	Total     int64
	OwnerID   int64
	ProfileID string
	// Идентификаторы сообщений карточки и панели действий: старая панель
	// удаляется при показе следующей анкеты, чтобы не копить клавиатуры.
	KeyboardMessageID int
	ProfileMessageID  int
}

// cursorStore — таблица курсоров с явным жизненным циклом: курсор создаётся
// на старте просмотра, заменяется при повторном старте и удаляется при
// остановке или исчерпании списка.
type cursorStore struct {
	mu sync.Mutex
	m  map[int64]*viewContext
}

func (s *cursorStore) get(viewerID int64) *viewContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[viewerID]
}

func (s *cursorStore) set(viewerID int64, ctx *viewContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[viewerID] = ctx
}

func (s *cursorStore) remove(viewerID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, viewerID)
}

// startBrowse — выбор сервера для просмотра (команда /search или кнопка меню).
func (h *Handlers) startBrowse(userID int64) {
	msg := tgbotapi.NewMessage(userID, "Выберите сервер для просмотра анкет:")
	msg.ReplyMarkup = serversKeyboard("browse_server")
	h.send(msg)
}

// sendProfileWithActions показывает анкету сервера по смещению и обновляет
// курсор. Смещение зажимается в [0, total-1]; счётчик лайков читается из
// хранилища при каждом показе.
func (h *Handlers) sendProfileWithActions(ctx context.Context, viewerID int64, server string, offset int64) {
	total, err := h.profiles.CountProfiles(ctx, server)
	if err != nil {
		h.log.Error("не удалось посчитать анкеты", "server", server, "err", err)
		h.send(tgbotapi.NewMessage(viewerID, "Ошибка загрузки анкеты."))
		return
	}
	if total == 0 {
		h.send(tgbotapi.NewMessage(viewerID, "Анкет на сервере "+server+" ещё нет."))
		menu := tgbotapi.NewMessage(viewerID, "Меню:")
		menu.ReplyMarkup = mainMenuKeyboard()
		h.send(menu)
		return
	}

	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		offset = total - 1
	}

	profs, err := h.profiles.ListProfiles(ctx, server, 1, offset)
	if err != nil || len(profs) == 0 {
		h.log.Error("не удалось загрузить анкету", "server", server, "offset", offset, "err", err)
		h.send(tgbotapi.NewMessage(viewerID, "Ошибка загрузки анкеты."))
		return
	}
	prof := &profs[0]
	ownerID := prof.TgID

	likeNum, err := h.likes.CountLikes(ctx, ownerID)
	if err != nil {
		h.log.Warn("не удалось посчитать лайки", "owner_id", ownerID, "err", err)
	}

	profileID := db.ProfileDisplayID(prof)
	card := tgbotapi.NewMessage(viewerID, browseCard(prof, likeNum))
	card.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚠️ Пожаловаться",
				"complain:"+strconv.FormatInt(ownerID, 10)+":"+profileID),
		),
	)
	profileMsg := h.send(card)

	prev := h.cursors.get(viewerID)

	actions := tgbotapi.NewMessage(viewerID, "Действия (используйте кнопки ниже):")
	actions.ReplyMarkup = actionKeyboard()
	kbMsg := h.send(actions)

	if prev != nil {
		h.deleteMessage(viewerID, prev.KeyboardMessageID)
	}

	h.cursors.set(viewerID, &viewContext{
		Server:            server,
		Offset:            offset,
		Total:             total,
		OwnerID:           ownerID,
		ProfileID:         profileID,
		KeyboardMessageID: kbMsg.MessageID,
		ProfileMessageID:  profileMsg.MessageID,
	})
	h.log.Info("курсор просмотра обновлён",
		"viewer_id", viewerID, "server", server, "offset", offset, "owner_id", ownerID)
}

// handleAction обрабатывает кнопку панели действий при активном курсоре.
func (h *Handlers) handleAction(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	vc := h.cursors.get(userID)
	if vc == nil {
		h.send(tgbotapi.NewMessage(userID, "Нет текущей просматриваемой анкеты. Сначала используйте /search и выберите сервер."))
		return
	}

	switch message.Text {
	case btnLike:
		h.actionLike(ctx, message, vc)
	case btnDislike:
		h.advance(ctx, userID, vc, "Это была последняя анкета. Просмотр остановлен.")
	case btnMessage:
		h.actionMessage(message, vc)
	case btnStop:
		h.deleteMessage(userID, vc.KeyboardMessageID)
		h.cursors.remove(userID)
		msg := tgbotapi.NewMessage(userID, "Просмотр остановлен.")
		msg.ReplyMarkup = mainMenuKeyboard()
		h.send(msg)
	}
}

func (h *Handlers) actionLike(ctx context.Context, message *tgbotapi.Message, vc *viewContext) {
	userID := message.From.ID
	if vc.OwnerID == 0 {
		h.send(tgbotapi.NewMessage(userID, "Невозможно поставить лайк — не найден владелец анкеты."))
		return
	}
	if vc.OwnerID == userID {
		h.send(tgbotapi.NewMessage(userID, "Нельзя лайкать свою анкету."))
		return
	}
	already, err := h.likes.HasLiked(ctx, userID, vc.OwnerID)
	if err != nil {
		h.log.Error("не удалось проверить лайк", "viewer_id", userID, "owner_id", vc.OwnerID, "err", err)
		h.send(tgbotapi.NewMessage(userID, "Не удалось поставить лайк. Попробуйте ещё раз."))
		return
	}
	if already {
		h.send(tgbotapi.NewMessage(userID, "Вы уже ставили лайк этой анкете ранее."))
		return
	}
	// Повторная вставка под гонкой отсекается уникальным индексом хранилища,
	// предварительная проверка выше нужна только для дружелюбного ответа.
	inserted, err := h.likes.AddLike(ctx, userID, vc.OwnerID)
	if err != nil {
		h.log.Error("не удалось вставить лайк", "viewer_id", userID, "owner_id", vc.OwnerID, "err", err)
		h.send(tgbotapi.NewMessage(userID, "Не удалось поставить лайк. Попробуйте ещё раз."))
		return
	}
	if inserted {
		notify := tgbotapi.NewMessage(vc.OwnerID, "Ваша анкета получила лайк от "+senderName(message.From)+".")
		reply := tgbotapi.NewMessage(userID, "Лайк отправлен и владелец уведомлён. Переходим к следующей анкете.")
		if _, err := h.bot.Send(notify); err != nil {
			h.log.Warn("не удалось уведомить владельца о лайке", "owner_id", vc.OwnerID, "err", err)
			reply = tgbotapi.NewMessage(userID, "Лайк учтён, но не удалось уведомить владельца (возможно, он заблокировал бота). Переходим к следующей анкете.")
		}
		reply.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
		h.send(reply)
	} else {
		msg := tgbotapi.NewMessage(userID, "Не удалось поставить лайк (возможно, вы уже ставили).")
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
		h.send(msg)
	}
	h.advance(ctx, userID, vc, "Больше анкет нет. Просмотр остановлен.")
}

// advance сдвигает курсор на следующую анкету; при исчерпании списка сеанс
// просмотра завершается и курсор удаляется — смещение никогда не
// зацикливается и не уходит в минус.
func (h *Handlers) advance(ctx context.Context, userID int64, vc *viewContext, lastMsg string) {
	next := vc.Offset + 1
	if next >= vc.Total {
		h.deleteMessage(userID, vc.KeyboardMessageID)
		h.cursors.remove(userID)
		msg := tgbotapi.NewMessage(userID, lastMsg)
		msg.ReplyMarkup = mainMenuKeyboard()
		h.send(msg)
		return
	}
	h.sendProfileWithActions(ctx, userID, vc.Server, next)
}

func (h *Handlers) actionMessage(message *tgbotapi.Message, vc *viewContext) {
	userID := message.From.ID
	if vc.OwnerID == 0 {
		h.send(tgbotapi.NewMessage(userID, "Невозможно отправить сообщение — не найден владелец анкеты."))
		return
	}
	if vc.OwnerID == userID {
		h.send(tgbotapi.NewMessage(userID, "Нельзя отправлять сообщение самому себе."))
		return
	}
	h.forms.set(userID, &formSession{
		State:         StateSendingMessage,
		MessageTarget: vc.OwnerID,
	})
	msg := tgbotapi.NewMessage(userID, "Введите сообщение, которое хотите отправить владельцу анкеты. Отправьте '-' чтобы отменить.")
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	h.send(msg)
}

// handleSendingMessage — набор письма владельцу анкеты. Завершение (как и
// отмена по '-') возвращает панель действий активного курсора, не трогая
// смещение.
func (h *Handlers) handleSendingMessage(message *tgbotapi.Message, sess *formSession) {
	userID := message.From.ID
	txt := strings.TrimSpace(message.Text)

	if txt == "-" {
		h.send(tgbotapi.NewMessage(userID, "Отправка отменена."))
		h.forms.remove(userID)
		h.restoreActionBar(userID)
		return
	}
	if sess.MessageTarget == 0 {
		h.send(tgbotapi.NewMessage(userID, "Не удалось найти получателя. Отмена."))
		h.forms.remove(userID)
		return
	}
	forward := tgbotapi.NewMessage(sess.MessageTarget,
		"Сообщение от "+senderName(message.From)+" через бот:\n\n"+txt)
	if _, err := h.bot.Send(forward); err != nil {
		h.log.Warn("не удалось переслать письмо владельцу", "owner_id", sess.MessageTarget, "err", err)
		h.send(tgbotapi.NewMessage(userID, "Не удалось отправить сообщение владельцу (возможно, он заблокировал бота)."))
	} else {
		h.send(tgbotapi.NewMessage(userID, "Сообщение отправлено владельцу анкеты."))
	}
	h.forms.remove(userID)
	h.restoreActionBar(userID)
}

// restoreActionBar возвращает панель действий, если курсор ещё активен,
// иначе показывает главное меню.
func (h *Handlers) restoreActionBar(userID int64) {
	vc := h.cursors.get(userID)
	if vc == nil {
		menu := tgbotapi.NewMessage(userID, "Меню:")
		menu.ReplyMarkup = mainMenuKeyboard()
		h.send(menu)
		return
	}
	actions := tgbotapi.NewMessage(userID, "Действия (используйте кнопки ниже):")
	actions.ReplyMarkup = actionKeyboard()
	kbMsg := h.send(actions)
	h.deleteMessage(userID, vc.KeyboardMessageID)
	vc.KeyboardMessageID = kbMsg.MessageID
}

// browseCard — карточка чужой анкеты при просмотре.
func browseCard(p *models.Profile, likes int64) string {
	return "Ник: " + p.Nickname + "\n" +
		"UID: " + p.UID + "\n" +
		"AR: " + p.AdventureRank + "\n" +
		"Языки: " + models.FormatLanguageFlags(p.Languages) + "\n" +
		"Часовой пояс (от MSK): " + p.Playtime + "\n" +
		"О себе: " + p.Bio + "\n" +
		"Лайков: " + strconv.FormatInt(likes, 10) + "\n"
}
