// handlers содержит обработчики событий бота: диалог анкеты,
// просмотр анкет и маршрутизацию обновлений.
package handlers

import (
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/NoEmotionGuy/genshin-teammate-bot/db"
)

// Bot — часть API Telegram-бота, которой пользуются обработчики.
// *tgbotapi.BotAPI удовлетворяет интерфейсу; в тестах его подменяет заглушка.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Handlers держит зависимости обработчиков и таблицы сеансов.
type Handlers struct {
	bot      Bot
	log      *slog.Logger
	profiles db.ProfileStore
	likes    db.LikeStore
	// operatorID — Telegram id оператора; 0 — оператор не настроен.
	operatorID int64

	forms   *formSessions
	cursors *cursorStore
	locks   *viewerLocks
}

func New(bot Bot, log *slog.Logger, profiles db.ProfileStore, likes db.LikeStore, operatorID int64) *Handlers {
	return &Handlers{
		bot:        bot,
		log:        log,
		profiles:   profiles,
		likes:      likes,
		operatorID: operatorID,
		forms:      &formSessions{m: make(map[int64]*formSession)},
		cursors:    &cursorStore{m: make(map[int64]*viewContext)},
		locks:      &viewerLocks{m: make(map[int64]*sync.Mutex)},
	}
}

// viewerLocks выдаёт по мьютексу на пользователя: события одного пользователя
// обрабатываются строго по одному, события разных пользователей — независимо.
type viewerLocks struct {
	mu sync.Mutex
	m  map[int64]*sync.Mutex
}

// acquire блокирует мьютекс пользователя и возвращает его для разблокировки.
func (l *viewerLocks) acquire(id int64) *sync.Mutex {
	l.mu.Lock()
	m, ok := l.m[id]
	if !ok {
		m = &sync.Mutex{}
		l.m[id] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m
}

// send отправляет сообщение; ошибки доставки не фатальны и только логируются.
func (h *Handlers) send(c tgbotapi.Chattable) tgbotapi.Message {
	msg, err := h.bot.Send(c)
	if err != nil {
		h.log.Warn("не удалось отправить сообщение", "err", err)
	}
	return msg
}

// deleteMessage удаляет сообщение по возможности: его могли удалить раньше.
func (h *Handlers) deleteMessage(chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	if _, err := h.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		h.log.Debug("не удалось удалить сообщение", "chat_id", chatID, "message_id", messageID, "err", err)
	}
}

// ack отвечает на callback-запрос, чтобы кнопка перестала мигать.
func (h *Handlers) ack(cq *tgbotapi.CallbackQuery, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(cq.ID, text)); err != nil {
		h.log.Debug("не удалось ответить на callback", "err", err)
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// senderName — отображаемое имя отправителя: @username либо полное имя.
func senderName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return "@" + u.UserName
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}
