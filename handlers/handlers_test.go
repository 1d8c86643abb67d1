package handlers

// Общие заготовки тестов обработчиков: транспорт подменяется записывающей
// заглушкой, хранилище — реализацией в памяти.

import (
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/NoEmotionGuy/genshin-teammate-bot/db"
)

// fakeBot записывает отправленные сообщения вместо обращения к Telegram.
// failChats имитирует недоступных получателей (заблокировавших бота).
type fakeBot struct {
	sent      []tgbotapi.Chattable
	requests  []tgbotapi.Chattable
	failChats map[int64]bool
	nextID    int
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m, ok := c.(tgbotapi.MessageConfig); ok && f.failChats[m.ChatID] {
		return tgbotapi.Message{}, &tgbotapi.Error{Message: "Forbidden: bot was blocked by the user"}
	}
	f.sent = append(f.sent, c)
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// textsTo — тексты обычных сообщений, отправленных в указанный чат.
func (f *fakeBot) textsTo(chatID int64) []string {
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok && m.ChatID == chatID {
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeBot) lastTextTo(chatID int64) string {
	texts := f.textsTo(chatID)
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

// containsTextTo сообщает, было ли в чат отправлено сообщение с подстрокой.
func (f *fakeBot) containsTextTo(chatID int64, substr string) bool {
	for _, txt := range f.textsTo(chatID) {
		if strings.Contains(txt, substr) {
			return true
		}
	}
	return false
}

func newTestHandlers(t *testing.T, operatorID int64) (*Handlers, *fakeBot, *db.MemoryStore) {
	t.Helper()
	fake := &fakeBot{failChats: make(map[int64]bool)}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := db.NewMemoryStore()
	return New(fake, log, store, store, operatorID), fake, store
}

func userMsg(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: userID, UserName: "user" + itoa(userID)},
		Chat:      &tgbotapi.Chat{ID: userID},
		Text:      text,
	}}
}

func commandMsg(userID int64, text string) tgbotapi.Update {
	u := userMsg(userID, text)
	cmdLen := len(text)
	if i := strings.Index(text, " "); i != -1 {
		cmdLen = i
	}
	u.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}}
	return u
}

func callback(userID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: userID, UserName: "user" + itoa(userID)},
		Message: &tgbotapi.Message{MessageID: 10, Chat: &tgbotapi.Chat{ID: userID}},
		Data:    data,
	}}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
