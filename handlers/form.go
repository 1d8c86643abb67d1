package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/NoEmotionGuy/genshin-teammate-bot/models"
)

// FormState — состояние диалога анкеты. Шаги идут строго по порядку,
// невалидный ввод оставляет диалог на том же шаге.
type FormState int

const (
	StateChoosingServer FormState = iota + 1
	StateNickname
	StateUID
	StateAdventureRank
	StateLanguages
	StatePlaytime
	StateBio
	StateConfirm
	// StateSendingMessage — набор письма владельцу анкеты из режима просмотра.
	StateSendingMessage
)

// formSession — черновик анкеты, накапливаемый по шагам диалога.
// Отбрасывается при отмене и при завершении диалога.
type formSession struct {
	State   FormState
	Editing bool
	Data    models.Profile
	// MessageTarget — получатель письма в состоянии StateSendingMessage.
	MessageTarget int64
}

type formSessions struct {
	mu sync.Mutex
	m  map[int64]*formSession
}

func (s *formSessions) get(userID int64) *formSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[userID]
}

func (s *formSessions) set(userID int64, sess *formSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[userID] = sess
}

func (s *formSessions) remove(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, userID)
}

// startCreate начинает диалог создания анкеты с выбора сервера.
func (h *Handlers) startCreate(userID int64) {
	h.forms.set(userID, &formSession{
		State: StateChoosingServer,
		Data:  models.Profile{TgID: userID},
	})
	msg := tgbotapi.NewMessage(userID, "Привет! Я бот для поиска тиммейтов по Genshin.\nСначала выберите сервер:")
	msg.ReplyMarkup = serversKeyboard("server")
	h.send(msg)
}

// startEdit начинает редактирование: все поля существующей анкеты
// предзагружаются в сеанс, '-' на любом шаге оставляет текущее значение.
func (h *Handlers) startEdit(ctx context.Context, userID int64) {
	prof, err := h.profiles.ProfileByTg(ctx, userID)
	if err != nil {
		h.send(tgbotapi.NewMessage(userID, "Анкета не найдена. Создать: /start"))
		return
	}
	h.forms.set(userID, &formSession{
		State:   StateNickname,
		Editing: true,
		Data:    *prof,
	})
	currentNick := prof.Nickname
	if currentNick == "" {
		currentNick = "(пусто)"
	}
	h.send(tgbotapi.NewMessage(userID,
		"Редактирование анкеты. Текущий ник: "+currentNick+
			"\nВведите новый ник (или отправьте '-' чтобы оставить текущий):"))
}

// handleServerChosen — callback "server:<key>" на шаге выбора сервера.
func (h *Handlers) handleServerChosen(cq *tgbotapi.CallbackQuery, key string) {
	userID := cq.From.ID
	sess := h.forms.get(userID)
	if sess == nil || sess.State != StateChoosingServer {
		h.ack(cq, "")
		h.log.Debug("выбор сервера вне диалога", "user_id", userID)
		return
	}
	if !validServerKey(key) {
		h.ack(cq, "")
		h.log.Warn("неизвестный сервер в callback", "data", cq.Data)
		return
	}
	sess.Data.Server = key
	sess.State = StateNickname
	h.ack(cq, "Сервер "+key+" выбран")
	msg := tgbotapi.NewMessage(userID, "Вы выбрали сервер: <b>"+key+"</b>\nТеперь введите ваш никнейм (в Genshin):")
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	h.send(msg)
}

func validServerKey(key string) bool {
	for _, s := range models.Servers {
		if s.Key == key {
			return true
		}
	}
	return false
}

// handleFormText продвигает диалог по текстовому вводу текущего шага.
func (h *Handlers) handleFormText(ctx context.Context, message *tgbotapi.Message, sess *formSession) {
	userID := message.From.ID
	txt := strings.TrimSpace(message.Text)

	switch sess.State {
	case StateNickname:
		if !(txt == "-" && sess.Editing) {
			sess.Data.Nickname = truncateRunes(txt, 64)
		}
		sess.State = StateUID
		h.send(tgbotapi.NewMessage(userID, "UID (можно пропустить) или отправьте '-' для пропуска/сохранения (при редактировании):"))

	case StateUID:
		if !(txt == "-" && sess.Editing) {
			if txt == "-" {
				sess.Data.UID = ""
			} else {
				sess.Data.UID = txt
			}
		}
		sess.State = StateAdventureRank
		h.send(tgbotapi.NewMessage(userID, "Adventure Rank (AR) — введите число от 1 до 60 или '-' для пропуска/сохранения (при редактировании):"))

	case StateAdventureRank:
		if !(txt == "-" && sess.Editing) {
			if txt == "-" {
				sess.Data.AdventureRank = ""
			} else {
				ar, err := strconv.Atoi(txt)
				if err != nil {
					h.send(tgbotapi.NewMessage(userID, "Неверный формат AR. Введите число от 1 до 60 или '-' для пропуска/сохранения:"))
					return
				}
				if ar < 1 || ar > 60 {
					h.send(tgbotapi.NewMessage(userID, "AR вне допустимого диапазона. Введите число от 1 до 60 или '-' для пропуска/сохранения:"))
					return
				}
				sess.Data.AdventureRank = strconv.Itoa(ar)
			}
		}
		sess.State = StateLanguages
		prompt := "Выберите языки (нажмите кнопки, чтобы отметить/снять):"
		if sess.Editing {
			prompt += " Нажмите Готово, чтобы продолжить (или оставьте выбор без изменений)."
		}
		msg := tgbotapi.NewMessage(userID, prompt)
		msg.ReplyMarkup = languagesKeyboard(models.ParseLanguages(sess.Data.Languages))
		h.send(msg)

	case StateLanguages:
		// Языки выбираются только кнопками.
		h.send(tgbotapi.NewMessage(userID, "Пожалуйста, используйте кнопки для выбора языков. Ввод текста для языков отключён."))

	case StatePlaytime:
		if !(txt == "-" && sess.Editing) {
			if txt == "-" {
				sess.Data.Playtime = ""
			} else {
				norm, err := models.NormalizePlaytime(txt)
				if errors.Is(err, models.ErrPlaytimeRange) {
					h.send(tgbotapi.NewMessage(userID, "Сдвиг от MSK должен быть в диапазоне от -12 до +14. Введите другое значение или '-' для пропуска/сохранения:"))
					return
				}
				if err != nil {
					h.send(tgbotapi.NewMessage(userID, "Непонятный формат. Введите целое число (например 0, +2, -3) относительно MSK, или '-' для пропуска/сохранения:"))
					return
				}
				sess.Data.Playtime = norm
			}
		}
		sess.State = StateBio
		h.send(tgbotapi.NewMessage(userID, "Коротко о себе / что ищете (до 500 символов). Отправьте '-' чтобы оставить текущее (при редактировании)."))

	case StateBio:
		if !(txt == "-" && sess.Editing) {
			sess.Data.Bio = truncateRunes(txt, 500)
		}
		sess.State = StateConfirm
		msg := tgbotapi.NewMessage(userID, formPreview(&sess.Data))
		msg.ReplyMarkup = confirmKeyboard()
		h.send(msg)

	case StateSendingMessage:
		h.handleSendingMessage(message, sess)

	default:
		h.log.Debug("текст в неожиданном состоянии диалога", "user_id", userID, "state", int(sess.State))
	}
}

// handleLangToggle — callback "lang:<code>" или "lang:DONE" на шаге языков.
// Повторное нажатие кода снимает отметку; перерисовывается та же клавиатура.
func (h *Handlers) handleLangToggle(cq *tgbotapi.CallbackQuery, action string) {
	userID := cq.From.ID
	sess := h.forms.get(userID)
	if sess == nil || sess.State != StateLanguages {
		h.ack(cq, "")
		h.log.Debug("переключение языка вне шага языков", "user_id", userID)
		return
	}
	if action == "DONE" {
		sess.State = StatePlaytime
		h.ack(cq, "")
		h.send(tgbotapi.NewMessage(userID, "Сколько часов относительно MSK? Введите целое число (например: 0, +3, -2). Отправьте '-' чтобы пропустить/сохранить (при редактировании)."))
		return
	}
	if !models.IsLanguageCode(action) {
		h.ack(cq, "")
		h.log.Warn("неизвестный код языка в callback", "data", cq.Data)
		return
	}
	selected := models.ParseLanguages(sess.Data.Languages)
	if _, ok := selected[action]; ok {
		delete(selected, action)
	} else {
		selected[action] = struct{}{}
	}
	sess.Data.Languages = models.JoinLanguages(selected)

	edit := tgbotapi.NewEditMessageTextAndMarkup(
		userID, cq.Message.MessageID,
		"Выберите языки (нажмите кнопки, чтобы отметить/снять):",
		languagesKeyboard(selected),
	)
	if _, err := h.bot.Send(edit); err != nil {
		// Сообщение могло устареть: отправляем клавиатуру заново.
		h.ack(cq, "Обновлено")
		msg := tgbotapi.NewMessage(userID, "Выберите языки (нажмите кнопки, чтобы отметить/снять):")
		msg.ReplyMarkup = languagesKeyboard(selected)
		h.send(msg)
		return
	}
	h.ack(cq, "")
}

// handleConfirm — callback "confirm:yes|no" на шаге подтверждения.
func (h *Handlers) handleConfirm(ctx context.Context, cq *tgbotapi.CallbackQuery, choice string) {
	userID := cq.From.ID
	sess := h.forms.get(userID)
	if sess == nil || sess.State != StateConfirm {
		h.ack(cq, "")
		h.log.Debug("подтверждение вне шага подтверждения", "user_id", userID)
		return
	}
	h.ack(cq, "")
	switch choice {
	case "yes":
		if err := h.profiles.SaveProfile(ctx, sess.Data); err != nil {
			h.log.Error("не удалось сохранить анкету", "user_id", userID, "err", err)
			h.send(tgbotapi.NewMessage(userID, "Не удалось сохранить анкету. Попробуйте ещё раз."))
			return
		}
		h.forms.remove(userID)
		h.send(tgbotapi.NewMessage(userID, "Анкета сохранена! Используйте /search чтобы просматривать анкеты."))
	case "no":
		h.forms.remove(userID)
		h.send(tgbotapi.NewMessage(userID, "Анкета не сохранена. Начните заново с /start."))
	default:
		h.log.Warn("неизвестный выбор подтверждения", "data", cq.Data)
	}
}

// cancelDialog отбрасывает активный сеанс диалога, в каком бы шаге он ни был.
func (h *Handlers) cancelDialog(userID int64) {
	h.forms.remove(userID)
	msg := tgbotapi.NewMessage(userID, "Операция отменена.")
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	h.send(msg)
}

// formPreview — предпросмотр накопленной анкеты перед сохранением.
func formPreview(p *models.Profile) string {
	return "Анкета (предпросмотр):\n\n" +
		"Сервер: " + p.Server + "\n" +
		"Ник: " + p.Nickname + "\n" +
		"UID: " + p.UID + "\n" +
		"AR: " + p.AdventureRank + "\n" +
		"Языки: " + models.FormatLanguageFlags(p.Languages) + "\n" +
		"Часовой пояс (от MSK): " + p.Playtime + "\n" +
		"О себе: " + p.Bio + "\n"
}
