package handlers

// Тесты диалога анкеты.
//
// Проверяем:
//  - полный проход создания с повторным запросом невалидного AR;
//  - идемпотентность двойного переключения языка;
//  - сохранение полей по '-' в режиме редактирования;
//  - '-' в режиме создания (пустое значение);
//  - отмену диалога на произвольном шаге;
//  - свободный текст на шаге языков.

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NoEmotionGuy/genshin-teammate-bot/db"
	"github.com/NoEmotionGuy/genshin-teammate-bot/models"
)

// Полный проход создания анкеты: AR "65" и "abc" отклоняются без смены шага,
// "55" принимается; итоговая анкета сохраняется со значением 55.
func TestForm_CreateDialogWithRankRetry(t *testing.T) {
	h, fake, store := newTestHandlers(t, 0)
	ctx := context.Background()

	h.HandleUpdate(ctx, commandMsg(1, "/start"))
	require.NotNil(t, h.forms.get(1))
	require.Equal(t, StateChoosingServer, h.forms.get(1).State)

	h.HandleUpdate(ctx, callback(1, "server:Europe"))
	require.Equal(t, StateNickname, h.forms.get(1).State)

	h.HandleUpdate(ctx, userMsg(1, "Aether"))
	require.Equal(t, StateUID, h.forms.get(1).State)

	h.HandleUpdate(ctx, userMsg(1, "700000001"))
	require.Equal(t, StateAdventureRank, h.forms.get(1).State)

	// Вне диапазона: шаг не меняется, значение не сохраняется.
	h.HandleUpdate(ctx, userMsg(1, "65"))
	require.Equal(t, StateAdventureRank, h.forms.get(1).State)
	require.Equal(t, "", h.forms.get(1).Data.AdventureRank)
	require.Contains(t, fake.lastTextTo(1), "AR вне допустимого диапазона")

	// Не число: то же самое.
	h.HandleUpdate(ctx, userMsg(1, "abc"))
	require.Equal(t, StateAdventureRank, h.forms.get(1).State)
	require.Contains(t, fake.lastTextTo(1), "Неверный формат AR")

	h.HandleUpdate(ctx, userMsg(1, "55"))
	require.Equal(t, StateLanguages, h.forms.get(1).State)

	h.HandleUpdate(ctx, callback(1, "lang:RU"))
	h.HandleUpdate(ctx, callback(1, "lang:EN"))
	require.Equal(t, "EN,RU", h.forms.get(1).Data.Languages)

	h.HandleUpdate(ctx, callback(1, "lang:DONE"))
	require.Equal(t, StatePlaytime, h.forms.get(1).State)

	h.HandleUpdate(ctx, userMsg(1, "+3"))
	require.Equal(t, StateBio, h.forms.get(1).State)
	require.Equal(t, "MSK+3", h.forms.get(1).Data.Playtime)

	h.HandleUpdate(ctx, userMsg(1, "Ищу со-оп"))
	require.Equal(t, StateConfirm, h.forms.get(1).State)
	require.Contains(t, fake.lastTextTo(1), "Анкета (предпросмотр):")

	h.HandleUpdate(ctx, callback(1, "confirm:yes"))
	require.Nil(t, h.forms.get(1))

	prof, err := store.ProfileByTg(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Europe", prof.Server)
	require.Equal(t, "Aether", prof.Nickname)
	require.Equal(t, "700000001", prof.UID)
	require.Equal(t, "55", prof.AdventureRank)
	require.Equal(t, "EN,RU", prof.Languages)
	require.Equal(t, "MSK+3", prof.Playtime)
	require.Equal(t, "Ищу со-оп", prof.Bio)
}

// Двойное переключение одного кода возвращает множество к исходному виду.
func TestForm_LanguageDoubleToggleIdempotent(t *testing.T) {
	h, _, _ := newTestHandlers(t, 0)
	ctx := context.Background()

	h.forms.set(1, &formSession{State: StateLanguages, Data: models.Profile{TgID: 1, Languages: "EN"}})

	h.HandleUpdate(ctx, callback(1, "lang:RU"))
	require.Equal(t, "EN,RU", h.forms.get(1).Data.Languages)
	h.HandleUpdate(ctx, callback(1, "lang:RU"))
	require.Equal(t, "EN", h.forms.get(1).Data.Languages)
}

// Свободный текст на шаге языков отклоняется подсказкой, шаг не меняется.
func TestForm_LanguagesRejectFreeText(t *testing.T) {
	h, fake, _ := newTestHandlers(t, 0)
	ctx := context.Background()

	h.forms.set(1, &formSession{State: StateLanguages, Data: models.Profile{TgID: 1}})

	h.HandleUpdate(ctx, userMsg(1, "русский и английский"))
	require.Equal(t, StateLanguages, h.forms.get(1).State)
	require.Contains(t, fake.lastTextTo(1), "используйте кнопки")
}

// В режиме редактирования '-' на каждом шаге оставляет существующее значение.
func TestForm_EditDashKeepsFields(t *testing.T) {
	h, _, store := newTestHandlers(t, 0)
	ctx := context.Background()

	require.NoError(t, store.SaveProfile(ctx, models.Profile{
		TgID: 1, Server: "Asia", Nickname: "Старый ник", UID: "u-1",
		AdventureRank: "40", Languages: "RU", Playtime: "MSK+1", Bio: "как есть",
	}))

	h.HandleUpdate(ctx, commandMsg(1, "/edit"))
	sess := h.forms.get(1)
	require.NotNil(t, sess)
	require.True(t, sess.Editing)
	require.Equal(t, StateNickname, sess.State)

	h.HandleUpdate(ctx, userMsg(1, "-")) // ник
	h.HandleUpdate(ctx, userMsg(1, "-")) // uid
	h.HandleUpdate(ctx, userMsg(1, "-")) // AR
	h.HandleUpdate(ctx, callback(1, "lang:DONE"))
	h.HandleUpdate(ctx, userMsg(1, "-")) // часовой пояс
	h.HandleUpdate(ctx, userMsg(1, "-")) // о себе
	h.HandleUpdate(ctx, callback(1, "confirm:yes"))

	prof, err := store.ProfileByTg(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Старый ник", prof.Nickname)
	require.Equal(t, "u-1", prof.UID)
	require.Equal(t, "40", prof.AdventureRank)
	require.Equal(t, "RU", prof.Languages)
	require.Equal(t, "MSK+1", prof.Playtime)
	require.Equal(t, "как есть", prof.Bio)
}

// В режиме создания '-' на шагах UID и AR сохраняет пустую строку.
func TestForm_CreateDashStoresEmpty(t *testing.T) {
	h, _, store := newTestHandlers(t, 0)
	ctx := context.Background()

	h.HandleUpdate(ctx, commandMsg(1, "/start"))
	h.HandleUpdate(ctx, callback(1, "server:Asia"))
	h.HandleUpdate(ctx, userMsg(1, "Paimon"))
	h.HandleUpdate(ctx, userMsg(1, "-"))
	h.HandleUpdate(ctx, userMsg(1, "-"))
	h.HandleUpdate(ctx, callback(1, "lang:DONE"))
	h.HandleUpdate(ctx, userMsg(1, "-"))
	h.HandleUpdate(ctx, userMsg(1, "готова помочь"))
	h.HandleUpdate(ctx, callback(1, "confirm:yes"))

	prof, err := store.ProfileByTg(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "", prof.UID)
	require.Equal(t, "", prof.AdventureRank)
	require.Equal(t, "", prof.Playtime)
}

// Нечисловой часовой пояс длиной 1..64 принимается как есть.
func TestForm_PlaytimeFreeTextFallback(t *testing.T) {
	h, _, _ := newTestHandlers(t, 0)
	ctx := context.Background()

	h.forms.set(1, &formSession{State: StatePlaytime, Data: models.Profile{TgID: 1}})

	h.HandleUpdate(ctx, userMsg(1, "после работы"))
	require.Equal(t, StateBio, h.forms.get(1).State)
	require.Equal(t, "после работы", h.forms.get(1).Data.Playtime)
}

// Числовой часовой пояс вне [-12, +14] не продвигает шаг.
func TestForm_PlaytimeOutOfRange(t *testing.T) {
	h, fake, _ := newTestHandlers(t, 0)
	ctx := context.Background()

	h.forms.set(1, &formSession{State: StatePlaytime, Data: models.Profile{TgID: 1}})

	h.HandleUpdate(ctx, userMsg(1, "15"))
	require.Equal(t, StatePlaytime, h.forms.get(1).State)
	require.Contains(t, fake.lastTextTo(1), "в диапазоне от -12 до +14")
}

// /cancel отбрасывает сеанс на любом шаге; в хранилище ничего не попадает.
func TestForm_CancelDiscardsSession(t *testing.T) {
	h, _, store := newTestHandlers(t, 0)
	ctx := context.Background()

	h.HandleUpdate(ctx, commandMsg(1, "/start"))
	h.HandleUpdate(ctx, callback(1, "server:Europe"))
	h.HandleUpdate(ctx, userMsg(1, "Aether"))
	h.HandleUpdate(ctx, commandMsg(1, "/cancel"))

	require.Nil(t, h.forms.get(1))
	_, err := store.ProfileByTg(ctx, 1)
	require.ErrorIs(t, err, db.ErrProfileNotFound)
}

// Отказ на подтверждении ничего не сохраняет.
func TestForm_ConfirmNoDiscards(t *testing.T) {
	h, _, store := newTestHandlers(t, 0)
	ctx := context.Background()

	h.forms.set(1, &formSession{State: StateConfirm, Data: models.Profile{TgID: 1, Server: "Europe", Nickname: "x"}})

	h.HandleUpdate(ctx, callback(1, "confirm:no"))
	require.Nil(t, h.forms.get(1))
	_, err := store.ProfileByTg(ctx, 1)
	require.ErrorIs(t, err, db.ErrProfileNotFound)
}

// /start при существующей анкете открывает меню управления, а не диалог.
func TestForm_StartWithExistingProfileShowsMenu(t *testing.T) {
	h, fake, store := newTestHandlers(t, 0)
	ctx := context.Background()

	require.NoError(t, store.SaveProfile(ctx, models.Profile{TgID: 1, Server: "Europe"}))

	h.HandleUpdate(ctx, commandMsg(1, "/start"))
	require.Nil(t, h.forms.get(1))
	require.Contains(t, fake.lastTextTo(1), "уже есть сохранённая анкета")
}

// Ник длиннее 64 символов обрезается.
func TestForm_NicknameTruncated(t *testing.T) {
	h, _, _ := newTestHandlers(t, 0)
	ctx := context.Background()

	h.forms.set(1, &formSession{State: StateNickname, Data: models.Profile{TgID: 1}})

	long := ""
	for i := 0; i < 80; i++ {
		long += "я"
	}
	h.HandleUpdate(ctx, userMsg(1, long))
	require.Len(t, []rune(h.forms.get(1).Data.Nickname), 64)
}
