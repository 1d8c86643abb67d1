package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/NoEmotionGuy/genshin-teammate-bot/models"
)

// Кнопки панели действий при просмотре анкет и главного меню.
const (
	btnLike      = "👍 Лайк"
	btnMessage   = "✉️ Письмо"
	btnDislike   = "👎 Дизлайк"
	btnStop      = "⏹️ Стоп"
	btnBrowse    = "Смотреть анкеты"
	btnMyProfile = "Моя анкета"
)

// serversKeyboard — инлайн-клавиатура выбора сервера; prefix задаёт
// пространство имён callback-данных ("server" или "browse_server").
func serversKeyboard(prefix string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, s := range models.Servers {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(s.Label, prefix+":"+s.Key))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// languagesKeyboard — мультивыбор языков: выбранные коды помечены галочкой,
// отдельный ряд с кнопкой "Готово" завершает шаг.
func languagesKeyboard(selected map[string]struct{}) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, l := range models.Languages {
		label := l.Emoji + " " + l.Code
		if _, ok := selected[l.Code]; ok {
			label += " ✅"
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, "lang:"+l.Code))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Готово", "lang:DONE"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// actionKeyboard — панель действий под просматриваемой анкетой.
func actionKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnLike),
			tgbotapi.NewKeyboardButton(btnMessage),
			tgbotapi.NewKeyboardButton(btnDislike),
			tgbotapi.NewKeyboardButton(btnStop),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// mainMenuKeyboard — постоянное меню вне просмотра.
func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBrowse),
			tgbotapi.NewKeyboardButton(btnMyProfile),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// confirmKeyboard — подтверждение сохранения анкеты после предпросмотра.
func confirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Подтвердить и сохранить", "confirm:yes"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Отмена", "confirm:no"),
		),
	)
}

// profileMenuKeyboard — меню /start при уже существующей анкете.
func profileMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Показать мою анкету", "profile:view"),
			tgbotapi.NewInlineKeyboardButtonData("Редактировать анкету", "profile:edit"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Удалить анкету", "profile:delete"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Отмена", "profile:cancel"),
		),
	)
}

// ownProfileKeyboard — кнопки под собственной анкетой.
func ownProfileKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Удалить анкету", "profile:delete"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Редактировать", "profile:edit"),
		),
	)
}

// deleteConfirmKeyboard — двухшаговое подтверждение удаления своей анкеты.
func deleteConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить удаление", "profile:delete_confirm"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "profile:delete_cancel"),
		),
	)
}
