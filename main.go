package main

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/NoEmotionGuy/genshin-teammate-bot/config"
	"github.com/NoEmotionGuy/genshin-teammate-bot/db"
	"github.com/NoEmotionGuy/genshin-teammate-bot/handlers"
	"github.com/NoEmotionGuy/genshin-teammate-bot/logging"
)

func main() {
	cfg := config.MustLoad()
	log := logging.New(cfg.LogLevel)

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		log.Error("не удалось создать бота", "token", logging.MaskToken(cfg.Token), "err", err)
		return
	}
	log.Info("бот запущен", "username", bot.Self.UserName)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.Timeout)
	store, err := db.ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	cancel()
	if err != nil {
		log.Error("не удалось подключиться к MongoDB", "err", err)
		return
	}
	log.Info("хранилище готово", "database", cfg.Mongo.Database)

	if cfg.OperatorID == 0 {
		log.Warn("OPERATOR_ID не задан: жалобы будут только логироваться")
	}

	h := handlers.New(bot, log, store, store, cfg.OperatorID)

	// Список команд в меню Telegram; неудача не мешает запуску.
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Начать / создать анкету"},
		tgbotapi.BotCommand{Command: "search", Description: "Поиск/просмотр анкет"},
		tgbotapi.BotCommand{Command: "edit", Description: "Редактировать вашу анкету"},
	)
	if _, err := bot.Request(commands); err != nil {
		log.Warn("не удалось установить команды бота", "err", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	for update := range updates {
		h.HandleUpdate(context.Background(), update)
	}
}
