package models

import (
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile описывает анкету игрока. Одна анкета на Telegram-аккаунт.
type Profile struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	TgID          int64              `bson:"tg_id"`
	Server        string             `bson:"server"`
	Nickname      string             `bson:"nickname"`
	UID           string             `bson:"uid"`
	AdventureRank string             `bson:"adventure_rank"` // "1".."60" или пустая строка
	Languages     string             `bson:"languages"`      // отсортированные коды через запятую: "EN,RU"
	Playtime      string             `bson:"playtime"`       // "MSK+3" либо произвольный текст
	Bio           string             `bson:"bio"`
	Platforms     string             `bson:"platforms"`
	Playstyle     string             `bson:"playstyle"`
	CreatedAt     time.Time          `bson:"created_at"`
}

// Like — лайк анкеты: viewer поставил лайк анкете владельца owner.
// Пара (viewer_id, owner_id) уникальна на уровне хранилища.
type Like struct {
	ViewerID  int64     `bson:"viewer_id"`
	OwnerID   int64     `bson:"owner_id"`
	CreatedAt time.Time `bson:"created_at"`
}

// Server — игровой сервер: подпись для кнопки и ключ, который хранится в анкете.
type Server struct {
	Label string
	Key   string
}

// Servers — фиксированный список серверов Genshin.
var Servers = []Server{
	{"Asia", "Asia"},
	{"Europe", "Europe"},
	{"North America", "NA"},
	{"TW/HK/MO", "TW"},
	{"China", "CN"},
}

// Language — код языка и флаг для отображения.
type Language struct {
	Code  string
	Emoji string
}

// Languages — фиксированный каталог языков, предлагаемых кнопками.
var Languages = []Language{
	{"RU", "🇷🇺"}, {"EN", "🇬🇧"}, {"UA", "🇺🇦"}, {"BY", "🇧🇾"},
	{"KZ", "🇰🇿"}, {"RS", "🇷🇸"}, {"EE", "🇪🇪"}, {"BG", "🇧🇬"},
	{"LT", "🇱🇹"}, {"LV", "🇱🇻"}, {"GE", "🇬🇪"}, {"MD", "🇲🇩"},
}

var langEmoji = func() map[string]string {
	m := make(map[string]string, len(Languages))
	for _, l := range Languages {
		m[l.Code] = l.Emoji
	}
	return m
}()

// IsLanguageCode сообщает, входит ли код в каталог языков.
func IsLanguageCode(code string) bool {
	_, ok := langEmoji[code]
	return ok
}

// ParseLanguages разбирает строку вида "en, RU" в множество кодов в верхнем регистре.
func ParseLanguages(raw string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, p := range strings.Split(raw, ",") {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			set[p] = struct{}{}
		}
	}
	return set
}

// JoinLanguages сериализует множество кодов в каноническую форму:
// уникальные коды, отсортированные, через запятую.
func JoinLanguages(set map[string]struct{}) string {
	codes := make([]string, 0, len(set))
	for c := range set {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return strings.Join(codes, ",")
}

// FormatLanguageFlags превращает сохранённую строку языков в строку флагов.
// Неизвестный код выводится как есть.
func FormatLanguageFlags(raw string) string {
	if raw == "" {
		return ""
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if em, ok := langEmoji[p]; ok {
			out = append(out, em)
		} else {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
