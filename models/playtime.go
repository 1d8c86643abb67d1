package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Ошибки нормализации часового пояса.
var (
	// ErrPlaytimeRange — числовой сдвиг вне диапазона от -12 до +14.
	ErrPlaytimeRange = errors.New("сдвиг от MSK вне диапазона -12..+14")
	// ErrPlaytimeFormat — не число и не текст длиной 1..64 символа.
	ErrPlaytimeFormat = errors.New("непонятный формат часового пояса")
)

// NormalizePlaytime приводит ввод пользователя к хранимой форме.
// Числовой ввод (целое, допускается префикс "MSK") нормализуется в "MSK+N"/"MSK-N"
// и должен лежать в диапазоне [-12, 14]. Нечисловой ввод длиной 1..64 символа
// сохраняется как есть (например "после работы").
func NormalizePlaytime(txt string) (string, error) {
	val := strings.ReplaceAll(strings.ToUpper(txt), " ", "")
	parsed, ok := parseOffset(val)
	if !ok {
		if n := len([]rune(txt)); n >= 1 && n <= 64 {
			return txt, nil
		}
		return "", ErrPlaytimeFormat
	}
	if parsed < -12 || parsed > 14 {
		return "", ErrPlaytimeRange
	}
	return fmt.Sprintf("MSK%+d", parsed), nil
}

func parseOffset(val string) (int, bool) {
	if strings.HasPrefix(val, "MSK") {
		rest := val[3:]
		if rest == "" || rest == "+" || rest == "+0" {
			return 0, true
		}
		n, err := strconv.Atoi(strings.ReplaceAll(rest, "+", ""))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return n, true
}
