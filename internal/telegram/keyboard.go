package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/i474232898/canilaba/internal/users"
)

const (
	callbackDayPrefix = "day:"
	callbackSave      = "day:save"
	callbackCancel    = "day:cancel"
)

// daysKeyboard renders one toggle button per weekday plus save and cancel.
func daysKeyboard(selected users.WeekdaySet) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(users.Weekdays)+1)
	for i, d := range users.Weekdays {
		label := d.String()
		if selected.Has(d) {
			label = "✅ " + label
		}
		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         label,
			CallbackData: callbackDayPrefix + strconv.Itoa(i),
		}})
	}
	rows = append(rows, []models.InlineKeyboardButton{
		{Text: "💾 Save", CallbackData: callbackSave},
		{Text: "Cancel", CallbackData: callbackCancel},
	})
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// parseDayCallback returns the index into users.Weekdays encoded in data.
func parseDayCallback(data string) (int, error) {
	raw, ok := strings.CutPrefix(data, callbackDayPrefix)
	if !ok {
		return 0, fmt.Errorf("not a day callback: %q", data)
	}
	i, err := strconv.Atoi(raw)
	if err != nil || i < 0 || i >= len(users.Weekdays) {
		return 0, fmt.Errorf("invalid day callback: %q", data)
	}
	return i, nil
}

func locationKeyboard() *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{{
			{Text: "📍 Share my location", RequestLocation: true},
		}},
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}
