package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot/models"
	"github.com/smith3v/lexilogio/pkg/db"
)

// CountPresets are the one-tap question counts offered on the count screen.
var CountPresets = []int{10, 15, 25, 50}

func RenderPreferences(prefs db.Preferences) (string, *models.InlineKeyboardMarkup, error) {
	countData, err := BuildCountCallback()
	if err != nil {
		return "", nil, err
	}
	spacedData, err := BuildToggleCallback(ScreenSpaced)
	if err != nil {
		return "", nil, err
	}
	reversedData, err := BuildToggleCallback(ScreenReversed)
	if err != nil {
		return "", nil, err
	}
	roundingData, err := BuildToggleCallback(ScreenRounding)
	if err != nil {
		return "", nil, err
	}
	closeData, err := BuildCloseCallback()
	if err != nil {
		return "", nil, err
	}

	rounding := prefs.RoundingMode
	if rounding == "" {
		rounding = db.RoundingBinZero
	}
	text := fmt.Sprintf(
		"Preferences\n- Questions per drill: %d\n- Spaced repetition: %s\n- Reversed drill: %s\n- Bin weights: %s\n- Rounding: %s",
		prefs.GetQuestionCount(),
		formatToggle(prefs.GetSpacedRepetition()),
		formatToggle(prefs.GetReversedDrill()),
		formatWeights(prefs.GetBinDistribution()),
		rounding,
	)

	keyboard := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "Questions", CallbackData: countData},
				{Text: toggleLabel("Spaced", prefs.GetSpacedRepetition()), CallbackData: spacedData},
			},
			{
				{Text: toggleLabel("Reversed", prefs.GetReversedDrill()), CallbackData: reversedData},
				{Text: "Rounding: " + rounding, CallbackData: roundingData},
			},
			{
				{Text: "Close", CallbackData: closeData},
			},
		},
	}

	return text, keyboard, nil
}

func RenderCount(current int) (string, *models.InlineKeyboardMarkup, error) {
	decData, err := BuildCountDecCallback()
	if err != nil {
		return "", nil, err
	}
	incData, err := BuildCountIncCallback()
	if err != nil {
		return "", nil, err
	}
	backData, err := BuildHomeCallback()
	if err != nil {
		return "", nil, err
	}

	presets := make([]models.InlineKeyboardButton, 0, len(CountPresets))
	for _, value := range CountPresets {
		data, err := BuildCountSetCallback(value)
		if err != nil {
			return "", nil, err
		}
		presets = append(presets, models.InlineKeyboardButton{Text: strconv.Itoa(value), CallbackData: data})
	}

	text := fmt.Sprintf("Questions per drill\nCurrent value: %d", current)
	keyboard := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: fmt.Sprintf("-%d", CountStep), CallbackData: decData},
				{Text: fmt.Sprintf("+%d", CountStep), CallbackData: incData},
			},
			presets,
			{
				{Text: "Back", CallbackData: backData},
			},
		},
	}
	return text, keyboard, nil
}

func formatWeights(weights [db.BinSize]float64) string {
	parts := make([]string, len(weights))
	for i, w := range weights {
		parts[i] = strconv.FormatFloat(w, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

func formatToggle(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}

func toggleLabel(label string, enabled bool) string {
	if enabled {
		return fmt.Sprintf("%s ✅", label)
	}
	return fmt.Sprintf("%s ❌", label)
}
