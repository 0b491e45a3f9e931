package ui

import (
	"fmt"
	"strconv"

	"github.com/go-telegram/bot/models"
)

var gradeLabels = [5]string{"1 ✗", "2", "3", "4", "5 ✓"}

// RenderPrompt shows the prompt side of a card with a button revealing the
// response.
func RenderPrompt(token string, position, total int, prompt string) (string, *models.InlineKeyboardMarkup, error) {
	showData, err := BuildShowCallback(token)
	if err != nil {
		return "", nil, err
	}
	stopData, err := BuildStopCallback(token)
	if err != nil {
		return "", nil, err
	}

	text := fmt.Sprintf("%d/%d\n%s", position, total, prompt)
	keyboard := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "Show answer", CallbackData: showData},
				{Text: "Stop", CallbackData: stopData},
			},
		},
	}
	return text, keyboard, nil
}

// RenderAnswer shows both sides of a card with the grade buttons.
func RenderAnswer(token string, position, total int, prompt, response string) (string, *models.InlineKeyboardMarkup, error) {
	grades := make([]models.InlineKeyboardButton, 0, len(gradeLabels))
	for i, label := range gradeLabels {
		data, err := BuildGradeCallback(token, i+1)
		if err != nil {
			return "", nil, err
		}
		grades = append(grades, models.InlineKeyboardButton{Text: label, CallbackData: data})
	}
	stopData, err := BuildStopCallback(token)
	if err != nil {
		return "", nil, err
	}

	text := fmt.Sprintf("%d/%d\n%s\n\n%s", position, total, prompt, response)
	keyboard := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			grades,
			{
				{Text: "Stop", CallbackData: stopData},
			},
		},
	}
	return text, keyboard, nil
}

// GradeLabel returns the button label for grade.
func GradeLabel(grade int) string {
	if grade < 1 || grade > len(gradeLabels) {
		return strconv.Itoa(grade)
	}
	return gradeLabels[grade-1]
}
