package main

import (
	"encoding/json"

	"github.com/go-telegram/bot/models"
)

// buildKeyboard renders the stored buttons as an inline keyboard,
// one button per row, in insertion order. Returns nil when empty.
func buildKeyboard(buttons []Button) *models.InlineKeyboardMarkup {
	if len(buttons) == 0 {
		return nil
	}
	rows := make([][]models.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, []models.InlineKeyboardButton{
			{Text: b.Label, URL: b.URL},
		})
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// encodeEntities stores captured message entities as JSON alongside the
// template text, so custom emoji and formatting survive restarts.
func encodeEntities(entities []models.MessageEntity) string {
	if len(entities) == 0 {
		return ""
	}
	data, err := json.Marshal(entities)
	if err != nil {
		return ""
	}
	return string(data)
}

// decodeEntities is the inverse of encodeEntities; malformed input
// degrades to plain text rather than failing the send.
func decodeEntities(raw string) []models.MessageEntity {
	if raw == "" {
		return nil
	}
	var entities []models.MessageEntity
	if err := json.Unmarshal([]byte(raw), &entities); err != nil {
		return nil
	}
	return entities
}
