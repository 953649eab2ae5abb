package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"finkid/internal/news"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	hoursPerDay               = 24
	digestHourKeyboardRowSize = 6
	digestHourCallbackPrefix  = "settings_digest_hour_"
	digestOffCallback         = "settings_digest_off"
	categoryCallbackPrefix    = "news_cat_"
	categoryKeyboardRowSize   = 3
)

func (b *Bot) sendMessageWithKeyboard(
	chatID int64,
	text string,
	keyboard [][]tgbotapi.InlineKeyboardButton,
) error {
	normalizedText := strings.ToValidUTF8(text, "?")
	if normalizedText != text {
		b.log.Warn("Message text had invalid UTF-8 and was normalized",
			"chatID", chatID,
			"originalLen", len(text),
			"normalizedLen", len(normalizedText))
	}

	chunks := splitMessage(normalizedText, telegramMessageMaxLength)

	var errs []error
	for i, chunk := range chunks {
		message := tgbotapi.NewMessage(chatID, chunk)

		// See https://core.telegram.org/bots/api#markdownv2-style.
		message.ParseMode = tgbotapi.ModeMarkdownV2

		message.DisableWebPagePreview = true
		if i == len(chunks)-1 && len(keyboard) != 0 {
			message.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(keyboard...)
		}

		if _, err := b.sender.Send(message); err != nil {
			errs = append(errs, fmt.Errorf("send chunk %d/%d: %w", i+1, len(chunks), err))
		}
	}

	return errors.Join(errs...)
}

func returnKeyboard() [][]tgbotapi.InlineKeyboardButton {
	return [][]tgbotapi.InlineKeyboardButton{
		{tgbotapi.NewInlineKeyboardButtonData("⬅️ Return to menu", "menu")},
	}
}

func menuKeyboard() [][]tgbotapi.InlineKeyboardButton {
	return [][]tgbotapi.InlineKeyboardButton{
		{
			tgbotapi.NewInlineKeyboardButtonData("📰 Money news", "menu_news"),
			tgbotapi.NewInlineKeyboardButtonData("🍼 Last summary", "menu_last"),
		},
		{
			tgbotapi.NewInlineKeyboardButtonData("🤖 Ask a question", "menu_ask"),
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Settings", "menu_settings"),
		},
	}
}

func categoryKeyboard() [][]tgbotapi.InlineKeyboardButton {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	for i, category := range news.Categories {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(category, categoryCallbackPrefix+strconv.Itoa(i)))
		if len(row) == categoryKeyboardRowSize {
			keyboard = append(keyboard, row)
			row = nil
		}
	}
	if len(row) != 0 {
		keyboard = append(keyboard, row)
	}

	return append(keyboard, returnKeyboard()...)
}

func settingsKeyboard() [][]tgbotapi.InlineKeyboardButton {
	var keyboard [][]tgbotapi.InlineKeyboardButton

	for i := 0; i < hoursPerDay; i += digestHourKeyboardRowSize {
		var row []tgbotapi.InlineKeyboardButton

		for j := i; j < i+digestHourKeyboardRowSize && j < hoursPerDay; j++ {
			hour := fmt.Sprintf("%02d", j)
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(hour, digestHourCallbackPrefix+hour))
		}

		keyboard = append(keyboard, row)
	}

	keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("🔕 Turn digest off", digestOffCallback),
	})

	return append(keyboard, returnKeyboard()...)
}
