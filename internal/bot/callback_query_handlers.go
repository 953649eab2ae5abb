package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"finkid/internal/news"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	chatID := callback.Message.Chat.ID
	userID := callback.From.ID

	return b.withSpinner(ctx, chatID, func() error {
		data := strings.TrimSpace(callback.Data)

		switch data {
		case "menu":
			return b.withEmptyCallbackAnswer(callback, func() error {
				return b.handleMenuCommand(chatID)
			})
		case "menu_news":
			return b.withEmptyCallbackAnswer(callback, func() error {
				return b.handleNewsCommand(ctx, chatID, userID, "")
			})
		case "menu_last":
			return b.withEmptyCallbackAnswer(callback, func() error {
				return b.handleLastCommand(ctx, chatID, userID)
			})
		case "menu_ask":
			return b.withEmptyCallbackAnswer(callback, func() error {
				return b.sendMessageWithKeyboard(chatID, escapeMarkdownV2(askHelpText), returnKeyboard())
			})
		case "menu_settings":
			return b.withEmptyCallbackAnswer(callback, func() error {
				return b.handleSettingsCommand(ctx, chatID, userID)
			})
		case digestOffCallback:
			return b.handleDigestOffQuery(ctx, callback)
		}

		if hourUTCStr, ok := strings.CutPrefix(data, digestHourCallbackPrefix); ok {
			return b.handleDigestHourQuery(ctx, hourUTCStr, callback)
		}

		if categoryStr, ok := strings.CutPrefix(data, categoryCallbackPrefix); ok {
			return b.handleCategoryQuery(ctx, categoryStr, callback)
		}

		return nil
	})
}

func (b *Bot) handleDigestHourQuery(
	ctx context.Context,
	hourUTCStr string,
	callback *tgbotapi.CallbackQuery,
) error {
	hourUTC, err := strconv.ParseInt(strings.TrimSpace(hourUTCStr), 10, 64)
	if err != nil {
		return b.errorCallbackAnswer(callback, fmt.Errorf("parse hourUTC: %w", err))
	}

	if err = b.deps.Store.UpsertDigestHour(ctx, callback.From.ID, hourUTC); err != nil {
		return b.errorCallbackAnswer(callback, fmt.Errorf("upsert digest hour: %w", err))
	}

	if _, err = b.sender.Request(tgbotapi.NewCallback(callback.ID, "✅ Settings are updated.")); err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	return b.handleSettingsCommand(ctx, callback.Message.Chat.ID, callback.From.ID)
}

func (b *Bot) handleDigestOffQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if err := b.deps.Store.DisableDigest(ctx, callback.From.ID); err != nil {
		return b.errorCallbackAnswer(callback, fmt.Errorf("disable digest: %w", err))
	}

	if _, err := b.sender.Request(tgbotapi.NewCallback(callback.ID, "🔕 Digest is off.")); err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	return b.handleSettingsCommand(ctx, callback.Message.Chat.ID, callback.From.ID)
}

func (b *Bot) handleCategoryQuery(
	ctx context.Context,
	categoryStr string,
	callback *tgbotapi.CallbackQuery,
) error {
	index, err := strconv.Atoi(strings.TrimSpace(categoryStr))
	if err != nil {
		return b.errorCallbackAnswer(callback, fmt.Errorf("parse category: %w", err))
	}
	if index < 0 || index >= len(news.Categories) {
		return b.errorCallbackAnswer(callback, fmt.Errorf("category index is out of range: %d", index))
	}
	category := news.Categories[index]

	chatID := callback.Message.Chat.ID

	b.lastQueriesMu.Lock()
	query := b.lastQueries[chatID]
	b.lastQueriesMu.Unlock()

	return b.withEmptyCallbackAnswer(callback, func() error {
		headlines := b.deps.Headlines.Latest(ctx, b.newsAPIKey(ctx, callback.From.ID), query)

		return b.sendMessageWithKeyboard(chatID, formatHeadlines(headlines, category), categoryKeyboard())
	})
}

func (b *Bot) withEmptyCallbackAnswer(
	callback *tgbotapi.CallbackQuery,
	fn func() error,
) error {
	var errs []error

	if _, err := b.sender.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		errs = append(errs, b.errorCallbackAnswer(callback, fmt.Errorf("send request: %w", err)))
	}

	if err := fn(); err != nil {
		errs = append(errs, fmt.Errorf("call fn: %w", err))
	}

	return errors.Join(errs...)
}

func (b *Bot) errorCallbackAnswer(
	callback *tgbotapi.CallbackQuery,
	err error,
) error {
	if _, sendErr := b.sender.Request(tgbotapi.NewCallback(callback.ID, "❌ Failed.")); sendErr != nil {
		return errors.Join(err, fmt.Errorf("send request: %w", sendErr))
	}

	return err
}
