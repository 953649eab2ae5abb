package bot

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"finkid/internal/assistant"
	"finkid/internal/database"
	"finkid/internal/news"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const welcomeText = `🍼 *Welcome to FinKid\!*

I explain money news like you're five\. I can:

– Summarize a finance article: just send me a link or use /summarize _link_
– Show the latest money news with /news or /news _topic_
– Answer your money questions with /ask _question_
– Show your last summary again with /last
– Send you a daily news digest, see /settings
– Use your own NewsAPI key with /apikey _key_`

const settingsText = `*⚙️ Settings*

Current UTC time is %s\.

Daily digest: %s
NewsAPI key: %s

Pick a digest hour \(UTC\) below or turn the digest off\.
Use /apikey _key_ to set your NewsAPI key or /apikey off to remove it\.`

const (
	askHelpText    = "🤖 Send /ask followed by your question, e.g. /ask what is a stock?"
	noSummaryText  = "✖️ No summary yet\\. Send me a link to a finance article\\!"
	apiKeySaved    = "✅ NewsAPI key is saved\\. I removed your message to keep the key private\\."
	apiKeyRemoved  = "✅ NewsAPI key is removed\\. I'll use free news feeds\\."
	apiKeyHelpText = "🔑 Send /apikey followed by your NewsAPI key, or /apikey off to remove it\\."
)

func (b *Bot) handleMenuCommand(chatID int64) error {
	return b.sendMessageWithKeyboard(chatID, "❔ *Choose an option:*", menuKeyboard())
}

func (b *Bot) handleNewsCommand(ctx context.Context, chatID int64, userID int64, query string) error {
	headlines := b.deps.Headlines.Latest(ctx, b.newsAPIKey(ctx, userID), query)

	b.lastQueriesMu.Lock()
	b.lastQueries[chatID] = headlines.RequestedQuery()
	b.lastQueriesMu.Unlock()

	return b.sendMessageWithKeyboard(chatID, formatHeadlines(headlines, news.CategoryAll), categoryKeyboard())
}

// newsAPIKey returns the user's key, falling back to the bot-wide one.
func (b *Bot) newsAPIKey(ctx context.Context, userID int64) string {
	settings, err := b.deps.Store.GetUserSettingsWithDefault(ctx, userID)
	if err != nil {
		b.log.WarnContext(ctx, "Failed to get user settings",
			"error", err,
			"userID", userID)

		return b.defaultNewsAPIKey
	}

	if settings.NewsAPIKey != "" {
		return settings.NewsAPIKey
	}

	return b.defaultNewsAPIKey
}

func (b *Bot) handleAskCommand(ctx context.Context, chatID int64, userID int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return b.sendMessageWithKeyboard(chatID, escapeMarkdownV2(askHelpText), returnKeyboard())
	}

	question := assistant.Question{Text: text}

	last, err := b.deps.Store.GetLastSummary(ctx, userID)
	switch {
	case err == nil:
		question.Context = last.Summary
	case !errors.Is(err, database.ErrNotFound):
		b.log.WarnContext(ctx, "Failed to get last summary",
			"error", err,
			"userID", userID)
	}

	answer, err := b.deps.Assistant.Ask(ctx, question)
	if err != nil {
		b.log.ErrorContext(ctx, "Failed to ask assistant",
			"error", err,
			"userID", userID)

		answer = assistant.FallbackAnswer(question)
	}

	return b.sendMessageWithKeyboard(chatID, "🤖 "+escapeMarkdownV2(answer), returnKeyboard())
}

func (b *Bot) handleLastCommand(ctx context.Context, chatID int64, userID int64) error {
	last, err := b.deps.Store.GetLastSummary(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return b.sendMessageWithKeyboard(chatID, noSummaryText, returnKeyboard())
	}
	if err != nil {
		errs := []error{fmt.Errorf("get last summary: %w", err)}

		if sendErr := b.sendMessageWithKeyboard(chatID, failedText, returnKeyboard()); sendErr != nil {
			errs = append(errs, fmt.Errorf("send message with keyboard: %w", sendErr))
		}

		return errors.Join(errs...)
	}

	return b.sendMessageWithKeyboard(chatID, formatSummary(last.URL, last.Summary), returnKeyboard())
}

func (b *Bot) handleAPIKeyCommand(ctx context.Context, message *tgbotapi.Message, args string) error {
	chatID := message.Chat.ID
	userID := message.From.ID

	if args == "" {
		return b.sendMessageWithKeyboard(chatID, apiKeyHelpText, returnKeyboard())
	}

	key, reply := args, apiKeySaved
	if strings.EqualFold(args, "off") {
		key, reply = "", apiKeyRemoved
	}

	if err := b.deps.Store.UpsertNewsAPIKey(ctx, userID, key); err != nil {
		errs := []error{fmt.Errorf("upsert news API key: %w", err)}

		if sendErr := b.sendMessageWithKeyboard(chatID, failedText, returnKeyboard()); sendErr != nil {
			errs = append(errs, fmt.Errorf("send message with keyboard: %w", sendErr))
		}

		return errors.Join(errs...)
	}

	if key != "" {
		if _, err := b.sender.Request(tgbotapi.NewDeleteMessage(chatID, message.MessageID)); err != nil {
			b.log.WarnContext(ctx, "Failed to delete API key message",
				"error", err,
				"chatID", chatID,
				"messageID", message.MessageID)
		}
	}

	return b.sendMessageWithKeyboard(chatID, reply, returnKeyboard())
}

func (b *Bot) handleSettingsCommand(ctx context.Context, chatID int64, userID int64) error {
	settings, err := b.deps.Store.GetUserSettingsWithDefault(ctx, userID)
	if err != nil {
		errs := []error{fmt.Errorf("get user settings with default: %w", err)}

		if sendErr := b.sendMessageWithKeyboard(chatID, failedText, returnKeyboard()); sendErr != nil {
			errs = append(errs, fmt.Errorf("send message with keyboard: %w", sendErr))
		}

		return errors.Join(errs...)
	}

	digest := "off"
	if settings.DigestEnabled {
		digest = fmt.Sprintf("on at %02d:00 UTC", settings.DigestHourUTC)
	}

	apiKey := "not set, using free news feeds"
	if settings.NewsAPIKey != "" {
		apiKey = "set"
	}

	return b.sendMessageWithKeyboard(
		chatID,
		fmt.Sprintf(settingsText, time.Now().UTC().Format("15:04"), escapeMarkdownV2(digest), escapeMarkdownV2(apiKey)),
		settingsKeyboard(),
	)
}

func formatSummary(rawURL string, text string) string {
	label := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		label = strings.TrimPrefix(u.Hostname(), "www.")
	}

	return fmt.Sprintf("📰 [%s](%s)\n\n%s",
		escapeMarkdownV2(label),
		escapeLinkURL(rawURL),
		escapeMarkdownV2(text))
}
