package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"finkid/internal/article"
	"finkid/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"mvdan.cc/xurls/v2"
)

const (
	stillWorkingText  = "⏳ I'm still reading your previous link\\. One article at a time, please\\!"
	invalidURLText    = "🙈 That doesn't look like a valid link\\. Send a full address starting with http:// or https://\\."
	unsummarizedText  = "😕 I couldn't summarize this article\\. Try another link\\!"
	failedText        = "❌ Something went wrong\\. Please try again later\\."
	summarizeHelpText = "🔗 Send /summarize followed by a link to a finance article\\."
	unknownCommand    = "🤷 I don't know this command\\. Here's what I can do:"
)

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	userID := message.From.ID

	return b.withSpinner(ctx, chatID, func() error {
		command, args := splitCommand(message.Text)

		switch command {
		case "":
			return b.handleRandomText(ctx, chatID, userID, args)
		case "/start":
			return b.sendMessageWithKeyboard(chatID, welcomeText, menuKeyboard())
		case "/menu":
			return b.handleMenuCommand(chatID)
		case "/news":
			return b.handleNewsCommand(ctx, chatID, userID, args)
		case "/summarize":
			return b.handleSummarizeCommand(ctx, chatID, userID, args)
		case "/ask":
			return b.handleAskCommand(ctx, chatID, userID, args)
		case "/last":
			return b.handleLastCommand(ctx, chatID, userID)
		case "/apikey":
			return b.handleAPIKeyCommand(ctx, message, args)
		case "/settings":
			return b.handleSettingsCommand(ctx, chatID, userID)
		default:
			return b.sendMessageWithKeyboard(chatID, unknownCommand, menuKeyboard())
		}
	})
}

// splitCommand returns the lowercased command without the @bot suffix and
// its arguments. Plain text yields an empty command.
func splitCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", text
	}

	command, args, _ := strings.Cut(text, " ")
	command, _, _ = strings.Cut(command, "@")

	return strings.ToLower(command), strings.TrimSpace(args)
}

// handleRandomText summarizes the first link in text, or forwards the text
// to the assistant when there is none.
func (b *Bot) handleRandomText(ctx context.Context, chatID int64, userID int64, text string) error {
	if text == "" {
		return nil
	}

	if link := xurls.Strict().FindString(text); link != "" {
		return b.summarize(ctx, chatID, userID, link)
	}

	return b.handleAskCommand(ctx, chatID, userID, text)
}

func (b *Bot) handleSummarizeCommand(ctx context.Context, chatID int64, userID int64, args string) error {
	if args == "" {
		return b.sendMessageWithKeyboard(chatID, summarizeHelpText, returnKeyboard())
	}

	link := xurls.Strict().FindString(args)
	if link == "" {
		link = args
	}

	return b.summarize(ctx, chatID, userID, link)
}

func (b *Bot) summarize(ctx context.Context, chatID int64, userID int64, rawURL string) error {
	release, ok := b.inflight.acquire(chatID)
	if !ok {
		return b.sendMessageWithKeyboard(chatID, stillWorkingText, nil)
	}
	defer release()

	summary, err := b.deps.Summarizer.Summarize(ctx, rawURL)
	if err != nil {
		sendErr := b.sendMessageWithKeyboard(chatID, summarizeErrorText(err), returnKeyboard())
		if sendErr != nil {
			sendErr = fmt.Errorf("send message with keyboard: %w", sendErr)
		}

		if errors.Is(err, article.ErrInvalidURL) {
			b.log.InfoContext(ctx, "Rejected link",
				"chatID", chatID,
				"url", rawURL,
				"error", err)

			return sendErr
		}

		return errors.Join(fmt.Errorf("summarize (URL = %s): %w", rawURL, err), sendErr)
	}

	if err = b.deps.Store.SaveLastSummary(ctx, domain.LastSummary{
		UserID:   userID,
		URL:      summary.URL,
		Summary:  summary.Text,
		Degraded: summary.Degraded,
	}); err != nil {
		b.log.WarnContext(ctx, "Failed to save last summary",
			"error", err,
			"userID", userID,
			"url", summary.URL)
	}

	return b.sendMessageWithKeyboard(chatID, formatSummary(summary.URL, summary.Text), returnKeyboard())
}

func summarizeErrorText(err error) string {
	switch {
	case errors.Is(err, article.ErrInvalidURL):
		return invalidURLText
	case errors.Is(err, article.ErrNoMeaningfulContent),
		errors.Is(err, article.ErrExtraction),
		errors.Is(err, article.ErrEmptyDocument):
		return unsummarizedText
	default:
		return failedText
	}
}
