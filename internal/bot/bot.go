package bot

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"finkid/internal/article"
	"finkid/internal/assistant"
	"finkid/internal/domain"
	"finkid/internal/news"
	"finkid/internal/ratelimiter"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	maxBackoffSeconds         = 60
	initialBackoffSeconds     = 3
	backoffGrowthFactor       = 2
	resetOffsetBackoffSeconds = 30
	updateProcessingTimeout   = 2 * time.Minute
	maxConcurrentUpdates      = 16

	BotUpdateTimeout = 60
)

type Summarizer interface {
	Summarize(ctx context.Context, rawURL string) (article.Summary, error)
}

type HeadlineSource interface {
	Latest(ctx context.Context, apiKey string, query string) news.Headlines
}

type Store interface {
	GetUserSettingsWithDefault(ctx context.Context, userID int64) (*domain.UserSettings, error)
	UpsertNewsAPIKey(ctx context.Context, userID int64, apiKey string) error
	UpsertDigestHour(ctx context.Context, userID int64, hourUTC int64) error
	DisableDigest(ctx context.Context, userID int64) error
	SaveLastSummary(ctx context.Context, s domain.LastSummary) error
	GetLastSummary(ctx context.Context, userID int64) (*domain.LastSummary, error)
}

// Deps are the services the bot talks to.
type Deps struct {
	Summarizer Summarizer
	Headlines  HeadlineSource
	Assistant  assistant.Assistant
	Store      Store
}

type Bot struct {
	api               *tgbotapi.BotAPI
	rateLimiter       *ratelimiter.RateLimiter
	sender            ratelimiter.API
	deps              Deps
	allowedUsers      []int64
	defaultNewsAPIKey string
	inflight          *inflight
	lastQueries       map[int64]string
	lastQueriesMu     sync.Mutex
	updateSem         chan struct{}
	updatesWg         sync.WaitGroup
	log               *slog.Logger
}

func New(
	token string,
	deps Deps,
	allowedUsers []int64,
	defaultNewsAPIKey string,
	log *slog.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}

	rateLimiter := ratelimiter.New(api, log)

	b := newBot(rateLimiter, deps, allowedUsers, defaultNewsAPIKey, log)
	b.api = api
	b.rateLimiter = rateLimiter

	return b, nil
}

func newBot(
	sender ratelimiter.API,
	deps Deps,
	allowedUsers []int64,
	defaultNewsAPIKey string,
	log *slog.Logger,
) *Bot {
	return &Bot{
		sender:            sender,
		deps:              deps,
		allowedUsers:      allowedUsers,
		defaultNewsAPIKey: strings.TrimSpace(defaultNewsAPIKey),
		inflight:          newInflight(),
		lastQueries:       make(map[int64]string),
		updateSem:         make(chan struct{}, maxConcurrentUpdates),
		log:               log,
	}
}

// Start polls updates until ctx is done, reconnecting with backoff.
func (b *Bot) Start(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = BotUpdateTimeout

	backoffSeconds := initialBackoffSeconds

	for {
		select {
		case <-ctx.Done():
			b.log.InfoContext(ctx, "Bot context is done",
				"error", ctx.Err())
			return
		default:
		}

		updates := b.api.GetUpdatesChan(updateConfig)
		updatesClosed := false

		for !updatesClosed {
			select {
			case <-ctx.Done():
				b.api.StopReceivingUpdates()
				b.log.InfoContext(ctx, "Bot context is done",
					"error", ctx.Err())
				return

			case update, ok := <-updates:
				if !ok {
					updatesClosed = true
					continue
				}
				updateConfig.Offset = update.UpdateID + 1

				b.dispatch(ctx, update)
			}
		}

		if ctx.Err() != nil {
			return
		}

		b.log.WarnContext(ctx, "Update channel is closed, reconnecting...",
			"offset", updateConfig.Offset,
			"backoffSeconds", backoffSeconds)

		time.Sleep(time.Duration(backoffSeconds) * time.Second)

		backoffSeconds = updateBackoffSeconds(backoffSeconds)

		if backoffSeconds >= resetOffsetBackoffSeconds {
			updateConfig.Offset = 0
		}
	}
}

// dispatch handles update in its own goroutine so a long summary does not
// hold up other chats.
func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	select {
	case b.updateSem <- struct{}{}:
	case <-ctx.Done():
		return
	}

	b.updatesWg.Go(func() {
		defer func() { <-b.updateSem }()

		b.handleUpdate(ctx, &update)
	})
}

func (b *Bot) handleUpdate(ctx context.Context, update *tgbotapi.Update) {
	updateCtx, cancel := context.WithTimeout(ctx, updateProcessingTimeout)
	defer cancel()

	switch {
	case update.Message != nil && update.Message.From != nil:
		chatID, chatType := chatContext(update.Message.Chat)

		userID := update.Message.From.ID
		if !b.userAllowed(userID) {
			b.log.DebugContext(updateCtx, "User is not allowed",
				"userID", userID,
				"chatID", chatID,
				"username", update.Message.From.UserName,
				"chatType", chatType)

			return
		}

		if err := b.handleMessage(updateCtx, update.Message); err != nil {
			b.log.ErrorContext(updateCtx, "Failed to handle message",
				"error", err,
				"chatID", chatID,
				"userID", userID,
				"chatType", chatType,
				"messageID", update.Message.MessageID)
		}

	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		chatID := callbackChatID(update.CallbackQuery)

		if !b.userAllowed(update.CallbackQuery.From.ID) {
			b.log.DebugContext(updateCtx, "User is not allowed",
				"userID", update.CallbackQuery.From.ID,
				"chatID", chatID,
				"username", update.CallbackQuery.From.UserName,
				"data", update.CallbackQuery.Data)

			return
		}

		if err := b.handleCallbackQuery(updateCtx, update.CallbackQuery); err != nil {
			b.log.ErrorContext(updateCtx, "Failed to handle callback query",
				"error", err,
				"chatID", chatID,
				"userID", update.CallbackQuery.From.ID,
				"data", update.CallbackQuery.Data,
				"messageID", update.CallbackQuery.Message.MessageID)
		}
	}
}

func (b *Bot) userAllowed(userID int64) bool {
	return len(b.allowedUsers) == 0 || slices.Contains(b.allowedUsers, userID)
}

func (b *Bot) Stop() {
	b.updatesWg.Wait()

	if b.rateLimiter != nil {
		b.rateLimiter.Stop()
	}
}

func chatContext(chat *tgbotapi.Chat) (int64, string) {
	if chat == nil {
		return 0, ""
	}

	return chat.ID, chat.Type
}

func callbackChatID(cb *tgbotapi.CallbackQuery) int64 {
	if cb != nil && cb.Message != nil && cb.Message.Chat != nil {
		return cb.Message.Chat.ID
	}

	return 0
}

func updateBackoffSeconds(backoffSeconds int) int {
	if backoffSeconds < maxBackoffSeconds {
		backoffSeconds = min(backoffSeconds*backoffGrowthFactor, maxBackoffSeconds)
	}

	return backoffSeconds
}
