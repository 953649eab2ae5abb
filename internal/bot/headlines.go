package bot

import (
	"context"
	"fmt"
	"strings"

	"finkid/internal/article"
	"finkid/internal/news"
)

const (
	maxShownHeadlines      = 10
	headlineDescriptionCap = 200
)

// SendDigest sends the scheduled headline digest to chatID.
func (b *Bot) SendDigest(ctx context.Context, chatID int64, headlines news.Headlines) error {
	if len(headlines.Items) == 0 {
		b.log.WarnContext(ctx, "Skipping empty digest",
			"chatID", chatID,
			"query", headlines.Query)

		return nil
	}

	text := "🗞 *Your daily money news*\n\n" + formatHeadlines(headlines, news.CategoryAll)

	if err := b.sendMessageWithKeyboard(chatID, text, categoryKeyboard()); err != nil {
		return fmt.Errorf("send message with keyboard: %w", err)
	}

	b.lastQueriesMu.Lock()
	b.lastQueries[chatID] = headlines.RequestedQuery()
	b.lastQueriesMu.Unlock()

	return nil
}

func formatHeadlines(headlines news.Headlines, category string) string {
	var message strings.Builder

	heading := escapeMarkdownV2(headlines.Heading())
	if category != "" && category != news.CategoryAll {
		heading += " · " + escapeMarkdownV2(category)
	}
	message.WriteString(fmt.Sprintf("📰 *%s*\n\n", heading))

	if headlines.Source == news.SourceDemo {
		message.WriteString("_Showing sample stories while live news is unavailable\\._\n\n")
	}

	items := news.Filter(headlines.Items, category)
	if len(items) == 0 {
		message.WriteString(fmt.Sprintf("✖️ No %s stories right now\\. Try another category\\!", escapeMarkdownV2(category)))

		return message.String()
	}

	for i, item := range items[:min(len(items), maxShownHeadlines)] {
		message.WriteString(fmt.Sprintf("%d\\. %s *[%s](%s)*\n",
			i+1,
			sentimentEmoji(item.Sentiment),
			escapeMarkdownV2(item.Title),
			escapeLinkURL(item.URL)))

		meta := "🏷 " + escapeMarkdownV2(item.Category)
		if item.Source != "" {
			meta += " · " + escapeMarkdownV2(item.Source)
		}
		message.WriteString(meta + "\n")

		if item.Description != "" && item.Description != item.Title {
			message.WriteString(escapeMarkdownV2(article.Truncate(item.Description, headlineDescriptionCap)) + "\n")
		}

		message.WriteString(fmt.Sprintf("🍼 _%s_\n\n", escapeMarkdownV2(item.KidExplanation)))
	}

	return message.String()
}

func sentimentEmoji(sentiment string) string {
	switch sentiment {
	case news.SentimentBullish:
		return "📈"
	case news.SentimentBearish:
		return "📉"
	default:
		return "➡️"
	}
}
