package news

import (
	"hash/fnv"
	"strings"
	"time"
)

const (
	CategoryAll         = "All"
	CategoryStockDrama  = "Stock Drama"
	CategoryMoneyMoves  = "Money Moves"
	CategoryEarningsTea = "Earnings Tea"
	CategoryCryptoChaos = "Crypto Chaos"
	CategoryMarketVibes = "Market Vibes"

	SentimentBullish = "bullish"
	SentimentBearish = "bearish"
	SentimentNeutral = "neutral"
)

//nolint:gochecknoglobals // Read-only lookup lists.
var (
	Categories = []string{
		CategoryAll,
		CategoryStockDrama,
		CategoryMoneyMoves,
		CategoryEarningsTea,
		CategoryCryptoChaos,
		CategoryMarketVibes,
	}

	sentiments = []string{SentimentBullish, SentimentBearish, SentimentNeutral}

	kidExplanations = []string{
		"Imagine your piggy bank, but MUCH bigger! 🐷💰",
		"It's like when you trade Pokemon cards, but with company pieces! 🃏✨",
		"Think of companies like your favorite YouTubers - sometimes they're trending up, sometimes down! 📱📈",
		"Money stuff happened and people are either happy 😊 or sad 😢 about it!",
		"Someone's wallet got heavier or lighter today! 💰⚖️",
		"It's like a video game where scores go up and down, but with real money! 🎮💵",
		"Companies had a good day or bad day, kinda like when you ace a test or forget homework! 📚📊",
	}

	categoryRules = []struct {
		category string
		words    []string
	}{
		{CategoryEarningsTea, []string{"earnings", "revenue", "profit"}},
		{CategoryCryptoChaos, []string{"crypto", "bitcoin", "ethereum"}},
		{CategoryStockDrama, []string{"stock", "share", "trading"}},
		{CategoryMoneyMoves, []string{"investment", "fund", "money"}},
	}
)

type Article struct {
	Title       string
	Description string
	URL         string
	Source      string
	PublishedAt time.Time
}

// Overlay is the playful layer shown next to a headline.
type Overlay struct {
	Category       string
	Sentiment      string
	KidExplanation string
}

type Item struct {
	Article
	Overlay
}

// Pick returns a deterministic element of list for seed.
func Pick[T any](seed uint64, list []T) (T, bool) {
	var zero T
	if len(list) == 0 {
		return zero, false
	}

	return list[seed%uint64(len(list))], true
}

// Seed hashes s into a pick seed.
func Seed(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))

	return h.Sum64()
}

func Categorize(title string, description string) string {
	text := strings.ToLower(title + " " + description)

	for _, rule := range categoryRules {
		for _, word := range rule.words {
			if strings.Contains(text, word) {
				return rule.category
			}
		}
	}

	return CategoryMarketVibes
}

func Annotate(a Article) Item {
	seed := Seed(a.URL)

	sentiment, _ := Pick(seed, sentiments)
	explanation, _ := Pick(seed>>8, kidExplanations)

	return Item{
		Article: a,
		Overlay: Overlay{
			Category:       Categorize(a.Title, a.Description),
			Sentiment:      sentiment,
			KidExplanation: explanation,
		},
	}
}

// Filter keeps items of category; CategoryAll keeps everything.
func Filter(items []Item, category string) []Item {
	if category == "" || category == CategoryAll {
		return items
	}

	var filtered []Item
	for _, item := range items {
		if item.Category == category {
			filtered = append(filtered, item)
		}
	}

	return filtered
}

func IsCategory(s string) bool {
	for _, c := range Categories {
		if c == s {
			return true
		}
	}

	return false
}
