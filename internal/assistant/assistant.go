package assistant

import (
	"context"
	"fmt"
	"strings"
)

const Greeting = "Hey there! 👋 I'm your finance buddy! Ask me anything about money, " +
	"investing, or economics and I'll explain it in super simple terms! 🍼💰"

// Question is what the user asked.
type Question struct {
	// Text is the question itself.
	Text string
	// Context is optional background, e.g. the summary the user just read.
	Context string
}

// Assistant answers finance questions in kid-friendly language.
type Assistant interface {
	Ask(ctx context.Context, q Question) (string, error)
}

// Offline answers every question with the canned explanation.
type Offline struct{}

func (Offline) Ask(_ context.Context, q Question) (string, error) {
	return FallbackAnswer(q), nil
}

// FallbackAnswer is shown when no hosted model is configured or it fails.
func FallbackAnswer(q Question) string {
	return fmt.Sprintf(`I'm having trouble connecting to my brain right now! 🤯 But here's what I can tell you about "%s":

Think of money like your allowance - you earn it by doing good things, and then you can spend it on things you want or save it for later!

💰 If you're asking about investing, it's like planting seeds in your garden - you put your money somewhere safe and wait for it to grow bigger over time!

📈 If it's about stocks, imagine companies are like your favorite video games - when lots of people want to play them, they become more valuable!

Try asking me again - I'll do my best to help! 🚀✨`, strings.TrimSpace(q.Text))
}
