package article

import (
	"cmp"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	upMarker   = "📈"
	downMarker = "📉"

	summaryIntro = "Here's what this article is about in simple words:\n\n🍼 Baby Version:\n"

	summaryClosing = `💡 Think of it like this:
- Company = Your favorite YouTuber
- Stock price = Their subscriber count
- Good news = They made an awesome video that went viral! 🎥📱

🎯 Why Should You Care?
When companies do well, it usually means people really like their products, ` +
		`and they might make even cooler stuff in the future. ` +
		`It's like a lemonade stand that sold way more cups than anyone expected! 🍋✨`
)

// plainWords maps financial jargon (lower case) to a plain-language phrase.
// No replacement contains a key of this table.
//
//nolint:gochecknoglobals // Read-only lookup table.
var plainWords = map[string]string{
	"stock market":      "big buying-and-selling playground",
	"stock price":       "company score",
	"share price":       "company score",
	"stocks":            "tiny pieces of companies",
	"stock":             "tiny piece of a company",
	"shares":            "tiny company pieces",
	"revenue":           "money they made",
	"earnings":          "money they earned",
	"profit":            "money left over",
	"profits":           "money left over",
	"losses":            "money they lost",
	"ceo":               "company boss",
	"investors":         "people who buy company pieces",
	"investor":          "person who buys company pieces",
	"billion":           "thousand million (huge number!)",
	"interest rates":    "the price of borrowing money",
	"interest rate":     "the price of borrowing money",
	"inflation":         "prices going up for everything",
	"recession":         "a time when the money world takes a nap",
	"economy":           "the money world",
	"federal reserve":   "big bank that looks after the country's money",
	"quarterly":         "every three months",
	"quarter":           "three months",
	"dividend":          "thank-you money for owners",
	"dividends":         "thank-you money for owners",
	"cryptocurrency":    "internet money",
	"crypto":            "internet money",
	"bitcoin":           "internet coin",
	"analysts":          "money experts",
	"analyst":           "money expert",
	"merger":            "two companies joining together",
	"acquisition":       "one company buying another",
	"ipo":               "first day selling company pieces to everyone",
	"valuation":         "how much the company is worth",
	"bull market":       "happy market",
	"bear market":       "grumpy market",
	"volatility":        "big ups and downs",
	"gdp":               "everything a country makes",
	"portfolio":         "collection of things you own",
	"wall street":       "the busy street where money is traded",
	"fiscal year":       "money year",
	"market cap":        "price tag of the whole company",
	"market value":      "price tag of the whole company",
	"debt":              "money they owe",
	"assets":            "stuff they own",
	"shareholders":      "people who own company pieces",
	"shareholder":       "person who owns company pieces",
	"year-over-year":    "compared to last year",
	"percent":           "out of every 100",
	"guidance":          "guess about the future",
	"outlook":           "guess about the future",
	"sales":             "things they sold",
	"trading":           "buying and selling",
	"traders":           "people who buy and sell",
	"bonds":             "IOUs",
	"bond":              "IOU",
	"treasury":          "the government's piggy bank",
	"layoffs":           "people losing their jobs",
	"bankruptcy":        "running out of money completely",
	"forecast":          "guess",
	"forecasts":         "guesses",
	"economic":          "money-world",
	"financial":         "money",
	"investment":        "money planted to grow",
	"investments":       "money planted to grow",
	"capital":           "starting money",
	"equity":            "ownership",
	"nasdaq":            "a big scoreboard for tech companies",
	"s&p 500":           "scoreboard of 500 big companies",
	"dow jones":         "scoreboard of 30 giant companies",
	"hedge fund":        "club of rich money-planters",
	"venture capital":   "money for brand-new companies",
	"central bank":      "the country's main money bank",
	"monetary policy":   "rules about how much money is around",
	"unemployment":      "people without jobs",
	"consumer spending": "how much people are buying",
}

//nolint:gochecknoglobals // Read-only lookup lists.
var (
	upWords = []string{
		"increase", "increased", "increases", "increasing", "rise", "rises", "rose", "rising",
		"gain", "gains", "gained", "grow", "grows", "grew", "growth", "surge", "surged",
		"jump", "jumped", "soar", "soared", "rally", "rallied", "up", "higher", "record high",
		"beat", "boost", "boosted",
	}
	downWords = []string{
		"decrease", "decreased", "decreases", "decreasing", "fall", "falls", "fell", "falling",
		"drop", "drops", "dropped", "decline", "declined", "declines", "plunge", "plunged",
		"slump", "slumped", "down", "lower", "crash", "crashed", "tumble", "tumbled", "loss",
		"losses", "miss", "missed",
	}

	plainWordsRe = regexp.MustCompile(`(?i)\b(?:the\s+)?(?:` + alternation(slices.Collect(maps.Keys(plainWords))) + `)\b`)
	upWordsRe    = wholeWordsRegexp(upWords)
	downWordsRe  = wholeWordsRegexp(downWords)
)

// Rewrite swaps jargon for plain phrases in one pass and appends direction markers.
func Rewrite(sentence string) string {
	rewritten := plainWordsRe.ReplaceAllStringFunc(sentence, func(match string) string {
		article, phrase := cutArticle(match)

		replacement, ok := plainWords[strings.ToLower(phrase)]
		if !ok {
			return match
		}

		if article != "" {
			replacement = strings.TrimPrefix(replacement, "the ")
		}

		return article + replacement
	})

	rewritten = capitalizeFirst(rewritten)

	if upWordsRe.MatchString(sentence) {
		rewritten += " " + upMarker
	}

	if downWordsRe.MatchString(sentence) {
		rewritten += " " + downMarker
	}

	return rewritten
}

// Simplify numbers the rewritten sentences and wraps them in the fixed explanation.
func Simplify(sentences []string) (string, error) {
	var b strings.Builder
	b.WriteString(summaryIntro)

	n := 0
	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		n++
		fmt.Fprintf(&b, "%d. %s\n", n, Rewrite(sentence))
	}

	if n == 0 {
		return "", ErrNoMeaningfulContent
	}

	b.WriteString("\n")
	b.WriteString(summaryClosing)

	return b.String(), nil
}

// cutArticle splits a leading "the " off match so replacements starting with
// "the" don't double it.
func cutArticle(match string) (string, string) {
	if len(match) < 4 || !strings.EqualFold(match[:3], "the") {
		return "", match
	}

	rest := strings.TrimLeftFunc(match[3:], unicode.IsSpace)
	if len(rest) == len(match)-3 {
		return "", match
	}

	return match[:len(match)-len(rest)], rest
}

func wholeWordsRegexp(words []string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + alternation(words) + `)\b`)
}

// alternation joins words longest first so longer phrases win.
func alternation(words []string) string {
	sorted := slices.Clone(words)
	slices.SortFunc(sorted, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}

		return cmp.Compare(a, b)
	})

	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = regexp.QuoteMeta(w)
	}

	return strings.Join(quoted, "|")
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return s
	}

	return string(unicode.ToUpper(r)) + s[size:]
}
