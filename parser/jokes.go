package parser

import "math/rand"

// stockJokes is the local fallback pool used when the model declares the
// image not a chart but forgets to supply its own humorous comment. Exact
// wording is not a contract; a non-empty string is.
var stockJokes = []string{
	"This looks as much like a chart as my portfolio looks profitable",
	"I've seen better patterns in my coffee stains",
	"If this is a chart, I'm Warren Buffett's financial advisor",
	"The only trend I see here is downward... like my trading career",
	"This makes about as much sense as buying high and selling low",
	"I'd have better luck analyzing my cat's whiskers for market signals",
	"Even my failed trades make more sense than this",
	"This is to charts what a pizza is to technical analysis",
	"My losing streak has better structure than this",
	"404: Chart not found, but I found your next bad investment",
}

func fallbackJoke() string {
	return stockJokes[rand.Intn(len(stockJokes))]
}
