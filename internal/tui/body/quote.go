package body

import (
	_ "embed"
	"fmt"

	"github.com/BurntSushi/toml"
)

//go:embed quotes.toml
var quotesTOML []byte

type quoteEntry struct {
	Text   string `toml:"text"`
	Author string `toml:"author"`
}

var quoteCatalog []quoteEntry

func init() {
	var doc struct {
		Quotes []quoteEntry `toml:"quotes"`
	}
	if err := toml.Unmarshal(quotesTOML, &doc); err != nil {
		panic(fmt.Sprintf("body: embedded quote catalog is invalid: %v", err))
	}
	quoteCatalog = doc.Quotes
}

type quoteBody struct {
	entry quoteEntry
}

func newQuote(env Env) Body {
	// Rotate daily so everyone on the same day sees the same quote.
	day := env.now().YearDay() + env.now().Year()*366
	return &quoteBody{entry: quoteCatalog[day%len(quoteCatalog)]}
}

func (b *quoteBody) Render(width, height int) string {
	return fmt.Sprintf("“%s”\n\n— %s", b.entry.Text, b.entry.Author)
}
