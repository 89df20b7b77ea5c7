package registry

import (
	"github.com/23skdu/longbow-tokviz/internal/cache"
	"github.com/23skdu/longbow-tokviz/internal/tokenizer"
)

// cachedTokenizer memoizes token lists per (model, text).
type cachedTokenizer struct {
	model string
	next  tokenizer.Tokenizer
	cache cache.TokenCache
}

func (c *cachedTokenizer) Tokenize(text string) ([]string, error) {
	if tokens, ok := c.cache.Get(c.model, text); ok {
		cacheHits.Inc()
		return tokens, nil
	}
	cacheMisses.Inc()

	tokens, err := c.next.Tokenize(text)
	if err != nil {
		return nil, err
	}
	c.cache.Put(c.model, text, tokens)
	return tokens, nil
}
