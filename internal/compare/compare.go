// Package compare tabulates token counts across tokenizers.
package compare

import (
	"fmt"
	"image/color"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/23skdu/longbow-tokviz/internal/config"
	"github.com/23skdu/longbow-tokviz/internal/tokenizer"
)

// Named is a tokenizer with its display name and chart color.
type Named struct {
	Name      string
	Color     color.NRGBA
	Tokenizer tokenizer.Tokenizer
}

// Table holds token counts per (sample, tokenizer). It is immutable once built.
type Table struct {
	samples []config.Sample
	models  []string
	colors  []color.NRGBA
	counts  [][]int // [sample][model]
}

// Tabulate tokenizes every sample with every tokenizer.
func Tabulate(samples []config.Sample, tokenizers []Named) (*Table, error) {
	t := &Table{
		samples: append([]config.Sample(nil), samples...),
		models:  make([]string, len(tokenizers)),
		colors:  make([]color.NRGBA, len(tokenizers)),
		counts:  make([][]int, len(samples)),
	}
	for j, n := range tokenizers {
		t.models[j] = n.Name
		t.colors[j] = n.Color
	}

	for i, s := range samples {
		t.counts[i] = make([]int, len(tokenizers))
		for j, n := range tokenizers {
			tokens, err := tokenize(n, s.Text)
			if err != nil {
				return nil, fmt.Errorf("tokenize sample %q with %q: %w", s.Label, n.Name, err)
			}
			t.counts[i][j] = len(tokens)
			log.Debug().
				Str("sample", s.Label).
				Str("model", n.Name).
				Int("count", len(tokens)).
				Msg("Counted tokens")
		}
	}
	return t, nil
}

func tokenize(n Named, text string) ([]string, error) {
	start := time.Now()
	tokens, err := n.Tokenizer.Tokenize(text)
	if err != nil {
		return nil, err
	}
	tokenizationDuration.WithLabelValues(n.Name).Observe(time.Since(start).Seconds())
	tokensTotal.WithLabelValues(n.Name).Add(float64(len(tokens)))
	return tokens, nil
}

// Samples returns the samples in table order.
func (t *Table) Samples() []config.Sample {
	return append([]config.Sample(nil), t.samples...)
}

// Labels returns the sample labels in table order.
func (t *Table) Labels() []string {
	out := make([]string, len(t.samples))
	for i, s := range t.samples {
		out[i] = s.Label
	}
	return out
}

// Models returns the tokenizer names in table order.
func (t *Table) Models() []string {
	return append([]string(nil), t.models...)
}

// Color returns the chart color of model j.
func (t *Table) Color(j int) color.NRGBA {
	return t.colors[j]
}

// Len returns the number of (sample, tokenizer) entries.
func (t *Table) Len() int {
	return len(t.samples) * len(t.models)
}

// At returns the count for sample i and model j.
func (t *Table) At(i, j int) int {
	return t.counts[i][j]
}

// Count looks a count up by sample text and model name.
func (t *Table) Count(text, model string) (int, bool) {
	j := t.modelIndex(model)
	if j < 0 {
		return 0, false
	}
	for i, s := range t.samples {
		if s.Text == text {
			return t.counts[i][j], true
		}
	}
	return 0, false
}

// Series returns one model's counts in sample order.
func (t *Table) Series(model string) []int {
	j := t.modelIndex(model)
	if j < 0 {
		return nil
	}
	out := make([]int, len(t.samples))
	for i := range t.samples {
		out[i] = t.counts[i][j]
	}
	return out
}

func (t *Table) modelIndex(model string) int {
	for j, m := range t.models {
		if m == model {
			return j
		}
	}
	return -1
}

// Bar is one tokenizer's result for the breakdown text.
type Bar struct {
	Model  string
	Color  color.NRGBA
	Tokens []string
}

// Count returns the bar length.
func (b Bar) Count() int {
	return len(b.Tokens)
}

// Annotation is the label drawn next to the bar.
func (b Bar) Annotation() string {
	return fmt.Sprintf("%d tokens", len(b.Tokens))
}

// Breakdown tokenizes a single text with every tokenizer, one bar per tokenizer.
type Breakdown struct {
	Text string
	Bars []Bar
}

// NewBreakdown re-tokenizes text with each tokenizer in order.
func NewBreakdown(text string, tokenizers []Named) (*Breakdown, error) {
	b := &Breakdown{Text: text, Bars: make([]Bar, 0, len(tokenizers))}
	for _, n := range tokenizers {
		tokens, err := tokenize(n, text)
		if err != nil {
			return nil, fmt.Errorf("tokenize breakdown text with %q: %w", n.Name, err)
		}
		b.Bars = append(b.Bars, Bar{Model: n.Name, Color: n.Color, Tokens: tokens})
	}
	return b, nil
}
