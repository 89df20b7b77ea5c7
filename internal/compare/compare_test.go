package compare

import (
	"errors"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/23skdu/longbow-tokviz/internal/config"
	"github.com/23skdu/longbow-tokviz/internal/tokenizer"
)

const catText = "The cat sat on the mat because it was tired."

// fixedTokenizer returns canned tokens for known texts and splits on spaces otherwise.
func fixedTokenizer(canned map[string][]string) tokenizer.Tokenizer {
	return tokenizer.Func(func(text string) ([]string, error) {
		if tokens, ok := canned[text]; ok {
			return tokens, nil
		}
		return strings.Fields(text), nil
	})
}

func stubTokenizers() []Named {
	return []Named{
		{Name: "A", Color: color.NRGBA{R: 0xff, A: 0xff}, Tokenizer: fixedTokenizer(map[string][]string{
			catText: {"The", "cat", "sat", "on", "the", "mat", "because", "it", "was", "tired", "."},
		})},
		{Name: "B", Color: color.NRGBA{G: 0xff, A: 0xff}, Tokenizer: fixedTokenizer(map[string][]string{
			catText: {"1", "2", "3", "4", "5", "6", "7", "8"},
		})},
		{Name: "C", Color: color.NRGBA{B: 0xff, A: 0xff}, Tokenizer: fixedTokenizer(map[string][]string{
			catText: {"1", "2", "3", "4", "5", "6", "7", "8", "9"},
		})},
	}
}

func TestTabulate(t *testing.T) {
	samples := config.Default().Samples
	tks := stubTokenizers()

	table, err := Tabulate(samples, tks)
	require.NoError(t, err)

	assert.Equal(t, 12, table.Len())
	assert.Equal(t, []string{"A", "B", "C"}, table.Models())
	assert.Equal(t, []string{"Simple English", "Long Word", "Emojis", "Spanish"}, table.Labels())

	for i, s := range samples {
		for j, n := range tks {
			tokens, err := n.Tokenizer.Tokenize(s.Text)
			require.NoError(t, err)

			got, ok := table.Count(s.Text, n.Name)
			require.True(t, ok)
			assert.Equal(t, len(tokens), got, "%s/%s", s.Label, n.Name)
			assert.Equal(t, got, table.At(i, j))
		}
	}

	assert.Equal(t, []int{11, 1, 5, 3}, table.Series("A"))
	assert.Equal(t, []int{8, 1, 5, 3}, table.Series("B"))
	assert.Nil(t, table.Series("missing"))
	_, ok := table.Count("not a sample", "A")
	assert.False(t, ok)
	assert.Equal(t, tks[1].Color, table.Color(1))
}

func TestTabulate_Deterministic(t *testing.T) {
	samples := config.Default().Samples

	first, err := Tabulate(samples, stubTokenizers())
	require.NoError(t, err)
	second, err := Tabulate(samples, stubTokenizers())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestTabulate_LabelsFollowSampleOrder(t *testing.T) {
	samples := []config.Sample{
		{Label: "Zeta", Text: "a"},
		{Label: "Alpha", Text: "b b"},
		{Label: "Mid", Text: "c c c"},
	}
	table, err := Tabulate(samples, stubTokenizers()[:1])
	require.NoError(t, err)

	assert.Equal(t, []string{"Zeta", "Alpha", "Mid"}, table.Labels())
	assert.Equal(t, []int{1, 2, 3}, table.Series("A"))
	assert.Equal(t, 3, table.Len())
}

func TestTabulate_Error(t *testing.T) {
	boom := errors.New("boom")
	tks := []Named{{Name: "Broken", Tokenizer: tokenizer.Func(func(string) ([]string, error) {
		return nil, boom
	})}}

	_, err := Tabulate(config.Default().Samples, tks)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `"Simple English"`)
	assert.Contains(t, err.Error(), `"Broken"`)

	_, err = NewBreakdown(catText, tks)
	require.ErrorIs(t, err, boom)
}

func TestNewBreakdown(t *testing.T) {
	b, err := NewBreakdown(catText, stubTokenizers())
	require.NoError(t, err)

	assert.Equal(t, catText, b.Text)
	require.Len(t, b.Bars, 3)

	counts := make([]int, len(b.Bars))
	annotations := make([]string, len(b.Bars))
	models := make([]string, len(b.Bars))
	for i, bar := range b.Bars {
		counts[i] = bar.Count()
		annotations[i] = bar.Annotation()
		models[i] = bar.Model
	}
	assert.Equal(t, []int{11, 8, 9}, counts)
	assert.Equal(t, []string{"11 tokens", "8 tokens", "9 tokens"}, annotations)
	assert.Equal(t, []string{"A", "B", "C"}, models)
	assert.Equal(t, "tired", b.Bars[0].Tokens[9])
}

func TestNewBreakdown_IndependentOfSamples(t *testing.T) {
	samples := []config.Sample{{Label: "Other", Text: "x y"}}
	table, err := Tabulate(samples, stubTokenizers())
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())

	b, err := NewBreakdown(catText, stubTokenizers())
	require.NoError(t, err)
	assert.Len(t, b.Bars, 3)
	assert.Equal(t, 11, b.Bars[0].Count())
}
