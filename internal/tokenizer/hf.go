package tokenizer

import (
	"fmt"

	gotk "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// HFTokenizer runs a HuggingFace tokenizer.json pipeline (normalizer,
// pre-tokenizer, model) in pure Go.
type HFTokenizer struct {
	tk *gotk.Tokenizer
}

// NewHFTokenizer loads a tokenizer.json file.
func NewHFTokenizer(path string) (*HFTokenizer, error) {
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer.json %s: %w", path, err)
	}
	return &HFTokenizer{tk: tk}, nil
}

// Tokenize encodes text without special tokens.
func (t *HFTokenizer) Tokenize(text string) ([]string, error) {
	en, err := t.tk.EncodeSingle(text, false)
	if err != nil {
		return nil, err
	}
	return en.GetTokens(), nil
}
