package tokenizer

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

var offlineLoader sync.Once

// TiktokenTokenizer wraps a tiktoken byte-level BPE encoding. GPT-2 uses r50k_base.
type TiktokenTokenizer struct {
	encoding string
	enc      *tiktoken.Tiktoken
}

// NewTiktoken loads the named encoding from the ranks embedded in the binary,
// so no network access is needed.
func NewTiktoken(encoding string) (*TiktokenTokenizer, error) {
	offlineLoader.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("get encoding %s: %w", encoding, err)
	}
	return &TiktokenTokenizer{encoding: encoding, enc: enc}, nil
}

// modelEncodings covers open models tiktoken's table leaves out.
var modelEncodings = map[string]string{
	"gpt2":  "r50k_base",
	"gpt-2": "r50k_base",
}

// NewTiktokenForModel resolves the encoding a model was trained with, e.g.
// "gpt2" -> r50k_base.
func NewTiktokenForModel(model string) (*TiktokenTokenizer, error) {
	name, ok := modelEncodings[model]
	if !ok {
		name, ok = tiktoken.MODEL_TO_ENCODING[model]
	}
	if !ok {
		return nil, fmt.Errorf("no tiktoken encoding for model %q", model)
	}
	return NewTiktoken(name)
}

// Encoding returns the encoding name.
func (t *TiktokenTokenizer) Encoding() string {
	return t.encoding
}

// Tokenize returns one string per BPE id. A token may hold a partial UTF-8
// sequence when a multi-byte character spans several ids.
func (t *TiktokenTokenizer) Tokenize(text string) ([]string, error) {
	ids := t.enc.Encode(text, nil, nil)
	tokens := make([]string, len(ids))
	for i, id := range ids {
		tokens[i] = t.enc.Decode([]int{id})
	}
	return tokens, nil
}
