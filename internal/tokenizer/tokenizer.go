package tokenizer

// Tokenizer splits text into an ordered sequence of token strings.
// Special tokens (BOS, CLS, SEP...) are never added.
type Tokenizer interface {
	Tokenize(text string) ([]string, error)
}

// Func adapts a plain function to the Tokenizer interface.
type Func func(text string) ([]string, error)

func (f Func) Tokenize(text string) ([]string, error) {
	return f(text)
}
