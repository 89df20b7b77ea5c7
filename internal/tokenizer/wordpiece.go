package tokenizer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const defaultMaxInputChars = 100

// WordPieceTokenizer implements BERT's uncased basic + WordPiece tokenization
// over a vocab.txt vocabulary.
type WordPieceTokenizer struct {
	vocab         map[string]int
	maxInputChars int
	unkToken      string
	neverSplit    []string
}

// NewWordPieceTokenizer creates a new WordPieceTokenizer from a vocab file.
func NewWordPieceTokenizer(vocabPath string) (*WordPieceTokenizer, error) {
	file, err := os.Open(vocabPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	tok, err := NewWordPieceTokenizerFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("load vocab %s: %w", vocabPath, err)
	}
	return tok, nil
}

// NewWordPieceTokenizerFromReader reads a BERT-style vocab.txt (one token per
// line, id = line number) from r.
func NewWordPieceTokenizerFromReader(r io.Reader) (*WordPieceTokenizer, error) {
	vocab, err := loadVocab(r)
	if err != nil {
		return nil, err
	}
	if len(vocab) == 0 {
		return nil, fmt.Errorf("empty vocab")
	}
	unk := "[UNK]"
	if _, ok := vocab[unk]; !ok {
		return nil, fmt.Errorf("vocab has no %s token", unk)
	}

	return &WordPieceTokenizer{
		vocab:         vocab,
		maxInputChars: defaultMaxInputChars,
		unkToken:      unk,
		neverSplit:    []string{"[UNK]", "[SEP]", "[PAD]", "[CLS]", "[MASK]"},
	}, nil
}

func loadVocab(r io.Reader) (map[string]int, error) {
	vocab := make(map[string]int)
	scanner := bufio.NewScanner(r)
	index := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			vocab[line] = index
			index++
		}
	}
	return vocab, scanner.Err()
}

// VocabSize returns the number of vocabulary entries.
func (t *WordPieceTokenizer) VocabSize() int {
	return len(t.vocab)
}

// isPunctuation treats every non-alphanumeric ASCII symbol and every Unicode
// P* rune as punctuation. Non-ASCII symbols such as € and © stay inside words.
func isPunctuation(r rune) bool {
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) || (r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}

// isControl reports Cc and Cf runes other than tab, newline and carriage return.
func isControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return unicode.In(r, unicode.Cc, unicode.Cf)
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || unicode.Is(unicode.Zs, r)
}

// isCJK covers the CJK Unified Ideographs blocks. Hangul and kana are not
// included.
func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3400 && r <= 0x4DBF) ||
		(r >= 0x20000 && r <= 0x2A6DF) ||
		(r >= 0x2A700 && r <= 0x2B73F) ||
		(r >= 0x2B740 && r <= 0x2B81F) ||
		(r >= 0x2B820 && r <= 0x2CEAF) ||
		(r >= 0xF900 && r <= 0xFAFF) ||
		(r >= 0x2F800 && r <= 0x2FA1F)
}

// cleanText drops NUL, U+FFFD and control runes and turns every whitespace
// rune into a plain space.
func cleanText(text string) string {
	clean := true
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= 0x7f || (c < 0x20 && c != '\t' && c != '\n' && c != '\r') {
			clean = false
			break
		}
	}
	if clean {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == 0 || r == utf8.RuneError || isControl(r):
			// dropped
		case isWhitespace(r):
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// splitWords cleans text and splits it on whitespace and punctuation. Punctuation
// and CJK ideographs become words of their own; special tokens are never split.
func (t *WordPieceTokenizer) splitWords(text string) []string {
	text = cleanText(text)
	if isASCII(text) && !strings.Contains(text, "[") {
		return splitASCII(text)
	}

	var tokens []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for i := 0; i < len(text); {
		if ns := t.specialPrefix(text[i:]); ns != "" {
			flush()
			tokens = append(tokens, ns)
			i += len(ns)
			continue
		}

		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case isPunctuation(r) || isCJK(r):
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsSpace(r):
			flush()
		default:
			current.WriteRune(r)
		}
		i += size
	}
	flush()
	return tokens
}

// splitASCII is the lookup-table path for plain ASCII input.
func splitASCII(text string) []string {
	var tokens []string
	b := []byte(text)
	for len(b) > 0 {
		idx := FindPunctuation(b)
		if idx < 0 {
			tokens = append(tokens, string(b))
			break
		}
		if idx > 0 {
			tokens = append(tokens, string(b[:idx]))
		}
		if c := b[idx]; !isASCIISpace(c) {
			tokens = append(tokens, string(c))
		}
		b = b[idx+1:]
	}
	return tokens
}

func isASCIISpace(c byte) bool {
	return c == ' ' || (c >= 9 && c <= 13)
}

func (t *WordPieceTokenizer) specialPrefix(s string) string {
	if len(s) == 0 || s[0] != '[' {
		return ""
	}
	for _, ns := range t.neverSplit {
		if strings.HasPrefix(s, ns) {
			return ns
		}
	}
	return ""
}

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func normalize(word string) string {
	out, _, err := transform.String(stripAccents, strings.ToLower(word))
	if err != nil {
		return strings.ToLower(word)
	}
	return out
}

// Tokenize returns the WordPiece tokens of text. It never fails; the error is
// always nil.
func (t *WordPieceTokenizer) Tokenize(text string) ([]string, error) {
	tokens, _ := t.tokenize(text)
	return tokens, nil
}

// encode converts text into vocabulary ids.
func (t *WordPieceTokenizer) encode(text string) []int {
	_, ids := t.tokenize(text)
	return ids
}

func (t *WordPieceTokenizer) tokenize(text string) ([]string, []int) {
	words := t.splitWords(text)

	outTokens := make([]string, 0, len(words)*2)
	outIDs := make([]int, 0, len(words)*2)
	emit := func(tok string) {
		outTokens = append(outTokens, tok)
		outIDs = append(outIDs, t.vocab[tok])
	}

	for _, word := range words {
		if word == "" {
			continue
		}
		if t.specialPrefix(word) == word {
			if _, ok := t.vocab[word]; ok {
				emit(word)
				continue
			}
		}

		word = normalize(word)
		if utf8.RuneCountInString(word) > t.maxInputChars {
			emit(t.unkToken)
			continue
		}

		pieces, ok := t.wordPiece(word)
		if !ok {
			emit(t.unkToken)
			continue
		}
		for _, p := range pieces {
			emit(p)
		}
	}
	return outTokens, outIDs
}

// wordPiece greedily matches the longest vocabulary prefix, continuing with
// "##" pieces. It reports false when some suffix cannot be matched.
func (t *WordPieceTokenizer) wordPiece(word string) ([]string, bool) {
	var pieces []string
	start := 0
	for start < len(word) {
		end := len(word)
		match := ""
		for start < end {
			sub := word[start:end]
			if start > 0 {
				sub = "##" + sub
			}
			if _, ok := t.vocab[sub]; ok {
				match = sub
				break
			}
			end = prevRuneBoundary(word, end, start)
		}
		if match == "" {
			return nil, false
		}
		pieces = append(pieces, match)
		start = end
	}
	return pieces, true
}

// prevRuneBoundary steps end back by one rune without going below start.
func prevRuneBoundary(s string, end, start int) int {
	end--
	for end > start && !utf8.RuneStart(s[end]) {
		end--
	}
	return end
}
