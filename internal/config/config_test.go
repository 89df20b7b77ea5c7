package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.Len(t, cfg.Samples, 4)
	labels := make([]string, len(cfg.Samples))
	for i, s := range cfg.Samples {
		labels[i] = s.Label
	}
	assert.Equal(t, []string{"Simple English", "Long Word", "Emojis", "Spanish"}, labels)
	assert.Equal(t, "The cat sat on the mat because it was tired.", cfg.Samples[0].Text)
	assert.Equal(t, "supercalifragilisticexpialidocious", cfg.Samples[1].Text)
	assert.Equal(t, "🚀 AI is amazing! 🎉", cfg.Samples[2].Text)
	assert.Equal(t, "¡Hola! ¿Cómo estás?", cfg.Samples[3].Text)
	assert.Equal(t, "The cat sat on the mat because it was tired.", cfg.BreakdownText)

	require.Len(t, cfg.Models, 3)
	assert.Equal(t, Model{Name: "GPT-2 (BPE)", ID: "gpt2", Backend: BackendTiktoken, Color: "#FF6B6B"}, cfg.Models[0])
	assert.Equal(t, Model{Name: "BERT (WordPiece)", ID: "bert-base-uncased", Backend: BackendWordPiece, Color: "#4ECDC4"}, cfg.Models[1])
	assert.Equal(t, Model{Name: "T5 (SentencePiece)", ID: "t5-small", Backend: BackendHF, Color: "#45B7D1"}, cfg.Models[2])

	assert.Equal(t, Output{Path: "tokenization_comparison.png", DPI: 300, WidthIn: 12, HeightIn: 10}, cfg.Output)
}

func TestParse_OverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
samples:
  - label: Greeting
    text: hello
output:
  dpi: 72
`))
	require.NoError(t, err)
	require.Equal(t, []Sample{{Label: "Greeting", Text: "hello"}}, cfg.Samples)
	assert.Len(t, cfg.Models, 3, "models keep their defaults")
	assert.Equal(t, 72, cfg.Output.DPI)
	assert.Equal(t, "tokenization_comparison.png", cfg.Output.Path)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"NoSamples", "samples: []"},
		{"SampleWithoutLabel", "samples: [{text: hi}]"},
		{"SampleWithoutText", "samples: [{label: hi}]"},
		{"NoModels", "models: []"},
		{"DuplicateModel", `models: [{name: a, id: gpt2, backend: tiktoken, color: "#000000"}, {name: a, id: gpt2, backend: tiktoken, color: "#000000"}]`},
		{"UnknownBackend", `models: [{name: a, id: gpt2, backend: rust, color: "#000000"}]`},
		{"BadColor", `models: [{name: a, id: gpt2, backend: tiktoken, color: red}]`},
		{"ZeroDPI", "output: {dpi: 0}"},
		{"EmptyBreakdown", `breakdown_text: ""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.ErrorIs(t, err, ErrInvalid)
		})
	}

	_, err := Parse([]byte("samples: {"))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: {path: out.png}\n"), 0o644))

	cfg, used, err := Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, "out.png", cfg.Output.Path)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#4ECDC4")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x4e, G: 0xcd, B: 0xc4, A: 0xff}, c)

	for _, bad := range []string{"", "4ECDC4", "#4ECDC", "#GGGGGG"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}
