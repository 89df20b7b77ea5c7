package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/23skdu/longbow-tokviz/internal/chart"
	"github.com/23skdu/longbow-tokviz/internal/compare"
	"github.com/23skdu/longbow-tokviz/internal/config"
	"github.com/23skdu/longbow-tokviz/internal/registry"
	"github.com/23skdu/longbow-tokviz/internal/tokenizer"
)

const catText = "The cat sat on the mat because it was tired."

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) Render(table *compare.Table, breakdown *compare.Breakdown) (*chart.Figure, error) {
	args := m.Called(table, breakdown)
	fig, _ := args.Get(0).(*chart.Figure)
	return fig, args.Error(1)
}

func (m *mockRenderer) Save(fig *chart.Figure, path string) error {
	args := m.Called(fig, path)
	return args.Error(0)
}

type mockViewer struct {
	mock.Mock
}

func (m *mockViewer) Open(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func stubBackend(breakdownTokens int) registry.BackendFunc {
	return func(context.Context, config.Model) (tokenizer.Tokenizer, error) {
		return tokenizer.Func(func(text string) ([]string, error) {
			if text == catText {
				return strings.Split(strings.Repeat("x", breakdownTokens), ""), nil
			}
			return strings.Fields(text), nil
		}), nil
	}
}

func stubConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Models[0].Backend = "a"
	cfg.Models[1].Backend = "b"
	cfg.Models[2].Backend = "c"
	cfg.Output.Path = filepath.Join(t.TempDir(), "tokenization_comparison.png")
	cfg.Output.DPI = 20
	return cfg
}

func stubRegistry() *registry.Registry {
	return registry.New(nil,
		registry.WithBackend("a", stubBackend(11)),
		registry.WithBackend("b", stubBackend(8)),
		registry.WithBackend("c", stubBackend(9)),
	)
}

func TestDriver_EndToEnd(t *testing.T) {
	cfg := stubConfig(t)
	var out bytes.Buffer
	d := &Driver{
		Acquirer: stubRegistry(),
		Renderer: chart.NewPlotRenderer(cfg.Output.WidthIn, cfg.Output.HeightIn, cfg.Output.DPI),
		Out:      &out,
	}

	res, err := d.Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, "Visualization saved as '"+cfg.Output.Path+"'\n", out.String())
	assert.Equal(t, 12, res.Table.Len())
	assert.Equal(t, []string{"GPT-2 (BPE)", "BERT (WordPiece)", "T5 (SentencePiece)"}, res.Table.Models())
	assert.Equal(t, []string{"11 tokens", "8 tokens", "9 tokens"}, chart.Annotations(res.Breakdown))

	st, err := os.Stat(cfg.Output.Path)
	require.NoError(t, err)
	assert.Greater(t, st.Size(), int64(0))
}

func TestDriver_Deterministic(t *testing.T) {
	cfg := stubConfig(t)
	r := &mockRenderer{}
	r.On("Render", mock.Anything, mock.Anything).Return(&chart.Figure{}, nil)
	r.On("Save", mock.Anything, cfg.Output.Path).Return(nil)

	run := func() *Result {
		d := &Driver{Acquirer: stubRegistry(), Renderer: r, Out: &bytes.Buffer{}}
		res, err := d.Run(context.Background(), cfg)
		require.NoError(t, err)
		return res
	}
	first, second := run(), run()
	assert.Equal(t, first.Table, second.Table)
	r.AssertNumberOfCalls(t, "Save", 2)
}

func TestDriver_AcquireFailureWritesNothing(t *testing.T) {
	cfg := stubConfig(t)
	boom := errors.New("model not found")
	acq := registry.New(nil,
		registry.WithBackend("a", stubBackend(11)),
		registry.WithBackend("b", func(context.Context, config.Model) (tokenizer.Tokenizer, error) {
			return nil, boom
		}),
		registry.WithBackend("c", stubBackend(9)),
	)

	r := &mockRenderer{}
	var out bytes.Buffer
	d := &Driver{Acquirer: acq, Renderer: r, Out: &out}

	_, err := d.Run(context.Background(), cfg)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "BERT (WordPiece)")

	r.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
	r.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	assert.Empty(t, out.String())
	_, statErr := os.Stat(cfg.Output.Path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDriver_SaveFailure(t *testing.T) {
	cfg := stubConfig(t)
	diskFull := errors.New("no space left on device")
	r := &mockRenderer{}
	r.On("Render", mock.Anything, mock.Anything).Return(&chart.Figure{}, nil)
	r.On("Save", mock.Anything, cfg.Output.Path).Return(diskFull)

	var out bytes.Buffer
	d := &Driver{Acquirer: stubRegistry(), Renderer: r, Out: &out}
	_, err := d.Run(context.Background(), cfg)
	require.ErrorIs(t, err, diskFull)
	assert.Empty(t, out.String())
}

func TestDriver_Viewer(t *testing.T) {
	cfg := stubConfig(t)
	r := &mockRenderer{}
	r.On("Render", mock.Anything, mock.Anything).Return(&chart.Figure{}, nil)
	r.On("Save", mock.Anything, cfg.Output.Path).Return(nil)

	v := &mockViewer{}
	v.On("Open", mock.Anything, cfg.Output.Path).Return(errors.New("no display")).Once()

	var out bytes.Buffer
	d := &Driver{Acquirer: stubRegistry(), Renderer: r, Viewer: v, Out: &out}
	_, err := d.Run(context.Background(), cfg)
	require.NoError(t, err)
	v.AssertExpectations(t)
	assert.Equal(t, "Visualization saved as '"+cfg.Output.Path+"'\n", out.String())
}

func TestDriver_BreakdownUsesFixedText(t *testing.T) {
	cfg := stubConfig(t)
	cfg.Samples = []config.Sample{{Label: "Only", Text: "one two"}}

	r := &mockRenderer{}
	r.On("Render", mock.Anything, mock.Anything).Return(&chart.Figure{}, nil)
	r.On("Save", mock.Anything, mock.Anything).Return(nil)

	d := &Driver{Acquirer: stubRegistry(), Renderer: r, Out: &bytes.Buffer{}}
	res, err := d.Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Table.Len())
	assert.Equal(t, catText, res.Breakdown.Text)
	require.Len(t, res.Breakdown.Bars, 3)
	assert.Equal(t, 11, res.Breakdown.Bars[0].Count())
}
