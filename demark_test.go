package demark_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"

	"github.com/aretw0/demark"
	"github.com/aretw0/demark/pkg/adapters/memory"
	"github.com/aretw0/demark/pkg/domain"
	"github.com/aretw0/demark/pkg/markup"
	"github.com/aretw0/demark/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"
)

type label string

func (l label) String() string { return string(l) }

type ptrLabel struct{ s string }

func (p *ptrLabel) String() string { return p.s }

func TestNormalizeValue(t *testing.T) {
	text := "**bold**"
	var nilText *string
	var nilLabel *ptrLabel

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"Nil", nil, ""},
		{"String", "# Title", "Title"},
		{"Empty String", "", ""},
		{"String Pointer", &text, "bold"},
		{"Nil String Pointer", nilText, ""},
		{"Bytes", []byte("- item"), "item"},
		{"Stringer", label("*it*"), "it"},
		{"Pointer Stringer", &ptrLabel{s: "`x`"}, "x"},
		{"Nil Pointer Stringer", nilLabel, ""},
		{"Zero Int", 0, ""},
		{"Float", 3.14, ""},
		{"Bool", false, ""},
		{"Map", map[string]string{"a": "b"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, demark.NormalizeValue(tt.value))
		})
	}
}

func TestNormalize_MatchesPipeline(t *testing.T) {
	in := "> **Note**: see [docs](http://x)"
	assert.Equal(t, markup.Normalize(in), demark.Normalize(in))
	assert.Equal(t, "Note: see docs", demark.Normalize(in))
}

func TestNormalizer_NoCache(t *testing.T) {
	n := demark.New()
	assert.Equal(t, "bold", n.Normalize(context.Background(), "**bold**"))
	assert.Equal(t, "", n.Normalize(context.Background(), ""))
}

func TestNormalizer_CacheHit(t *testing.T) {
	ctx := context.Background()
	cache := memory.NewCache()
	metrics := observability.NewMetrics()
	n := demark.New(demark.WithCache(cache), demark.WithMetrics(metrics))

	first := n.Normalize(ctx, "## Title")
	second := n.Normalize(ctx, "## Title")

	assert.Equal(t, "Title", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.Len())

	body := scrape(t, metrics)
	assert.Contains(t, body, `demark_normalize_total{source="computed"} 1`)
	assert.Contains(t, body, `demark_normalize_total{source="cache"} 1`)
}

func TestNormalizer_CacheKeyIncludesPipeline(t *testing.T) {
	ctx := context.Background()
	cache := memory.NewCache()

	plain := demark.New(demark.WithCache(cache))
	nfc := demark.New(demark.WithCache(cache), demark.WithPipeline(markup.New(markup.WithUnicodeForm(norm.NFC))))

	decomposed := "cafe\u0301"
	assert.Equal(t, decomposed, plain.Normalize(ctx, decomposed))
	assert.Equal(t, "caf\u00e9", nfc.Normalize(ctx, decomposed))
	assert.Equal(t, 2, cache.Len())

	// Forms share a stage name but not a transform.
	nfd := demark.New(demark.WithCache(cache), demark.WithPipeline(markup.New(markup.WithUnicodeForm(norm.NFD))))
	composed := "caf\u00e9"
	assert.Equal(t, "caf\u00e9", nfc.Normalize(ctx, composed))
	assert.Equal(t, "cafe\u0301", nfd.Normalize(ctx, composed))

	// Caller rules may share a name while matching different text.
	strike := demark.New(demark.WithCache(cache), demark.WithPipeline(markup.New(markup.WithRules(markup.Rule{
		Name: "extra", Pattern: regexp.MustCompile(`~~(.*?)~~`), Replacement: "$1",
	}))))
	highlight := demark.New(demark.WithCache(cache), demark.WithPipeline(markup.New(markup.WithRules(markup.Rule{
		Name: "extra", Pattern: regexp.MustCompile(`==(.*?)==`), Replacement: "$1",
	}))))
	in := "~~old~~ ==new=="
	assert.Equal(t, "old ==new==", strike.Normalize(ctx, in))
	assert.Equal(t, "~~old~~ new", highlight.Normalize(ctx, in))
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (string, error) {
	return "", errors.New("connection refused")
}
func (brokenCache) Set(context.Context, string, string) error { return errors.New("connection refused") }
func (brokenCache) Delete(context.Context, string) error      { return nil }

func TestNormalizer_CacheFailureIsInvisible(t *testing.T) {
	metrics := observability.NewMetrics()
	n := demark.New(demark.WithCache(brokenCache{}), demark.WithMetrics(metrics))

	assert.Equal(t, "item", n.Normalize(context.Background(), "- item"))

	body := scrape(t, metrics)
	assert.Contains(t, body, `demark_cache_errors_total{op="get"} 1`)
	assert.Contains(t, body, `demark_cache_errors_total{op="set"} 1`)
}

func TestNormalizer_Concurrent(t *testing.T) {
	ctx := context.Background()
	n := demark.New(demark.WithCache(memory.NewCache(memory.WithLimit(8))))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := fmt.Sprintf("**item %d**", i%10)
			assert.Equal(t, fmt.Sprintf("item %d", i%10), n.Normalize(ctx, in))
		}(i)
	}
	wg.Wait()
}

func TestNormalizer_Render(t *testing.T) {
	errMsg := "rate limited"
	resp := &domain.Response{
		Status:    "ok",
		Summary:   "## Summary\n\n**Reuters** leads.",
		Query:     "latest tech news",
		ToolsUsed: []string{"search", "Reasoning", "browser"},
		ChainUsed: "research_chain",
		Timeline: []domain.Step{
			{Step: 1, Tool: "search", Output: "raw", OutputSummary: "Found *9* sources"},
			{Tool: "reasoning", Output: "- ranked by date"},
			{},
		},
		Error: &errMsg,
	}

	view := demark.New().Render(context.Background(), resp)

	assert.Equal(t, "latest tech news", view.Query)
	assert.Equal(t, "ok", view.Status)
	assert.Equal(t, "Summary\n\nReuters leads.", view.Summary)
	assert.Equal(t, "research_chain", view.Chain)
	assert.Equal(t, "rate limited", view.Error)
	assert.Equal(t, []domain.ToolBadge{
		{Name: "search", Icon: "🔍"},
		{Name: "Reasoning", Icon: "🧠"},
		{Name: "browser", Icon: "⚡"},
	}, view.Tools)

	require.Len(t, view.Steps, 3)
	assert.Equal(t, domain.StepView{Number: 1, Tool: "search", Icon: "🔍", Text: "Found 9 sources"}, view.Steps[0])
	assert.Equal(t, domain.StepView{Number: 2, Tool: "reasoning", Icon: "🧠", Text: "ranked by date"}, view.Steps[1])
	assert.Equal(t, domain.StepView{Number: 3, Tool: "Processing", Icon: "⚡", Text: "Processing..."}, view.Steps[2])
}

func TestNormalizer_RenderDefaults(t *testing.T) {
	view := demark.New().Render(context.Background(), nil)

	assert.Equal(t, domain.StatusOK, view.Status)
	assert.Equal(t, domain.DefaultSummary, view.Summary)
	assert.Equal(t, domain.DefaultChain, view.Chain)
	assert.NotNil(t, view.Tools)
	assert.NotNil(t, view.Steps)
	assert.Empty(t, view.Error)
}

func TestNormalizer_Rules(t *testing.T) {
	rules := demark.New().Rules()
	assert.Equal(t, markup.Default().Rules(), rules)
}

func scrape(t *testing.T, m *observability.Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	return string(body)
}
