package demark

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"time"

	"github.com/aretw0/demark/pkg/domain"
	"github.com/aretw0/demark/pkg/markup"
	"github.com/aretw0/demark/pkg/observability"
	"github.com/aretw0/demark/pkg/ports"
)

// Normalize strips markup from text using the built-in rules.
// It is pure and deterministic, and idempotent on prose outside code fences.
func Normalize(text string) string {
	return markup.Normalize(text)
}

// NormalizeValue normalizes an optional text value.
// Strings, string pointers, byte slices and fmt.Stringer values are
// normalized. Every other value, including nil, a nil pointer and
// numbers, yields "".
func NormalizeValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return Normalize(t)
	case *string:
		if t == nil {
			return ""
		}
		return Normalize(*t)
	case []byte:
		return Normalize(string(t))
	case fmt.Stringer:
		if isNilPointer(t) {
			return ""
		}
		return Normalize(t.String())
	default:
		return ""
	}
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// Normalizer is the normalization service used by the CLI and the servers.
// It wraps a markup pipeline with an optional cache, metrics and logging.
// It is safe for concurrent use when its cache is.
type Normalizer struct {
	pipeline     *markup.Pipeline
	cache        ports.Cache
	cacheTimeout time.Duration
	metrics      *observability.Metrics
	logger       *slog.Logger
	fingerprint  string
}

// Option defines a functional option for configuring the Normalizer.
type Option func(*Normalizer)

// WithPipeline replaces the default markup pipeline.
func WithPipeline(p *markup.Pipeline) Option {
	return func(n *Normalizer) {
		n.pipeline = p
	}
}

// WithCache stores normalized text keyed by a digest of the input.
func WithCache(c ports.Cache) Option {
	return func(n *Normalizer) {
		n.cache = c
	}
}

// WithCacheTimeout bounds every cache call. Zero means no bound.
func WithCacheTimeout(d time.Duration) Option {
	return func(n *Normalizer) {
		n.cacheTimeout = d
	}
}

// WithMetrics records normalizations and cache failures.
func WithMetrics(m *observability.Metrics) Option {
	return func(n *Normalizer) {
		n.metrics = m
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) {
		n.logger = logger
	}
}

// New creates a Normalizer. Without options it behaves exactly like Normalize.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		pipeline:     markup.Default(),
		cacheTimeout: 250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.logger == nil {
		n.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	// Cached results are only valid for the pipeline that produced them.
	n.fingerprint = n.pipeline.Fingerprint()
	return n
}

// Rules lists the stages of the configured pipeline in execution order.
func (n *Normalizer) Rules() []string {
	return n.pipeline.Rules()
}

// Normalize strips markup from text. Cache failures are logged and counted,
// never returned: the result is always the pipeline's output.
func (n *Normalizer) Normalize(ctx context.Context, text string) string {
	if text == "" {
		return ""
	}
	if n.cache == nil {
		return n.compute(text)
	}

	key := n.key(text)
	if cached, err := n.cacheGet(ctx, key); err == nil {
		n.metrics.ObserveNormalize(observability.SourceCache, len(text), 0)
		return cached
	} else if !errors.Is(err, domain.ErrCacheMiss) {
		n.metrics.CacheError("get")
		n.logger.Warn("cache lookup failed", "error", err, "key", key)
	}

	out := n.compute(text)
	if err := n.cacheSet(ctx, key, out); err != nil {
		n.metrics.CacheError("set")
		n.logger.Warn("cache store failed", "error", err, "key", key)
	}
	return out
}

func (n *Normalizer) compute(text string) string {
	start := time.Now()
	out := n.pipeline.Normalize(text)
	elapsed := time.Since(start)
	n.metrics.ObserveNormalize(observability.SourceComputed, len(text), elapsed)
	n.logger.Debug("normalized", "in_bytes", len(text), "out_bytes", len(out), "duration", elapsed)
	return out
}

func (n *Normalizer) key(text string) string {
	h := sha256.New()
	h.Write([]byte(n.fingerprint))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

func (n *Normalizer) cacheGet(ctx context.Context, key string) (string, error) {
	ctx, cancel := n.bound(ctx)
	defer cancel()
	return n.cache.Get(ctx, key)
}

func (n *Normalizer) cacheSet(ctx context.Context, key, value string) error {
	ctx, cancel := n.bound(ctx)
	defer cancel()
	return n.cache.Set(ctx, key, value)
}

func (n *Normalizer) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if n.cacheTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, n.cacheTimeout)
}

// Render turns an assistant response into its presentation model.
// Empty fields take their defaults first; the summary and every step text
// are normalized. A nil response renders as an empty successful answer.
func (n *Normalizer) Render(ctx context.Context, resp *domain.Response) domain.View {
	var r domain.Response
	if resp != nil {
		r = *resp
	}
	r = r.WithDefaults(r.Query)

	view := domain.View{
		Query:   r.Query,
		Status:  r.Status,
		Summary: n.Normalize(ctx, r.Summary),
		Chain:   r.ChainUsed,
		Tools:   make([]domain.ToolBadge, 0, len(r.ToolsUsed)),
		Steps:   make([]domain.StepView, 0, len(r.Timeline)),
	}
	if r.Error != nil {
		view.Error = *r.Error
	}

	for _, tool := range r.ToolsUsed {
		view.Tools = append(view.Tools, domain.ToolBadge{Name: tool, Icon: domain.ToolIcon(tool)})
	}
	for i, step := range r.Timeline {
		view.Steps = append(view.Steps, domain.StepView{
			Number: step.Number(i),
			Tool:   step.Label(),
			Icon:   domain.ToolIcon(step.Tool),
			Text:   n.Normalize(ctx, step.RawText()),
		})
	}
	return view
}
