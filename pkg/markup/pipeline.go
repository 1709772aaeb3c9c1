package markup

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Pipeline is an immutable, ordered set of markup removal rules.
// It is safe for concurrent use.
type Pipeline struct {
	rules   []Rule
	form    norm.Form
	useForm bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithUnicodeForm applies the given Unicode normalization form to the input
// before any rule runs.
func WithUnicodeForm(form norm.Form) Option {
	return func(p *Pipeline) {
		p.form = form
		p.useForm = true
	}
}

// WithRules appends extra prose rules after the built-in ones.
// They run before blank line collapsing and never see fenced code.
func WithRules(rules ...Rule) Option {
	return func(p *Pipeline) {
		p.rules = append(p.rules, rules...)
	}
}

// New builds a pipeline with the built-in rule set and the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{rules: DefaultRules()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// maxPasses bounds the fixed point loop for caller supplied rules that
// might not shrink the text.
const maxPasses = 64

var defaultPipeline = New()

// Default returns the shared pipeline with the built-in rules only.
func Default() *Pipeline {
	return defaultPipeline
}

// Normalize strips markup from text with the default pipeline.
func Normalize(text string) string {
	return defaultPipeline.Normalize(text)
}

// Rules lists the stage names in execution order, including the fixed
// stages that wrap the prose rules.
func (p *Pipeline) Rules() []string {
	names := []string{"line-endings"}
	if p.useForm {
		names = append(names, "unicode-form")
	}
	names = append(names, "fenced-code")
	for _, r := range p.rules {
		names = append(names, r.Name)
	}
	return append(names, "whitespace")
}

// Fingerprint identifies the transform this pipeline applies. Two pipelines
// with the same fingerprint produce the same output for every input, so it
// is safe to key cached results on it. Stage names alone are not enough:
// every Unicode form reports as "unicode-form" and caller rules may share a
// name while matching different text.
func (p *Pipeline) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(formName(p.form, p.useForm)))
	for _, r := range p.rules {
		for _, field := range []string{r.Name, r.Pattern.String(), r.Replacement} {
			h.Write([]byte{0})
			h.Write([]byte(field))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

func formName(form norm.Form, enabled bool) string {
	if !enabled {
		return "none"
	}
	switch form {
	case norm.NFC:
		return "NFC"
	case norm.NFD:
		return "NFD"
	case norm.NFKC:
		return "NFKC"
	case norm.NFKD:
		return "NFKD"
	}
	return "form-" + strconv.Itoa(int(form))
}

// Normalize removes markup constructs from text and returns plain text.
//
// Fenced code blocks are unwrapped first and shielded from the prose rules.
// The prose rules are then applied in order, repeatedly, until a pass changes
// nothing, so a prefix exposed by an earlier removal ("> - item") is also
// stripped. Runs of three or more line breaks collapse to one blank line and
// the result is trimmed.
//
// A second call leaves prose unchanged. Code unwrapped from a fence is plain
// text on the next call, so code that itself looks like markup ("# comment")
// is stripped then.
func (p *Pipeline) Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = lineEndings.ReplaceAllString(text, "\n")
	if p.useForm {
		text = p.form.String(text)
	}

	text, code := shieldCode(text)

	text = strings.TrimSpace(text)
	for pass := 0; pass < maxPasses; pass++ {
		next := text
		for _, r := range p.rules {
			next = r.apply(next)
		}
		next = strings.TrimSpace(next)
		if next == text {
			break
		}
		text = next
	}

	text = blankRuns.ReplaceAllString(text, "\n\n")
	text = code.restore(text)
	return strings.TrimSpace(text)
}

// shielded holds unwrapped code blocks while the prose rules run.
type shielded struct {
	tokens []string
	blocks []string
}

// shieldCode replaces every fenced block by an opaque token built from a
// private use rune that does not occur in text, so no prose rule can match
// inside it or across its boundaries.
func shieldCode(text string) (string, *shielded) {
	s := &shielded{}
	if !strings.Contains(text, "```") {
		return text, s
	}

	marker, ok := unusedPrivateRune(text)
	if !ok {
		// Nowhere to hide the blocks: unwrap them in place.
		return fencedBlock.ReplaceAllStringFunc(text, unwrapFence), s
	}

	text = fencedBlock.ReplaceAllStringFunc(text, func(match string) string {
		token := string(marker) + strconv.Itoa(len(s.tokens)) + string(marker)
		s.tokens = append(s.tokens, token)
		s.blocks = append(s.blocks, unwrapFence(match))
		return token
	})
	return text, s
}

func unwrapFence(match string) string {
	m := fencedBlock.FindStringSubmatch(match)
	if m == nil {
		return match
	}
	return strings.TrimSpace(m[1])
}

func (s *shielded) restore(text string) string {
	if len(s.tokens) == 0 {
		return text
	}
	pairs := make([]string, 0, 2*len(s.tokens))
	for i, tok := range s.tokens {
		pairs = append(pairs, tok, s.blocks[i])
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

func unusedPrivateRune(text string) (rune, bool) {
	for r := rune(0xE000); r <= 0xF8FF; r++ {
		if !strings.ContainsRune(text, r) {
			return r, true
		}
	}
	return 0, false
}
