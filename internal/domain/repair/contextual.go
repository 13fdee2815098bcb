package repair

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/openkraft/encmend/internal/domain"
)

// Context rule labels recorded on substitutions.
const (
	RuleComment   = "comment"
	RuleStatement = "statement"
)

var commentRe = regexp.MustCompile(`(?s)<!--.*?-->`)

type span struct {
	start, end int
	rule       string
}

// ContextualStrategy replaces an isolated U+FFFD with a default character
// when it directly follows a letter inside an XML comment or an identifier
// inside a statement element. Everything else is left alone.
type ContextualStrategy struct {
	replacement string
	comments    bool
	statements  []*regexp.Regexp
}

// NewContextualStrategy compiles one matcher per statement element.
func NewContextualStrategy(cfg domain.ContextualConfig) (*ContextualStrategy, error) {
	if utf8.RuneCountInString(cfg.DefaultChar) != 1 || cfg.ContextualRune() == domain.ReplacementChar {
		return nil, fmt.Errorf("%w: contextual default character %q", domain.ErrInvalidConfig, cfg.DefaultChar)
	}
	cs := &ContextualStrategy{replacement: cfg.DefaultChar, comments: cfg.Comments}
	for _, el := range cfg.StatementElements {
		name := regexp.QuoteMeta(strings.TrimSpace(el))
		re, err := regexp.Compile(`(?is)<` + name + `\b[^>]*>.*?</` + name + `\s*>`)
		if err != nil {
			return nil, fmt.Errorf("compiling statement element %q: %w", el, err)
		}
		cs.statements = append(cs.statements, re)
	}
	return cs, nil
}

func (c *ContextualStrategy) Name() domain.Strategy { return domain.StrategyContextual }

func (c *ContextualStrategy) spans(text string) []span {
	var out []span
	if c.comments {
		for _, loc := range commentRe.FindAllStringIndex(text, -1) {
			out = append(out, span{loc[0], loc[1], RuleComment})
		}
	}
	for _, re := range c.statements {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			out = append(out, span{loc[0], loc[1], RuleStatement})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}

// Apply walks text once, copying bytes through unchanged except for the
// U+FFFD occurrences a rule accepts.
func (c *ContextualStrategy) Apply(text string) (string, []domain.Substitution) {
	spans := c.spans(text)
	if len(spans) == 0 {
		return text, nil
	}

	const fffdLen = 3
	counts := map[string]int{}
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r != domain.ReplacementChar || size != fffdLen {
			i += size
			continue
		}
		if rule := c.match(text, i, spans); rule != "" {
			b.WriteString(text[last:i])
			b.WriteString(c.replacement)
			last = i + size
			counts[rule]++
		}
		i += size
	}
	if len(counts) == 0 {
		return text, nil
	}
	b.WriteString(text[last:])

	var subs []domain.Substitution
	for _, rule := range []string{RuleComment, RuleStatement} {
		if n := counts[rule]; n > 0 {
			subs = append(subs, domain.Substitution{
				Strategy:    domain.StrategyContextual,
				Pattern:     rule,
				Replacement: c.replacement,
				Count:       n,
			})
		}
	}
	return b.String(), subs
}

// match returns the rule that accepts the U+FFFD at byte offset i, or "".
func (c *ContextualStrategy) match(text string, i int, spans []span) string {
	prev, _ := utf8.DecodeLastRuneInString(text[:i])
	next, nextSize := utf8.DecodeRuneInString(text[i+3:])
	if prev == domain.ReplacementChar || (nextSize == 3 && next == domain.ReplacementChar) {
		return ""
	}

	for _, s := range spans {
		if s.start > i {
			break
		}
		if i >= s.end {
			continue
		}
		switch s.rule {
		case RuleComment:
			if unicode.IsLetter(prev) {
				return RuleComment
			}
		case RuleStatement:
			if followsIdentifier(text[s.start:i]) {
				return RuleStatement
			}
		}
	}
	return ""
}

// followsIdentifier reports whether s ends in [A-Za-z_][A-Za-z0-9_]*.
func followsIdentifier(s string) bool {
	j := len(s)
	for j > 0 && isIdentByte(s[j-1]) {
		j--
	}
	if j == len(s) {
		return false
	}
	first := s[j]
	return first == '_' || (first >= 'A' && first <= 'Z') || (first >= 'a' && first <= 'z')
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
