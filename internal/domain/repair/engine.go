// Package repair rewrites file contents in memory. Nothing here touches the
// filesystem: callers hand in bytes and get bytes plus a FixResult back.
package repair

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/openkraft/encmend/internal/domain"
	"github.com/openkraft/encmend/internal/domain/charset"
)

// TextStrategy rewrites UTF-8 text that already carries U+FFFD.
type TextStrategy interface {
	Name() domain.Strategy
	Apply(text string) (string, []domain.Substitution)
}

// Request is one file handed to the engine.
type Request struct {
	Path           string
	Data           []byte
	ActualEncoding string
	Strategies     []domain.Strategy
}

// Engine applies the selected strategies in order.
type Engine struct {
	registry *charset.Registry
	text     map[domain.Strategy]TextStrategy
}

// NewEngine wires the text strategies. A nil dictionary disables the
// dictionary pass; the contextual pass is only registered when enabled.
func NewEngine(registry *charset.Registry, dict *domain.RepairDictionary, ctx domain.ContextualConfig) (*Engine, error) {
	if registry == nil {
		return nil, fmt.Errorf("%w: engine needs a charset registry", domain.ErrInvalidConfig)
	}
	e := &Engine{registry: registry, text: make(map[domain.Strategy]TextStrategy)}
	if dict != nil {
		e.text[domain.StrategyDictionary] = NewDictionaryStrategy(dict)
	}
	if ctx.Enabled {
		cs, err := NewContextualStrategy(ctx)
		if err != nil {
			return nil, err
		}
		e.text[domain.StrategyContextual] = cs
	}
	return e, nil
}

// Supports reports whether the strategy can run with this engine.
func (e *Engine) Supports(s domain.Strategy) bool {
	if s == domain.StrategyDeclaration {
		return true
	}
	_, ok := e.text[s]
	return ok
}

// Fix runs the requested strategies over req.Data. The returned bytes are
// req.Data itself whenever the result says nothing changed.
func (e *Engine) Fix(req Request) ([]byte, domain.FixResult) {
	res := domain.FixResult{
		FileName:         filepath.Base(req.Path),
		FilePath:         req.Path,
		Strategies:       req.Strategies,
		OriginalEncoding: req.ActualEncoding,
		NewEncoding:      req.ActualEncoding,
		Success:          true,
	}
	original := CountReplacement(string(req.Data))
	res.SetCounts(original, original)

	if len(req.Strategies) == 0 {
		res.Message = "no strategy selected"
		return req.Data, res
	}

	out := req.Data
	textOnly := true
	var messages []string
	for _, s := range req.Strategies {
		if s == domain.StrategyDeclaration {
			textOnly = false
			next, msg, err := e.declaration(out, req.ActualEncoding)
			if err != nil {
				res.Success = false
				res.NeedsManualReview = true
				res.Message = msg
				return req.Data, res
			}
			out = next
			res.NewEncoding = domain.EncodingUTF8
			messages = append(messages, msg)
			continue
		}

		ts, ok := e.text[s]
		if !ok {
			res.Success = false
			res.Message = fmt.Sprintf("strategy %s is not enabled", s)
			return req.Data, res
		}
		text, subs := ts.Apply(string(out))
		out = []byte(text)
		res.Substitutions = append(res.Substitutions, subs...)
	}

	final := CountReplacement(string(out))
	if final > original {
		res.Success = false
		res.NeedsManualReview = true
		res.NewEncoding = req.ActualEncoding
		res.Message = fmt.Sprintf("%v: U+FFFD count would rise from %d to %d", domain.ErrLossyDecode, original, final)
		return req.Data, res
	}
	res.SetCounts(original, final)

	if textOnly && res.FixedCount == 0 {
		// Persist only when something was repaired.
		res.NeedsManualReview = original > 0
		if original > 0 {
			messages = append(messages, fmt.Sprintf("no replacement characters repaired, %d remain", original))
		} else {
			messages = append(messages, "no replacement characters")
		}
		res.Message = strings.Join(messages, "; ")
		return req.Data, res
	}

	res.Changed = !bytes.Equal(out, req.Data)
	if final > 0 {
		res.NeedsManualReview = true
		messages = append(messages, fmt.Sprintf("%d replacement characters remain", final))
	}
	if res.FixedCount > 0 {
		messages = append(messages, fmt.Sprintf("repaired %d of %d replacement characters", res.FixedCount, original))
	}
	if !res.Changed {
		messages = append(messages, "already clean")
		out = req.Data
	}
	res.Message = strings.Join(messages, "; ")
	return out, res
}

// CountReplacement counts validly encoded U+FFFD code points in s.
func CountReplacement(s string) int {
	return strings.Count(s, string(domain.ReplacementChar))
}
