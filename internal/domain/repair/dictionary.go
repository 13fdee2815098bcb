package repair

import (
	"strings"

	"github.com/openkraft/encmend/internal/domain"
)

// DictionaryStrategy applies literal, longest-first substitutions.
type DictionaryStrategy struct {
	entries []domain.DictionaryEntry
}

// NewDictionaryStrategy takes the dictionary's order as given; the
// dictionary itself guarantees longest-first.
func NewDictionaryStrategy(dict *domain.RepairDictionary) *DictionaryStrategy {
	return &DictionaryStrategy{entries: dict.Entries()}
}

func (d *DictionaryStrategy) Name() domain.Strategy { return domain.StrategyDictionary }

// Apply replaces every occurrence of each pattern in turn and reports how
// often each entry fired.
func (d *DictionaryStrategy) Apply(text string) (string, []domain.Substitution) {
	var subs []domain.Substitution
	for _, e := range d.entries {
		n := strings.Count(text, e.Pattern)
		if n == 0 {
			continue
		}
		text = strings.ReplaceAll(text, e.Pattern, e.Replacement)
		subs = append(subs, domain.Substitution{
			Strategy:    domain.StrategyDictionary,
			Pattern:     e.Pattern,
			Replacement: e.Replacement,
			Count:       n,
		})
	}
	return text, subs
}
