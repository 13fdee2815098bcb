package dictionary

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openkraft/encmend/internal/domain"
)

// YAMLLoader implements domain.DictionaryLoader.
//
// Two layouts are accepted and may be combined; file order is kept:
//
//	entries:
//	  - pattern: "结果映\uFFFD"
//	    replacement: "结果映射"
//	replacements:
//	  "映\uFFFD": "映射"
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads and validates a dictionary file. An empty path yields an
// empty dictionary.
func (l *YAMLLoader) Load(path string) (*domain.RepairDictionary, error) {
	if path == "" {
		return domain.NewRepairDictionary("", nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dictionary: %w", err)
	}
	entries, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	dict, err := domain.NewRepairDictionary(path, entries)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return dict, nil
}

// Parse decodes dictionary YAML into entries in document order.
func Parse(data []byte) ([]domain.DictionaryEntry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: top level must be a mapping", domain.ErrInvalidDictionary, root.Line)
	}

	var entries []domain.DictionaryEntry
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "entries":
			if val.Kind != yaml.SequenceNode {
				return nil, fmt.Errorf("%w: line %d: entries must be a list", domain.ErrInvalidDictionary, val.Line)
			}
			for _, item := range val.Content {
				var e domain.DictionaryEntry
				if err := item.Decode(&e); err != nil {
					return nil, fmt.Errorf("line %d: %w", item.Line, err)
				}
				entries = append(entries, e)
			}
		case "replacements":
			if val.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("%w: line %d: replacements must be a mapping", domain.ErrInvalidDictionary, val.Line)
			}
			for j := 0; j+1 < len(val.Content); j += 2 {
				entries = append(entries, domain.DictionaryEntry{
					Pattern:     val.Content[j].Value,
					Replacement: val.Content[j+1].Value,
				})
			}
		default:
			return nil, fmt.Errorf("%w: line %d: unknown key %q", domain.ErrInvalidDictionary, key.Line, key.Value)
		}
	}
	return entries, nil
}
