// Package vocabulary maps categorical strings to stable integer codes.
//
// A Vocabulary is fit once on training data and then frozen. Codes are
// assigned 0..n-1 to the distinct values in ascending byte order, so the same
// input set always yields the same mapping. Values outside the fitted set are
// rejected rather than mapped to a fallback code.
package vocabulary

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownCategory = errors.New("unknown_category")
	ErrEmptyVocabulary = errors.New("empty_vocabulary")
	ErrInvalidSnapshot = errors.New("invalid_vocabulary_snapshot")
)

// Vocabulary has no exported mutators and is safe for concurrent reads.
type Vocabulary struct {
	name    string
	classes []string
	codes   map[string]int
}

// Snapshot is the serialized form of a Vocabulary.
type Snapshot struct {
	Name    string   `json:"name"`
	Classes []string `json:"classes"`
}

func Fit(name string, values []string) (*Vocabulary, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyVocabulary, name)
	}

	distinct := make(map[string]struct{}, len(values))
	for _, v := range values {
		distinct[v] = struct{}{}
	}
	classes := make([]string, 0, len(distinct))
	for v := range distinct {
		classes = append(classes, v)
	}
	sort.Strings(classes)

	return build(name, classes), nil
}

// Restore rebuilds a Vocabulary from a snapshot. Classes must be distinct and
// in ascending order, exactly as Fit produces them.
func Restore(s Snapshot) (*Vocabulary, error) {
	if len(s.Classes) == 0 {
		return nil, fmt.Errorf("%w: %s has no classes", ErrInvalidSnapshot, s.Name)
	}
	for i := 1; i < len(s.Classes); i++ {
		if s.Classes[i-1] >= s.Classes[i] {
			return nil, fmt.Errorf("%w: %s classes not strictly ascending at %q", ErrInvalidSnapshot, s.Name, s.Classes[i])
		}
	}
	return build(s.Name, append([]string(nil), s.Classes...)), nil
}

func build(name string, classes []string) *Vocabulary {
	codes := make(map[string]int, len(classes))
	for i, c := range classes {
		codes[c] = i
	}
	return &Vocabulary{name: name, classes: classes, codes: codes}
}

func (v *Vocabulary) Apply(value string) (int, error) {
	code, ok := v.codes[value]
	if !ok {
		return 0, fmt.Errorf("%w: %s %q", ErrUnknownCategory, v.name, value)
	}
	return code, nil
}

func (v *Vocabulary) Name() string { return v.name }

func (v *Vocabulary) Len() int { return len(v.classes) }

// Classes returns a copy of the fitted classes in code order.
func (v *Vocabulary) Classes() []string {
	return append([]string(nil), v.classes...)
}

func (v *Vocabulary) Snapshot() Snapshot {
	return Snapshot{Name: v.name, Classes: v.Classes()}
}
