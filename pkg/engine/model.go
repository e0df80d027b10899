package engine

import (
	"fmt"

	"github.com/chazu/heartwood/pkg/part"
)

// Model is the result of evaluating a source file: the named parts in
// definition order. Evaluation builds exactly one model; re-evaluating
// the same source builds an equivalent one.
type Model struct {
	parts  []*part.Part
	byName map[string]*part.Part
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{byName: make(map[string]*part.Part)}
}

// Add registers a part under its name. Names are unique per model.
func (m *Model) Add(p *part.Part) error {
	if _, exists := m.byName[p.Name()]; exists {
		return fmt.Errorf("part %q already defined", p.Name())
	}
	m.byName[p.Name()] = p
	m.parts = append(m.parts, p)
	return nil
}

// Lookup returns the part with the given name, or nil.
func (m *Model) Lookup(name string) *part.Part {
	return m.byName[name]
}

// Parts returns the parts in definition order. The slice is a copy.
func (m *Model) Parts() []*part.Part {
	out := make([]*part.Part, len(m.parts))
	copy(out, m.parts)
	return out
}

// PartCount returns the number of defined parts.
func (m *Model) PartCount() int { return len(m.parts) }
