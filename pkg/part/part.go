package part

import (
	"fmt"

	"github.com/chazu/heartwood/pkg/geometry"
	"github.com/chazu/heartwood/pkg/kernel"
	"github.com/chazu/heartwood/pkg/shape"
)

// Part is a solid with an editable feature history. It keeps the pristine
// base shape it was created with, the current shape produced by the applied
// features, and the ordered list of features themselves so the history can
// be rewound, pruned, and replayed.
type Part struct {
	name       string
	key        string
	attributes map[string]any

	frame geometry.Frame

	original shape.Shape // baseline, never mutated after construction
	current  shape.Shape

	features        []Feature
	transformations []geometry.Transform // most recent first

	registry Registry
}

// New creates a part from a base shape. The part takes a private clone of
// the base as its baseline, so the caller's shape stays independent. The
// registry decides which operation names the part accepts; pass
// DefaultRegistry for the stock set.
func New(name string, base shape.Shape, reg Registry) (*Part, error) {
	if base == nil {
		return nil, fmt.Errorf("part %q: nil base shape", name)
	}
	return &Part{
		name:       name,
		attributes: map[string]any{},
		original:   base.Clone(),
		current:    base.Clone(),
		registry:   reg,
	}, nil
}

func (p *Part) Name() string { return p.name }

func (p *Part) Key() string       { return p.key }
func (p *Part) SetKey(key string) { p.key = key }

// Attributes returns the part's attribute map for reading and writing.
func (p *Part) Attributes() map[string]any { return p.attributes }

// Frame returns the part's placement frame, defaulting to world XY when
// none has been set.
func (p *Part) Frame() geometry.Frame {
	if p.frame.IsZero() {
		return geometry.WorldXY()
	}
	return p.frame
}

func (p *Part) SetFrame(f geometry.Frame) { p.frame = f }

// Shape returns the current shape. Callers must not mutate it; clone
// first for anything destructive.
func (p *Part) Shape() shape.Shape { return p.current }

// Original returns the baseline shape the part was created with.
func (p *Part) Original() shape.Shape { return p.original }

// Features returns the applied features in application order. The slice
// is a copy; the features themselves are shared.
func (p *Part) Features() []Feature {
	out := make([]Feature, len(p.features))
	copy(out, p.features)
	return out
}

// Transformations returns the recorded part transforms, most recent first.
func (p *Part) Transformations() []geometry.Transform {
	out := make([]geometry.Transform, len(p.transformations))
	copy(out, p.transformations)
	return out
}

// AddFeature applies the named operation with the given operand and, on
// success, appends the resulting feature to the history. Nothing is
// recorded and the current shape is untouched when the operation name is
// unknown, the operand kind does not match, or the kernel produces no
// usable result.
func (p *Part) AddFeature(input shape.Shape, operation string) (Feature, error) {
	f, err := newFeature(p, input, operation)
	if err != nil {
		return nil, err
	}
	if err := f.Apply(p); err != nil {
		return nil, err
	}
	p.features = append(p.features, f)
	return f, nil
}

// ReplayAllFeatures rebuilds the current shape from the baseline by
// re-running every recorded feature in order. Recorded part transforms
// are re-applied to the baseline first so the replay starts from the
// part's present placement.
func (p *Part) ReplayAllFeatures() error {
	if len(p.features) == 0 {
		return ErrEmptyHistory
	}
	rebuilt := p.original.Clone()
	for i := len(p.transformations) - 1; i >= 0; i-- {
		rebuilt.Transform(p.transformations[i])
	}
	p.current = rebuilt
	return p.replayFrom(0)
}

// ClearFeatures removes the given features from the history, rewinds to
// the state before the earliest of them, and replays the survivors.
// Called with no arguments it discards the whole history and restores the
// untransformed baseline. Validation is strict: when any argument is not
// in the history the whole call fails and the part is left untouched,
// even if other arguments are valid members.
func (p *Part) ClearFeatures(toClear ...Feature) error {
	if len(toClear) == 0 {
		p.current = p.original.Clone()
		p.features = nil
		p.transformations = nil
		return nil
	}

	earliest := len(p.features)
	clearing := make(map[Feature]bool, len(toClear))
	for _, f := range toClear {
		idx := p.indexOf(f)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrFeatureNotFound, f.Operation())
		}
		if idx < earliest {
			earliest = idx
		}
		clearing[f] = true
	}

	// Rewind to just before the earliest removed feature, then drop the
	// removed ones and re-run everything that followed.
	if err := p.features[earliest].Restore(); err != nil {
		return err
	}
	survivors := make([]Feature, 0, len(p.features)-len(clearing))
	for _, f := range p.features {
		if !clearing[f] {
			survivors = append(survivors, f)
		}
	}
	p.features = survivors
	return p.replayFrom(earliest)
}

// replayFrom re-applies features[start:] against the current shape.
func (p *Part) replayFrom(start int) error {
	for _, f := range p.features[start:] {
		if err := f.Apply(p); err != nil {
			return err
		}
	}
	return nil
}

func (p *Part) indexOf(f Feature) int {
	for i, have := range p.features {
		if have == f {
			return i
		}
	}
	return -1
}

// Transform moves the part: the current shape, every feature operand,
// and every feature snapshot are transformed so later replays and
// rewinds reproduce the new placement, and the transform is recorded.
// The baseline is never written.
func (p *Part) Transform(t geometry.Transform) {
	p.current.Transform(t)
	for _, f := range p.features {
		f.transform(t)
	}
	p.transformations = append([]geometry.Transform{t}, p.transformations...)
}

// Geometry returns a drawable mesh of the current shape placed at the
// part's frame. The part itself is not modified.
func (p *Part) Geometry() (*kernel.Mesh, error) {
	placed := p.current.Clone()
	if t := geometry.BetweenFrames(geometry.WorldXY(), p.Frame()); !t.IsIdentity() {
		placed.Transform(t)
	}
	m, err := placed.Drawable()
	if err != nil {
		return nil, fmt.Errorf("part %q geometry: %w", p.name, err)
	}
	m.Name = p.name
	return m, nil
}
