package part

import (
	"fmt"

	"github.com/chazu/heartwood/pkg/geometry"
	"github.com/chazu/heartwood/pkg/kernel"
	"github.com/chazu/heartwood/pkg/shape"
)

// Data is the serializable form of a part. Shapes are stored as
// constructive records, so loading a part re-executes its history against
// a kernel rather than deserializing opaque geometry.
type Data struct {
	Name            string               `json:"name"`
	Key             string               `json:"key,omitempty"`
	Attributes      map[string]any       `json:"attributes,omitempty"`
	Frame           *geometry.Frame      `json:"frame,omitempty"`
	Shape           *shape.Record        `json:"shape"`
	Features        []FeatureData        `json:"features,omitempty"`
	Transformations []geometry.Transform `json:"transformations,omitempty"`
}

// FeatureData records one history entry: the operand and the operation
// applied with it.
type FeatureData struct {
	Shape     *shape.Record `json:"shape"`
	Operation string        `json:"operation"`
}

// ToData captures the part's baseline, feature history, and recorded
// transforms. The current shape is not stored; FromData rebuilds it.
func (p *Part) ToData() (*Data, error) {
	base, err := shape.Encode(p.original)
	if err != nil {
		return nil, fmt.Errorf("part %q: encode baseline: %w", p.name, err)
	}
	d := &Data{
		Name:            p.name,
		Key:             p.key,
		Attributes:      p.attributes,
		Shape:           base,
		Transformations: p.Transformations(),
	}
	if !p.frame.IsZero() {
		f := p.frame
		d.Frame = &f
	}
	for _, feat := range p.features {
		rec, err := shape.Encode(feat.Input())
		if err != nil {
			return nil, fmt.Errorf("part %q: encode %s operand: %w", p.name, feat.Operation(), err)
		}
		d.Features = append(d.Features, FeatureData{Shape: rec, Operation: feat.Operation()})
	}
	return d, nil
}

// FromData reconstructs a part by replaying its stored history against
// the given kernel: the baseline is decoded, the recorded transforms are
// re-applied to it, and every feature is added back in order.
func FromData(d *Data, reg Registry, k kernel.Kernel) (*Part, error) {
	if d == nil || d.Shape == nil {
		return nil, fmt.Errorf("part data: missing baseline shape")
	}
	base, err := shape.Decode(d.Shape, k)
	if err != nil {
		return nil, fmt.Errorf("part %q: decode baseline: %w", d.Name, err)
	}
	p, err := New(d.Name, base, reg)
	if err != nil {
		return nil, err
	}
	p.key = d.Key
	if d.Attributes != nil {
		p.attributes = d.Attributes
	}
	if d.Frame != nil {
		p.frame = *d.Frame
	}

	// Stored operands already reflect the recorded transforms, so the
	// transforms are replayed onto the working shape only, not re-applied
	// through Transform.
	p.transformations = append([]geometry.Transform(nil), d.Transformations...)
	for i := len(p.transformations) - 1; i >= 0; i-- {
		p.current.Transform(p.transformations[i])
	}

	for _, fd := range d.Features {
		operand, err := shape.Decode(fd.Shape, k)
		if err != nil {
			return nil, fmt.Errorf("part %q: decode %s operand: %w", d.Name, fd.Operation, err)
		}
		if _, err := p.AddFeature(operand, fd.Operation); err != nil {
			return nil, fmt.Errorf("part %q: replay: %w", d.Name, err)
		}
	}
	return p, nil
}
