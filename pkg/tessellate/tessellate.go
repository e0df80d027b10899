// Package tessellate turns an evaluated model into triangle meshes
// using each part's geometry. One mesh is produced per part.
package tessellate

import (
	"fmt"

	"github.com/chazu/heartwood/pkg/engine"
	"github.com/chazu/heartwood/pkg/kernel"
)

// Tessellate produces one triangle mesh per part, in definition order.
// Parts are placed at their frames. The tessellator is read-only and
// never mutates the model.
func Tessellate(m *engine.Model) ([]*kernel.Mesh, error) {
	if m == nil {
		return nil, nil
	}

	var meshes []*kernel.Mesh
	for _, p := range m.Parts() {
		mesh, err := p.Geometry()
		if err != nil {
			return nil, fmt.Errorf("tessellate: part %q: %w", p.Name(), err)
		}
		if mesh.IsEmpty() {
			continue
		}
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}
