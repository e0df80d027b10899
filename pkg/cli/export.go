package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/heartwood/pkg/engine"
	"github.com/chazu/heartwood/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// MeshData is the JSON-serializable mesh format consumed by viewers.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// ExportData is the top-level document written by the export command.
type ExportData struct {
	Meshes []MeshData `json:"meshes"`
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Evaluate a source file and export part meshes as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	path := args[0]
	eng := engine.NewEngine(newKernel())

	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	m, evalErrs, err := eng.Evaluate(string(source))
	if err != nil {
		return fmt.Errorf("evaluate %s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			fmt.Fprintf(os.Stderr, "%s: %s\n", path, e.Error())
		}
		return fmt.Errorf("%d error(s) in %s", len(evalErrs), path)
	}

	meshes, err := tessellate.Tessellate(m)
	if err != nil {
		return err
	}

	doc := ExportData{Meshes: []MeshData{}}
	for i, mesh := range meshes {
		color := colorPalette[i%len(colorPalette)]
		doc.Meshes = append(doc.Meshes, MeshData{
			Vertices: mesh.Vertices,
			Normals:  mesh.Normals,
			Indices:  mesh.Indices,
			PartName: mesh.Name,
			Color:    color,
		})
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	if dest, _ := cmd.Flags().GetString("output"); dest != "" {
		return os.WriteFile(dest, append(out, '\n'), 0o644)
	}
	fmt.Println(string(out))
	return nil
}
