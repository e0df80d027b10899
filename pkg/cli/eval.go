package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chazu/heartwood/pkg/engine"
	"github.com/chazu/heartwood/pkg/shape"
)

var evalCmd = &cobra.Command{
	Use:   "eval <file>",
	Short: "Evaluate a source file and summarize the resulting parts",
	Args:  cobra.ExactArgs(1),
	RunE:  runEval,
}

func init() {
	evalCmd.Flags().BoolP("watch", "w", false, "re-evaluate whenever the file changes")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	path := args[0]
	eng := engine.NewEngine(newKernel())

	watch, _ := cmd.Flags().GetBool("watch")
	if !watch {
		return evalOnce(eng, path)
	}

	// Watch mode: evaluation failures are reported but do not stop the loop.
	if err := evalOnce(eng, path); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	w, err := NewWatcher(path)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	defer w.Stop()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigc)

	fmt.Printf("watching %s\n", path)
	for {
		select {
		case <-sigc:
			return nil
		case _, ok := <-w.Changes:
			if !ok {
				return nil
			}
			fmt.Printf("-- %s changed --\n", path)
			if err := evalOnce(eng, path); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}
	}
}

// evalOnce evaluates the file and prints a per-part summary.
func evalOnce(eng *engine.Engine, path string) error {
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

	verbose := viper.GetBool("verbose")
	fmt.Printf("%d part(s)\n", m.PartCount())
	for _, p := range m.Parts() {
		min, max := shapeBounds(p.Shape())
		fmt.Printf("  %-20s %-5s %d feature(s)  bounds [%.1f %.1f %.1f]..[%.1f %.1f %.1f]\n",
			p.Name(), p.Shape().Kind(), len(p.Features()),
			min[0], min[1], min[2], max[0], max[1], max[2])
		if verbose {
			for i, f := range p.Features() {
				fmt.Printf("    %2d. %s\n", i+1, f.Operation())
			}
		}
	}
	return nil
}

// shapeBounds returns the axis-aligned bounds of a shape without
// tessellating it.
func shapeBounds(s shape.Shape) (min, max [3]float64) {
	switch v := s.(type) {
	case *shape.MeshShape:
		return v.Solid().BoundingBox()
	case *shape.BrepShape:
		return v.Body().BoundingBox()
	}
	return min, max
}
