package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/solidgrow/internal/logging"
	"github.com/chazu/solidgrow/pkg/batch"
	"github.com/chazu/solidgrow/pkg/engine"
	"github.com/chazu/solidgrow/pkg/geom"
	"github.com/chazu/solidgrow/pkg/meshio"
	"github.com/spf13/cobra"
)

var log = logging.Named("cli")

// ScriptError is an evaluation problem located in the script source.
type ScriptError struct {
	Line    int
	Col     int
	Message string
}

func (e ScriptError) String() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ScriptResult is everything one script run produced.
type ScriptResult struct {
	Meshes []*geom.Mesh
	Errors []ScriptError
}

// Runner evaluates scripts with one engine, the way an editor session
// would re-run a buffer after each change.
type Runner struct {
	engine *engine.Engine
}

// NewRunner creates a Runner with the default engine.
func NewRunner() *Runner {
	return &Runner{engine: engine.NewEngine()}
}

// Run evaluates source and collects its solids, naming unnamed ones
// part1, part2, ...
func (r *Runner) Run(source string) ScriptResult {
	result := ScriptResult{Meshes: []*geom.Mesh{}, Errors: []ScriptError{}}

	item, evalErrs, err := r.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.WithError(err).Error("evaluation failed")
		result.Errors = append(result.Errors, ScriptError{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, ScriptError{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}

	for i, m := range batch.Solids(item) {
		if m.Name == "" {
			m.Name = fmt.Sprintf("part%d", i+1)
		}
		result.Meshes = append(result.Meshes, m)
	}
	return result
}

func newScriptCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "script [file]",
		Short: "Evaluate a solidgrow script and save the solids it returns",
		Long: `Evaluate a Lisp script. The value of its last expression, a solid or a
nested list of solids, is written to the output file. GLB output keeps one
colored node per solid; STL output concatenates them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			res := NewRunner().Run(string(src))
			if len(res.Errors) > 0 {
				msgs := make([]string, len(res.Errors))
				for i, e := range res.Errors {
					msgs[i] = e.String()
				}
				return fmt.Errorf("%s: %s", args[0], strings.Join(msgs, "; "))
			}
			if len(res.Meshes) == 0 {
				return fmt.Errorf("%s: script produced no solids", args[0])
			}

			path := output
			if path == "" {
				path = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".glb"
			}
			if err := saveAll(path, res.Meshes); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d solids\n", path, len(res.Meshes))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.glb, .stl or .stl.zst); default <script>.glb")
	return cmd
}

func saveAll(path string, meshes []*geom.Mesh) error {
	if strings.EqualFold(filepath.Ext(path), ".glb") {
		return meshio.SaveGLB(path, meshes...)
	}
	merged := geom.NewMesh()
	merged.Name = meshes[0].Name
	for _, m := range meshes {
		merged.Polygons = append(merged.Polygons, m.Polygons...)
	}
	return meshio.Save(path, merged)
}
