package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chazu/solidgrow/pkg/expand"
	"github.com/chazu/solidgrow/pkg/kernel"
	"github.com/chazu/solidgrow/pkg/kernel/bsp"
	"github.com/chazu/solidgrow/pkg/kernel/manifold"
	"github.com/chazu/solidgrow/pkg/meshio"
	"github.com/chazu/solidgrow/pkg/tessellate"
	"github.com/spf13/cobra"
)

type expandFlags struct {
	opts       expand.Options
	output     string
	kernelName string
	merge      bool
}

func newExpandCmd() *cobra.Command {
	f := expandFlags{opts: expand.DefaultOptions()}
	cmd := &cobra.Command{
		Use:   "expand [file]",
		Short: "Grow the faces of a solid that point along an axis",
		Long: `Grow every face whose normal is within the tolerance of the chosen axis
by delta along its own normal, then close the gaps so the result stays one
watertight solid. A negative delta carves instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(cmd, args[0], f)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.output, "output", "o", "", "output file (.stl, .stl.zst or .glb); default <input>-grown.stl")
	fl.Float64VarP(&f.opts.Delta, "delta", "d", f.opts.Delta, "growth distance; negative carves")
	fl.StringVar(&f.opts.Direction, "direction", f.opts.Direction, "growth axis: x, y or z")
	fl.Float64Var(&f.opts.Tolerance, "tolerance", f.opts.Tolerance, "dot product above which a face counts as aligned")
	fl.BoolVar(&f.opts.ExpandUp, "up", f.opts.ExpandUp, "grow faces facing +axis")
	fl.BoolVar(&f.opts.ExpandDown, "down", f.opts.ExpandDown, "grow faces facing -axis")
	fl.BoolVar(&f.opts.Footprint, "footprint", f.opts.Footprint, "keep connectors inside the input's footprint")
	fl.Float64Var(&f.opts.Epsilon, "epsilon", f.opts.Epsilon, "connector thickness scale")
	fl.Float64Var(&f.opts.Precision, "precision", f.opts.Precision, "vertex matching grid")
	fl.StringVar(&f.kernelName, "kernel", "bsp", "Boolean kernel: bsp or manifold")
	fl.BoolVar(&f.merge, "merge", true, "merge coplanar input triangles before growing")
	return cmd
}

func runExpand(cmd *cobra.Command, input string, f expandFlags) error {
	k, err := selectKernel(f.kernelName)
	if err != nil {
		return err
	}
	m, err := meshio.Load(input)
	if err != nil {
		return err
	}
	if f.merge {
		if m, err = tessellate.Retessellate(m); err != nil {
			return err
		}
	}

	out, err := expand.New(k).Expand(f.opts, m)
	if err != nil {
		return err
	}

	path := f.output
	if path == "" {
		path = defaultOutput(input)
	}
	if err := meshio.Save(path, out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d faces, volume %.6f -> %.6f\n", path, len(out.Polygons), m.Volume(), out.Volume())
	return nil
}

func selectKernel(name string) (kernel.Kernel, error) {
	switch strings.ToLower(name) {
	case "", "bsp":
		return bsp.New(), nil
	case "manifold":
		return manifold.New()
	}
	return nil, fmt.Errorf("unknown kernel %q, expected bsp or manifold", name)
}

// defaultOutput turns "part.stl" into "part-grown.stl", keeping the
// directory.
func defaultOutput(input string) string {
	dir, base := filepath.Split(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if strings.EqualFold(filepath.Ext(base), ".stl") {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	out := filepath.Join(dir, base+"-grown.stl")
	if meshio.Compressed(input) {
		out += ".zst"
	}
	return out
}
