package main

import (
	"fmt"

	"github.com/chazu/solidgrow/pkg/geom"
	"github.com/chazu/solidgrow/pkg/meshio"
	"github.com/chazu/solidgrow/pkg/topology"
	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [file]",
		Short: "Display general information about a mesh file",
		Long:  "Show face and edge counts, watertightness, surface area, volume and bounds.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, args[0])
		},
	}
}

func runInfo(cmd *cobra.Command, filename string) error {
	m, err := meshio.Load(filename)
	if err != nil {
		return err
	}
	q := geom.NewQuantizer(geom.DefaultPrecision)
	idx, err := topology.Build(m, q)
	if err != nil {
		return err
	}
	check := geom.Validate(m)
	check.Merge(topology.Check(m, q))

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Mesh Information")
	fmt.Fprintln(out, "================")
	if m.Name != "" {
		fmt.Fprintf(out, "Name: %s\n", m.Name)
	}
	fmt.Fprintf(out, "File: %s\n\n", filename)

	fmt.Fprintln(out, "Model Statistics:")
	fmt.Fprintf(out, "  Faces: %d\n", len(m.Polygons))
	fmt.Fprintf(out, "  Triangles: %d\n", len(m.Triangles()))
	fmt.Fprintf(out, "  Vertices: %d\n", len(idx.Vertices()))
	fmt.Fprintf(out, "  Edges: %d\n", len(idx.Edges()))
	fmt.Fprintf(out, "  Boundary Edges: %d\n", len(idx.BoundaryEdges()))
	fmt.Fprintf(out, "  Watertight: %t\n", topology.CheckWatertight(m, q) == nil)
	fmt.Fprintf(out, "  Surface Area: %.6f square units\n", m.Area())
	fmt.Fprintf(out, "  Volume: %.6f cubic units\n", m.Volume())
	fmt.Fprintf(out, "  Fingerprint: %016x\n\n", geom.Fingerprint(m, q))

	bb := m.Bounds()
	size := bb.Size()
	fmt.Fprintln(out, "Bounding Box:")
	fmt.Fprintf(out, "  Min: (%.6f, %.6f, %.6f)\n", bb.Min.X, bb.Min.Y, bb.Min.Z)
	fmt.Fprintf(out, "  Max: (%.6f, %.6f, %.6f)\n", bb.Max.X, bb.Max.Y, bb.Max.Z)
	fmt.Fprintf(out, "  Size: %.6f x %.6f x %.6f\n", size.X, size.Y, size.Z)

	if len(check.Errors)+len(check.Warnings) > 0 {
		fmt.Fprintln(out, "\nFindings:")
		for _, e := range check.Errors {
			fmt.Fprintf(out, "  %s\n", e.Error())
		}
		for _, w := range check.Warnings {
			fmt.Fprintf(out, "  %s\n", w.Error())
		}
	}
	return nil
}
