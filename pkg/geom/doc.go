// Package geom defines the polygon-soup mesh model shared by every stage of
// solidgrow: planar polygons, oriented planes, meshes, quantized vertex keys
// and the small amount of vector algebra built on top of sdfx's v3.Vec.
package geom
