// Package graph holds the pure planning algorithms of the scheduler: cycle
// detection, layering into mutually independent sets, and descendant
// closures used for partial runs and failure cascades.
//
// Every function takes plain node and edge slices and treats them as
// read-only. Edges that name unknown node ids are ignored.
package graph
