// Package pkg provides the core libraries for isaflow data-flow animation.
//
// # Overview
//
// isaflow builds animated diagrams of instruction data flow: registers,
// element reads and moves, function units, and memory accesses, scheduled
// into a replayable timeline. The pkg directory is organized into four main
// areas:
//
//  1. Visual objects and placement ([object], [place], [colormap])
//  2. Animation graph and scheduling ([anim])
//  3. Scene construction ([scene], [script], [config])
//  4. Output and infrastructure ([render], [cache], [store], [observability])
//
// # Architecture
//
// The typical data flow through isaflow:
//
//	TOML script or Flow API calls
//	         ↓
//	    [scene] package (declare objects, record operations)
//	         ↓
//	    [anim] package (dependency graph + step scheduling)
//	         ↓
//	    [render] package (timeline JSON, SVG snapshot, Graphviz DOT)
//
// # Quick Start
//
// Build a scene and export its timeline:
//
//	import (
//	    "github.com/isaflow/isaflow/pkg/render"
//	    "github.com/isaflow/isaflow/pkg/scene"
//	)
//
//	flow := scene.New(nil, nil)
//	flow.DrawTitle("ADD (vectors)")
//
//	za, _ := flow.DeclVector("Za", 128, 4)
//	zd, _ := flow.DeclVector("Zd", 128, 4)
//	elem, _ := flow.ReadElem(za, 32, 0, 0, "")
//	flow.AssignElem(elem, zd, 32, 0, 0)
//
//	tl, _ := flow.Timeline()
//	data, _ := render.RenderJSON(tl)
//
// # Main Packages
//
// [object] - Visual widgets: register units, element rectangles, function
// units, memory units with access marks, and subtitles. Each object carries
// a uuid handle, a position, and a color.
//
// [place] - Collision-free placement of objects on a growing grid, with
// row-then-column and column-then-row search strategies and grouped
// placement for register files.
//
// [colormap] - Deterministic color assignment by tag, cycling a fixed
// palette and resetting at section boundaries.
//
// [anim] - The animation dependency graph. Operations register the objects
// they consume and produce; the scheduler derives ordering constraints and
// packs independent animations into concurrent steps.
//
// [scene] - The Flow builder tying everything together: declarations,
// element reads and moves, function calls, memory accesses, and section
// boundaries with camera reframing.
//
// [script] - TOML scene scripts: parsing, validation, and building into a
// Flow.
//
// [config] - Scene construction settings (frame size, scene ratio, memory
// geometry), loadable from TOML.
//
// [render] - Timeline serialization to JSON, static SVG snapshots, and
// Graphviz rendering of the dependency graph.
//
// [cache] - Artifact cache keyed by script and configuration content, with
// file, Redis, and null backends.
//
// [store] - MongoDB archive of rendered timelines, used by the render
// command's --publish flag and the HTTP server.
//
// [observability] - Hook interfaces for instrumenting script parsing,
// scheduling, rendering, cache, and archive operations.
//
// [errors] - Structured errors with machine-readable codes.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/anim/...     # Specific package
//	go test -run Example       # Examples only
//
// [object]: https://pkg.go.dev/github.com/isaflow/isaflow/pkg/object
// [place]: https://pkg.go.dev/github.com/isaflow/isaflow/pkg/place
// [colormap]: https://pkg.go.dev/github.com/isaflow/isaflow/pkg/colormap
// [anim]: https://pkg.go.dev/github.com/isaflow/isaflow/pkg/anim
// [scene]: https://pkg.go.dev/github.com/isaflow/isaflow/pkg/scene
// [script]: https://pkg.go.dev/github.com/isaflow/isaflow/pkg/script
// [config]: https://pkg.go.dev/github.com/isaflow/isaflow/pkg/config
// [render]: https://pkg.go.dev/github.com/isaflow/isaflow/pkg/render
// [cache]: https://pkg.go.dev/github.com/isaflow/isaflow/pkg/cache
// [store]: https://pkg.go.dev/github.com/isaflow/isaflow/pkg/store
// [observability]: https://pkg.go.dev/github.com/isaflow/isaflow/pkg/observability
// [errors]: https://pkg.go.dev/github.com/isaflow/isaflow/pkg/errors
package pkg
