// Package render serializes scheduled timelines into output artifacts.
//
// # Overview
//
// A [Timeline] is the replayable record of a scheduled animation graph:
// per-step camera moves, object add/remove sets, animations, and waits.
// The package turns timelines and placed objects into three artifacts:
//
//   - JSON timeline documents via [Timeline.MarshalJSON] and [Decode]
//   - Static SVG snapshots of final object positions via [SnapshotSVG]
//   - Graphviz renderings of dependency DOT text via [GraphvizSVG]
//
// # JSON Timelines
//
// [TimelineRecord] is the wire form of a timeline. It round-trips through
// encoding/json and BSON, so the same structure serves file export, the
// HTTP server, and the MongoDB archive.
//
//	rec := timeline.Record()
//	data, err := json.MarshalIndent(rec, "", "  ")
//
// # Graphviz
//
// [GraphvizSVG] lays out DOT text (for example from the animation graph's
// ToDOT) with the goccy/go-graphviz engine and returns SVG bytes.
package render
