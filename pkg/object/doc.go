// Package object defines the units that appear in a data-flow diagram:
// registers, data elements, function units and memory units.
//
// All units share the [Object] interface, identified by a UUID handle so two
// units never alias even when they look identical. Units that participate in
// grid placement additionally satisfy the placement capability interface
// (width, height, marker, corner callback); data elements do not - they move
// between the placed units.
//
// Scene coordinates follow the placement grid: x grows rightward, y grows
// downward, one grid cell is one scene unit. Bit widths are mapped to scene
// units through the configured scene ratio.
package object
