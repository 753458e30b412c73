// Package anim builds the animation dependency graph of a scene section
// and schedules it into concurrent playback steps.
//
// Every registered animation names the objects it consumes (sources),
// produces (destinations) and merely reads (dependencies). Two animations
// are ordered when one's destination is the other's source; animations
// sharing a serialized dependency (function units, serial memory units) are
// additionally ordered by registration. Scheduling peels dependency-free
// animations off the graph layer by layer, so independent data lanes play
// concurrently while chained operations stay sequential.
//
// The package also tracks element consumption: an element consumed a second
// time is transparently duplicated, with the copy inserted right before the
// duplicating animation plays.
package anim
