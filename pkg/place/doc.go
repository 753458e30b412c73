// Package place arranges diagram objects on a resizable 2-D occupancy grid.
//
// Each grid cell holds a small non-negative integer: 0 marks a free cell,
// 1 a margin around a placed object, and values >= 2 an occupant marker.
// Placing an object means finding a free rectangle of the object's size whose
// surrounding 1-cell ring holds no other occupant, and whose row contains
// only occupants carrying the same marker. When no such rectangle exists the
// grid grows one unit at a time, alternating dimensions to preserve the
// frame's aspect ratio, and the search retries - placement never fails.
//
// Two search strategies are supported: [RowThenColumn] scans rows first so
// new objects stack below existing ones, [ColumnThenRow] scans columns first
// so they line up beside them.
//
// Homogeneous object sets can be placed as a matrix block via
// [Map.PlaceGroup], which reserves one contiguous region with a placeholder
// and then pins each member inside it.
package place
