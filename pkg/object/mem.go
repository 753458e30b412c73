package object

import (
	"fmt"

	"github.com/isaflow/isaflow/pkg/colormap"
	"github.com/isaflow/isaflow/pkg/config"
)

// memBodyWidth is the scene width of the memory body rectangle; one unit of
// spacing sits on each side of it, hence the +6 in the map width formula.
const memBodyWidth = 4.0

// MemUnit is a memory port pair (address in, data out) with one memory map
// bar per configured address range underneath. Reads and writes paint marks
// onto the map bars; the marks stick to the unit across fade-outs.
//
// Memory animations are serialized unless the unit is created parallel.
type MemUnit struct {
	base

	addrWidth   int
	dataWidth   int
	align       int
	statusWidth int
	ranges      []config.MemRange
	mapWidth    float64
	parallel    bool
	ratio       float64
	format      string

	marks []Object
}

// NewMemUnit creates a memory unit. Ranges are aligned outward to the
// configured alignment. mapWidthHint widens the map bars when positive.
func NewMemUnit(cfg *config.Config, color colormap.Color,
	addrWidth, dataWidth, align int, ranges []config.MemRange,
	parallel bool, statusWidth int, mapWidthHint float64) *MemUnit {
	if align <= 0 {
		align = 1
	}
	aligned := make([]config.MemRange, 0, len(ranges))
	for _, rg := range ranges {
		step := uint64(align)
		lo := (rg.Base / step) * step
		hi := rg.Limit
		if hi%step > 0 {
			hi = (hi/step + 1) * step
		}
		aligned = append(aligned, config.MemRange{Base: lo, Limit: hi})
	}

	portBits := dataWidth
	if dataWidth < addrWidth {
		portBits = addrWidth
	}
	mapWidth := float64(addrWidth+portBits)*cfg.SceneRatio + memBodyWidth + 2
	if mapWidthHint > mapWidth {
		mapWidth = mapWidthHint
	}

	return &MemUnit{
		base:        newBase("Mem", color),
		addrWidth:   addrWidth,
		dataWidth:   dataWidth,
		align:       align,
		statusWidth: statusWidth,
		ranges:      aligned,
		mapWidth:    mapWidth,
		parallel:    parallel,
		ratio:       cfg.SceneRatio,
		format:      cfg.ValueFormat,
	}
}

func (m *MemUnit) Kind() Kind                 { return KindMemory }
func (m *MemUnit) RequireSerialization() bool { return !m.parallel }

// AddrWidth returns the address port bit width.
func (m *MemUnit) AddrWidth() int { return m.addrWidth }

// DataWidth returns the data port bit width.
func (m *MemUnit) DataWidth() int { return m.dataWidth }

// Align returns the address alignment.
func (m *MemUnit) Align() int { return m.align }

// Ranges returns the aligned memory map ranges.
func (m *MemUnit) Ranges() []config.MemRange { return m.ranges }

// HasStatusPort reports whether the unit carries a status port.
func (m *MemUnit) HasStatusPort() bool { return m.statusWidth > 0 }

// Placement capability: body row plus spacing plus two rows per map bar.

func (m *MemUnit) PlacementWidth() int  { return ceilInt(m.mapWidth) + 2 }
func (m *MemUnit) PlacementHeight() int { return 4 + 2*len(m.ranges) }
func (m *MemUnit) PlacementMarker() int { return 4 }

func (m *MemUnit) SetGridCorner(row, col int) {
	x := float64(col) + 1 + float64(m.addrWidth)*m.ratio + 1 + memBodyWidth/2
	y := float64(row) + 1.5
	m.MoveTo(x, y)
}

// AddrPos returns the docking position on the address port for an element
// of the given bit width.
func (m *MemUnit) AddrPos(width int) (x, y float64) {
	cx, cy := m.Center()
	right := cx - memBodyWidth/2 - 1
	return right - float64(width)*m.ratio/2, cy
}

// DataPos returns the docking position on the data port.
func (m *MemUnit) DataPos(width int) (x, y float64) {
	cx, cy := m.Center()
	left := cx + memBodyWidth/2 + 1
	return left + float64(m.dataWidth)*m.ratio - float64(width)*m.ratio/2, cy
}

// StatusPos returns the docking position on the status port.
func (m *MemUnit) StatusPos(width int) (x, y float64) {
	cx, cy := m.Center()
	return cx + float64(m.statusWidth)*m.ratio/2 - float64(width)*m.ratio/2, cy + 0.5
}

// rangeIndex returns the index of the map range covering addr, or -1.
func (m *MemUnit) rangeIndex(addr uint64) int {
	for i, rg := range m.ranges {
		if rg.Base <= addr && addr < rg.Limit {
			return i
		}
	}
	return -1
}

// Covers reports whether addr falls inside one of the map ranges.
func (m *MemUnit) Covers(addr uint64) bool { return m.rangeIndex(addr) >= 0 }

// mapBarFrame returns the left edge x, center y and address scale of map
// bar idx. Bars hang under the address port, two rows apart.
func (m *MemUnit) mapBarFrame(idx int) (left, centerY, scale float64) {
	cx, cy := m.Center()
	left = cx - memBodyWidth/2 - 1 - float64(m.addrWidth)*m.ratio
	centerY = cy + 3 + 2*float64(idx)
	rg := m.ranges[idx]
	scale = m.mapWidth / float64(rg.Limit-rg.Base)
	return left, centerY, scale
}

// Marks returns the read/write marks painted onto the map bars so far.
func (m *MemUnit) Marks() []Object { return m.marks }

// Attachments implements [Attacher]: marks stay on scene with the unit.
func (m *MemUnit) Attachments() []Object { return m.marks }

// ReadMark paints a read mark covering [low, high) onto the matching map
// bar and returns it, or nil when the range is not covered.
func (m *MemUnit) ReadMark(low, high uint64, color colormap.Color) *MemMark {
	return m.newMark(low, high, color, false)
}

// WriteMark paints a write mark covering [low, high).
func (m *MemUnit) WriteMark(low, high uint64, color colormap.Color) *MemMark {
	return m.newMark(low, high, color, true)
}

func (m *MemUnit) newMark(low, high uint64, color colormap.Color, write bool) *MemMark {
	idx := m.rangeIndex(low)
	if idx < 0 {
		return nil
	}
	rg := m.ranges[idx]
	if high > rg.Limit {
		high = rg.Limit
	}
	left, centerY, scale := m.mapBarFrame(idx)

	// Marks hang from the right (low-address) edge of the bar.
	barRight := left + m.mapWidth
	offset := float64(low-rg.Base) + float64(high-low)/2
	markX := barRight - offset*scale

	markY := centerY + 0.17 // write marks cover the lower two thirds
	if !write {
		markY = centerY - 0.33 // read marks the upper third
	}

	mark := &MemMark{
		base:  newBase(fmt.Sprintf("[%#x,%#x)", low, high), color),
		owner: m,
		low:   low,
		high:  high,
		write: write,
		width: float64(high-low) * scale,
	}
	mark.MoveTo(markX, markY)
	m.marks = append(m.marks, mark)
	return mark
}

// MemMark is a painted read/write range on a memory map bar.
type MemMark struct {
	base

	owner *MemUnit
	low   uint64
	high  uint64
	write bool
	width float64
}

func (k *MemMark) Kind() Kind                 { return KindMemMark }
func (k *MemMark) RequireSerialization() bool { return false }

// Range returns the covered address range [low, high).
func (k *MemMark) Range() (low, high uint64) { return k.low, k.high }

// IsWrite reports whether the mark records a write access.
func (k *MemMark) IsWrite() bool { return k.write }

// Width returns the mark width in scene units.
func (k *MemMark) Width() float64 { return k.width }
