package render

import (
	"bytes"
	"fmt"

	"github.com/isaflow/isaflow/pkg/object"
)

// pixels per scene unit in snapshot output.
const svgUnit = 40.0

// SnapshotSVG draws the final position of every object as a static SVG,
// a quick visual check of the placement result. width and height are the
// occupied scene dimensions.
func SnapshotSVG(objs []object.Object, width, height float64) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width*svgUnit, height*svgUnit, width*svgUnit, height*svgUnit)
	buf.WriteString(`  <rect width="100%" height="100%" fill="#1C1C1C"/>` + "\n")

	for _, obj := range objs {
		drawObject(&buf, obj)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func drawObject(buf *bytes.Buffer, obj object.Object) {
	x, y := obj.Center()
	color := string(obj.Color())
	if color == "" {
		color = "#FFFFFF"
	}

	switch o := obj.(type) {
	case *object.RegUnit:
		w := o.RectWidth()
		h := float64(o.RegCount())
		drawRect(buf, x, y, w, h, color, 0, 0)
		for i, name := range o.Names() {
			drawText(buf, x-w/2-0.3, y-h/2+float64(i)+0.5, name, color, "end")
		}
		// Lane separators.
		for b := o.ElemBits(); b < o.WidthBits(); b += o.ElemBits() {
			lx := (x + w/2 - float64(b)*w/float64(o.WidthBits())) * svgUnit
			fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1"/>`+"\n",
				lx, (y-h/2)*svgUnit, lx, (y+h/2)*svgUnit, color)
		}
	case *object.ElemUnit:
		drawRect(buf, x, y, o.RectWidth(), 1, color, o.FillOpacity(), 0)
		drawText(buf, x, y, o.Label(), "#FFFFFF", "middle")
	case *object.FuncUnit:
		drawRect(buf, x, y, o.RectWidth(), 1, color, 0, 10)
		drawText(buf, x, y, o.Name(), color, "middle")
		for i := 0; i < o.ArgCount(); i++ {
			px, py := o.ArgPos(i, 0, o.ArgWidth(i))
			drawRect(buf, px, py, o.ArgRectWidth(i), 1, color, 0, 0)
			drawText(buf, px, py+0.7, o.ArgName(i), color, "middle")
		}
		for i := 0; i < o.ResCount(); i++ {
			px, py := o.ResPos(i, 0, o.ResWidth(i))
			drawRect(buf, px, py, o.ResRectWidth(i), 1, color, 0, 0)
			drawText(buf, px, py-0.7, o.ResName(i), color, "middle")
		}
	case *object.MemUnit:
		drawRect(buf, x, y, 4, 3, color, 0, 10)
		drawText(buf, x, y, o.Label(), color, "middle")
	case *object.MemMark:
		h := 0.34
		if o.IsWrite() {
			h = 0.66
		}
		drawRect(buf, x, y, o.Width(), h, color, 0.25, 0)
	case *object.Subtitle:
		drawText(buf, x, y, o.Label(), color, "middle")
	default:
		drawText(buf, x, y, obj.Label(), color, "middle")
	}
}

func drawRect(buf *bytes.Buffer, cx, cy, w, h float64, color string, fillOpacity float64, radius float64) {
	fill := "none"
	opacity := ""
	if fillOpacity > 0 {
		fill = color
		opacity = fmt.Sprintf(` fill-opacity="%.2f"`, fillOpacity)
	}
	rx := ""
	if radius > 0 {
		rx = fmt.Sprintf(` rx="%.0f"`, radius)
	}
	fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" stroke="%s" stroke-width="2" fill="%s"%s%s/>`+"\n",
		(cx-w/2)*svgUnit, (cy-h/2)*svgUnit, w*svgUnit, h*svgUnit, color, fill, opacity, rx)
}

func drawText(buf *bytes.Buffer, x, y float64, text, color, anchor string) {
	if text == "" {
		return
	}
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" fill="%s" font-size="20" text-anchor="%s" dominant-baseline="middle">%s</text>`+"\n",
		x*svgUnit, y*svgUnit, color, anchor, escapeXML(text))
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
