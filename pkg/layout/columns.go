package layout

import (
	"paintlayer/pkg/geom"
	"paintlayer/pkg/paint"
)

// MultiColumn lays a flow thread out in equal columns. The flow thread is
// one column wide; column i shows the flow thread slice starting at
// i*Height.
type MultiColumn struct {
	ColumnWidth float64
	Height      float64
	Gap         float64
	Count       int
}

// NewMultiColumn splits a width x height box into count columns separated
// by gap.
func NewMultiColumn(width, height, gap float64, count int) *MultiColumn {
	if count < 1 {
		count = 1
	}
	w := (width - gap*float64(count-1)) / float64(count)
	if w < 0 {
		w = 0
	}
	return &MultiColumn{ColumnWidth: w, Height: height, Gap: gap, Count: count}
}

// FragmentsForRect returns the columns whose flow thread portion intersects
// flowRect. Content past the last column overflows into it.
func (m *MultiColumn) FragmentsForRect(flowRect geom.Rect) []paint.ColumnFragment {
	var out []paint.ColumnFragment
	for i := 0; i < m.Count; i++ {
		portion := geom.Rect{X: 0, Y: float64(i) * m.Height, Width: m.ColumnWidth, Height: m.Height}
		if i == m.Count-1 && flowRect.MaxY() > portion.MaxY() {
			portion.Height = flowRect.MaxY() - portion.Y
		}
		if !portion.Intersects(flowRect) {
			continue
		}
		out = append(out, paint.ColumnFragment{
			FlowThreadPortion: portion,
			Translation:       geom.Pt(float64(i)*(m.ColumnWidth+m.Gap), -float64(i)*m.Height),
		})
	}
	return out
}

// FlowThreadHeight is the flow thread extent the columns show without
// overflow.
func (m *MultiColumn) FlowThreadHeight() float64 {
	return m.Height * float64(m.Count)
}
