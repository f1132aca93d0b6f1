package scene

import (
	"fmt"

	"paintlayer/pkg/layout"
)

// HitResult is the outcome of one hit check.
type HitResult struct {
	Check HitCheck
	// Got is the id of the hit box, or its debug name when it has no id.
	// Empty when nothing but the root was hit.
	Got string
}

func (r HitResult) OK() bool {
	return r.Got == r.Check.Expect
}

func (r HitResult) String() string {
	x, y := r.Check.Point()
	status := "ok"
	if !r.OK() {
		status = fmt.Sprintf("FAIL (expected %q)", r.Check.Expect)
	}
	return fmt.Sprintf("(%g, %g) -> %q %s", x, y, r.Got, status)
}

// RunHitChecks hit tests every hit check against doc.
func (s *Scene) RunHitChecks(doc *layout.Document) []HitResult {
	results := make([]HitResult, 0, len(s.Hits))
	for _, c := range s.Hits {
		x, y := c.Point()
		results = append(results, HitResult{Check: c, Got: HitName(doc, x, y)})
	}
	return results
}

// HitName hit tests (x, y) and names the box found.
func HitName(doc *layout.Document, x, y float64) string {
	box, _, ok := doc.HitTest(x, y)
	if !ok || box == doc.Root {
		return ""
	}
	if box.ID() != "" {
		return box.ID()
	}
	return box.DebugName()
}
