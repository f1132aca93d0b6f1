// Package paint maintains the layer tree that decides paint order, clipping,
// hit testing and compositing for a document.
//
// A Tree holds one layer per box that needs its own painting context. Layers
// live in an arena and are addressed by LayerID handles; a handle outlives
// neither its layer nor its tree.
//
// Every derived value (z-order lists, visibility aggregates, compositing
// inputs, clip rects) sits behind a dirty bit. Mutations only mark bits;
// values are recomputed the first time they are read. A cached slot refuses
// to hand out a value while its bit is set, so a missed recomputation panics
// with a *UsageError instead of returning stale data. The same panic
// reports other misuse: stale handles, cycles, compositing queries outside
// the compositing-clean phase. UpdateCompositingInputs and
// UpdateCompositing bring the whole attached tree up to date in one pass.
//
// A Tree is not safe for concurrent use.
package paint
