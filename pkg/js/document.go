package js

import (
	"strconv"
	"strings"

	"github.com/dop251/goja"

	"paintlayer/pkg/css"
	"paintlayer/pkg/layout"
)

// registerDocument sets up the global `document` object.
func (e *Engine) registerDocument() {
	vm := e.vm
	doc := e.doc

	docObj := vm.NewObject()
	docObj.Set("width", doc.Width)
	docObj.Set("height", doc.Height)
	docObj.Set("root", e.boxProxy(doc.Root))

	docObj.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Null()
		}
		box, ok := doc.Lookup(call.Arguments[0].String())
		if !ok {
			return goja.Null()
		}
		return e.boxProxy(box)
	})
	docObj.Set("querySelector", func(call goja.FunctionCall) goja.Value {
		found := e.query(call, "querySelector", true)
		if len(found) == 0 {
			return goja.Null()
		}
		return e.boxProxy(found[0])
	})
	docObj.Set("querySelectorAll", func(call goja.FunctionCall) goja.Value {
		return e.boxArray(e.query(call, "querySelectorAll", false))
	})

	// createElement(tag, id?, ...classes) returns a detached box.
	docObj.Set("createElement", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(vm.NewTypeError("Failed to execute 'createElement': 1 argument required"))
		}
		tag := strings.ToLower(call.Arguments[0].String())
		id := ""
		if len(call.Arguments) > 1 {
			id = call.Arguments[1].String()
		}
		var classes []string
		for _, a := range call.Arguments[min(2, len(call.Arguments)):] {
			classes = append(classes, a.String())
		}
		return e.boxProxy(layout.NewBox(tag, id, classes...))
	})

	docObj.Set("hitTest", func(x, y float64) goja.Value {
		box, r, ok := doc.HitTest(x, y)
		if !ok {
			return goja.Null()
		}
		res := vm.NewObject()
		res.Set("box", e.boxProxy(box))
		res.Set("layer", e.boxProxy(doc.BoxForLayer(r.Layer)))
		res.Set("x", r.Local.X)
		res.Set("y", r.Local.Y)
		res.Set("phase", r.Phase.String())
		return res
	})

	docObj.Set("setStylesheet", func(text string) {
		sheet, err := css.ParseStylesheet(text)
		if err != nil {
			panic(vm.NewGoError(err))
		}
		doc.SetStylesheets(sheet)
	})

	// update brings compositing up to date and returns the composited
	// boxes in tree order.
	docObj.Set("update", func() goja.Value {
		doc.Update(e.backend)
		tree := doc.Tree()
		var composited []*layout.Box
		doc.Root.Walk(func(b *layout.Box) bool {
			if b.HasLayer() && tree.IsComposited(b.Layer()) {
				composited = append(composited, b)
			}
			return true
		})
		return e.boxArray(composited)
	})

	docObj.Set("dump", func() string {
		var sb strings.Builder
		if err := doc.Tree().Dump(&sb); err != nil {
			panic(vm.NewGoError(err))
		}
		return sb.String()
	})

	vm.Set("document", docObj)
}

// query runs the selector list in the first argument over every box but
// the root, in document order.
func (e *Engine) query(call goja.FunctionCall, fn string, first bool) []*layout.Box {
	if len(call.Arguments) == 0 {
		panic(e.vm.NewTypeError("Failed to execute '" + fn + "': 1 argument required"))
	}
	sels, err := css.ParseSelectorList(call.Arguments[0].String())
	if err != nil {
		panic(e.vm.NewTypeError("Failed to execute '" + fn + "': " + err.Error()))
	}
	var found []*layout.Box
	e.doc.Root.Walk(func(b *layout.Box) bool {
		if b == e.doc.Root {
			return true
		}
		for _, sel := range sels {
			if css.MatchesSelector(b, sel) {
				found = append(found, b)
				return !first
			}
		}
		return true
	})
	return found
}

// boxArray creates a JS array of box proxies.
func (e *Engine) boxArray(boxes []*layout.Box) goja.Value {
	arr := e.vm.NewArray()
	for i, b := range boxes {
		arr.Set(strconv.Itoa(i), e.boxProxy(b))
	}
	return arr
}

// boxProxy creates, or retrieves from cache, the JS object wrapping b.
func (e *Engine) boxProxy(b *layout.Box) *goja.Object {
	if v, ok := e.proxies[b]; ok {
		return v
	}
	v := e.vm.NewDynamicObject(&boxAccessor{e: e, box: b})
	e.proxies[b] = v
	e.boxes[v] = b
	return v
}

// unwrapBox extracts the box behind a proxy, or nil.
func (e *Engine) unwrapBox(val goja.Value) *layout.Box {
	if val == nil || goja.IsNull(val) || goja.IsUndefined(val) {
		return nil
	}
	obj, ok := val.(*goja.Object)
	if !ok {
		return nil
	}
	return e.boxes[obj]
}
