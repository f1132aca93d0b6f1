package js

import (
	"slices"
	"strings"

	"github.com/dop251/goja"

	"paintlayer/pkg/layout"
	"paintlayer/pkg/paint"
)

var boxKeys = []string{
	"tagName", "id", "className", "text", "style",
	"x", "y", "width", "height",
	"parent", "children",
	"appendChild", "insertBefore", "remove", "setProperty", "getProperty",
	"hasLayer", "stackingContext", "composited", "compositingReasons",
}

// boxAccessor implements goja.DynamicObject over a layout box. Writes go
// through the Document so the layer tree stays in step.
type boxAccessor struct {
	e   *Engine
	box *layout.Box
}

func (a *boxAccessor) Get(key string) goja.Value {
	vm := a.e.vm
	b := a.box

	switch key {
	case "tagName":
		return vm.ToValue(strings.ToUpper(b.TagName()))
	case "id":
		return vm.ToValue(b.ID())
	case "className":
		return vm.ToValue(strings.Join(b.Classes(), " "))
	case "text":
		return vm.ToValue(b.Text)
	case "style":
		return vm.ToValue(b.InlineStyle())
	case "x":
		return vm.ToValue(b.X)
	case "y":
		return vm.ToValue(b.Y)
	case "width":
		return vm.ToValue(b.Width)
	case "height":
		return vm.ToValue(b.Height)
	case "parent":
		if b.Parent == nil {
			return goja.Null()
		}
		return a.e.boxProxy(b.Parent)
	case "children":
		return a.e.boxArray(b.Children)

	case "appendChild":
		return vm.ToValue(a.appendChildFn())
	case "insertBefore":
		return vm.ToValue(a.insertBeforeFn())
	case "remove":
		return vm.ToValue(func() {
			if b.Parent != nil {
				a.check(a.e.doc.Remove(b))
			}
		})
	case "setProperty":
		return vm.ToValue(func(property, value string) {
			a.check(a.e.doc.SetProperty(b, property, value))
		})
	case "getProperty":
		// Computed value, or null when unset.
		return vm.ToValue(func(property string) goja.Value {
			if b.Style == nil {
				return goja.Null()
			}
			v, ok := b.Style.Get(property)
			if !ok {
				return goja.Null()
			}
			return vm.ToValue(v)
		})

	case "hasLayer":
		return vm.ToValue(b.HasLayer())
	case "stackingContext":
		return vm.ToValue(b.HasLayer() && a.e.doc.Tree().IsStackingContext(b.Layer()))
	case "composited":
		reasons, ok := a.reasons()
		if !ok {
			return goja.Undefined()
		}
		return vm.ToValue(reasons != 0)
	case "compositingReasons":
		reasons, ok := a.reasons()
		if !ok {
			return goja.Undefined()
		}
		return vm.ToValue(reasons.Names())
	}
	return goja.Undefined()
}

// reasons reports false while compositing is stale or the box has no
// layer; reading it then would be a usage error.
func (a *boxAccessor) reasons() (paint.CompositingReasons, bool) {
	tree := a.e.doc.Tree()
	if !a.box.HasLayer() || tree.Lifecycle() != paint.LifecycleCompositingClean {
		return 0, false
	}
	return tree.CompositingReasons(a.box.Layer()), true
}

func (a *boxAccessor) Set(key string, val goja.Value) bool {
	doc := a.e.doc
	b := a.box
	if b.Parent == nil && b != doc.Root {
		// Detached boxes are plain data until inserted.
		switch key {
		case "text":
			b.Text = val.String()
		case "style":
			b.SetInlineStyle(val.String())
		case "x":
			b.X = val.ToFloat()
		case "y":
			b.Y = val.ToFloat()
		case "width":
			b.Width = val.ToFloat()
		case "height":
			b.Height = val.ToFloat()
		default:
			return false
		}
		return true
	}

	switch key {
	case "text":
		a.check(doc.SetText(b, val.String()))
	case "style":
		a.check(doc.SetInlineStyle(b, val.String()))
	case "x":
		a.check(doc.MoveTo(b, val.ToFloat(), b.Y))
	case "y":
		a.check(doc.MoveTo(b, b.X, val.ToFloat()))
	case "width":
		a.check(doc.Resize(b, val.ToFloat(), b.Height))
	case "height":
		a.check(doc.Resize(b, b.Width, val.ToFloat()))
	default:
		return false
	}
	return true
}

func (a *boxAccessor) Has(key string) bool {
	return slices.Contains(boxKeys, key)
}

func (a *boxAccessor) Delete(key string) bool {
	return false
}

func (a *boxAccessor) Keys() []string {
	return slices.Clone(boxKeys)
}

// appendChildFn returns a JS function that implements box.appendChild(child).
func (a *boxAccessor) appendChildFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(a.e.vm.NewTypeError("Failed to execute 'appendChild': 1 argument required"))
		}
		child := a.e.unwrapBox(call.Arguments[0])
		if child == nil {
			panic(a.e.vm.NewTypeError("Failed to execute 'appendChild': parameter is not a box"))
		}
		a.reparent(child, nil)
		return a.e.boxProxy(child)
	}
}

// insertBeforeFn returns a JS function that implements
// box.insertBefore(child, ref). A null ref appends.
func (a *boxAccessor) insertBeforeFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(a.e.vm.NewTypeError("Failed to execute 'insertBefore': 1 argument required"))
		}
		child := a.e.unwrapBox(call.Arguments[0])
		if child == nil {
			panic(a.e.vm.NewTypeError("Failed to execute 'insertBefore': parameter 1 is not a box"))
		}
		var ref *layout.Box
		if len(call.Arguments) > 1 {
			ref = a.e.unwrapBox(call.Arguments[1])
		}
		a.reparent(child, ref)
		return a.e.boxProxy(child)
	}
}

// reparent moves child under the accessor's box, taking it out of its old
// place first.
func (a *boxAccessor) reparent(child, before *layout.Box) {
	doc := a.e.doc
	if child.Parent != nil {
		a.check(doc.Remove(child))
	}
	a.check(doc.InsertBefore(a.box, child, before))
}

// check turns a document error into a JS exception.
func (a *boxAccessor) check(err error) {
	if err != nil {
		panic(a.e.vm.NewGoError(err))
	}
}
