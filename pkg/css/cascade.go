package css

import (
	"slices"
)

// Element is what selectors match against.
type Element interface {
	TagName() string
	ID() string
	HasClass(name string) bool
	// InlineStyle returns the style attribute, or "".
	InlineStyle() string
}

// MatchesSelector reports whether el matches every part of sel.
func MatchesSelector(el Element, sel Selector) bool {
	if sel.Tag != "" && sel.Tag != el.TagName() {
		return false
	}
	if sel.ID != "" && sel.ID != el.ID() {
		return false
	}
	for _, c := range sel.Classes {
		if !el.HasClass(c) {
			return false
		}
	}
	return true
}

// FindMatchingRules returns the rules of stylesheet that match el.
func FindMatchingRules(el Element, stylesheet *Stylesheet) []Rule {
	var out []Rule
	for _, rule := range stylesheet.Rules {
		if MatchesSelector(el, rule.Selector) {
			out = append(out, rule)
		}
	}
	return out
}

// ComputeStyle computes the final style for el by applying the cascade.
// Later stylesheets win ties over earlier ones; the inline style wins over
// every rule.
func ComputeStyle(el Element, stylesheets []*Stylesheet) *Style {
	finalStyle := NewStyle()

	type ranked struct {
		rule  Rule
		sheet int
	}
	var all []ranked
	for i, stylesheet := range stylesheets {
		for _, r := range FindMatchingRules(el, stylesheet) {
			all = append(all, ranked{rule: r, sheet: i})
		}
	}

	// Lowest precedence first so that later writes win.
	slices.SortStableFunc(all, func(a, b ranked) int {
		if a.rule.Selector.Specificity != b.rule.Selector.Specificity {
			return a.rule.Selector.Specificity - b.rule.Selector.Specificity
		}
		if a.sheet != b.sheet {
			return a.sheet - b.sheet
		}
		return a.rule.Order - b.rule.Order
	})

	for _, r := range all {
		for property, value := range r.rule.Declarations {
			finalStyle.Set(property, value)
		}
	}

	if styleAttr := el.InlineStyle(); styleAttr != "" {
		for property, value := range ParseInlineStyle(styleAttr).Properties {
			finalStyle.Set(property, value)
		}
	}

	return finalStyle
}
