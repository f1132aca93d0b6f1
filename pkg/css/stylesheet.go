package css

import (
	"fmt"
	"strings"
)

// Selector is one compound selector such as "div.card#main". An empty
// field matches anything.
type Selector struct {
	Raw         string // Original selector string
	Tag         string
	ID          string
	Classes     []string
	Specificity int // Specificity score for cascade
}

// Rule represents a CSS rule (selector + declarations)
type Rule struct {
	Selector     Selector
	Declarations map[string]string // property -> value
	// Order is the rule's position in the stylesheet, used to break
	// specificity ties.
	Order int
}

// Stylesheet represents a parsed CSS stylesheet
type Stylesheet struct {
	Rules []Rule
}

// ParseStylesheet parses CSS stylesheet content into rules. Malformed rules
// are skipped; an unbalanced brace is an error.
func ParseStylesheet(css string) (*Stylesheet, error) {
	stylesheet := &Stylesheet{
		Rules: make([]Rule, 0),
	}

	css = strings.TrimSpace(stripComments(css))
	if css == "" {
		return stylesheet, nil
	}

	rules, err := splitRules(css)
	if err != nil {
		return nil, err
	}

	for _, ruleStr := range rules {
		parsed, err := parseRule(ruleStr)
		if err != nil {
			// Skip malformed rules
			continue
		}
		// A selector list yields one rule per selector.
		for _, r := range parsed {
			r.Order = len(stylesheet.Rules)
			stylesheet.Rules = append(stylesheet.Rules, r)
		}
	}

	return stylesheet, nil
}

func stripComments(css string) string {
	var b strings.Builder
	for {
		start := strings.Index(css, "/*")
		if start < 0 {
			b.WriteString(css)
			return b.String()
		}
		b.WriteString(css[:start])
		end := strings.Index(css[start+2:], "*/")
		if end < 0 {
			return b.String()
		}
		css = css[start+2+end+2:]
	}
}

// splitRules splits CSS into individual rules
func splitRules(css string) ([]string, error) {
	rules := make([]string, 0)
	depth := 0
	start := 0

	for i, ch := range css {
		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("css: unexpected } at offset %d", i)
			}
			if depth == 0 {
				ruleStr := css[start : i+1]
				if strings.TrimSpace(ruleStr) != "" {
					rules = append(rules, ruleStr)
				}
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("css: unclosed block")
	}

	return rules, nil
}

// parseRule parses a single CSS rule
func parseRule(ruleStr string) ([]Rule, error) {
	bracePos := strings.Index(ruleStr, "{")
	if bracePos == -1 {
		return nil, fmt.Errorf("no opening brace found")
	}

	declEnd := strings.LastIndex(ruleStr, "}")
	if declEnd == -1 {
		declEnd = len(ruleStr)
	}
	declarations := parseDeclarations(ruleStr[bracePos+1 : declEnd])

	var rules []Rule
	for _, sel := range strings.Split(ruleStr[:bracePos], ",") {
		selector, err := parseSelector(sel)
		if err != nil {
			return nil, err
		}
		rules = append(rules, Rule{Selector: selector, Declarations: declarations})
	}
	return rules, nil
}

// ParseSelectorList parses a comma separated list of compound selectors.
func ParseSelectorList(list string) ([]Selector, error) {
	var out []Selector
	for _, part := range strings.Split(list, ",") {
		sel, err := parseSelector(part)
		if err != nil {
			return nil, err
		}
		out = append(out, sel)
	}
	return out, nil
}

// parseSelector parses a compound selector. Combinators are not
// supported.
func parseSelector(selectorStr string) (Selector, error) {
	selectorStr = strings.TrimSpace(selectorStr)
	sel := Selector{Raw: selectorStr}
	if selectorStr == "" || strings.ContainsAny(selectorStr, " >+~[:") {
		return sel, fmt.Errorf("unsupported selector %q", selectorStr)
	}
	if selectorStr == "*" {
		return sel, nil
	}

	rest := selectorStr
	next := func() string {
		i := strings.IndexAny(rest[1:], ".#")
		if i < 0 {
			tok := rest[1:]
			rest = ""
			return tok
		}
		tok := rest[1 : i+1]
		rest = rest[i+1:]
		return tok
	}
	if rest[0] != '.' && rest[0] != '#' {
		i := strings.IndexAny(rest, ".#")
		if i < 0 {
			i = len(rest)
		}
		sel.Tag = strings.ToLower(rest[:i])
		sel.Specificity++ // Element has low specificity
		rest = rest[i:]
	}
	for rest != "" {
		kind := rest[0]
		tok := next()
		if tok == "" {
			return sel, fmt.Errorf("empty name in selector %q", selectorStr)
		}
		if kind == '#' {
			sel.ID = tok
			sel.Specificity += 100 // ID has high specificity
		} else {
			sel.Classes = append(sel.Classes, tok)
			sel.Specificity += 10 // Class has medium specificity
		}
	}
	return sel, nil
}

// parseDeclarations parses CSS declarations into a map
func parseDeclarations(declStr string) map[string]string {
	declarations := make(map[string]string)
	// Inline style parsing already expands shorthands.
	for k, v := range ParseInlineStyle(declStr).Properties {
		if v != "" {
			declarations[k] = v
		}
	}
	return declarations
}
