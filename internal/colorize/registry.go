package colorize

import (
	"sort"

	"github.com/gridsheet/gridsheet/internal/sheet"
)

// Scope tags where a rule applies.
type Scope int

const (
	// RowScope rules style whole rows.
	RowScope Scope = iota
	// ColumnScope rules style whole columns.
	ColumnScope
	// CellScope rules style individual cells.
	CellScope
)

// Predicate decides whether a rule matches the given cell context. row is
// nil for header cells. The returned value selects the style: for rules
// with an explicit StyleOpt any truthy result applies it; for rules without
// one, a non-empty string result is itself the style option name.
type Predicate func(s *sheet.Sheet, col *sheet.Column, row sheet.Row, value any) any

// Rule is one immutable colorizer: a precedence (higher wins), an optional
// style option name, and a predicate. Name identifies the rule for
// deduplication across kind inheritance.
type Rule struct {
	Scope      Scope
	Precedence int
	StyleOpt   string
	Name       string
	Pred       Predicate
}

type ruleKey struct {
	scope    Scope
	prec     int
	styleOpt string
	name     string
}

type kind struct {
	parent string
	rules  []Rule
}

// Registry holds colorizer rules per sheet kind. A kind's effective rule
// set is its own rules plus its declared parent kind's set, computed once
// and cached until registration changes it.
type Registry struct {
	kinds map[string]*kind
	cache map[string][]Rule
}

// NewRegistry returns a registry with the base "sheet" kind rules
// installed.
func NewRegistry() *Registry {
	r := &Registry{
		kinds: make(map[string]*kind),
		cache: make(map[string][]Rule),
	}
	r.Register("sheet", baseRules()...)
	return r
}

// Register appends rules to the given kind and invalidates the rule-set
// cache.
func (r *Registry) Register(kindName string, rules ...Rule) {
	k := r.kinds[kindName]
	if k == nil {
		k = &kind{}
		r.kinds[kindName] = k
	}
	k.rules = append(k.rules, rules...)
	r.cache = make(map[string][]Rule)
}

// SetParent declares kind inheritance: child's effective rule set includes
// parent's. Unregistered kinds implicitly inherit from "sheet".
func (r *Registry) SetParent(child, parent string) {
	k := r.kinds[child]
	if k == nil {
		k = &kind{}
		r.kinds[child] = k
	}
	k.parent = parent
	r.cache = make(map[string][]Rule)
}

// Rules returns the effective rule set for the kind: its own rules plus all
// ancestors', deduplicated, in stable precedence-descending order.
// Declaration order is preserved within equal precedence.
func (r *Registry) Rules(kindName string) []Rule {
	if cached, ok := r.cache[kindName]; ok {
		return cached
	}

	seen := make(map[ruleKey]bool)
	var out []Rule
	for name := kindName; ; {
		k := r.kinds[name]
		if k != nil {
			for _, rule := range k.rules {
				key := ruleKey{rule.Scope, rule.Precedence, rule.StyleOpt, rule.Name}
				if !seen[key] {
					seen[key] = true
					out = append(out, rule)
				}
			}
		}
		next := ""
		if k != nil {
			next = k.parent
		}
		if next == "" && name != "sheet" {
			next = "sheet"
		}
		if next == "" || next == name {
			break
		}
		name = next
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Precedence > out[j].Precedence
	})

	r.cache[kindName] = out
	return out
}

// baseRules returns the colorizers every sheet kind starts with.
func baseRules() []Rule {
	return []Rule{
		{Scope: CellScope, Precedence: 2, StyleOpt: "color_default_hdr", Name: "header",
			Pred: func(s *sheet.Sheet, c *sheet.Column, row sheet.Row, v any) any { return row == nil }},
		{Scope: ColumnScope, Precedence: 2, StyleOpt: "color_current_col", Name: "current-col",
			Pred: func(s *sheet.Sheet, c *sheet.Column, row sheet.Row, v any) any {
				return c != nil && c == s.CursorCol()
			}},
		{Scope: ColumnScope, Precedence: 1, StyleOpt: "color_key_col", Name: "key-col",
			Pred: func(s *sheet.Sheet, c *sheet.Column, row sheet.Row, v any) any { return c != nil && c.Key }},
		{Scope: CellScope, Precedence: 0, StyleOpt: "color_default", Name: "default",
			Pred: func(s *sheet.Sheet, c *sheet.Column, row sheet.Row, v any) any { return true }},
		{Scope: RowScope, Precedence: 2, StyleOpt: "color_selected_row", Name: "selected-row",
			Pred: func(s *sheet.Sheet, c *sheet.Column, row sheet.Row, v any) any {
				return row != nil && s.IsSelected(row)
			}},
		{Scope: RowScope, Precedence: 1, StyleOpt: "color_error", Name: "error-row",
			Pred: func(s *sheet.Sheet, c *sheet.Column, row sheet.Row, v any) any {
				_, isErr := row.(error)
				return isErr
			}},
	}
}
