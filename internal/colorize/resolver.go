package colorize

import (
	"fmt"

	"github.com/gridsheet/gridsheet/internal/options"
	"github.com/gridsheet/gridsheet/internal/sheet"
)

// Resolver applies a registry's rules to cell contexts. Predicate failures
// are reported through the report callback and treated as "no match"; a
// single bad rule never blocks a draw.
type Resolver struct {
	reg    *Registry
	opts   *options.Store
	report func(error)
}

// NewResolver returns a resolver over the given registry and option store.
// report may be nil to discard predicate errors.
func NewResolver(reg *Registry, opts *options.Store, report func(error)) *Resolver {
	if report == nil {
		report = func(error) {}
	}
	return &Resolver{reg: reg, opts: opts, report: report}
}

// Registry returns the underlying rule registry.
func (r *Resolver) Registry() *Registry { return r.reg }

// Colorize applies every rule for the sheet's kind in precedence order and
// returns the composed attribute. row is nil for header cells.
func (r *Resolver) Colorize(s *sheet.Sheet, col *sheet.Column, row sheet.Row, value any) Attr {
	var out Attr
	rules := r.reg.Rules(s.Kind)
	// Rules are sorted precedence-descending; compose lowest precedence
	// first so higher precedence overrides on color.
	for i := len(rules) - 1; i >= 0; i-- {
		rule := rules[i]
		res := r.eval(rule, s, col, row, value)
		opt := ""
		switch v := res.(type) {
		case nil:
			continue
		case bool:
			if !v {
				continue
			}
			opt = rule.StyleOpt
		case string:
			if v == "" {
				continue
			}
			if rule.StyleOpt != "" {
				opt = rule.StyleOpt
			} else {
				opt = v // predicate's return value is the style
			}
		default:
			opt = rule.StyleOpt
		}
		if opt == "" {
			continue
		}
		out = out.Update(ParseAttr(r.opts.String(opt)), rule.Precedence)
	}
	return out
}

// OptionAttr parses the named style option into an Attr.
func (r *Resolver) OptionAttr(name string) Attr {
	return ParseAttr(r.opts.String(name))
}

func (r *Resolver) eval(rule Rule, s *sheet.Sheet, col *sheet.Column, row sheet.Row, value any) (res any) {
	defer func() {
		if p := recover(); p != nil {
			r.report(fmt.Errorf("colorizer %q: %v", rule.Name, p))
			res = nil
		}
	}()
	return rule.Pred(s, col, row, value)
}
