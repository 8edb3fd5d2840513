package colorize_test

import (
	"testing"

	"github.com/gridsheet/gridsheet/internal/colorize"
	"github.com/gridsheet/gridsheet/internal/sheet"
)

func matchAll(s *sheet.Sheet, c *sheet.Column, row sheet.Row, v any) any { return true }

func TestRules_PrecedenceDescending(t *testing.T) {
	reg := colorize.NewRegistry()
	rules := reg.Rules("sheet")
	if len(rules) == 0 {
		t.Fatal("Rules(sheet) is empty, want base rules")
	}
	for i := 1; i < len(rules); i++ {
		if rules[i-1].Precedence < rules[i].Precedence {
			t.Fatalf("rules not precedence-descending: %q(%d) before %q(%d)",
				rules[i-1].Name, rules[i-1].Precedence, rules[i].Name, rules[i].Precedence)
		}
	}
}

func TestRules_UnregisteredKindInheritsSheet(t *testing.T) {
	reg := colorize.NewRegistry()
	base := reg.Rules("sheet")
	got := reg.Rules("never-registered")
	if len(got) != len(base) {
		t.Errorf("Rules(never-registered) has %d rules, want %d inherited from sheet",
			len(got), len(base))
	}
}

func TestRules_InheritanceChain(t *testing.T) {
	reg := colorize.NewRegistry()
	base := len(reg.Rules("sheet"))

	reg.Register("table", colorize.Rule{
		Scope: colorize.RowScope, Precedence: 5, StyleOpt: "color_error",
		Name: "table-rule", Pred: matchAll,
	})
	reg.Register("freqtable", colorize.Rule{
		Scope: colorize.CellScope, Precedence: 3, StyleOpt: "color_note_type",
		Name: "freq-rule", Pred: matchAll,
	})
	reg.SetParent("freqtable", "table")

	got := reg.Rules("freqtable")
	if len(got) != base+2 {
		t.Fatalf("Rules(freqtable) has %d rules, want %d (own + parent + sheet)",
			len(got), base+2)
	}
	if got[0].Name != "table-rule" {
		t.Errorf("highest-precedence rule = %q, want table-rule", got[0].Name)
	}
	if got[1].Name != "freq-rule" {
		t.Errorf("second rule = %q, want freq-rule", got[1].Name)
	}
}

func TestRules_DeduplicatesAcrossKinds(t *testing.T) {
	reg := colorize.NewRegistry()
	dup := colorize.Rule{
		Scope: colorize.RowScope, Precedence: 4, StyleOpt: "color_error",
		Name: "shared", Pred: matchAll,
	}
	reg.Register("parent", dup)
	reg.Register("child", dup)
	reg.SetParent("child", "parent")

	seen := 0
	for _, r := range reg.Rules("child") {
		if r.Name == "shared" {
			seen++
		}
	}
	if seen != 1 {
		t.Errorf("rule registered on child and parent appears %d times, want 1", seen)
	}
}

func TestRules_RegisterInvalidatesCache(t *testing.T) {
	reg := colorize.NewRegistry()
	before := len(reg.Rules("custom"))
	reg.Register("custom", colorize.Rule{
		Scope: colorize.CellScope, Precedence: 9, StyleOpt: "color_error",
		Name: "late", Pred: matchAll,
	})
	after := len(reg.Rules("custom"))
	if after != before+1 {
		t.Errorf("Rules(custom) has %d rules after Register, want %d", after, before+1)
	}
}
