package enumerator

import (
	"fmt"

	"print-pricing/internal/catalog"
)

// Dimension names one axis of a product's option space.
type Dimension string

const (
	DimSize       Dimension = "size"
	DimPaperGroup Dimension = "paper_group"
	DimPaper      Dimension = "paper"
	DimProcess    Dimension = "process"
	DimColor      Dimension = "color"
	DimCutAmount  Dimension = "cut_amount"
)

// Option is one vendor value of a dimension.
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Rule restricts To by the value chosen for From. Every From value that can
// occur must have an entry in Allowed.
type Rule struct {
	Name    string
	From    Dimension
	To      Dimension
	Allowed map[string][]string
}

// Space is a cartesian product of dimensions filtered by rules.
type Space struct {
	Order   []Dimension
	Options map[Dimension][]Option
	Rules   []Rule
}

// Assignment picks one option per dimension.
type Assignment map[Dimension]Option

// Enumerate expands the space depth first in Order. It fails with an
// UnknownOptionError when a rule has no entry for a chosen value.
func (s Space) Enumerate() ([]Assignment, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	options := make(map[Dimension][]Option, len(s.Order))
	for _, d := range s.Order {
		options[d] = dedupe(s.Options[d])
	}

	var out []Assignment
	current := Assignment{}
	var walk func(depth int) error
	walk = func(depth int) error {
		if depth == len(s.Order) {
			a := make(Assignment, len(current))
			for k, v := range current {
				a[k] = v
			}
			out = append(out, a)
			return nil
		}
		dim := s.Order[depth]
		candidates, err := s.filter(dim, options[dim], current)
		if err != nil {
			return err
		}
		for _, opt := range candidates {
			current[dim] = opt
			if err := walk(depth + 1); err != nil {
				return err
			}
		}
		delete(current, dim)
		return nil
	}
	if err := walk(0); err != nil {
		return nil, err
	}
	return out, nil
}

// Allows reports whether a full assignment satisfies every rule.
func (s Space) Allows(a Assignment) error {
	for _, r := range s.Rules {
		from, ok := a[r.From]
		if !ok {
			return fmt.Errorf("assignment has no %s", r.From)
		}
		to, ok := a[r.To]
		if !ok {
			return fmt.Errorf("assignment has no %s", r.To)
		}
		allowed, ok := r.Allowed[from.ID]
		if !ok {
			return &catalog.UnknownOptionError{Table: r.Name, Code: from.ID}
		}
		if !contains(allowed, to.ID) {
			return fmt.Errorf("%s: %s=%s does not allow %s=%s", r.Name, r.From, from.ID, r.To, to.ID)
		}
	}
	return nil
}

func (s Space) filter(dim Dimension, candidates []Option, current Assignment) ([]Option, error) {
	out := candidates
	for _, r := range s.Rules {
		if r.To != dim {
			continue
		}
		from := current[r.From]
		allowed, ok := r.Allowed[from.ID]
		if !ok {
			return nil, &catalog.UnknownOptionError{Table: r.Name, Code: from.ID}
		}
		kept := make([]Option, 0, len(out))
		for _, o := range out {
			if contains(allowed, o.ID) {
				kept = append(kept, o)
			}
		}
		out = kept
	}
	return out, nil
}

func (s Space) check() error {
	pos := make(map[Dimension]int, len(s.Order))
	for i, d := range s.Order {
		if _, dup := pos[d]; dup {
			return fmt.Errorf("dimension %s listed twice", d)
		}
		pos[d] = i
		if len(s.Options[d]) == 0 {
			return fmt.Errorf("dimension %s has no options", d)
		}
	}
	for _, r := range s.Rules {
		from, ok := pos[r.From]
		if !ok {
			return fmt.Errorf("rule %s: unknown dimension %s", r.Name, r.From)
		}
		to, ok := pos[r.To]
		if !ok {
			return fmt.Errorf("rule %s: unknown dimension %s", r.Name, r.To)
		}
		if from >= to {
			return fmt.Errorf("rule %s: %s must come before %s", r.Name, r.From, r.To)
		}
	}
	return nil
}

func dedupe(opts []Option) []Option {
	seen := make(map[string]bool, len(opts))
	out := make([]Option, 0, len(opts))
	for _, o := range opts {
		if seen[o.ID] {
			continue
		}
		seen[o.ID] = true
		out = append(out, o)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
