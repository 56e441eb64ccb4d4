// Package search implements the tuner's point-selection strategies and
// the pre-search heuristic gate. Every strategy consumes the harness
// evaluator plus bounds and produces a complete search Outcome.
package search

import (
	"context"
	"fmt"
	"sort"

	"acctune/internal/harness"
	"acctune/internal/model"
)

// Strategy decides which points to evaluate and in what order.
type Strategy interface {
	Name() string
	Search(ctx context.Context, eval *harness.Evaluator, bounds model.Bounds) (model.Outcome, error)
}

// ForMethod resolves a search-method identifier. Unknown identifiers are
// rejected at configuration-validation time via KnownMethod; this is the
// dispatch half of the same table.
func ForMethod(name string) (Strategy, error) {
	switch name {
	case "nelder-mead":
		return &NelderMead{}, nil
	case "exhaustive-pow2":
		return &ExhaustivePow2{}, nil
	case "exhaustive32":
		return &Exhaustive{Step: 32}, nil
	case "exhaustive64":
		return &Exhaustive{Step: 64}, nil
	case "exhaustive128":
		return &Exhaustive{Step: 128}, nil
	case "exhaustive256":
		return &Exhaustive{Step: 256}, nil
	default:
		return nil, fmt.Errorf("unknown search method %q", name)
	}
}

// KnownMethod reports whether name resolves to a strategy.
func KnownMethod(name string) bool {
	_, err := ForMethod(name)
	return err == nil
}

// Methods lists the registered search-method identifiers.
func Methods() []string {
	names := []string{
		"nelder-mead",
		"exhaustive-pow2",
		"exhaustive32",
		"exhaustive64",
		"exhaustive128",
		"exhaustive256",
	}
	sort.Strings(names)
	return names
}
