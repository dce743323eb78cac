// Package matcher evaluates rule patterns against syntax trees. Evaluation
// is a pure function of (tree, rule): it never mutates the tree, and two
// runs over the same inputs produce the same match sequence.
package matcher

import (
	"context"
	"errors"
	"regexp"
	"sync"

	"github.com/crosslint/crosslint/internal/parser"
	"github.com/crosslint/crosslint/internal/rule"
)

// ErrBudgetExceeded reports that one (file, rule) evaluation ran past its
// cooperative step budget.
var ErrBudgetExceeded = errors.New("pattern evaluation exceeded step budget")

// Match is one successful pattern match: the matched node and the capture
// bindings produced along the way.
type Match struct {
	Node     *parser.Node
	Bindings map[string]*parser.Node
}

// Engine evaluates rules against trees. One engine is shared by all
// workers for the duration of a run; the regex cache is the only mutable
// state and is synchronized.
type Engine struct {
	budget int

	mu    sync.RWMutex
	cache map[string]*regexp.Regexp
}

// ctxCheckInterval is how many steps pass between cancellation checks
const ctxCheckInterval = 256

// NewEngine creates an engine with the given per-evaluation step budget
func NewEngine(budget int) *Engine {
	if budget <= 0 {
		budget = 1
	}
	return &Engine{
		budget: budget,
		cache:  make(map[string]*regexp.Regexp),
	}
}

// Evaluate matches every clause of a rule against the tree. Matches are
// emitted in pre-order traversal order; within one node, in clause order.
// Returns ErrBudgetExceeded or the context error when cut off.
func (e *Engine) Evaluate(ctx context.Context, tree *parser.Tree, r *rule.Rule) ([]Match, error) {
	ev := &evaluation{engine: e, tree: tree, ctx: ctx, budget: e.budget}

	var matches []Match
	if err := ev.walk(tree.Root, r, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

func (e *Engine) regex(pattern string) (*regexp.Regexp, error) {
	e.mu.RLock()
	re, ok := e.cache[pattern]
	e.mu.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.cache[pattern] = re
	e.mu.Unlock()
	return re, nil
}

// evaluation is the per-(file, rule) state: the step counter and the
// cancellation context. Never shared across goroutines.
type evaluation struct {
	engine *Engine
	tree   *parser.Tree
	ctx    context.Context
	budget int
	steps  int
}

// tick consumes one step and periodically observes cancellation
func (ev *evaluation) tick() error {
	ev.steps++
	if ev.steps > ev.budget {
		return ErrBudgetExceeded
	}
	if ev.steps%ctxCheckInterval == 0 {
		select {
		case <-ev.ctx.Done():
			return ev.ctx.Err()
		default:
		}
	}
	return nil
}

func (ev *evaluation) walk(n *parser.Node, r *rule.Rule, matches *[]Match) error {
	if n == nil {
		return nil
	}
	for _, clause := range r.Patterns {
		bindings := make(map[string]*parser.Node)
		ok, err := ev.match(n, clause, bindings)
		if err != nil {
			return err
		}
		if ok {
			*matches = append(*matches, Match{Node: n, Bindings: bindings})
		}
	}
	for _, child := range n.Children {
		if err := ev.walk(child, r, matches); err != nil {
			return err
		}
	}
	return nil
}

// match tests one pattern against one node. Every populated condition must
// hold. Captures from relational sub-matches merge into b; a name set by a
// deeper pattern is never overwritten.
func (ev *evaluation) match(n *parser.Node, p *rule.Pattern, b map[string]*parser.Node) (bool, error) {
	if err := ev.tick(); err != nil {
		return false, err
	}

	if p.Kind != "" && n.Kind != p.Kind {
		return false, nil
	}
	if p.Text != "" {
		re, err := ev.engine.regex(p.Text)
		if err != nil {
			return false, err
		}
		if !re.MatchString(ev.tree.NodeText(n)) {
			return false, nil
		}
	}

	for _, sub := range p.All {
		ok, err := ev.match(n, sub, b)
		if err != nil || !ok {
			return false, err
		}
	}

	if len(p.Any) > 0 {
		matched := false
		for _, sub := range p.Any {
			trial := cloneBindings(b)
			ok, err := ev.match(n, sub, trial)
			if err != nil {
				return false, err
			}
			if ok {
				mergeBindings(b, trial)
				matched = true
				break
			}
		}
		if !matched {
			return false, nil
		}
	}

	if p.Child != nil {
		matched := false
		for _, child := range n.Children {
			trial := cloneBindings(b)
			ok, err := ev.match(child, p.Child, trial)
			if err != nil {
				return false, err
			}
			if ok {
				mergeBindings(b, trial)
				matched = true
				break
			}
		}
		if !matched {
			return false, nil
		}
	}

	if p.Has != nil {
		ok, err := ev.searchDescendants(n, p.Has, b)
		if err != nil || !ok {
			return false, err
		}
	}

	if p.Inside != nil {
		matched := false
		for anc := n.Parent; anc != nil; anc = anc.Parent {
			trial := cloneBindings(b)
			ok, err := ev.match(anc, p.Inside, trial)
			if err != nil {
				return false, err
			}
			if ok {
				mergeBindings(b, trial)
				matched = true
				break
			}
		}
		if !matched {
			return false, nil
		}
	}

	if p.Not != nil {
		// Guards probe with throwaway bindings and never capture
		for _, child := range n.Children {
			found, err := ev.searchSelfOrDescendants(child, p.Not, make(map[string]*parser.Node))
			if err != nil {
				return false, err
			}
			if found {
				return false, nil
			}
		}
	}

	if p.Capture != "" {
		if _, exists := b[p.Capture]; !exists {
			b[p.Capture] = n
		}
	}
	return true, nil
}

// searchDescendants finds the first strict descendant (pre-order) matching
// p and merges its captures on success.
func (ev *evaluation) searchDescendants(n *parser.Node, p *rule.Pattern, b map[string]*parser.Node) (bool, error) {
	for _, child := range n.Children {
		trial := cloneBindings(b)
		ok, err := ev.searchSelfOrDescendants(child, p, trial)
		if err != nil {
			return false, err
		}
		if ok {
			mergeBindings(b, trial)
			return true, nil
		}
	}
	return false, nil
}

func (ev *evaluation) searchSelfOrDescendants(n *parser.Node, p *rule.Pattern, b map[string]*parser.Node) (bool, error) {
	ok, err := ev.match(n, p, b)
	if err != nil || ok {
		return ok, err
	}
	return ev.searchDescendants(n, p, b)
}

func cloneBindings(b map[string]*parser.Node) map[string]*parser.Node {
	clone := make(map[string]*parser.Node, len(b))
	for k, v := range b {
		clone[k] = v
	}
	return clone
}

func mergeBindings(dst, src map[string]*parser.Node) {
	for k, v := range src {
		if _, exists := dst[k]; !exists {
			dst[k] = v
		}
	}
}
