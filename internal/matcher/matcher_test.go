package matcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/crosslint/crosslint/internal/testutil"
)

const defaultTestBudget = 100000

func TestMatchEmptyCatch(t *testing.T) {
	r := testutil.LoadTestRule(t, `
rules:
  - id: no-empty-catch
    languages: [javascript]
    severity: warning
    message: empty catch swallows errors
    patterns:
      - kind: catch_clause
        has:
          kind: statement_block
          text: '^\{\s*\}$'
`)
	tree := testutil.ParseTestTree(t, "javascript", `
try { risky(); } catch (e) {}
try { risky(); } catch (e) { recover(e); }
`)

	matches, err := NewEngine(defaultTestBudget).Evaluate(context.Background(), tree, r)
	testutil.AssertNoError(t, err)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Node.Kind != "catch_clause" {
		t.Errorf("matched %s, want catch_clause", matches[0].Node.Kind)
	}
	if matches[0].Node.Span.StartLine != 2 {
		t.Errorf("match on line %d, want 2", matches[0].Node.Span.StartLine)
	}
}

func TestCaptureBindings(t *testing.T) {
	r := testutil.LoadTestRule(t, `
rules:
  - id: no-console-log
    languages: [javascript]
    severity: notice
    message: 'remove {{callee}} call'
    patterns:
      - kind: call_expression
        child:
          kind: member_expression
          text: '^console\.log$'
          capture: callee
`)
	tree := testutil.ParseTestTree(t, "javascript", `console.log("hi");`)

	matches, err := NewEngine(defaultTestBudget).Evaluate(context.Background(), tree, r)
	testutil.AssertNoError(t, err)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}

	callee, ok := matches[0].Bindings["callee"]
	if !ok {
		t.Fatal("callee capture not bound")
	}
	if got := tree.NodeText(callee); got != "console.log" {
		t.Errorf("callee text = %q, want console.log", got)
	}
}

func TestDeeperCaptureWins(t *testing.T) {
	r := testutil.LoadTestRule(t, `
rules:
  - id: capture-priority
    languages: [javascript]
    severity: notice
    message: 'saw {{n}}'
    patterns:
      - kind: call_expression
        capture: n
        has:
          kind: identifier
          capture: n
`)
	tree := testutil.ParseTestTree(t, "javascript", `f(x);`)

	matches, err := NewEngine(defaultTestBudget).Evaluate(context.Background(), tree, r)
	testutil.AssertNoError(t, err)
	if len(matches) == 0 {
		t.Fatal("expected a match")
	}
	n := matches[0].Bindings["n"]
	if n == nil {
		t.Fatal("capture n not bound")
	}
	if n.Kind != "identifier" {
		t.Errorf("binding n = %s, want identifier (set by the deeper pattern)", n.Kind)
	}
}

func TestAnyClause(t *testing.T) {
	r := testutil.LoadTestRule(t, `
rules:
  - id: no-dynamic-code
    languages: [javascript]
    severity: error
    message: dynamic code execution
    patterns:
      - kind: call_expression
        child:
          kind: identifier
          any:
            - text: '^eval$'
            - text: '^Function$'
`)
	tree := testutil.ParseTestTree(t, "javascript", `
eval("x");
Function("y");
parse("z");
`)

	matches, err := NewEngine(defaultTestBudget).Evaluate(context.Background(), tree, r)
	testutil.AssertNoError(t, err)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
}

func TestNotGuard(t *testing.T) {
	r := testutil.LoadTestRule(t, `
rules:
  - id: function-without-return
    languages: [javascript]
    severity: notice
    message: function never returns a value
    patterns:
      - kind: function_declaration
        not:
          kind: return_statement
`)
	tree := testutil.ParseTestTree(t, "javascript", `
function silent() { work(); }
function loud() { return 1; }
`)

	matches, err := NewEngine(defaultTestBudget).Evaluate(context.Background(), tree, r)
	testutil.AssertNoError(t, err)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Node.Span.StartLine != 2 {
		t.Errorf("match on line %d, want 2", matches[0].Node.Span.StartLine)
	}
}

func TestInsideCondition(t *testing.T) {
	r := testutil.LoadTestRule(t, `
rules:
  - id: debugger-in-function
    languages: [javascript]
    severity: error
    message: debugger inside a function body
    patterns:
      - kind: debugger_statement
        inside:
          kind: function_declaration
`)
	tree := testutil.ParseTestTree(t, "javascript", `
debugger;
function f() { debugger; }
`)

	matches, err := NewEngine(defaultTestBudget).Evaluate(context.Background(), tree, r)
	testutil.AssertNoError(t, err)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Node.Span.StartLine != 3 {
		t.Errorf("match on line %d, want 3", matches[0].Node.Span.StartLine)
	}
}

func TestClauseUnion(t *testing.T) {
	r := testutil.LoadTestRule(t, `
rules:
  - id: multi-clause
    languages: [javascript]
    severity: warning
    message: flagged statement
    patterns:
      - kind: debugger_statement
      - kind: variable_declaration
`)
	tree := testutil.ParseTestTree(t, "javascript", `
var x = 1;
debugger;
`)

	matches, err := NewEngine(defaultTestBudget).Evaluate(context.Background(), tree, r)
	testutil.AssertNoError(t, err)
	if len(matches) != 2 {
		t.Fatalf("expected one match per clause, got %d", len(matches))
	}
}

func TestMatchesEmittedInPreOrder(t *testing.T) {
	r := testutil.LoadTestRule(t, `
rules:
  - id: every-identifier
    languages: [javascript]
    severity: notice
    message: identifier
    patterns:
      - kind: identifier
`)
	tree := testutil.ParseTestTree(t, "javascript", `
function outer(a, b) {
  inner(a);
  return b;
}
`)

	matches, err := NewEngine(defaultTestBudget).Evaluate(context.Background(), tree, r)
	testutil.AssertNoError(t, err)
	if len(matches) < 4 {
		t.Fatalf("expected several identifier matches, got %d", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Node.Span.StartByte < matches[i-1].Node.Span.StartByte {
			t.Fatal("matches are not in pre-order traversal order")
		}
	}
}

func TestDeterministicAcrossRuns(t *testing.T) {
	r := testutil.LoadTestRule(t, `
rules:
  - id: calls
    languages: [javascript]
    severity: notice
    message: call
    patterns:
      - kind: call_expression
`)
	tree := testutil.ParseTestTree(t, "javascript", `
a(); b(); c(); d(e(), f());
`)
	engine := NewEngine(defaultTestBudget)

	first, err := engine.Evaluate(context.Background(), tree, r)
	testutil.AssertNoError(t, err)
	second, err := engine.Evaluate(context.Background(), tree, r)
	testutil.AssertNoError(t, err)

	if len(first) != len(second) {
		t.Fatalf("match counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Node != second[i].Node {
			t.Fatalf("match %d differs between identical runs", i)
		}
	}
}

func TestBudgetExceeded(t *testing.T) {
	r := testutil.LoadTestRule(t, `
rules:
  - id: tiny-budget
    languages: [javascript]
    severity: notice
    message: m
    patterns:
      - kind: identifier
`)
	tree := testutil.ParseTestTree(t, "javascript", `
function f(a, b, c) { return g(a) + h(b) + i(c); }
`)

	_, err := NewEngine(3).Evaluate(context.Background(), tree, r)
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("expected ErrBudgetExceeded, got %v", err)
	}
}

func TestContextCancellation(t *testing.T) {
	r := testutil.LoadTestRule(t, `
rules:
  - id: everything
    languages: [javascript]
    severity: notice
    message: m
    patterns:
      - kind: identifier
`)
	// Enough nodes that the periodic cancellation check fires
	var sb strings.Builder
	for i := 0; i < 500; i++ {
		fmt.Fprintf(&sb, "var v%d = f%d(x%d);\n", i, i, i)
	}
	tree := testutil.ParseTestTree(t, "javascript", sb.String())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(10_000_000).Evaluate(ctx, tree, r)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEvaluationNeverMutatesTree(t *testing.T) {
	r := testutil.LoadTestRule(t, `
rules:
  - id: calls
    languages: [javascript]
    severity: notice
    message: call
    patterns:
      - kind: call_expression
`)
	tree := testutil.ParseTestTree(t, "javascript", `a(); b();`)
	before := len(tree.Root.Children)

	_, err := NewEngine(defaultTestBudget).Evaluate(context.Background(), tree, r)
	testutil.AssertNoError(t, err)

	if len(tree.Root.Children) != before {
		t.Error("evaluation mutated the tree")
	}
}
