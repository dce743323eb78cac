// Package testutil provides helper functions for testing crosslint components
package testutil

import (
	"context"
	"testing"

	"github.com/crosslint/crosslint/internal/lang"
	"github.com/crosslint/crosslint/internal/parser"
	"github.com/crosslint/crosslint/internal/rule"
)

// ParseTestTree parses source for the given language tag, failing the test
// on a parse error
func ParseTestTree(t *testing.T, tag, source string) *parser.Tree {
	t.Helper()
	language, ok := lang.FromTag(tag)
	if !ok {
		t.Fatalf("Unknown test language: %s", tag)
	}
	tree, err := parser.Parse(context.Background(), "test."+tag, []byte(source), language)
	if err != nil {
		t.Fatalf("Failed to parse test code: %v", err)
	}
	return tree
}

// LoadTestRules parses a ruleset YAML document, failing the test if any
// rule in it is rejected
func LoadTestRules(t *testing.T, doc string) []*rule.Rule {
	t.Helper()
	rules, loadErrs := rule.ParseRuleset("test.yaml", []byte(doc), nil)
	if len(loadErrs) > 0 {
		t.Fatalf("Test ruleset rejected: %v", loadErrs[0])
	}
	if len(rules) == 0 {
		t.Fatal("Test ruleset contains no rules")
	}
	return rules
}

// LoadTestRule parses a ruleset YAML document expected to hold exactly one rule
func LoadTestRule(t *testing.T, doc string) *rule.Rule {
	t.Helper()
	rules := LoadTestRules(t, doc)
	if len(rules) != 1 {
		t.Fatalf("Expected exactly one rule, got %d", len(rules))
	}
	return rules[0]
}

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error but got nil")
	}
}

// AssertEqual fails the test if expected != actual
func AssertEqual(t *testing.T, expected, actual any) {
	t.Helper()
	if expected != actual {
		t.Errorf("Expected %v, got %v", expected, actual)
	}
}

// AssertTrue fails the test if condition is false
func AssertTrue(t *testing.T, condition bool, msg string) {
	t.Helper()
	if !condition {
		t.Error(msg)
	}
}

// AssertFalse fails the test if condition is true
func AssertFalse(t *testing.T, condition bool, msg string) {
	t.Helper()
	if condition {
		t.Error(msg)
	}
}
