// Package lang maps language tags to tree-sitter grammars and file
// extensions. Adding a language means adding one registry entry here;
// kernel logic never branches on language identity beyond this dispatch.
package lang

import (
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language is a stable language tag used in rule definitions and reports
type Language string

const (
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	TSX        Language = "tsx"
	Python     Language = "python"
	Go         Language = "go"
	Java       Language = "java"
	Ruby       Language = "ruby"
	Rust       Language = "rust"
	C          Language = "c"
	CPP        Language = "cpp"
	Bash       Language = "bash"
)

type entry struct {
	grammar    *sitter.Language
	extensions []string
}

var registry = map[Language]entry{
	JavaScript: {javascript.GetLanguage(), []string{".js", ".jsx", ".mjs", ".cjs"}},
	TypeScript: {typescript.GetLanguage(), []string{".ts", ".mts", ".cts"}},
	TSX:        {tsx.GetLanguage(), []string{".tsx"}},
	Python:     {python.GetLanguage(), []string{".py", ".pyi"}},
	Go:         {golang.GetLanguage(), []string{".go"}},
	Java:       {java.GetLanguage(), []string{".java"}},
	Ruby:       {ruby.GetLanguage(), []string{".rb", ".rake"}},
	Rust:       {rust.GetLanguage(), []string{".rs"}},
	C:          {c.GetLanguage(), []string{".c", ".h"}},
	CPP:        {cpp.GetLanguage(), []string{".cc", ".cpp", ".cxx", ".hpp", ".hh"}},
	Bash:       {bash.GetLanguage(), []string{".sh", ".bash"}},
}

var byExtension = func() map[string]Language {
	m := make(map[string]Language)
	for l, e := range registry {
		for _, ext := range e.extensions {
			m[ext] = l
		}
	}
	return m
}()

// FromTag returns the Language for a tag string
func FromTag(tag string) (Language, bool) {
	l := Language(strings.ToLower(strings.TrimSpace(tag)))
	_, ok := registry[l]
	return l, ok
}

// FromExtension detects the language of a file path by extension
func FromExtension(path string) (Language, bool) {
	l, ok := byExtension[strings.ToLower(filepath.Ext(path))]
	return l, ok
}

// Grammar returns the tree-sitter grammar for the language, or nil if the
// language is not registered
func (l Language) Grammar() *sitter.Language {
	return registry[l].grammar
}

// String returns the language tag
func (l Language) String() string {
	return string(l)
}

// All returns every registered language tag in sorted order
func All() []Language {
	langs := make([]Language, 0, len(registry))
	for l := range registry {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}
