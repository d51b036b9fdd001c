// Package chat answers questions by first-match keyword rules.
package chat

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	Greeting = "Hello! How can I help you with your wheelchair questions today?"
	Fallback = "I'm sorry, I don't have information on that specific topic right now. Could you please rephrase your question?"
)

//go:embed rules.json
var defaultRules []byte

type Rule struct {
	Keywords []string `json:"keywords"`
	Answer   string   `json:"answer"`
}

// Engine is read-only after construction and safe for concurrent use.
type Engine struct {
	rules []Rule
}

func New(rules []Rule) *Engine {
	cp := make([]Rule, len(rules))
	copy(cp, rules)
	return &Engine{rules: cp}
}

// Parse decodes a JSON array of rules.
func Parse(r io.Reader) ([]Rule, error) {
	var rules []Rule
	if err := json.NewDecoder(r).Decode(&rules); err != nil {
		return nil, fmt.Errorf("decode chat rules: %w", err)
	}
	return rules, nil
}

// Load reads rules from path, or the embedded set when path is empty.
func Load(path string) (*Engine, error) {
	if path == "" {
		rules, err := Parse(bytes.NewReader(defaultRules))
		if err != nil {
			return nil, err
		}
		return New(rules), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open chat rules: %w", err)
	}
	defer f.Close()
	rules, err := Parse(f)
	if err != nil {
		return nil, err
	}
	return New(rules), nil
}

// Answer returns the answer of the first rule with a keyword contained in
// input, comparing case-insensitively, or Fallback.
func (e *Engine) Answer(input string) string {
	in := strings.ToLower(input)
	if strings.TrimSpace(in) == "" {
		return Fallback
	}
	for _, r := range e.rules {
		for _, k := range r.Keywords {
			if k == "" {
				continue
			}
			if strings.Contains(in, strings.ToLower(k)) {
				return r.Answer
			}
		}
	}
	return Fallback
}

func (e *Engine) Len() int { return len(e.rules) }
