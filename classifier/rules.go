package classifier

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// input is a message prepared once for every rule.
type input struct {
	text   string
	lower  string
	length int
	words  []string
	handle string
}

func newInput(text, handle string) input {
	text = strings.TrimSpace(text)
	lower := strings.ToLower(text)
	return input{
		text:   text,
		lower:  lower,
		length: utf8.RuneCountInString(text),
		words:  strings.Fields(lower),
		handle: strings.ToLower(strings.TrimSpace(handle)),
	}
}

// rule is one independent heuristic. Rules in a table run in order and the first hit wins.
type rule struct {
	name  string
	match func(in input) bool
}

func firstMatch(rules []rule, in input) (string, bool) {
	for _, r := range rules {
		if r.match(in) {
			return r.name, true
		}
	}
	return "", false
}

// compileAny joins patterns into one case-insensitive alternation.
func compileAny(patterns []string) (*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	parts := make([]string, len(patterns))
	for i, p := range patterns {
		if _, err := regexp.Compile(p); err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		parts[i] = "(?:" + p + ")"
	}
	return regexp.Compile("(?i)" + strings.Join(parts, "|"))
}

func regexRule(name string, re *regexp.Regexp, field func(in input) string) rule {
	return rule{name: name, match: func(in input) bool {
		return re != nil && re.MatchString(field(in))
	}}
}

func familyRules(families []Family, field func(in input) string) ([]rule, error) {
	rules := make([]rule, 0, len(families))
	for _, f := range families {
		re, err := compileAny(f.Patterns)
		if err != nil {
			return nil, fmt.Errorf("family %s: %w", f.Name, err)
		}
		rules = append(rules, regexRule(f.Name, re, field))
	}
	return rules, nil
}

func textField(in input) string   { return in.text }
func handleField(in input) string { return in.handle }

// hasRepeatedRun reports whether any rune (other than a newline) repeats n or more times in a row.
// RE2 has no backreferences, so `(.)\1{4,}` is evaluated by hand.
func hasRepeatedRun(s string, n int) bool {
	if n <= 1 {
		return false
	}
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev && r != '\n' {
			run++
		} else {
			prev, run = r, 1
		}
		if run >= n {
			return true
		}
	}
	return false
}

// hasCapsRun reports whether s contains n or more consecutive uppercase letters.
func hasCapsRun(s string, n int) bool {
	if n <= 0 {
		return false
	}
	run := 0
	for _, r := range s {
		if unicode.IsUpper(r) {
			run++
			if run >= n {
				return true
			}
			continue
		}
		run = 0
	}
	return false
}

func uniqueRatio(words []string) float64 {
	if len(words) == 0 {
		return 1
	}
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[w] = struct{}{}
	}
	return float64(len(seen)) / float64(len(words))
}
