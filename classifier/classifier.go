// Package classifier scores chat messages as spam, inappropriate or gaming related
// and assigns a 0-10 priority. Classification is pure and never fails.
package classifier

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Soypete/streambuddy/logging"
	"github.com/Soypete/streambuddy/types"
)

const (
	minPriority = 0
	maxPriority = 10
)

// Classifier evaluates the spam table, then the inappropriate table, then relevance.
type Classifier struct {
	spam          []rule
	inappropriate []rule
	allow         map[string]struct{}
	vocabulary    []string
	question      *regexp.Regexp
	cfg           Config
	logger        *logging.Logger
}

// New compiles cfg into rule tables. gameTerms are game names and aliases that
// also count as gaming vocabulary.
func New(cfg Config, gameTerms []string, logger *logging.Logger) (*Classifier, error) {
	if logger == nil {
		logger = logging.Default()
	}

	c := &Classifier{
		allow:  make(map[string]struct{}, len(cfg.ShortAllowList)),
		cfg:    cfg,
		logger: logger,
	}
	for _, w := range cfg.ShortAllowList {
		c.allow[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	for _, term := range append(append([]string{}, cfg.GamingVocabulary...), gameTerms...) {
		if term = strings.ToLower(strings.TrimSpace(term)); term != "" {
			c.vocabulary = append(c.vocabulary, term)
		}
	}

	if len(cfg.QuestionWords) > 0 {
		quoted := make([]string, len(cfg.QuestionWords))
		for i, w := range cfg.QuestionWords {
			quoted[i] = regexp.QuoteMeta(strings.ToLower(w))
		}
		c.question = regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
	}

	if err := c.buildSpamRules(); err != nil {
		return nil, fmt.Errorf("spam rules: %w", err)
	}
	if err := c.buildInappropriateRules(); err != nil {
		return nil, fmt.Errorf("inappropriate rules: %w", err)
	}
	return c, nil
}

func (c *Classifier) buildSpamRules() error {
	cfg := c.cfg
	c.spam = []rule{
		{name: "repeated_char", match: func(in input) bool { return hasRepeatedRun(in.text, cfg.RepeatRun) }},
		{name: "caps_run", match: func(in input) bool { return hasCapsRun(in.text, cfg.CapsRun) }},
	}

	families, err := familyRules(cfg.SpamFamilies, textField)
	if err != nil {
		return err
	}
	c.spam = append(c.spam, families...)

	handles, err := compileAny(cfg.HandlePatterns)
	if err != nil {
		return fmt.Errorf("handle patterns: %w", err)
	}

	c.spam = append(c.spam,
		rule{name: "word_repetition", match: func(in input) bool {
			return len(in.words) > cfg.RepetitionWords && uniqueRatio(in.words) < cfg.MinUniqueRatio
		}},
		regexRule("sender_handle", handles, handleField),
		rule{name: "too_short", match: func(in input) bool {
			return in.length < cfg.MinLength && !c.allowListed(in)
		}},
		rule{name: "too_long", match: func(in input) bool {
			return cfg.MaxLength > 0 && in.length > cfg.MaxLength
		}},
	)
	return nil
}

func (c *Classifier) buildInappropriateRules() error {
	families, err := familyRules(c.cfg.InappropriateFamilies, textField)
	if err != nil {
		return err
	}
	obfuscated, err := compileAny(c.cfg.ObfuscatedPatterns)
	if err != nil {
		return fmt.Errorf("obfuscated patterns: %w", err)
	}
	c.inappropriate = append(families, regexRule("obfuscated_profanity", obfuscated, textField))
	return nil
}

func (c *Classifier) allowListed(in input) bool {
	_, ok := c.allow[in.lower]
	return ok
}

// IsSpam reports whether any spam rule fires, and which one.
func (c *Classifier) IsSpam(text, senderHandle string) (string, bool) {
	return firstMatch(c.spam, newInput(text, senderHandle))
}

// IsInappropriate reports whether any profanity or toxicity rule fires, and which one.
func (c *Classifier) IsInappropriate(text string) (string, bool) {
	return firstMatch(c.inappropriate, newInput(text, ""))
}

// IsGamingRelated reports whether text contains gaming vocabulary or a game name.
func (c *Classifier) IsGamingRelated(text string) bool {
	return c.gamingRelated(newInput(text, ""))
}

func (c *Classifier) gamingRelated(in input) bool {
	for _, term := range c.vocabulary {
		if strings.Contains(in.lower, term) {
			return true
		}
	}
	return false
}

func (c *Classifier) isQuestion(in input) bool {
	if strings.Contains(in.text, "?") {
		return true
	}
	return c.question != nil && c.question.MatchString(in.text)
}

// Classify runs every heuristic over text. Spam takes precedence over inappropriate.
func (c *Classifier) Classify(text, senderHandle string) types.ClassificationResult {
	in := newInput(text, senderHandle)

	spamRule, spam := firstMatch(c.spam, in)
	badRule, inappropriate := firstMatch(c.inappropriate, in)

	result := types.ClassificationResult{
		IsSpam:          spam,
		IsInappropriate: inappropriate,
		IsGamingRelated: c.gamingRelated(in),
	}

	switch {
	case spam:
		result.Reason = types.VerdictSpam
		result.Rule = spamRule
		result.Priority = 0
	case inappropriate:
		result.Reason = types.VerdictInappropriate
		result.Rule = badRule
		result.Priority = 0
	default:
		result.Reason = types.VerdictValid
		result.Priority = c.priority(in, result)
	}

	if result.Rejected() {
		c.logger.Debug("message rejected by classifier", "reason", string(result.Reason), "rule", result.Rule)
	}
	return result
}

func (c *Classifier) priority(in input, result types.ClassificationResult) int {
	p := 1
	if result.IsGamingRelated {
		p += 3
	}
	if result.IsSpam {
		p -= 5
	}
	if result.IsInappropriate {
		p -= 8
	}
	if c.isQuestion(in) {
		p += 2
	}
	if in.length >= 20 && in.length <= 200 {
		p++
	}
	if in.length < 4 && !c.allowListed(in) {
		p--
	}
	return clamp(p, minPriority, maxPriority)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
