package classifier

import (
	"strings"
	"testing"

	"github.com/Soypete/streambuddy/logging"
	"github.com/Soypete/streambuddy/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := New(DefaultConfig(), []string{"mobile legends", "mlbb", "valorant"}, logging.Discard())
	require.NoError(t, err)
	return c
}

func TestClassify_Spam(t *testing.T) {
	c := newTestClassifier(t)
	tests := []struct {
		name   string
		text   string
		handle string
		rule   string
	}{
		{name: "repeated char", text: "halooooo bang", rule: "repeated_char"},
		{name: "repeated punctuation", text: "wkwk!!!!! seru", rule: "repeated_char"},
		{name: "caps run", text: "ini STREAMERTERBAIK banget", rule: "caps_run"},
		{name: "url", text: "cek https://example.com", rule: "url"},
		{name: "shortener", text: "mampir bit.ly/abc", rule: "url"},
		{name: "marketing", text: "BUY NOW CLICK HERE FREE MONEY!!!", rule: "marketing"},
		{name: "financial", text: "ayo invest di crypto sekarang", rule: "financial"},
		{name: "gambling", text: "slot gacor malam ini", rule: "gambling"},
		{name: "adult", text: "ada bokep ga", rule: "adult"},
		{name: "external platform", text: "join my discord guys", rule: "external_platform"},
		{name: "word repetition", text: "main main main main main main main", rule: "word_repetition"},
		{name: "bot handle", text: "halo semuanya", handle: "Nightbot", rule: "sender_handle"},
		{name: "ad handle", text: "halo semuanya", handle: "cheap_followers_4u", rule: "sender_handle"},
		{name: "too short", text: "k", rule: "too_short"},
		{name: "too long", text: strings.Repeat("abcdefghij", 60), rule: "too_long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.text, tt.handle)
			assert.True(t, got.IsSpam)
			assert.Equal(t, types.VerdictSpam, got.Reason)
			assert.Equal(t, tt.rule, got.Rule)
			assert.Equal(t, 0, got.Priority)
		})
	}
}

func TestClassify_RepeatedRunAlwaysSpam(t *testing.T) {
	c := newTestClassifier(t)
	for _, text := range []string{"aaaaa", "build 11111", "?????", "zzzzzzzzzz gg"} {
		assert.True(t, c.Classify(text, "viewer").IsSpam, text)
	}
}

func TestClassify_ShortExclamations(t *testing.T) {
	c := newTestClassifier(t)
	for _, text := range []string{"gg", "GG", "wp", "gl", "hf"} {
		got := c.Classify(text, "viewer")
		assert.False(t, got.IsSpam, text)
		assert.Equal(t, types.VerdictValid, got.Reason)
	}
}

func TestClassify_Inappropriate(t *testing.T) {
	c := newTestClassifier(t)
	tests := []struct {
		name string
		text string
		rule string
	}{
		{name: "english", text: "this is shit", rule: "profanity_en"},
		{name: "indonesian", text: "dasar goblok kamu", rule: "profanity_id"},
		{name: "uninstall", text: "mending uninstall aja", rule: "gaming_toxicity"},
		{name: "trash", text: "team lu trash", rule: "gaming_toxicity"},
		{name: "ez win", text: "ez win lawan kalian", rule: "gaming_toxicity"},
		{name: "bad game", text: "bad game sih ini", rule: "gaming_toxicity"},
		{name: "obfuscated", text: "f*ck this", rule: "obfuscated_profanity"},
		{name: "obfuscated digits", text: "dasar sh1t", rule: "obfuscated_profanity"},
		{name: "obfuscated indonesian", text: "k0nt0l", rule: "obfuscated_profanity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.text, "viewer")
			assert.False(t, got.IsSpam)
			assert.True(t, got.IsInappropriate)
			assert.Equal(t, types.VerdictInappropriate, got.Reason)
			assert.Equal(t, tt.rule, got.Rule)
			assert.Equal(t, 0, got.Priority)
		})
	}
}

func TestClassify_GoodGameIsNotToxic(t *testing.T) {
	c := newTestClassifier(t)
	got := c.Classify("good game semuanya", "viewer")
	assert.False(t, got.IsInappropriate)
	assert.Equal(t, types.VerdictValid, got.Reason)
}

func TestClassify_SpamWinsOverInappropriate(t *testing.T) {
	c := newTestClassifier(t)
	got := c.Classify("shit https://spam.example.com", "viewer")
	assert.True(t, got.IsSpam)
	assert.True(t, got.IsInappropriate)
	assert.Equal(t, types.VerdictSpam, got.Reason)
}

func TestClassify_Priority(t *testing.T) {
	c := newTestClassifier(t)
	tests := []struct {
		name string
		text string
		want int
	}{
		// 1 + 3 gaming + 2 question + 1 length
		{name: "gaming question", text: "@streambuddy build hero apa yang bagus?", want: 7},
		// 1 + 3 gaming + 1 length
		{name: "gaming statement", text: "@streambuddy lagi push rank nih", want: 5},
		// 1 + 2 question + 1 length
		{name: "plain question", text: "@streambuddy kapan jadwal live besok", want: 4},
		// 1 + 2 question
		{name: "short question", text: "sb siapa?", want: 3},
		// 1 + 3 mlbb alias
		{name: "game alias", text: "mlbb dong", want: 4},
		// allow-listed exclamation is not penalised
		{name: "gg", text: "gg", want: 1},
		// length 3 is below 4 and not allow-listed
		{name: "tiny", text: "hmm", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.text, "viewer")
			assert.Equal(t, types.VerdictValid, got.Reason)
			assert.Equal(t, tt.want, got.Priority)
		})
	}
}

func TestClassify_PriorityAlwaysInRange(t *testing.T) {
	c := newTestClassifier(t)
	inputs := []string{
		"", " ", "a", "gg", "???", strings.Repeat("x", 10000), "\xff\xfe invalid utf8",
		"how what why apa kenapa game build hero rank meta tier?",
		"BUY NOW", "anjing", "normal message about nothing in particular",
	}
	for _, in := range inputs {
		got := c.Classify(in, "")
		assert.GreaterOrEqual(t, got.Priority, 0, in)
		assert.LessOrEqual(t, got.Priority, 10, in)
		if got.Rejected() {
			assert.Equal(t, 0, got.Priority, in)
		}
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpamFamilies = append(cfg.SpamFamilies, Family{Name: "broken", Patterns: []string{"("}})
	_, err := New(cfg, nil, logging.Discard())
	assert.Error(t, err)
}

func Test_hasRepeatedRun(t *testing.T) {
	assert.True(t, hasRepeatedRun("aaaaa", 5))
	assert.False(t, hasRepeatedRun("aaaa", 5))
	assert.False(t, hasRepeatedRun("aaaa\nbbbb", 5))
	assert.True(t, hasRepeatedRun("ééééé", 5))
	assert.False(t, hasRepeatedRun("aaaaa", 0))
}

func Test_uniqueRatio(t *testing.T) {
	assert.Equal(t, 1.0, uniqueRatio(nil))
	assert.Equal(t, 0.5, uniqueRatio([]string{"a", "b", "a", "b"}))
}
