package classifier

// Family is a named group of case-insensitive regular expressions.
type Family struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

// Config holds the heuristics used by the classifier. Families are evaluated in order.
type Config struct {
	SpamFamilies          []Family `yaml:"spam_families"`
	HandlePatterns        []string `yaml:"handle_patterns"`
	ShortAllowList        []string `yaml:"short_allow_list"`
	InappropriateFamilies []Family `yaml:"inappropriate_families"`
	ObfuscatedPatterns    []string `yaml:"obfuscated_patterns"`
	GamingVocabulary      []string `yaml:"gaming_vocabulary"`
	QuestionWords         []string `yaml:"question_words"`

	MinLength       int     `yaml:"min_length"`
	MaxLength       int     `yaml:"max_length"`
	RepeatRun       int     `yaml:"repeat_run"`
	CapsRun         int     `yaml:"caps_run"`
	MinUniqueRatio  float64 `yaml:"min_unique_ratio"`
	RepetitionWords int     `yaml:"repetition_words"`
}

// DefaultConfig returns the bilingual (English/Indonesian) heuristics.
func DefaultConfig() Config {
	return Config{
		SpamFamilies: []Family{
			{Name: "url", Patterns: []string{
				`https?://`,
				`\bwww\.`,
				`\b(bit\.ly|tinyurl|goo\.gl|t\.co|s\.id|cutt\.ly|discord\.gg)\b`,
				`\b[a-z0-9-]+\.(com|net|org|io|ly|xyz|me|co|tv|link|site|online|shop)\b`,
			}},
			{Name: "marketing", Patterns: []string{
				`\bbuy now\b`,
				`\bclick here\b`,
				`\bfree money\b`,
				`\blimited (time )?offer\b`,
				`\bpromo\b`,
				`\bdiscount\b`,
				`\bdiskon\b`,
				`\bsub4sub\b`,
				`\bfollow4follow\b`,
				`\bcheap (followers|viewers|subs)\b`,
				`\bjual (akun|diamond)\b`,
				`\btop ?up murah\b`,
			}},
			{Name: "financial", Patterns: []string{
				`\bcrypto\b`,
				`\bbitcoin\b`,
				`\bforex\b`,
				`\binvest(asi|ment)?\b`,
				`\bpinjol\b`,
				`\bpinjaman\b`,
				`\bdouble your money\b`,
			}},
			{Name: "gambling", Patterns: []string{
				`\bjudi\b`,
				`\bslot ?gacor\b`,
				`\btogel\b`,
				`\bcasino\b`,
				`\btaruhan\b`,
				`\bmaxwin\b`,
				`\bbetting\b`,
				`\bdepo\b`,
			}},
			{Name: "adult", Patterns: []string{
				`\bporn\w*`,
				`\bxxx\b`,
				`\bonlyfans\b`,
				`\bbokep\b`,
				`\bnsfw\b`,
				`\bopen bo\b`,
			}},
			{Name: "external_platform", Patterns: []string{
				`\bjoin my (discord|channel|server)\b`,
				`\bcheck (out )?my (channel|stream|profile)\b`,
				`\bfollow (my|me on) (ig|instagram|tiktok|twitter)\b`,
				`\bmampir ke (channel|live)(ku| aku)?\b`,
				`\bsubscribe (to )?my\b`,
			}},
		},
		HandlePatterns: []string{
			`bot\d*$`,
			`^bot`,
			`spam`,
			`promo`,
			`(^|[_.-])ads?([_.-]|\d|$)`,
			`(free|cheap)_?(followers|viewers|subs)`,
		},
		ShortAllowList: []string{"gg", "wp", "gl", "hf", "ty", "nt", "w"},
		InappropriateFamilies: []Family{
			{Name: "profanity_en", Patterns: []string{
				`\bfuck\w*`,
				`\bshit\w*`,
				`\bbitch\w*`,
				`\basshole\w*`,
				`\bcunt\w*`,
				`\bdick(head)?\b`,
				`\bbastard\w*`,
				`\bretard\w*`,
				`\bnigg\w*`,
				`\bfagg?ot\w*`,
				`\bwhore\b`,
				`\bslut\b`,
			}},
			{Name: "profanity_id", Patterns: []string{
				`\banjing\b`,
				`\bbangsat\b`,
				`\bbabi\b`,
				`\bkontol\b`,
				`\bmemek\b`,
				`\bgoblok\b`,
				`\btolol\b`,
				`\bkampret\b`,
				`\basu\b`,
				`\bjancuk\b`,
				`\bngentot\b`,
				`\bbajingan\b`,
			}},
			{Name: "gaming_toxicity", Patterns: []string{
				`\buninstall\b`,
				`\btrash\b`,
				`\bez win\b`,
				`\bbad game\b`,
				`\bnoob team\b`,
				`\btim sampah\b`,
				`\bkys\b`,
			}},
		},
		ObfuscatedPatterns: []string{
			`\bf[u*@#0v]+c?k+`,
			`\bf+[\W_]+u+[\W_]+c+[\W_]+k+\b`,
			`\bsh[i1!*]+t+\b`,
			`\bb[i1!*]+t?ch`,
			`\ba[s$5]{2}h[o0]le\b`,
			`\bk[o0*]nt[o0*]l\b`,
			`\banj[i1!*]ng\b`,
			`\bg[o0*]bl[o0*]k\b`,
		},
		GamingVocabulary: []string{
			"game", "gaming", "main", "mabar", "build", "hero", "item", "rank", "ranked",
			"push rank", "skill", "combo", "meta", "tier", "patch", "nerf", "buff", "gank",
			"jungle", "lane", "tank", "support", "carry", "emblem", "senjata", "weapon",
			"karakter", "character", "tutorial", "strategi", "strategy", "level", "gacha",
			"boss", "quest", "menang", "kalah", "win", "loadout", "map", "squad", "clutch",
		},
		QuestionWords: []string{
			"what", "how", "why", "when", "where", "who", "which",
			"apa", "apakah", "bagaimana", "gimana", "gmn", "kenapa", "mengapa",
			"knp", "kapan", "dimana", "siapa", "berapa",
		},
		MinLength:       3,
		MaxLength:       500,
		RepeatRun:       5,
		CapsRun:         10,
		MinUniqueRatio:  0.3,
		RepetitionWords: 5,
	}
}
