package classifier

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Classifier flags free text that likely attempts off-platform contact.
// Pure and deterministic: same input always yields the same verdict.
type Classifier struct {
	keywords     []string
	maxDigits    int
	numberWords  *regexp.Regexp
	digitRun     *regexp.Regexp
	latinLetters *regexp.Regexp
	urlLike      *regexp.Regexp
	symbols      []string
	keycapGlyphs []string
}

type Config struct {
	Keywords  []string
	MaxDigits int
	DigitRun  int
}

// Spelled-out Russian number words with inflections. RE2 word boundaries are
// ASCII-only, so the Cyrillic boundary is expressed explicitly.
const numberWordsPattern = `(?i)(^|[^а-яё])(нол[ьяюеи]|один|одног[оа]|одним?|дв[ауе]|двух|двумя?|тр[иеяю]|трех|тремя?|` +
	`четыр[еиьяю]|пят[иьяю]|шест[иьяю]|сем[иьяю]|восьм[иьяю]|девят[иьяю]|` +
	`десят[иьяю]|сорок|сто|двести|триста|четыреста|пятьсот|` +
	`тысяч[иауе]?|миллион[ауе]?)([^а-яё]|$)`

func New(cfg Config) *Classifier {
	keywords := cfg.Keywords
	if len(keywords) == 0 {
		keywords = DefaultKeywords()
	}
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}

	maxDigits := cfg.MaxDigits
	if maxDigits <= 0 {
		maxDigits = 5
	}
	digitRun := cfg.DigitRun
	if digitRun <= 0 {
		digitRun = 4
	}

	return &Classifier{
		keywords:     lowered,
		maxDigits:    maxDigits,
		numberWords:  regexp.MustCompile(numberWordsPattern),
		digitRun:     regexp.MustCompile(fmt.Sprintf(`\d{%d,}`, digitRun)),
		latinLetters: regexp.MustCompile(`[a-zA-Z]`),
		urlLike:      regexp.MustCompile(`(?i)https?://|www\.`),
		symbols:      []string{"@", "*", "_", "#", "$"},
		keycapGlyphs: []string{
			"0️⃣", "1️⃣", "2️⃣", "3️⃣", "4️⃣",
			"5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣",
			"\U0001F51F",
		},
	}
}

// Suspicious reports whether any of the heuristics fires.
func (c *Classifier) Suspicious(text string) bool {
	if c.numberWords.MatchString(text) {
		return true
	}

	digitCount := 0
	for _, r := range text {
		if unicode.IsDigit(r) {
			digitCount++
		}
	}
	if digitCount > c.maxDigits {
		return true
	}

	if c.digitRun.MatchString(text) {
		return true
	}

	if c.latinLetters.MatchString(text) {
		return true
	}

	for _, sym := range c.symbols {
		if strings.Contains(text, sym) {
			return true
		}
	}

	if c.urlLike.MatchString(text) {
		return true
	}

	lowered := strings.ToLower(text)
	for _, kw := range c.keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}

	for _, glyph := range c.keycapGlyphs {
		if strings.Contains(text, glyph) {
			return true
		}
	}

	return false
}

type keywordsFile struct {
	Keywords []string `yaml:"keywords"`
}

// LoadKeywords reads the keyword list from a YAML file. A missing path means
// "use the compiled-in defaults" and is not an error.
func LoadKeywords(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keywords file: %w", err)
	}

	var file keywordsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal keywords yaml: %w", err)
	}

	return file.Keywords, nil
}
