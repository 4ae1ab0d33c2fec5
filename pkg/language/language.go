// Package language defines the fixed set of languages capread reads, translates and speaks.
package language

import (
	"fmt"
	"strings"

	textlang "golang.org/x/text/language"
)

// Language is one of the supported source or target languages.
// The zero value is not a valid language.
type Language int

const (
	Japanese Language = iota + 1
	English
	Finnish
	Swedish
)

// Translations maps each target language to its translated text
type Translations map[Language]string

// All lists every supported language
var All = []Language{Japanese, English, Finnish, Swedish}

// TranslationTargets are the languages a capture is translated into
var TranslationTargets = []Language{English, Finnish, Swedish}

var codes = map[Language]string{
	Japanese: "ja",
	English:  "en",
	Finnish:  "fi",
	Swedish:  "sv",
}

var tags = map[Language]textlang.Tag{
	Japanese: textlang.MustParse("ja-JP"),
	English:  textlang.MustParse("en-US"),
	Finnish:  textlang.MustParse("fi-FI"),
	Swedish:  textlang.MustParse("sv-SE"),
}

// Code returns the two-letter code used in translation requests
func (l Language) Code() string {
	return codes[l]
}

// Tag returns the regional BCP 47 tag used for speech synthesis
func (l Language) Tag() textlang.Tag {
	if t, ok := tags[l]; ok {
		return t
	}
	return textlang.Und
}

func (l Language) String() string {
	switch l {
	case Japanese:
		return "Japanese"
	case English:
		return "English"
	case Finnish:
		return "Finnish"
	case Swedish:
		return "Swedish"
	}
	return fmt.Sprintf("Language(%d)", int(l))
}

// Valid reports whether l is one of the supported languages
func (l Language) Valid() bool {
	_, ok := codes[l]
	return ok
}

// Parse resolves a language code or BCP 47 tag ("fi", "sv-SE", "EN") to a Language
func Parse(s string) (Language, error) {
	tag, err := textlang.Parse(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("unknown language %q: %w", s, err)
	}
	base, _ := tag.Base()
	for l, code := range codes {
		if base.String() == code {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unsupported language %q", s)
}

// ParseList parses a comma separated list of language codes
func ParseList(s string) ([]Language, error) {
	var out []Language
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		l, err := Parse(part)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}
