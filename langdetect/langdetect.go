// Package langdetect guesses the language of transcribed text.
package langdetect

import (
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"
	_ "github.com/pemistahl/lingua-go/language-models/de"
	_ "github.com/pemistahl/lingua-go/language-models/en"
	"golang.org/x/text/language"
)

// bundled lists the languages whose models are linked in by the imports above.
var bundled = map[string]bool{"en": true, "de": true}

// Detector identifies which of a fixed set of languages a text is in.
type Detector struct {
	detector lingua.LanguageDetector
	codes    map[lingua.Language]string
}

// New creates a detector restricted to the given BCP 47 tags, e.g. "en",
// "de-AT". Regional subtags are ignored. At least two languages are needed,
// and each must have a bundled model.
func New(tags ...string) (*Detector, error) {
	byCode := make(map[string]lingua.Language)
	for _, l := range lingua.AllLanguages() {
		byCode[strings.ToLower(l.IsoCode639_1().String())] = l
	}

	codes := make(map[lingua.Language]string)
	langs := make([]lingua.Language, 0, len(tags))
	for _, tag := range tags {
		code, err := Base(tag)
		if err != nil {
			return nil, err
		}
		l, ok := byCode[code]
		if !ok || !bundled[code] {
			return nil, fmt.Errorf("langdetect: unsupported language %q", tag)
		}
		if _, dup := codes[l]; dup {
			continue
		}
		codes[l] = code
		langs = append(langs, l)
	}
	if len(langs) < 2 {
		return nil, fmt.Errorf("langdetect: need at least two languages, got %d", len(langs))
	}

	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(langs...).
			Build(),
		codes: codes,
	}, nil
}

// Detect returns the ISO 639-1 code of text's language. ok is false when the
// text is too short or ambiguous to decide.
func (d *Detector) Detect(text string) (code string, ok bool) {
	l, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return d.codes[l], true
}

// Supports reports whether code is one of the detector's languages.
func (d *Detector) Supports(code string) bool {
	for _, c := range d.codes {
		if c == code {
			return true
		}
	}
	return false
}

// Base returns the lower-case ISO 639 base language of a BCP 47 tag.
func Base(tag string) (string, error) {
	t, err := language.Parse(tag)
	if err != nil {
		return "", fmt.Errorf("langdetect: parse %q: %w", tag, err)
	}
	b, _ := t.Base()
	return b.String(), nil
}
