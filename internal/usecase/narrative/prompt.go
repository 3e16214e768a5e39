package narrative

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Theme is the visual category of a narrative.
type Theme string

const (
	ThemePolitical  Theme = "political"
	ThemeScientific Theme = "scientific"
	ThemeTech       Theme = "tech"
	ThemeSpace      Theme = "space"
	ThemeGeneric    Theme = "generic"
)

const (
	snippetRunes = 200
	shortWords   = 20
)

// themeKeywords is checked in order; the first keyword found wins.
var themeKeywords = []struct {
	theme    Theme
	keywords []string
}{
	{ThemePolitical, []string{"government", "election", "mayor", "law", "congress", "senate", "campaign", "justice", "president"}},
	{ThemeScientific, []string{"lab", "experiment", "research", "scientist", "virus", "5g", "climate", "dna", "biology", "physics"}},
	{ThemeTech, []string{"data", "server", "ai", "algorithm", "cctv", "surveillance", "hack", "blockchain", "software", "chip"}},
	{ThemeSpace, []string{"ufo", "nasa", "satellite", "space", "alien", "cosmos", "orbit", "astronaut", "extraterrestrial"}},
}

var visualPrompts = map[Theme]string{
	ThemePolitical:  "Leaked confidential government file, hidden seals, courtroom sketch style, %s, no text",
	ThemeScientific: "Fake laboratory photo, mysterious device, forged research diagram, %s, no text",
	ThemeTech:       "Blurry CCTV screenshot, hacked data servers, digital breach aesthetics, %s, no text",
	ThemeSpace:      "Classified satellite image, unidentified object, space agency confidential photo, %s, no text",
	ThemeGeneric:    "Mysterious photographic evidence linked to conspiracy, dark atmosphere, %s, no text",
}

const headlineTemplate = "You are a world-renowned investigative journalist known for uncovering shocking truths." +
	" After reading the context below, craft an attention-grabbing headline followed by a juicy, persuasive summary." +
	" The headline should be sensational but believable, using words like 'Revealed', 'Shocking', 'Exposed', or 'Undeniable Proof'." +
	" The summary should be 3-4 sentences, dramatic, confident, and designed to captivate readers." +
	" Use powerful language, imply urgency, and avoid any qualifiers like 'might' or 'allegedly'." +
	"\n\nContext:\n%s\n\nHeadline and Summary:"

// DetectTheme matches keywords as substrings of the clicked concepts and
// summary, lowercased.
func DetectTheme(clicked []string, summary string) Theme {
	blob := strings.ToLower(strings.Join(clicked, " ")) + " " + strings.ToLower(summary)
	for _, t := range themeKeywords {
		for _, kw := range t.keywords {
			if strings.Contains(blob, kw) {
				return t.theme
			}
		}
	}
	return ThemeGeneric
}

// ShortSummary keeps the first 20 words, adding "..." when it cut any.
func ShortSummary(summary string) string {
	words := strings.Fields(summary)
	if len(words) <= shortWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:shortWords], " ") + "..."
}

// VisualPrompt returns the image prompt for theme. Unknown themes fall back
// to the generic prompt.
func VisualPrompt(theme Theme, summaryShort string) string {
	tmpl, ok := visualPrompts[theme]
	if !ok {
		tmpl = visualPrompts[ThemeGeneric]
	}
	return fmt.Sprintf(tmpl, summaryShort)
}

// HeadlinePrompt wraps context in the headline-and-summary instruction.
func HeadlinePrompt(context string) string {
	return fmt.Sprintf(headlineTemplate, context)
}

func snippet(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	if utf8.RuneCountInString(text) <= snippetRunes {
		return text
	}
	r := []rune(text)
	return string(r[:snippetRunes])
}
