package extract

import (
	"regexp"
	"strings"
)

// Section identifies one of the seven fields of a horoscope record
type Section int

const (
	SectionMood Section = iota
	SectionPositives
	SectionCautions
	SectionRemedies
	SectionLuckyColor
	SectionDetailedPrediction
	SectionGeneralAdvice
)

func (s Section) String() string {
	switch s {
	case SectionMood:
		return "mood"
	case SectionPositives:
		return "positives"
	case SectionCautions:
		return "cautions"
	case SectionRemedies:
		return "remedies"
	case SectionLuckyColor:
		return "luckyColor"
	case SectionDetailedPrediction:
		return "detailedPrediction"
	case SectionGeneralAdvice:
		return "generalAdvice"
	default:
		return "unknown"
	}
}

// IsList reports whether the section accumulates a sequence of items
func (s Section) IsList() bool {
	return s == SectionPositives || s == SectionCautions
}

// sectionAliases is the header dictionary in match order. luckyColor sits
// ahead of positives because "shubh" is a prefix of "shubh rang" (and
// "शुभ" of "शुभ रंग"); in every other case the order is mood, positives,
// cautions, remedies, detailedPrediction, generalAdvice.
var sectionAliases = []struct {
	section Section
	aliases []string
}{
	{SectionMood, []string{
		"mood", "mano dasha", "manodasha", "मूड", "मनोदशा", "चित्तवृत्ति",
		"mindset", "current mood", "aaj ka mood",
	}},
	{SectionLuckyColor, []string{
		"lucky color", "lucky colour", "lucky hue", "shubh rang", "color", "colour",
		"शुभ रंग", "रंग", "bhagyashali rang", "भाग्यशाली रंग", "anukul rang", "अनुकूल रंग",
		"lucky color/rang", "rang/color", "lucky colour (hin)",
	}},
	{SectionPositives, []string{
		"positives", "positive", "sakaraltmak", "shubh", "सकारात्मक", "सकारात्मक पक्ष",
		"शुभ", "strong points", "strengths", "gun", "positive points",
	}},
	{SectionCautions, []string{
		"cautions", "concerns", "negatives", "savdhani", "savdhaniyan", "chintaye",
		"सावधानियां", "नकारात्मक", "नकारात्मक पक्ष", "चिंताएं", "weaknesses",
		"challenges", "negative points",
	}},
	{SectionRemedies, []string{
		"remedies", "remedy", "vedic remedy", "vedic remedies", "divine remedy",
		"upay", "nivaran", "उपाय", "निवारण", "samadhan", "समाधान", "solution",
		"sujhav", "सुझाव", "vedic upay", "totke", "totka", "upaya", "daan", "pooja",
		"mantra", "remedy/upay", "upay/remedy", "vastu/remedies", "vastu remedies",
		"vastu", "remedy/vastu", "vastu tips", "vastu dosh", "vastu & remedies", "upay aur samadhan",
		"vastu / remedies", "remedies / vastu", "vastu-remedies", "remedies-vastu",
		"vastu  / remedies", "vastu/ remedies", "vastu /remedies",
		"feng shui", "fengshui", "feng-shui",
	}},
	{SectionDetailedPrediction, []string{
		"detailed prediction", "prediction", "rashifal", "bhavishya", "राशिफल",
		"विस्तृत राशिफल", "भविष्य", "forecast", "daily horoscope", "aaj ka rashifal",
	}},
	{SectionGeneralAdvice, []string{
		"general advice", "advice", "salah", "sujhav", "सलाह", "सुझाव", "सामान्य सलाह",
		"margdarshan", "guidance", "cosmic advice", "aaj ki salah",
	}},
}

// bulletClass covers ASCII markers and the bullet glyphs seen in uploads
const bulletClass = `[\*\-\x{2013}\x{2014}#•●▪\x{2022}\x{2023}\x{25E6}\x{2043}\x{2219}\s]`

var (
	leadingBullets = regexp.MustCompile(`^` + bulletClass + `*`)
	wrappingQuotes = regexp.MustCompile(`^["']+|["']+$`)
	leadingColons  = regexp.MustCompile(`^[:\s]+`)
	headerNoise    = regexp.MustCompile(`[:\-\*\s\x{2013}\x{2014}]+`)
	listSeparators = regexp.MustCompile(`[,•|]`)
	itemPrefix     = regexp.MustCompile(`^[-*•\d\.]+\s*`)
)

type headerRule struct {
	section Section
	alias   string
	pattern *regexp.Regexp
}

// headerRules is compiled once; order is the tie-break
var headerRules = compileHeaderRules()

func compileHeaderRules() []headerRule {
	var rules []headerRule
	for _, entry := range sectionAliases {
		for _, alias := range entry.aliases {
			rules = append(rules, headerRule{
				section: entry.section,
				alias:   alias,
				pattern: regexp.MustCompile(`(?i)^` + bulletClass + `*` + regexp.QuoteMeta(alias) + `[\*\s:\-]*`),
			})
		}
	}
	return rules
}

// DetectHeader classifies line as a section header. It returns the section,
// the text remaining after the header, and whether a header was found.
func DetectHeader(line string) (Section, string, bool) {
	lower := strings.ToLower(line)
	if (strings.HasPrefix(lower, "vastu") || strings.HasPrefix(lower, "remedies") || strings.HasPrefix(lower, "upay")) &&
		(strings.Contains(lower, ":") || strings.Contains(lower, "-") || strings.Contains(line, "**")) {
		return SectionRemedies, stripRemedyPrefix(line), true
	}

	for _, rule := range headerRules {
		if loc := rule.pattern.FindStringIndex(line); loc != nil {
			return rule.section, strings.TrimSpace(line[loc[1]:]), true
		}
	}

	return 0, line, false
}

// stripRemedyPrefix removes a compound remedies header such as
// "Vastu/Remedies:" through the first colon, or through the last dash when
// the line has no colon. A line with neither is returned whole.
func stripRemedyPrefix(line string) string {
	if i := strings.Index(line, ":"); i >= 0 {
		return strings.TrimSpace(line[i+1:])
	}
	if i := strings.LastIndex(line, "-"); i >= 0 {
		return strings.TrimSpace(line[i+1:])
	}
	return strings.TrimSpace(line)
}

// isHeaderOnly reports whether a header remainder carries no content
func isHeaderOnly(rest string) bool {
	return headerNoise.ReplaceAllString(rest, "") == ""
}
