package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/celestial/internal/model"
)

type signAlias struct {
	alias string
	sign  model.Sign
}

// signAliases is checked in order for substring containment
var signAliases = []signAlias{
	{"aries", model.Aries}, {"taurus", model.Taurus}, {"gemini", model.Gemini},
	{"cancer", model.Cancer}, {"leo", model.Leo}, {"virgo", model.Virgo},
	{"libra", model.Libra}, {"scorpio", model.Scorpio}, {"sagittarius", model.Sagittarius},
	{"capricorn", model.Capricorn}, {"aquarius", model.Aquarius}, {"pisces", model.Pisces},

	{"mesh", model.Aries}, {"vrishabh", model.Taurus}, {"mithun", model.Gemini},
	{"kark", model.Cancer}, {"simha", model.Leo}, {"kanya", model.Virgo},
	{"tula", model.Libra}, {"vrishchik", model.Scorpio}, {"dhanu", model.Sagittarius},
	{"makar", model.Capricorn}, {"kumbh", model.Aquarius}, {"meen", model.Pisces},

	{"मेष", model.Aries}, {"वृषभ", model.Taurus}, {"मिथुन", model.Gemini},
	{"कर्क", model.Cancer}, {"सिंह", model.Leo}, {"कन्या", model.Virgo},
	{"तुला", model.Libra}, {"वृश्चिक", model.Scorpio}, {"धनु", model.Sagittarius},
	{"मकर", model.Capricorn}, {"कुंभ", model.Aquarius}, {"मीन", model.Pisces},
}

var signIndex = func() map[string]model.Sign {
	m := make(map[string]model.Sign, len(signAliases))
	for _, a := range signAliases {
		m[a.alias] = a.sign
	}
	return m
}()

var (
	rashiWord  = regexp.MustCompile(`(?i)rashi|राशि`)
	colorCode  = regexp.MustCompile(`(?i)cb\d+`)
	tokenNoise = regexp.MustCompile(`[()\[\]0-9#\-\*\.\\]`)
)

// ResolveSign maps a noisy header token to a sign identity. Tokens that
// match no alias but still have more than two characters are accepted
// title-cased; shorter leftovers are rejected.
func ResolveSign(token string) (model.Sign, bool) {
	clean := rashiWord.ReplaceAllString(token, "")
	clean = colorCode.ReplaceAllString(clean, "")
	clean = tokenNoise.ReplaceAllString(clean, "")
	clean = strings.ToLower(strings.TrimSpace(clean))

	if sign, ok := signIndex[clean]; ok {
		return sign, true
	}

	// Substring containment can misfire on words that merely contain an
	// alias ("leopard" -> Leo); kept because real uploads rely on it.
	for _, a := range signAliases {
		if strings.Contains(clean, a.alias) {
			return a.sign, true
		}
	}

	if utf8.RuneCountInString(clean) > 2 {
		return model.Sign(titleCase(clean)), true
	}

	return "", false
}

func titleCase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
