package model

import "sort"

// Sign is a zodiac identity. Canonical values are the twelve English names;
// the ingestion parser may also produce best-effort identities for tokens it
// could not map.
type Sign string

const (
	Aries       Sign = "Aries"
	Taurus      Sign = "Taurus"
	Gemini      Sign = "Gemini"
	Cancer      Sign = "Cancer"
	Leo         Sign = "Leo"
	Virgo       Sign = "Virgo"
	Libra       Sign = "Libra"
	Scorpio     Sign = "Scorpio"
	Sagittarius Sign = "Sagittarius"
	Capricorn   Sign = "Capricorn"
	Aquarius    Sign = "Aquarius"
	Pisces      Sign = "Pisces"
)

// Zodiac lists the canonical signs in traditional order
var Zodiac = []Sign{
	Aries, Taurus, Gemini, Cancer, Leo, Virgo,
	Libra, Scorpio, Sagittarius, Capricorn, Aquarius, Pisces,
}

// IsCanonical reports whether s is one of the twelve zodiac names
func (s Sign) IsCanonical() bool {
	return s.Index() >= 0
}

// Index returns the zodiac position of s, or -1
func (s Sign) Index() int {
	for i, z := range Zodiac {
		if z == s {
			return i
		}
	}
	return -1
}

func sortSigns(signs []Sign) {
	sort.Slice(signs, func(i, j int) bool { return signs[i] < signs[j] })
}
