package itinerary

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// interrogativeRe marks messages phrased as a question even without a "?".
var interrogativeRe = regexp.MustCompile(`(?i)\b(quieres|deseas|te\s+gustar[ií]a|would\s+you\s+like)\b`)

// saveOfferPatterns are the accepted save-offer phrasings, Spanish and
// English. The question gate above is what keeps statements like
// "Ya he guardado tu itinerario." from matching.
var saveOfferPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)guardar\s*(este\s+)?itinerario`),
	regexp.MustCompile(`(?i)guardar\s*(este\s+)?viaje`),
	regexp.MustCompile(`(?i)quieres\s+que\s+(lo\s+)?guarde`),
	regexp.MustCompile(`(?i)deseas\s+guardar`),
	regexp.MustCompile(`(?i)te\s+gustar[ií]a\s+guardar`),
	regexp.MustCompile(`(?i)te\s+gustar[ií]a\s+que\s+(lo\s+)?guarde`),
	regexp.MustCompile(`(?i)save\s*(this\s+)?itinerary`),
	regexp.MustCompile(`(?i)would\s+you\s+like.*save`),
	regexp.MustCompile(`(?i)guardar.*["']?Mis\s+Viajes["']?`),
	regexp.MustCompile(`(?i)save.*["']?My\s+Trips["']?`),
}

// confirmationPatterns match the whole trimmed, lowercased user message.
// Only the "sí," variant admits trailing text.
var confirmationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^s[ií]$`),
	regexp.MustCompile(`^s[ií],?\s`),
	regexp.MustCompile(`^guardar?$`),
	regexp.MustCompile(`^gu[aá]rdalo$`),
	regexp.MustCompile(`^claro$`),
	regexp.MustCompile(`^por supuesto$`),
	regexp.MustCompile(`^dale$`),
	regexp.MustCompile(`^ok$`),
	regexp.MustCompile(`^vale$`),
	regexp.MustCompile(`^yes$`),
	regexp.MustCompile(`^save$`),
}

// IsSaveOffer reports whether an assistant message is asking to persist the
// current itinerary. The message must read as a question and use one of the
// known save-offer phrasings.
func IsSaveOffer(message string) bool {
	if !strings.Contains(message, "?") && !interrogativeRe.MatchString(message) {
		return false
	}
	return lo.SomeBy(saveOfferPatterns, func(re *regexp.Regexp) bool {
		return re.MatchString(message)
	})
}

// IsSaveConfirmation reports whether a user message affirmatively answers a
// save offer. The comparison is full-string over the trimmed, case-folded
// message, never a substring search.
func IsSaveConfirmation(message string) bool {
	normalized := strings.ToLower(strings.TrimSpace(message))
	return lo.SomeBy(confirmationPatterns, func(re *regexp.Regexp) bool {
		return re.MatchString(normalized)
	})
}
