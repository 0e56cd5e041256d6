// Package voice turns free-form voice commands into orders: transcription
// via the Groq audio API, a small command grammar with fuzzy symbol
// resolution, and a process-wide sliding-window rate limit on the
// transcription calls.
package voice

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"tradeterm/internal/model"
)

// DefaultSynonyms absorbs common speech-to-text mis-transcriptions of
// "buy" and "sell". Deployments can extend this table via settings.
var DefaultSynonyms = map[string]string{
	"BHAI": "BUY", "BI": "BUY", "BY": "BUY", "BYE": "BUY", "BUY": "BUY",
	"CELL": "SELL", "CEL": "SELL", "SELF": "SELL", "SALE": "SELL",
	"SEL": "SELL", "SELL": "SELL",
}

// commandPattern matches the body after the activation word:
// (BUY|SELL) <number-or-word> [SHARES OF] <symbol text>.
var commandPattern = regexp.MustCompile(`^(BUY|SELL)\s+(\d+|\w+)\s+(?:SHARES\s+OF\s+)?(.+)$`)

// ParserConfig carries the per-deployment command vocabulary. All of it is
// loaded configuration, not code.
type ParserConfig struct {
	// ActivationWords are tried in order; the first whole-word match in
	// the transcript wins, and anything after it is the command body.
	ActivationWords []string

	// Synonyms maps spoken tokens to BUY/SELL. Nil means DefaultSynonyms.
	Synonyms map[string]string

	// SymbolVariations maps a canonical trading symbol to its known
	// phonetic/typo variants.
	SymbolVariations map[string][]string
}

// ParseCommand extracts an order intent from a transcript. Pure function:
// the same transcript and config always produce the same intent or the
// same failure.
func ParseCommand(transcript string, cfg ParserConfig) (*model.OrderIntent, error) {
	normalized := normalizeActionWords(strings.ToUpper(transcript), cfg.Synonyms)

	body, ok := commandBody(normalized, cfg.ActivationWords)
	if !ok {
		return nil, fmt.Errorf("no activation word found in transcript")
	}

	m := commandPattern.FindStringSubmatch(body)
	if m == nil {
		return nil, fmt.Errorf("command does not match (BUY|SELL) <quantity> <symbol>")
	}

	side, quantityWord, spokenSymbol := m[1], m[2], strings.TrimSpace(m[3])

	quantity, err := strconv.Atoi(quantityWord)
	if err != nil {
		quantity, err = WordToNumber(quantityWord)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity %q", quantityWord)
		}
	}

	symbol, ok := resolveSpokenSymbol(spokenSymbol, cfg.SymbolVariations)
	if !ok {
		return nil, fmt.Errorf("trading symbol %q not recognized", spokenSymbol)
	}

	return &model.OrderIntent{Side: side, Quantity: quantity, Symbol: symbol}, nil
}

// normalizeActionWords replaces each whitespace-delimited token found in
// the synonym table with its canonical form.
func normalizeActionWords(text string, synonyms map[string]string) string {
	if synonyms == nil {
		synonyms = DefaultSynonyms
	}
	words := strings.Fields(text)
	for i, w := range words {
		if canonical, ok := synonyms[w]; ok {
			words[i] = canonical
		}
	}
	return strings.Join(words, " ")
}

// commandBody finds the first activation word (whole-word match) and
// returns everything after it. First match wins: a transcript containing
// two activation words only honors the earlier-configured one.
func commandBody(transcript string, activationWords []string) (string, bool) {
	for _, word := range activationWords {
		w := strings.ToUpper(strings.TrimSpace(word))
		if w == "" {
			continue
		}
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
		if loc := re.FindStringIndex(transcript); loc != nil {
			return strings.TrimSpace(transcript[loc[1]:]), true
		}
	}
	return "", false
}

// resolveSpokenSymbol maps spoken symbol text to a canonical symbol.
// Precedence: exact canonical key, then exact variant, then substring
// containment in either direction. Canonical symbols are scanned in sorted
// order so ambiguous matches resolve deterministically.
func resolveSpokenSymbol(spoken string, variations map[string][]string) (string, bool) {
	spoken = strings.ToUpper(strings.TrimSpace(spoken))
	if spoken == "" {
		return "", false
	}

	if _, ok := variations[spoken]; ok {
		return spoken, true
	}

	canonicals := make([]string, 0, len(variations))
	for c := range variations {
		canonicals = append(canonicals, c)
	}
	sort.Strings(canonicals)

	for _, canonical := range canonicals {
		for _, v := range variations[canonical] {
			if strings.ToUpper(v) == spoken {
				return canonical, true
			}
		}
	}

	for _, canonical := range canonicals {
		for _, v := range variations[canonical] {
			vu := strings.ToUpper(v)
			if strings.Contains(spoken, vu) || strings.Contains(vu, spoken) {
				return canonical, true
			}
		}
	}

	return "", false
}
