package voice

import (
	"fmt"
	"strings"
)

var numberWords = map[string]int{
	"ZERO": 0, "ONE": 1, "TWO": 2, "THREE": 3, "FOUR": 4,
	"FIVE": 5, "SIX": 6, "SEVEN": 7, "EIGHT": 8, "NINE": 9,
	"TEN": 10, "ELEVEN": 11, "TWELVE": 12, "THIRTEEN": 13,
	"FOURTEEN": 14, "FIFTEEN": 15, "SIXTEEN": 16, "SEVENTEEN": 17,
	"EIGHTEEN": 18, "NINETEEN": 19,
	"TWENTY": 20, "THIRTY": 30, "FORTY": 40, "FIFTY": 50,
	"SIXTY": 60, "SEVENTY": 70, "EIGHTY": 80, "NINETY": 90,
}

var numberScales = map[string]int{
	"HUNDRED":  100,
	"THOUSAND": 1000,
	"LAKH":     100_000,
}

// WordToNumber converts an English number word to its integer value.
// Hyphenated compounds ("TWENTY-FIVE") and scale words ("HUNDRED") are
// supported; anything unrecognized is an error.
func WordToNumber(word string) (int, error) {
	parts := strings.FieldsFunc(strings.ToUpper(strings.TrimSpace(word)), func(r rune) bool {
		return r == '-' || r == ' '
	})
	if len(parts) == 0 {
		return 0, fmt.Errorf("empty number word")
	}

	total, current := 0, 0
	for _, p := range parts {
		if n, ok := numberWords[p]; ok {
			current += n
			continue
		}
		if scale, ok := numberScales[p]; ok {
			if current == 0 {
				current = 1
			}
			current *= scale
			total += current
			current = 0
			continue
		}
		return 0, fmt.Errorf("unrecognized number word %q", p)
	}
	return total + current, nil
}
