package voice

import (
	"testing"
)

func testConfig() ParserConfig {
	return ParserConfig{
		ActivationWords: []string{"MILO"},
		SymbolVariations: map[string][]string{
			"TCS-EQ":      {"TCS"},
			"INFY-EQ":     {"INFI", "INFY", "INFE"},
			"RELIANCE-EQ": {"RELIANCE", "RELIANC", "RILLIANS"},
		},
	}
}

func TestParseCommand_Basic(t *testing.T) {
	intent, err := ParseCommand("MILO BUY 5 SHARES OF TCS", testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.Side != "BUY" {
		t.Errorf("expected BUY, got %s", intent.Side)
	}
	if intent.Quantity != 5 {
		t.Errorf("expected quantity 5, got %d", intent.Quantity)
	}
	if intent.Symbol != "TCS-EQ" {
		t.Errorf("expected symbol TCS-EQ, got %s", intent.Symbol)
	}
}

func TestParseCommand_SynonymNormalization(t *testing.T) {
	cases := []struct {
		transcript string
		wantSide   string
	}{
		{"milo bye 5 shares of tcs", "BUY"},
		{"MILO CELL 5 TCS", "SELL"},
		{"MILO SALE 5 SHARES OF INFY", "SELL"},
	}

	for _, tc := range cases {
		intent, err := ParseCommand(tc.transcript, testConfig())
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tc.transcript, err)
			continue
		}
		if intent.Side != tc.wantSide {
			t.Errorf("%q: expected side %s, got %s", tc.transcript, tc.wantSide, intent.Side)
		}
	}
}

func TestParseCommand_WordQuantity(t *testing.T) {
	intent, err := ParseCommand("MILO BUY FIVE SHARES OF TCS", testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.Quantity != 5 {
		t.Errorf("expected quantity 5, got %d", intent.Quantity)
	}
}

func TestParseCommand_FirstActivationWordWins(t *testing.T) {
	cfg := testConfig()
	cfg.ActivationWords = []string{"MILO", "JARVIS"}

	// Both activation words appear; only the text after the first match
	// is honored.
	intent, err := ParseCommand("MILO BUY 2 TCS JARVIS SELL 9 INFY", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.Side != "BUY" || intent.Quantity != 2 {
		t.Errorf("expected first command honored, got %+v", intent)
	}
}

func TestParseCommand_ActivationWordIsWholeWord(t *testing.T) {
	// "MILOS" must not activate the "MILO" command word.
	if _, err := ParseCommand("MILOS BUY 5 TCS", testConfig()); err == nil {
		t.Fatal("expected parse failure for partial activation word")
	}
}

func TestParseCommand_Failures(t *testing.T) {
	cases := []string{
		"BUY 5 SHARES OF TCS",          // no activation word
		"MILO PURCHASE 5 TCS",          // verb outside grammar
		"MILO BUY BANANA SHARES OF TCS", // unparseable quantity
		"MILO BUY 5 SHARES OF ZOMATO",  // unknown symbol
		"MILO BUY",                     // incomplete command
	}

	for _, transcript := range cases {
		if _, err := ParseCommand(transcript, testConfig()); err == nil {
			t.Errorf("%q: expected parse failure", transcript)
		}
	}
}

func TestParseCommand_SymbolPrecedence(t *testing.T) {
	cfg := ParserConfig{
		ActivationWords: []string{"MILO"},
		SymbolVariations: map[string][]string{
			"TCS":    {"TECS"},
			"TCS-EQ": {"TCS"},
		},
	}

	// Exact canonical key beats an exact variant of another symbol.
	intent, err := ParseCommand("MILO BUY 1 TCS", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.Symbol != "TCS" {
		t.Errorf("expected exact key match TCS, got %s", intent.Symbol)
	}

	// Exact variant match beats substring containment.
	intent, err = ParseCommand("MILO BUY 1 TECS", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.Symbol != "TCS" {
		t.Errorf("expected variant match TCS, got %s", intent.Symbol)
	}
}

func TestParseCommand_SubstringContainment(t *testing.T) {
	intent, err := ParseCommand("MILO BUY 3 SHARES OF RELIANC LIMITED", testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.Symbol != "RELIANCE-EQ" {
		t.Errorf("expected RELIANCE-EQ from substring match, got %s", intent.Symbol)
	}
}

func TestParseCommand_Idempotent(t *testing.T) {
	const transcript = "MILO CELL TWELVE SHARES OF INFI"
	first, err := ParseCommand(transcript, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 50; i++ {
		again, err := ParseCommand(transcript, testConfig())
		if err != nil {
			t.Fatalf("run %d: unexpected error: %v", i, err)
		}
		if *again != *first {
			t.Fatalf("run %d: result changed: %+v vs %+v", i, again, first)
		}
	}
}

func TestWordToNumber(t *testing.T) {
	cases := []struct {
		word string
		want int
		ok   bool
	}{
		{"five", 5, true},
		{"FIVE", 5, true},
		{"twelve", 12, true},
		{"twenty", 20, true},
		{"twenty-five", 25, true},
		{"hundred", 100, true},
		{"two hundred", 200, true},
		{"banana", 0, false},
		{"", 0, false},
	}

	for _, tc := range cases {
		got, err := WordToNumber(tc.word)
		if tc.ok {
			if err != nil {
				t.Errorf("%q: unexpected error: %v", tc.word, err)
			} else if got != tc.want {
				t.Errorf("%q: expected %d, got %d", tc.word, tc.want, got)
			}
		} else if err == nil {
			t.Errorf("%q: expected error", tc.word)
		}
	}
}
