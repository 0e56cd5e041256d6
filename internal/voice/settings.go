package voice

import (
	"encoding/json"
	"fmt"
	"os"
)

// Settings is the per-deployment voice trading configuration: command
// vocabulary, symbol variations, and the defaults applied to parsed
// intents. Loaded from JSON so it can be tuned without code changes.
type Settings struct {
	ActivationWords  []string            `json:"activation_words"`
	Synonyms         map[string]string   `json:"synonyms,omitempty"`
	SymbolVariations map[string][]string `json:"symbol_variations"`
	Exchange         string              `json:"exchange"`     // default segment for voice orders
	ProductType      string              `json:"product_type"` // CNC, NRML or MIS
	Model            string              `json:"model"`        // transcription model name
	GroqAPIKey       string              `json:"groq_api_key"`
}

// DefaultSettings mirrors the defaults a fresh deployment starts with.
func DefaultSettings() *Settings {
	return &Settings{
		ActivationWords: []string{"MILO"},
		Exchange:        "NSE",
		ProductType:     "MIS",
		Model:           "whisper-large-v3",
		SymbolVariations: map[string][]string{
			"INFY":     {"INFI", "INFY", "INFE"},
			"TCS":      {"TCS", "T C S"},
			"RELIANCE": {"RELIANCE", "RELIANC", "RILLIANS"},
		},
	}
}

// LoadSettings reads settings from a JSON file, filling gaps from the
// defaults. An empty path returns the defaults as-is.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read voice settings: %w", err)
	}
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("parse voice settings: %w", err)
	}

	if len(s.ActivationWords) == 0 {
		return nil, fmt.Errorf("voice settings: at least one activation word required")
	}
	if len(s.SymbolVariations) == 0 {
		return nil, fmt.Errorf("voice settings: symbol variation map is empty")
	}
	return s, nil
}

// ParserConfig projects the settings into the parser's view of them.
func (s *Settings) ParserConfig() ParserConfig {
	return ParserConfig{
		ActivationWords:  s.ActivationWords,
		Synonyms:         s.Synonyms,
		SymbolVariations: s.SymbolVariations,
	}
}
