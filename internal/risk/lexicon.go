// Package risk estimates a per-message risk probability and blends it with
// the user's longitudinal trend and alerts.
package risk

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Lexicon holds the keyword lists used by the heuristic scorer, the feature
// extractor, and the tone analyzer. The service ships bilingual defaults;
// deployments can override any list via ~/.ritmo/lexicon.yaml.
type Lexicon struct {
	Crisis    []string `yaml:"crisis"`
	Negative  []string `yaml:"negative"`
	Positive  []string `yaml:"positive"`
	Isolation []string `yaml:"isolation"`
	Fatigue   []string `yaml:"fatigue"`
	Urgent    []string `yaml:"urgent"`
}

// DefaultLexicon returns the built-in keyword lists.
func DefaultLexicon() *Lexicon {
	return &Lexicon{
		Crisis: []string{
			"no puedo más", "no aguanto", "quiero desaparecer", "hacerme daño",
			"suicid", "sin salida", "nadie me ayuda",
			"can't go on", "hurt myself", "no way out", "end it all",
		},
		Negative: []string{
			"triste", "solo", "sola", "cansado", "cansada", "mal", "fatal",
			"agotado", "agotada", "angustia", "miedo", "llorar",
			"sad", "lonely", "tired", "exhausted", "anxious", "afraid", "hopeless",
		},
		Positive: []string{
			"bien", "feliz", "contento", "contenta", "tranquilo", "tranquila",
			"mejor", "animado", "animada", "gracias",
			"good", "happy", "calm", "better", "grateful", "thanks",
		},
		Isolation: []string{
			"solo", "sola", "nadie", "aislado", "aislada", "abandonado", "abandonada",
			"lonely", "alone", "nobody", "isolated", "abandoned",
		},
		Fatigue: []string{
			"cansado", "cansada", "agotado", "agotada", "sin fuerzas", "sin energía",
			"tired", "exhausted", "drained", "no energy", "worn out",
		},
		Urgent: []string{
			"ayuda", "urgente", "emergencia", "socorro", "ahora mismo",
			"help", "urgent", "emergency", "right now",
		},
	}
}

// LoadLexicon reads an override file. A missing file yields the defaults;
// a parse failure warns and yields the defaults, never an error the caller
// has to handle. Empty lists in the file keep their built-in values.
func LoadLexicon(path string) *Lexicon {
	lex := DefaultLexicon()

	data, err := os.ReadFile(path)
	if err != nil {
		return lex
	}

	var override Lexicon
	if err := yaml.Unmarshal(data, &override); err != nil {
		fmt.Printf("Warning: failed to parse lexicon %s: %v\n", path, err)
		fmt.Println("Using built-in keyword lists.")
		return lex
	}

	if len(override.Crisis) > 0 {
		lex.Crisis = override.Crisis
	}
	if len(override.Negative) > 0 {
		lex.Negative = override.Negative
	}
	if len(override.Positive) > 0 {
		lex.Positive = override.Positive
	}
	if len(override.Isolation) > 0 {
		lex.Isolation = override.Isolation
	}
	if len(override.Fatigue) > 0 {
		lex.Fatigue = override.Fatigue
	}
	if len(override.Urgent) > 0 {
		lex.Urgent = override.Urgent
	}
	return lex
}

// CountHits counts how many terms from the list occur in text.
// Matching is case-insensitive substring containment.
func CountHits(text string, terms []string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			n++
		}
	}
	return n
}

// HasHit reports whether any term from the list occurs in text.
func HasHit(text string, terms []string) bool {
	return CountHits(text, terms) > 0
}
