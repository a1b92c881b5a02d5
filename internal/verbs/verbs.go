package verbs

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed verbs.json
var verbsFS embed.FS

// Verb is one entry of the immutable reference dictionary.
type Verb struct {
	Base        string `json:"base"`
	Past        string `json:"past"`
	Participle  string `json:"participle"`
	Translation string `json:"translation"`
	Level       string `json:"level"` // "beginner", "intermediate", "advanced"
}

// Dictionary is the read-only verb reference set, keyed by base form.
type Dictionary struct {
	verbs []Verb
	index map[string]int
}

// Load parses the embedded dictionary. Called once at startup.
func Load() (*Dictionary, error) {
	data, err := verbsFS.ReadFile("verbs.json")
	if err != nil {
		return nil, fmt.Errorf("read embedded verb list: %w", err)
	}

	var list []Verb
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse verb list: %w", err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("verb list is empty")
	}

	index := make(map[string]int, len(list))
	for i, v := range list {
		if v.Base == "" {
			return nil, fmt.Errorf("verb entry %d has no base form", i)
		}
		if _, dup := index[v.Base]; dup {
			return nil, fmt.Errorf("duplicate verb %q in dictionary", v.Base)
		}
		index[v.Base] = i
	}

	return &Dictionary{verbs: list, index: index}, nil
}

// Contains reports whether the normalized base form is a known verb.
func (d *Dictionary) Contains(base string) bool {
	_, ok := d.index[base]
	return ok
}

// Get returns the entry for a base form.
func (d *Dictionary) Get(base string) (Verb, bool) {
	i, ok := d.index[base]
	if !ok {
		return Verb{}, false
	}
	return d.verbs[i], true
}

// All returns the dictionary in its stored order. Callers must not mutate
// the returned slice.
func (d *Dictionary) All() []Verb {
	return d.verbs
}

func (d *Dictionary) Len() int {
	return len(d.verbs)
}
