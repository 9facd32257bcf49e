package formula

import (
	"sort"
	"sync/atomic"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

const (
	// maxSuggestions bounds the "did you mean" list of an unknown identifier.
	maxSuggestions = 3

	// maxCallDepth bounds nested lambda calls.
	maxCallDepth = 512
)

// Layer is one level of identifier bindings. *scope.Scope implements it.
type Layer interface {
	Get(name string) (any, bool)
	Keys() []string
}

// Env is an ordered list of scope layers, innermost first.
type Env struct {
	layers []Layer

	// calls counts lambda calls in progress. Environments derived with Push
	// share it.
	calls *atomic.Int32
}

// NewEnv creates an environment from layers given innermost first.
// Nil layers are skipped.
func NewEnv(layers ...Layer) *Env {
	env := &Env{layers: make([]Layer, 0, len(layers)), calls: new(atomic.Int32)}
	for _, layer := range layers {
		if layer != nil {
			env.layers = append(env.layers, layer)
		}
	}
	return env
}

// Push returns a new environment with layer as its innermost level.
func (e *Env) Push(layer Layer) *Env {
	layers := make([]Layer, 0, len(e.layers)+1)
	layers = append(layers, layer)
	layers = append(layers, e.layers...)
	return &Env{layers: layers, calls: e.calls}
}

// Lookup resolves name by probing layers innermost first.
func (e *Env) Lookup(name string) (any, error) {
	for _, layer := range e.layers {
		if value, ok := layer.Get(name); ok {
			return value, nil
		}
	}
	return nil, &UnknownIdentifierError{Name: name, Suggestions: e.suggest(name)}
}

// Names returns every bound name, innermost layers first, without
// duplicates.
func (e *Env) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for _, layer := range e.layers {
		for _, name := range layer.Keys() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

func (e *Env) suggest(name string) []string {
	ranks := fuzzy.RankFindFold(name, e.Names())
	sort.Sort(ranks)

	suggestions := make([]string, 0, maxSuggestions)
	for _, rank := range ranks {
		if len(suggestions) == maxSuggestions {
			break
		}
		suggestions = append(suggestions, rank.Target)
	}
	return suggestions
}
