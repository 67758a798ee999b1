package normalize

import (
	"math/rand"
	"sync"
)

// Picker chooses one category when a source category maps to several
// plausible meal types. The choice is deliberately left open: production uses
// a random pick, tests use a seeded or fixed one.
type Picker interface {
	Pick(options []string) string
}

// PickerFunc adapts a function to the Picker interface.
type PickerFunc func(options []string) string

// Pick calls f(options).
func (f PickerFunc) Pick(options []string) string {
	return f(options)
}

// FirstPicker always picks the first option.
func FirstPicker() Picker {
	return PickerFunc(func(options []string) string {
		if len(options) == 0 {
			return ""
		}
		return options[0]
	})
}

// randomPicker is safe for concurrent use.
type randomPicker struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// RandomPicker picks uniformly using rnd. Pass rand.New(rand.NewSource(seed))
// for a reproducible sequence.
func RandomPicker(rnd *rand.Rand) Picker {
	return &randomPicker{rnd: rnd}
}

func (p *randomPicker) Pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	p.mu.Lock()
	i := p.rnd.Intn(len(options))
	p.mu.Unlock()
	return options[i]
}
