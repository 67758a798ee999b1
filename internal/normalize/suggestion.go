package normalize

import (
	"fmt"
	"strings"

	"github.com/windoze95/cookiify-api/internal/upstream"
)

// Suggestion is an ingredient-based match shown to the user.
type Suggestion struct {
	ID                int                    `json:"id"`
	Title             string                 `json:"title"`
	Image             string                 `json:"image"`
	UsedIngredients   []SuggestionIngredient `json:"usedIngredients"`
	MissedIngredients []SuggestionIngredient `json:"missedIngredients"`
	Source            string                 `json:"source"`
}

// SuggestionIngredient is one used or missed ingredient of a Suggestion.
type SuggestionIngredient struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Original string  `json:"original,omitempty"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
	Image    string  `json:"image,omitempty"`
}

// ToSuggestion converts one findByIngredients match.
func ToSuggestion(s upstream.SpoonacularSuggestion) (Suggestion, error) {
	title := strings.TrimSpace(s.Title)
	if s.ID <= 0 {
		return Suggestion{}, fmt.Errorf("%w: spoonacular suggestion has no id", ErrMalformed)
	}
	if title == "" {
		return Suggestion{}, fmt.Errorf("%w: spoonacular suggestion %d has no title", ErrMalformed, s.ID)
	}
	return Suggestion{
		ID:                s.ID,
		Title:             title,
		Image:             strings.TrimSpace(s.Image),
		UsedIngredients:   suggestionIngredients(s.UsedIngredients),
		MissedIngredients: suggestionIngredients(s.MissedIngredients),
		Source:            upstream.ProviderSpoonacular,
	}, nil
}

func suggestionIngredients(in []upstream.SpoonacularUsedIngredient) []SuggestionIngredient {
	out := make([]SuggestionIngredient, 0, len(in))
	for _, ing := range in {
		out = append(out, SuggestionIngredient{
			ID:       ing.ID,
			Name:     ing.Name,
			Original: ing.Original,
			Amount:   ing.Amount,
			Unit:     ing.Unit,
			Image:    ing.Image,
		})
	}
	return out
}
