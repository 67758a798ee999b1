package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/windoze95/cookiify-api/internal/config"
	"github.com/windoze95/cookiify-api/internal/models"
	"github.com/windoze95/cookiify-api/internal/upstream"
)

// InstructionsUnavailable is the single step used when a Spoonacular record
// carries neither analyzed nor free-text instructions.
const InstructionsUnavailable = "Instructions not available"

// Ingredient-count thresholds for derived difficulty.
const (
	mediumAbove = 10
	hardAbove   = 15
)

// ErrMalformed is wrapped by every error returned for a record that cannot be
// turned into a canonical recipe.
var ErrMalformed = errors.New("malformed upstream record")

// Normalizer maps upstream records into the canonical recipe shape.
type Normalizer struct {
	Rules  *config.CategoryRules
	Picker Picker
}

// New creates a Normalizer. A nil rules value selects the embedded defaults
// and a nil picker selects FirstPicker.
func New(rules *config.CategoryRules, picker Picker) *Normalizer {
	if rules == nil {
		rules = config.DefaultCategoryRules()
	}
	if picker == nil {
		picker = FirstPicker()
	}
	return &Normalizer{Rules: rules, Picker: picker}
}

// FromMealDB converts one TheMealDB record.
func (n *Normalizer) FromMealDB(m upstream.Meal) (*models.Recipe, error) {
	id := strings.TrimSpace(m.ID)
	title := strings.TrimSpace(m.Name)
	if id == "" {
		return nil, fmt.Errorf("%w: themealdb record has no id", ErrMalformed)
	}
	if title == "" {
		return nil, fmt.Errorf("%w: themealdb record %s has no title", ErrMalformed, id)
	}

	ingredients := MealDBIngredients(m)
	recipe := &models.Recipe{
		Title:       title,
		Ingredients: ingredients,
		Steps:       SplitSteps(m.Instructions),
		Category:    n.MealDBCategory(m.Category),
		Cuisine:     strings.TrimSpace(m.Area),
		Difficulty:  DeriveDifficulty(len(ingredients)),
		Image:       strings.TrimSpace(m.Thumb),
		Source:      models.SourceTheMealDB,
		ExternalID:  id,
		SourceURL:   strings.TrimSpace(m.Source),
		Tags:        uniqueTags(m.Category, m.Area),
		IsVeg:       !n.Rules.IsNonVegetarian(strings.TrimSpace(m.Category)),
	}
	n.applyDefaults(recipe)
	return recipe, nil
}

// FromSpoonacular converts one Spoonacular recipe.
func (n *Normalizer) FromSpoonacular(r upstream.SpoonacularRecipe) (*models.Recipe, error) {
	title := strings.TrimSpace(r.Title)
	if r.ID <= 0 {
		return nil, fmt.Errorf("%w: spoonacular record has no id", ErrMalformed)
	}
	if title == "" {
		return nil, fmt.Errorf("%w: spoonacular record %d has no title", ErrMalformed, r.ID)
	}

	ingredients := SpoonacularIngredients(r.ExtendedIngredients)
	cuisine := ""
	if len(r.Cuisines) > 0 {
		cuisine = strings.TrimSpace(r.Cuisines[0])
	}

	isVeg := true
	if r.Vegetarian != nil {
		isVeg = *r.Vegetarian
	} else {
		names := append([]string{}, r.DishTypes...)
		for _, ing := range ingredients {
			names = append(names, ing.Name)
		}
		isVeg = !n.mentionsNonVegetarian(names...)
	}

	tags := append([]string{}, r.DishTypes...)
	tags = append(tags, r.Cuisines...)

	recipe := &models.Recipe{
		Title:       title,
		Ingredients: ingredients,
		Steps:       SpoonacularSteps(r),
		Category:    n.DishTypeCategory(r.DishTypes),
		Cuisine:     cuisine,
		CookingTime: r.ReadyInMinutes,
		Difficulty:  DeriveDifficulty(len(ingredients)),
		Image:       strings.TrimSpace(r.Image),
		Source:      models.SourceSpoonacular,
		ExternalID:  strconv.Itoa(r.ID),
		SourceURL:   strings.TrimSpace(r.SourceURL),
		Summary:     strings.TrimSpace(r.Summary),
		Tags:        uniqueTags(tags...),
		Servings:    r.Servings,
		IsVeg:       isVeg,
	}
	if recipe.CookingTime < 0 {
		recipe.CookingTime = 0
	}
	if recipe.Servings < 0 {
		recipe.Servings = 0
	}
	n.applyDefaults(recipe)
	return recipe, nil
}

// mentionsNonVegetarian reports whether any word of texts is a
// non-vegetarian category, e.g. "chicken" in "boneless chicken thighs".
func (n *Normalizer) mentionsNonVegetarian(texts ...string) bool {
	for _, text := range texts {
		words := strings.FieldsFunc(text, func(r rune) bool { return !unicode.IsLetter(r) })
		for _, w := range words {
			if n.Rules.IsNonVegetarian(w) {
				return true
			}
		}
	}
	return false
}

// MealDBCategory maps a protein-style TheMealDB category to a meal type.
// Categories with several targets are resolved by the Picker.
func (n *Normalizer) MealDBCategory(category string) string {
	targets, ok := n.Rules.MealDBCategories[strings.TrimSpace(category)]
	if !ok || len(targets) == 0 {
		return n.Rules.DefaultCategory
	}
	if len(targets) == 1 {
		return targets[0]
	}
	if picked := n.Picker.Pick(targets); picked != "" {
		return picked
	}
	return targets[0]
}

// DishTypeCategory applies the ordered dish-type rules; the first rule whose
// dish type appears in dishTypes wins.
func (n *Normalizer) DishTypeCategory(dishTypes []string) string {
	for _, rule := range n.Rules.DishTypeRules {
		for _, dt := range dishTypes {
			if strings.EqualFold(strings.TrimSpace(dt), rule.DishType) {
				return rule.Category
			}
		}
	}
	return n.Rules.DefaultCategory
}

func (n *Normalizer) applyDefaults(r *models.Recipe) {
	if r.Cuisine == "" {
		r.Cuisine = n.Rules.DefaultCuisine
	}
	if r.Servings == 0 {
		r.Servings = n.Rules.DefaultServings
	}
	r.ApplyDefaults()
}

// DeriveDifficulty grades a recipe by ingredient count: Easy by default,
// Medium above 10, Hard above 15.
func DeriveDifficulty(ingredientCount int) models.Difficulty {
	difficulty := models.DifficultyEasy
	if ingredientCount > mediumAbove {
		difficulty = models.DifficultyMedium
	}
	if ingredientCount > hardAbove {
		difficulty = models.DifficultyHard
	}
	return difficulty
}

// MealDBIngredients collects the numbered pairs whose ingredient name is not
// blank, in slot order.
func MealDBIngredients(m upstream.Meal) models.Ingredients {
	ingredients := models.Ingredients{}
	for i := 0; i < upstream.MealIngredientSlots; i++ {
		name := strings.TrimSpace(m.Ingredients[i])
		if name == "" {
			continue
		}
		ingredients = append(ingredients, models.Ingredient{
			Name:    name,
			Measure: strings.TrimSpace(m.Measures[i]),
		})
	}
	return ingredients
}

// SplitSteps splits a free-text instruction block into one step per
// non-blank line. A block with no visible text is kept as the only step,
// untrimmed; Recipe.Validate rejects it before it is stored.
func SplitSteps(block string) models.StringList {
	steps := models.StringList{}
	for _, line := range strings.Split(block, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			steps = append(steps, line)
		}
	}
	if len(steps) == 0 {
		return models.StringList{block}
	}
	return steps
}

// SpoonacularIngredients converts extendedIngredients. The measure prefers the
// metric amount, then the generic amount, else stays empty.
func SpoonacularIngredients(in []upstream.SpoonacularIngredient) models.Ingredients {
	ingredients := models.Ingredients{}
	for _, ing := range in {
		name := strings.TrimSpace(ing.Name)
		if name == "" {
			name = strings.TrimSpace(ing.Original)
		}
		if name == "" {
			continue
		}

		measure := ""
		switch {
		case ing.Measures != nil && ing.Measures.Metric != nil && ing.Measures.Metric.Amount != 0:
			measure = formatAmount(ing.Measures.Metric.Amount) + " " + ing.Measures.Metric.UnitShort
		case ing.Amount != 0:
			measure = formatAmount(ing.Amount) + " " + ing.Unit
		}
		ingredients = append(ingredients, models.Ingredient{
			Name:    name,
			Measure: strings.TrimSpace(measure),
		})
	}
	return ingredients
}

// SpoonacularSteps uses the first analyzed instruction set, then the free-text
// instructions as a single step, then the unavailable step.
func SpoonacularSteps(r upstream.SpoonacularRecipe) models.StringList {
	steps := models.StringList{}
	if len(r.AnalyzedInstructions) > 0 {
		for _, s := range r.AnalyzedInstructions[0].Steps {
			if text := strings.TrimSpace(s.Step); text != "" {
				steps = append(steps, text)
			}
		}
	}
	if len(steps) > 0 {
		return steps
	}
	if text := strings.TrimSpace(r.Instructions); text != "" {
		return models.StringList{text}
	}
	return models.StringList{InstructionsUnavailable}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// uniqueTags trims, drops blanks and removes case-insensitive duplicates,
// keeping first-seen order.
func uniqueTags(values ...string) models.StringList {
	seen := make(map[string]bool, len(values))
	tags := models.StringList{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, v)
	}
	return tags
}
