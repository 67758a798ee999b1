package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed category_rules.yaml
var defaultCategoryRules []byte

// DishTypeRule maps one Spoonacular dish type to a meal-type category.
type DishTypeRule struct {
	DishType string `yaml:"dish_type"`
	Category string `yaml:"category"`
}

// CategoryRules holds the lookup tables used when normalizing upstream recipes.
type CategoryRules struct {
	Categories       []string            `yaml:"categories"`
	DefaultCategory  string              `yaml:"default_category"`
	DefaultCuisine   string              `yaml:"default_cuisine"`
	DefaultServings  int                 `yaml:"default_servings"`
	MealDBCategories map[string][]string `yaml:"mealdb_categories"`
	NonVegetarian    []string            `yaml:"non_vegetarian"`
	DishTypeRules    []DishTypeRule      `yaml:"dish_type_rules"`
}

// DefaultCategoryRules returns the rules compiled into the binary.
func DefaultCategoryRules() *CategoryRules {
	rules, err := ParseCategoryRules(defaultCategoryRules)
	if err != nil {
		panic("embedded category rules are invalid: " + err.Error())
	}
	return rules
}

// LoadCategoryRules reads rules from path, or returns the embedded defaults
// when path is empty.
func LoadCategoryRules(path string) (*CategoryRules, error) {
	if path == "" {
		return DefaultCategoryRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read category rules file: %w", err)
	}
	return ParseCategoryRules(data)
}

// ParseCategoryRules parses and validates a YAML rules document.
func ParseCategoryRules(data []byte) (*CategoryRules, error) {
	var rules CategoryRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse category rules YAML: %w", err)
	}
	if err := rules.validate(); err != nil {
		return nil, err
	}
	return &rules, nil
}

// IsCategory reports whether name is one of the user-facing categories.
func (r *CategoryRules) IsCategory(name string) bool {
	for _, c := range r.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// IsNonVegetarian reports whether a source category implies meat or fish.
func (r *CategoryRules) IsNonVegetarian(category string) bool {
	for _, c := range r.NonVegetarian {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

func (r *CategoryRules) validate() error {
	if len(r.Categories) == 0 {
		return fmt.Errorf("category rules: categories must not be empty")
	}
	if !r.IsCategory(r.DefaultCategory) {
		return fmt.Errorf("category rules: default category %q is not a known category", r.DefaultCategory)
	}
	if r.DefaultCuisine == "" {
		return fmt.Errorf("category rules: default cuisine must be set")
	}
	if r.DefaultServings < 1 {
		return fmt.Errorf("category rules: default servings must be positive")
	}
	for source, targets := range r.MealDBCategories {
		if len(targets) == 0 {
			return fmt.Errorf("category rules: %q has no target categories", source)
		}
		for _, t := range targets {
			if !r.IsCategory(t) {
				return fmt.Errorf("category rules: %q maps to unknown category %q", source, t)
			}
		}
	}
	for _, rule := range r.DishTypeRules {
		if !r.IsCategory(rule.Category) {
			return fmt.Errorf("category rules: dish type %q maps to unknown category %q", rule.DishType, rule.Category)
		}
	}
	return nil
}
