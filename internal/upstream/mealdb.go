package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/windoze95/cookiify-api/internal/logger"
	"go.uber.org/zap"
)

// MealIngredientSlots is the number of numbered ingredient/measure pairs a
// TheMealDB record carries.
const MealIngredientSlots = 20

// Meal is one TheMealDB record. The upstream shape is a flat object with
// strIngredient1..20 and strMeasure1..20; UnmarshalJSON folds those into
// the two arrays. Null and missing fields decode as empty strings.
type Meal struct {
	ID           string
	Name         string
	Category     string
	Area         string
	Instructions string
	Thumb        string
	Tags         string
	YouTube      string
	Source       string
	Ingredients  [MealIngredientSlots]string
	Measures     [MealIngredientSlots]string
}

// UnmarshalJSON decodes TheMealDB's flat record shape. Non-string values are
// rejected so a malformed record fails on its own instead of half-populating.
func (m *Meal) UnmarshalJSON(data []byte) error {
	var fields map[string]*string
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("malformed meal record: %w", err)
	}
	get := func(key string) string {
		if v := fields[key]; v != nil {
			return *v
		}
		return ""
	}

	out := Meal{
		ID:           get("idMeal"),
		Name:         get("strMeal"),
		Category:     get("strCategory"),
		Area:         get("strArea"),
		Instructions: get("strInstructions"),
		Thumb:        get("strMealThumb"),
		Tags:         get("strTags"),
		YouTube:      get("strYoutube"),
		Source:       get("strSource"),
	}
	for i := 0; i < MealIngredientSlots; i++ {
		n := strconv.Itoa(i + 1)
		out.Ingredients[i] = get("strIngredient" + n)
		out.Measures[i] = get("strMeasure" + n)
	}
	*m = out
	return nil
}

// MealSummary is the reduced record returned by filter.php.
type MealSummary struct {
	ID    string `json:"idMeal"`
	Name  string `json:"strMeal"`
	Thumb string `json:"strMealThumb"`
}

// MealBatch is a decoded search.php response. Records that could not be
// decoded are counted in Skipped.
type MealBatch struct {
	Meals   []Meal
	Skipped int
}

// MealDBClient talks to TheMealDB's free JSON API. It needs no credential.
type MealDBClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewMealDBClient creates a TheMealDB client. An empty baseURL selects the
// public v1 endpoint with the shared test key.
func NewMealDBClient(baseURL string) *MealDBClient {
	if baseURL == "" {
		baseURL = "https://www.themealdb.com/api/json/v1/1"
	}
	return &MealDBClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(),
	}
}

// Search finds meals whose name matches query.
func (c *MealDBClient) Search(ctx context.Context, query string) (*MealBatch, error) {
	params := url.Values{}
	params.Set("s", query)
	raws, err := c.meals(ctx, "/search.php", params)
	if err != nil {
		return nil, err
	}

	batch := &MealBatch{Meals: make([]Meal, 0, len(raws))}
	for i, raw := range raws {
		var meal Meal
		if err := json.Unmarshal(raw, &meal); err != nil {
			batch.Skipped++
			logger.Get().Warn("skipping undecodable themealdb record", zap.Int("index", i), zap.Error(err))
			continue
		}
		batch.Meals = append(batch.Meals, meal)
	}
	return batch, nil
}

// Lookup fetches one meal by id. A missing meal yields ErrNotFound.
func (c *MealDBClient) Lookup(ctx context.Context, id string) (*Meal, error) {
	params := url.Values{}
	params.Set("i", id)
	raws, err := c.meals(ctx, "/lookup.php", params)
	if err != nil {
		return nil, err
	}
	if len(raws) == 0 {
		return nil, &StatusError{Provider: ProviderTheMealDB, StatusCode: http.StatusNotFound, Message: "meal " + id + " not found"}
	}

	var meal Meal
	if err := json.Unmarshal(raws[0], &meal); err != nil {
		return nil, fmt.Errorf("failed to parse themealdb meal %s: %w", id, err)
	}
	return &meal, nil
}

// FilterByCategory lists the meals in a TheMealDB category.
func (c *MealDBClient) FilterByCategory(ctx context.Context, category string) ([]MealSummary, error) {
	params := url.Values{}
	params.Set("c", category)
	raws, err := c.meals(ctx, "/filter.php", params)
	if err != nil {
		return nil, err
	}

	summaries := make([]MealSummary, 0, len(raws))
	for _, raw := range raws {
		var s MealSummary
		if err := json.Unmarshal(raw, &s); err != nil || s.ID == "" {
			continue
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// meals fetches an endpoint and returns the raw entries of its "meals" array,
// which TheMealDB sets to null when nothing matched.
func (c *MealDBClient) meals(ctx context.Context, path string, params url.Values) ([]json.RawMessage, error) {
	body, err := getJSON(ctx, c.httpClient, ProviderTheMealDB, c.baseURL+path, params, nil)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Meals []json.RawMessage `json:"meals"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse themealdb response: %w", err)
	}
	return payload.Meals, nil
}
