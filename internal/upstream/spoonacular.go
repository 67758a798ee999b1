package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/windoze95/cookiify-api/internal/logger"
	"go.uber.org/zap"
)

// DefaultQuotaCooldown is how long the client refuses to call Spoonacular
// after it reported the daily quota as exhausted.
const DefaultQuotaCooldown = time.Hour

// SearchParams are the complexSearch filters that change the upstream result.
type SearchParams struct {
	Query   string
	Cuisine string
	Diet    string
	Type    string
	Number  int
}

// SpoonacularRecipe is one recipe as returned by complexSearch (with
// addRecipeInformation) or the information endpoint. Pointer fields are
// optional upstream.
type SpoonacularRecipe struct {
	ID                   int                         `json:"id"`
	Title                string                      `json:"title"`
	Image                string                      `json:"image"`
	ReadyInMinutes       int                         `json:"readyInMinutes"`
	Servings             int                         `json:"servings"`
	Vegetarian           *bool                       `json:"vegetarian"`
	Vegan                bool                        `json:"vegan"`
	GlutenFree           bool                        `json:"glutenFree"`
	DairyFree            bool                        `json:"dairyFree"`
	Cuisines             []string                    `json:"cuisines"`
	DishTypes            []string                    `json:"dishTypes"`
	Summary              string                      `json:"summary"`
	SourceURL            string                      `json:"sourceUrl"`
	Instructions         string                      `json:"instructions"`
	HealthScore          float64                     `json:"healthScore"`
	PricePerServing      float64                     `json:"pricePerServing"`
	ExtendedIngredients  []SpoonacularIngredient     `json:"extendedIngredients"`
	AnalyzedInstructions []SpoonacularInstructionSet `json:"analyzedInstructions"`
}

// SpoonacularIngredient is one entry of extendedIngredients.
type SpoonacularIngredient struct {
	Name     string               `json:"name"`
	Original string               `json:"original"`
	Amount   float64              `json:"amount"`
	Unit     string               `json:"unit"`
	Measures *SpoonacularMeasures `json:"measures"`
}

// SpoonacularMeasures holds the per-system amounts of an ingredient.
type SpoonacularMeasures struct {
	Metric *SpoonacularMeasure `json:"metric"`
	US     *SpoonacularMeasure `json:"us"`
}

// SpoonacularMeasure is an amount in one unit system.
type SpoonacularMeasure struct {
	Amount    float64 `json:"amount"`
	UnitShort string  `json:"unitShort"`
	UnitLong  string  `json:"unitLong"`
}

// SpoonacularInstructionSet is one block of analyzedInstructions.
type SpoonacularInstructionSet struct {
	Name  string            `json:"name"`
	Steps []SpoonacularStep `json:"steps"`
}

// SpoonacularStep is a single analyzed instruction.
type SpoonacularStep struct {
	Number int    `json:"number"`
	Step   string `json:"step"`
}

// SpoonacularSearchResult is a decoded complexSearch page. Records that could
// not be decoded are counted in Skipped rather than failing the page.
type SpoonacularSearchResult struct {
	Recipes      []SpoonacularRecipe
	TotalResults int
	Skipped      int
}

// SpoonacularSuggestion is one findByIngredients match.
type SpoonacularSuggestion struct {
	ID                    int                         `json:"id"`
	Title                 string                      `json:"title"`
	Image                 string                      `json:"image"`
	UsedIngredientCount   int                         `json:"usedIngredientCount"`
	MissedIngredientCount int                         `json:"missedIngredientCount"`
	UsedIngredients       []SpoonacularUsedIngredient `json:"usedIngredients"`
	MissedIngredients     []SpoonacularUsedIngredient `json:"missedIngredients"`
	Likes                 int                         `json:"likes"`
}

// SpoonacularUsedIngredient is an ingredient reference inside a suggestion.
type SpoonacularUsedIngredient struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Original string  `json:"original"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
	Image    string  `json:"image"`
}

// SuggestionResult is a decoded findByIngredients response.
type SuggestionResult struct {
	Suggestions []SpoonacularSuggestion
	Skipped     int
}

// SpoonacularClient talks to the Spoonacular recipe API.
type SpoonacularClient struct {
	apiKey         string
	baseURL        string
	httpClient     *http.Client
	cooldown       time.Duration
	now            func() time.Time
	exhaustedUntil atomic.Int64
}

// NewSpoonacularClient creates a Spoonacular client. An empty baseURL selects
// the public endpoint.
func NewSpoonacularClient(apiKey, baseURL string) *SpoonacularClient {
	if baseURL == "" {
		baseURL = "https://api.spoonacular.com"
	}
	return &SpoonacularClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(),
		cooldown:   DefaultQuotaCooldown,
		now:        time.Now,
	}
}

// WithQuotaCooldown overrides the quota cooldown and clock. Used by tests.
func (c *SpoonacularClient) WithQuotaCooldown(cooldown time.Duration, now func() time.Time) *SpoonacularClient {
	c.cooldown = cooldown
	if now != nil {
		c.now = now
	}
	return c
}

// QuotaExhausted reports whether a recent 402 is still being honored.
func (c *SpoonacularClient) QuotaExhausted() bool {
	return c.now().UnixNano() < c.exhaustedUntil.Load()
}

// ComplexSearch runs a keyword search with full recipe information attached.
func (c *SpoonacularClient) ComplexSearch(ctx context.Context, p SearchParams) (*SpoonacularSearchResult, error) {
	params := url.Values{}
	params.Set("query", p.Query)
	params.Set("number", strconv.Itoa(p.Number))
	params.Set("addRecipeInformation", "true")
	params.Set("fillIngredients", "true")
	params.Set("instructionsRequired", "true")
	if p.Cuisine != "" {
		params.Set("cuisine", p.Cuisine)
	}
	if p.Diet != "" {
		params.Set("diet", p.Diet)
	}
	if p.Type != "" {
		params.Set("type", p.Type)
	}

	body, err := c.get(ctx, "/recipes/complexSearch", params)
	if err != nil {
		return nil, err
	}

	var page struct {
		Results      []json.RawMessage `json:"results"`
		TotalResults int               `json:"totalResults"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to parse spoonacular search response: %w", err)
	}

	result := &SpoonacularSearchResult{
		Recipes:      make([]SpoonacularRecipe, 0, len(page.Results)),
		TotalResults: page.TotalResults,
	}
	for i, raw := range page.Results {
		var recipe SpoonacularRecipe
		if err := json.Unmarshal(raw, &recipe); err != nil {
			result.Skipped++
			logger.Get().Warn("skipping undecodable spoonacular record", zap.Int("index", i), zap.Error(err))
			continue
		}
		result.Recipes = append(result.Recipes, recipe)
	}
	return result, nil
}

// RecipeInformation fetches one recipe's full information.
func (c *SpoonacularClient) RecipeInformation(ctx context.Context, id string) (*SpoonacularRecipe, error) {
	body, err := c.RecipeInformationRaw(ctx, id)
	if err != nil {
		return nil, err
	}
	var recipe SpoonacularRecipe
	if err := json.Unmarshal(body, &recipe); err != nil {
		return nil, fmt.Errorf("failed to parse spoonacular recipe %s: %w", id, err)
	}
	return &recipe, nil
}

// RecipeInformationRaw fetches one recipe's information without decoding it.
func (c *SpoonacularClient) RecipeInformationRaw(ctx context.Context, id string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("includeNutrition", "false")
	body, err := c.get(ctx, "/recipes/"+url.PathEscape(id)+"/information", params)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("spoonacular returned invalid JSON for recipe %s", id)
	}
	return json.RawMessage(body), nil
}

// FindByIngredients returns recipes that use as many of the given ingredients
// as possible while missing as few others as possible.
func (c *SpoonacularClient) FindByIngredients(ctx context.Context, ingredients []string, number int) (*SuggestionResult, error) {
	params := url.Values{}
	params.Set("ingredients", strings.Join(ingredients, ","))
	params.Set("number", strconv.Itoa(number))
	params.Set("ranking", "2")
	params.Set("ignorePantry", "true")

	body, err := c.get(ctx, "/recipes/findByIngredients", params)
	if err != nil {
		return nil, err
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, fmt.Errorf("failed to parse spoonacular suggestions: %w", err)
	}

	result := &SuggestionResult{Suggestions: make([]SpoonacularSuggestion, 0, len(raws))}
	for i, raw := range raws {
		var s SpoonacularSuggestion
		if err := json.Unmarshal(raw, &s); err != nil {
			result.Skipped++
			logger.Get().Warn("skipping undecodable spoonacular suggestion", zap.Int("index", i), zap.Error(err))
			continue
		}
		result.Suggestions = append(result.Suggestions, s)
	}
	return result, nil
}

func (c *SpoonacularClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if c.QuotaExhausted() {
		return nil, &StatusError{
			Provider:   ProviderSpoonacular,
			StatusCode: http.StatusPaymentRequired,
			Message:    "daily quota exhausted",
		}
	}

	header := http.Header{}
	header.Set("x-api-key", c.apiKey)
	body, err := getJSON(ctx, c.httpClient, ProviderSpoonacular, c.baseURL+path, params, header)
	if err != nil {
		if se, ok := err.(*StatusError); ok && se.StatusCode == http.StatusPaymentRequired {
			c.exhaustedUntil.Store(c.now().Add(c.cooldown).UnixNano())
			logger.Get().Warn("spoonacular quota exhausted", zap.Duration("cooldown", c.cooldown))
		}
		return nil, err
	}
	return body, nil
}
