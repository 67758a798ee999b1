package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/windoze95/cookiify-api/internal/cache"
	"github.com/windoze95/cookiify-api/internal/config"
	"github.com/windoze95/cookiify-api/internal/logger"
	"github.com/windoze95/cookiify-api/internal/models"
	"github.com/windoze95/cookiify-api/internal/normalize"
	"github.com/windoze95/cookiify-api/internal/ratelimit"
	"github.com/windoze95/cookiify-api/internal/upstream"
	"go.uber.org/zap"
)

// Upstream call bounds.
const (
	SearchTimeout       = 10 * time.Second
	DetailTimeout       = 5 * time.Second
	DefaultSearchNumber = 10
	MaxSearchNumber     = 100
	SuggestionNumber    = 6
)

// User-facing messages for upstream outcomes.
const (
	msgNotConfigured   = "Spoonacular API is not configured. Please add your API key to use this feature."
	msgQuotaExceeded   = "Daily API quota exceeded. Please try again tomorrow."
	msgSearchFailed    = "Unable to search recipes at the moment. Please try again later."
	msgSuggestFailed   = "Unable to fetch suggestions at the moment. Please try again later or browse our recipe collection."
	msgDetailFailed    = "Unable to fetch recipe details"
	msgNoSearchResults = "No recipes found for your search"
)

// Limiters holds one independent budget per upstream-calling operation.
type Limiters struct {
	Search           ratelimit.Limiter
	SearchDetail     ratelimit.Limiter
	Suggestions      ratelimit.Limiter
	SuggestionDetail ratelimit.Limiter
}

// NewMemoryLimiters creates in-process limiters with the default budgets.
func NewMemoryLimiters(now func() time.Time) Limiters {
	return Limiters{
		Search:           ratelimit.NewFixedWindow(ratelimit.SearchRule, now),
		SearchDetail:     ratelimit.NewFixedWindow(ratelimit.SearchDetailRule, now),
		Suggestions:      ratelimit.NewFixedWindow(ratelimit.SuggestionRule, now),
		SuggestionDetail: ratelimit.NewFixedWindow(ratelimit.SuggestionDetailRule, now),
	}
}

// SearchParams are the inputs of a keyword search.
type SearchParams struct {
	Query   string
	Cuisine string
	Diet    string
	Type    string
	Number  int
	Source  string
}

// SearchResult is the outcome of a keyword search.
type SearchResult struct {
	Recipes []RecipeResponse
	Cached  bool
	Source  string
	Message string
}

// SuggestionsResult is the outcome of an ingredient-based suggestion lookup.
type SuggestionsResult struct {
	Suggestions []normalize.Suggestion
	Cached      bool
}

// SearchService aggregates the upstream recipe providers behind rate limits
// and a result cache.
type SearchService struct {
	Cfg             *config.Config
	Spoonacular     upstream.SpoonacularAPI
	MealDB          upstream.MealDBAPI
	Normalizer      *normalize.Normalizer
	SearchCache     *cache.ResultCache[[]RecipeResponse]
	SuggestionCache *cache.ResultCache[[]normalize.Suggestion]
	Limiters        Limiters
	Now             func() time.Time
	SearchTimeout   time.Duration
	DetailTimeout   time.Duration
}

// NewSearchService creates a new SearchService with the default timeouts.
func NewSearchService(
	cfg *config.Config,
	spoonacular upstream.SpoonacularAPI,
	mealDB upstream.MealDBAPI,
	normalizer *normalize.Normalizer,
	searchCache *cache.ResultCache[[]RecipeResponse],
	suggestionCache *cache.ResultCache[[]normalize.Suggestion],
	limiters Limiters,
) *SearchService {
	return &SearchService{
		Cfg:             cfg,
		Spoonacular:     spoonacular,
		MealDB:          mealDB,
		Normalizer:      normalizer,
		SearchCache:     searchCache,
		SuggestionCache: suggestionCache,
		Limiters:        limiters,
		Now:             time.Now,
		SearchTimeout:   SearchTimeout,
		DetailTimeout:   DetailTimeout,
	}
}

// Search finds recipes by keyword. client identifies the caller for rate
// limiting, normally its IP address.
func (s *SearchService) Search(ctx context.Context, client string, params SearchParams) (*SearchResult, error) {
	if err := s.allow(ctx, s.Limiters.Search, "search", client); err != nil {
		return nil, err
	}

	params.Query = strings.TrimSpace(params.Query)
	if params.Query == "" {
		return nil, newError(ErrClient, "Please provide a search query")
	}
	source, err := searchSource(params.Source)
	if err != nil {
		return nil, err
	}
	if params.Number <= 0 {
		params.Number = DefaultSearchNumber
	}
	if params.Number > MaxSearchNumber {
		params.Number = MaxSearchNumber
	}

	key := cache.Key("search", source, params.Query, params.Cuisine, params.Diet, params.Type, strconv.Itoa(params.Number))
	if recipes, ok := s.cachedSearch(ctx, key); ok {
		result := newSearchResult(recipes, source)
		result.Cached = true
		return result, nil
	}

	var recipes []RecipeResponse
	switch source {
	case upstream.ProviderTheMealDB:
		recipes, err = s.searchMealDB(ctx, params.Query)
	default:
		if !s.Cfg.SpoonacularConfigured() {
			return nil, newError(ErrNotConfigured, msgNotConfigured)
		}
		recipes, err = s.searchSpoonacular(ctx, params)
	}
	if err != nil {
		return nil, classifyUpstream(err, msgSearchFailed)
	}

	if err := s.SearchCache.Put(ctx, key, recipes); err != nil {
		logger.Get().Warn("failed to cache search results", zap.String("key", key), zap.Error(err))
	}

	return newSearchResult(recipes, source), nil
}

func newSearchResult(recipes []RecipeResponse, source string) *SearchResult {
	result := &SearchResult{Recipes: recipes, Source: source}
	if len(recipes) == 0 {
		result.Message = msgNoSearchResults
	}
	return result
}

func (s *SearchService) searchSpoonacular(ctx context.Context, params SearchParams) ([]RecipeResponse, error) {
	callCtx, cancel := s.detached(ctx, s.SearchTimeout)
	defer cancel()

	res, err := s.Spoonacular.ComplexSearch(callCtx, upstream.SearchParams{
		Query:   params.Query,
		Cuisine: params.Cuisine,
		Diet:    params.Diet,
		Type:    params.Type,
		Number:  params.Number,
	})
	if err != nil {
		return nil, err
	}
	normalized, _ := normalize.Batch(upstream.ProviderSpoonacular, res.Recipes, s.Normalizer.FromSpoonacular)
	return toResponses(normalized), nil
}

func (s *SearchService) searchMealDB(ctx context.Context, query string) ([]RecipeResponse, error) {
	callCtx, cancel := s.detached(ctx, s.SearchTimeout)
	defer cancel()

	batch, err := s.MealDB.Search(callCtx, query)
	if err != nil {
		return nil, err
	}
	normalized, _ := normalize.Batch(upstream.ProviderTheMealDB, batch.Meals, s.Normalizer.FromMealDB)
	return toResponses(normalized), nil
}

// SearchDetail fetches and normalizes one upstream recipe. It is not cached.
func (s *SearchService) SearchDetail(ctx context.Context, client, source, externalID string) (*RecipeResponse, error) {
	if err := s.allow(ctx, s.Limiters.SearchDetail, "search", client); err != nil {
		return nil, err
	}

	source, err := searchSource(source)
	if err != nil {
		return nil, err
	}
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, newError(ErrClient, "Please provide a recipe id")
	}

	callCtx, cancel := s.detached(ctx, s.DetailTimeout)
	defer cancel()

	switch source {
	case upstream.ProviderTheMealDB:
		meal, err := s.MealDB.Lookup(callCtx, externalID)
		if err != nil {
			return nil, classifyUpstream(err, msgDetailFailed)
		}
		recipe, err := s.Normalizer.FromMealDB(*meal)
		if err != nil {
			return nil, wrapError(ErrUpstreamUnavailable, msgDetailFailed, err)
		}
		return ToRecipeResponse(recipe), nil
	default:
		if _, err := strconv.Atoi(externalID); err != nil {
			return nil, newError(ErrClient, "Recipe id must be numeric")
		}
		if !s.Cfg.SpoonacularConfigured() {
			return nil, newError(ErrNotConfigured, msgNotConfigured)
		}
		info, err := s.Spoonacular.RecipeInformation(callCtx, externalID)
		if err != nil {
			return nil, classifyUpstream(err, msgDetailFailed)
		}
		recipe, err := s.Normalizer.FromSpoonacular(*info)
		if err != nil {
			return nil, wrapError(ErrUpstreamUnavailable, msgDetailFailed, err)
		}
		return ToRecipeResponse(recipe), nil
	}
}

// Suggest finds recipes that use the given ingredients.
func (s *SearchService) Suggest(ctx context.Context, client string, ingredients []string) (*SuggestionsResult, error) {
	if err := s.allow(ctx, s.Limiters.Suggestions, "suggestion", client); err != nil {
		return nil, err
	}

	ingredients = NormalizeIngredients(ingredients)
	if len(ingredients) == 0 {
		return nil, newError(ErrClient, "Please provide ingredients")
	}

	key := cache.Key("suggestions", strings.Join(ingredients, ","))
	if suggestions, ok := s.cachedSuggestions(ctx, key); ok {
		return &SuggestionsResult{Suggestions: suggestions, Cached: true}, nil
	}

	if !s.Cfg.SpoonacularConfigured() {
		return nil, newError(ErrNotConfigured, msgNotConfigured)
	}

	callCtx, cancel := s.detached(ctx, s.DetailTimeout)
	defer cancel()

	res, err := s.Spoonacular.FindByIngredients(callCtx, ingredients, SuggestionNumber)
	if err != nil {
		return nil, classifyUpstream(err, msgSuggestFailed)
	}
	suggestions, _ := normalize.Batch(upstream.ProviderSpoonacular, res.Suggestions, normalize.ToSuggestion)

	if err := s.SuggestionCache.Put(ctx, key, suggestions); err != nil {
		logger.Get().Warn("failed to cache suggestions", zap.String("key", key), zap.Error(err))
	}
	return &SuggestionsResult{Suggestions: suggestions}, nil
}

// SuggestionDetail returns Spoonacular's recipe information untouched.
func (s *SearchService) SuggestionDetail(ctx context.Context, client, externalID string) (json.RawMessage, error) {
	if err := s.allow(ctx, s.Limiters.SuggestionDetail, "suggestion", client); err != nil {
		return nil, err
	}

	externalID = strings.TrimSpace(externalID)
	if _, err := strconv.Atoi(externalID); err != nil {
		return nil, newError(ErrClient, "Recipe id must be numeric")
	}
	if !s.Cfg.SpoonacularConfigured() {
		return nil, newError(ErrNotConfigured, msgNotConfigured)
	}

	callCtx, cancel := s.detached(ctx, s.DetailTimeout)
	defer cancel()

	raw, err := s.Spoonacular.RecipeInformationRaw(callCtx, externalID)
	if err != nil {
		return nil, classifyUpstream(err, msgDetailFailed)
	}
	return raw, nil
}

// allow charges one request against limiter. A failing limiter store lets
// the request through.
func (s *SearchService) allow(ctx context.Context, limiter ratelimit.Limiter, endpoint, client string) error {
	decision, err := limiter.Allow(ctx, client)
	if err != nil {
		logger.Get().Warn("rate limiter unavailable, allowing request",
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return nil
	}
	if !decision.Allowed {
		return &RateLimitError{
			Endpoint:   endpoint,
			Limit:      decision.Limit,
			RetryAfter: decision.RetryAfter(s.now()),
		}
	}
	return nil
}

func (s *SearchService) cachedSearch(ctx context.Context, key string) ([]RecipeResponse, bool) {
	recipes, ok, err := s.SearchCache.Get(ctx, key)
	if err != nil {
		logger.Get().Warn("search cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return recipes, ok
}

func (s *SearchService) cachedSuggestions(ctx context.Context, key string) ([]normalize.Suggestion, bool) {
	suggestions, ok, err := s.SuggestionCache.Get(ctx, key)
	if err != nil {
		logger.Get().Warn("suggestion cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return suggestions, ok
}

// detached bounds an upstream call by timeout only; a client disconnect does
// not abort it.
func (s *SearchService) detached(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}

func (s *SearchService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func searchSource(source string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case "", upstream.ProviderSpoonacular:
		return upstream.ProviderSpoonacular, nil
	case upstream.ProviderTheMealDB:
		return upstream.ProviderTheMealDB, nil
	default:
		return "", newError(ErrClient, "Unknown source "+strconv.Quote(source))
	}
}

// classifyUpstream maps a provider failure onto the error taxonomy.
func classifyUpstream(err error, message string) error {
	switch {
	case errors.Is(err, upstream.ErrQuotaExceeded):
		return wrapError(ErrQuotaExceeded, msgQuotaExceeded, err)
	case errors.Is(err, upstream.ErrNotFound):
		return wrapError(ErrNotFound, "Recipe not found", err)
	default:
		return wrapError(ErrUpstreamUnavailable, message, err)
	}
}

// NormalizeIngredients trims, lowercases, dedupes and sorts an ingredient
// list so equivalent requests share a cache entry.
func NormalizeIngredients(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		for _, part := range strings.Split(raw, ",") {
			v := strings.ToLower(strings.TrimSpace(part))
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func toResponses(recipes []*models.Recipe) []RecipeResponse {
	out := make([]RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, *ToRecipeResponse(r))
	}
	return out
}
