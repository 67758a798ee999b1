package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Provider names, also used as the "source" of the records they return.
const (
	ProviderSpoonacular = "spoonacular"
	ProviderTheMealDB   = "themealdb"
)

// SpoonacularAPI is the subset of the Spoonacular API the service layer uses.
type SpoonacularAPI interface {
	ComplexSearch(ctx context.Context, params SearchParams) (*SpoonacularSearchResult, error)
	RecipeInformation(ctx context.Context, id string) (*SpoonacularRecipe, error)
	RecipeInformationRaw(ctx context.Context, id string) (json.RawMessage, error)
	FindByIngredients(ctx context.Context, ingredients []string, number int) (*SuggestionResult, error)
}

// MealDBAPI is the subset of TheMealDB's free API the service layer uses.
type MealDBAPI interface {
	Search(ctx context.Context, query string) (*MealBatch, error)
	Lookup(ctx context.Context, id string) (*Meal, error)
	FilterByCategory(ctx context.Context, category string) ([]MealSummary, error)
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 15 * time.Second,
	}
}

// getJSON issues a GET and returns the body of a 200 response. Any other
// status becomes a *StatusError. Credentials are passed in header, never in
// params, since request URLs end up in error messages.
func getJSON(ctx context.Context, client *http.Client, provider, endpoint string, params url.Values, header http.Header) ([]byte, error) {
	reqURL := endpoint
	if len(params) > 0 {
		reqURL = fmt.Sprintf("%s?%s", endpoint, params.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", provider, err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", provider, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
		}
	}
	return body, nil
}

// errorMessage pulls the "message" field out of an error body, falling back
// to a truncated copy of the raw body.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
