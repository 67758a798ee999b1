package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/cookiify-api/internal/service"
)

// SearchHandler handles the upstream-backed search and suggestion requests.
type SearchHandler struct {
	Service *service.SearchService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{Service: searchService}
}

// SearchRecipes handles GET /v1/search?query=...&cuisine=&diet=&type=&number=&source=
func (h *SearchHandler) SearchRecipes(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		query = c.Query("q")
	}

	result, err := h.Service.Search(c.Request.Context(), c.ClientIP(), service.SearchParams{
		Query:   query,
		Cuisine: c.Query("cuisine"),
		Diet:    c.Query("diet"),
		Type:    c.Query("type"),
		Number:  queryInt(c, "number", 0),
		Source:  c.Query("source"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	total := len(result.Recipes)
	c.JSON(http.StatusOK, Envelope{
		Success:      true,
		Data:         result.Recipes,
		Cached:       boolPtr(result.Cached),
		Source:       result.Source,
		TotalResults: &total,
		Message:      result.Message,
	})
}

// GetSearchResult handles GET /v1/search/:externalId?source=
func (h *SearchHandler) GetSearchResult(c *gin.Context) {
	recipe, err := h.Service.SearchDetail(c.Request.Context(), c.ClientIP(), c.Query("source"), c.Param("externalId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, recipe)
}

// GetSuggestions handles GET /v1/suggestions?ingredients=a,b,c
func (h *SearchHandler) GetSuggestions(c *gin.Context) {
	result, err := h.Service.Suggest(c.Request.Context(), c.ClientIP(), c.QueryArray("ingredients"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    result.Suggestions,
		Cached:  boolPtr(result.Cached),
	})
}

// GetSuggestion handles GET /v1/suggestions/:externalId and returns the
// provider's recipe information as-is.
func (h *SearchHandler) GetSuggestion(c *gin.Context) {
	raw, err := h.Service.SuggestionDetail(c.Request.Context(), c.ClientIP(), c.Param("externalId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, raw)
}
