package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const arrabiata = `{
  "idMeal": "52771",
  "strMeal": "Spicy Arrabiata Penne",
  "strCategory": "Vegetarian",
  "strArea": "Italian",
  "strInstructions": "Bring a large pot of water to a boil.\r\nAdd the penne.\r\n\r\nServe.",
  "strMealThumb": "https://www.themealdb.com/images/media/meals/ustsqw1468250014.jpg",
  "strTags": "Pasta,Curry",
  "strIngredient1": "penne rigate",
  "strMeasure1": "1 pound",
  "strIngredient2": "olive oil",
  "strMeasure2": "1/4 cup",
  "strIngredient3": "",
  "strMeasure3": "",
  "strIngredient4": null,
  "strMeasure4": null
}`

func TestMealUnmarshal_FoldsNumberedFields(t *testing.T) {
	var meal Meal
	require.NoError(t, json.Unmarshal([]byte(arrabiata), &meal))

	assert.Equal(t, "52771", meal.ID)
	assert.Equal(t, "Spicy Arrabiata Penne", meal.Name)
	assert.Equal(t, "Vegetarian", meal.Category)
	assert.Equal(t, "penne rigate", meal.Ingredients[0])
	assert.Equal(t, "1/4 cup", meal.Measures[1])
	assert.Equal(t, "", meal.Ingredients[3])
	assert.Equal(t, "", meal.Ingredients[19])
}

func TestMealUnmarshal_RejectsNonStringFields(t *testing.T) {
	var meal Meal
	err := json.Unmarshal([]byte(`{"idMeal": 52771, "strMeal": "x"}`), &meal)
	assert.Error(t, err)
}

func TestMealDBSearch_SkipsMalformedRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.php", r.URL.Path)
		assert.Equal(t, "penne", r.URL.Query().Get("s"))
		w.Write([]byte(`{"meals": [` + arrabiata + `, {"idMeal": 1, "strMeal": ["bad"]}]}`))
	}))
	defer srv.Close()

	batch, err := NewMealDBClient(srv.URL).Search(context.Background(), "penne")
	require.NoError(t, err)
	require.Len(t, batch.Meals, 1)
	assert.Equal(t, 1, batch.Skipped)
}

func TestMealDBSearch_NullMealsIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meals": null}`))
	}))
	defer srv.Close()

	batch, err := NewMealDBClient(srv.URL).Search(context.Background(), "zzzz")
	require.NoError(t, err)
	assert.Empty(t, batch.Meals)
}

func TestMealDBLookup_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lookup.php", r.URL.Path)
		w.Write([]byte(`{"meals": null}`))
	}))
	defer srv.Close()

	_, err := NewMealDBClient(srv.URL).Lookup(context.Background(), "1")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMealDBLookup_Found(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "52771", r.URL.Query().Get("i"))
		w.Write([]byte(`{"meals": [` + arrabiata + `]}`))
	}))
	defer srv.Close()

	meal, err := NewMealDBClient(srv.URL).Lookup(context.Background(), "52771")
	require.NoError(t, err)
	assert.Equal(t, "Italian", meal.Area)
}

func TestMealDBFilterByCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/filter.php", r.URL.Path)
		assert.Equal(t, "Seafood", r.URL.Query().Get("c"))
		w.Write([]byte(`{"meals": [
			{"strMeal": "Baked salmon", "strMealThumb": "x.jpg", "idMeal": "52959"},
			{"strMeal": "No id"}
		]}`))
	}))
	defer srv.Close()

	meals, err := NewMealDBClient(srv.URL).FilterByCategory(context.Background(), "Seafood")
	require.NoError(t, err)
	require.Len(t, meals, 1)
	assert.Equal(t, "52959", meals[0].ID)
}

func TestMealDB_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewMealDBClient(srv.URL).Search(context.Background(), "x")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, ProviderTheMealDB, se.Provider)
	assert.False(t, errors.Is(err, ErrNotFound))
}
