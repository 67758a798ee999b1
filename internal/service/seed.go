package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/windoze95/cookiify-api/internal/config"
	"github.com/windoze95/cookiify-api/internal/logger"
	"github.com/windoze95/cookiify-api/internal/models"
	"github.com/windoze95/cookiify-api/internal/normalize"
	"github.com/windoze95/cookiify-api/internal/repository"
	"github.com/windoze95/cookiify-api/internal/upstream"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SeedMealDBCategories are the TheMealDB categories pulled by a seed run.
var SeedMealDBCategories = []string{"Beef", "Chicken", "Dessert", "Lamb", "Pasta", "Pork", "Seafood", "Vegetarian", "Breakfast"}

// SeedSpoonacularCuisines are the Spoonacular cuisines pulled by a seed run.
var SeedSpoonacularCuisines = []string{"Indian", "Italian", "Chinese", "Mexican", "Thai", "Japanese", "American", "Mediterranean"}

// ErrNothingSeeded is returned when neither provider yielded a usable recipe.
var ErrNothingSeeded = errors.New("no recipes fetched")

// SeedOptions bounds a seed run.
type SeedOptions struct {
	MealDBPerCategory     int
	SpoonacularPerCuisine int
	// Pause is the delay between Spoonacular requests.
	Pause time.Duration
}

// DefaultSeedOptions returns the options used by cmd/seed.
func DefaultSeedOptions() SeedOptions {
	return SeedOptions{
		MealDBPerCategory:     10,
		SpoonacularPerCuisine: 5,
		Pause:                 time.Second,
	}
}

// SeedReport summarizes a seed run.
type SeedReport struct {
	Skipped     bool
	Existing    int64
	MealDB      int
	Spoonacular int
	Rejected    int
}

// Total is the number of recipes inserted.
func (r *SeedReport) Total() int {
	return r.MealDB + r.Spoonacular
}

// SeedService fills an empty recipe store from the upstream providers.
type SeedService struct {
	Cfg         *config.Config
	Repo        repository.RecipeRepo
	Spoonacular upstream.SpoonacularAPI
	MealDB      upstream.MealDBAPI
	Normalizer  *normalize.Normalizer
}

// NewSeedService is the constructor function for initializing a new SeedService
func NewSeedService(cfg *config.Config, repo repository.RecipeRepo, spoonacular upstream.SpoonacularAPI, mealDB upstream.MealDBAPI, normalizer *normalize.Normalizer) *SeedService {
	return &SeedService{
		Cfg:         cfg,
		Repo:        repo,
		Spoonacular: spoonacular,
		MealDB:      mealDB,
		Normalizer:  normalizer,
	}
}

// Seed fetches both providers concurrently and bulk inserts every recipe that
// satisfies the store invariants. A store that already holds recipes is left
// untouched. A cancelled ctx aborts the run before anything is inserted.
func (s *SeedService) Seed(ctx context.Context, opts SeedOptions) (*SeedReport, error) {
	existing, err := s.Repo.CountRecipes()
	if err != nil {
		return nil, fmt.Errorf("seed: counting recipes: %w", err)
	}
	if existing > 0 {
		logger.Get().Info("store already has recipes, skipping seed", zap.Int64("count", existing))
		return &SeedReport{Skipped: true, Existing: existing}, nil
	}

	var mealDB, spoonacular []*models.Recipe
	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() (err error) {
		mealDB, err = s.fetchMealDB(gctx, opts.MealDBPerCategory)
		return err
	})
	grp.Go(func() (err error) {
		spoonacular, err = s.fetchSpoonacular(gctx, opts.SpoonacularPerCuisine, opts.Pause)
		return err
	})
	if err := grp.Wait(); err != nil {
		return nil, fmt.Errorf("seed: fetching recipes: %w", err)
	}

	report := &SeedReport{}
	mealDB, report.Rejected = validRecipes(mealDB)
	var rejected int
	spoonacular, rejected = validRecipes(spoonacular)
	report.Rejected += rejected
	report.MealDB = len(mealDB)
	report.Spoonacular = len(spoonacular)

	all := append(mealDB, spoonacular...)
	if len(all) == 0 {
		return report, ErrNothingSeeded
	}
	if err := s.Repo.CreateRecipes(all); err != nil {
		return nil, fmt.Errorf("seed: inserting recipes: %w", err)
	}

	logger.Get().Info("seeded recipes",
		zap.Int("themealdb", report.MealDB),
		zap.Int("spoonacular", report.Spoonacular),
		zap.Int("rejected", report.Rejected))
	return report, nil
}

func (s *SeedService) fetchMealDB(ctx context.Context, perCategory int) ([]*models.Recipe, error) {
	var meals []upstream.Meal
	for _, category := range SeedMealDBCategories {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		summaries, err := s.MealDB.FilterByCategory(ctx, category)
		if err != nil {
			logger.Get().Warn("failed to list themealdb category", zap.String("category", category), zap.Error(err))
			continue
		}
		if len(summaries) > perCategory {
			summaries = summaries[:perCategory]
		}
		for _, summary := range summaries {
			meal, err := s.MealDB.Lookup(ctx, summary.ID)
			if err != nil {
				logger.Get().Warn("failed to fetch themealdb meal", zap.String("id", summary.ID), zap.Error(err))
				continue
			}
			meals = append(meals, *meal)
		}
		logger.Get().Info("fetched themealdb category", zap.String("category", category), zap.Int("count", len(summaries)))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	recipes, _ := normalize.Batch(upstream.ProviderTheMealDB, meals, s.Normalizer.FromMealDB)
	return recipes, nil
}

func (s *SeedService) fetchSpoonacular(ctx context.Context, perCuisine int, pause time.Duration) ([]*models.Recipe, error) {
	if !s.Cfg.SpoonacularConfigured() {
		logger.Get().Warn("spoonacular api key not configured, skipping spoonacular recipes")
		return nil, nil
	}

	var recipes []*models.Recipe
	for i, cuisine := range SeedSpoonacularCuisines {
		if i > 0 && pause > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(pause):
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := s.Spoonacular.ComplexSearch(ctx, upstream.SearchParams{Cuisine: cuisine, Number: perCuisine})
		if err != nil {
			if errors.Is(err, upstream.ErrQuotaExceeded) {
				logger.Get().Error("spoonacular quota exceeded, stopping spoonacular fetch", zap.Error(err))
				break
			}
			logger.Get().Warn("failed to search spoonacular cuisine", zap.String("cuisine", cuisine), zap.Error(err))
			continue
		}

		normalized, _ := normalize.Batch(upstream.ProviderSpoonacular, res.Recipes, s.Normalizer.FromSpoonacular)
		for _, r := range normalized {
			if r.Cuisine == s.Normalizer.Rules.DefaultCuisine {
				r.Cuisine = cuisine
				r.Tags = appendTag(r.Tags, cuisine)
			}
		}
		recipes = append(recipes, normalized...)
		logger.Get().Info("fetched spoonacular cuisine", zap.String("cuisine", cuisine), zap.Int("count", len(normalized)))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return recipes, nil
}

// validRecipes drops recipes that violate the store invariants.
func validRecipes(in []*models.Recipe) ([]*models.Recipe, int) {
	out := make([]*models.Recipe, 0, len(in))
	rejected := 0
	for _, r := range in {
		if err := r.Validate(); err != nil {
			rejected++
			logger.Get().Warn("rejecting seed recipe",
				zap.String("source", string(r.Source)),
				zap.String("external_id", r.ExternalID),
				zap.Error(err))
			continue
		}
		out = append(out, r)
	}
	return out, rejected
}

func appendTag(tags models.StringList, tag string) models.StringList {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return tags
		}
	}
	return append(tags, tag)
}
