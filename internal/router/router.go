package router

import (
	"context"
	"math/rand"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/windoze95/cookiify-api/internal/cache"
	"github.com/windoze95/cookiify-api/internal/config"
	"github.com/windoze95/cookiify-api/internal/handlers"
	"github.com/windoze95/cookiify-api/internal/logger"
	"github.com/windoze95/cookiify-api/internal/middleware"
	"github.com/windoze95/cookiify-api/internal/normalize"
	"github.com/windoze95/cookiify-api/internal/ratelimit"
	"github.com/windoze95/cookiify-api/internal/repository"
	"github.com/windoze95/cookiify-api/internal/service"
	"github.com/windoze95/cookiify-api/internal/upstream"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Global throttle settings, applied before the per-endpoint budgets.
const (
	throttleRPS             = 10
	throttleBurst           = 30
	throttleCleanupInterval = 5 * time.Minute
	throttleExpiration      = 15 * time.Minute
	redisKeyPrefix          = "cookiify:"
)

// Deps are the external resources the router wires into its services.
type Deps struct {
	DB *gorm.DB
	// Redis is optional. When set, caches and rate limit windows are shared
	// across processes.
	Redis       redis.UniversalClient
	Spoonacular upstream.SpoonacularAPI
	MealDB      upstream.MealDBAPI
	Picker      normalize.Picker
}

// SetupRouter sets up the Gin router. Background cleanup stops when ctx is done.
func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowCredentials = true
	corsConfig.AllowOrigins = cfg.EnvVars.FrontendURLs
	corsConfig.AddAllowHeaders("Authorization")
	r.Use(cors.New(corsConfig))

	// Add request ID middleware for request correlation
	r.Use(logger.RequestIDMiddleware())
	r.Use(logger.AccessLogMiddleware())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.ThrottleByIP(ctx, throttleRPS, throttleBurst, throttleCleanupInterval, throttleExpiration))

	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Redis)
	r.GET("/", healthHandler.Welcome)
	r.GET("/api/health", healthHandler.Health)

	// User-related routes setup
	recipeRepo := repository.NewRecipeRepository(deps.DB)
	userRepo := repository.NewUserRepository(deps.DB)
	userService := service.NewUserService(cfg, userRepo)
	userHandler := handlers.NewUserHandler(userService)

	// Recipe and review routes setup
	recipeService := service.NewRecipeService(cfg, recipeRepo, userRepo)
	recipeHandler := handlers.NewRecipeHandler(recipeService)
	reviewService := service.NewReviewService(cfg, repository.NewReviewRepository(deps.DB))
	reviewHandler := handlers.NewReviewHandler(reviewService)

	// Upstream search routes setup
	searchService := newSearchService(ctx, cfg, deps)
	searchHandler := handlers.NewSearchHandler(searchService)

	auth := []gin.HandlerFunc{middleware.VerifyTokenMiddleware(cfg), middleware.AttachUserToContext(userService)}
	protected := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, auth...), h)
	}

	v1 := r.Group("/v1")
	{
		// Search routes
		v1.GET("/search", searchHandler.SearchRecipes)
		v1.GET("/search/:externalId", searchHandler.GetSearchResult)
		v1.GET("/suggestions", searchHandler.GetSuggestions)
		v1.GET("/suggestions/:externalId", searchHandler.GetSuggestion)

		// Recipe routes
		v1.GET("/recipes", recipeHandler.ListRecipes)
		v1.GET("/recipes/featured", recipeHandler.GetFeaturedRecipes)
		v1.GET("/recipes/categories", recipeHandler.GetCategories)
		v1.GET("/recipes/cuisines", recipeHandler.GetCuisines)
		v1.GET("/recipes/:recipe_id", recipeHandler.GetRecipe)
		v1.POST("/recipes", protected(recipeHandler.CreateRecipe)...)
		v1.PUT("/recipes/:recipe_id", protected(recipeHandler.UpdateRecipe)...)
		v1.DELETE("/recipes/:recipe_id", protected(recipeHandler.DeleteRecipe)...)
		v1.POST("/recipes/:recipe_id/favorite", protected(recipeHandler.ToggleFavorite)...)

		// Review routes
		v1.GET("/reviews/recipe/:recipe_id", reviewHandler.ListRecipeReviews)
		v1.POST("/reviews", protected(reviewHandler.CreateReview)...)
		v1.PUT("/reviews/:review_id", protected(reviewHandler.UpdateReview)...)
		v1.DELETE("/reviews/:review_id", protected(reviewHandler.DeleteReview)...)

		// Auth and user routes
		v1.POST("/auth/register", userHandler.CreateUser)
		v1.POST("/auth/login", userHandler.LoginUser)
		v1.POST("/auth/refresh", userHandler.RefreshToken)
		v1.GET("/users/me", protected(userHandler.GetMe)...)
		v1.PUT("/users/me", protected(userHandler.UpdateMe)...)
		v1.GET("/users/me/favorites", protected(recipeHandler.GetFavorites)...)
	}

	return r
}

// newSearchService builds the aggregation service over Redis-backed stores
// when Redis is configured and in-process stores otherwise.
func newSearchService(ctx context.Context, cfg *config.Config, deps Deps) *service.SearchService {
	spoonacular := deps.Spoonacular
	if spoonacular == nil {
		spoonacular = upstream.NewSpoonacularClient(cfg.EnvVars.SpoonacularAPIKey, cfg.EnvVars.SpoonacularBaseURL)
	}
	mealDB := deps.MealDB
	if mealDB == nil {
		mealDB = upstream.NewMealDBClient(cfg.EnvVars.TheMealDBBaseURL)
	}
	picker := deps.Picker
	if picker == nil {
		picker = normalize.RandomPicker(rand.New(rand.NewSource(time.Now().UnixNano())))
	}
	normalizer := normalize.New(cfg.CategoryRules, picker)

	var (
		searchStore     cache.Store
		suggestionStore cache.Store
		limiters        service.Limiters
	)
	if deps.Redis != nil {
		logger.Get().Info("using redis for result caches and rate limits")
		searchStore = cache.NewRedisStore(deps.Redis, redisKeyPrefix+"cache:search:", cache.SearchTTL)
		suggestionStore = cache.NewRedisStore(deps.Redis, redisKeyPrefix+"cache:suggestions:", cache.SuggestionTTL)
		limiters = service.Limiters{
			Search:           ratelimit.NewRedisWindow(deps.Redis, redisKeyPrefix+"rl:", ratelimit.SearchRule, nil),
			SearchDetail:     ratelimit.NewRedisWindow(deps.Redis, redisKeyPrefix+"rl:", ratelimit.SearchDetailRule, nil),
			Suggestions:      ratelimit.NewRedisWindow(deps.Redis, redisKeyPrefix+"rl:", ratelimit.SuggestionRule, nil),
			SuggestionDetail: ratelimit.NewRedisWindow(deps.Redis, redisKeyPrefix+"rl:", ratelimit.SuggestionDetailRule, nil),
		}
	} else {
		searchStore = cache.NewMemoryStore()
		suggestionStore = cache.NewMemoryStore()
		limiters = service.NewMemoryLimiters(time.Now)
		go sweepLimiters(ctx, limiters)
	}

	return service.NewSearchService(
		cfg,
		spoonacular,
		mealDB,
		normalizer,
		cache.New[[]service.RecipeResponse](searchStore, cache.SearchTTL, nil),
		cache.New[[]normalize.Suggestion](suggestionStore, cache.SuggestionTTL, nil),
		limiters,
	)
}

// sweepLimiters periodically drops expired in-memory rate limit windows.
func sweepLimiters(ctx context.Context, limiters service.Limiters) {
	ticker := time.NewTicker(throttleCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := 0
			for _, l := range []ratelimit.Limiter{limiters.Search, limiters.SearchDetail, limiters.Suggestions, limiters.SuggestionDetail} {
				if fw, ok := l.(*ratelimit.FixedWindow); ok {
					removed += fw.Sweep()
				}
			}
			if removed > 0 {
				logger.Get().Debug("swept expired rate limit windows", zap.Int("removed", removed))
			}
		}
	}
}
