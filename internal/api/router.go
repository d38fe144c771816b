package api

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/man7ober/natours/internal/api/handler"
	"github.com/man7ober/natours/internal/api/middleware"
	"github.com/man7ober/natours/internal/core/domain"
	"github.com/man7ober/natours/internal/core/ports"
	natredis "github.com/man7ober/natours/internal/infrastructure/db/redis"
	"github.com/man7ober/natours/internal/metrics"
)

// Deps carries everything the router wires into handlers and middleware.
type Deps struct {
	Tours    ports.TourService
	Users    ports.UserService
	Auth     ports.AuthService
	Reviews  ports.ReviewService
	Bookings ports.BookingService
	Resizer  ports.ImageResizer

	Mongo   *mongo.Database
	Redis   *redis.Client
	Limiter *natredis.RateLimiter

	Log         zerolog.Logger
	Development bool
	TemplateDir string
	PublicDir   string
	ImageDir    string
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log, deps.Development)

	renderer, err := NewRenderer(deps.TemplateDir)
	if err != nil {
		return nil, err
	}
	e.Renderer = renderer

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.BodyLimit("10M"))
	e.Use(echomiddleware.Gzip())
	e.Use(observe())

	e.Static("/", deps.PublicDir)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// --- Handlers ---
	tourHandler := handler.NewTourHandler(deps.Tours, deps.Resizer, deps.ImageDir)
	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Users, deps.Resizer, deps.ImageDir)
	reviewHandler := handler.NewReviewHandler(deps.Reviews)
	bookingHandler := handler.NewBookingHandler(deps.Bookings)
	viewHandler := handler.NewViewHandler(deps.Tours, deps.Users, deps.Reviews, deps.Bookings, deps.Log)
	healthHandler := handler.NewHealthHandler(deps.Mongo, deps.Redis)

	protect := middleware.Protect(deps.Auth)
	optional := middleware.Optional(deps.Auth)
	adminOnly := middleware.RequireRoles(domain.RoleAdmin)
	staffOnly := middleware.RequireRoles(domain.RoleAdmin, domain.RoleLeadGuide)
	guidesAndUp := middleware.RequireRoles(domain.RoleAdmin, domain.RoleLeadGuide, domain.RoleGuide)
	usersOnly := middleware.RequireRoles(domain.RoleUser)

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	// --- Views ---
	e.GET("/", viewHandler.Overview, optional)
	e.GET("/tour/:slug", viewHandler.Tour, optional)
	e.GET("/login", viewHandler.Login, optional)
	e.GET("/signup", viewHandler.Signup, optional)
	e.GET("/account", viewHandler.Account, protect)
	e.GET("/my-tours", viewHandler.MyTours, protect)
	e.GET("/my-reviews", viewHandler.MyReviews, protect)
	e.GET("/my-billings", viewHandler.MyBillings, protect)
	e.GET("/admin-tours", viewHandler.AdminTours, protect, adminOnly)
	e.GET("/admin-users", viewHandler.AdminUsers, protect, adminOnly)
	e.GET("/admin-reviews", viewHandler.AdminReviews, protect, adminOnly)
	e.GET("/admin-billings", viewHandler.AdminBillings, protect, adminOnly)

	// --- API ---
	apiGroup := e.Group("/api", middleware.RateLimit(deps.Limiter, deps.Log))

	tours := apiGroup.Group("/v1/tours")
	tours.GET("", tourHandler.List)
	tours.POST("", tourHandler.Create, protect, staffOnly)
	tours.GET("/top-5-cheap", tourHandler.TopCheap)
	tours.GET("/top-5-expensive", tourHandler.TopExpensive)
	tours.GET("/stats", tourHandler.Stats)
	tours.GET("/monthly-plan/:year", tourHandler.MonthlyPlan, protect, guidesAndUp)
	tours.GET("/within/:distance/center/:latlng/unit/:unit", tourHandler.Within)
	tours.GET("/distances/:latlng/unit/:unit", tourHandler.Distances)
	tours.GET("/:id", tourHandler.Get)
	tours.PATCH("/:id", tourHandler.Update, protect, staffOnly)
	tours.PATCH("/:id/images", tourHandler.UploadImages, protect, staffOnly)
	tours.DELETE("/:id", tourHandler.Delete, protect, staffOnly)

	// Nested resources reuse the :id segment name; echo requires one param
	// name per path position.
	tours.GET("/:id/reviews", reviewHandler.List)
	tours.POST("/:id/reviews", reviewHandler.Create, protect, usersOnly)
	tours.GET("/:id/bookings", bookingHandler.List, protect, staffOnly)

	users := apiGroup.Group("/v1/users")
	users.POST("/signup", authHandler.Signup)
	users.POST("/login", authHandler.Login)
	users.GET("/logout", authHandler.Logout)
	users.POST("/forgot-password", authHandler.ForgotPassword)
	users.PATCH("/reset-password/:token", authHandler.ResetPassword)

	users.PATCH("/update-password", authHandler.UpdatePassword, protect)
	users.GET("/me", userHandler.Me, protect)
	users.PATCH("/update-me", userHandler.UpdateMe, protect)
	users.DELETE("/delete-me", userHandler.DeleteMe, protect)

	users.GET("", userHandler.List, protect, adminOnly)
	users.GET("/:id", userHandler.Get, protect, adminOnly)
	users.PATCH("/:id", userHandler.Update, protect, adminOnly)
	users.DELETE("/:id", userHandler.Delete, protect, adminOnly)

	reviews := apiGroup.Group("/v1/reviews")
	reviews.GET("", reviewHandler.List)
	reviews.POST("", reviewHandler.Create, protect, usersOnly)
	reviews.GET("/:id", reviewHandler.Get)
	reviews.PATCH("/:id", reviewHandler.Update, protect, usersOnly)
	reviews.DELETE("/:id", reviewHandler.Delete, protect, usersOnly)

	bookings := apiGroup.Group("/v1/bookings", protect)
	bookings.GET("/checkout-session/:tourId", bookingHandler.CheckoutSession)
	bookings.GET("", bookingHandler.List, staffOnly)
	bookings.POST("", bookingHandler.Create, staffOnly)
	bookings.GET("/:id", bookingHandler.Get, staffOnly)
	bookings.PATCH("/:id", bookingHandler.Update, staffOnly)
	bookings.DELETE("/:id", bookingHandler.Delete, staffOnly)

	return e, nil
}

// observe records request duration per route pattern and status code.
func observe() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			metrics.RequestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
				strconv.Itoa(c.Response().Status),
			).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
