package http

import (
	"log/slog"
	"time"

	"github.com/geocoder89/bookrental/internal/auth"
	"github.com/geocoder89/bookrental/internal/config"
	"github.com/geocoder89/bookrental/internal/domain/user"
	"github.com/geocoder89/bookrental/internal/http/handlers"
	"github.com/geocoder89/bookrental/internal/http/middlewares"
	"github.com/geocoder89/bookrental/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type RentalRepo interface {
	handlers.RentalStore
	middlewares.RentalLookup
}

type Tokens interface {
	Issue(profile user.Profile) (string, error)
	Verify(token string) (*auth.Claims, error)
}

// Deps are the collaborators the router wires into handlers and guards. The
// Postgres repos and the in-memory store both satisfy the repo interfaces.
type Deps struct {
	Users      handlers.UserStore
	Books      handlers.BookStore
	Categories handlers.CategoryStore
	Rentals    RentalRepo
	History    handlers.HistoryStore
	Tokens     Tokens

	// optional
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
	Ping     func() error
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware(cfg.OTELServiceName))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	// health
	h := handlers.NewHealthHandler(deps.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	guards := middlewares.NewGuards(deps.Tokens, deps.Users, deps.Rentals, deps.Prom)

	usersHandler := handlers.NewUsersHandler(deps.Users, deps.Tokens, deps.Prom)
	booksHandler := handlers.NewBooksHandler(deps.Books)
	categoriesHandler := handlers.NewCategoriesHandler(deps.Categories, cfg.CategoryCacheTTL)
	rentalsHandler := handlers.NewRentalsHandler(deps.Rentals, deps.History)

	loggedIn := guards.Chain(guards.IsLoggedIn())
	admin := guards.Chain(guards.IsLoggedIn(), guards.IsAdmin())
	owner := guards.Chain(guards.IsLoggedIn(), guards.IsAccountOwner())

	credLimiter := middlewares.NewRateLimiter(cfg.AuthRateLimitPerMinute, time.Minute)

	users := r.Group("/users")
	{
		users.POST("/signup", credLimiter.Middleware(middlewares.KeyByIP), usersHandler.SignUp)
		users.POST("/signin",
			credLimiter.Middleware(middlewares.KeyByIP),
			guards.Chain(guards.ValidateLogin()),
			usersHandler.Login,
		)

		users.GET("/email", loggedIn, usersHandler.GetUserByEmail)
		users.GET("/:userId", owner, usersHandler.GetUserByID)
		users.PUT("/:userId", owner, usersHandler.EditProfile)

		// rentals
		users.POST("/:userId/books",
			guards.Chain(guards.IsLoggedIn(), guards.IsAccountOwner(), guards.CheckUserPlan(), guards.HasRentedBefore()),
			rentalsHandler.RentBook,
		)
		users.PUT("/:userId/books", owner, rentalsHandler.ReturnBook)
		users.GET("/:userId/books", owner, rentalsHandler.ListRentals)
		users.GET("/:userId/history", owner, rentalsHandler.ListHistory)
	}

	books := r.Group("/books")
	{
		books.GET("", loggedIn, booksHandler.ListBooks)
		books.POST("", admin, booksHandler.CreateBook)

		books.GET("/category", loggedIn, categoriesHandler.ListCategories)
		books.POST("/category", admin, categoriesHandler.CreateCategory)

		books.GET("/:bookId", loggedIn, booksHandler.GetBook)
		books.PUT("/:bookId", admin, booksHandler.UpdateBook)
		books.DELETE("/:bookId", admin, booksHandler.DeleteBook)
	}

	return r
}
