package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	// Registers the swagger spec served at /swagger/*.
	_ "github.com/lalaba/merchant-app/docs"
	"github.com/lalaba/merchant-app/internal/api/handler"
	"github.com/lalaba/merchant-app/internal/api/middleware"
	"github.com/lalaba/merchant-app/internal/core/domain"
	"github.com/lalaba/merchant-app/internal/core/ports"
	"github.com/lalaba/merchant-app/internal/pkg/validate"
)

// Deps are the services behind the local API.
type Deps struct {
	Gate      ports.SessionGate
	Navigator ports.Navigator
	Auth      ports.AuthService
	Setup     handler.SetupScreen
	Orders    ports.OrderService
	Wallet    ports.WalletService
	Locations ports.LocationService
	// Health maps dependency names to readiness checks.
	Health    map[string]handler.Pinger
	Validator *validate.Validator
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	if d.Validator == nil {
		d.Validator = validate.New()
	}
	e.Validator = d.Validator

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("merchant_api"))

	// --- Handlers ---
	sessionHandler := handler.NewSessionHandler(d.Gate, d.Navigator)
	authHandler := handler.NewAuthHandler(d.Auth)
	setupHandler := handler.NewSetupHandler(d.Setup)
	orderHandler := handler.NewOrderHandler(d.Orders)
	walletHandler := handler.NewWalletHandler(d.Wallet)
	locationHandler := handler.NewLocationHandler(d.Locations)

	// --- Session gate ---
	e.GET("/session", sessionHandler.Get)
	e.POST("/navigate", sessionHandler.Navigate)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)

	verify := e.Group("/auth/verify", middleware.RequireState(d.Gate, domain.StateUnverified, domain.StateAuthorized))
	verify.POST("/resend", authHandler.ResendVerification)
	verify.POST("/check", authHandler.CheckVerification)
	verify.POST("/confirm", authHandler.ConfirmVerification)

	// --- Merchant screens (authorized only) ---
	authorized := middleware.RequireState(d.Gate, domain.StateAuthorized)

	setup := e.Group("/setup", authorized)
	setup.GET("", setupHandler.Get)
	setup.POST("/info", setupHandler.SubmitInfo)
	setup.POST("/categories", setupHandler.AddCategory)
	setup.POST("/categories/save", setupHandler.SaveCategories)
	setup.POST("/products", setupHandler.AddProduct)
	setup.GET("/products/options", setupHandler.ProductOptions)
	setup.POST("/products/done", setupHandler.FinishProducts)
	setup.PUT("/services/:name", setupHandler.SaveService)
	setup.POST("/finish", setupHandler.Finish)

	orders := e.Group("/orders", authorized)
	orders.GET("/incoming", orderHandler.Incoming)
	orders.GET("/accepted", orderHandler.Accepted)
	orders.GET("/remote", orderHandler.Remote)
	orders.POST("/:id/accept", orderHandler.Accept)

	e.GET("/wallet", walletHandler.Get, authorized)

	// Pickers are used on the setup screen; the gate already guards it.
	locations := e.Group("/locations", authorized)
	locations.GET("/cities", locationHandler.Cities)
	locations.GET("/cities/:code/barangays", locationHandler.Barangays)
	locations.GET("/geocode", locationHandler.Geocode)

	// --- Health checks (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Health)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
