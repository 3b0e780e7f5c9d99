package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"librarydesk/internal/auth"
	"librarydesk/internal/config"
	"librarydesk/internal/handler"
	"librarydesk/internal/model"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth  *handler.AuthHandler
	Users *handler.UserHandler
	Books *handler.BookHandler
	Loans *handler.LoanHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, tokens auth.TokenStoreInterface, h Handlers) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.POST("/auth/logout", h.Auth.Logout)

	// Secured routes (require an access token)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
	}), RequireAccessToken(tokens))

	secured.GET("/me", h.Users.Me)

	// Catalog routes
	secured.GET("/books", h.Books.ListBooks)
	secured.GET("/books/search", h.Books.Search)
	secured.GET("/books/:id", h.Books.GetBook)

	// Loan routes
	secured.POST("/loans/borrow", h.Loans.Borrow)
	secured.POST("/loans/return", h.Loans.Return)
	secured.GET("/loans", h.Loans.MyLoans)
	secured.GET("/loans/history", h.Loans.History)
	secured.GET("/loans/eligibility", h.Loans.Eligibility)

	// Admin routes
	admin := secured.Group("/admin", RequireRole(model.RoleAdmin))
	admin.GET("/books", h.Books.ListAllBooks)
	admin.POST("/books", h.Books.CreateBook)
	admin.PUT("/books/:id", h.Books.UpdateBook)
	admin.DELETE("/books/:id", h.Books.DeleteBook)
	admin.GET("/users", h.Users.ListUsers)
	admin.GET("/users/:username/loans", h.Loans.UserLoans)
	admin.GET("/loans/overdue", h.Loans.Overdue)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the request validator installed by Register.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
