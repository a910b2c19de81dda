package main

import (
	"html/template"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"klarna_checkout_echo/internal/handlers"
	appMiddleware "klarna_checkout_echo/internal/middleware"
	"klarna_checkout_echo/internal/services"
)

const defaultKlarnaAPIURL = "https://api-na.playground.klarna.com"

// TemplateRenderer is a custom html/template renderer for Echo
// Uses per-page template cloning to allow each page to define its own blocks
type TemplateRenderer struct {
	templates map[string]*template.Template
}

// NewTemplateRenderer creates a template renderer with per-page cloning
func NewTemplateRenderer() *TemplateRenderer {
	templates := make(map[string]*template.Template)

	// Parse base layout and partials as the foundation
	baseTemplate := template.Must(template.ParseGlob("web/templates/layouts/*.html"))
	template.Must(baseTemplate.ParseGlob("web/templates/partials/*.html"))

	// Find all page templates and clone base for each
	pages, err := filepath.Glob("web/templates/pages/*.html")
	if err != nil {
		log.Fatal(err)
	}

	for _, page := range pages {
		pageName := filepath.Base(page)
		pageTemplate := template.Must(baseTemplate.Clone())
		template.Must(pageTemplate.ParseFiles(page))
		templates[pageName] = pageTemplate
	}

	return &TemplateRenderer{templates: templates}
}

// Render renders a template document
func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := t.templates[name]
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "Template not found: "+name)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	username := os.Getenv("KLARNA_API_USERNAME")
	password := os.Getenv("KLARNA_API_PASSWORD")
	if username == "" || password == "" {
		log.Fatal("KLARNA_API_USERNAME or KLARNA_API_PASSWORD env variables not found.")
	}

	apiURL := os.Getenv("KLARNA_API_URL")
	if apiURL == "" {
		apiURL = defaultKlarnaAPIURL
	}

	klarna := services.NewKlarnaService(username, password, apiURL)

	// Record store: postgres when DATABASE_URL is set, otherwise the
	// embedded single-file snapshot store.
	var store services.RecordStore
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		gormStore, err := services.NewGormStore(dsn)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		store = gormStore
	} else {
		dbPath := os.Getenv("KLARNA_DB_PATH")
		if dbPath == "" {
			dbPath = "klarna.db"
		}
		fileStore, err := services.NewFileStore(dbPath, services.DefaultAutosaveInterval)
		if err != nil {
			log.Fatalf("Failed to open store file: %v", err)
		}
		store = fileStore
	}

	// Pipeline locks: redis leases when REDIS_URL is set, in-process
	// mutexes otherwise.
	var locks services.KeyLocker
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		redisLocker, err := services.NewRedisLocker(redisURL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		locks = redisLocker
	} else {
		locks = services.NewLocalLocker()
	}

	checkout := services.NewCheckoutService(klarna, store, locks)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = appMiddleware.CustomErrorHandler

	// Template renderer with per-page cloning
	e.Renderer = NewTemplateRenderer()

	// Static file serving
	e.Static("/static", "web/static")

	// Initialize handlers
	dashboardHandler := handlers.NewDashboardHandler(checkout)
	sessionHandler := handlers.NewSessionHandler(checkout)
	orderHandler := handlers.NewOrderHandler(checkout)

	e.GET("/", dashboardHandler.Dashboard)

	// Session routes
	e.POST("/session/new", sessionHandler.StoreSession)
	e.GET("/session/:id", sessionHandler.SessionDetail)
	e.GET("/session/:id/payment", sessionHandler.PaymentPage)

	// Order routes
	e.POST("/order/new", orderHandler.StoreOrder)
	e.GET("/order/:id", orderHandler.OrderDetail)
	e.POST("/order/:id/capture", orderHandler.CaptureOrder)
	e.POST("/order/:id/refund", orderHandler.RefundOrder)
	e.POST("/order/:id/cancel", orderHandler.CancelOrder)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
