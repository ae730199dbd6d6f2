package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/foodiex/go_checkout/internal/api"
	"github.com/foodiex/go_checkout/internal/cache"
	"github.com/foodiex/go_checkout/internal/cart"
	"github.com/foodiex/go_checkout/internal/checkout"
	h "github.com/foodiex/go_checkout/internal/http"
	"github.com/foodiex/go_checkout/internal/poller"
	"github.com/foodiex/go_checkout/internal/session"
)

type Config struct {
	HTTPPort          string
	OrderAPIURL       string
	ProductAPIURL     string
	AuthAPIURL        string
	AdminAPIURL       string
	AdminAPIToken     string
	JWTSecret         string
	CartStore         string
	MongoURI          string
	MongoDBName       string
	RedisAddr         string
	RedisPassword     string
	RequestTimeout    time.Duration
	ShutdownTimeout   time.Duration
	AdminPollInterval time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		OrderAPIURL:       getEnv("ORDER_API_URL", "http://localhost:5000"),
		ProductAPIURL:     getEnv("PRODUCT_API_URL", "http://localhost:5000"),
		AuthAPIURL:        getEnv("AUTH_API_URL", "http://localhost:5000"),
		AdminAPIURL:       getEnv("ADMIN_API_URL", "http://localhost:5000"),
		AdminAPIToken:     getEnv("ADMIN_API_TOKEN", ""),
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret"),
		CartStore:         getEnv("CART_STORE", "memory"),
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:       getEnv("MONGO_DB_NAME", "cartdb"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RequestTimeout:    30 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		AdminPollInterval: 30 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	// Cart storage backend
	var repo cart.Repository
	switch cfg.CartStore {
	case "mongo":
		mongoDB, err := cart.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		repo = cart.NewMongoRepository(mongoDB)
		log.Printf("Connected to MongoDB at %s", cfg.MongoURI)
	default:
		repo = cart.NewMemoryRepository()
		log.Println("Using in-memory cart store")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed: ", err)
	}
	log.Println("Redis ping succeeded")

	cartCache := cache.NewRedisCache(redisClient)
	carts := cart.NewService(repo, cartCache)

	// External collaborators
	orderAPI := api.NewOrderAPI(api.NewClient("orders", cfg.OrderAPIURL, cfg.RequestTimeout))
	productAPI := api.NewProductAPI(api.NewClient("products", cfg.ProductAPIURL, cfg.RequestTimeout))
	authAPI := api.NewAuthAPI(api.NewClient("auth", cfg.AuthAPIURL, cfg.RequestTimeout))
	adminAPI := api.NewAdminAPI(api.NewClient("admin", cfg.AdminAPIURL, cfg.RequestTimeout))

	// Session provider and checkout flow
	provider := session.NewProvider(cfg.JWTSecret)
	manager := checkout.NewManager(carts, orderAPI, cfg.RequestTimeout)

	// Admin order view refresher
	pollCtx, stopPoller := context.WithCancel(ctx)
	defer stopPoller()
	adminPoller := poller.New(adminAPI, cfg.AdminAPIToken, cfg.AdminPollInterval)
	go adminPoller.Run(pollCtx)

	// Handlers
	cartHandler := h.NewCartHandler(carts, productAPI, cfg.RequestTimeout)
	checkoutHandler := h.NewCheckoutHandler(manager, cfg.RequestTimeout)
	productHandler := h.NewProductHandler(productAPI, cfg.RequestTimeout)
	ordersHandler := h.NewOrdersHandler(orderAPI, cfg.RequestTimeout)
	adminHandler := h.NewAdminHandler(adminPoller, adminAPI, cfg.RequestTimeout)
	sessionHandler := h.NewSessionHandler(provider, authAPI, cfg.RequestTimeout)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.AuthMiddleware(provider))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			r.Delete("/", cartHandler.ClearCart)
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", checkoutHandler.Begin)
			r.Get("/", checkoutHandler.State)
			r.Delete("/", checkoutHandler.Abandon)
			r.Post("/shipping", checkoutHandler.SubmitShipping)
			r.Post("/payment", checkoutHandler.SubmitPayment)
			r.Post("/back", checkoutHandler.Back)
			r.Post("/order", checkoutHandler.PlaceOrder)
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.ListProducts)
			r.Get("/{product_id}", productHandler.GetProduct)
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordersHandler.ListOrders)
			r.Get("/{order_id}", ordersHandler.GetOrder)
		})
		r.Route("/admin", func(r chi.Router) {
			r.Get("/orders", adminHandler.ListOrders)
			r.Put("/orders/{order_id}/status", adminHandler.UpdateOrderStatus)
		})
		r.Get("/session", sessionHandler.Current)
		r.Post("/session/logout", sessionHandler.Logout)
		r.Get("/profile", sessionHandler.Profile)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Checkout server starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	stopPoller()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
