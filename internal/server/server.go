package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/mlecomte/foyer/internal/avatar"
	"github.com/mlecomte/foyer/internal/category"
	"github.com/mlecomte/foyer/internal/handler"
	"github.com/mlecomte/foyer/internal/household"
	"github.com/mlecomte/foyer/internal/middleware"
	"github.com/mlecomte/foyer/internal/push"
	"github.com/mlecomte/foyer/internal/recipe"
	"github.com/mlecomte/foyer/internal/store"
	"github.com/mlecomte/foyer/internal/sync"
	ws "github.com/mlecomte/foyer/internal/websocket"
)

// Config holds the external service configuration the server wires up.
type Config struct {
	Avatar          avatar.Config
	VAPIDPublicKey  string
	VAPIDPrivateKey string
}

type Server struct {
	db           *sql.DB
	engine       *sync.Engine
	hub          *ws.Hub
	authH        *handler.AuthHandler
	householdH   *handler.HouseholdHandler
	shoppingH    *handler.ShoppingHandler
	profileH     *handler.ProfileHandler
	recipeH      *handler.RecipeHandler
	pushH        *handler.PushHandler
	householdSvc *household.Service
	sessionStore *store.SessionStore
	rateLimiter  *middleware.RateLimiter
	pushService  *push.Service
	logger       *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	householdStore := store.NewHouseholdStore(db)
	shoppingStore := store.NewShoppingStore(db)
	pushStore := store.NewPushStore(db)

	engine := sync.NewEngine(shoppingStore, category.Default(), logger.With("component", "sync"))
	hub := ws.NewHub(engine, logger.With("component", "websocket"))

	householdSvc := household.NewService(householdStore, logger.With("component", "household"))
	recipeSvc := recipe.NewService()
	avatarSvc := avatar.NewService(cfg.Avatar)
	pushSvc := push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, userStore, pushStore, logger.With("component", "push"))

	return &Server{
		db:           db,
		engine:       engine,
		hub:          hub,
		authH:        handler.NewAuthHandler(userStore, sessionStore, logger.With("component", "auth")),
		householdH:   handler.NewHouseholdHandler(householdSvc, logger.With("component", "household_handler")),
		shoppingH:    handler.NewShoppingHandler(engine, householdSvc, pushSvc, logger.With("component", "shopping")),
		profileH:     handler.NewProfileHandler(userStore, sessionStore, avatarSvc, logger.With("component", "profile")),
		recipeH:      handler.NewRecipeHandler(recipeSvc, logger.With("component", "recipe")),
		pushH:        handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push_handler")),
		householdSvc: householdSvc,
		sessionStore: sessionStore,
		rateLimiter:  middleware.NewRateLimiter(),
		pushService:  pushSvc,
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes, wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)

	// Profile
	mux.HandleFunc("GET /api/profile", s.profileH.Get)
	mux.HandleFunc("PUT /api/profile", s.profileH.Update)
	mux.HandleFunc("POST /api/profile/avatar", s.profileH.UploadAvatar)
	mux.HandleFunc("DELETE /api/profile", s.profileH.DeleteAccount)

	// Households
	mux.HandleFunc("GET /api/households", s.householdH.List)
	mux.HandleFunc("POST /api/households", s.householdH.Create)
	mux.HandleFunc("GET /api/households/{id}", s.householdH.Get)
	mux.HandleFunc("PUT /api/households/{id}", s.householdH.Update)

	// Shopping list
	mux.HandleFunc("GET /api/categories", s.shoppingH.Categories)
	mux.HandleFunc("GET /api/households/{id}/shopping", s.shoppingH.List)
	mux.HandleFunc("POST /api/households/{id}/shopping/items", s.shoppingH.AddItem)
	mux.HandleFunc("POST /api/households/{id}/shopping/items/{itemID}/toggle", s.shoppingH.ToggleItem)
	mux.HandleFunc("DELETE /api/households/{id}/shopping/items/{itemID}", s.shoppingH.DeleteItem)

	// Recipes
	mux.HandleFunc("GET /api/recipes/sections/{section}", s.recipeH.ListSection)
	mux.HandleFunc("GET /api/recipes/{id}", s.recipeH.Get)

	// Push notifications
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.Handle(s.hub, s.householdSvc, s.logger.With("component", "websocket")))
}
