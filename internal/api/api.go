package api

import (
	"log"
	"net/http"

	"github.com/cardboardcollective/mechabot/internal/config"
	"github.com/cardboardcollective/mechabot/internal/listings"
	"github.com/cardboardcollective/mechabot/internal/showboard"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"golang.org/x/oauth2"
)

type API struct {
	router      *mux.Router
	config      *config.Config
	shows       *showboard.Store
	listings    *listings.Store
	oauthConfig *oauth2.Config
	jwtSecret   []byte
}

func New(cfg *config.Config, shows *showboard.Store, listingStore *listings.Store) *API {
	api := &API{
		router:    mux.NewRouter(),
		config:    cfg,
		shows:     shows,
		listings:  listingStore,
		jwtSecret: []byte(cfg.JWTSecret),
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURL:  cfg.DiscordRedirectURI,
			Scopes:       []string{"identify", "guilds"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://discord.com/api/oauth2/authorize",
				TokenURL: "https://discord.com/api/oauth2/token",
			},
		},
	}

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	// Auth endpoints
	a.router.HandleFunc("/api/auth/login", a.handleLogin).Methods("GET")
	a.router.HandleFunc("/api/auth/callback", a.handleCallback).Methods("GET")
	a.router.HandleFunc("/api/auth/logout", a.handleLogout).Methods("POST")

	// Public endpoints
	a.router.HandleFunc("/api/public/guilds/{guild_id}/shows", a.handlePublicGuildShows).Methods("GET")

	// Web interface
	a.router.HandleFunc("/", a.handleWebInterface).Methods("GET")
	a.router.HandleFunc("/guilds/{guild_id}", a.handleWebInterface).Methods("GET")

	// Protected endpoints
	protected := a.router.PathPrefix("/api").Subrouter()
	protected.Use(a.authMiddleware)

	protected.HandleFunc("/user/guilds", a.handleUserGuilds).Methods("GET")
	protected.HandleFunc("/guilds/{guild_id}/shows", a.handleGuildShows).Methods("GET")
	protected.HandleFunc("/guilds/{guild_id}/listings", a.handleGuildListings).Methods("GET")
}

func (a *API) Start() error {
	// Setup CORS - allow all origins for development, restrict in production
	// Note: When AllowedOrigins is "*", AllowCredentials must be false for security
	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false, // Set to false for security when using wildcard origin
	}

	handler := cors.New(corsOptions).Handler(a.router)

	log.Printf("API server listening on http://%s", a.config.WebBind)
	return http.ListenAndServe(a.config.WebBind, handler)
}
