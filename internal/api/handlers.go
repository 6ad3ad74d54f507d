package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cardboardcollective/mechabot/internal/listings"
	"github.com/cardboardcollective/mechabot/internal/showboard"
	"github.com/gorilla/mux"
)

// Public handlers
func (a *API) handlePublicGuildShows(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	guildID := vars["guild_id"]
	if guildID == "" {
		http.Error(w, "invalid guild_id", http.StatusBadRequest)
		return
	}

	records := a.shows.Load()[guildID]
	if records == nil {
		records = []*showboard.Record{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// Protected handlers
func (a *API) handleUserGuilds(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value("claims").(*Claims)

	guilds, err := a.getDiscordGuilds(claims.AccessToken)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to get guilds: %v", err), http.StatusBadGateway)
		return
	}

	// Only surface guilds the bot holds show data for
	filtered := filterGuilds(guilds, a.shows.Load())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(filtered)
}

// filterGuilds keeps the guilds present in the show document. The result is
// never nil so it encodes as a JSON array.
func filterGuilds(guilds []DiscordGuild, doc showboard.Document) []DiscordGuild {
	filtered := []DiscordGuild{}
	for _, guild := range guilds {
		if _, ok := doc[guild.ID]; ok {
			filtered = append(filtered, guild)
		}
	}
	return filtered
}

func (a *API) handleGuildShows(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value("claims").(*Claims)
	vars := mux.Vars(r)
	guildID := vars["guild_id"]
	if guildID == "" {
		http.Error(w, "invalid guild_id", http.StatusBadRequest)
		return
	}

	// Verify user has access to guild
	if !a.userHasGuildAccess(claims.AccessToken, guildID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	records := a.shows.Load()[guildID]
	if records == nil {
		records = []*showboard.Record{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

func (a *API) handleGuildListings(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value("claims").(*Claims)
	vars := mux.Vars(r)
	guildID := vars["guild_id"]
	if guildID == "" {
		http.Error(w, "invalid guild_id", http.StatusBadRequest)
		return
	}

	// Verify user has access to guild
	if !a.userHasGuildAccess(claims.AccessToken, guildID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	doc := a.listings.Load()
	result := filterListings(doc, r.URL.Query().Get("status"))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// filterListings returns the listings matching status; an empty status keeps
// everything. The result is never nil so it encodes as a JSON array.
func filterListings(doc listings.Document, status string) []*listings.Listing {
	result := []*listings.Listing{}
	for _, l := range doc.Listings {
		if status != "" && l.Status != status {
			continue
		}
		result = append(result, l)
	}
	return result
}

// Helper functions
func (a *API) userHasGuildAccess(accessToken string, guildID string) bool {
	guilds, err := a.getDiscordGuilds(accessToken)
	if err != nil {
		return false
	}

	for _, guild := range guilds {
		if guild.ID == guildID {
			return true
		}
	}
	return false
}
