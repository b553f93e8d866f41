package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fenris-bot/fenris/cmd/bot/config"
	"github.com/fenris-bot/fenris/pkg/entities"
	"github.com/fenris-bot/fenris/pkg/logging"
	"github.com/fenris-bot/fenris/pkg/request"
	"github.com/gorilla/mux"
)

const (
	// PathGuildConfig is the dashboard path for a guild's configuration.
	PathGuildConfig = "/api/guilds/{guildID}"

	// PathGuildTickets is the dashboard path for a guild's ticket registry.
	PathGuildTickets = "/api/guilds/{guildID}/tickets"

	// PathGuildCategories is the dashboard path for a guild's ticket categories.
	PathGuildCategories = "/api/guilds/{guildID}/categories"

	// PathGuildAdminRoles is the dashboard path for a guild's admin roles.
	PathGuildAdminRoles = "/api/guilds/{guildID}/admin-roles"

	// PathGuildLogChannel is the dashboard path for a guild's log channel.
	PathGuildLogChannel = "/api/guilds/{guildID}/log-channel"

	// PathGuildPanelChannel is the dashboard path for a guild's panel channel.
	PathGuildPanelChannel = "/api/guilds/{guildID}/panel-channel"
)

// guildConfigResponse is the configuration surface exposed to the dashboard.
// The ticket registry is served separately; it can grow large.
type guildConfigResponse struct {
	ID                 string                    `json:"id"`
	TicketCategories   []entities.TicketCategory `json:"ticket_categories"`
	AdminRoleIDs       []string                  `json:"admin_role_ids"`
	TicketChannelID    string                    `json:"ticket_channel_id"`
	PanelMessageID     string                    `json:"panel_message_id"`
	TicketLogChannelID string                    `json:"ticket_log_channel_id"`
	OpenTickets        int                       `json:"open_tickets"`
}

type channelBody struct {
	ChannelID string `json:"channel_id"`
}

type adminRolesBody struct {
	RoleIDs []string `json:"role_ids"`
}

// registerDashboardRoutes mounts the dashboard configuration API on the
// monitoring router. The API is disabled entirely when no token is configured.
func (a *App) registerDashboardRoutes() {
	if config.DashboardToken == "" {
		a.Warn("Dashboard token not configured, dashboard API disabled")
		return
	}

	a.r.HandleFunc(PathGuildConfig, a.dashboard(a.getGuildConfig)).Methods(http.MethodGet)
	a.r.HandleFunc(PathGuildTickets, a.dashboard(a.getGuildTickets)).Methods(http.MethodGet)
	a.r.HandleFunc(PathGuildCategories, a.dashboard(a.putGuildCategories)).Methods(http.MethodPut)
	a.r.HandleFunc(PathGuildAdminRoles, a.dashboard(a.putGuildAdminRoles)).Methods(http.MethodPut)
	a.r.HandleFunc(PathGuildLogChannel, a.dashboard(a.putGuildLogChannel)).Methods(http.MethodPut)
	a.r.HandleFunc(PathGuildPanelChannel, a.dashboard(a.putGuildPanelChannel)).Methods(http.MethodPut)
}

// dashboard wraps a controller with bearer auth and rate limiting on top of
// the standard http middleware.
func (a *App) dashboard(handler Controller) http.HandlerFunc {
	return middlewareHttp(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token != config.DashboardToken {
			a.writeMessage(w, http.StatusUnauthorized, request.NewMessage("Unauthorized"))
			return
		}

		if !a.limiter.Allow() {
			a.writeMessage(w, http.StatusTooManyRequests, request.NewMessage("Too many requests"))
			return
		}

		handler(w, r)
	}, a)
}

func (a *App) writeMessage(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.Error("Error encoding response", slog.String(logging.KeyError, err.Error()))
	}
}

func (a *App) getGuildConfig(w http.ResponseWriter, r *http.Request) {
	guildID := mux.Vars(r)["guildID"]

	guild, err := a.dal.GetGuildByID(r.Context(), guildID)
	if err != nil {
		a.Error("Error getting guild configuration", slog.String(logging.KeyError, err.Error()))
		a.writeMessage(w, http.StatusInternalServerError, request.NewMessage("Error getting guild configuration"))
		return
	}

	open := 0
	for _, t := range guild.Tickets {
		if t.Status == entities.TicketOpen {
			open++
		}
	}

	a.writeMessage(w, http.StatusOK, &guildConfigResponse{
		ID:                 guild.ID,
		TicketCategories:   guild.TicketCategories,
		AdminRoleIDs:       guild.AdminRoleIDs,
		TicketChannelID:    guild.TicketChannelID,
		PanelMessageID:     guild.PanelMessageID,
		TicketLogChannelID: guild.TicketLogChannelID,
		OpenTickets:        open,
	})
}

func (a *App) getGuildTickets(w http.ResponseWriter, r *http.Request) {
	guildID := mux.Vars(r)["guildID"]

	guild, err := a.dal.GetGuildByID(r.Context(), guildID)
	if err != nil {
		a.Error("Error getting guild configuration", slog.String(logging.KeyError, err.Error()))
		a.writeMessage(w, http.StatusInternalServerError, request.NewMessage("Error getting guild tickets"))
		return
	}

	a.writeMessage(w, http.StatusOK, guild.Tickets)
}

func (a *App) putGuildCategories(w http.ResponseWriter, r *http.Request) {
	guildID := mux.Vars(r)["guildID"]

	var categories []entities.TicketCategory
	if err := json.NewDecoder(r.Body).Decode(&categories); err != nil {
		a.writeMessage(w, http.StatusBadRequest, request.NewMessageError("Invalid request body", err))
		return
	}

	if err := validateCategories(categories); err != nil {
		a.writeMessage(w, http.StatusBadRequest, request.NewMessageError("Invalid categories", err))
		return
	}

	if err := a.dal.UpdateCategories(r.Context(), guildID, categories); err != nil {
		a.Error("Error updating categories", slog.String(logging.KeyError, err.Error()))
		a.writeMessage(w, http.StatusInternalServerError, request.NewMessage("Error updating categories"))
		return
	}

	a.writeMessage(w, http.StatusOK, request.NewMessage("Categories updated"))
}

// validateCategories rejects category sets that the panel cannot render: every
// category needs a non-empty name, and names must be unique within the guild.
func validateCategories(categories []entities.TicketCategory) error {
	seen := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		if c.Name == "" {
			return errors.New("category name must not be empty")
		}
		if _, ok := seen[c.Name]; ok {
			return fmt.Errorf("duplicate category name %q", c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return nil
}

func (a *App) putGuildAdminRoles(w http.ResponseWriter, r *http.Request) {
	guildID := mux.Vars(r)["guildID"]

	body := new(adminRolesBody)
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		a.writeMessage(w, http.StatusBadRequest, request.NewMessageError("Invalid request body", err))
		return
	}

	if err := a.dal.UpdateAdminRoles(r.Context(), guildID, body.RoleIDs); err != nil {
		a.Error("Error updating admin roles", slog.String(logging.KeyError, err.Error()))
		a.writeMessage(w, http.StatusInternalServerError, request.NewMessage("Error updating admin roles"))
		return
	}

	a.writeMessage(w, http.StatusOK, request.NewMessage("Admin roles updated"))
}

func (a *App) putGuildLogChannel(w http.ResponseWriter, r *http.Request) {
	guildID := mux.Vars(r)["guildID"]

	body := new(channelBody)
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		a.writeMessage(w, http.StatusBadRequest, request.NewMessageError("Invalid request body", err))
		return
	}
	if body.ChannelID == "" {
		a.writeMessage(w, http.StatusBadRequest, request.NewMessage("channel_id must not be empty"))
		return
	}

	if err := a.dal.SetLogChannel(r.Context(), guildID, body.ChannelID); err != nil {
		a.Error("Error updating log channel", slog.String(logging.KeyError, err.Error()))
		a.writeMessage(w, http.StatusInternalServerError, request.NewMessage("Error updating log channel"))
		return
	}

	a.writeMessage(w, http.StatusOK, request.NewMessage("Log channel updated"))
}

// putGuildPanelChannel re-renders the ticket panel into the requested channel
// and records it as the canonical panel location.
func (a *App) putGuildPanelChannel(w http.ResponseWriter, r *http.Request) {
	guildID := mux.Vars(r)["guildID"]

	body := new(channelBody)
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		a.writeMessage(w, http.StatusBadRequest, request.NewMessageError("Invalid request body", err))
		return
	}
	if body.ChannelID == "" {
		a.writeMessage(w, http.StatusBadRequest, request.NewMessage("channel_id must not be empty"))
		return
	}

	if _, err := a.panel.Render(r.Context(), guildID, body.ChannelID); err != nil {
		a.Error("Error rendering panel", slog.String(logging.KeyError, err.Error()))
		a.writeMessage(w, http.StatusInternalServerError, request.NewMessage("Error rendering panel"))
		return
	}

	a.writeMessage(w, http.StatusOK, request.NewMessage("Panel channel updated"))
}
