package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fenris-bot/fenris/cmd/bot/config"
	"github.com/fenris-bot/fenris/pkg/custom"
	"github.com/fenris-bot/fenris/pkg/entities"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

// stubDal is an in-memory GuildDal recording dashboard writes.
type stubDal struct {
	guild      *entities.Guild
	categories []entities.TicketCategory
	roleIDs    []string
	logChannel string
}

func (d *stubDal) GetGuildByID(_ context.Context, _ string) (*entities.Guild, error) {
	return d.guild, nil
}

func (d *stubDal) AddTicket(_ context.Context, _ string, ticket *entities.Ticket) (int, error) {
	return ticket.ID, nil
}

func (d *stubDal) UpdateTicketStatus(_ context.Context, _ string, _ int, _ entities.TicketStatus, _ custom.Datetime, _ string) error {
	return nil
}

func (d *stubDal) UpdateCategories(_ context.Context, _ string, categories []entities.TicketCategory) error {
	d.categories = categories
	return nil
}

func (d *stubDal) UpdateAdminRoles(_ context.Context, _ string, roleIDs []string) error {
	d.roleIDs = roleIDs
	return nil
}

func (d *stubDal) SetLogChannel(_ context.Context, _ string, channelID string) error {
	d.logChannel = channelID
	return nil
}

func (d *stubDal) SetTicketChannel(_ context.Context, _ string, _ string, _ string) error {
	return nil
}

func (d *stubDal) SetTicketsCategory(_ context.Context, _ string, _ string) error {
	return nil
}

func newDashboardTestApp(t *testing.T, dal *stubDal) *App {
	t.Helper()

	prior := config.DashboardToken
	config.DashboardToken = "test-token"
	t.Cleanup(func() { config.DashboardToken = prior })

	a := NewApp(slog.New(slog.NewTextHandler(io.Discard, nil)), mux.NewRouter())
	a.dal = dal
	a.registerDashboardRoutes()
	return a
}

func dashboardRequest(a *App, method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func TestDashboardAuth(t *testing.T) {
	guild := entities.NewGuild("guild-1")
	a := newDashboardTestApp(t, &stubDal{guild: guild})

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{
			name:   "missing token",
			status: http.StatusUnauthorized,
		},
		{
			name:   "wrong token",
			token:  "not-the-token",
			status: http.StatusUnauthorized,
		},
		{
			name:   "valid token",
			token:  "test-token",
			status: http.StatusOK,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			w := dashboardRequest(a, http.MethodGet, "/api/guilds/guild-1", test.token, "")
			require.Equal(t, test.status, w.Code)
		})
	}
}

func TestDashboardGetGuildConfig(t *testing.T) {
	guild := entities.NewGuild("guild-1")
	guild.Tickets["1"] = &entities.Ticket{ID: 1, Status: entities.TicketOpen}
	guild.Tickets["2"] = &entities.Ticket{ID: 2, Status: entities.TicketClosed}
	a := newDashboardTestApp(t, &stubDal{guild: guild})

	w := dashboardRequest(a, http.MethodGet, "/api/guilds/guild-1", "test-token", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	require.Contains(t, body, `"id":"guild-1"`)
	require.Contains(t, body, `"open_tickets":1`)
	// The ticket registry is not part of the config surface.
	require.NotContains(t, body, `"tickets"`)
}

func TestDashboardPutCategories(t *testing.T) {
	dal := &stubDal{guild: entities.NewGuild("guild-1")}
	a := newDashboardTestApp(t, dal)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{
			name:   "valid",
			body:   `[{"name":"Support"},{"name":"Billing"}]`,
			status: http.StatusOK,
		},
		{
			name:   "empty name",
			body:   `[{"name":""}]`,
			status: http.StatusBadRequest,
		},
		{
			name:   "duplicate names",
			body:   `[{"name":"Support"},{"name":"Support"}]`,
			status: http.StatusBadRequest,
		},
		{
			name:   "malformed json",
			body:   `{`,
			status: http.StatusBadRequest,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			w := dashboardRequest(a, http.MethodPut, "/api/guilds/guild-1/categories", "test-token", test.body)
			require.Equal(t, test.status, w.Code)
		})
	}

	// Only the valid set made it through.
	require.Len(t, dal.categories, 2)
	require.Equal(t, "Support", dal.categories[0].Name)
}

func TestDashboardPutAdminRoles(t *testing.T) {
	dal := &stubDal{guild: entities.NewGuild("guild-1")}
	a := newDashboardTestApp(t, dal)

	w := dashboardRequest(a, http.MethodPut, "/api/guilds/guild-1/admin-roles", "test-token", `{"role_ids":["R1","R2"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"R1", "R2"}, dal.roleIDs)
}

func TestDashboardPutLogChannel(t *testing.T) {
	dal := &stubDal{guild: entities.NewGuild("guild-1")}
	a := newDashboardTestApp(t, dal)

	w := dashboardRequest(a, http.MethodPut, "/api/guilds/guild-1/log-channel", "test-token", `{"channel_id":""}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, dal.logChannel)

	w = dashboardRequest(a, http.MethodPut, "/api/guilds/guild-1/log-channel", "test-token", `{"channel_id":"chan-log"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "chan-log", dal.logChannel)
}

func TestDashboardDisabledWithoutToken(t *testing.T) {
	prior := config.DashboardToken
	config.DashboardToken = ""
	t.Cleanup(func() { config.DashboardToken = prior })

	a := NewApp(slog.New(slog.NewTextHandler(io.Discard, nil)), mux.NewRouter())
	a.dal = &stubDal{guild: entities.NewGuild("guild-1")}
	a.registerDashboardRoutes()

	req := httptest.NewRequest(http.MethodGet, "/api/guilds/guild-1", nil)
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}
