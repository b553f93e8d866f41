package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/fenris-bot/fenris/cmd/bot/monitoring"
	"github.com/fenris-bot/fenris/pkg/logging"
	"github.com/fenris-bot/fenris/pkg/request"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// commandProcessor is the processor for slash commands.
type commandProcessor func(a IApp, i *discordgo.InteractionCreate) error

// HeaderRequestID carries the request ID on dashboard API responses.
const HeaderRequestID = "X-Request-Id"

type Controller func(w http.ResponseWriter, r *http.Request)

func middlewareHttp(handler Controller, a IApp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC()
		cw := request.NewClientWriter(w)
		cw.Header().Set(HeaderRequestID, uuid.NewString())

		// Recover from any panics that occur in the handler.
		defer func() {
			if rec := recover(); rec != nil {
				a.Log().Error("Panic in handler",
					slog.String(logging.KeyError, fmt.Sprintf("%v", rec)),
					slog.String("stack", string(debug.Stack())),
				)
				cw.WriteHeader(http.StatusInternalServerError)
				if err := json.NewEncoder(cw).Encode(request.NewMessage("Internal server error")); err != nil {
					a.Log().Error("Error encoding response", slog.String(logging.KeyError, err.Error()))
				}
			}
		}()

		var path string
		route := mux.CurrentRoute(r)
		if route != nil { // The route may be nil if the request is not routed.
			var err error
			path, err = route.GetPathTemplate()
			if err != nil {
				// An error here is only returned if the route does not define a path.
				a.Log().Error("Error getting path template", slog.String(logging.KeyError, err.Error()))
				path = r.URL.Path // If the route does not define a path, use the URL path.
			}
		} else {
			path = r.URL.Path // If the route is nil, use the URL path.
		}

		defer func() {
			// Run the deferred function after the request has been handled, as the status code will not be available until then.
			monitoring.HttpTotalRequests.WithLabelValues(path, r.Method, fmt.Sprintf("%d", cw.StatusCode())).Inc()
			monitoring.HttpRequestDuration.WithLabelValues(path, r.Method, fmt.Sprintf("%d", cw.StatusCode())).Observe(time.Since(now).Seconds())
		}()

		handler(cw, r)
	}
}

// interactionHandler routes interactions to the slash command processors and
// the panel's component activations.
func interactionHandler(a IApp, processors map[string]commandProcessor) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			handleSlashCommand(a, i, processors)
		case discordgo.InteractionMessageComponent:
			if err := componentHandler(a, i); err != nil {
				a.Log().Error("Error processing component interaction",
					slog.String("custom_id", i.MessageComponentData().CustomID),
					slog.String(logging.KeyError, err.Error()))

				if err := respondError(a, i); err != nil {
					a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
				}
			}
		}
	}
}

func handleSlashCommand(a IApp, i *discordgo.InteractionCreate, processors map[string]commandProcessor) {
	name := i.ApplicationCommandData().Name
	a.Log().Debug("Handling interaction " + name)

	processor, ok := processors[name]
	if !ok {
		a.Log().Error("No processor found for command", slog.String("command", name))

		if err := respondError(a, i); err != nil {
			a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
		}
		return
	}

	if err := processor(a, i); err != nil {
		a.Log().Error(fmt.Sprintf("Error processing command %s", name),
			slog.String(logging.KeyError, err.Error()))

		if err := respondError(a, i); err != nil {
			a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
		}
	}
}
