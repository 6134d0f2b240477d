package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/CodedInternet/goforklift/onboard/link"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NewRouter serves the remote command socket. commands is the registered
// command table, listed at /api/commands.
func NewRouter(lines *link.Lines, commands []string, logger *zap.SugaredLogger, secure bool) http.Handler {
	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer) // make sure this is last

	r.Route("/api", func(r chi.Router) {
		r.Use(ValidateJWT)

		r.Get("/commands", func(w http.ResponseWriter, r *http.Request) {
			render.JSON(w, r, commands)
		})
		r.Get("/refresh_token", JWTRefresh)
	})

	r.Route("/ws", func(r chi.Router) {
		if secure {
			r.Use(ValidateJWT)
		} else {
			logger.Warn("Running in debug mode. Authentication disabled.")
		}

		r.Get("/commands", CommandSocketHandler(lines, logger))
	})

	return r
}

// CommandSocketHandler queues every line of every text message for the
// dispatcher, exactly as if it had arrived over serial. Each message is
// acknowledged with the number of lines queued.
func CommandSocketHandler(lines *link.Lines, logger *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warnw("upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		remote := r.RemoteAddr
		logger.Infow("command socket opened", "remote", remote)

		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Warnw("command socket read", "remote", remote, "error", err)
				}
				break
			}
			if mt != websocket.TextMessage {
				continue
			}

			queued := 0
			for _, line := range strings.Split(string(msg), "\n") {
				if strings.TrimSpace(line) == "" {
					continue
				}
				if err = lines.PushLine(line); err != nil {
					logger.Warnw("command queue closed", "remote", remote)
					conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
					return
				}
				queued++
			}

			if err = conn.WriteMessage(websocket.TextMessage, []byte(fmt.Sprintf("queued %d", queued))); err != nil {
				logger.Warnw("command socket write", "remote", remote, "error", err)
				break
			}
		}

		logger.Infow("command socket closed", "remote", remote)
	}
}
