package ws

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/tasknest/realtime/internal/auth"
	"github.com/tasknest/realtime/internal/repository"
	"nhooyr.io/websocket"
)

// ServeWS returns an HTTP handler that authenticates and upgrades socket
// connections. The bearer credential rides in a ?token= query param - the
// upgrade request can't carry the usual Authorization header from a
// browser WebSocket.
//
// All three rejection modes are terminal: the upgrade is refused, no
// Client is created and nothing joins a room.
func ServeWS(hub *Hub, verifier *auth.Verifier, users repository.UserRepository, logger zerolog.Logger) http.HandlerFunc {
	logger = logger.With().Str("component", "ws-handshake").Logger()

	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := verifier.Verify(r.URL.Query().Get("token"))
		if err != nil {
			if errors.Is(err, auth.ErrNoCredential) {
				http.Error(w, "no credential supplied", http.StatusUnauthorized)
				return
			}
			http.Error(w, "invalid credential", http.StatusUnauthorized)
			return
		}

		// The token may outlive the account; confirm the identity still exists.
		user, err := users.GetByID(r.Context(), userID)
		if err != nil {
			logger.Error().Err(err).Stringer("user_id", userID).Msg("user lookup failed")
			http.Error(w, "identity lookup failed", http.StatusInternalServerError)
			return
		}
		if user == nil {
			http.Error(w, "identity not found", http.StatusUnauthorized)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true, // dashboard and API run on different origins
		})
		if err != nil {
			logger.Debug().Err(err).Msg("accept error")
			return
		}

		client := NewClient(hub, conn, userID)
		hub.Register(r.Context(), client)

		go client.WritePump()
		go client.ReadPump()
	}
}
