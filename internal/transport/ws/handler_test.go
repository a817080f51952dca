package ws

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasknest/realtime/internal/auth"
	"github.com/tasknest/realtime/internal/domain"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const testSecret = "handshake-test-secret"

type fakeUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	return f.users[id], nil
}

func mintToken(t *testing.T, userID uuid.UUID, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(ttl).Unix(),
		"iat": time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func newHandshakeServer(t *testing.T, knownUsers ...uuid.UUID) (*Hub, *httptest.Server) {
	t.Helper()
	users := &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
	for _, id := range knownUsers {
		users.users[id] = &domain.User{ID: id, Username: "u-" + id.String()[:8]}
	}

	hub, _ := newTestHub(t)
	srv := httptest.NewServer(ServeWS(hub, auth.NewVerifier(testSecret), users, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return hub, srv
}

func rejectBody(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestHandshakeRejectsMissingCredential(t *testing.T) {
	hub, srv := newHandshakeServer(t)

	status, body := rejectBody(t, srv.URL)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "no credential supplied")
	assert.Zero(t, hub.ClientCount())
}

func TestHandshakeRejectsExpiredToken(t *testing.T) {
	userID := uuid.New()
	hub, srv := newHandshakeServer(t, userID)

	status, body := rejectBody(t, srv.URL+"?token="+mintToken(t, userID, -time.Minute))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "invalid credential")
	assert.Zero(t, hub.ClientCount())
}

func TestHandshakeRejectsTamperedToken(t *testing.T) {
	userID := uuid.New()
	hub, srv := newHandshakeServer(t, userID)

	token := mintToken(t, userID, time.Hour)
	status, body := rejectBody(t, srv.URL+"?token="+token+"x")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "invalid credential")
	assert.Zero(t, hub.ClientCount())
}

func TestHandshakeRejectsUnknownIdentity(t *testing.T) {
	hub, srv := newHandshakeServer(t) // user store is empty

	status, body := rejectBody(t, srv.URL+"?token="+mintToken(t, uuid.New(), time.Hour))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "identity not found")
	assert.Zero(t, hub.ClientCount())
}

func TestHandshakeAcceptsValidTokenAndAutoJoins(t *testing.T) {
	userID := uuid.New()
	hub, srv := newHandshakeServer(t, userID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, srv.URL+"?token="+mintToken(t, userID, time.Hour), nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, []uuid.UUID{userID}, hub.rooms.MembersOf(UserRoom(userID)))

	// Joining a project over the wire lands in the room table.
	projectID := uuid.New()
	payload, err := NewEvent(EventTypeJoinProject, ProjectPayload{ProjectID: projectID})
	require.NoError(t, err)
	require.NoError(t, wsjson.Write(ctx, conn, payload))

	require.Eventually(t, func() bool {
		return len(hub.ProjectViewers(projectID)) == 1
	}, time.Second, 10*time.Millisecond)

	conn.Close(websocket.StatusNormalClosure, "")
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
	assert.Empty(t, hub.ProjectViewers(projectID))
}
