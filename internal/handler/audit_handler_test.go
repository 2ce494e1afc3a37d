package handler

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	ws "github.com/studika/gradebook-backend/internal/websocket"
)

// Pongs are written by the relay loop, never by the reader goroutine, so
// they must keep flowing while the connection stays open.
func TestStreamAnswersPings(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// The stream only reads from this client lazily; no server needs to
	// be reachable for the ping path.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer rdb.Close()

	h := NewAuditHandler(nil, rdb, zerolog.Nop(), nil)
	router := gin.New()
	router.GET("/ws/v1/audit/stream", h.Stream)

	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/v1/audit/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	for i := 0; i < 10; i++ {
		if err := conn.WriteJSON(ws.RequestEnvelope{Action: ws.ActionPing}); err != nil {
			t.Fatalf("ping %d write error = %v", i, err)
		}
		var pong ws.PongResponse
		if err := conn.ReadJSON(&pong); err != nil {
			t.Fatalf("pong %d read error = %v", i, err)
		}
		if pong.Event != ws.EventPong {
			t.Errorf("pong %d event = %q, want %q", i, pong.Event, ws.EventPong)
		}
	}
}

func TestBuildUpgraderOriginCheck(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"empty list permits all", nil, "https://evil.example", true},
		{"listed origin", []string{"https://gradebook.example"}, "https://gradebook.example", true},
		{"case-insensitive match", []string{"https://Gradebook.example"}, "https://gradebook.example", true},
		{"unlisted origin", []string{"https://gradebook.example"}, "https://evil.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upgrader := buildUpgrader(tt.allowed)
			req := httptest.NewRequest("GET", "/ws/v1/audit/stream", nil)
			req.Header.Set("Origin", tt.origin)
			if got := upgrader.CheckOrigin(req); got != tt.want {
				t.Errorf("CheckOrigin() = %v, want %v", got, tt.want)
			}
		})
	}
}
