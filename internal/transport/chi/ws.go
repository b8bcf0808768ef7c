package chi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/madhava-cloud/gateway/internal/domain"
)

// writeWait bounds a single websocket write to a subscriber.
const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin filtering happens in the CORS middleware.
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsSubscriber adapts a websocket connection to the alert subscriber
// contract. Send errors mark the connection dead and the hub prunes it.
type wsSubscriber struct {
	conn *websocket.Conn
}

func (s *wsSubscriber) Send(a domain.Alert) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(a)
}

// AlertsStream handles GET /ws/alerts: upgrades to a websocket and streams
// every dispatched alert until the client disconnects. Inbound frames are
// read and discarded to service control messages.
func (s *Server) AlertsStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sub := &wsSubscriber{conn: conn}
	s.stream.Subscribe(sub)
	defer s.stream.Unsubscribe(sub)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
