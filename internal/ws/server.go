package ws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second // must be < pongWait
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // auth happens upstream at the gateway
	},
}

// WsServer exposes the viewer endpoint. Viewers are push-only: inbound
// frames are discarded, the read loop exists to notice disconnects.
type WsServer struct {
	hub *Hub
}

func NewWsServer(hub *Hub) *WsServer {
	return &WsServer{hub: hub}
}

// Handle is the gin entry point for GET /ws.
func (s *WsServer) Handle(ginCtx *gin.Context) {
	rawConn, err := upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.upgrade", zap.Error(err))
		return
	}

	conn := &clientConn{rawConn: rawConn}
	s.hub.Join(conn)

	go s.reader(conn)
	go s.pinger(conn)
}

func (s *WsServer) reader(conn *clientConn) {
	defer s.hub.Leave(conn)

	conn.rawConn.SetReadLimit(512)
	_ = conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	conn.rawConn.SetPongHandler(func(string) error {
		return conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.rawConn.ReadMessage(); err != nil {
			return // client closed or errored
		}
	}
}

func (s *WsServer) pinger(conn *clientConn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.ping(); err != nil {
			return // reader tears the connection down
		}
	}
}
