package gameapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/beka-birhanu/vinom-snake/api/identity"
	"github.com/beka-birhanu/vinom-snake/game"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamMessage is pushed to the client after every tick.
type StreamMessage struct {
	State game.State `json:"state"`
}

// StreamCommand is what a client may send over the socket.
type StreamCommand struct {
	Direction string `json:"direction"`
}

// streamError is sent back for a command that was rejected.
type streamError struct {
	Error string `json:"error"`
}

// stream upgrades to a websocket that pushes every snapshot and accepts
// direction commands until the game ends.
func (gc *GameController) stream(ctx *gin.Context) {
	player, ok := identity.PlayerName(ctx)
	if !ok {
		ctx.Status(http.StatusUnauthorized)
		return
	}
	id, ok := sessionID(ctx)
	if !ok {
		return
	}

	updates, cancel, err := gc.gameSessionManager.Subscribe(id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	defer cancel()

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		gc.logger.Error(fmt.Sprintf("upgrading stream of game %s: %s", id, err))
		return
	}
	defer conn.Close()

	replies := make(chan streamError, 1)
	readDone := make(chan struct{})
	go gc.readPump(conn, id, player, replies, readDone)
	gc.writePump(conn, updates, replies, readDone)
}

// readPump turns incoming commands into turns. It exits when the peer goes
// away.
func (gc *GameController) readPump(conn *websocket.Conn, id uuid.UUID, player string, replies chan<- streamError, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				gc.logger.Warning(fmt.Sprintf("reading stream of game %s: %s", id, err))
			}
			return
		}

		var cmd StreamCommand
		if err := json.Unmarshal(message, &cmd); err != nil {
			reply(replies, streamError{Error: "malformed command"})
			continue
		}
		direction, err := game.ParseDirection(cmd.Direction)
		if err == nil {
			err = gc.gameSessionManager.Turn(id, player, direction)
		}
		if err != nil && !errors.Is(err, game.ErrGameOver) {
			reply(replies, streamError{Error: err.Error()})
		}
	}
}

// writePump forwards snapshots and rejections to the peer and keeps the
// connection alive. It closes the socket once the game has ended.
func (gc *GameController) writePump(conn *websocket.Conn, updates <-chan game.State, replies <-chan streamError, readDone <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case state, ok := <-updates:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game over"))
				return
			}
			if err := conn.WriteJSON(&StreamMessage{State: state}); err != nil {
				return
			}
		case msg := <-replies:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(&msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-readDone:
			return
		}
	}
}

// reply drops the message when the writer is still busy with the previous one.
func reply(replies chan<- streamError, msg streamError) {
	select {
	case replies <- msg:
	default:
	}
}
