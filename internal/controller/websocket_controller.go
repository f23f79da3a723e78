package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/benbeisheim/chess-backend/internal/middleware"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// lockedConn serializes writes; game broadcasts and replies to the read loop
// share one socket.
type lockedConn struct {
	mu   sync.Mutex
	conn model.Conn
}

func (l *lockedConn) WriteJSON(v interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn.WriteJSON(v)
}

func (l *lockedConn) WriteMessage(messageType int, data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn.WriteMessage(messageType, data)
}

func (l *lockedConn) Close() error {
	return l.conn.Close()
}

func playerIDOf(c *websocket.Conn) string {
	id, _ := c.Locals(middleware.PlayerIDKey).(string)
	return id
}

// socket is the part of a websocket connection the game loop uses.
type socket interface {
	model.Conn
	ReadMessage() (messageType int, p []byte, err error)
}

// HandleConnection attaches a player to a game and plays the moves they send
// until the socket closes.
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	wsc.serveGame(c.Params("gameId"), playerIDOf(c), c)
}

func (wsc *WebSocketController) serveGame(gameID, playerID string, sock socket) {
	conn := &lockedConn{conn: sock}

	if err := wsc.gameService.RegisterConnection(gameID, playerID, conn); err != nil {
		log.Warnf("register %s on game %s: %v", playerID, gameID, err)
		if !errors.Is(err, model.ErrAlreadyConnected) {
			wsc.sendError(conn, err.Error())
			conn.Close()
		}
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID, conn)
	log.Debugf("player %s connected to game %s", playerID, gameID)

	for {
		messageType, message, err := sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warnf("read from %s: %v", playerID, err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.sendError(conn, "malformed message")
			continue
		}
		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			log.Debugf("game %s, player %s: %v", gameID, playerID, err)
			wsc.sendError(conn, err.Error())
		}
	}
}

func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var body moveBody
		if err := json.Unmarshal(msg.Payload, &body); err != nil {
			return fmt.Errorf("malformed move: %w", err)
		}
		req, err := body.request()
		if err != nil {
			return err
		}
		_, err = wsc.gameService.HandleMove(gameID, playerID, req)
		return err
	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// HandleMatchmaking queues the player and holds the socket open until a match
// is pushed or the client goes away.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID := playerIDOf(c)
	conn := &lockedConn{conn: c}

	ch := make(chan string, 1)
	wsc.gameService.RegisterMatchmakingChannel(playerID, ch)
	defer wsc.gameService.UnregisterMatchmakingChannel(playerID, ch)

	if err := wsc.gameService.JoinMatchmaking(playerID); err != nil && !errors.Is(err, model.ErrAlreadyQueued) {
		wsc.sendError(conn, err.Error())
		return
	}

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case event, ok := <-ch:
		if !ok {
			// Replaced by a newer matchmaking socket for the same player.
			return
		}
		msg := ws.Message{Type: ws.MessageTypeMatchFound, Payload: json.RawMessage(event)}
		if err := conn.WriteJSON(msg); err != nil {
			log.Warnf("push match to %s: %v", playerID, err)
		}
	case <-gone:
		wsc.gameService.LeaveMatchmaking(playerID)
		log.Debugf("player %s left matchmaking", playerID)
	}
}

func (wsc *WebSocketController) sendError(conn model.Conn, errorMsg string) {
	msg, err := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: errorMsg})
	if err != nil {
		return
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Debugf("send error message: %v", err)
	}
}
