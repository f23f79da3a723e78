package model

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

// Conn is the subset of a websocket connection a game writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// The connections for a specific game
type GameConnections struct {
	connections map[string]Conn // playerID -> connection
	mu          sync.RWMutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

// Game seats two players at one Board and serializes every access to it.
type Game struct {
	ID          string
	CreatedAt   time.Time
	mu          sync.Mutex
	board       *Board
	white       string
	black       string
	whiteClock  *Clock
	blackClock  *Clock
	lastMove    *SimpleMove
	connections *GameConnections
}

// CastlingRights reports, per side, whether castling is available right now.
type CastlingRights struct {
	WhiteKingside  bool `json:"whiteKingside"`
	WhiteQueenside bool `json:"whiteQueenside"`
	BlackKingside  bool `json:"blackKingside"`
	BlackQueenside bool `json:"blackQueenside"`
}

type GameState struct {
	ID          string         `json:"id"`
	Board       [8][8]Piece    `json:"board"`
	ToMove      Color          `json:"toMove"`
	MoveHistory []Ply          `json:"moveHistory"`
	Castling    CastlingRights `json:"castling"`
	LastMove    *SimpleMove    `json:"lastMove"`
	Players     struct {
		White ClientPlayer `json:"white"`
		Black ClientPlayer `json:"black"`
	} `json:"players"`
}

func NewGame(id string, clock time.Duration) *Game {
	return &Game{
		ID:          id,
		CreatedAt:   time.Now(),
		board:       NewBoard(),
		whiteClock:  NewClock(clock),
		blackClock:  NewClock(clock),
		connections: NewGameConnections(),
	}
}

// AddPlayer seats playerID in the first free color. A player already seated
// gets their existing color back.
func (g *Game) AddPlayer(playerID string) (Color, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.colorOf(playerID); ok {
		return c, nil
	}
	if g.white == "" {
		g.white = playerID
		return White, nil
	}
	if g.black == "" {
		g.black = playerID
		return Black, nil
	}
	return "", ErrGameFull
}

func (g *Game) Players() (white, black string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.white, g.black
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.colorOf(playerID)
	return ok
}

func (g *Game) colorOf(playerID string) (Color, bool) {
	switch {
	case playerID == "":
		return "", false
	case playerID == g.white:
		return White, true
	case playerID == g.black:
		return Black, true
	}
	return "", false
}

func (g *Game) canSpectate() bool {
	return g.white == "" || g.black == ""
}

// MakeMove plays req for playerID. The player must be seated and own the side
// to move; a move the rules reject returns ErrIllegalMove.
func (g *Game) MakeMove(playerID string, req MoveRequest) (Move, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	color, ok := g.colorOf(playerID)
	if !ok {
		return Move{}, ErrPlayerNotInGame
	}
	if color != g.board.Turn() {
		return Move{}, ErrNotYourTurn
	}
	mv, err := g.play(req)
	if err != nil {
		return Move{}, err
	}

	g.clockFor(color).Stop()
	g.clockFor(color.Opponent()).Start()

	state := g.state()
	go g.broadcast(state)
	return mv, nil
}

// Restore replays archived requests onto a fresh board without player or
// clock checks.
func (g *Game) Restore(white, black string, moves []MoveRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.board.Reset()
	g.lastMove = nil
	g.white, g.black = white, black
	for i, req := range moves {
		if _, err := g.play(req); err != nil {
			return fmt.Errorf("replay move %d (%s-%s): %w", i+1, req.From, req.To, err)
		}
	}
	return nil
}

func (g *Game) play(req MoveRequest) (Move, error) {
	from, err := ParseSquare(req.From)
	if err != nil {
		return Move{}, err
	}
	to, err := ParseSquare(req.To)
	if err != nil {
		return Move{}, err
	}
	if !g.board.MovePiece(from, to, req.Promotion) {
		return Move{}, fmt.Errorf("%w: %s-%s", ErrIllegalMove, req.From, req.To)
	}
	g.lastMove = &SimpleMove{From: from, To: to}
	history := g.board.History()
	return history[len(history)-1], nil
}

func (g *Game) clockFor(c Color) *Clock {
	if c == White {
		return g.whiteClock
	}
	return g.blackClock
}

// Moves returns the accepted requests in order, suitable for Restore.
func (g *Game) Moves() []MoveRequest {
	g.mu.Lock()
	defer g.mu.Unlock()

	history := g.board.History()
	reqs := make([]MoveRequest, 0, len(history))
	for _, mv := range history {
		reqs = append(reqs, mv.Request())
	}
	return reqs
}

// LegalMoves lists destinations for the piece on square, which must belong
// to the side to move.
func (g *Game) LegalMoves(square string) ([]Square, error) {
	sq, err := ParseSquare(square)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.board.IsMovable(sq) {
		return []Square{}, nil
	}
	return g.board.LegalTargets(sq), nil
}

func (g *Game) IsPromotion(from, to string) (bool, error) {
	fromSq, err := ParseSquare(from)
	if err != nil {
		return false, err
	}
	toSq, err := ParseSquare(to)
	if err != nil {
		return false, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.IsPromotion(fromSq, toSq), nil
}

// Render draws the current board as text.
func (g *Game) Render() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.String()
}

// Snapshot returns a copy of the board that the caller may mutate freely.
func (g *Game) Snapshot() *Board {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.Clone()
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state()
}

func (g *Game) state() GameState {
	history := g.board.History()
	plies := make([]Ply, 0, len(history))
	for _, mv := range history {
		plies = append(plies, Ply{Move: mv, Notation: mv.Notation()})
	}
	s := GameState{
		ID:          g.ID,
		Board:       g.board.Grid(),
		ToMove:      g.board.Turn(),
		MoveHistory: plies,
		Castling: CastlingRights{
			WhiteKingside:  g.board.CanCastle(White, true),
			WhiteQueenside: g.board.CanCastle(White, false),
			BlackKingside:  g.board.CanCastle(Black, true),
			BlackQueenside: g.board.CanCastle(Black, false),
		},
		LastMove: g.lastMove,
	}
	s.Players.White = ClientPlayer{ID: g.white, Color: White, Clock: g.whiteClock.Client()}
	s.Players.Black = ClientPlayer{ID: g.black, Color: Black, Clock: g.blackClock.Client()}
	return s
}

// RegisterConnection attaches a websocket for playerID and pushes the
// current state. A second connection for the same player is closed and
// refused with ErrAlreadyConnected.
func (g *Game) RegisterConnection(playerID string, conn Conn) error {
	g.mu.Lock()
	_, seated := g.colorOf(playerID)
	isAuthorized := seated || g.canSpectate()
	state := g.state()
	g.mu.Unlock()

	if !isAuthorized {
		return fmt.Errorf("%w: not authorized to join game %s", ErrPlayerNotInGame, g.ID)
	}

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		g.connections.mu.Unlock()
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Connection already exists"),
		)
		conn.Close()
		return fmt.Errorf("%w: %s in game %s", ErrAlreadyConnected, playerID, g.ID)
	}
	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()
	log.Debugf("registered connection for player %s in game %s", playerID, g.ID)

	go g.broadcast(state)
	return nil
}

// UnregisterConnection detaches conn if it is still playerID's connection.
func (g *Game) UnregisterConnection(playerID string, conn Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()
	if current, ok := g.connections.connections[playerID]; ok && current == conn {
		delete(g.connections.connections, playerID)
	}
}

func (g *Game) ConnectionCount() int {
	g.connections.mu.RLock()
	defer g.connections.mu.RUnlock()
	return len(g.connections.connections)
}

// broadcast writes state to every connection, dropping those that fail.
func (g *Game) broadcast(state GameState) {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, state)
	if err != nil {
		log.Errorf("marshal state for game %s: %v", g.ID, err)
		return
	}

	g.connections.mu.RLock()
	active := make(map[string]Conn, len(g.connections.connections))
	for playerID, conn := range g.connections.connections {
		active[playerID] = conn
	}
	g.connections.mu.RUnlock()

	for playerID, conn := range active {
		if err := conn.WriteJSON(msg); err != nil {
			log.Warnf("send state to player %s: %v", playerID, err)
			g.UnregisterConnection(playerID, conn)
		}
	}
}
