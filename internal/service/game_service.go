package service

import (
	"fmt"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/storage"
	"github.com/google/uuid"
)

// BoardView is a read-only look at one square for a client deciding what to
// highlight or whether to ask for a promotion piece.
type BoardView struct {
	Square     string         `json:"square"`
	Piece      model.Piece    `json:"piece"`
	Movable    bool           `json:"movable"`
	LegalMoves []model.Square `json:"legalMoves"`
	Promotions []string       `json:"promotions"` // destinations that need a promotion choice
}

type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

func (gs *GameService) JoinGame(gameID string, playerID string) (model.Color, error) {
	return gs.gameManager.AddPlayerToGame(gameID, playerID)
}

// CreateGame opens a new game and seats its creator as White.
func (gs *GameService) CreateGame(playerID string) (string, error) {
	gameID := uuid.New().String()

	game, err := gs.gameManager.CreateGame(gameID)
	if err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}
	if playerID != "" {
		if _, err := gs.gameManager.AddPlayerToGame(game.ID, playerID); err != nil {
			return "", fmt.Errorf("failed to seat creator: %w", err)
		}
	}

	return gameID, nil
}

func (gs *GameService) CancelGame(gameID string, playerID string) error {
	return gs.gameManager.CancelGame(gameID, playerID)
}

func (gs *GameService) ListGames(playerID string) ([]storage.GameRecord, error) {
	return gs.gameManager.GamesFor(playerID)
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) LeaveMatchmaking(playerID string) bool {
	return gs.gameManager.LeaveMatchmaking(playerID)
}

func (gs *GameService) MatchFor(playerID string) (model.MatchFoundEvent, bool) {
	return gs.gameManager.MatchFor(playerID)
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	return gs.gameManager.GetGameState(gameID)
}

func (gs *GameService) HandleMove(gameID string, playerID string, move model.MoveRequest) (model.Move, error) {
	return gs.gameManager.MakeMove(gameID, playerID, move)
}

// InspectSquare describes square in gameID and where its piece may go.
func (gs *GameService) InspectSquare(gameID string, square string) (BoardView, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return BoardView{}, err
	}
	sq, err := model.ParseSquare(square)
	if err != nil {
		return BoardView{}, err
	}
	legal, err := game.LegalMoves(square)
	if err != nil {
		return BoardView{}, err
	}

	board := game.Snapshot()
	view := BoardView{
		Square:     sq.String(),
		Piece:      board.PieceAt(sq),
		Movable:    board.IsMovable(sq),
		LegalMoves: legal,
		Promotions: []string{},
	}
	for _, to := range legal {
		if board.IsPromotion(sq, to) {
			view.Promotions = append(view.Promotions, to.String())
		}
	}
	return view, nil
}

func (gs *GameService) RenderBoard(gameID string) (string, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return "", err
	}
	return game.Render(), nil
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	return gs.gameManager.RegisterConnection(gameID, playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	gs.gameManager.UnregisterConnection(gameID, playerID, conn)
}

func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID, ch)
}
