// service/game_manager.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/storage"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
	ErrGameStarted  = errors.New("game already started")
)

// Archive persists games between restarts.
type Archive interface {
	SaveGame(rec storage.GameRecord) error
	LoadGame(id string) (storage.GameRecord, error)
	ListGames() ([]storage.GameRecord, error)
	DeleteGame(id string) error
}

type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan string
	matches          map[string]model.MatchFoundEvent // playerID -> latest match
	archive          Archive
	clock            time.Duration
	mu               sync.RWMutex
	persistMu        sync.Mutex // orders snapshot and save across moves
}

func NewGameManager(archive Archive, clock time.Duration) *GameManager {
	return &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan string),
		matches:          make(map[string]model.MatchFoundEvent),
		archive:          archive,
		clock:            clock,
	}
}

// Run pairs queued players every interval until ctx is cancelled.
func (gm *GameManager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			gm.processMatchmaking()
		}
	}
}

// processMatchmaking seats every available pair in a new game and notifies
// both players.
func (gm *GameManager) processMatchmaking() {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	for {
		player1, player2, ok := gm.queue.GetNextPair()
		if !ok {
			return
		}

		gameID := uuid.New().String()
		game := model.NewGame(gameID, gm.clock)
		p1Color, err := game.AddPlayer(player1.ID)
		if err != nil {
			log.Errorf("seat %s in %s: %v", player1.ID, gameID, err)
			continue
		}
		p2Color, err := game.AddPlayer(player2.ID)
		if err != nil {
			log.Errorf("seat %s in %s: %v", player2.ID, gameID, err)
			continue
		}
		gm.games[gameID] = game
		gm.persist(game)
		log.Infof("matched %s (%s) and %s (%s) in game %s", player1.ID, p1Color, player2.ID, p2Color, gameID)

		gm.notifyMatch(player1.ID, model.MatchFoundEvent{GameID: gameID, Color: p1Color})
		gm.notifyMatch(player2.ID, model.MatchFoundEvent{GameID: gameID, Color: p2Color})
	}
}

// notifyMatch records the match and pushes it to the player's matchmaking
// channel, if one is registered. Callers hold gm.mu.
func (gm *GameManager) notifyMatch(playerID string, event model.MatchFoundEvent) {
	gm.matches[playerID] = event
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Errorf("marshal match for %s: %v", playerID, err)
		return
	}
	select {
	case ch <- string(payload):
		delete(gm.matchingChannels, playerID)
		close(ch)
	default:
		log.Warnf("matchmaking channel for %s is full; match %s not pushed", playerID, event.GameID)
	}
}

func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existing, exists := gm.matchingChannels[playerID]; exists {
		delete(gm.matchingChannels, playerID)
		close(existing)
	}
	gm.matchingChannels[playerID] = ch
}

// UnregisterMatchmakingChannel forgets ch if it is still the player's
// channel. The channel is closed by whoever sent on it, or here.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if current, ok := gm.matchingChannels[playerID]; ok && current == ch {
		delete(gm.matchingChannels, playerID)
		close(ch)
	}
}

func (gm *GameManager) CreateGame(gameID string) (*model.Game, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return nil, ErrGameExists
	}

	game := model.NewGame(gameID, gm.clock)
	gm.games[gameID] = game
	gm.persist(game)
	return game, nil
}

// GetGame returns a live game, loading it from the archive on first use.
func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	game, exists := gm.games[gameID]
	gm.mu.RUnlock()
	if exists {
		return game, nil
	}
	if gm.archive == nil {
		return nil, ErrGameNotFound
	}

	rec, err := gm.archive.LoadGame(gameID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", gameID, err)
	}
	restored, err := rec.Restore(gm.clock)
	if err != nil {
		return nil, err
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()
	if game, exists := gm.games[gameID]; exists {
		return game, nil
	}
	gm.games[gameID] = restored
	log.Infof("restored game %s with %d moves", gameID, len(rec.Moves))
	return restored, nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (model.Color, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return "", err
	}
	color, err := game.AddPlayer(playerID)
	if err != nil {
		return "", err
	}
	gm.persist(game)
	return color, nil
}

// GamesFor lists archived games playerID is seated in, most recent first.
func (gm *GameManager) GamesFor(playerID string) ([]storage.GameRecord, error) {
	games := []storage.GameRecord{}
	if gm.archive == nil {
		return games, nil
	}
	all, err := gm.archive.ListGames()
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	for _, rec := range all {
		if rec.White == playerID || rec.Black == playerID {
			games = append(games, rec)
		}
	}
	return games, nil
}

// CancelGame drops a game no one has moved in yet. Only a seated player may
// cancel it.
func (gm *GameManager) CancelGame(gameID string, playerID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	if !game.IsPlayerInGame(playerID) {
		return model.ErrPlayerNotInGame
	}
	if len(game.Moves()) > 0 {
		return ErrGameStarted
	}

	gm.mu.Lock()
	delete(gm.games, gameID)
	gm.mu.Unlock()

	if gm.archive != nil {
		if err := gm.archive.DeleteGame(gameID); err != nil {
			return fmt.Errorf("delete game %s: %w", gameID, err)
		}
	}
	log.Infof("game %s cancelled by %s", gameID, playerID)
	return nil
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	delete(gm.matches, playerID)
	return gm.queue.AddPlayer(model.Player{ID: playerID})
}

func (gm *GameManager) LeaveMatchmaking(playerID string) bool {
	return gm.queue.RemovePlayer(playerID)
}

// MatchFor returns the latest match made for playerID, if any.
func (gm *GameManager) MatchFor(playerID string) (model.MatchFoundEvent, bool) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	event, ok := gm.matches[playerID]
	return event, ok
}

func (gm *GameManager) QueueSize() int {
	return gm.queue.Size()
}

func (gm *GameManager) GetGameState(gameID string) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

// MakeMove plays a move and archives the game once it is accepted.
func (gm *GameManager) MakeMove(gameID string, playerID string, move model.MoveRequest) (model.Move, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.Move{}, err
	}
	mv, err := game.MakeMove(playerID, move)
	if err != nil {
		return model.Move{}, err
	}
	gm.persist(game)
	return mv, nil
}

func (gm *GameManager) persist(game *model.Game) {
	if gm.archive == nil {
		return
	}
	gm.persistMu.Lock()
	defer gm.persistMu.Unlock()
	if err := gm.archive.SaveGame(storage.NewRecord(game)); err != nil {
		log.Errorf("archive game %s: %v", game.ID, err)
	}
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	gm.mu.RLock()
	game, exists := gm.games[gameID]
	gm.mu.RUnlock()
	if !exists {
		return
	}
	game.UnregisterConnection(playerID, conn)
}
