package controller

import (
	"errors"

	"github.com/benbeisheim/chess-backend/internal/middleware"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

// Register mounts the game routes on router, which is expected to run
// EnsurePlayerID first.
func (gc *GameController) Register(router fiber.Router) {
	router.Post("/create", gc.CreateGame)
	router.Post("/join/:gameId", gc.JoinGame)
	router.Post("/matchmaking/join", gc.JoinMatchmaking)
	router.Post("/matchmaking/leave", gc.LeaveMatchmaking)
	router.Get("/matchmaking/status", gc.MatchStatus)
	router.Get("/history", gc.ListGames)
	router.Get("/:gameId", gc.GetGameState)
	router.Delete("/:gameId", gc.CancelGame)
	router.Post("/:gameId/move", gc.MakeMove)
	router.Get("/:gameId/square/:square", gc.InspectSquare)
	router.Get("/:gameId/board", gc.RenderBoard)
}

// moveBody is the wire form of a move; promotion may be a letter or a name.
type moveBody struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion"`
}

func (b moveBody) request() (model.MoveRequest, error) {
	promotion, err := model.ParsePieceType(b.Promotion)
	if err != nil {
		return model.MoveRequest{}, err
	}
	return model.MoveRequest{From: b.From, To: b.To, Promotion: promotion}, nil
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrInvalidSquare), errors.Is(err, model.ErrInvalidPiece):
		return fiber.StatusBadRequest
	case errors.Is(err, model.ErrIllegalMove):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, model.ErrNotYourTurn), errors.Is(err, model.ErrPlayerNotInGame):
		return fiber.StatusForbidden
	case errors.Is(err, model.ErrGameFull), errors.Is(err, model.ErrAlreadyQueued), errors.Is(err, service.ErrGameExists),
		errors.Is(err, service.ErrGameStarted):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

func fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	gameID, err := gc.gameService.CreateGame(middleware.PlayerID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Game created",
		"gameId":  gameID,
		"color":   model.White,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := middleware.PlayerID(c)

	color, err := gc.gameService.JoinGame(gameID, playerID)
	if err != nil {
		return fail(c, err)
	}
	log.Debugf("player %s joined %s as %s", playerID, gameID, color)

	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(gameState)
}

func (gc *GameController) CancelGame(c *fiber.Ctx) error {
	if err := gc.gameService.CancelGame(c.Params("gameId"), middleware.PlayerID(c)); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListGames returns the caller's archived games.
func (gc *GameController) ListGames(c *fiber.Ctx) error {
	games, err := gc.gameService.ListGames(middleware.PlayerID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(games)
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var body moveBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid move body",
		})
	}
	req, err := body.request()
	if err != nil {
		return fail(c, err)
	}

	gameID := c.Params("gameId")
	mv, err := gc.gameService.HandleMove(gameID, middleware.PlayerID(c), req)
	if err != nil {
		return fail(c, err)
	}
	state, err := gc.gameService.GetGameState(gameID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"move":     mv,
		"notation": mv.Notation(),
		"state":    state,
	})
}

func (gc *GameController) InspectSquare(c *fiber.Ctx) error {
	view, err := gc.gameService.InspectSquare(c.Params("gameId"), c.Params("square"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(view)
}

func (gc *GameController) RenderBoard(c *fiber.Ctx) error {
	board, err := gc.gameService.RenderBoard(c.Params("gameId"))
	if err != nil {
		return fail(c, err)
	}
	return c.SendString(board)
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	if err := gc.gameService.JoinMatchmaking(middleware.PlayerID(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"status": "queued",
	})
}

func (gc *GameController) LeaveMatchmaking(c *fiber.Ctx) error {
	if !gc.gameService.LeaveMatchmaking(middleware.PlayerID(c)) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "not in queue",
		})
	}
	return c.JSON(fiber.Map{
		"status": "left",
	})
}

// MatchStatus lets clients without a socket poll for their match.
func (gc *GameController) MatchStatus(c *fiber.Ctx) error {
	event, ok := gc.gameService.MatchFor(middleware.PlayerID(c))
	if !ok {
		return c.JSON(fiber.Map{
			"status": "waiting",
		})
	}
	return c.JSON(fiber.Map{
		"status": "matched",
		"match":  event,
	})
}
