package model

import "errors"

var (
	ErrInvalidSquare    = errors.New("invalid square")
	ErrInvalidPiece     = errors.New("invalid piece type")
	ErrIllegalMove      = errors.New("illegal move")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrGameFull         = errors.New("game is full")
	ErrPlayerNotInGame  = errors.New("player not in game")
	ErrAlreadyQueued    = errors.New("player already in queue")
	ErrAlreadyConnected = errors.New("player already connected")
)
