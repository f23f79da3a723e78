package model

import (
	"fmt"
	"strings"
)

type PieceType string

const (
	Empty  PieceType = ""
	Pawn   PieceType = "pawn"
	Knight PieceType = "knight"
	Bishop PieceType = "bishop"
	Rook   PieceType = "rook"
	Queen  PieceType = "queen"
	King   PieceType = "king"
)

// promotionTypes is the order promotion variants are generated in.
var promotionTypes = [...]PieceType{Queen, Rook, Bishop, Knight}

// Letter returns the notation letter for the piece type. Pawns and empty
// squares have none.
func (p PieceType) Letter() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	}
	return ""
}

func (p PieceType) String() string {
	if p == Empty {
		return "empty"
	}
	return string(p)
}

// ParsePieceType accepts a notation letter or a full name in any case.
// The empty string parses to Empty, which means "no promotion" to callers.
func ParsePieceType(s string) (PieceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Empty, nil
	case "p", "pawn":
		return Pawn, nil
	case "n", "knight":
		return Knight, nil
	case "b", "bishop":
		return Bishop, nil
	case "r", "rook":
		return Rook, nil
	case "q", "queen":
		return Queen, nil
	case "k", "king":
		return King, nil
	}
	return Empty, fmt.Errorf("%w: %q", ErrInvalidPiece, s)
}

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// backRank is the row a color's pieces start on.
func (c Color) backRank() int {
	if c == White {
		return 7
	}
	return 0
}

type Piece struct {
	Type  PieceType `json:"type"`
	Color Color     `json:"color"`
}

// EmptyPiece is the value of an unoccupied cell. It carries White as a
// placeholder color.
func EmptyPiece() Piece {
	return Piece{Type: Empty, Color: White}
}

func WhitePiece(t PieceType) Piece { return Piece{Type: t, Color: White} }
func BlackPiece(t PieceType) Piece { return Piece{Type: t, Color: Black} }

func (p Piece) IsEmpty() bool {
	return p.Type == Empty
}

// Equal compares type and color, except that all empty pieces are equal.
func (p Piece) Equal(o Piece) bool {
	if p.IsEmpty() || o.IsEmpty() {
		return p.IsEmpty() && o.IsEmpty()
	}
	return p == o
}

var glyphs = map[Color]map[PieceType]string{
	White: {Pawn: "♙", Knight: "♘", Bishop: "♗", Rook: "♖", Queen: "♕", King: "♔"},
	Black: {Pawn: "♟", Knight: "♞", Bishop: "♝", Rook: "♜", Queen: "♛", King: "♚"},
}

// Glyph returns the unicode chess symbol for the piece, or a space for an
// empty cell.
func (p Piece) Glyph() string {
	if p.IsEmpty() {
		return " "
	}
	return glyphs[p.Color][p.Type]
}

func (p Piece) String() string {
	if p.IsEmpty() {
		return "empty"
	}
	return fmt.Sprintf("%s %s", p.Color, p.Type)
}
