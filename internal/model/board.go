package model

import "strings"

var backRankOrder = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// Board is the rules engine state: the grid, the side to move and the
// ordered history of applied moves. History is the only record of whether a
// king or rook has moved, so it must never be truncated apart from Reset.
//
// A Board does no locking; callers serialize MovePiece against everything else.
type Board struct {
	grid    [8][8]Piece
	turn    Color
	history []Move
}

func NewBoard() *Board {
	b := &Board{}
	b.Reset()
	return b
}

// Reset restores the standard starting position with White to move.
func (b *Board) Reset() {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			b.grid[y][x] = EmptyPiece()
		}
	}
	for x, t := range backRankOrder {
		b.grid[0][x] = BlackPiece(t)
		b.grid[1][x] = BlackPiece(Pawn)
		b.grid[6][x] = WhitePiece(Pawn)
		b.grid[7][x] = WhitePiece(t)
	}
	b.turn = White
	b.history = nil
}

func (b *Board) Clone() *Board {
	c := &Board{grid: b.grid, turn: b.turn}
	c.history = append([]Move(nil), b.history...)
	return c
}

func (b *Board) Turn() Color {
	return b.turn
}

// History returns a copy of the applied moves, oldest first.
func (b *Board) History() []Move {
	return append([]Move(nil), b.history...)
}

// Grid returns a copy of the cells indexed [y][x].
func (b *Board) Grid() [8][8]Piece {
	return b.grid
}

func (b *Board) PieceAt(sq Square) Piece {
	return b.grid[sq.Y][sq.X]
}

func (b *Board) IsEmpty(sq Square) bool {
	return b.grid[sq.Y][sq.X].IsEmpty()
}

// IsMovable reports whether sq holds a piece belonging to the side to move.
func (b *Board) IsMovable(sq Square) bool {
	p := b.grid[sq.Y][sq.X]
	return !p.IsEmpty() && p.Color == b.turn
}

// ColorAt returns the color of the piece on sq; ok is false for empty cells.
func (b *Board) ColorAt(sq Square) (c Color, ok bool) {
	p := b.grid[sq.Y][sq.X]
	if p.IsEmpty() {
		return "", false
	}
	return p.Color, true
}

func (b *Board) PiecePresent(p Piece, sq Square) bool {
	return b.grid[sq.Y][sq.X].Equal(p)
}

// CanPromote reports whether any generated move from sq is a promotion.
func (b *Board) CanPromote(from Square) bool {
	for _, m := range b.PseudoLegalMoves(from) {
		if m.Promotion != Empty {
			return true
		}
	}
	return false
}

// IsPromotion reports whether moving from -> to would need a promotion choice.
func (b *Board) IsPromotion(from, to Square) bool {
	for _, m := range b.PseudoLegalMoves(from) {
		if m.To == to && m.Promotion != Empty {
			return true
		}
	}
	return false
}

func (b *Board) canTake(from, to Square) bool {
	for _, m := range b.PseudoLegalMoves(from) {
		if m.To == to && m.Capture {
			return true
		}
	}
	return false
}

func (b *Board) set(sq Square, p Piece) {
	b.grid[sq.Y][sq.X] = p
}

func (b *Board) clear(sq Square) {
	b.grid[sq.Y][sq.X] = EmptyPiece()
}

// String draws the board with rank 8 at the top.
func (b *Board) String() string {
	var sb strings.Builder
	for _, row := range b.grid {
		for _, p := range row {
			sb.WriteString(" ")
			sb.WriteString(p.Glyph())
			sb.WriteString(" ")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
