package model

import "github.com/gofiber/fiber/v2/log"

type direction struct {
	X, Y int
}

var (
	rookDirs   = []direction{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}}
	bishopDirs = []direction{{X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1}}
	knightDirs = []direction{{X: 2, Y: 1}, {X: 2, Y: -1}, {X: -2, Y: 1}, {X: -2, Y: -1}, {X: 1, Y: 2}, {X: 1, Y: -2}, {X: -1, Y: 2}, {X: -1, Y: -2}}
	kingDirs   = []direction{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}, {X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1}}
)

// PseudoLegalMoves returns every move the piece on from may make according to
// its movement and occupancy rules. King safety is not considered. An empty
// square yields no moves.
func (b *Board) PseudoLegalMoves(from Square) []Move {
	piece := b.PieceAt(from)
	switch piece.Type {
	case Pawn:
		return b.pawnMoves(from, piece.Color)
	case Knight:
		return b.knightMoves(from, piece.Color)
	case Bishop:
		return b.bishopMoves(from, piece.Color)
	case Rook:
		return b.rookMoves(from, piece.Color)
	case Queen:
		return b.queenMoves(from, piece.Color)
	case King:
		return b.kingMoves(from, piece.Color)
	default:
		return []Move{}
	}
}

// LegalTargets returns the distinct destination squares generated from sq.
func (b *Board) LegalTargets(from Square) []Square {
	seen := make(map[Square]bool)
	targets := []Square{}
	for _, m := range b.PseudoLegalMoves(from) {
		if !seen[m.To] {
			seen[m.To] = true
			targets = append(targets, m.To)
		}
	}
	return targets
}

func (b *Board) pawnMoves(from Square, color Color) []Move {
	piece := Piece{Type: Pawn, Color: color}
	moves := []Move{}
	dir, startRow, lastRow := -1, 6, 0
	if color == Black {
		dir, startRow, lastRow = 1, 1, 7
	}

	// Advance one, or promote on the last rank
	if one, ok := from.offset(0, dir); ok && b.IsEmpty(one) {
		mv := Move{Piece: piece, From: from, To: one}
		if one.Y == lastRow {
			for _, t := range promotionTypes {
				moves = append(moves, mv.promote(t))
			}
		} else {
			moves = append(moves, mv)
		}
		// Advance two from the starting row
		if from.Y == startRow {
			if two, ok := from.offset(0, 2*dir); ok && b.IsEmpty(two) {
				moves = append(moves, Move{Piece: piece, From: from, To: two})
			}
		}
	}
	// Captures never carry a promotion, even onto the last rank
	for _, dx := range []int{-1, 1} {
		target, ok := from.offset(dx, dir)
		if !ok {
			continue
		}
		if c, occupied := b.ColorAt(target); occupied && c != color {
			moves = append(moves, Move{Piece: piece, From: from, To: target, Capture: true})
		}
	}
	return moves
}

func (b *Board) knightMoves(from Square, color Color) []Move {
	return b.stepMoves(Piece{Type: Knight, Color: color}, from, knightDirs)
}

func (b *Board) bishopMoves(from Square, color Color) []Move {
	return b.slideMoves(Piece{Type: Bishop, Color: color}, from, bishopDirs)
}

func (b *Board) rookMoves(from Square, color Color) []Move {
	return b.slideMoves(Piece{Type: Rook, Color: color}, from, rookDirs)
}

func (b *Board) queenMoves(from Square, color Color) []Move {
	queen := Piece{Type: Queen, Color: color}
	moves := b.rookMoves(from, color)
	moves = append(moves, b.bishopMoves(from, color)...)
	for i := range moves {
		moves[i].Piece = queen
	}
	return moves
}

func (b *Board) kingMoves(from Square, color Color) []Move {
	king := Piece{Type: King, Color: color}
	moves := b.stepMoves(king, from, kingDirs)
	if to, ok := from.offset(2, 0); ok && b.CanCastle(color, true) {
		moves = append(moves, Move{Piece: king, From: from, To: to, CastleKingside: true})
	}
	if to, ok := from.offset(-2, 0); ok && b.CanCastle(color, false) {
		moves = append(moves, Move{Piece: king, From: from, To: to, CastleQueenside: true})
	}
	return moves
}

// target classifies a destination for piece: a quiet move onto an empty
// square, a capture of the other color, or nothing when blocked by its own.
func (b *Board) target(piece Piece, from, to Square) (Move, bool) {
	c, occupied := b.ColorAt(to)
	if !occupied {
		return Move{Piece: piece, From: from, To: to}, true
	}
	if c != piece.Color {
		return Move{Piece: piece, From: from, To: to, Capture: true}, true
	}
	return Move{}, false
}

// stepMoves tries each offset once.
func (b *Board) stepMoves(piece Piece, from Square, dirs []direction) []Move {
	moves := []Move{}
	for _, dir := range dirs {
		to, ok := from.offset(dir.X, dir.Y)
		if !ok {
			continue
		}
		if mv, ok := b.target(piece, from, to); ok {
			moves = append(moves, mv)
		}
	}
	return moves
}

// slideMoves walks each direction until the edge or the first occupied square.
func (b *Board) slideMoves(piece Piece, from Square, dirs []direction) []Move {
	moves := []Move{}
	for _, dir := range dirs {
		moves = b.ray(moves, piece, from, dir)
	}
	return moves
}

func (b *Board) ray(moves []Move, piece Piece, from Square, dir direction) []Move {
	to, ok := from.offset(dir.X, dir.Y)
	for ok {
		mv, free := b.target(piece, from, to)
		if free {
			moves = append(moves, mv)
		}
		if !b.IsEmpty(to) {
			break
		}
		to, ok = to.offset(dir.X, dir.Y)
	}
	return moves
}

// rookHome returns the starting square of color's rook on the given side.
func rookHome(color Color, kingside bool) Square {
	x := 0
	if kingside {
		x = 7
	}
	return Square{X: x, Y: color.backRank()}
}

// CanCastle reports whether color may still castle on the given side. The
// decision rests on history: a king or rook that has ever moved forfeits the
// right even if it later returns home. Attacked squares are not considered.
func (b *Board) CanCastle(color Color, kingside bool) bool {
	if b.kingHasMoved(color) || b.rookHasMoved(color, kingside) {
		return false
	}
	home := rookHome(color, kingside)
	if !b.PiecePresent(Piece{Type: Rook, Color: color}, home) {
		log.Warnf("castling: %s rook missing from %s although it never moved", color, home)
		return false
	}
	step := 1
	if kingside {
		step = -1
	}
	for x := home.X + step; x != 4; x += step {
		if !b.IsEmpty(Square{X: x, Y: home.Y}) {
			return false
		}
	}
	return true
}

func (b *Board) kingHasMoved(color Color) bool {
	for _, m := range b.history {
		if m.Piece.Type == King && m.Piece.Color == color {
			return true
		}
	}
	return false
}

func (b *Board) rookHasMoved(color Color, kingside bool) bool {
	home := rookHome(color, kingside)
	for _, m := range b.history {
		if m.Piece.Type == Rook && m.Piece.Color == color && m.From == home {
			return true
		}
	}
	return false
}
