package model

import "github.com/gofiber/fiber/v2/log"

// parseRequest resolves a raw request into a Move. ok is false when there is
// no piece on from.
func (b *Board) parseRequest(from, to Square, promotion PieceType) (Move, bool) {
	piece := b.PieceAt(from)
	if piece.IsEmpty() {
		return Move{}, false
	}
	// Any piece shifting two files reads as a castle while that castle is
	// available; validMove then rejects it unless the king makes it.
	switch dx := to.X - from.X; {
	case dx == 2 && b.CanCastle(piece.Color, true):
		return Move{Piece: piece, From: from, To: to, CastleKingside: true}, true
	case dx == -2 && b.CanCastle(piece.Color, false):
		return Move{Piece: piece, From: from, To: to, CastleQueenside: true}, true
	}
	if !b.CanPromote(from) {
		promotion = Empty
	}
	return Move{
		Piece:     piece,
		From:      from,
		To:        to,
		Capture:   b.canTake(from, to),
		Promotion: promotion,
	}, true
}

func (b *Board) validMove(m Move) bool {
	if !b.PiecePresent(m.Piece, m.From) {
		return false
	}
	if m.Piece.Color != b.turn {
		return false
	}
	for _, candidate := range b.PseudoLegalMoves(m.From) {
		if candidate == m {
			return true
		}
	}
	return false
}

// MovePiece applies the move from -> to if it is legal for the side to move
// and reports whether it did. A rejected request leaves the board untouched.
// The promotion choice is ignored unless the piece on from can promote.
func (b *Board) MovePiece(from, to Square, promotion PieceType) bool {
	mv, ok := b.parseRequest(from, to, promotion)
	if !ok {
		log.Debugf("move %s-%s rejected: no piece on %s", from, to, from)
		return false
	}
	if !b.validMove(mv) {
		log.Debugf("move %s-%s rejected: %s is not a legal %s move", from, to, mv.Notation(), mv.Piece)
		return false
	}
	b.apply(mv)
	b.history = append(b.history, mv)
	log.Debugf("played %s", mv.Notation())
	return true
}

// MoveByNotation is MovePiece for squares written as text, e.g. ("e2", "e4").
// Malformed squares return an error and leave the board untouched.
func (b *Board) MoveByNotation(from, to string, promotion PieceType) (bool, error) {
	fromSq, err := ParseSquare(from)
	if err != nil {
		return false, err
	}
	toSq, err := ParseSquare(to)
	if err != nil {
		return false, err
	}
	return b.MovePiece(fromSq, toSq, promotion), nil
}

// apply mutates the grid for an already validated move and passes the turn.
func (b *Board) apply(mv Move) {
	row := mv.Piece.Color.backRank()
	color := mv.Piece.Color
	switch {
	case mv.CastleKingside:
		b.clear(Square{X: 4, Y: row})
		b.set(Square{X: 5, Y: row}, Piece{Type: Rook, Color: color})
		b.set(Square{X: 6, Y: row}, Piece{Type: King, Color: color})
		b.clear(Square{X: 7, Y: row})
	case mv.CastleQueenside:
		b.clear(Square{X: 0, Y: row})
		b.clear(Square{X: 1, Y: row})
		b.set(Square{X: 2, Y: row}, Piece{Type: King, Color: color})
		b.set(Square{X: 3, Y: row}, Piece{Type: Rook, Color: color})
		b.clear(Square{X: 4, Y: row})
	default:
		piece := b.PieceAt(mv.From)
		if mv.Promotion != Empty {
			piece.Type = mv.Promotion
		}
		b.set(mv.To, piece)
		b.clear(mv.From)
	}
	b.turn = b.turn.Opponent()
}
