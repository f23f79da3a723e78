package model

import "strings"

// MoveRequest is what a client sends: squares in notation and an optional
// promotion choice.
type MoveRequest struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Promotion PieceType `json:"promotion,omitempty"`
}

// Move describes a candidate or executed move. A zero Promotion means none.
type Move struct {
	Piece           Piece     `json:"piece"`
	From            Square    `json:"from"`
	To              Square    `json:"to"`
	Capture         bool      `json:"capture"`
	Promotion       PieceType `json:"promotion,omitempty"`
	CastleKingside  bool      `json:"castleKingside"`
	CastleQueenside bool      `json:"castleQueenside"`
}

func (m Move) IsCastle() bool {
	return m.CastleKingside || m.CastleQueenside
}

// promote returns a copy of m promoting to t.
func (m Move) promote(t PieceType) Move {
	m.Promotion = t
	return m
}

// Notation formats the move in short algebraic style, e.g. "Nf3", "exd5",
// "e8=Q" or "O-O". Check markers are never added.
func (m Move) Notation() string {
	switch {
	case m.CastleKingside:
		return "O-O"
	case m.CastleQueenside:
		return "O-O-O"
	}
	var sb strings.Builder
	if m.Piece.Type == Pawn {
		if m.Capture {
			sb.WriteString(m.From.File())
		}
	} else {
		sb.WriteString(m.Piece.Type.Letter())
	}
	if m.Capture {
		sb.WriteByte('x')
	}
	sb.WriteString(m.To.String())
	if m.Promotion != Empty {
		sb.WriteByte('=')
		sb.WriteString(m.Promotion.Letter())
	}
	return sb.String()
}

func (m Move) String() string {
	return m.Notation()
}

// Request converts an executed move back into the request that produces it.
func (m Move) Request() MoveRequest {
	return MoveRequest{From: m.From.String(), To: m.To.String(), Promotion: m.Promotion}
}

// Ply is a history entry as presented to clients.
type Ply struct {
	Move     Move   `json:"move"`
	Notation string `json:"notation"`
}

type SimpleMove struct {
	From Square `json:"from"`
	To   Square `json:"to"`
}
