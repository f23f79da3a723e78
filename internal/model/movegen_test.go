package model

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// emptyBoard returns a board with no pieces and White to move.
func emptyBoard() *Board {
	b := &Board{turn: White}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			b.grid[y][x] = EmptyPiece()
		}
	}
	return b
}

func place(b *Board, sq string, p Piece) {
	b.set(MustSquare(sq), p)
}

func targets(moves []Move) []string {
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		out = append(out, m.To.String())
	}
	sort.Strings(out)
	return out
}

func TestInitialPawnMoves(t *testing.T) {
	b := NewBoard()
	for _, row := range []string{"2", "7"} {
		for file := 'a'; file <= 'h'; file++ {
			sq := string(file) + row
			moves := b.PseudoLegalMoves(MustSquare(sq))
			if len(moves) != 2 {
				t.Errorf("pawn on %s has %d moves, want 2: %v", sq, len(moves), moves)
			}
		}
	}

	got := targets(b.PseudoLegalMoves(MustSquare("a2")))
	if diff := cmp.Diff([]string{"a3", "a4"}, got); diff != "" {
		t.Errorf("a2 targets mismatch (-want +got):\n%s", diff)
	}
	got = targets(b.PseudoLegalMoves(MustSquare("a7")))
	if diff := cmp.Diff([]string{"a5", "a6"}, got); diff != "" {
		t.Errorf("a7 targets mismatch (-want +got):\n%s", diff)
	}
}

func TestInitialKnightMoves(t *testing.T) {
	b := NewBoard()
	tests := map[string][]string{
		"b1": {"a3", "c3"},
		"g1": {"f3", "h3"},
		"b8": {"a6", "c6"},
		"g8": {"f6", "h6"},
	}
	for from, want := range tests {
		got := targets(b.PseudoLegalMoves(MustSquare(from)))
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("knight %s targets mismatch (-want +got):\n%s", from, diff)
		}
	}
}

func TestInitialBackRankIsBlocked(t *testing.T) {
	b := NewBoard()
	for _, sq := range []string{"a1", "c1", "d1", "e1", "f1", "h1", "a8", "c8", "d8", "e8", "f8", "h8"} {
		if moves := b.PseudoLegalMoves(MustSquare(sq)); len(moves) != 0 {
			t.Errorf("%s has moves in the start position: %v", sq, moves)
		}
	}
	if moves := b.PseudoLegalMoves(MustSquare("e4")); len(moves) != 0 {
		t.Errorf("empty square produced moves: %v", moves)
	}
}

func TestSlidingPiecesOnOpenBoard(t *testing.T) {
	tests := []struct {
		piece PieceType
		want  int
	}{
		{Rook, 14},
		{Bishop, 13},
		{Queen, 27},
		{Knight, 8},
		{King, 8},
	}
	for _, tt := range tests {
		t.Run(string(tt.piece), func(t *testing.T) {
			b := emptyBoard()
			b.history = []Move{{Piece: WhitePiece(King)}} // rule out castling
			place(b, "d4", WhitePiece(tt.piece))
			moves := b.PseudoLegalMoves(MustSquare("d4"))
			if len(moves) != tt.want {
				t.Fatalf("%s on d4 has %d moves, want %d", tt.piece, len(moves), tt.want)
			}
			for _, m := range moves {
				if m.Piece != WhitePiece(tt.piece) {
					t.Errorf("move %v tagged with %v", m, m.Piece)
				}
				if m.Capture {
					t.Errorf("move %v flagged as capture on an empty board", m)
				}
			}
		})
	}
}

func TestRookRayStopsAtBlockers(t *testing.T) {
	b := emptyBoard()
	place(b, "a1", WhitePiece(Rook))
	place(b, "a4", BlackPiece(Pawn))
	place(b, "c1", WhitePiece(Knight))

	moves := b.PseudoLegalMoves(MustSquare("a1"))
	if diff := cmp.Diff([]string{"a2", "a3", "a4", "b1"}, targets(moves)); diff != "" {
		t.Fatalf("rook targets mismatch (-want +got):\n%s", diff)
	}
	for _, m := range moves {
		if wantCapture := m.To == MustSquare("a4"); m.Capture != wantCapture {
			t.Errorf("move to %s capture = %v, want %v", m.To, m.Capture, wantCapture)
		}
	}
}

func TestBishopCapturesOnlyOpponent(t *testing.T) {
	b := emptyBoard()
	place(b, "c1", WhitePiece(Bishop))
	place(b, "e3", BlackPiece(Knight))
	place(b, "b2", WhitePiece(Pawn))

	moves := b.PseudoLegalMoves(MustSquare("c1"))
	if diff := cmp.Diff([]string{"d2", "e3"}, targets(moves)); diff != "" {
		t.Errorf("bishop targets mismatch (-want +got):\n%s", diff)
	}
}

func TestKnightSkipsOwnPieces(t *testing.T) {
	b := emptyBoard()
	place(b, "a1", WhitePiece(Knight))
	place(b, "b3", WhitePiece(Pawn))
	place(b, "c2", BlackPiece(Pawn))

	moves := b.PseudoLegalMoves(MustSquare("a1"))
	want := []Move{{Piece: WhitePiece(Knight), From: MustSquare("a1"), To: MustSquare("c2"), Capture: true}}
	if diff := cmp.Diff(want, moves); diff != "" {
		t.Errorf("knight moves mismatch (-want +got):\n%s", diff)
	}
}

func TestPawnMoves(t *testing.T) {
	tests := []struct {
		name  string
		setup map[string]Piece
		from  string
		want  []string
	}{
		{
			name:  "blocked double advance",
			setup: map[string]Piece{"e2": WhitePiece(Pawn), "e4": BlackPiece(Pawn)},
			from:  "e2",
			want:  []string{"e3"},
		},
		{
			name:  "fully blocked",
			setup: map[string]Piece{"e2": WhitePiece(Pawn), "e3": BlackPiece(Knight)},
			from:  "e2",
			want:  []string{},
		},
		{
			name: "captures only the opponent",
			setup: map[string]Piece{
				"e4": WhitePiece(Pawn),
				"d5": BlackPiece(Pawn),
				"f5": WhitePiece(Knight),
			},
			from: "e4",
			want: []string{"d5", "e5"},
		},
		{
			name:  "no diagonal onto empty squares",
			setup: map[string]Piece{"b3": WhitePiece(Pawn)},
			from:  "b3",
			want:  []string{"b4"},
		},
		{
			name:  "black moves down the board",
			setup: map[string]Piece{"c7": BlackPiece(Pawn), "b6": WhitePiece(Bishop)},
			from:  "c7",
			want:  []string{"b6", "c5", "c6"},
		},
		{
			name:  "edge file",
			setup: map[string]Piece{"h5": BlackPiece(Pawn), "g4": WhitePiece(Pawn)},
			from:  "h5",
			want:  []string{"g4", "h4"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := emptyBoard()
			for sq, p := range tt.setup {
				place(b, sq, p)
			}
			got := targets(b.PseudoLegalMoves(MustSquare(tt.from)))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("targets mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPawnPromotionVariants(t *testing.T) {
	b := emptyBoard()
	place(b, "e7", WhitePiece(Pawn))
	place(b, "d2", BlackPiece(Pawn))

	from := MustSquare("e7")
	base := Move{Piece: WhitePiece(Pawn), From: from, To: MustSquare("e8")}
	want := []Move{base.promote(Queen), base.promote(Rook), base.promote(Bishop), base.promote(Knight)}
	if diff := cmp.Diff(want, b.PseudoLegalMoves(from)); diff != "" {
		t.Errorf("white promotion moves mismatch (-want +got):\n%s", diff)
	}
	if !b.CanPromote(from) || !b.IsPromotion(from, MustSquare("e8")) {
		t.Error("e7 pawn should be able to promote on e8")
	}

	black := b.PseudoLegalMoves(MustSquare("d2"))
	if len(black) != 4 {
		t.Fatalf("black promotion produced %d moves, want 4", len(black))
	}
	for _, m := range black {
		if m.To != MustSquare("d1") || m.Promotion == Empty {
			t.Errorf("unexpected black promotion move %+v", m)
		}
	}
}

func TestPawnCaptureOntoLastRankDoesNotPromote(t *testing.T) {
	b := emptyBoard()
	place(b, "e7", WhitePiece(Pawn))
	place(b, "e8", BlackPiece(King))
	place(b, "d8", BlackPiece(Rook))

	from := MustSquare("e7")
	want := []Move{{Piece: WhitePiece(Pawn), From: from, To: MustSquare("d8"), Capture: true}}
	if diff := cmp.Diff(want, b.PseudoLegalMoves(from)); diff != "" {
		t.Errorf("moves mismatch (-want +got):\n%s", diff)
	}
	if b.CanPromote(from) {
		t.Error("CanPromote should be false when only a capture reaches the last rank")
	}
}

func castlingBoard() *Board {
	b := emptyBoard()
	place(b, "e1", WhitePiece(King))
	place(b, "a1", WhitePiece(Rook))
	place(b, "h1", WhitePiece(Rook))
	place(b, "e8", BlackPiece(King))
	place(b, "a8", BlackPiece(Rook))
	place(b, "h8", BlackPiece(Rook))
	return b
}

func TestKingMovesIncludeCastles(t *testing.T) {
	b := castlingBoard()
	moves := b.PseudoLegalMoves(MustSquare("e1"))
	if diff := cmp.Diff([]string{"c1", "d1", "d2", "e2", "f1", "f2", "g1"}, targets(moves)); diff != "" {
		t.Fatalf("king targets mismatch (-want +got):\n%s", diff)
	}
	for _, m := range moves {
		switch m.To.String() {
		case "g1":
			if !m.CastleKingside || m.CastleQueenside || m.Capture {
				t.Errorf("g1 move flags wrong: %+v", m)
			}
		case "c1":
			if !m.CastleQueenside || m.CastleKingside || m.Capture {
				t.Errorf("c1 move flags wrong: %+v", m)
			}
		default:
			if m.IsCastle() {
				t.Errorf("ordinary king move flagged as castle: %+v", m)
			}
		}
	}
}

func TestCanCastle(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(b *Board)
		color    Color
		kingside bool
		want     bool
	}{
		{"white kingside", func(b *Board) {}, White, true, true},
		{"black queenside", func(b *Board) {}, Black, false, true},
		{"piece between", func(b *Board) { place(b, "b1", WhitePiece(Knight)) }, White, false, false},
		{"enemy piece between", func(b *Board) { place(b, "f8", WhitePiece(Bishop)) }, Black, true, false},
		{"rook missing", func(b *Board) { b.clear(MustSquare("h1")) }, White, true, false},
		{"enemy rook on home square", func(b *Board) { place(b, "h1", BlackPiece(Rook)) }, White, true, false},
		{"king moved", func(b *Board) {
			b.history = append(b.history, Move{Piece: WhitePiece(King), From: MustSquare("e1"), To: MustSquare("e2")})
		}, White, false, false},
		{"kingside rook moved", func(b *Board) {
			b.history = append(b.history, Move{Piece: BlackPiece(Rook), From: MustSquare("h8"), To: MustSquare("h7")})
		}, Black, true, false},
		{"other rook moved", func(b *Board) {
			b.history = append(b.history, Move{Piece: BlackPiece(Rook), From: MustSquare("a8"), To: MustSquare("a7")})
		}, Black, true, true},
		{"opponent king moved", func(b *Board) {
			b.history = append(b.history, Move{Piece: BlackPiece(King), From: MustSquare("e8"), To: MustSquare("e7")})
		}, White, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := castlingBoard()
			tt.mutate(b)
			if got := b.CanCastle(tt.color, tt.kingside); got != tt.want {
				t.Errorf("CanCastle(%s, %v) = %v, want %v", tt.color, tt.kingside, got, tt.want)
			}
		})
	}
}

func TestLegalTargets(t *testing.T) {
	b := emptyBoard()
	place(b, "e7", WhitePiece(Pawn))
	got := b.LegalTargets(MustSquare("e7"))
	if diff := cmp.Diff([]Square{MustSquare("e8")}, got); diff != "" {
		t.Errorf("promotion variants should collapse to one target (-want +got):\n%s", diff)
	}
}
