package model

import "fmt"

// Square addresses a board cell. X is the file (0 = a), Y the row counted
// from Black's back rank (0 = rank 8, 7 = rank 1).
type Square struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func boundaryCheck(x, y int) bool {
	return x >= 0 && x < 8 && y >= 0 && y < 8
}

// NewSquare converts a column/row pair, rejecting anything off the board.
func NewSquare(x, y int) (Square, error) {
	if !boundaryCheck(x, y) {
		return Square{}, fmt.Errorf("%w: (%d, %d) out of range", ErrInvalidSquare, x, y)
	}
	return Square{X: x, Y: y}, nil
}

// ParseSquare reads two-character square notation such as "e4".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return Square{}, fmt.Errorf("%w: %q must be two characters", ErrInvalidSquare, s)
	}
	file, rank := s[0], s[1]
	if file < 'a' || file > 'h' {
		return Square{}, fmt.Errorf("%w: file %q out of range", ErrInvalidSquare, file)
	}
	if rank < '1' || rank > '8' {
		return Square{}, fmt.Errorf("%w: rank %q out of range", ErrInvalidSquare, rank)
	}
	return Square{X: int(file - 'a'), Y: 8 - int(rank-'0')}, nil
}

// MustSquare is ParseSquare for constant input; it panics on malformed text.
func MustSquare(s string) Square {
	sq, err := ParseSquare(s)
	if err != nil {
		panic(err)
	}
	return sq
}

func (s Square) String() string {
	return fmt.Sprintf("%c%d", s.X+'a', 8-s.Y)
}

func (s Square) File() string {
	return fmt.Sprintf("%c", s.X+'a')
}

// offset returns the square displaced by (dx, dy) and whether it is on the board.
func (s Square) offset(dx, dy int) (Square, bool) {
	x, y := s.X+dx, s.Y+dy
	if !boundaryCheck(x, y) {
		return Square{}, false
	}
	return Square{X: x, Y: y}, true
}
