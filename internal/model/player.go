package model

type Player struct {
	ID    string
	Color Color
}

type ClientPlayer struct {
	ID    string      `json:"name"`
	Color Color       `json:"color"`
	Clock ClientClock `json:"clock"`
}

// MatchFoundEvent is sent to both players when matchmaking pairs them.
type MatchFoundEvent struct {
	GameID string `json:"gameId"`
	Color  Color  `json:"color"`
}
