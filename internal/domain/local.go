package domain

// LocalMode selects who sits in the second local seat.
type LocalMode string

const (
	ModeVsComputer    LocalMode = "vs_computer"
	ModeVsPlayerLocal LocalMode = "vs_player_local"
)

// LocalGameState is the in-process state of a solo or hot-seat game.
// Roles are the seat names themselves; there is no participant mapping.
type LocalGameState struct {
	Mode        LocalMode      `json:"mode"`
	Scores      map[string]int `json:"scores"`
	Current     string         `json:"current"`
	DiceValue   int            `json:"diceValue"`
	TargetScore int            `json:"targetScore"`
	Winner      string         `json:"winner,omitempty"`
}

// OpponentRole is the second seat for the mode.
func (m LocalMode) OpponentRole() string {
	if m == ModeVsComputer {
		return RoleComputer
	}
	return SeatPlayer2
}

// Roles lists the two local seats in turn order.
func (l LocalGameState) Roles() []string {
	return []string{SeatPlayer1, l.Mode.OpponentRole()}
}

// HasWinner reports whether the local game is decided.
func (l LocalGameState) HasWinner() bool {
	return l.Winner != ""
}
