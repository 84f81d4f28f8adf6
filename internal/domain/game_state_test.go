package domain

import (
	"errors"
	"reflect"
	"testing"
)

func twoPlayerState() GameState {
	s := NewGameState("p1", 20)
	s.Players["p2"] = PlayerState{Name: SeatPlayer2}
	s.PlayerOrder = append(s.PlayerOrder, "p2")
	s.Status = StatusPlaying
	return s
}

func strPtr(v string) *string { return &v }

func TestNewGameState(t *testing.T) {
	s := NewGameState("p1", 50)

	if s.Status != StatusWaiting || s.DiceValue != 1 || s.WinnerID != nil {
		t.Fatalf("unexpected initial state: %+v", s)
	}
	if s.SeatOf("p1") != SeatPlayer1 || s.CurrentPlayerID != "p1" {
		t.Fatalf("creator should be the current Player 1: %+v", s)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("initial state should validate: %v", err)
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	s := twoPlayerState()
	s.WinnerID = strPtr("p1")

	c := s.Clone()
	c.Players["p1"] = PlayerState{Name: SeatPlayer1, Score: 99}
	c.PlayerOrder[0] = "x"
	*c.WinnerID = "p2"

	if s.Players["p1"].Score != 0 || s.PlayerOrder[0] != "p1" || *s.WinnerID != "p1" {
		t.Fatalf("clone mutated original: %+v", s)
	}
}

func TestNextPlayerID(t *testing.T) {
	s := twoPlayerState()
	if got := s.NextPlayerID("p1"); got != "p2" {
		t.Fatalf("NextPlayerID(p1) = %s; want p2", got)
	}
	if got := s.NextPlayerID("p2"); got != "p1" {
		t.Fatalf("NextPlayerID(p2) = %s; want p1", got)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*GameState)
		ok     bool
	}{
		{"playing", func(s *GameState) {}, true},
		{"finished", func(s *GameState) {
			s.Players["p1"] = PlayerState{Name: SeatPlayer1, Score: 21}
			s.WinnerID = strPtr("p1")
			s.Status = StatusFinished
		}, true},
		{"bad status", func(s *GameState) { s.Status = "paused" }, false},
		{"three players", func(s *GameState) {
			s.Players["p3"] = PlayerState{Name: "Player 3"}
			s.PlayerOrder = append(s.PlayerOrder, "p3")
		}, false},
		{"order mismatch", func(s *GameState) { s.PlayerOrder = []string{"p1", "ghost"} }, false},
		{"duplicate order", func(s *GameState) { s.PlayerOrder = []string{"p1", "p1"} }, false},
		{"current not seated", func(s *GameState) { s.CurrentPlayerID = "ghost" }, false},
		{"dice zero", func(s *GameState) { s.DiceValue = 0 }, false},
		{"dice seven", func(s *GameState) { s.DiceValue = 7 }, false},
		{"target zero", func(s *GameState) { s.TargetScore = 0 }, false},
		{"negative score", func(s *GameState) { s.Players["p2"] = PlayerState{Name: SeatPlayer2, Score: -1} }, false},
		{"winner while playing", func(s *GameState) {
			s.Players["p1"] = PlayerState{Name: SeatPlayer1, Score: 21}
			s.WinnerID = strPtr("p1")
		}, false},
		{"finished without winner", func(s *GameState) { s.Status = StatusFinished }, false},
		{"target reached undecided", func(s *GameState) { s.Players["p2"] = PlayerState{Name: SeatPlayer2, Score: 20} }, false},
		{"winner below target", func(s *GameState) {
			s.WinnerID = strPtr("p2")
			s.Status = StatusFinished
		}, false},
	}

	for _, tc := range cases {
		s := twoPlayerState()
		tc.mutate(&s)
		err := s.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrMalformedRecord) {
			t.Fatalf("%s: expected ErrMalformedRecord, got %v", tc.name, err)
		}
	}
}

func TestCodecRoundTrip(t *testing.T) {
	finished := twoPlayerState()
	finished.Players["p1"] = PlayerState{Name: SeatPlayer1, Score: 22}
	finished.Players["p2"] = PlayerState{Name: SeatPlayer2, Score: 14}
	finished.WinnerID = strPtr("p1")
	finished.Status = StatusFinished
	finished.DiceValue = 6

	for _, s := range []GameState{NewGameState("p1", 20), twoPlayerState(), finished} {
		data, err := EncodeState(s)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		got, err := DecodeState(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !reflect.DeepEqual(got, s) {
			t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, s)
		}
	}
}

func TestEncodeWireShape(t *testing.T) {
	data, err := EncodeState(NewGameState("p1", 20))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `{"players":{"p1":{"name":"Player 1","score":0}},"playerOrder":["p1"],"currentPlayerId":"p1","diceValue":1,"targetScore":20,"winnerId":null,"status":"waiting"}`
	if string(data) != want {
		t.Fatalf("wire shape\n got %s\nwant %s", data, want)
	}
}

func TestDecodeMalformed(t *testing.T) {
	inputs := []string{
		``,
		`not json`,
		`{"players":{}}`,
		`{"players":{"p1":{"name":"Player 1","score":0}},"playerOrder":["p1"],"currentPlayerId":"p1","diceValue":1,"targetScore":20,"winnerId":null}`,
		`{"players":{"p1":{"name":"Player 1","score":"x"}}}`,
	}
	for _, in := range inputs {
		if _, err := DecodeState([]byte(in)); !errors.Is(err, ErrMalformedRecord) {
			t.Fatalf("DecodeState(%q) err = %v; want ErrMalformedRecord", in, err)
		}
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(ErrRoomFull); got != "This room is already full." {
		t.Fatalf("UserMessage(ErrRoomFull) = %q", got)
	}
	if got := UserMessage(nil); got != "" {
		t.Fatalf("UserMessage(nil) = %q", got)
	}
}
