package domain

import (
	"encoding/json"
	"fmt"
)

// EncodeState serializes a record to the wire format.
func EncodeState(s GameState) ([]byte, error) {
	if s.Players == nil {
		s.Players = map[string]PlayerState{}
	}
	if s.PlayerOrder == nil {
		s.PlayerOrder = []string{}
	}
	return json.Marshal(s)
}

// DecodeState parses and validates a stored record.
func DecodeState(data []byte) (GameState, error) {
	var s GameState
	if err := json.Unmarshal(data, &s); err != nil {
		return GameState{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if err := s.Validate(); err != nil {
		return GameState{}, err
	}
	return s, nil
}
