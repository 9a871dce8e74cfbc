package model

import (
	"bytes"
	"encoding/json"

	"github.com/stlplant/tankview/pkg/errors"
)

// LineTanks is the tanks of one line as exchanged by the CLI and the
// render server.
type LineTanks struct {
	Line  *Line  `json:"line,omitempty"`
	Tanks []Tank `json:"tanks"`
}

// DecodeLineTanks accepts either a bare array of tanks or a LineTanks
// object. Blank input decodes to no tanks.
func DecodeLineTanks(data []byte) (LineTanks, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return LineTanks{}, nil
	}
	var lt LineTanks
	target := any(&lt)
	if data[0] == '[' {
		target = &lt.Tanks
	}
	if err := json.Unmarshal(data, target); err != nil {
		return LineTanks{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse tanks")
	}
	return lt, nil
}
