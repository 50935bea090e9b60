package server

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Message types. Clients send hello first, then any of cut, param and reset;
// the server answers with welcome and then streams frames.
const (
	MsgHello   = "hello"
	MsgCut     = "cut"
	MsgParam   = "param"
	MsgReset   = "reset"
	MsgWelcome = "welcome"
	MsgFrame   = "frame"
	MsgError   = "error"
)

const (
	DefaultTickHz = 60
	BroadcastHz   = 20
)

var (
	ErrEmptyMessage = errors.New("server: empty message")
	ErrEmptyPayload = errors.New("server: empty payload")
)

type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"`
}

func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("server: encode without message type")
	}
	if payload == nil {
		return nil, fmt.Errorf("server: encode %q with nil payload", t)
	}
	pb, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{T: t, P: pb})
}

func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, ErrEmptyMessage
	}
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, err
	}
	return e, nil
}

func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, fmt.Errorf("%w for type %q", ErrEmptyPayload, env.T)
	}
	err := json.Unmarshal(env.P, &out)
	return out, err
}

type Hello struct {
	Name string `json:"name,omitempty"`
}

// CutRequest is a cut at a world point, which is a pixel of the reference
// view the cloth was laid out for.
type CutRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ParamRequest struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type ResetRequest struct{}

type Welcome struct {
	ClientID string             `json:"clientId"`
	TickHz   int                `json:"tickHz"`
	Width    int                `json:"width"`
	Height   int                `json:"height"`
	Columns  int                `json:"columns"`
	Rows     int                `json:"rows"`
	Params   map[string]float64 `json:"params"`
}

// Frame is the drawable state after a step: each segment as x1,y1,x2,y2 and
// each pinned particle as x,y.
type Frame struct {
	Frame    int          `json:"frame"`
	Segments [][4]float64 `json:"segments"`
	Pins     [][2]float64 `json:"pins"`
	Severed  int          `json:"severed"`
	Cuts     int          `json:"cuts"`
}

type Error struct {
	Message string `json:"message"`
}
