package server

import "github.com/san-kum/clothsim/internal/cloth"

type Conn interface {
	Send([]byte) error
	Close() error
}

// Join is issued once the client's hello has been read.
type Join struct {
	Conn  Conn
	Name  string
	Reply chan<- JoinResult
}

type JoinResult struct {
	ClientID string
}

type Cut struct {
	ClientID string
	Point    cloth.Vec2
}

type SetParam struct {
	ClientID string
	Name     string
	Value    float64
}

type Reset struct {
	ClientID string
}

// Leave is issued on disconnect.
type Leave struct {
	ClientID string
}
