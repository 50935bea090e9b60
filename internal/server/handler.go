package server

import (
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/san-kum/clothsim/internal/cloth"
)

const (
	readLimit    = 1 << 16
	pongWait     = 60 * time.Second
	pingPeriod   = 25 * time.Second
	writeWait    = 10 * time.Second
	sendBuffered = 64
)

var ErrSlowClient = errors.New("server: client send buffer full")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsConn queues outgoing messages for a single writer goroutine, since a
// websocket connection allows one concurrent writer.
type wsConn struct {
	conn   *websocket.Conn
	send   chan []byte
	mu     sync.Mutex
	closed bool
}

func newWSConn(conn *websocket.Conn) *wsConn {
	c := &wsConn{conn: conn, send: make(chan []byte, sendBuffered)}
	go c.writeLoop()
	return c
}

func (c *wsConn) Send(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return websocket.ErrCloseSent
	}
	select {
	case c.send <- b:
		return nil
	default:
		return ErrSlowClient
	}
}

func (c *wsConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	return nil
}

func (c *wsConn) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case b, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Handler upgrades to a websocket, waits for the client's hello, joins it to
// the room and then forwards its requests until it disconnects.
func Handler(room *Room) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade:", err)
			return
		}

		conn.SetReadLimit(readLimit)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		hello, err := readHello(conn)
		if err != nil {
			log.Printf("hello from %s: %v", r.RemoteAddr, err)
			conn.Close()
			return
		}

		wc := newWSConn(conn)
		reply := make(chan JoinResult, 1)
		if !room.send(Join{Conn: wc, Name: hello.Name, Reply: reply}) {
			wc.Close()
			return
		}
		var id string
		select {
		case res := <-reply:
			id = res.ClientID
		case <-room.Done():
			wc.Close()
			return
		}
		defer room.send(Leave{ClientID: id})

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("read %s: %v", id, err)
				}
				return
			}
			if !dispatch(room, wc, id, msg) {
				return
			}
		}
	}
}

func readHello(conn *websocket.Conn) (Hello, error) {
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return Hello{}, err
	}
	env, err := DecodeEnvelope(msg)
	if err != nil {
		return Hello{}, err
	}
	if env.T != MsgHello {
		return Hello{}, errors.New("expected hello, got " + env.T)
	}
	if len(env.P) == 0 {
		return Hello{}, nil
	}
	return DecodePayload[Hello](env)
}

// dispatch forwards one client message to the room. Malformed messages are
// answered with an error and otherwise ignored. It reports false once the
// room has stopped.
func dispatch(room *Room, c Conn, id string, msg []byte) bool {
	reply := func(err error) {
		if b, encErr := Encode(MsgError, Error{Message: err.Error()}); encErr == nil {
			_ = c.Send(b)
		}
	}

	env, err := DecodeEnvelope(msg)
	if err != nil {
		reply(err)
		return true
	}

	switch env.T {
	case MsgCut:
		req, err := DecodePayload[CutRequest](env)
		if err != nil {
			reply(err)
			return true
		}
		return room.send(Cut{ClientID: id, Point: cloth.V(req.X, req.Y)})
	case MsgParam:
		req, err := DecodePayload[ParamRequest](env)
		if err != nil {
			reply(err)
			return true
		}
		return room.send(SetParam{ClientID: id, Name: req.Name, Value: req.Value})
	case MsgReset:
		return room.send(Reset{ClientID: id})
	default:
		reply(errors.New("unknown message type " + env.T))
		return true
	}
}
