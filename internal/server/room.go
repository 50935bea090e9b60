package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
)

// Room owns one simulation. Only the Run goroutine touches it; clients talk
// to it through Inbox. Commands that arrive between two ticks are applied
// before the next step.
type Room struct {
	Inbox          chan any
	cfg            *config.Config
	tickHz         int
	broadcastEvery int
	sim            *cloth.Simulation
	clients        map[string]Conn
	names          map[string]string
	nextID         int
	cuts           int
	done           chan struct{}
}

func NewRoom(cfg *config.Config, tickHz int) (*Room, error) {
	if tickHz <= 0 {
		tickHz = DefaultTickHz
	}
	s, err := cfg.NewSimulation()
	if err != nil {
		return nil, err
	}
	return &Room{
		Inbox:          make(chan any, 256),
		cfg:            cfg,
		tickHz:         tickHz,
		broadcastEvery: max(tickHz/BroadcastHz, 1),
		sim:            s,
		clients:        make(map[string]Conn),
		names:          make(map[string]string),
		nextID:         1,
		done:           make(chan struct{}),
	}, nil
}

// Run processes commands and steps the cloth until ctx is done. The cloth
// only advances while at least one client is connected.
func (r *Room) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(r.tickHz))
	defer ticker.Stop()
	defer close(r.done)
	defer r.closeAll()

	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-r.Inbox:
			r.handleCommand(cmd)
		case <-ticker.C:
			if len(r.clients) == 0 {
				continue
			}
			r.sim.Step()
			if r.sim.Frame()%r.broadcastEvery == 0 {
				r.broadcastFrame()
			}
		}
	}
}

// Done is closed once Run has returned.
func (r *Room) Done() <-chan struct{} { return r.done }

// send delivers cmd unless the room has stopped.
func (r *Room) send(cmd any) bool {
	select {
	case r.Inbox <- cmd:
		return true
	case <-r.done:
		return false
	}
}

func (r *Room) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case Join:
		id := fmt.Sprintf("c%d", r.nextID)
		r.nextID++
		name := c.Name
		if name == "" {
			name = id
		}
		r.clients[id] = c.Conn
		r.names[id] = name
		log.Printf("room: %s joined as %q (%d connected)", id, name, len(r.clients))
		c.Reply <- JoinResult{ClientID: id}
		r.sendTo(id, c.Conn, MsgWelcome, r.welcome(id))
		r.sendTo(id, c.Conn, MsgFrame, r.frame())
	case Cut:
		if _, ok := r.clients[c.ClientID]; !ok {
			return
		}
		if r.sim.CutNear(c.Point) {
			r.cuts++
		}
	case SetParam:
		conn, ok := r.clients[c.ClientID]
		if !ok {
			return
		}
		if err := r.sim.SetParam(c.Name, c.Value); err != nil {
			r.sendTo(c.ClientID, conn, MsgError, Error{Message: err.Error()})
		}
	case Reset:
		if _, ok := r.clients[c.ClientID]; !ok {
			return
		}
		s, err := r.cfg.NewSimulation()
		if err != nil {
			log.Printf("room: reset: %v", err)
			return
		}
		r.sim, r.cuts = s, 0
		r.broadcastFrame()
	case Leave:
		r.remove(c.ClientID)
	}
}

func (r *Room) welcome(id string) Welcome {
	return Welcome{
		ClientID: id,
		TickHz:   r.tickHz,
		Width:    r.cfg.View.Width,
		Height:   r.cfg.View.Height,
		Columns:  r.cfg.Layout.Columns,
		Rows:     r.cfg.Layout.Rows,
		Params:   r.sim.GetParams(),
	}
}

func (r *Room) frame() Frame {
	snap := r.sim.Snapshot()
	f := Frame{
		Frame:    snap.Frame,
		Segments: make([][4]float64, 0, len(snap.Segments)),
		Pins:     make([][2]float64, 0),
		Severed:  snap.Severed(),
		Cuts:     r.cuts,
	}
	for _, s := range snap.Segments {
		f.Segments = append(f.Segments, [4]float64{s.From.X, s.From.Y, s.To.X, s.To.Y})
	}
	for _, row := range snap.Particles {
		for _, p := range row {
			if p.Pinned {
				f.Pins = append(f.Pins, [2]float64{p.Position.X, p.Position.Y})
			}
		}
	}
	return f
}

func (r *Room) broadcastFrame() {
	b, err := Encode(MsgFrame, r.frame())
	if err != nil {
		log.Printf("room: encode frame: %v", err)
		return
	}

	var failed []string
	for id, c := range r.clients {
		if err := c.Send(b); err != nil {
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		r.remove(id)
	}
}

func (r *Room) sendTo(id string, c Conn, t string, payload any) {
	b, err := Encode(t, payload)
	if err != nil {
		log.Printf("room: encode %s: %v", t, err)
		return
	}
	if err := c.Send(b); err != nil {
		r.remove(id)
	}
}

func (r *Room) remove(id string) {
	c, ok := r.clients[id]
	if !ok {
		return
	}
	_ = c.Close()
	delete(r.clients, id)
	delete(r.names, id)
	log.Printf("room: %s left (%d connected)", id, len(r.clients))
}

func (r *Room) closeAll() {
	for id := range r.clients {
		r.remove(id)
	}
}
