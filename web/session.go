package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lixenwraith/vi-novel/engine"
)

const (
	maxMessageSize = 4096
	outboxSize     = 256
	inboxSize      = 16
)

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	s.active.Add(1)
	defer s.active.Done()
	if s.base.Err() != nil {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	branch := r.URL.Query().Get("branch")
	if branch != "" && !s.script.HasBranch(branch) {
		http.Error(w, fmt.Sprintf("unknown branch %q", branch), http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("[WEB] upgrade: %v", err)
		return
	}
	defer conn.Close()

	s.sessions.Add(1)
	defer s.sessions.Add(-1)
	s.logger.Printf("[WEB] session open: remote=%s branch=%q", r.RemoteAddr, branch)

	s.runSession(s.base, conn, branch)
	s.logger.Printf("[WEB] session closed: remote=%s", r.RemoteAddr)
}

// runSession owns the engine; reader and writer goroutines talk to it only through channels
func (s *Server) runSession(parent context.Context, conn *websocket.Conn, branch string) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	in := make(chan clientMessage, inboxSize)
	out := make(chan serverMessage, outboxSize)
	writerDone := make(chan struct{})

	go s.readLoop(ctx, cancel, conn, in)
	go func() {
		defer close(writerDone)
		s.writeLoop(ctx, cancel, conn, out)
	}()
	defer func() {
		cancel()
		<-writerDone
	}()

	sched := engine.NewLoopScheduler(64)
	defer sched.Close()

	surface := &wsSurface{ctx: ctx, out: out, policy: s.policy}

	opts := s.opts
	if branch != "" {
		opts.Branch = branch
	}
	opts.Logger = s.logger
	opts.OnComplete = func(b string) {
		surface.send(serverMessage{Type: msgComplete, Branch: b})
	}
	opts.OnError = func(err error) {
		surface.send(serverMessage{Type: msgError, Error: err.Error()})
	}

	e, err := engine.New(s.script, surface, sched, opts)
	if err == nil {
		err = e.Start()
	}
	if err != nil {
		surface.send(serverMessage{Type: msgError, Error: err.Error()})
		return
	}
	defer e.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-sched.C():
			fn()
		case m := <-in:
			if err := s.handle(e, m); err != nil {
				surface.send(serverMessage{Type: msgError, Error: err.Error()})
			}
		}
	}
}

func (s *Server) handle(e *engine.Engine, m clientMessage) error {
	switch m.Type {
	case msgAdvance:
		return e.Advance(m.Blocked)
	case msgRetreat:
		e.Retreat(m.Blocked)
	case msgSelect:
		return e.SelectChoice(m.Index)
	case msgHighlight:
		e.Highlight(m.Index)
	case msgConfirm:
		return e.Confirm()
	default:
		return fmt.Errorf("unknown message type %q", m.Type)
	}
	return nil
}

func (s *Server) readLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, in chan<- clientMessage) {
	defer cancel()

	conn.SetReadLimit(maxMessageSize)
	wait := 2 * s.cfg.PingInterval
	conn.SetReadDeadline(time.Now().Add(wait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wait))
	})

	for {
		var m clientMessage
		if err := conn.ReadJSON(&m); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Printf("[WEB] read: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wait))

		select {
		case in <- m:
		case <-ctx.Done():
			return
		}
	}
}

// writeLoop drains queued messages before exiting so a final error reaches the client
func (s *Server) writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, out <-chan serverMessage) {
	defer cancel()

	ping := time.NewTicker(s.cfg.PingInterval)
	defer ping.Stop()

	write := func(m serverMessage) bool {
		conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
		if err := conn.WriteJSON(m); err != nil {
			s.logger.Printf("[WEB] write: %v", err)
			return false
		}
		return true
	}

	for {
		select {
		case m := <-out:
			if !write(m) {
				return
			}
		case <-ping.C:
			deadline := time.Now().Add(s.cfg.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case <-ctx.Done():
			for {
				select {
				case m := <-out:
					if !write(m) {
						return
					}
				default:
					code, text := websocket.CloseNormalClosure, ""
					if s.base.Err() != nil {
						code, text = websocket.CloseGoingAway, "server shutting down"
					}
					conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(code, text),
						time.Now().Add(time.Second))
					return
				}
			}
		}
	}
}
