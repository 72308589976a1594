package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/graft/pkg/hydrate"
	"github.com/vango-dev/graft/pkg/protocol"
)

// handleLive upgrades to a websocket and serves the preview channel.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	s.conns.Add(1)
	defer s.conns.Done()

	l := &live{
		s:    s,
		conn: conn,
		id:   uuid.NewString(),
	}
	s.track(l)
	defer s.untrack(l)
	l.serve(r.Context())
}

// live is one preview connection. All reads and writes happen on the
// serving goroutine.
type live struct {
	s    *Server
	conn *websocket.Conn
	id   string
	seq  uint64
}

func (l *live) serve(ctx context.Context) {
	logger := l.s.logger.With("conn", l.id)
	l.s.metrics.LiveOpened()
	defer func() {
		l.s.metrics.LiveClosed()
		l.conn.Close()
		logger.Debug("live connection closed")
	}()

	l.conn.SetReadLimit(l.s.cfg.Server.MaxBodyBytes)
	if err := l.write(&protocol.Frame{Kind: protocol.KindHello, Conn: l.id}); err != nil {
		logger.Warn("write hello failed", "error", err)
		return
	}
	logger.Debug("live connection opened")

	for {
		kind, msg, err := l.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure) {
				logger.Warn("read error", "error", err)
			}
			return
		}
		l.s.metrics.AddLiveFrame("in")
		l.seq++

		var reply *protocol.Frame
		if kind != websocket.TextMessage {
			reply = &protocol.Frame{
				Kind:        protocol.KindError,
				Seq:         l.seq,
				Diagnostics: []string{"expected a text message with an HTML document"},
			}
		} else {
			reply = l.hydrate(ctx, string(msg))
		}
		if err := l.write(reply); err != nil {
			logger.Warn("write frame failed", "error", err)
			return
		}
	}
}

func (l *live) hydrate(ctx context.Context, markup string) *protocol.Frame {
	res, err := hydrate.HTML(ctx, l.s.reg, l.s.hydrateOptions(markup))
	if err != nil {
		return &protocol.Frame{
			Kind:        protocol.KindError,
			Seq:         l.seq,
			Diagnostics: []string{err.Error()},
		}
	}
	f := &protocol.Frame{
		Kind:  protocol.KindResult,
		Seq:   l.seq,
		Conn:  l.id,
		HTML:  res.HTML,
		Stats: res.Stats,
	}
	for _, d := range res.Diagnostics {
		f.Diagnostics = append(f.Diagnostics, d.Message)
	}
	return f
}

func (l *live) write(f *protocol.Frame) error {
	w, err := l.conn.NextWriter(websocket.BinaryMessage)
	if err != nil {
		return err
	}
	if err := l.s.codec.WriteFrame(w, f); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	l.s.metrics.AddLiveFrame("out")
	return nil
}
