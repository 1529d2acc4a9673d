package ipc

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"go.klb.dev/xclipy/internal/manager"
	"go.klb.dev/xclipy/internal/message"
	"go.klb.dev/xclipy/internal/wire"
)

const (
	requestTimeout = 10 * time.Second
	eventBuffer    = 64
)

// Service is the daemon surface the server dispatches to. *manager.Manager
// implements it.
type Service interface {
	History() []string
	WriteText(text string) error
	WriteFiles(paths []string) error
	CopyEntry(i int, mode manager.CopyMode) error
	RemoveEntry(text string) bool
	RemoveAt(i int) error
	ClearHistory()
	Snapshot() manager.Snapshot
	Apply(key, value string) error
	Subscribe(l manager.Listener) (cancel func())
}

// Server answers IPC requests for a Service.
type Server struct {
	svc Service
	wg  sync.WaitGroup
}

// NewServer returns a Server dispatching to svc.
func NewServer(svc Service) *Server {
	return &Server{svc: svc}
}

// Serve accepts connections on ln until ctx is done, then closes ln and waits
// for in-flight connections to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()
	defer s.wg.Wait()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			slog.Error("ipc accept failed", "err", err)
			return err
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	wc := wire.New(conn)
	defer wc.Close()

	wc.SetReadDeadline(requestTimeout)
	req, err := wc.ReadMsg()
	if err != nil {
		slog.Debug("ipc read failed", "err", err)
		return
	}
	wc.SetReadDeadline(0)
	slog.Debug("ipc request", "type", req.Type)

	if req.Type == message.TypeWatch {
		s.watch(ctx, wc)
		return
	}
	if err := wc.WriteMsg(s.dispatch(req)); err != nil {
		slog.Debug("ipc write failed", "err", err)
	}
}

func (s *Server) dispatch(req *message.Message) *message.Message {
	ok := &message.Message{Type: message.TypeOK}

	switch req.Type {
	case message.TypeHistory:
		return &message.Message{Type: message.TypeHistoryResult, History: s.svc.History()}

	case message.TypeStatus:
		snap := s.svc.Snapshot()
		return &message.Message{
			Type:               message.TypeStatusResponse,
			History:            snap.History,
			Settings:           &snap.Settings,
			HotkeySupported:    snap.HotkeySupported,
			HotkeyRegistered:   snap.HotkeyRegistered,
			AutoStartInstalled: snap.AutoStartInstalled,
		}

	case message.TypeCopy:
		var err error
		switch {
		case req.Index != nil:
			mode, perr := manager.ParseCopyMode(req.As)
			if perr != nil {
				return message.Errorf("copy: %v", perr)
			}
			err = s.svc.CopyEntry(*req.Index, mode)
		case len(req.Files) > 0:
			err = s.svc.WriteFiles(req.Files)
		case req.Text != "":
			err = s.svc.WriteText(req.Text)
		default:
			return message.Errorf("copy: nothing to copy")
		}
		if err != nil {
			return message.Errorf("copy: %v", err)
		}
		return ok

	case message.TypeRemove:
		if req.Index != nil {
			if err := s.svc.RemoveAt(*req.Index); err != nil {
				return message.Errorf("remove: %v", err)
			}
			ok.Removed = true
			return ok
		}
		ok.Removed = s.svc.RemoveEntry(req.Text)
		return ok

	case message.TypeClear:
		s.svc.ClearHistory()
		return ok

	case message.TypeSet:
		if err := s.svc.Apply(req.Key, req.Value); err != nil {
			return message.Errorf("set %s: %v", req.Key, err)
		}
		return ok

	default:
		return message.Errorf("unknown request type %q", req.Type)
	}
}

// watch streams manager events to wc until the client hangs up or ctx is
// done. The first event is the current history.
func (s *Server) watch(ctx context.Context, wc *wire.Conn) {
	events := make(chan manager.Event, eventBuffer)
	cancel := s.svc.Subscribe(manager.ListenerFunc(func(ev manager.Event) {
		select {
		case events <- ev:
		default:
			slog.Warn("ipc watch channel full, dropping event", "kind", ev.Kind)
		}
	}))
	defer cancel()

	// Any read result, including EOF, means the client is gone.
	gone := make(chan struct{})
	go func() {
		_, _ = wc.ReadMsg()
		close(gone)
	}()

	slog.Debug("ipc watcher attached")
	defer slog.Debug("ipc watcher detached")

	if err := wc.WriteMsg(eventMessage(manager.Event{
		Kind:    manager.EventHistoryChanged,
		History: s.svc.History(),
	})); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-gone:
			return
		case ev := <-events:
			if err := wc.WriteMsg(eventMessage(ev)); err != nil {
				return
			}
		}
	}
}

func eventMessage(ev manager.Event) *message.Message {
	return &message.Message{Type: message.TypeEvent, Event: string(ev.Kind), History: ev.History}
}
