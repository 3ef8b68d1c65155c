// internal/server/server.go
package server

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/tamzrod/tmrobot-sim/internal/fault"
)

// MBAP:
//
//	TID(2) PID(2=0) LEN(2) UID(1)
//
// LEN counts UID plus the PDU.
const (
	mbapLen   = 7
	maxPDULen = 253
)

// Config is the listener-side config.
type Config struct {
	// UnitID is the only unit answered. 0 answers every unit id.
	UnitID uint8
	// IdleTimeout closes connections that send nothing for this long. 0 disables it.
	IdleTimeout time.Duration
}

// Server is a Modbus TCP slave backed by a device image.
// Each connection is served by its own goroutine; requests on different
// connections only contend on the bank they touch.
type Server struct {
	cfg Config
	img banks
	log *slog.Logger

	conns  *xsync.MapOf[uint64, net.Conn]
	nextID atomic.Uint64
	wg     sync.WaitGroup
}

// New creates a server. log may be nil.
func New(cfg Config, img banks, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		cfg:   cfg,
		img:   img,
		log:   log.With("component", "server"),
		conns: xsync.NewMapOf[uint64, net.Conn](),
	}
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
// On return the listener and every live connection are closed.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.log.Info("listening", "addr", ln.Addr().String(), "unit_id", s.cfg.UnitID)

	stop := context.AfterFunc(ctx, func() {
		_ = ln.Close()
		s.conns.Range(func(_ uint64, c net.Conn) bool {
			_ = c.Close()
			return true
		})
	})
	defer stop()

	var err error
	for {
		conn, aerr := ln.Accept()
		if aerr != nil {
			if ctx.Err() == nil {
				err = fmt.Errorf("server: accept: %w", aerr)
				_ = ln.Close()
			}
			break
		}

		id := s.nextID.Add(1)
		s.conns.Store(id, conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.conns.Delete(id)
			s.serveConn(id, conn)
		}()
	}

	s.conns.Range(func(_ uint64, c net.Conn) bool {
		_ = c.Close()
		return true
	})
	s.wg.Wait()
	s.log.Info("stopped")
	return err
}

// Connections reports how many clients are connected.
func (s *Server) Connections() int {
	return s.conns.Size()
}

func (s *Server) serveConn(id uint64, conn net.Conn) {
	defer conn.Close()

	log := s.log.With("conn", id, "remote", conn.RemoteAddr().String())
	log.Info("client connected")
	defer log.Info("client disconnected")

	var header [mbapLen]byte
	for {
		if s.cfg.IdleTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout))
		}

		if _, err := io.ReadFull(conn, header[:]); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				log.Debug("read header failed", "err", err)
			}
			return
		}

		tid := binary.BigEndian.Uint16(header[0:2])
		pid := binary.BigEndian.Uint16(header[2:4])
		length := int(binary.BigEndian.Uint16(header[4:6]))
		uid := header[6]

		if pid != 0 || length < 2 || length-1 > maxPDULen {
			log.Warn("malformed frame, closing", "pid", pid, "len", length)
			return
		}

		pdu := make([]byte, length-1)
		if _, err := io.ReadFull(conn, pdu); err != nil {
			log.Debug("read pdu failed", "err", err)
			return
		}

		var resp []byte
		if s.cfg.UnitID != 0 && uid != s.cfg.UnitID {
			resp = exception(pdu[0], fault.CodeTargetNoResponse)
		} else {
			start := time.Now()
			resp = handlePDU(s.img, pdu)
			log.Debug("request",
				"tid", tid, "fc", pdu[0], "exception", resp[0]&exceptionFlag != 0,
				"elapsed", time.Since(start))
		}

		if _, err := conn.Write(frame(tid, uid, resp)); err != nil {
			log.Debug("write response failed", "err", err)
			return
		}
	}
}

// frame wraps a response PDU in an MBAP header.
func frame(tid uint16, uid uint8, pdu []byte) []byte {
	adu := make([]byte, mbapLen+len(pdu))
	binary.BigEndian.PutUint16(adu[0:2], tid)
	binary.BigEndian.PutUint16(adu[2:4], 0)
	binary.BigEndian.PutUint16(adu[4:6], uint16(1+len(pdu)))
	adu[6] = uid
	copy(adu[mbapLen:], pdu)
	return adu
}
