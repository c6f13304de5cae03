package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"strings"
	"sync"
	"time"

	"log/slog"

	"belltower/internal/alarm"
	"belltower/internal/daemon"
	"belltower/internal/history"
	"belltower/internal/logging"
	"belltower/internal/schedule"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Belltower", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "Check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "Remove the socket file manually or rerun belltower stop"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String(logging.FieldComponent, "ipc"))
}

func convertAlarm(rec alarm.Record) Alarm {
	return Alarm{
		ID:    rec.ID,
		Day:   rec.Day,
		Time:  rec.Time,
		Label: rec.Label,
		Sound: rec.Sound,
	}
}

func convertEvent(event *history.Event) TriggerEvent {
	return TriggerEvent{
		ID:            event.ID,
		AlarmID:       event.AlarmID,
		Label:         event.Label,
		Day:           event.Day,
		ScheduledTime: event.ScheduledTime,
		Sound:         event.Sound,
		Backend:       event.Backend,
		Outcome:       string(event.Outcome),
		Detail:        event.Detail,
		FiredOn:       event.FiredOn,
		CreatedAt:     event.CreatedAt.Format(time.RFC3339),
	}
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.Backend = status.Backend
	resp.AlarmsFile = status.AlarmsFile
	resp.AlarmCount = status.AlarmCount
	resp.FiredToday = status.FiredToday
	resp.HistoryDBPath = status.HistoryDBPath
	resp.LockPath = status.LockFilePath
	resp.PID = os.Getpid()
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	s.log().Info("daemon stopped via IPC",
		logging.String(logging.FieldEventType, "daemon_stop"))
	return nil
}

func (s *service) Alarms(_ AlarmsRequest, resp *AlarmsResponse) error {
	records := s.daemon.Alarms()
	resp.Path = s.daemon.Status(s.ctx).AlarmsFile
	resp.Alarms = make([]Alarm, 0, len(records))
	for _, rec := range records {
		resp.Alarms = append(resp.Alarms, convertAlarm(rec))
	}
	return nil
}

func (s *service) Triggers(req TriggersRequest, resp *TriggersResponse) error {
	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = time.Now().Format(schedule.DateLayout)
	}
	if _, err := time.Parse(schedule.DateLayout, date); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", req.Date)
	}
	events, err := s.daemon.TriggersOn(s.ctx, date)
	if err != nil {
		return err
	}
	resp.Date = date
	resp.Events = make([]TriggerEvent, 0, len(events))
	for _, event := range events {
		if event == nil {
			continue
		}
		resp.Events = append(resp.Events, convertEvent(event))
	}
	return nil
}
