package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/blueprint/pkg/pipeline"
	"github.com/matzehuels/blueprint/pkg/poll"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// WatchMessage is sent by clients on the execution websocket to change
// the inspected job.
type WatchMessage struct {
	Inspect string `json:"inspect"`
}

// WatchUpdate is one push on the execution websocket: a snapshot or the
// error of a failed poll.
type WatchUpdate struct {
	*ExecutionResponse
	Error *ErrorResponse `json:"error,omitempty"`
}

// watchExecution upgrades to a websocket and pushes a projected snapshot
// on every poll. Polling stops when the socket closes or the execution
// has no work left; the server then closes the socket normally. A missing
// execution or inconsistent job data is pushed once as an error frame and
// the socket is closed with the error code as reason.
func (s *Server) watchExecution(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	opts, err := s.layoutOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "execution", id, "error", err)
		return
	}
	defer conn.Close()
	if s.metrics != nil {
		s.metrics.SocketOpened()
		defer s.metrics.SocketClosed()
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var mu sync.Mutex
	inspected := r.URL.Query().Get("inspect")

	// The read loop only tracks inspect messages and notices the close.
	go func() {
		defer cancel()
		for {
			var msg WatchMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			mu.Lock()
			inspected = msg.Inspect
			mu.Unlock()
		}
	}()

	updates := poll.Watch(ctx, poll.Poller[*pipeline.ExecutionView]{
		Fetch: func(ctx context.Context) (*pipeline.ExecutionView, error) {
			mu.Lock()
			current := inspected
			mu.Unlock()
			return s.runner.ExecutionView(ctx, id, pipeline.ExecutionOptions{Layout: opts, Inspected: current})
		},
		Interval: s.interval,
		Done: func(v *pipeline.ExecutionView) bool {
			return v.Execution.Status.Terminal()
		},
		Fatal:  pipeline.StopWatching,
		Logger: s.logger,
	})

	s.logger.Debug("watching execution", "execution", id, "request_id", RequestID(r.Context()))
	var fatal *ErrorResponse
	for u := range updates {
		msg := WatchUpdate{}
		if u.Err != nil {
			e := errorResponse(u.Err)
			msg.Error = &e
			if pipeline.StopWatching(u.Err) {
				fatal = &e
			}
		} else {
			resp := newExecutionResponse(u.Value)
			msg.ExecutionResponse = &resp
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			cancel()
			for range updates {
			}
			return
		}
	}

	if ctx.Err() != nil {
		return
	}
	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "execution finished")
	if fatal != nil {
		s.logger.Warn("stopped watching execution", "execution", id, "code", fatal.Code, "error", fatal.Message)
		closeMsg = websocket.FormatCloseMessage(websocket.CloseInternalServerErr, string(fatal.Code))
	}
	_ = conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(writeWait))
}
