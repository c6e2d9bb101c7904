package sse

import (
	"net/http"
	"time"

	"github.com/kbukum/liveview/errors"
	"github.com/kbukum/liveview/logger"
)

// ConnectedEvent is sent when a client successfully connects.
type ConnectedEvent struct {
	ClientID string `json:"client_id"`
	Topic    string `json:"topic"`
}

// HandlerOption configures ServeSSE.
type HandlerOption func(*handlerOptions)

type handlerOptions struct {
	keepAlive time.Duration
}

// WithKeepAlive sets the interval between keep-alive comments.
func WithKeepAlive(d time.Duration) HandlerOption {
	return func(o *handlerOptions) {
		if d > 0 {
			o.keepAlive = d
		}
	}
}

// ServeSSE streams the view behind p to one HTTP client until the request
// context ends or the hub is stopped.
func ServeSSE(w http.ResponseWriter, r *http.Request, p *Publisher, opts ...HandlerOption) {
	// Keep-alive interval should be less than proxy timeouts (typically 60s).
	o := handlerOptions{keepAlive: 30 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.Error("streaming not supported", logger.Fields("topic", p.Topic()))
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// SSE connections are long-lived and must not hit the server WriteTimeout.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		logger.Debug("could not disable write deadline", logger.Fields("topic", p.Topic(), logger.FieldError, err.Error()))
	}

	client := NewClient(p.Topic())
	if err := p.Attach(client); err != nil {
		status := errors.StatusOf(err)
		http.Error(w, http.StatusText(status), status)
		return
	}
	defer p.Detach(client)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	connected, err := encode(EventConnected, 0, ConnectedEvent{ClientID: client.ID(), Topic: client.Topic()})
	if err == nil {
		_, _ = connected.WriteTo(w)
	}
	flusher.Flush()

	log := logger.WithComponent("sse").WithFields(logger.Fields("client_id", client.ID(), "topic", client.Topic()))
	log.Debug("client connected", logger.Fields("remote_addr", r.RemoteAddr))

	keepAlive := time.NewTicker(o.keepAlive)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			log.Debug("client disconnected", logger.Fields("reason", ctx.Err().Error()))
			return

		case f, ok := <-client.Frames():
			if !ok {
				log.Debug("frame channel closed")
				return
			}
			if _, err := f.WriteTo(w); err != nil {
				log.Debug("write failed", logger.Fields(logger.FieldError, err.Error()))
				return
			}
			flusher.Flush()

		case <-keepAlive.C:
			// Lines starting with ':' are comments in the event-stream format.
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		}
	}
}
