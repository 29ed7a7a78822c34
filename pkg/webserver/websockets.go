package webserver

import (
	"context"
	"encoding/json"
	"net/http"

	"f1laptrend/pkg/dashboard"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	mtInputs   = "inputs"
	mtReload   = "reload"
	mtView     = "view"
	mtError    = "error"
	snapBuffer = 8
)

var upgrader = websocket.Upgrader{} // use default options

type Message struct {
	MessageType string `json:"type"`
	Body        any    `json:"body,omitempty"`
}

type inbound struct {
	MessageType string          `json:"type"`
	Body        json.RawMessage `json:"body"`
}

// websocketHandler runs one dashboard per connection. The client sends
// {"type":"inputs","body":Inputs} whenever the user changes something, or
// {"type":"reload"} to fetch the current circuit again, and receives a
// {"type":"view"} message for every such change and every settled stream.
func (m *Manager) websocketHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := dashboard.ParseQuery(m.opts.Defaults.WithCircuit(circuitParam(r, m.opts.Defaults.Circuit)), r.URL.Query())
		if err == nil {
			err = in.Validate()
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			m.logger.Warn("websocket upgrade", zap.Error(err))
			return
		}
		defer c.Close()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		loader := dashboard.NewLoader(ctx, m.fetcher, m.ps, m.logger)
		defer loader.Close()
		snapshots, unsubscribe := m.ps.Subscribe(loader.Topic(), snapBuffer)
		defer unsubscribe()

		logger := m.logger.With(zap.String("dashboard", loader.ID()))
		logger.Debug("websocket opened")
		defer logger.Debug("websocket closed")

		inputs := make(chan dashboard.Inputs)
		reloads := make(chan struct{})
		problems := make(chan string)
		go m.readMessages(ctx, cancel, c, inputs, reloads, problems, logger)

		loader.Select(in.Circuit)
		if err := c.WriteJSON(Message{MessageType: mtView, Body: dashboard.Derive(in, loader.Current())}); err != nil {
			return
		}

		for {
			var msg Message
			select {
			case <-ctx.Done():
				return
			case next := <-inputs:
				if next.Circuit != in.Circuit {
					// constructors differ per circuit, fall back to the default selection
					next.Constructors = nil
				}
				in = next
				loader.Select(in.Circuit)
				msg = Message{MessageType: mtView, Body: dashboard.Derive(in, loader.Current())}
			case <-reloads:
				loader.Reload()
				msg = Message{MessageType: mtView, Body: dashboard.Derive(in, loader.Current())}
			case problem := <-problems:
				msg = Message{MessageType: mtError, Body: problem}
			case _, ok := <-snapshots:
				if !ok {
					return
				}
				// buffered snapshots may predate the latest selection
				msg = Message{MessageType: mtView, Body: dashboard.Derive(in, loader.Current())}
			}
			if err := c.WriteJSON(msg); err != nil {
				logger.Debug("write", zap.Error(err))
				return
			}
		}
	}
}

// readMessages decodes client messages until the connection fails. Invalid
// inputs are reported back and otherwise ignored.
func (m *Manager) readMessages(ctx context.Context, cancel context.CancelFunc, c *websocket.Conn, out chan<- dashboard.Inputs, reloads chan<- struct{}, problems chan<- string, logger *zap.Logger) {
	defer cancel()
	for {
		var msg inbound
		if err := c.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("read", zap.Error(err))
			}
			return
		}
		switch msg.MessageType {
		case mtInputs:
		case mtReload:
			select {
			case reloads <- struct{}{}:
				continue
			case <-ctx.Done():
				return
			}
		default:
			continue
		}

		var in dashboard.Inputs
		err := json.Unmarshal(msg.Body, &in)
		if err == nil {
			err = in.Validate()
		}
		if err != nil {
			select {
			case problems <- "invalid inputs: " + err.Error():
				continue
			case <-ctx.Done():
				return
			}
		}

		select {
		case out <- in:
		case <-ctx.Done():
			return
		}
	}
}

func circuitParam(r *http.Request, fallback string) string {
	if c := r.URL.Query().Get("circuit"); c != "" {
		return c
	}
	return fallback
}
