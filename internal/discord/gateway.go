package discord

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/url"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kapu/liqu-discord-bot/internal/util"
	"go.uber.org/zap"
)

var ErrGatewayClosed = stderrors.New("gateway closed")

type InteractionCallback func(interaction *Interaction)

type ReadyCallback func(ready *Ready)

type StateCallback func(state GatewayState)

type callbackEntry[T any] struct {
	id       int
	callback T
}

type GatewayOptions struct {
	URL                  string
	Token                string
	Intents              int
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
	HandshakeTimeout     time.Duration
}

// Gateway keeps one Discord gateway session alive: it identifies, heartbeats,
// resumes after drops and fans dispatch events out to registered callbacks.
type Gateway struct {
	opts GatewayOptions

	conn    *websocket.Conn
	writeMu sync.Mutex

	state   GatewayState
	stateMu sync.RWMutex

	sessionMu sync.Mutex
	sessionID string
	resumeURL string
	seq       int64
	acked     bool

	interactionCallbacks []callbackEntry[InteractionCallback]
	readyCallbacks       []callbackEntry[ReadyCallback]
	stateCallbacks       []callbackEntry[StateCallback]
	nextCallbackID       int
	callbacksMu          sync.RWMutex

	reconnectAttempts int
	reconnectMu       sync.Mutex

	logger   *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewGateway(opts GatewayOptions, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Intents == 0 {
		opts.Intents = DefaultIntents
	}
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = 10 * time.Second
	}
	return &Gateway{
		opts:           opts,
		state:          StateDisconnected,
		logger:         logger,
		stopCh:         make(chan struct{}),
		nextCallbackID: 1,
	}
}

// Connect dials the gateway. The handshake (hello, identify or resume) runs
// on the listener goroutine; READY is reported through OnReady.
func (g *Gateway) Connect(ctx context.Context) error {
	select {
	case <-g.stopCh:
		return ErrGatewayClosed
	default:
	}

	switch g.GetState() {
	case StateConnected, StateConnecting, StateReady:
		g.logger.Warn("Gateway already connected or connecting")
		return nil
	}

	g.setState(StateConnecting)

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = g.opts.HandshakeTimeout

	target := g.dialURL()
	conn, _, err := dialer.DialContext(ctx, target, nil)
	if err != nil {
		g.logger.Error("Failed to connect to gateway", zap.Error(err))
		g.setState(StateFailed)
		return err
	}

	g.writeMu.Lock()
	select {
	case <-g.stopCh:
		g.writeMu.Unlock()
		_ = conn.Close()
		return ErrGatewayClosed
	default:
	}
	g.conn = conn
	g.writeMu.Unlock()
	g.setState(StateConnected)

	g.logger.Info("Gateway connected", zap.String("url", target))

	done := make(chan struct{})
	g.wg.Add(1)
	go g.listen(ctx, conn, done)

	return nil
}

func (g *Gateway) dialURL() string {
	g.sessionMu.Lock()
	resumeURL := g.resumeURL
	canResume := g.sessionID != ""
	g.sessionMu.Unlock()

	if !canResume || resumeURL == "" {
		return g.opts.URL
	}

	u, err := url.Parse(resumeURL)
	if err != nil {
		return g.opts.URL
	}
	if u.RawQuery == "" {
		if base, err := url.Parse(g.opts.URL); err == nil {
			u.RawQuery = base.RawQuery
		}
	}
	return u.String()
}

func (g *Gateway) listen(ctx context.Context, conn *websocket.Conn, done chan struct{}) {
	defer g.wg.Done()
	defer close(done)
	defer g.logger.Info("Gateway listener stopped")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-g.stopCh:
				return
			default:
			}

			g.logger.Error("Gateway read error", zap.Error(err))
			g.dropConn(conn)

			var closeErr *websocket.CloseError
			if stderrors.As(err, &closeErr) && isFatalCloseCode(closeErr.Code) {
				g.logger.Error("Gateway closed with fatal code",
					zap.Int("code", closeErr.Code),
					zap.String("reason", closeErr.Text),
				)
				g.setState(StateFailed)
				return
			}

			g.setState(StateDisconnected)
			g.scheduleReconnect(ctx)
			return
		}

		g.handlePayload(ctx, conn, done, data)
	}
}

func (g *Gateway) handlePayload(ctx context.Context, conn *websocket.Conn, done chan struct{}, data []byte) {
	var payload GatewayPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		g.logger.Error("Failed to parse gateway payload",
			zap.Error(err),
			zap.String("data", util.TruncateString(string(data), 200)),
		)
		return
	}

	if payload.S != nil {
		g.sessionMu.Lock()
		g.seq = *payload.S
		g.sessionMu.Unlock()
	}

	switch payload.Op {
	case OpHello:
		var hello Hello
		if err := json.Unmarshal(payload.D, &hello); err != nil {
			g.logger.Error("Failed to parse hello", zap.Error(err))
			return
		}
		g.sessionMu.Lock()
		g.acked = true
		g.sessionMu.Unlock()

		interval := time.Duration(hello.HeartbeatInterval) * time.Millisecond
		g.wg.Add(1)
		go g.heartbeat(conn, done, interval)

		if err := g.identifyOrResume(); err != nil {
			g.logger.Error("Failed to send handshake", zap.Error(err))
		}
	case OpHeartbeat:
		if err := g.sendHeartbeat(); err != nil {
			g.logger.Warn("Failed to answer heartbeat request", zap.Error(err))
		}
	case OpHeartbeatACK:
		g.sessionMu.Lock()
		g.acked = true
		g.sessionMu.Unlock()
	case OpReconnect:
		g.logger.Info("Gateway requested reconnect")
		_ = conn.Close()
	case OpInvalidSession:
		var resumable bool
		_ = json.Unmarshal(payload.D, &resumable)
		g.logger.Warn("Gateway session invalidated", zap.Bool("resumable", resumable))
		if !resumable {
			g.clearSession()
		}
		_ = conn.Close()
	case OpDispatch:
		g.handleDispatch(payload)
	default:
		g.logger.Debug("Unhandled gateway opcode", zap.Int("op", payload.Op))
	}
}

func (g *Gateway) handleDispatch(payload GatewayPayload) {
	switch payload.T {
	case "READY":
		var ready Ready
		if err := json.Unmarshal(payload.D, &ready); err != nil {
			g.logger.Error("Failed to parse READY", zap.Error(err))
			return
		}
		g.sessionMu.Lock()
		g.sessionID = ready.SessionID
		g.resumeURL = ready.ResumeGatewayURL
		g.sessionMu.Unlock()
		g.resetReconnectAttempts()
		g.setState(StateReady)

		g.callbacksMu.RLock()
		callbacks := make([]callbackEntry[ReadyCallback], len(g.readyCallbacks))
		copy(callbacks, g.readyCallbacks)
		g.callbacksMu.RUnlock()

		for _, entry := range callbacks {
			entry.callback(&ready)
		}
	case "RESUMED":
		g.logger.Info("Gateway session resumed")
		g.resetReconnectAttempts()
		g.setState(StateReady)
	case "INTERACTION_CREATE":
		var interaction Interaction
		if err := json.Unmarshal(payload.D, &interaction); err != nil {
			g.logger.Error("Failed to parse interaction", zap.Error(err))
			return
		}

		g.callbacksMu.RLock()
		callbacks := make([]callbackEntry[InteractionCallback], len(g.interactionCallbacks))
		copy(callbacks, g.interactionCallbacks)
		g.callbacksMu.RUnlock()

		for _, entry := range callbacks {
			entry.callback(&interaction)
		}
	}
}

func (g *Gateway) identifyOrResume() error {
	g.sessionMu.Lock()
	sessionID, seq := g.sessionID, g.seq
	g.sessionMu.Unlock()

	if sessionID != "" {
		g.logger.Info("Resuming gateway session", zap.String("session_id", sessionID), zap.Int64("seq", seq))
		return g.send(OpResume, Resume{
			Token:     g.opts.Token,
			SessionID: sessionID,
			Seq:       seq,
		})
	}

	return g.send(OpIdentify, Identify{
		Token:   g.opts.Token,
		Intents: g.opts.Intents,
		Properties: IdentifyProperties{
			OS:      runtime.GOOS,
			Browser: "liqu-discord-bot",
			Device:  "liqu-discord-bot",
		},
	})
}

func (g *Gateway) heartbeat(conn *websocket.Conn, done chan struct{}, interval time.Duration) {
	defer g.wg.Done()
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-g.stopCh:
			return
		case <-ticker.C:
			g.sessionMu.Lock()
			acked := g.acked
			g.acked = false
			g.sessionMu.Unlock()

			if !acked {
				g.logger.Warn("Heartbeat ACK missed, reconnecting")
				_ = conn.Close()
				return
			}
			if err := g.sendHeartbeat(); err != nil {
				g.logger.Warn("Failed to send heartbeat", zap.Error(err))
			}
		}
	}
}

func (g *Gateway) sendHeartbeat() error {
	g.sessionMu.Lock()
	seq := g.seq
	g.sessionMu.Unlock()

	var d any
	if seq > 0 {
		d = seq
	}
	return g.send(OpHeartbeat, d)
}

func (g *Gateway) send(op int, d any) error {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()
	if g.conn == nil {
		return ErrGatewayClosed
	}
	return g.conn.WriteJSON(outgoingPayload{Op: op, D: d})
}

func (g *Gateway) dropConn(conn *websocket.Conn) {
	g.writeMu.Lock()
	if g.conn == conn {
		g.conn = nil
	}
	g.writeMu.Unlock()
	_ = conn.Close()
}

func (g *Gateway) clearSession() {
	g.sessionMu.Lock()
	g.sessionID = ""
	g.resumeURL = ""
	g.seq = 0
	g.sessionMu.Unlock()
}

func (g *Gateway) resetReconnectAttempts() {
	g.reconnectMu.Lock()
	g.reconnectAttempts = 0
	g.reconnectMu.Unlock()
}

func (g *Gateway) scheduleReconnect(ctx context.Context) {
	g.reconnectMu.Lock()
	g.reconnectAttempts++
	attempt := g.reconnectAttempts
	g.reconnectMu.Unlock()

	if attempt > g.opts.MaxReconnectAttempts {
		g.logger.Error("Max reconnect attempts reached",
			zap.Int("attempts", attempt),
		)
		g.setState(StateFailed)
		return
	}

	g.setState(StateReconnecting)

	g.logger.Info("Scheduling reconnect",
		zap.Int("attempt", attempt),
		zap.Int("max", g.opts.MaxReconnectAttempts),
		zap.Duration("delay", g.opts.ReconnectDelay),
	)

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		timer := time.NewTimer(g.opts.ReconnectDelay)
		defer timer.Stop()

		select {
		case <-timer.C:
			if err := g.Connect(ctx); err != nil {
				g.logger.Error("Reconnect failed", zap.Error(err))
				if !stderrors.Is(err, ErrGatewayClosed) {
					g.scheduleReconnect(ctx)
				}
			}
		case <-ctx.Done():
		case <-g.stopCh:
		}
	}()
}

// isFatalCloseCode reports close codes after which Discord forbids reconnecting.
func isFatalCloseCode(code int) bool {
	switch code {
	case 4004, 4010, 4011, 4012, 4013, 4014:
		return true
	default:
		return false
	}
}

func (g *Gateway) OnInteraction(callback InteractionCallback) func() {
	g.callbacksMu.Lock()
	id := g.nextCallbackID
	g.nextCallbackID++
	g.interactionCallbacks = append(g.interactionCallbacks, callbackEntry[InteractionCallback]{id: id, callback: callback})
	g.callbacksMu.Unlock()

	return func() {
		g.callbacksMu.Lock()
		defer g.callbacksMu.Unlock()
		g.interactionCallbacks = removeCallback(g.interactionCallbacks, id)
	}
}

func (g *Gateway) OnReady(callback ReadyCallback) func() {
	g.callbacksMu.Lock()
	id := g.nextCallbackID
	g.nextCallbackID++
	g.readyCallbacks = append(g.readyCallbacks, callbackEntry[ReadyCallback]{id: id, callback: callback})
	g.callbacksMu.Unlock()

	return func() {
		g.callbacksMu.Lock()
		defer g.callbacksMu.Unlock()
		g.readyCallbacks = removeCallback(g.readyCallbacks, id)
	}
}

func (g *Gateway) OnStateChange(callback StateCallback) func() {
	g.callbacksMu.Lock()
	id := g.nextCallbackID
	g.nextCallbackID++
	g.stateCallbacks = append(g.stateCallbacks, callbackEntry[StateCallback]{id: id, callback: callback})
	g.callbacksMu.Unlock()

	return func() {
		g.callbacksMu.Lock()
		defer g.callbacksMu.Unlock()
		g.stateCallbacks = removeCallback(g.stateCallbacks, id)
	}
}

func removeCallback[T any](entries []callbackEntry[T], id int) []callbackEntry[T] {
	for i, entry := range entries {
		if entry.id == id {
			return append(entries[:i], entries[i+1:]...)
		}
	}
	return entries
}

func (g *Gateway) setState(newState GatewayState) {
	g.stateMu.Lock()
	oldState := g.state
	g.state = newState
	g.stateMu.Unlock()

	if oldState != newState {
		g.logger.Info("Gateway state changed",
			zap.String("from", oldState.String()),
			zap.String("to", newState.String()),
		)

		g.callbacksMu.RLock()
		callbacks := make([]callbackEntry[StateCallback], len(g.stateCallbacks))
		copy(callbacks, g.stateCallbacks)
		g.callbacksMu.RUnlock()

		for _, entry := range callbacks {
			entry.callback(newState)
		}
	}
}

func (g *Gateway) GetState() GatewayState {
	g.stateMu.RLock()
	defer g.stateMu.RUnlock()
	return g.state
}

func (g *Gateway) IsReady() bool {
	return g.GetState() == StateReady
}

// SessionID returns the current resumable session, empty before READY.
func (g *Gateway) SessionID() string {
	g.sessionMu.Lock()
	defer g.sessionMu.Unlock()
	return g.sessionID
}

// Disconnect closes the session for good and waits for every gateway
// goroutine to exit.
func (g *Gateway) Disconnect() error {
	g.stopOnce.Do(func() {
		close(g.stopCh)
	})

	var closeErr error
	g.writeMu.Lock()
	if g.conn != nil {
		_ = g.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		closeErr = g.conn.Close()
		g.conn = nil
	}
	g.writeMu.Unlock()
	if closeErr != nil {
		g.logger.Error("Failed to close gateway connection", zap.Error(closeErr))
	}

	g.setState(StateDisconnected)
	g.logger.Info("Gateway disconnected")

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		g.logger.Info("Gateway goroutines stopped cleanly")
	case <-time.After(5 * time.Second):
		g.logger.Warn("Timeout waiting for gateway goroutines to stop")
	}

	return closeErr
}
