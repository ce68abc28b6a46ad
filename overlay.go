/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Stonecast overlay rooms
//
// A commentator calibrates a 19x19 grid over a camera feed and places
// stones, markers, marks and pen strokes. Every browser watching the same
// room sees the same board.
//
// Features:
// - WebSockets per room ID: /overlay/:room and /overlay/:room/ws
// - First client identity to connect becomes the commentator
// - Only the commentator may change the board; viewers get an error
// - Viewer connections capped by --max-viewers
// - Clients identified by a uuid cookie
// - State frames sent at --frame-rate, only when something changed
// - Frames carry replay-safe commands and a full render snapshot
// - Late joiners get the current snapshot on connect
// - grid=x,y;x,y;x,y;x,y on the room URL restores a calibration
// - Share URL and QR code carry the current calibration
// - Rooms auto-reaped after configurable idle timeout
// - Random 8-char room IDs via crypto/rand, with server-side collision check

package main

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"github.com/Seednode/stonecast/board"
)

const (
	overlayPath      = "/overlay"
	clientCookieName = "stonecast_id"
	roomIDLength     = 8
	maxRoomIDLength  = 64

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 64 << 10
)

// SessionInfoMessage is sent immediately on connect so the client knows
// which role this cookie has.
type SessionInfoMessage struct {
	Type        string `json:"type"` // "session_info"
	Room        string `json:"room"`
	Commentator bool   `json:"commentator"`
	FrameRate   int    `json:"frame_rate"`
}

// ErrorMessage goes only to the client whose message was refused.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

// StateMessage is one render frame. Commands lists what was applied since
// the previous frame, in order; a client that missed none of them can
// replay them instead of reading State.
type StateMessage struct {
	Type     string            `json:"type"` // "state"
	Seq      uint64            `json:"seq"`
	Commands []json.RawMessage `json:"commands"`
	State    board.Snapshot    `json:"state"`
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	clientID string
}

type commandRequest struct {
	client *Client
	data   []byte
}

// Room owns one board.Session. Everything touching the session runs on the
// run goroutine; mu only guards what the manager and handlers read.
type Room struct {
	id      string
	clients map[*Client]bool
	session *board.Session

	register chan *Client
	unreg    chan *Client
	commands chan commandRequest
	restores chan [4]board.Point
	done     chan struct{}
	stop     sync.Once

	commentatorID string
	seq           uint64
	pending       []json.RawMessage
	dirty         bool

	mu          sync.RWMutex
	lastActive  time.Time
	calibration string
}

func newRoom(roomID string) *Room {
	now := time.Now()
	return &Room{
		id:         roomID,
		clients:    make(map[*Client]bool),
		session:    board.NewSession(),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		commands:   make(chan commandRequest),
		restores:   make(chan [4]board.Point),
		done:       make(chan struct{}),
		lastActive: now,
	}
}

func (h *Room) run(cfg *Config) {
	ticker := time.NewTicker(cfg.frameInterval())
	defer ticker.Stop()

	for {
		select {
		case c := <-h.register:
			h.handleRegister(cfg, c)

		case c := <-h.unreg:
			h.touch()

			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

		case req := <-h.commands:
			h.handleCommand(cfg, req)

		case points := <-h.restores:
			h.handleRestore(cfg, points)

		case <-ticker.C:
			h.flush(cfg)

		case <-h.done:
			h.closeAll()

			return
		}
	}
}

// close stops the room. Pumps blocked on the room's channels give up.
func (h *Room) close() {
	h.stop.Do(func() { close(h.done) })
}

func (h *Room) touch() {
	h.mu.Lock()
	h.lastActive = time.Now()
	h.mu.Unlock()
}

func (h *Room) idleSince() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.lastActive
}

// Calibration returns the room's grid in URL parameter form, or an empty
// string before the grid is calibrated.
func (h *Room) Calibration() string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.calibration
}

func (h *Room) viewerCount() int {
	n := 0
	for c := range h.clients {
		if c.clientID != h.commentatorID {
			n++
		}
	}
	return n
}

func (h *Room) handleRegister(cfg *Config, c *Client) {
	h.touch()

	// First identity becomes commentator
	if h.commentatorID == "" {
		h.commentatorID = c.clientID
		logf(cfg, "ROOMS: Commentator joined %s", h.id)
	}

	isCommentator := c.clientID == h.commentatorID

	if !isCommentator && cfg.maxViewers > 0 && h.viewerCount() >= cfg.maxViewers {
		c.send <- ErrorMessage{
			Type:    "error",
			Message: "This overlay has reached its viewer limit.",
		}
		close(c.send)

		logf(cfg, "ROOMS: Turned away viewer from full room %s", h.id)

		return
	}

	h.clients[c] = true

	c.send <- SessionInfoMessage{
		Type:        "session_info",
		Room:        h.id,
		Commentator: isCommentator,
		FrameRate:   cfg.frameRate,
	}

	// Late joiners start from the current snapshot
	c.send <- h.frame(cfg, nil)
}

func (h *Room) handleCommand(cfg *Config, req commandRequest) {
	h.touch()

	if req.client.clientID != h.commentatorID {
		h.sendTo(req.client, ErrorMessage{
			Type:    "error",
			Message: "Only the commentator can change this overlay.",
		})

		return
	}

	cmd, err := board.DecodeCommand(req.data)
	if err == nil {
		err = h.apply(cmd)
	}
	if err != nil {
		logf(cfg, "ROOMS: Refused command in %s: %v", h.id, err)

		h.sendTo(req.client, ErrorMessage{
			Type:    "error",
			Message: err.Error(),
		})
	}
}

func (h *Room) handleRestore(cfg *Config, points [4]board.Point) {
	if h.session.Grid.IsSet() {
		return
	}

	if err := h.apply(board.SetGrid{Points: points[:]}); err != nil {
		logf(cfg, "ROOMS: Could not restore grid in %s: %v", h.id, err)

		return
	}

	logf(cfg, "ROOMS: Restored grid %s in %s", h.Calibration(), h.id)
}

// apply runs cmd on the session and queues its replay commands for the
// next frame.
func (h *Room) apply(cmd board.Command) error {
	out, err := h.session.Apply(cmd)
	if err != nil {
		return err
	}

	for _, c := range out {
		data, err := board.EncodeCommand(c)
		if err != nil {
			return err
		}

		h.pending = append(h.pending, data)
	}

	h.dirty = true

	h.mu.Lock()
	h.lastActive = time.Now()
	h.calibration = h.session.Grid.Calibration()
	h.mu.Unlock()

	return nil
}

func (h *Room) frame(cfg *Config, commands []json.RawMessage) StateMessage {
	if commands == nil {
		commands = []json.RawMessage{}
	}

	return StateMessage{
		Type:     "state",
		Seq:      h.seq,
		Commands: commands,
		State:    h.session.Snapshot(cfg.stoneSize),
	}
}

// flush broadcasts one state frame if anything changed since the last.
func (h *Room) flush(cfg *Config) {
	if !h.dirty {
		return
	}

	h.seq++
	msg := h.frame(cfg, h.pending)

	h.pending = nil
	h.dirty = false

	for client := range h.clients {
		h.sendTo(client, msg)
	}
}

// sendTo drops clients that cannot keep up.
func (h *Room) sendTo(c *Client, msg any) {
	if _, ok := h.clients[c]; !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

// closeAll disconnects all clients of this room.
func (h *Room) closeAll() {
	for c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, c)
	}
}

// restore calibrates the room's grid unless it already has one.
func (h *Room) restore(points [4]board.Point) {
	select {
	case h.restores <- points:
	case <-h.done:
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func getOrSetClientID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(clientCookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}

	id := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     clientCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

// RoomManager holds a set of rooms keyed by room ID, so each
// /overlay/:room is its own isolated board.
type RoomManager struct {
	mu          sync.Mutex
	rooms       map[string]*Room
	idleTimeout time.Duration
}

func newRoomManager(ctx context.Context, cfg *Config) *RoomManager {
	rm := &RoomManager{
		rooms:       make(map[string]*Room),
		idleTimeout: cfg.sessionTimeout,
	}

	if rm.idleTimeout > 0 {
		go rm.reaperLoop(ctx, cfg)
	}

	go func() {
		<-ctx.Done()
		rm.closeAll()
	}()

	return rm
}

// lookup returns the room named by the :room parameter, creating it if
// needed. It reports false for unusable IDs.
func (rm *RoomManager) lookup(cfg *Config, ps httprouter.Params) (*Room, bool) {
	roomID := ps.ByName("room")
	if roomID == "" || len(roomID) > maxRoomIDLength {
		return nil, false
	}

	return rm.getRoom(cfg, roomID), true
}

func (rm *RoomManager) getRoom(cfg *Config, roomID string) *Room {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if room, ok := rm.rooms[roomID]; ok {
		return room
	}

	room := newRoom(roomID)
	rm.rooms[roomID] = room
	go room.run(cfg)

	return room
}

// newRoomID generates a crypto-random room ID and ensures it doesn't
// collide with existing rooms.
func (rm *RoomManager) newRoomID() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	for {
		buf := make([]byte, roomIDLength)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}

		out := make([]byte, roomIDLength)
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}

		id := string(out)

		rm.mu.Lock()
		_, exists := rm.rooms[id]
		rm.mu.Unlock()

		if !exists {
			return id
		}
	}
}

// reaperLoop periodically removes rooms that have been idle longer than
// idleTimeout.
func (rm *RoomManager) reaperLoop(ctx context.Context, cfg *Config) {
	ticker := time.NewTicker(rm.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rm.reap(cfg, time.Now().Add(-rm.idleTimeout))
		}
	}
}

func (rm *RoomManager) reap(cfg *Config, cutoff time.Time) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	for id, room := range rm.rooms {
		if room.idleSince().Before(cutoff) {
			delete(rm.rooms, id)
			room.close()

			logf(cfg, "ROOMS: Reaped idle room %s", id)
		}
	}
}

func (rm *RoomManager) closeAll() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	for id, room := range rm.rooms {
		delete(rm.rooms, id)
		room.close()
	}
}

func (rm *RoomManager) count() int {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	return len(rm.rooms)
}

// WebSocket handler that picks the room based on :room
func serveWSForManager(cfg *Config, rm *RoomManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		room, ok := rm.lookup(cfg, ps)
		if !ok {
			http.Error(w, "invalid room id", http.StatusBadRequest)
			return
		}

		clientID := getOrSetClientID(w, r)

		conn, err := upgrader.Upgrade(w, r, w.Header())
		if err != nil {
			logf(cfg, "ROOMS: Upgrade error for %s: %v", realIP(r), err)
			return
		}

		client := &Client{
			conn:     conn,
			send:     make(chan any, 16),
			clientID: clientID,
		}

		select {
		case room.register <- client:
		case <-room.done:
			_ = conn.Close()
			return
		}

		go client.writePump()
		client.readPump(room)
	}
}

func (c *Client) readPump(h *Room) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		select {
		case h.commands <- commandRequest{client: c, data: data}:
		case <-h.done:
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// shareURL is the viewer URL for a room, carrying its calibration when it
// has one.
func shareURL(cfg *Config, r *http.Request, room *Room) string {
	u := url.URL{
		Scheme: requestScheme(r),
		Host:   r.Host,
		Path:   cfg.prefix + overlayPath + "/" + room.id,
	}

	if grid := room.Calibration(); grid != "" {
		u.RawQuery = url.Values{"grid": {grid}}.Encode()
	}

	return u.String()
}

func serveShare(cfg *Config, rm *RoomManager, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		room, ok := rm.lookup(cfg, ps)
		if !ok {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		_, err := w.Write([]byte(shareURL(cfg, r, room) + "\n"))
		if err != nil {
			errs <- err

			return
		}
	}
}

// QR handler: generates a PNG QR code for the room's share URL using go-qrcode.
func serveQR(cfg *Config, rm *RoomManager, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		room, ok := rm.lookup(cfg, ps)
		if !ok {
			http.NotFound(w, r)
			return
		}

		const qrSize = 320 // mobile-friendly size

		png, err := qrcode.Encode(shareURL(cfg, r, room), qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		_, err = w.Write(png)
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveRoomPage(cfg *Config, rm *RoomManager, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		room, ok := rm.lookup(cfg, ps)
		if !ok {
			http.NotFound(w, r)
			return
		}

		if grid := r.URL.Query().Get("grid"); grid != "" {
			points, err := board.ParseCalibration(grid)
			if err != nil {
				logf(cfg, "ROOMS: Ignoring grid for %s: %v", room.id, err)
			} else {
				room.restore(points)
			}
		}

		data, err := assets.ReadFile("assets/overlay/index.html")
		if err != nil {
			errs <- err

			http.Error(w, "missing client", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		securityHeaders(cfg, w)

		_ = getOrSetClientID(w, r)

		_, err = w.Write(data)
		if err != nil {
			errs <- err

			return
		}
	}
}

// redirectNewRoom handles GET /overlay by generating a new random room ID
// (with server-side collision detection) and redirecting to /overlay/:room.
func redirectNewRoom(cfg *Config, path string, rm *RoomManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		roomID := rm.newRoomID()
		logf(cfg, "ROOMS: Created room %s%s/%s", cfg.prefix, path, roomID)
		http.Redirect(w, r, cfg.prefix+path+"/"+roomID, http.StatusTemporaryRedirect)
	}
}

// registerOverlay sets up routes so that:
//   - $path                  → redirects to new random room (8-char ID)
//   - $path/:room            → HTML client, optionally restoring ?grid=
//   - $path/:room/ws         → WebSocket for that room
//   - $path/:room/share      → viewer URL with the room's calibration
//   - $path/:room/qr         → PNG QR code of the viewer URL
func registerOverlay(ctx context.Context, cfg *Config, path string, mux *httprouter.Router, errs chan<- error) *RoomManager {
	rm := newRoomManager(ctx, cfg)

	mux.GET(cfg.prefix+path, redirectNewRoom(cfg, path, rm))

	mux.GET(cfg.prefix+path+"/:room", serveRoomPage(cfg, rm, errs))

	mux.GET(cfg.prefix+path+"/:room/ws", serveWSForManager(cfg, rm))

	mux.GET(cfg.prefix+path+"/:room/share", serveShare(cfg, rm, errs))

	mux.GET(cfg.prefix+path+"/:room/qr", serveQR(cfg, rm, errs))

	return rm
}
