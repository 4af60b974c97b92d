// Package liveserver exposes a running sheet over a WebSocket connection:
// browsers send cell edits, the server recalculates and broadcasts every
// cell's rendered value to all connected clients.
//
// Grounded on the teacher's spreadsheet/server.go (gorilla/websocket
// upgrade, a client-set guarded by a mutex, broadcast-to-all-on-change).
// Unlike the teacher, which tracked a Dependencies/Dependents graph and
// broadcast only the "affected" subset after an edit, this server has no
// dependency graph to consult (SPEC_FULL.md's recalc is a full sweep, not
// incremental) -- every edit triggers one full Recalc and then one full
// broadcast of every occupied cell.
package liveserver

import (
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"

	"decicalc/interpreter"
	"decicalc/sheet"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server pairs one in-memory sheet with the set of browsers currently
// watching it.
type Server struct {
	mu      sync.Mutex
	sheet   *sheet.SpreadSheet
	ctx     *interpreter.CallingContext
	clients map[*websocket.Conn]bool
}

// New wraps a sheet and the CallingContext it should be recalculated with --
// the caller builds ctx (and loads any libraries into it) first, since
// library-defined functions must land in the same GlobalScope every
// subsequent recalc uses.
func New(s *sheet.SpreadSheet, ctx *interpreter.CallingContext) *Server {
	return &Server{
		sheet:   s,
		ctx:     ctx,
		clients: make(map[*websocket.Conn]bool),
	}
}

// UpdateRequest is sent by a client to edit a cell or trigger a recalc.
type UpdateRequest struct {
	Type string `json:"type"` // "update_cell" | "recalc" | "clear"
	Col  int64  `json:"col"`
	Row  int64  `json:"row"`
	Text string `json:"text"`
}

// CellUpdate is one cell's rendered state, broadcast after every recalc.
type CellUpdate struct {
	Type  string `json:"type"` // "cell"
	Col   int64  `json:"col"`
	Row   int64  `json:"row"`
	Value string `json:"value"`
	Error bool   `json:"error"`
}

func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("liveserver: upgrade failed:", err)
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	s.sendFullState(conn)

	for {
		var req UpdateRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		switch req.Type {
		case "update_cell":
			s.mu.Lock()
			s.sheet.SetValueCell(req.Col, req.Row, req.Text)
			s.mu.Unlock()
			s.recalcAndBroadcast()
		case "clear":
			s.mu.Lock()
			s.sheet.Clear()
			s.mu.Unlock()
			s.broadcastAll()
		case "recalc":
			s.recalcAndBroadcast()
		}
	}
}

func (s *Server) recalcAndBroadcast() {
	s.mu.Lock()
	sheet.Recalc(s.ctx, s.sheet)
	s.mu.Unlock()
	s.broadcastAll()
}

func (s *Server) broadcastAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheet.Each(func(col, row int64, cell *sheet.Cell) bool {
		update := renderCell(col, row, cell)
		for client := range s.clients {
			if err := client.WriteJSON(update); err != nil {
				log.Printf("liveserver: broadcast failed: %v", err)
				client.Close()
				delete(s.clients, client)
			}
		}
		return true
	})
}

func (s *Server) sendFullState(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheet.Each(func(col, row int64, cell *sheet.Cell) bool {
		if err := conn.WriteJSON(renderCell(col, row, cell)); err != nil {
			log.Println("liveserver: initial state write failed:", err)
			return false
		}
		return true
	})
}

func renderCell(col, row int64, cell *sheet.Cell) CellUpdate {
	update := CellUpdate{Type: "cell", Col: col, Row: row}
	if cell.FirstErrorLine != "" {
		update.Error = true
		update.Value = "***"
		return update
	}
	if cell.PreviousValue != nil {
		update.Value = cell.PreviousValue.Inspect()
		return update
	}
	update.Value = ""
	return update
}

// ListenAndServe serves the websocket endpoint and a bare status page at
// addr until the process exits or an unrecoverable server error occurs.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWebSocket)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("decicalc live server: connect to /ws, sheet is " +
			strconv.FormatInt(s.sheet.MaxCol()+1, 10) + " columns wide\n"))
	})
	log.Println("liveserver: listening on", addr)
	return http.ListenAndServe(addr, mux)
}
