// Package preview serves a live view of frames while a video is being
// encoded: a multipart MJPEG stream of the composed frames plus a websocket
// feed of progress events. Purely cooperative; a slow or absent viewer never
// affects the build.
package preview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/sensorviz/sensorviz/internal/logger"
)

const (
	jpegQuality  = 80
	writeWait    = 10 * time.Second
	shutdownWait = 5 * time.Second
)

// Progress is one encoding progress event, broadcast as JSON over the
// websocket feed.
type Progress struct {
	Done  int    `json:"done"`
	Total int    `json:"total"`
	File  string `json:"file,omitempty"`
}

// Server streams frames and progress to connected viewers.
type Server struct {
	addr string
	http *http.Server

	upgrader websocket.Upgrader

	frameMu      sync.RWMutex
	frameClients map[chan []byte]struct{}

	wsMu      sync.Mutex
	wsClients map[*websocket.Conn]*sync.Mutex

	progressMu sync.RWMutex
	last       Progress
}

// NewServer builds a preview server listening on addr (e.g. ":8080").
func NewServer(addr string) *Server {
	s := &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		frameClients: make(map[chan []byte]struct{}),
		wsClients:    make(map[*websocket.Conn]*sync.Mutex),
	}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/stream", s.handleStream).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start serves in the background until Stop is called.
func (s *Server) Start() {
	log := logger.WithComponent("preview")
	log.Info().Str("addr", s.addr).Msg("preview server listening")
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn().Err(err).Msg("preview server stopped")
		}
	}()
}

// Stop shuts the server down and disconnects all viewers.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()
	_ = s.http.Shutdown(ctx)

	s.frameMu.Lock()
	for ch := range s.frameClients {
		close(ch)
	}
	s.frameClients = make(map[chan []byte]struct{})
	s.frameMu.Unlock()

	s.wsMu.Lock()
	for conn := range s.wsClients {
		_ = conn.Close()
	}
	s.wsClients = make(map[*websocket.Conn]*sync.Mutex)
	s.wsMu.Unlock()
}

// PublishFrame fans a composed frame out to stream viewers. Slow viewers
// drop frames rather than blocking the encoder.
func (s *Server) PublishFrame(frame *image.RGBA) {
	s.frameMu.RLock()
	n := len(s.frameClients)
	s.frameMu.RUnlock()
	if n == 0 {
		return
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return
	}
	data := buf.Bytes()

	s.frameMu.RLock()
	for ch := range s.frameClients {
		select {
		case ch <- data:
		default:
		}
	}
	s.frameMu.RUnlock()
}

// PublishProgress broadcasts a progress event to websocket viewers.
func (s *Server) PublishProgress(p Progress) {
	s.progressMu.Lock()
	s.last = p
	s.progressMu.Unlock()

	payload, err := json.Marshal(p)
	if err != nil {
		return
	}

	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	for conn, mu := range s.wsClients {
		mu.Lock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			_ = conn.Close()
			delete(s.wsClients, conn)
		}
		mu.Unlock()
	}
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Connection", "close")

	frameChan := make(chan []byte, 2)
	s.frameMu.Lock()
	s.frameClients[frameChan] = struct{}{}
	s.frameMu.Unlock()
	defer func() {
		s.frameMu.Lock()
		delete(s.frameClients, frameChan)
		s.frameMu.Unlock()
	}()

	for data := range frameChan {
		if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(data)); err != nil {
			return
		}
		if _, err := w.Write(data); err != nil {
			return
		}
		if _, err := fmt.Fprintf(w, "\r\n"); err != nil {
			return
		}
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	mu := &sync.Mutex{}
	s.wsMu.Lock()
	s.wsClients[conn] = mu
	s.wsMu.Unlock()

	// New viewers immediately get the latest progress state.
	s.progressMu.RLock()
	last := s.last
	s.progressMu.RUnlock()
	if payload, err := json.Marshal(last); err == nil {
		mu.Lock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteMessage(websocket.TextMessage, payload)
		mu.Unlock()
	}

	// Drain reads so pings/closes are processed; drop the client when the
	// connection goes away.
	go func() {
		defer func() {
			s.wsMu.Lock()
			delete(s.wsClients, conn)
			s.wsMu.Unlock()
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>sensorviz preview</title>
    <style>
        body { margin: 0; background: #000; color: #ccc; font-family: monospace; }
        img { display: block; margin: 0 auto; max-width: 100vw; max-height: 90vh; }
        #progress { text-align: center; padding: 8px; }
    </style>
</head>
<body>
    <img src="/stream" alt="encoding preview">
    <div id="progress">waiting for frames…</div>
    <script>
        const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
        ws.onmessage = (ev) => {
            const p = JSON.parse(ev.data);
            if (p.total > 0) {
                document.getElementById('progress').textContent =
                    'frame ' + p.done + '/' + p.total + (p.file ? ' → ' + p.file : '');
            }
        };
    </script>
</body>
</html>`
