package server

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"chunkdb/src/directors"
	"chunkdb/src/engine"
	"chunkdb/src/helpers"

	"go.uber.org/zap"
)

// Server is the TCP front end. Each connection gets the same line
// protocol as the console: one command per line, answered by the indented
// JSON rendering of its response (or an "Error: ..." line).
type Server struct {
	Host              string
	Port              int
	Listener          net.Listener
	ActiveConnections map[string]*Connection
	mu                sync.Mutex
	Running           bool
	serviceManager    *directors.ServiceManager
	logger            *zap.SugaredLogger
	wg                sync.WaitGroup
}

// Connection represents an active client connection
type Connection struct {
	ID         string
	Conn       net.Conn
	Reader     *bufio.Reader
	Writer     *bufio.Writer
	LastActive time.Time
	Logger     *zap.SugaredLogger
}

// NewServer creates a server bound to the shared service manager.
func NewServer(host string, port int, serviceManager *directors.ServiceManager, logger *zap.SugaredLogger) *Server {
	return &Server{
		Host:              host,
		Port:              port,
		ActiveConnections: make(map[string]*Connection),
		serviceManager:    serviceManager,
		logger:            logger,
	}
}

// Start begins listening for incoming connections
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("error starting server on %s: %w", addr, err)
	}

	s.Listener = listener
	s.Running = true

	s.logger.Infow("Server listening", "addr", addr)

	go s.acceptConnections()

	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	s.Running = false

	s.mu.Lock()
	for id, conn := range s.ActiveConnections {
		conn.Conn.Close()
		delete(s.ActiveConnections, id)
	}
	s.mu.Unlock()

	var err error
	if s.Listener != nil {
		err = s.Listener.Close()
	}

	s.wg.Wait()

	s.logger.Info("Server shutdown complete")
	s.logger.Sync()

	return err
}

// acceptConnections handles incoming connection requests
func (s *Server) acceptConnections() {
	for s.Running {
		conn, err := s.Listener.Accept()
		if err != nil {
			if s.Running { // Only log if we're still supposed to be running
				s.logger.Errorw("Error accepting connection", "error", err)
			}
			continue
		}

		s.logger.Infow("New connection received", "remoteAddr", conn.RemoteAddr().String())

		s.wg.Add(1)
		go func(c net.Conn) {
			defer s.wg.Done()
			s.handleConnection(c)
		}(conn)
	}
}

// handleConnection processes a single client connection
func (s *Server) handleConnection(conn net.Conn) {
	connID := helpers.GenerateUUID()
	connLogger := s.logger.With("connID", connID, "remoteAddr", conn.RemoteAddr().String())

	connection := &Connection{
		ID:         connID,
		Conn:       conn,
		Reader:     bufio.NewReader(conn),
		Writer:     bufio.NewWriter(conn),
		LastActive: time.Now(),
		Logger:     connLogger,
	}

	s.mu.Lock()
	s.ActiveConnections[connID] = connection
	s.mu.Unlock()

	defer func() {
		conn.Close()
		s.mu.Lock()
		delete(s.ActiveConnections, connID)
		s.mu.Unlock()
		connLogger.Infow("Connection closed")
		connLogger.Sync()
	}()

	fmt.Fprintf(connection.Writer, "Database ready: %s\n", s.serviceManager.DatabaseService.DatabaseName())
	connection.Writer.Flush()

	scanner := bufio.NewScanner(connection.Reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" {
			return
		}

		connection.LastActive = time.Now()
		connLogger.Debugw("Received command", "line", line)

		response, err := directors.CommandDirector(s.serviceManager, line, connLogger)
		if err != nil {
			sendError(connection.Writer, err)
			continue
		}
		sendResponse(connection.Writer, response, connLogger)
	}

	if err := scanner.Err(); err != nil {
		connLogger.Warnw("Error reading from client", "error", err)
	}
}

func sendError(writer *bufio.Writer, err error) {
	writer.WriteString(fmt.Sprintf("Error: %v\n", err))
	writer.Flush()
}

func sendResponse(writer *bufio.Writer, response *engine.CommandResponse, logger *zap.SugaredLogger) {
	rendered, err := response.Render()
	if err != nil {
		logger.Warnw("Error rendering response", "error", err)
		sendError(writer, err)
		return
	}
	writer.WriteString(rendered + "\n")
	writer.Flush()
}
