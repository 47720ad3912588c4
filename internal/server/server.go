package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

type Server struct {
	port              int
	allowedOrigins    []string
	connectionManager *ConnectionManager
	roomManager       *RoomManager
	rateLimiter       *RateLimiter
}

// parseAllowedOrigins splits a comma-separated ALLOWED_ORIGINS value into
// websocket origin patterns. An empty value permits any origin.
func parseAllowedOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func NewServer() (*Server, *http.Server) {
	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 3002
	}

	s := &Server{
		port:              port,
		allowedOrigins:    parseAllowedOrigins(os.Getenv("ALLOWED_ORIGINS")),
		connectionManager: NewConnectionManager(),
		roomManager:       NewRoomManager(),
		rateLimiter:       NewRateLimiter(10, time.Second),
	}

	// Declare Server config
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s, httpServer
}

// Shutdown closes every live player connection. Room state is process-memory
// only and simply evaporates; there is nothing to flush.
func (s *Server) Shutdown(ctx context.Context) error {
	s.connectionManager.CloseAll()
	return nil
}
