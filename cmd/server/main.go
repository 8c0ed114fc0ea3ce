/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the rota resolution engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Optionally import a JSON roster definition
  4. Create API handler with dependencies
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: rota.db)
           Use ":memory:" for in-memory database
  -roster  Optional JSON roster file imported at startup

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/rota.db"

  # Seed patterns from a roster file
  ./server -db=":memory:" -roster="./rosters/spring.json"

  # Run on different port
  ./server -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/rota-engine/api"
	"github.com/warp/rota-engine/factory"
	"github.com/warp/rota-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "rota.db", "SQLite database path")
	rosterPath := flag.String("roster", "", "JSON roster file imported at startup")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Seed patterns from a roster file if requested
	if *rosterPath != "" {
		if err := importRoster(store, *rosterPath); err != nil {
			log.Fatalf("Failed to import roster: %v", err)
		}
	}

	// Initialize handler and router
	handler := api.NewHandler(store, store)
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// importRoster parses a roster definition file and saves its patterns.
func importRoster(store *sqlite.Store, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	patterns, err := factory.NewPatternFactory().ParseRoster(string(raw))
	if err != nil {
		return err
	}

	ctx := context.Background()
	for _, p := range patterns {
		if err := store.SavePattern(ctx, p); err != nil {
			return err
		}
	}
	log.Printf("Imported %d patterns from %s", len(patterns), path)
	return nil
}
