package api

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	log "github.com/sirupsen/logrus"
)

// Server exposes the dedup RPC surface to the rest of the platform: the
// listing UI triggers runs and manages overrides, the scraper never calls it
// directly (it goes through the event bus).
type Server struct {
	app  *fiber.App
	port int
}

func NewServer(runner dedupRunner, overrides overrideService, port int, runsPerMinutePerUser float64) *Server {

	app := fiber.New()
	h := newHandlers(runner, overrides, runsPerMinutePerUser)

	app.Get("/health", h.health)
	app.Post("/dedupe/run", h.runDedup)
	app.Post("/dedupe/merge", h.mergeJobs)
	app.Delete("/dedupe/relationship", h.removeRelationship)
	app.Get("/dedupe/jobs/:jobId/duplicates", h.listDuplicates)

	return &Server{app: app, port: port}
}

func (s *Server) Run() {
	if err := s.app.Listen(fmt.Sprintf(":%d", s.port)); err != nil {
		log.Fatalf("api server stopped: %v", err)
	}
}

func (s *Server) Stop() error {
	return s.app.Shutdown()
}
