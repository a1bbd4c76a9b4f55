package server

import (
	"gearplanner/internal/auth"
	"gearplanner/internal/catalog"
	"gearplanner/internal/config"
	"gearplanner/internal/planner"
	"gearplanner/internal/remote"
	"gearplanner/internal/shared/httperr"
	"gearplanner/internal/store"
	"gearplanner/internal/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	Redis    *redis.Client
	Log      *zap.SugaredLogger
	Remote   *remote.Client
	Sessions *store.Registry
	Stream   *stream.Hub
	Catalog  *catalog.Service
	Planner  *planner.Service
}

func NewServer(cfg config.Config, redisClient *redis.Client, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	app := fiber.New(fiber.Config{ErrorHandler: httperr.Handler(log)})
	app.Use(recover.New())
	app.Use(logger.New())

	client := remote.NewClient(cfg.APIBaseURL,
		remote.WithTimeout(cfg.HTTPTimeout),
		remote.WithLogger(log.Named("remote")),
	)
	sessions := store.NewRegistry()
	hub := stream.NewHub(redisClient, log.Named("stream"))
	cat := catalog.NewService(client, redisClient, cfg.CatalogTTL, log.Named("catalog"))

	s := &Server{
		App:      app,
		Cfg:      cfg,
		Redis:    redisClient,
		Log:      log,
		Remote:   client,
		Sessions: sessions,
		Stream:   hub,
		Catalog:  cat,
		Planner: planner.NewService(client, cat, sessions,
			planner.WithPublisher(hub),
			planner.WithLogger(log.Named("planner")),
			planner.WithDevelopment(cfg.IsDevelopment()),
		),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "sessions": s.Sessions.Len()})
	})

	authMiddleware := auth.Middleware(s.Cfg.IdentitySecret)

	api := s.App.Group("/api")
	catalog.RegisterRoutes(api, s.Catalog)
	planner.RegisterRoutes(api, s.Planner, authMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, authMiddleware)
}
