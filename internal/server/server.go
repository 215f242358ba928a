package server

import (
	"backend-friendbook/internal/account"
	"backend-friendbook/internal/apperr"
	"backend-friendbook/internal/auth"
	"backend-friendbook/internal/config"
	"backend-friendbook/internal/content"
	"backend-friendbook/internal/engagement"
	"backend-friendbook/internal/logger"
	"backend-friendbook/internal/mail"
	"backend-friendbook/internal/media"
	"backend-friendbook/internal/metrics"
	"backend-friendbook/internal/oauth"
	"backend-friendbook/internal/otp"
	"backend-friendbook/internal/social"
	"backend-friendbook/internal/store"
	"backend-friendbook/internal/store/memory"
	"backend-friendbook/internal/store/postgres"
	"backend-friendbook/internal/stream"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Deps are the connections opened by the caller. Any of them may be nil:
// without a pool the memory store is used, without blobs the memory blob
// store, without Redis OTP calls fail and the stream delivers locally.
type Deps struct {
	DB    *pgxpool.Pool
	Redis *redis.Client
	Blobs media.Blobs
	Log   *logger.Logger
}

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Store  store.Store
	Blobs  media.Blobs
	Stream *stream.Hub
	Log    *logger.Logger

	mail   mail.Sender
	google *oauth.GoogleClient
}

func NewServer(cfg config.Config, deps Deps) *Server {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	app := fiber.New(fiber.Config{
		ErrorHandler: apperr.ErrorHandler(deps.Log),
		BodyLimit:    media.MaxUploadSize * 3,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(metrics.Middleware())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     deps.DB,
		Redis:  deps.Redis,
		Store:  selectStore(cfg, deps),
		Blobs:  deps.Blobs,
		Stream: stream.NewHub(deps.Redis, deps.Log),
		Log:    deps.Log,
		google: oauth.NewGoogleClient(oauth.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
		}),
	}
	if s.Blobs == nil {
		s.Blobs = media.NewMemoryStore()
	}
	if cfg.MailAPIKey != "" {
		s.mail = mail.NewClient(mail.Config{
			APIURL:      cfg.MailAPIURL,
			APIKey:      cfg.MailAPIKey,
			SenderEmail: cfg.MailSenderEmail,
			SenderName:  cfg.MailSenderName,
		})
	} else {
		s.mail = mail.LogSender{Log: deps.Log}
	}

	registerRoutes(s)
	return s
}

func selectStore(cfg config.Config, deps Deps) store.Store {
	if cfg.StoreDriver == config.DriverPostgres && deps.DB != nil {
		return postgres.New(deps.DB)
	}
	if cfg.StoreDriver == config.DriverPostgres {
		deps.Log.Warn("postgres unavailable, using the in-memory store")
	}
	return memory.New().Store()
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.App.Get("/metrics", metrics.Handler())

	tokens := auth.NewService(s.Cfg.JWTSecret, s.Store.Users)
	authMiddleware := auth.Middleware(tokens)

	accounts := account.NewService(account.Deps{
		Store:  s.Store,
		OTPs:   otp.NewStore(s.Redis),
		Tokens: tokens,
		Mail:   s.mail,
		Google: s.google,
		Blobs:  s.Blobs,
		Log:    s.Log,
	})

	api := s.App.Group("/api")
	users := api.Group("/user")
	account.RegisterRoutes(users, accounts, authMiddleware)
	social.RegisterRoutes(users, social.NewService(s.Store.Users, s.Stream), authMiddleware)
	content.RegisterRoutes(api.Group("/post"), content.NewService(s.Store, s.Blobs, s.Log), authMiddleware)
	engagement.RegisterRoutes(api, engagement.NewService(s.Store, s.Stream), authMiddleware)
	account.RegisterOAuthRoutes(api.Group("/oauth"), accounts, s.Cfg.PublicOrigin)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, tokens)
}

// Close releases what NewServer opened. The caller owns Deps.
func (s *Server) Close() {
	s.Stream.Close()
	if c, ok := s.mail.(*mail.Client); ok {
		_ = c.Close()
	}
	_ = s.google.Close()
}
