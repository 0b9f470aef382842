package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	currency "github.com/malusev998/currency-board"
	"github.com/malusev998/currency-board/catalog"
	"github.com/malusev998/currency-board/session"
)

const shutdownTimeout = 5 * time.Second

var (
	defaultBase    = currency.Code("CNY")
	defaultTargets = []currency.Code{"HKD", "USD"}
)

type (
	// Server is the rate gateway. It keeps the provider credential on the
	// server side and hosts websocket boards.
	Server struct {
		fetcher currency.Fetcher
		catalog *catalog.Catalog
		board   session.Config
		logger  log.Logger
		engine  *gin.Engine

		ctx      context.Context
		cancel   context.CancelFunc
		lock     sync.Mutex
		sessions map[string]*session.Session
	}

	errorResponse struct {
		Error string `json:"error"`
	}

	currenciesResponse struct {
		Currencies []currency.Currency `json:"currencies"`
		// Fallback is set when a search ran against the built-in list.
		Fallback  bool      `json:"fallback,omitempty"`
		Timestamp time.Time `json:"timestamp"`
	}

	ratesResponse struct {
		Base      currency.Code  `json:"base"`
		Rates     currency.Rates `json:"rates"`
		Timestamp time.Time      `json:"timestamp"`
	}

	healthResponse struct {
		Status    string    `json:"status"`
		Sessions  int       `json:"sessions"`
		Catalog         int       `json:"catalog"`
		CatalogFallback bool      `json:"catalogFallback"`
		Timestamp       time.Time `json:"timestamp"`
	}
)

func New(fetcher currency.Fetcher, c *catalog.Catalog, board session.Config, logger log.Logger, debug bool) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	if c == nil {
		c = catalog.Default()
	}

	if logger == nil {
		logger = log.NewNopLogger()
	}

	board.Catalog = c

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		fetcher:  fetcher,
		catalog:  c,
		board:    board,
		logger:   log.With(logger, "component", "server"),
		engine:   gin.New(),
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*session.Session),
	}

	s.engine.Use(gin.Recovery(), s.logRequests, cors)
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/currencies", s.getCurrencies)
	s.engine.GET("/rates", s.getRates)
	s.engine.GET("/health", s.getHealth)

	s.engine.GET("/ws", s.handleWebSocket)
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully and
// closes every board.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		level.Info(s.logger).Log("msg", "listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	s.Close()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Close ends every websocket board.
func (s *Server) Close() {
	s.cancel()

	s.lock.Lock()
	sessions := make([]*session.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.lock.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
}

func (s *Server) logRequests(c *gin.Context) {
	begin := time.Now()

	c.Next()

	level.Debug(s.logger).Log(
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"took", time.Since(begin),
	)
}

func cors(c *gin.Context) {
	origin := c.Request.Header.Get("Origin")
	if origin == "" {
		origin = "*"
	}

	c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
	c.Writer.Header().Set("Vary", "Origin")
	c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
	c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	c.Next()
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	level.Warn(s.logger).Log("msg", "request failed", "path", c.Request.URL.Path, "status", status, "err", err)
	c.JSON(status, errorResponse{Error: err.Error()})
}

// getCurrencies lists the provider's currencies. With q it searches the
// loaded catalog by code or name instead of calling the provider.
func (s *Server) getCurrencies(c *gin.Context) {
	if query, ok := c.GetQuery("q"); ok {
		c.JSON(http.StatusOK, currenciesResponse{
			Currencies: s.catalog.Search(query),
			Fallback:   s.catalog.Fallback(),
			Timestamp:  time.Now().UTC(),
		})

		return
	}

	list, err := s.fetcher.Currencies(c.Request.Context())
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}

	currencies := make([]currency.Currency, 0, len(list))
	for _, cur := range list {
		currencies = append(currencies, catalog.Enrich(cur))
	}

	c.JSON(http.StatusOK, currenciesResponse{
		Currencies: currencies,
		Timestamp:  time.Now().UTC(),
	})
}

// getRates answers with whatever targets the provider could quote. Only a
// refresh where nothing could be quoted is an error.
func (s *Server) getRates(c *gin.Context) {
	base := defaultBase
	targets := defaultTargets

	if raw := c.Query("base"); raw != "" {
		code, err := currency.Normalize(raw)
		if err != nil {
			s.fail(c, http.StatusBadRequest, err)
			return
		}

		base = code
	}

	if raw := c.Query("targets"); raw != "" {
		codes, err := currency.ParseCodes(raw)
		if err != nil {
			s.fail(c, http.StatusBadRequest, err)
			return
		}

		targets = codes
	}

	rates, err := s.fetcher.Rates(c.Request.Context(), base, targets)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}

	if rates == nil {
		rates = currency.Rates{}
	}

	c.JSON(http.StatusOK, ratesResponse{
		Base:      base,
		Rates:     rates,
		Timestamp: time.Now().UTC(),
	})
}

func (s *Server) getHealth(c *gin.Context) {
	s.lock.Lock()
	sessions := len(s.sessions)
	s.lock.Unlock()

	c.JSON(http.StatusOK, healthResponse{
		Status:          "ok",
		Sessions:        sessions,
		Catalog:         s.catalog.Len(),
		CatalogFallback: s.catalog.Fallback(),
		Timestamp:       time.Now().UTC(),
	})
}
