package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/founder-resolve/internal/config"
	"github.com/sells-group/founder-resolve/internal/founder"
	"github.com/sells-group/founder-resolve/internal/importer"
	"github.com/sells-group/founder-resolve/internal/resolve"
)

// maxBodyBytes caps request bodies for the batch endpoints.
const maxBodyBytes = 10 << 20

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the founder import API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort > 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		env, err := openStores(ctx, cfg, true)
		if err != nil {
			return err
		}
		defer env.Close()
		if err := env.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate stores")
		}

		im := importer.New(env.Founders, env.Companies, importerOptions(cfg))

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           buildRouter(im, cfg.Server),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

type batchRequest struct {
	Records   []founder.Record         `json:"records"`
	Decisions map[int]resolve.Decision `json:"decisions,omitempty"`
}

// buildRouter wires the API routes behind CORS and a shared rate limiter.
func buildRouter(im *importer.Importer, sc config.ServerConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: sc.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/founders", func(r chi.Router) {
		r.Use(rateLimit(rate.NewLimiter(rate.Limit(sc.RateLimit), sc.RateBurst)))

		r.Post("/preview", func(w http.ResponseWriter, req *http.Request) {
			body, ok := decodeBatch(w, req)
			if !ok {
				return
			}
			writeJSON(w, http.StatusOK, im.Preview(req.Context(), body.Records))
		})

		r.Post("/import", func(w http.ResponseWriter, req *http.Request) {
			body, ok := decodeBatch(w, req)
			if !ok {
				return
			}
			writeJSON(w, http.StatusOK, im.Import(req.Context(), body.Records, body.Decisions))
		})

		r.Get("/search", func(w http.ResponseWriter, req *http.Request) {
			name := req.URL.Query().Get("name")
			if name == "" {
				writeError(w, http.StatusBadRequest, "name is required")
				return
			}
			threshold := 0
			if raw := req.URL.Query().Get("threshold"); raw != "" {
				n, err := strconv.Atoi(raw)
				if err != nil || n < 1 || n > 100 {
					writeError(w, http.StatusBadRequest, "threshold must be an integer between 1 and 100")
					return
				}
				threshold = n
			}
			results, err := im.Matcher().SearchByName(req.Context(), name, threshold)
			if err != nil {
				zap.L().Error("search failed", zap.String("name", name), zap.Error(err))
				writeError(w, http.StatusInternalServerError, "search failed")
				return
			}
			if results == nil {
				results = []resolve.ScoredFounder{}
			}
			writeJSON(w, http.StatusOK, results)
		})
	})

	return r
}

func decodeBatch(w http.ResponseWriter, req *http.Request) (batchRequest, bool) {
	var body batchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return body, false
	}
	if len(body.Records) == 0 {
		writeError(w, http.StatusBadRequest, "records are required")
		return body, false
	}
	return body, true
}

// rateLimit rejects requests once the shared token bucket is empty.
func rateLimit(l *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
