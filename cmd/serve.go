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

	"github.com/ocean-chem/longhurst-cli/internal/longhurst"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the classification HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, reg, err := loadBoundaryStore(cfg.Boundary)
		if err != nil {
			return err
		}
		classifier := longhurst.NewClassifier(st, reg)

		r := newRouter(classifier, reg, st)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go drainOnSignal(ctx, srv)

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.String("registry", reg.Name()),
			zap.Int("provinces", st.Len()),
		)
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

const shutdownTimeout = 15 * time.Second

// drainOnSignal waits for ctx to be canceled and then shuts the server
// down. Shutdown gets its own timeout context; the signal context is
// already canceled by the time it fires, which would skip the drain.
func drainOnSignal(ctx context.Context, srv *http.Server) {
	<-ctx.Done()
	zap.L().Info("shutting down server")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		zap.L().Warn("server shutdown", zap.Error(err))
	}
}

// newRouter builds the API routes. Split out from the command so the
// handlers can be tested with httptest against an in-memory store.
func newRouter(classifier *longhurst.Classifier, reg *longhurst.Registry, st *longhurst.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"provinces": st.Len(),
			"registry":  reg.Name(),
		})
	})

	r.Get("/v1/classify", func(w http.ResponseWriter, req *http.Request) {
		lon, err := strconv.ParseFloat(req.URL.Query().Get("lon"), 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lon must be a number"})
			return
		}
		lat, err := strconv.ParseFloat(req.URL.Query().Get("lat"), 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lat must be a number"})
			return
		}

		res, err := classifier.Classify(lon, lat)
		if err != nil {
			// A boundary feature whose code is missing from the registry.
			zap.L().Error("classify failed",
				zap.Float64("lon", lon),
				zap.Float64("lat", lat),
				zap.Error(err),
			)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "classification failed"})
			return
		}

		if req.URL.Query().Get("verbose") != "true" {
			res.Candidates = nil
		}
		writeJSON(w, http.StatusOK, res)
	})

	r.Get("/v1/provinces", func(w http.ResponseWriter, _ *http.Request) {
		type entry struct {
			Num  int    `json:"num"`
			Code string `json:"code"`
			Name string `json:"name,omitempty"`
		}
		entries := make([]entry, 0, reg.Len())
		for _, num := range reg.Nums() {
			code, err := reg.CodeForNum(num)
			if err != nil {
				continue
			}
			name, _ := longhurst.ProvinceName(code)
			entries = append(entries, entry{Num: num, Code: code, Name: name})
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"registry":  reg.Name(),
			"provinces": entries,
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
