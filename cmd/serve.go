package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/dealscout/internal/model"
	"github.com/sells-group/dealscout/internal/orchestrator"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lead API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(env),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(env *pipeline) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/leads", func(w http.ResponseWriter, req *http.Request) {
			c, err := criteriaFromQuery(req)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			serveLeads(w, req, env, c)
		})
		r.Post("/leads", func(w http.ResponseWriter, req *http.Request) {
			var c model.LeadCriteria
			if err := json.NewDecoder(req.Body).Decode(&c); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			serveLeads(w, req, env, c)
		})
		r.Get("/market", func(w http.ResponseWriter, req *http.Request) {
			q := req.URL.Query()
			location := q.Get("location")
			if location == "" {
				writeError(w, http.StatusBadRequest, "location is required")
				return
			}
			a, err := env.Market.AnalyzeMarket(req.Context(), location, q.Get("industry"))
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, a)
		})
	})

	return r
}

func serveLeads(w http.ResponseWriter, req *http.Request, env *pipeline, c model.LeadCriteria) {
	res, err := env.Orchestrator().Run(req.Context(), c)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, orchestrator.ErrInvalidCriteria):
			status = http.StatusBadRequest
		case orchestrator.IsDataSourceError(err):
			status = http.StatusBadGateway
		}
		zap.L().Error("lead request failed",
			zap.String("request_id", middleware.GetReqID(req.Context())),
			zap.Int("status", status),
			zap.Error(err),
		)
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func criteriaFromQuery(req *http.Request) (model.LeadCriteria, error) {
	q := req.URL.Query()
	c := model.LeadCriteria{
		Industry: q.Get("industry"),
		Location: q.Get("location"),
	}

	intParam := func(name string) (int64, error) {
		v := q.Get(name)
		if v == "" {
			return 0, nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, eris.Errorf("%s must be an integer", name)
		}
		return n, nil
	}
	rangeParam := func(prefix string) (*model.Range, error) {
		lo, err := intParam("min_" + prefix)
		if err != nil {
			return nil, err
		}
		hi, err := intParam("max_" + prefix)
		if err != nil {
			return nil, err
		}
		if q.Get("min_"+prefix) == "" && q.Get("max_"+prefix) == "" {
			return nil, nil
		}
		return &model.Range{Min: lo, Max: hi}, nil
	}

	var err error
	if c.Revenue, err = rangeParam("revenue"); err != nil {
		return c, err
	}
	if c.Employees, err = rangeParam("employees"); err != nil {
		return c, err
	}
	limit, err := intParam("limit")
	if err != nil {
		return c, err
	}
	c.Limit = int(limit)
	if v := q.Get("require_contact"); v != "" {
		if c.RequireContact, err = strconv.ParseBool(v); err != nil {
			return c, eris.New("require_contact must be a boolean")
		}
	}
	return c, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
