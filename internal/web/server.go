// Package web - одностраничная web форма отчёта (режим -serve).
//
// GET / показывает форму, POST /run запускает агента и рендерит ту же
// страницу с результатом. Одновременно идёт не больше одного запуска:
// все запуски пишут в один и тот же файл отчёта.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/ilkoid/poncho-trends/pkg/agent"
	"github.com/ilkoid/poncho-trends/pkg/journal"
	"github.com/ilkoid/poncho-trends/pkg/utils"
)

//go:embed templates/index.html
var templateFiles embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFiles, "templates/index.html"))

// historyLimit - сколько последних запусков показывать под формой.
const historyLimit = 10

// Runner - то, что форме нужно от агента (agent.Client).
type Runner interface {
	Run(ctx context.Context, req agent.Request) (string, error)
	History(ctx context.Context, limit int) ([]journal.Run, error)
}

// pageData - данные шаблона страницы.
type pageData struct {
	Topic     string
	Recipient string
	Warnings  []string
	Info      []string
	Error     string
	Done      bool
	Output    string
	History   []journal.Run
}

// Server - HTTP обработчики формы.
type Server struct {
	runner Runner
	busy   sync.Mutex
}

// NewServer создаёт сервер формы.
func NewServer(runner Runner) *Server {
	return &Server{runner: runner}
}

// Routes возвращает chi роутер.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/", s.form)
	r.Post("/run", s.run)
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func (s *Server) form(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Recipient: "your.test.email@example.com",
		History:   s.history(r.Context()),
	}
	s.render(w, http.StatusOK, data)
}

func (s *Server) run(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	req := agent.Request{
		Topic:     strings.TrimSpace(r.PostFormValue("topic")),
		Recipient: strings.TrimSpace(r.PostFormValue("recipient")),
	}
	data := pageData{Topic: req.Topic, Recipient: req.Recipient}

	if err := req.Validate(); err != nil {
		data.Warnings = []string{err.Error()}
		data.History = s.history(r.Context())
		s.render(w, http.StatusUnprocessableEntity, data)
		return
	}

	if !s.busy.TryLock() {
		data.Warnings = []string{"A report is already being generated, please try again in a moment."}
		s.render(w, http.StatusConflict, data)
		return
	}
	defer s.busy.Unlock()

	data.Info = []string{
		fmt.Sprintf("Initiating report generation for topic: %s", req.Topic),
		fmt.Sprintf("Report will be emailed to: %s", req.Recipient),
	}
	utils.Info("Web run started", "topic", req.Topic, "recipient", req.Recipient, "remote", r.RemoteAddr)

	start := time.Now()
	out, err := s.runner.Run(r.Context(), req)
	if err != nil {
		utils.Error("Web run failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		data.Error = err.Error()
	} else {
		data.Done = true
		data.Output = out
	}
	data.History = s.history(r.Context())

	// Ошибка агента - это результат запуска, страница всё равно 200
	s.render(w, http.StatusOK, data)
}

func (s *Server) history(ctx context.Context) []journal.Run {
	runs, err := s.runner.History(ctx, historyLimit)
	if err != nil {
		if !errors.Is(err, agent.ErrJournalDisabled) {
			utils.Warn("History load failed", "error", err)
		}
		return nil
	}
	return runs
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		utils.Error("web: template error", "error", err)
	}
}

// Serve слушает addr до отмены ctx, затем корректно останавливает сервер.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		utils.Info("Web form listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		utils.Info("Web form shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
