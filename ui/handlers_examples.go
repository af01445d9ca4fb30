package ui

import (
	"html/template"
	"net/http"
	"strconv"
	"time"

	"goldendash/adapters/excel"
	"goldendash/app"
	"goldendash/domain/catalog"
	"goldendash/domain/filterstate"
	"goldendash/domain/table"
	"goldendash/internal/errors"

	"github.com/go-chi/chi/v5"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/google/uuid"
)

type examplesPage struct {
	Title          string
	Active         string
	Stats          app.Statistics
	Leaderboard    []catalog.Example
	NeedsAttention []catalog.Example
	Board          app.BoardView
}

type examplePage struct {
	Title       string
	Active      string
	Example     *catalog.Example
	Average     *float64
	Description template.HTML
}

// handleExamples renders the examples page with a board built from the current data and the
// session's persisted filter state
func (s *Server) handleExamples(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	board, err := s.freshBoard(w, r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	stats, err := s.deps.Examples.Statistics(ctx)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	leaders, err := s.deps.Examples.Leaderboard(ctx)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	attention, err := s.deps.Examples.NeedsAttention(ctx)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	if len(leaders) > app.DefaultTopLimit {
		leaders = leaders[:app.DefaultTopLimit]
	}

	s.renderTemplate(w, "examples.html", http.StatusOK, examplesPage{
		Title:          "Examples",
		Active:         "examples",
		Stats:          stats,
		Leaderboard:    leaders,
		NeedsAttention: attention,
		Board:          board.View(),
	})
}

func (s *Server) handleExample(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.renderError(w, r, errors.InvalidInput("example id must be numeric"))
		return
	}

	example, err := s.deps.Examples.Get(r.Context(), id)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	page := examplePage{
		Title:   example.Name,
		Active:  "examples",
		Example: example,
		Average: example.AverageMetrics(),
	}
	if example.Description != nil {
		page.Description = renderMarkdown(*example.Description)
	}
	s.renderTemplate(w, "example.html", http.StatusOK, page)
}

// handleExport downloads the session's table as it is currently filtered and sorted
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	board, err := s.board(w, r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	filename := "examples-" + time.Now().Format("2006-01-02") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	err = board.Export(func(tbl *table.Table) error {
		return excel.WriteTable(w, tbl)
	})
	if err != nil {
		s.log.Error().Err(err).Msg("export failed")
	}
}

// board returns the live board of the session, building one when none is kept
func (s *Server) board(w http.ResponseWriter, r *http.Request) (*app.FilterBoard, error) {
	id := sessionID(w, r)
	if board, ok := s.boards.get(id); ok {
		return board, nil
	}
	return s.buildBoard(r, id)
}

// freshBoard replaces the session's board with one built from current data
func (s *Server) freshBoard(w http.ResponseWriter, r *http.Request) (*app.FilterBoard, error) {
	return s.buildBoard(r, sessionID(w, r))
}

func (s *Server) buildBoard(r *http.Request, id uuid.UUID) (*app.FilterBoard, error) {
	ctx := r.Context()
	payload, err := s.deps.Examples.DashboardPayload(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare examples dataset")
	}

	store := filterstate.NewStore(s.deps.StateStorage, id, s.deps.Registry, s.log)
	board := app.NewFilterBoard(ctx, payload.Dataset, payload.Percentiles, s.deps.Registry, store, s.log)
	s.boards.put(id, board)
	return board, nil
}

func renderMarkdown(md string) template.HTML {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	doc := parser.NewWithExtensions(extensions).Parse([]byte(md))

	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank | mdhtml.SkipHTML,
	})
	return template.HTML(markdown.Render(doc, renderer))
}
