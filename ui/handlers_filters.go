package ui

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"goldendash/app"
	"goldendash/domain/filterstate"
	"goldendash/internal/errors"
)

// gesture wraps a filter gesture: it parses the form, applies fn to the session's board and answers
// with the refreshed board fragment. Plain form posts are redirected back to the page.
func (s *Server) gesture(fn func(ctx context.Context, b *app.FilterBoard, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			s.renderError(w, r, errors.InvalidInput("malformed form"))
			return
		}

		board, err := s.board(w, r)
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		if err := fn(r.Context(), board, r); err != nil {
			s.renderError(w, r, err)
			return
		}

		if !isHTMX(r) {
			http.Redirect(w, r, "/examples", http.StatusSeeOther)
			return
		}
		s.renderTemplate(w, "board", http.StatusOK, board.View())
	}
}

func formKey(r *http.Request) (string, error) {
	key := strings.TrimSpace(r.FormValue("key"))
	if key == "" {
		return "", errors.InvalidInput("column key is required")
	}
	return key, nil
}

func (s *Server) handleSlider(w http.ResponseWriter, r *http.Request) {
	s.gesture(func(ctx context.Context, b *app.FilterBoard, r *http.Request) error {
		key, err := formKey(r)
		if err != nil {
			return err
		}
		handle := filterstate.Handle(r.FormValue("handle"))
		if handle != filterstate.HandleMin && handle != filterstate.HandleMax {
			return errors.InvalidInput("handle must be min or max")
		}
		value, err := strconv.Atoi(r.FormValue("value"))
		if err != nil {
			return errors.InvalidInput("slider value must be an integer")
		}
		b.UpdateSlider(ctx, key, handle, value)
		return nil
	})(w, r)
}

func (s *Server) handleToggleMode(w http.ResponseWriter, r *http.Request) {
	s.gesture(func(ctx context.Context, b *app.FilterBoard, r *http.Request) error {
		key, err := formKey(r)
		if err != nil {
			return err
		}
		b.ToggleMode(ctx, key)
		return nil
	})(w, r)
}

// handleMove moves a column to the tier named by "to"
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	s.gesture(func(ctx context.Context, b *app.FilterBoard, r *http.Request) error {
		key, err := formKey(r)
		if err != nil {
			return err
		}
		to, ok := filterstate.ParseTier(r.FormValue("to"))
		if !ok {
			return errors.InvalidInput("unknown column tier")
		}
		switch to {
		case filterstate.Hidden:
			b.MoveToHidden(ctx, key)
		case filterstate.Shown:
			b.MoveToShown(ctx, key)
		case filterstate.Featured:
			b.MoveToFeatured(ctx, key)
		}
		return nil
	})(w, r)
}

func (s *Server) handleRemoveFilter(w http.ResponseWriter, r *http.Request) {
	s.gesture(func(ctx context.Context, b *app.FilterBoard, r *http.Request) error {
		key, err := formKey(r)
		if err != nil {
			return err
		}
		b.RemoveFilter(ctx, key)
		return nil
	})(w, r)
}

func (s *Server) handleClearFilters(w http.ResponseWriter, r *http.Request) {
	s.gesture(func(ctx context.Context, b *app.FilterBoard, _ *http.Request) error {
		b.ClearAllFilters(ctx)
		return nil
	})(w, r)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.gesture(func(ctx context.Context, b *app.FilterBoard, r *http.Request) error {
		b.Search(ctx, r.FormValue("q"))
		return nil
	})(w, r)
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	s.gesture(func(_ context.Context, b *app.FilterBoard, r *http.Request) error {
		column, err := strconv.Atoi(r.FormValue("column"))
		if err != nil {
			return errors.InvalidInput("sort column must be an integer")
		}
		b.SortBy(column)
		return nil
	})(w, r)
}

// handleModal opens or closes the configuration dialog
func (s *Server) handleModal(w http.ResponseWriter, r *http.Request) {
	s.gesture(func(_ context.Context, b *app.FilterBoard, r *http.Request) error {
		if r.FormValue("open") == "true" {
			b.OpenModal()
		} else {
			b.CloseModal()
		}
		return nil
	})(w, r)
}

func (s *Server) handleToggleFilterBar(w http.ResponseWriter, r *http.Request) {
	s.gesture(func(_ context.Context, b *app.FilterBoard, _ *http.Request) error {
		b.ToggleFilterBar()
		return nil
	})(w, r)
}

func (s *Server) handleSaveConfiguration(w http.ResponseWriter, r *http.Request) {
	s.gesture(func(ctx context.Context, b *app.FilterBoard, _ *http.Request) error {
		b.SaveConfiguration(ctx)
		return nil
	})(w, r)
}

// handleResetConfiguration wipes the session's configuration once confirmed, then reloads the page
func (s *Server) handleResetConfiguration(w http.ResponseWriter, r *http.Request) {
	board, err := s.board(w, r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	// the page asks through hx-confirm and only then sends confirmed=true
	if !board.ResetConfiguration(r.Context(), r.FormValue("confirmed") == "true") {
		if isHTMX(r) {
			s.renderTemplate(w, "board", http.StatusOK, board.View())
			return
		}
		http.Redirect(w, r, "/examples", http.StatusSeeOther)
		return
	}

	if isHTMX(r) {
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/examples", http.StatusSeeOther)
}
