package ui

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"goldendash/domain/quality"
	"goldendash/internal/errors"
)

func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"percent": func(v float64) string {
			return fmt.Sprintf("%.0f%%", v*100)
		},
		"num": func(v any, precision int) string {
			switch n := deref(v).(type) {
			case float64:
				return strconv.FormatFloat(n, 'f', precision, 64)
			case int:
				return strconv.Itoa(n)
			}
			return "-"
		},
		"formatTime": func(t any) string {
			switch v := t.(type) {
			case time.Time:
				return v.Format("Jan 2, 2006 15:04")
			case *time.Time:
				if v == nil {
					return "never"
				}
				return v.Format("Jan 2, 2006 15:04")
			default:
				return "-"
			}
		},
		"statusColor": quality.StatusColor,
		"title": func(v any) string {
			text, _ := deref(v).(string)
			text = strings.ReplaceAll(text, "_", " ")
			if text == "" {
				return text
			}
			return strings.ToUpper(text[:1]) + text[1:]
		},
	}

	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, errors.WithCode(errors.CodeInternalError, errors.Wrap(err, "failed to parse templates"))
	}
	return templates, nil
}

// deref unwraps the optional fields of the domain types; nil pointers become nil
func deref(v any) any {
	switch t := v.(type) {
	case *float64:
		if t != nil {
			return *t
		}
	case *int:
		if t != nil {
			return *t
		}
	case *string:
		if t != nil {
			return *t
		}
	default:
		return v
	}
	return nil
}

// renderTemplate executes a template into a buffer first so a failing template never leaves a
// half-written page
func (s *Server) renderTemplate(w http.ResponseWriter, name string, status int, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.log.Error().Err(err).Str("template", name).Msg("template error")
		http.Error(w, "Template rendering failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		s.log.Warn().Err(err).Str("template", name).Msg("error writing template response")
	}
}

// renderError maps an application error onto an HTTP status and renders the error page
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	message := http.StatusText(status)
	var appErr *errors.AppError
	if errors.As(err, &appErr) && status < http.StatusInternalServerError {
		message = appErr.Message
	}
	if isHTMX(r) {
		http.Error(w, message, status)
		return
	}
	s.renderTemplate(w, "error.html", status, map[string]any{
		"Title":   http.StatusText(status),
		"Active":  "",
		"Status":  status,
		"Message": message,
	})
}

func statusFor(err error) int {
	return errors.GetCode(err).HTTPStatus()
}
