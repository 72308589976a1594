package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	gerrors "github.com/vango-dev/graft/internal/errors"
	"github.com/vango-dev/graft/pkg/hydrate"
	"github.com/vango-dev/graft/pkg/store"
)

// handleHydrate hydrates the request body.
func (s *Server) handleHydrate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}

	res, err := hydrate.HTML(r.Context(), s.reg, s.hydrateOptions(string(body)))
	if err != nil {
		s.logger.Error("hydration failed", "error", err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if p := r.URL.Query().Get("path"); p != "" {
		if err := s.store.Put(r.Context(), p, []byte(res.HTML)); err != nil {
			s.logger.Error("store page failed", "path", p, "error", err)
			http.Error(w, err.Error(), statusOf(err))
			return
		}
	}

	w.Header().Set(HeaderDiagnostics, strconv.Itoa(len(res.Diagnostics)))
	if accepts(r, "application/json") {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(res); err != nil {
			s.logger.Warn("write response failed", "error", err)
		}
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, res.HTML)
}

// handlePage serves a stored page, preferring the brotli variant when the
// client accepts it.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	p := "/" + chi.URLParam(r, "*")
	w.Header().Set("Vary", "Accept-Encoding")

	encoding := store.EncodingIdentity
	rc := s.openBrotli(r, p)
	var err error
	if rc != nil {
		encoding = store.EncodingBrotli
	} else {
		rc, err = s.store.Open(r.Context(), p, store.EncodingIdentity)
	}
	if err != nil {
		http.Error(w, err.Error(), statusOf(err))
		return
	}
	defer rc.Close()

	if encoding != store.EncodingIdentity {
		w.Header().Set("Content-Encoding", encoding)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Warn("write page failed", "path", p, "error", err)
	}
}

// openBrotli returns the brotli variant of p when the client accepts it and
// it exists. Any failure falls back to the identity encoding.
func (s *Server) openBrotli(r *http.Request, p string) io.ReadCloser {
	if !acceptsEncoding(r, store.EncodingBrotli) {
		return nil
	}
	rc, err := s.store.Open(r.Context(), p, store.EncodingBrotli)
	if err != nil {
		return nil
	}
	return rc
}

func statusOf(err error) int {
	switch gerrors.CodeOf(err) {
	case "E080":
		return http.StatusNotFound
	case "E081":
		return http.StatusBadGateway
	}
	var ge *gerrors.Error
	if errors.As(err, &ge) && ge.Category == gerrors.CategoryStorage {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func accepts(r *http.Request, mediaType string) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		if strings.EqualFold(mt, mediaType) {
			return true
		}
	}
	return false
}

func acceptsEncoding(r *http.Request, encoding string) bool {
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(name), encoding) {
			continue
		}
		return strings.ReplaceAll(strings.TrimSpace(params), " ", "") != "q=0"
	}
	return false
}
