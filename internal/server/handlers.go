package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	uierrors "github.com/conneroisu/uiforge/internal/errors"
	"github.com/conneroisu/uiforge/internal/orchestrator"
	"github.com/conneroisu/uiforge/internal/registry"
	"github.com/conneroisu/uiforge/internal/renderer"
	"github.com/conneroisu/uiforge/internal/version"
	"github.com/conneroisu/uiforge/internal/websocket"
)

const maxBodyBytes = 64 << 10

// StateResponse is the body of GET /api/state.
type StateResponse struct {
	orchestrator.State
	Mode   renderer.Mode `json:"viewMode"`
	Copied bool          `json:"copied"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeBody(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && err != io.EOF {
		return err
	}

	return nil
}

func (s *Server) state() StateResponse {
	return StateResponse{
		State:  s.orch.Snapshot(),
		Mode:   s.renderer.Mode(),
		Copied: s.renderer.Copied(),
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"version":   version.GetVersion(),
		"clients":   s.hub.ClientCount(),
		"timestamp": time.Now().UTC(),
	})
}

type submitRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result := s.orch.Submit(r.Context(), req.Prompt)
	switch result.Status {
	case orchestrator.StatusRejectedEmpty:
		writeJSON(w, http.StatusBadRequest, result)
	case orchestrator.StatusRejectedBusy:
		writeJSON(w, http.StatusConflict, result)
	case orchestrator.StatusFailed:
		writeJSON(w, http.StatusBadGateway, result)
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

type rollbackRequest struct {
	Index *int `json:"index"`
}

func (s *Server) handleRollback(w http.ResponseWriter, r *http.Request) {
	var req rollbackRequest
	if err := decodeBody(r, &req); err != nil || req.Index == nil {
		writeError(w, http.StatusBadRequest, "body must be {\"index\": <n>}")
		return
	}

	if err := s.orch.Rollback(r.Context(), *req.Index); err != nil {
		if uierrors.IsIndexOutOfRange(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.errs.Handle(r.Context(), err, "Rollback failed", "index", *req.Index)
		writeError(w, http.StatusInternalServerError, "rollback failed")
		return
	}

	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.orch.ClearAll(r.Context())
	writeJSON(w, http.StatusOK, s.state())
}

type viewRequest struct {
	Mode string `json:"mode"`
}

// handleView sets the view mode, or toggles it when no mode is given.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Mode == "" {
		s.renderer.Toggle()
	} else {
		mode, err := renderer.ParseMode(req.Mode)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		_ = s.renderer.SetMode(mode)
	}

	s.hub.Broadcast(websocket.TypeViewChanged, map[string]renderer.Mode{"viewMode": s.renderer.Mode()})
	writeJSON(w, http.StatusOK, s.state())
}

// handleCopy records the current code as copied and returns it; the browser
// owns the real clipboard.
func (s *Server) handleCopy(w http.ResponseWriter, r *http.Request) {
	code := s.orch.Snapshot().CurrentCode()
	if err := s.renderer.Copy(code); err != nil {
		s.errs.Handle(r.Context(), err, "Copy failed")
		writeError(w, http.StatusInternalServerError, "copy failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"code": code, "copied": true})
}

// PropInfo describes a component prop for GET /api/components.
type PropInfo struct {
	Name    string      `json:"name"`
	Type    string      `json:"type"`
	Default interface{} `json:"default,omitempty"`
	Values  []string    `json:"values,omitempty"`
	Min     *int        `json:"min,omitempty"`
	Max     *int        `json:"max,omitempty"`
}

// ComponentInfo describes a catalog entry.
type ComponentInfo struct {
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	AcceptsChildren bool       `json:"acceptsChildren"`
	Props           []PropInfo `json:"props"`
}

// DescribeComponents converts registry descriptors for JSON output.
func DescribeComponents(reg *registry.ComponentRegistry) []ComponentInfo {
	all := reg.GetAll()
	out := make([]ComponentInfo, 0, len(all))
	for _, d := range all {
		info := ComponentInfo{
			Name:            d.Name,
			Description:     d.Description,
			AcceptsChildren: d.AcceptsChildren,
			Props:           make([]PropInfo, 0, len(d.Props)),
		}
		for _, p := range d.Props {
			pi := PropInfo{Name: p.Name, Type: p.Type.String(), Default: p.Default, Values: p.Values}
			if p.Type == registry.PropInt {
				lo, hi := p.Min, p.Max
				pi.Min, pi.Max = &lo, &hi
			}
			info.Props = append(info.Props, pi)
		}
		out = append(out, info)
	}

	return out
}

func (s *Server) handleComponents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, DescribeComponents(s.registry))
}

// handleRender returns the current outcome as JSON, or as Markdown with
// ?format=markdown.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	code := s.orch.Snapshot().CurrentCode()

	if r.URL.Query().Get("format") == "markdown" {
		out := s.renderer.Preview(r.Context(), code)
		if out.Diagnostic != nil {
			writeJSON(w, http.StatusUnprocessableEntity, out)
			return
		}
		md, err := renderer.ToMarkdown(out.HTML)
		if err != nil {
			s.errs.Handle(r.Context(), err, "Markdown conversion failed")
			writeError(w, http.StatusInternalServerError, "markdown conversion failed")
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = io.WriteString(w, md)
		return
	}

	writeJSON(w, http.StatusOK, s.renderer.Render(r.Context(), code))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	out := s.renderer.Render(r.Context(), s.orch.Snapshot().CurrentCode())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, renderer.Page("Preview", out.Body()))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, WorkspacePage(s.state()))
}
