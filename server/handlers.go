package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/justapithecus/filebridge/contract"
	"github.com/justapithecus/filebridge/demo"
	"github.com/justapithecus/filebridge/pipeline"
)

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	endpoints := s.p.Registry().Endpoints()
	upload := make([]string, 0, len(endpoints))
	download := make([]string, 0, len(endpoints))
	for _, e := range endpoints {
		upload = append(upload, "/api/v1/upload/"+e)
		download = append(download, "/api/v1/download/"+e)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service":     "filebridge",
		"version":     s.version,
		"description": "File transfer between System A and System B with predefined contracts",
		"configuration": map[string]any{
			"system_a_path": s.p.Source().Root(),
			"system_b_path": s.p.Target().Root(),
			"date_format":   "DDMMYY",
		},
		"available_endpoints": map[string]any{
			"upload":    upload,
			"download":  download,
			"contracts": "/api/v1/contracts",
			"health":    "/health",
			"status":    "/api/v1/system/status",
			"metrics":   "/metrics",
			"demo":      "/api/v1/demo/setup",
		},
		"supported_formats": []contract.Format{contract.FormatCSV, contract.FormatExcel, contract.FormatText, contract.FormatPDF},
		"date_pattern":      "Files should follow pattern with today's date (DDMMYY)",
		"example_today":     s.p.Today(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.p.Health(r.Context()))
}

func (s *Server) handleContracts(w http.ResponseWriter, _ *http.Request) {
	all := s.p.Contracts()
	byEndpoint := make(map[string]contract.Contract, len(all))
	for _, c := range all {
		byEndpoint[c.Endpoint] = c
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"contracts":       byEndpoint,
		"total_contracts": len(all),
		"today_date":      s.p.Today(),
		"usage": map[string]string{
			"upload":   "POST /api/v1/upload/{endpoint} - Process file from System A",
			"download": "GET /api/v1/download/{endpoint} - Download processed file to System B",
		},
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	rep, err := s.p.Process(r.Context(), chi.URLParam(r, "endpoint"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	ret, err := s.p.Retrieve(r.Context(), chi.URLParam(r, "endpoint"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ret)
}

func (s *Server) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	f, err := s.p.Open(r.Context(), chi.URLParam(r, "endpoint"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	ct := mime.TypeByExtension(path.Ext(f.Name))
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": f.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(f.Data)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.p.Status(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid limit", Detail: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	endpoint := chi.URLParam(r, "endpoint")
	recs, err := s.p.History(r.Context(), endpoint, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"endpoint": endpoint,
		"count":    len(recs),
		"records":  recs,
	})
}

func (s *Server) handleDemoSetup(w http.ResponseWriter, r *http.Request) {
	res, err := demo.Seed(r.Context(), s.p.Source(), s.p.Registry(), s.p.Today())
	if err != nil {
		s.writeError(w, &pipeline.Error{Kind: pipeline.ErrIO, Op: "demo", Err: err})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type errorBody struct {
	Error           string   `json:"error"`
	Detail          string   `json:"detail,omitempty"`
	Available       []string `json:"available,omitempty"`
	ExpectedPattern string   `json:"expected_pattern,omitempty"`
	Suggestion      string   `json:"suggestion,omitempty"`
}

// writeError maps pipeline error kinds to status codes: unknown endpoint
// 400, missing input or artifact 404, everything else 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var pe *pipeline.Error
	errors.As(err, &pe)

	body := errorBody{Error: err.Error(), Detail: pipeline.Detail(err)}
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, pipeline.ErrUnknownEndpoint):
		status = http.StatusBadRequest
		if pe != nil {
			body.Error = "Unknown endpoint: " + pe.Endpoint
			body.Available = pe.Available
		}
	case errors.Is(err, pipeline.ErrInputNotFound):
		status = http.StatusNotFound
		if pe != nil {
			body.Error = "Input file not found for today: " + pe.File
			body.ExpectedPattern = pe.File
		}
	case errors.Is(err, pipeline.ErrArtifactNotFound):
		status = http.StatusNotFound
		if pe != nil {
			body.Error = "Processed file not found: " + pe.File
			body.ExpectedPattern = pe.File
			body.Suggestion = "Run POST /api/v1/upload/" + pe.Endpoint + " first"
		}
	default:
		s.logger.Error("request failed", map[string]any{"kind": pipeline.KindName(err), "error": err.Error()})
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
