// Package api serves fingerprinting and stored fingerprint lookups over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"Go2NetPrint/internal/codec"
	"Go2NetPrint/internal/engine/manager"
	"Go2NetPrint/internal/fingerprint"
	"Go2NetPrint/internal/model"
	"Go2NetPrint/internal/query"
	"Go2NetPrint/internal/trace"

	"github.com/gorilla/mux"
)

// maxBodyBytes bounds a fingerprint request body.
const maxBodyBytes = 32 << 20

// FingerprintRequest is the body of POST /api/v1/fingerprint. ClientIP falls
// back to the configured client address.
type FingerprintRequest struct {
	Name     string         `json:"name"`
	ClientIP string         `json:"client_ip,omitempty"`
	Records  []trace.Record `json:"records"`
}

// SummaryRow is one row of a stored Summary Table.
type SummaryRow struct {
	Marker string `json:"marker"`
	Value  string `json:"value"`
}

// SummaryResponse is the body of GET /api/v1/fingerprints/{name}/summary.
type SummaryResponse struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	CreatedAt time.Time    `json:"created_at"`
	Table     []SummaryRow `json:"table"`
}

// APIHandler holds the dependencies for API handlers. querier may be nil when
// no database writer is configured.
type APIHandler struct {
	manager  *manager.Manager
	querier  query.Querier
	clientIP net.IP
}

// NewAPIHandler creates the handler set.
func NewAPIHandler(m *manager.Manager, q query.Querier, clientIP net.IP) *APIHandler {
	return &APIHandler{manager: m, querier: q, clientIP: clientIP}
}

// NewRouter registers every route of the API.
func NewRouter(h *APIHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.healthHandler).Methods("GET")
	r.HandleFunc("/api/v1/fingerprint", h.fingerprintHandler).Methods("POST")
	r.HandleFunc("/api/v1/fingerprints", h.namesHandler).Methods("GET")
	r.HandleFunc("/api/v1/fingerprints/{name}/summary", h.summaryHandler).Methods("GET")
	return r
}

func (h *APIHandler) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "ok\n")
}

// fingerprintHandler fingerprints a trace posted as records.
func (h *APIHandler) fingerprintHandler(w http.ResponseWriter, r *http.Request) {
	var req FingerprintRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read request body: %v", err), http.StatusBadRequest)
		return
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, fmt.Sprintf("failed to decode request: %v", err), http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if err := model.ValidateName(req.Name); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	client := h.clientIP
	if req.ClientIP != "" {
		if client = net.ParseIP(req.ClientIP); client == nil {
			http.Error(w, fmt.Sprintf("invalid client_ip %q", req.ClientIP), http.StatusBadRequest)
			return
		}
	}

	obs, err := trace.FromRecords(req.Records, client)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fp, err := h.manager.Process(req.Name, obs)
	if fp == nil {
		status := http.StatusInternalServerError
		if errors.Is(err, fingerprint.ErrDivisionByZero) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, err.Error(), status)
		return
	}
	if err != nil {
		log.Printf("Fingerprint '%s' computed but not fully stored: %v", req.Name, err)
	}

	jsonBytes, err := codec.MarshalJSON(fp)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to marshal response: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(jsonBytes)
}

func (h *APIHandler) namesHandler(w http.ResponseWriter, r *http.Request) {
	if h.querier == nil {
		http.Error(w, "no fingerprint store configured", http.StatusServiceUnavailable)
		return
	}
	names, err := h.querier.Names(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to list fingerprints: %v", err), http.StatusInternalServerError)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, names)
}

func (h *APIHandler) summaryHandler(w http.ResponseWriter, r *http.Request) {
	if h.querier == nil {
		http.Error(w, "no fingerprint store configured", http.StatusServiceUnavailable)
		return
	}
	name := mux.Vars(r)["name"]
	summary, err := h.querier.Summary(r.Context(), name)
	if errors.Is(err, query.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to query summary: %v", err), http.StatusInternalServerError)
		return
	}

	resp := SummaryResponse{ID: summary.ID, Name: summary.Name, CreatedAt: summary.CreatedAt}
	for _, row := range summary.Rows {
		resp.Table = append(resp.Table, SummaryRow{Marker: row.Kind.String(), Value: row.Value})
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to marshal response: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(jsonBytes)
}
