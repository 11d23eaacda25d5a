// Package service exposes the expression engine over HTTP.
package service

import (
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/calclab/infix/pkg/history"
	"github.com/calclab/infix/pkg/infix"
)

const defaultHistorySize = 20

// Service serves expression evaluation and evaluation history.
type Service struct {
	store history.Store
	log   *zap.SugaredLogger
}

func New(store history.Store) *Service {
	return &Service{
		store: store,
		log:   zap.S().Named("service"),
	}
}

// Handler returns the routes served by the service.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/evaluate", s.handleEvaluate)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/status", handleStatus)
	return mux
}

type evaluateRequest struct {
	Expression string `json:"expression"`
	Notation   string `json:"notation,omitempty"`
}

type evaluateResponse struct {
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
	Kind   string      `json:"kind,omitempty"`
}

func (s *Service) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, evaluateResponse{Error: "malformed request body"})
		return
	}

	notation, err := infix.ParseNotation(req.Notation)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, evaluateResponse{Error: err.Error()})
		return
	}

	if strings.TrimSpace(req.Expression) == "" {
		s.writeJSON(w, http.StatusBadRequest, evaluateResponse{Error: "empty expression"})
		return
	}

	// A fresh engine per request keeps the handler safe for concurrent use.
	result, evalErr := infix.New(notation).Evaluate(req.Expression)

	entry := history.Entry{
		Expression: req.Expression,
		Notation:   notation.String(),
		CreatedAt:  time.Now().UTC(),
	}
	status := "ok"
	if evalErr != nil {
		status = "error"
		entry.Err = evalErr.Error()
	} else {
		entry.Result = result.String()
	}

	if err := s.store.Record(entry); err != nil {
		s.log.Warnw("Failed to record evaluation", "error", err)
	}

	recordEvaluation(r.Context(), notation.String(), status)

	if evalErr != nil {
		s.writeJSON(w, http.StatusBadRequest, evaluateResponse{
			Error: evalErr.Error(),
			Kind:  infix.ErrorKind(evalErr),
		})
		return
	}

	resp := evaluateResponse{Result: result.String()}
	if n, ok := result.(infix.Number); ok {
		resp.Result = n.Float()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	n := defaultHistorySize
	if param := r.URL.Query().Get("n"); param != "" {
		v, err := strconv.Atoi(param)
		if err != nil || v < 1 {
			http.Error(w, "invalid history size", http.StatusBadRequest)
			return
		}
		n = v
	}

	entries, err := s.store.Recent(n)
	if err != nil {
		s.log.Errorw("Failed to read history", "error", err)
		http.Error(w, "failed to read history", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}

	s.writeJSON(w, http.StatusOK, entries)
}

func handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		io.Copy(ioutil.Discard, r.Body)
		r.Body.Close()
	}
	io.WriteString(w, "OK")
}

func (s *Service) writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Warnw("Failed to write response", "error", err)
	}
}
