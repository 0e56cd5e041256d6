package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"tradeterm/internal/execution"
	"tradeterm/internal/logger"
	"tradeterm/internal/model"
	"tradeterm/internal/voice"
)

const maxAudioBytes = 10 << 20

// allowedAudioExts is the upload allow-list for the voice endpoint.
var allowedAudioExts = map[string]bool{
	".webm": true,
	".wav":  true,
	".mp3":  true,
	".mpeg": true,
	".ogg":  true,
	".flac": true,
	".m4a":  true,
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Text  string `json:"text,omitempty"` // voice transcript, when one exists
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, body errorBody) {
	writeJSON(w, status, body)
}

// writePipelineError maps a pipeline failure to an HTTP status and the
// JSON error envelope.
func (s *Server) writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	body := errorBody{Error: err.Error()}
	status := http.StatusInternalServerError

	var pe *execution.PipelineError
	if errors.As(err, &pe) {
		body.Kind = string(pe.Kind)
		switch pe.Kind {
		case execution.KindAuth:
			status = http.StatusUnauthorized
		case execution.KindValidation, execution.KindParse:
			status = http.StatusBadRequest
		case execution.KindExchangeRule:
			status = http.StatusUnprocessableEntity
		case execution.KindBroker:
			status = http.StatusBadGateway
		}
	}

	s.log.Warn("request failed",
		"request_id", logger.RequestID(r.Context()), "path", r.URL.Path,
		"status", status, "error", err)
	writeError(w, status, body)
}

// clientID identifies the trading account for the request. Missing IDs
// fail fast; the pipeline would only discover it at the credential stage.
func clientID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Client-ID"))
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	SetCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errorBody{Error: "POST required"})
		return
	}

	cid := clientID(r)
	if cid == "" {
		writeError(w, http.StatusUnauthorized, errorBody{Error: "X-Client-ID header required"})
		return
	}

	var req model.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}

	res, err := s.pipeline.Place(r.Context(), cid, model.SourceAPI, req)
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// scalperRequest is the quick-order form: symbol, side, quantity, product.
// Everything else is fixed to a MARKET order in the NORMAL variety.
type scalperRequest struct {
	Symbol      string `json:"symbol"`
	Exchange    string `json:"exchange"`
	Side        string `json:"side"`
	ProductType string `json:"producttype"`
	Quantity    string `json:"quantity"`
}

func (s *Server) handleScalperOrder(w http.ResponseWriter, r *http.Request) {
	SetCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errorBody{Error: "POST required"})
		return
	}

	cid := clientID(r)
	if cid == "" {
		writeError(w, http.StatusUnauthorized, errorBody{Error: "X-Client-ID header required"})
		return
	}

	var sr scalperRequest
	if err := json.NewDecoder(r.Body).Decode(&sr); err != nil {
		writeError(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}

	req := model.OrderRequest{
		Symbol:      sr.Symbol,
		Exchange:    sr.Exchange,
		Side:        sr.Side,
		OrderType:   model.OrderTypeMarket,
		ProductType: sr.ProductType,
		Variety:     model.VarietyNormal,
		Quantity:    sr.Quantity,
		Price:       "0",
	}

	res, err := s.pipeline.Place(r.Context(), cid, model.SourceScalper, req)
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleVoiceOrder(w http.ResponseWriter, r *http.Request) {
	SetCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errorBody{Error: "POST required"})
		return
	}

	cid := clientID(r)
	if cid == "" {
		writeError(w, http.StatusUnauthorized, errorBody{Error: "X-Client-ID header required"})
		return
	}

	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		writeError(w, http.StatusBadRequest, errorBody{Error: "multipart form with a file field required"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, errorBody{Error: "audio file missing"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedAudioExts[ext] {
		writeError(w, http.StatusUnsupportedMediaType,
			errorBody{Error: "unsupported audio format " + ext})
		return
	}

	audio, err := io.ReadAll(io.LimitReader(file, maxAudioBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, errorBody{Error: "could not read audio file"})
		return
	}

	if s.metrics != nil {
		s.metrics.VoiceTranscriptions.Inc()
	}

	res, err := s.voice.ProcessOrder(r.Context(), cid, audio, header.Filename, s.settings)
	if err != nil {
		switch {
		case errors.Is(err, voice.ErrTranscription):
			writeError(w, http.StatusBadGateway, errorBody{Error: err.Error()})
		case errors.Is(err, voice.ErrParse):
			if s.metrics != nil {
				s.metrics.VoiceParseFailures.Inc()
			}
			body := errorBody{Error: err.Error(), Kind: string(execution.KindParse)}
			if res != nil {
				body.Text = res.Transcript
			}
			writeError(w, http.StatusUnprocessableEntity, body)
		default:
			s.writePipelineError(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleOrderLogs(w http.ResponseWriter, r *http.Request) {
	SetCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, errorBody{Error: "GET required"})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			writeError(w, http.StatusBadRequest, errorBody{Error: "limit must be 1-500"})
			return
		}
		limit = n
	}

	entries, err := s.journal.Recent(r.Context(), clientID(r), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errorBody{Error: "order log read failed"})
		return
	}
	if entries == nil {
		entries = []model.OrderLogEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": entries})
}
