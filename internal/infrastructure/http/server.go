package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"marketdata-collector/internal/application"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"
)

const (
	defaultLimit = 90
	maxLimit     = 5000
)

// Server answers read-only questions about what the collector stored.
type Server struct {
	symbols   application.SymbolResolver
	market    application.MarketDataReader
	macro     application.MacroReader
	snapshots application.SnapshotStore
	// pipeline name -> snapshot path; pipelines without a snapshot map to "".
	snapshotPaths map[string]string
	ping          func(ctx context.Context) error
}

func NewServer(
	symbols application.SymbolResolver,
	market application.MarketDataReader,
	macro application.MacroReader,
	snapshots application.SnapshotStore,
	snapshotPaths map[string]string,
) *Server {
	return &Server{
		symbols:       symbols,
		market:        market,
		macro:         macro,
		snapshots:     snapshots,
		snapshotPaths: snapshotPaths,
	}
}

// SetReadyCheck installs the store check behind /readyz.
func (s *Server) SetReadyCheck(fn func(ctx context.Context) error) { s.ping = fn }

func (s *Server) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Readyz reports 503 while the store cannot be reached.
func (s *Server) Readyz(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		if err := s.ping(r.Context()); err != nil {
			reqLogger(r).Warn("http.not_ready", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "store not ready")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("READY"))
}

type pipelineInfo struct {
	Name     string `json:"name"`
	Snapshot bool   `json:"snapshot"`
}

func (s *Server) ListPipelines(w http.ResponseWriter, _ *http.Request) {
	out := make([]pipelineInfo, 0, len(s.snapshotPaths))
	for name, path := range s.snapshotPaths {
		out = append(out, pipelineInfo{Name: name, Snapshot: path != ""})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	var name string
	if err := bindPath("pipeline", chi.URLParam(r, "pipeline"), &name); err != nil {
		writeError(w, http.StatusBadRequest, "invalid pipeline")
		return
	}
	path, ok := s.snapshotPaths[name]
	if !ok || path == "" {
		writeError(w, http.StatusNotFound, "no snapshot for pipeline "+name)
		return
	}
	var raw json.RawMessage
	if err := s.snapshots.Read(r.Context(), path, &raw); err != nil {
		if errors.Is(err, application.ErrNotFound) {
			writeError(w, http.StatusNotFound, "snapshot not written yet")
			return
		}
		reqLogger(r).Error("http.snapshot_read_failed", zap.String("pipeline", name), zap.Error(err))
		internalError(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (s *Server) GetMarketData(w http.ResponseWriter, r *http.Request) {
	id, limit, ok := s.symbolQuery(w, r)
	if !ok {
		return
	}
	rows, err := s.market.LatestMarketData(r.Context(), id, limit)
	if err != nil {
		reqLogger(r).Error("http.market_data_failed", zap.Int64("symbol_id", id), zap.Error(err))
		internalError(w)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) GetMacro(w http.ResponseWriter, r *http.Request) {
	id, limit, ok := s.symbolQuery(w, r)
	if !ok {
		return
	}
	rows, err := s.macro.LatestMacro(r.Context(), id, limit)
	if err != nil {
		reqLogger(r).Error("http.macro_failed", zap.Int64("symbol_id", id), zap.Error(err))
		internalError(w)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// symbolQuery binds {symbol} and ?limit and resolves the symbol. It writes
// the error response itself and reports ok=false when the request is done.
func (s *Server) symbolQuery(w http.ResponseWriter, r *http.Request) (int64, int, bool) {
	var symbol string
	if err := bindPath("symbol", chi.URLParam(r, "symbol"), &symbol); err != nil {
		writeError(w, http.StatusBadRequest, "invalid symbol")
		return 0, 0, false
	}
	limit := defaultLimit
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return 0, 0, false
	}
	if limit < 1 || limit > maxLimit {
		writeError(w, http.StatusBadRequest, "limit out of range")
		return 0, 0, false
	}
	id, ok := s.symbols.Resolve(symbol)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown symbol "+symbol)
		return 0, 0, false
	}
	return id, limit, true
}

// bindPath decodes a percent-encoded path segment, so USD%2FEUR reaches
// the handler as USD/EUR.
func bindPath(name, value string, dest *string) error {
	return runtime.BindStyledParameterWithOptions("simple", name, value, dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false})
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Code: status, Message: msg})
}

func internalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
