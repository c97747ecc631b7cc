package cmd

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tsawler/go-clhost/bindings"
	"github.com/tsawler/go-clhost/marshal"
	"github.com/tsawler/go-clhost/script"
	"github.com/tsawler/go-clhost/transcript"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve metrics and a call endpoint over HTTP",
	Long: `Serves one driver session over HTTP:

    GET  /metrics      Prometheus metrics
    GET  /platforms    platforms and devices as JSON
    POST /call/{op}    body {"args": [...], "as": "name"}; arguments use the
                       script value forms, so "$name" refers to an earlier
                       result stored with "as"
    GET  /health`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer func() {
			if cerr := s.close(); err == nil {
				err = cerr
			}
		}()

		srv := &http.Server{
			Addr:         viper.GetString("metrics_addr"),
			Handler:      newRouter(s),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		slog.Info("serving", "addr", srv.Addr, "driver", s.module.Driver().Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (default from metrics_addr)")
	viper.BindPFlag("metrics_addr", serveCmd.Flags().Lookup("addr"))
}

type callRequest struct {
	Args []any  `json:"args"`
	As   string `json:"as"`
}

type callResponse struct {
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	Kind   string `json:"kind,omitempty"`
	Status string `json:"status,omitempty"`
}

// newRouter wires the HTTP surface to a session. Calls are serialized
// because the runner's variables are shared.
func newRouter(s *session) *mux.Router {
	var mu sync.Mutex
	runner := script.NewRunner(s.module, io.Discard)

	r := mux.NewRouter()
	r.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}).Methods("GET")

	r.HandleFunc("/platforms", func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		rows, err := listDevices(s.module)
		mu.Unlock()
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse(err))
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}).Methods("GET")

	r.HandleFunc("/call/{op}", func(w http.ResponseWriter, req *http.Request) {
		var body callRequest
		if req.ContentLength != 0 {
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}
		}
		op := mux.Vars(req)["op"]

		mu.Lock()
		v, err := runner.Exec(script.Step{Call: op, Args: body.Args, As: body.As})
		mu.Unlock()

		switch {
		case errors.Is(err, bindings.ErrUnknownOperation):
			writeJSON(w, http.StatusNotFound, errorResponse(err))
		case err != nil:
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse(err))
		default:
			writeJSON(w, http.StatusOK, callResponse{Result: transcript.RenderValue(v)})
		}
	}).Methods("POST")
	return r
}

func errorResponse(err error) callResponse {
	resp := callResponse{Error: err.Error()}
	if kind, ok := marshal.KindOf(err); ok {
		resp.Kind = string(kind)
	}
	var serr *marshal.StatusError
	if errors.As(err, &serr) {
		resp.Status = serr.Code.Name()
	}
	return resp
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
