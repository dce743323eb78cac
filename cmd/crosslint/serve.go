package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/crosslint/crosslint/app"
	"github.com/crosslint/crosslint/domain"
	"github.com/crosslint/crosslint/internal/lang"
	"github.com/crosslint/crosslint/internal/version"
)

var serveAddr string

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis server",
		Long: `Expose the analysis kernel over a JSON HTTP API.

Endpoints:
  POST /analyze    run an analysis (body: analyze request JSON)
  GET  /languages  list supported language tags
  GET  /version    report server version

Authentication and TLS are deliberately out of scope; put the server
behind a reverse proxy for anything non-local.`,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8571",
		"Address to listen on")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /analyze", handleAnalyze)
	mux.HandleFunc("GET /languages", handleLanguages)
	mux.HandleFunc("GET /version", handleVersion)

	server := &http.Server{
		Addr:              serveAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "crosslint server listening on %s\n", serveAddr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req domain.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if len(req.Files) == 0 && len(req.Paths) == 0 {
		writeError(w, http.StatusBadRequest, "request must include files or paths")
		return
	}

	response, err := app.NewAnalyzeUseCase().Execute(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if domain.IsFatal(err) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return
	}
	writeObject(w, http.StatusOK, response)
}

func handleLanguages(w http.ResponseWriter, r *http.Request) {
	languages := lang.All()
	tags := make([]string, len(languages))
	for i, l := range languages {
		tags[i] = l.String()
	}
	writeObject(w, http.StatusOK, map[string][]string{"languages": tags})
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	writeObject(w, http.StatusOK, map[string]string{"version": version.GetVersion()})
}

func writeObject(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeObject(w, status, map[string]string{"error": message})
}
