package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chatql/chatql/internal/core"
	"github.com/chatql/chatql/pkg/chatql"
)

var client *chatql.Client

func main() {
	configPath := flag.String("config", "", "path to a YAML or JSON config file")
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	var cfg *chatql.Config
	var err error
	if *configPath != "" {
		cfg, err = chatql.LoadConfig(*configPath)
		if err != nil {
			slog.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
	} else {
		cfg = chatql.DefaultConfig()
		cfg.LoadFromEnv()
	}

	client, err = chatql.New(cfg)
	if err != nil {
		slog.Error("failed to create client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx := context.Background()
	client.Start(ctx)
	defer client.Stop()

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/use", useHandler)
	http.HandleFunc("/tables", tablesHandler)
	http.HandleFunc("/insert", insertHandler)
	http.HandleFunc("/select", selectHandler)
	http.HandleFunc("/explain", explainHandler)

	slog.Info("listening", "addr", *addr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := http.ListenAndServe(*addr, nil); err != nil {
			slog.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-sigChan
	slog.Info("shutting down")
}

// identity pulls the tenant and user from request headers; both default for
// quick local testing.
func identity(r *http.Request) (string, string) {
	tenant := r.Header.Get("X-Tenant-ID")
	if tenant == "" {
		tenant = "default"
	}
	user := r.Header.Get("X-User-ID")
	if user == "" {
		user = "anonymous"
	}
	return tenant, user
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrUnknownTable), errors.Is(err, core.ErrNoTableSet):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, chatql.ErrNotSupported):
		status = http.StatusNotImplemented
	default:
		// Parse and validation failures are the caller's to fix.
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func useHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		TableSet string `json:"table_set"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	tenant, user := identity(r)
	name, err := client.UseTableSet(r.Context(), tenant, user, req.TableSet)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"table_set": name})
}

func tablesHandler(w http.ResponseWriter, r *http.Request) {
	tenant, user := identity(r)
	switch r.Method {
	case http.MethodGet:
		tables, err := client.ListTables(r.Context(), tenant, user)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tables": tables})
	case http.MethodPost:
		var req struct {
			Table       string `json:"table"`
			Declaration string `json:"declaration"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		stored, err := client.CreateTable(r.Context(), tenant, user, req.Table, req.Declaration)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"table": req.Table, "declaration": stored})
	case http.MethodDelete:
		table := r.URL.Query().Get("table")
		if table == "" {
			http.Error(w, "table query parameter required", http.StatusBadRequest)
			return
		}
		if err := client.DropTable(r.Context(), tenant, user, table); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"dropped": table})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func insertHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Table  string `json:"table"`
		Values string `json:"values"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	tenant, user := identity(r)
	result, err := client.Insert(r.Context(), tenant, user, req.Table, req.Values)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type selectRequest struct {
	Table    string `json:"table"`
	Columns  string `json:"columns"`
	Distinct bool   `json:"distinct"`
	Where    string `json:"where"`
}

func selectHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	tenant, user := identity(r)
	result, err := client.Select(r.Context(), tenant, user, req.Table, req.Columns, req.Distinct, req.Where)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"result": result,
		"text":   chatql.FormatResultSet(result),
	})
}

func explainHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	tenant, user := identity(r)
	plan, err := client.Explain(r.Context(), tenant, user, req.Table, req.Columns, req.Distinct, req.Where)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"plan": plan})
}
