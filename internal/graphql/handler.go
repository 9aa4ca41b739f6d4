// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package graphql

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/samber/oops"

	"github.com/driftboard/driftboard/internal/observability"
	"github.com/driftboard/driftboard/pkg/errutil"
)

const maxRequestBytes = 1 << 20 // 1 MiB

// Handler serves GraphQL over HTTP POST. It expects the session middleware
// to run in front of it so resolvers can find the session in the context.
type Handler struct {
	schema  graphql.Schema
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewHandler creates the HTTP handler for the given schema. metrics may be
// nil; the logger defaults to slog.Default when nil.
func NewHandler(schema graphql.Schema, metrics *observability.Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{schema: schema, metrics: metrics, logger: logger}
}

type request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        r.Context(),
	})

	h.record(req.OperationName, result.HasErrors())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		errutil.LogError(h.logger, "failed to write graphql response",
			oops.Code("GRAPHQL_WRITE_FAILED").Wrap(err))
	}
}

func (h *Handler) record(operation string, failed bool) {
	if h.metrics == nil {
		return
	}
	if operation == "" {
		operation = "unnamed"
	}
	status := "ok"
	if failed {
		status = "error"
	}
	h.metrics.GraphQLRequestsTotal.WithLabelValues(operation, status).Inc()
}
