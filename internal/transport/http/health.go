package httptransport

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"leadhub/pkg/platform/httputil"
)

const probeTimeout = 2 * time.Second

// Probe checks one dependency. A nil error means it is reachable.
type Probe = func(ctx context.Context) error

type healthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
}

// healthHandler runs every probe concurrently and answers 503 when any of
// them fails. With no probes configured the process only depends on itself.
func healthHandler(checks map[string]Probe) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok", Dependencies: make(map[string]string, len(names))}
		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		for _, name := range names {
			probe := checks[name]
			g.Go(func() error {
				state := "up"
				if err := probe(gctx); err != nil {
					state = "down: " + err.Error()
				}
				mu.Lock()
				resp.Dependencies[name] = state
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()

		status := http.StatusOK
		for _, state := range resp.Dependencies {
			if state != "up" {
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
			}
		}
		httputil.WriteJSON(w, status, resp)
	}
}
