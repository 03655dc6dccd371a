// Package readiness implements a minimal health-checking mechanism for use as
// k8s readiness probes. A component that has become ready once stays ready;
// this is a startup gate, not a monitoring surface.
//
// Uses a global singleton registry (similar to the Prometheus client's
// default behavior).
package readiness

import (
	"bytes"
	"fmt"
	"net/http"
	"sync"
)

var (
	mu       = sync.Mutex{}
	registry = map[string]bool{}
)

type Component string

// Components registered by the xcdpd node.
const (
	Storage Component = "storage"
	API     Component = "api"
)

// RegisterComponent registers the given component name such that it is
// required to be ready for the global check to succeed.
func RegisterComponent(component Component) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := registry[string(component)]; ok {
		panic("component already registered")
	}
	registry[string(component)] = false
}

// SetReady marks the given component as ready.
func SetReady(component Component) {
	mu.Lock()
	defer mu.Unlock()
	if !registry[string(component)] {
		registry[string(component)] = true
	}
}

// Handler returns 200 OK if all registered components are ready, or 412
// Precondition Failed otherwise. The body lists components and their states
// as plain text for operator convenience; it is not meant for machine
// consumption.
func Handler(w http.ResponseWriter, r *http.Request) {
	ready := true

	resp := new(bytes.Buffer)
	_, _ = resp.Write([]byte("[not suitable for monitoring - do not parse]\n\n"))

	mu.Lock()
	defer mu.Unlock()
	for k, v := range registry {
		_, _ = fmt.Fprintf(resp, "%s\t%v\n", k, v)
		if !v {
			ready = false
		}
	}

	if !ready {
		w.WriteHeader(http.StatusPreconditionFailed)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	_, _ = resp.WriteTo(w)
}
