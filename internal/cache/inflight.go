package cache

import (
	"sync"

	"github.com/nvoss/codelens/pkg/models"
)

// inflightGroup serializes computations per key: while one goroutine computes
// a fingerprint's result, later callers for the same fingerprint wait and
// share the outcome instead of duplicating work.
type inflightGroup struct {
	mu    sync.Mutex
	calls map[string]*inflightCall
}

type inflightCall struct {
	done   chan struct{}
	result models.FileResult
	err    error
}

func newInflightGroup() *inflightGroup {
	return &inflightGroup{calls: make(map[string]*inflightCall)}
}

func (g *inflightGroup) do(key string, fn func() (models.FileResult, error)) (models.FileResult, error) {
	g.mu.Lock()
	if call, ok := g.calls[key]; ok {
		g.mu.Unlock()
		<-call.done
		return call.result, call.err
	}

	call := &inflightCall{done: make(chan struct{})}
	g.calls[key] = call
	g.mu.Unlock()

	call.result, call.err = fn()
	close(call.done)

	g.mu.Lock()
	delete(g.calls, key)
	g.mu.Unlock()

	return call.result, call.err
}
