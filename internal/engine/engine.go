package engine

import (
	"context"
	"time"

	"github.com/picklr-io/stagehand/internal/resources"
)

const defaultParallelism = 10

// Reconciler performs the platform side of each change. *resources.Manager
// implements it.
type Reconciler interface {
	Create(ctx context.Context, t resources.ResourceType, inputs resources.Document) (resources.Document, error)
	Update(ctx context.Context, t resources.ResourceType, inputs, outputs resources.Document) (resources.Document, error)
	Delete(ctx context.Context, t resources.ResourceType, inputs, outputs resources.Document) error
}

// Engine orchestrates the lifecycle of resources. Retries of transient
// platform failures belong to the Reconciler's platform; see RetryingPlatform.
type Engine struct {
	reconciler      Reconciler
	ContinueOnError bool          // If true, apply continues past failures instead of stopping
	Parallelism     int           // Maximum concurrent platform operations; 0 means the default
	Timeout         time.Duration // Per-resource operation timeout; 0 means DefaultTimeout
	now             func() time.Time
}

func NewEngine(reconciler Reconciler) *Engine {
	return &Engine{
		reconciler: reconciler,
		now:        time.Now,
	}
}

func (e *Engine) parallelism() int {
	if e.Parallelism > 0 {
		return e.Parallelism
	}
	return defaultParallelism
}
