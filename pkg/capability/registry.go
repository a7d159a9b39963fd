package capability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sameehj/locgate/pkg/platform"
)

var (
	ErrInvalidName      = errors.New("invalid capability name")
	ErrInvalidThreshold = errors.New("invalid capability threshold")
	ErrDuplicate        = errors.New("capability already registered")
	ErrUnknown          = errors.New("unknown capability")
)

// Inspector reports the status of every capability it knows about.
type Inspector interface {
	Inspect(ctx context.Context, src platform.Source) (Report, error)
}

// Report is a snapshot of all registered gates against one source.
type Report struct {
	APILevel     platform.APILevel `json:"api_level"`
	Known        bool              `json:"known"`
	Source       string            `json:"source,omitempty"`
	Capabilities []Status          `json:"capabilities"`
}

// Registry maps capability names to minimum API levels.
type Registry struct {
	mu   sync.RWMutex
	mins map[string]platform.APILevel
}

func NewRegistry() *Registry {
	return &Registry{mins: make(map[string]platform.APILevel)}
}

// Default returns a registry holding the built-in capabilities.
func Default() *Registry {
	r := NewRegistry()
	_ = r.Register(SpeedAndBearingAccuracy, MinSpeedAndBearingAccuracy)
	return r
}

func (r *Registry) Register(name string, min platform.APILevel) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	if min < platform.Unknown {
		return fmt.Errorf("%w: %s requires %d", ErrInvalidThreshold, name, int(min))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.mins[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	r.mins[name] = min
	return nil
}

// Gate returns the named gate bound to src.
func (r *Registry) Gate(name string, src platform.Source) (Gate, error) {
	r.mu.RLock()
	min, ok := r.mins[name]
	r.mu.RUnlock()
	if !ok {
		return Gate{}, fmt.Errorf("%w: %s", ErrUnknown, name)
	}
	return New(name, min, src), nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.mins))
	for name := range r.mins {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Inspect reads src once and evaluates every registered capability against
// that level, so a report is never split across two readings.
func (r *Registry) Inspect(ctx context.Context, src platform.Source) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	level, name, known := platform.Resolve(src)
	report := Report{APILevel: level, Known: known, Source: name}
	snapshot := platform.Fixed(level)

	for _, capName := range r.Names() {
		gate, err := r.Gate(capName, snapshot)
		if err != nil {
			continue
		}
		report.Capabilities = append(report.Capabilities, gate.Evaluate())
	}
	return report, nil
}
