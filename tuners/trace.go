package tuners

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/thalesfsp/tuneloop/tunable"
)

// TraceFile is the name of the JSON lines file tuners append diagnostic
// events to inside their debug path.
const TraceFile = "trace.jsonl"

// TraceEvent is one line of the debug trace.
type TraceEvent struct {
	Event       string            `json:"event"`
	Tuner       string            `json:"tuner"`
	Trial       int               `json:"trial"`
	Phase       string            `json:"phase,omitempty"`
	Candidates  int               `json:"candidates,omitempty"`
	Proposal    tunable.Proposal  `json:"proposal"`
	Mean        *float64          `json:"mean,omitempty"`
	Std         *float64          `json:"std,omitempty"`
	Acquisition *float64          `json:"acquisition,omitempty"`
	Score       *float64          `json:"score,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// tracer appends events to <dir>/trace.jsonl. The file is opened lazily on
// every write, so nothing touches the filesystem until an event is emitted.
// A nil tracer discards events.
type tracer struct {
	mu   sync.Mutex
	path string
}

func newTracer(dir string) *tracer {
	if dir == "" {
		return nil
	}

	return &tracer{path: filepath.Join(dir, TraceFile)}
}

func (t *tracer) write(event TraceEvent) error {
	if t == nil {
		return nil
	}

	line, err := json.Marshal(event)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()

		return err
	}

	return f.Close()
}

// finite returns a pointer to v, or nil when v cannot be encoded as JSON.
func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}

	return &v
}
