package automation

import (
	"context"

	"github.com/shirou/gopsutil/v4/process"
)

// Process is one running OS process, reduced to what CloseApp needs.
type Process interface {
	// Name returns the process executable name.
	Name() string

	// Terminate asks the process to exit.
	Terminate(ctx context.Context) error
}

// ProcessLister enumerates running processes.
type ProcessLister interface {
	Processes(ctx context.Context) ([]Process, error)
}

// gopsutilLister is the production ProcessLister backed by gopsutil.
type gopsutilLister struct{}

// Processes implements ProcessLister.
func (gopsutilLister) Processes(ctx context.Context) ([]Process, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Process, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			// Processes can exit between listing and inspection.
			continue
		}
		out = append(out, gopsutilProcess{p: p, name: name})
	}
	return out, nil
}

// gopsutilProcess adapts *process.Process to the Process interface.
type gopsutilProcess struct {
	p    *process.Process
	name string
}

func (g gopsutilProcess) Name() string { return g.name }

func (g gopsutilProcess) Terminate(ctx context.Context) error {
	return g.p.TerminateWithContext(ctx)
}
