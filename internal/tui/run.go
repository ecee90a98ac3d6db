package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"tabemb/internal/service"
)

// Work is the annotation run shown by the UI. It must honour ctx and report
// progress to obs.
type Work func(ctx context.Context, obs service.Observer) error

// Run executes work on its own goroutine while the progress UI runs on the
// calling one, and returns the error of work.
func Run(ctx context.Context, title string, out io.Writer, work Work) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(New(title, cancel), tea.WithOutput(out))
	errc := make(chan error, 1)
	go func() {
		err := work(ctx, &programObserver{program: p})
		p.Send(DoneMsg{Err: err})
		errc <- err
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		return err
	}
	return <-errc
}

// programObserver forwards run progress to a running program.
type programObserver struct {
	program *tea.Program
}

func (o *programObserver) RunStarted(runID string, rows int) {
	o.program.Send(StartedMsg{RunID: runID, Rows: rows})
}

func (o *programObserver) RowAnnotated(res service.RowResult, done, total int) {
	o.program.Send(RowMsg{Result: res, Done: done, Total: total})
}

var _ service.Observer = (*programObserver)(nil)
