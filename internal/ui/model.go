package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"meetdl/internal/downloader"
	"meetdl/internal/job"
	"meetdl/internal/meta"
	"meetdl/internal/model"
	"meetdl/internal/progress"
	"meetdl/internal/util/format"
)

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	// App state (deps)
	depsChecked bool
	depsErr     error
	toolName    string

	// Jobs
	inputs   []model.JobInput
	opts     model.CLIOptions
	jobOrder []string
	jobs     map[string]*jobState
	runner   *job.Runner
	workers  int
	running  int
	next     int // next index in inputs to start

	selector *downloader.Selector

	// UI
	width, height int
	styles        Styles

	// Internal event channel used by reporter to feed tea messages
	eventCh chan tea.Msg
}

func NewModel(ctx context.Context, inputs []model.JobInput, opts model.CLIOptions) Model {
	c, cancel := context.WithCancel(ctx)
	sty := defaultStyles()

	jobs := make(map[string]*jobState, len(inputs))
	order := make([]string, 0, len(inputs))
	for i, in := range inputs {
		id := toID(i)
		js := newJobState(id, in.URL, sty)
		jobs[id] = &js
		order = append(order, id)
	}

	workers := opts.Jobs
	if workers <= 0 {
		workers = 4
	}

	selector := &downloader.Selector{
		PrimaryPath:  opts.PrimaryBinary,
		FallbackPath: opts.FallbackBinary,
	}
	runner := &job.Runner{
		Meta: meta.NewClient(),
		Invoker: &downloader.Invoker{
			Selector: selector,
			Timeout:  opts.Timeout,
			Threads:  opts.Threads,
			Verbose:  opts.Verbose,
		},
	}

	return Model{
		ctx:      c,
		cancel:   cancel,
		inputs:   inputs,
		opts:     opts,
		jobs:     jobs,
		jobOrder: order,
		runner:   runner,
		selector: selector,
		workers:  workers,
		styles:   sty,
		eventCh:  make(chan tea.Msg, 256),
	}
}

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, id := range m.jobOrder {
		sp := m.jobs[id].spinner
		cmds = append(cmds, sp.Tick)
	}
	// Listen for reporter events
	cmds = append(cmds, m.listenEventsCmd())
	// Kick off dependency check
	cmds = append(cmds, m.checkDepsCmd())
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancel()
			for _, id := range m.jobOrder {
				js := m.jobs[id]
				if !js.done {
					js.stage = progress.StageCancelled
					js.status = "Cancelled"
					js.err = context.Canceled
					js.done = true
				}
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case depsCheckedMsg:
		m.depsChecked = true
		m.depsErr = msg.Err
		m.toolName = msg.Tool
		if m.depsErr != nil {
			for _, id := range m.jobOrder {
				js := m.jobs[id]
				js.stage = progress.StageError
				js.status = fmt.Sprintf("Dependency error: %v", m.depsErr)
				js.err = m.depsErr
				js.done = true
			}
			return m, tea.Quit
		}
		return m.startWorkers()

	case jobUpdateMsg:
		u := msg.U
		if js, ok := m.jobs[u.JobID]; ok {
			js.stage = u.Stage
			js.percent = u.Percent
			if u.Message != "" {
				js.status = u.Message
			}
			if u.Bytes != nil {
				js.bytes = *u.Bytes
			}
		}
	case jobLogMsg:
		l := msg.L
		if js, ok := m.jobs[l.JobID]; ok {
			line := strings.TrimRight(l.Line, "\r\n")
			if len(js.logsRing) > 1000 {
				js.logsRing = js.logsRing[1:]
			}
			js.logsRing = append(js.logsRing, line)
		}
	case jobResultMsg:
		r := msg.R
		if js, ok := m.jobs[r.JobID]; ok {
			js.done = true
			js.err = r.Err
			switch {
			case r.Err == nil:
				js.stage = progress.StageCompleted
				js.percent = 100
				js.outputPath = r.OutputPath
				js.bytes = r.Bytes
				if r.OutputPath != "" {
					js.status = fmt.Sprintf("Saved: %s (%s)",
						filepath.Base(r.OutputPath), format.HumanizeBytes(r.Bytes))
				} else {
					js.status = "Completed"
				}
			case errors.Is(r.Err, context.Canceled):
				js.stage = progress.StageCancelled
				js.status = "Cancelled"
				js.percent = -1
			default:
				js.stage = progress.StageError
				js.status = r.Err.Error()
				js.percent = -1
			}
			m.running--
			return m.startWorkers()
		}
	case allDoneMsg:
		return m, tea.Quit
	}

	// Update per-job components (spinner)
	var cmds []tea.Cmd
	for _, id := range m.jobOrder {
		js := m.jobs[id]
		var c tea.Cmd
		js.spinner, c = js.spinner.Update(msg)
		if c != nil {
			cmds = append(cmds, c)
		}
	}
	// Keep listening for events
	cmds = append(cmds, m.listenEventsCmd())
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	summary := m.viewSummary()
	if summary != "" {
		return m.viewHeader() + "\n\n" + m.viewJobs() + "\n" + summary
	}
	return m.viewHeader() + "\n\n" + m.viewJobs()
}

func (m Model) listenEventsCmd() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return allDoneMsg{}
		case msg := <-m.eventCh:
			return msg
		}
	}
}

func (m Model) checkDepsCmd() tea.Cmd {
	return func() tea.Msg {
		b, err := m.selector.Backend(m.ctx)
		if err != nil {
			return depsCheckedMsg{Err: err}
		}
		return depsCheckedMsg{Tool: b.Name()}
	}
}

// startWorkers admits queued jobs until the worker limit is reached. Jobs are
// launched in input order; each one reports back through the event channel.
func (m Model) startWorkers() (tea.Model, tea.Cmd) {
	if m.ctx.Err() != nil {
		return m, tea.Quit
	}
	for m.running < m.workers && m.next < len(m.inputs) {
		idx := m.next
		m.next++
		m.running++
		jobID := m.jobOrder[idx]
		if js := m.jobs[jobID]; js != nil {
			js.started = true
			js.status = "Starting"
			js.stage = progress.StageMetadata
		}
		go m.runJob(jobID, m.inputs[idx])
	}
	if m.next >= len(m.inputs) && m.running == 0 {
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) runJob(jobID string, in model.JobInput) {
	rep := teaReporter{ch: m.eventCh}
	res := m.runner.RunReported(m.ctx, in, jobID, rep)
	rep.Result(progress.Result{
		JobID:      jobID,
		OutputPath: res.FilePath,
		Bytes:      res.Bytes,
		Err:        res.Err,
	})
}

type teaReporter struct {
	ch chan tea.Msg
}

func (r teaReporter) Update(u progress.Update) {
	// Block on terminal stage messages to ensure they're delivered
	if u.Stage == progress.StageCompleted || u.Stage == progress.StageError {
		r.ch <- jobUpdateMsg{U: u}
		return
	}
	select {
	case r.ch <- jobUpdateMsg{U: u}:
	default:
	}
}

func (r teaReporter) Log(l progress.Log) {
	select {
	case r.ch <- jobLogMsg{L: l}:
	default:
	}
}

func (r teaReporter) Result(res progress.Result) {
	// Always block on Result messages - they're critical
	r.ch <- jobResultMsg{R: res}
}

func toID(i int) string {
	return "job-" + strconv.Itoa(i)
}
