package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/kurosawa0120/wecom-dump/internal/dump"
	"github.com/kurosawa0120/wecom-dump/internal/wecom"
)

// DefaultDelay is the pause between fan-out launches
const DefaultDelay = 200 * time.Millisecond

// Options configures a Dispatcher
type Options struct {
	// Delay is the pause between sub-task launches within a job. It paces
	// launches only; running sub-tasks are not held back.
	Delay time.Duration
	// Recursive includes members of sub-departments in department fetches
	Recursive bool
	// AgentDetails fans out one detail request per agent
	AgentDetails bool
}

// Dispatcher runs the three collection jobs concurrently, fanning out one
// paced sub-task per list item with failure isolation
type Dispatcher struct {
	client *wecom.Client
	sink   *dump.Sink
	logger *slog.Logger
	opts   Options
}

// SubResult is the outcome of one fan-out sub-task
type SubResult struct {
	ID    uint32
	Name  string
	Path  string
	Count int
	Empty bool
	Err   error
}

// JobReport is the outcome of one top-level job. Err is set only when the
// list phase failed; sub-task failures are counted, never fatal.
type JobReport struct {
	Name    string
	Err     error
	Items   int
	Written int
	Failed  int
	Empty   int
}

// Summary aggregates the three job reports of a run
type Summary struct {
	Agents      JobReport
	Departments JobReport
	Tags        JobReport
}

// Reports returns the job reports in launch order
func (s Summary) Reports() []JobReport {
	return []JobReport{s.Agents, s.Departments, s.Tags}
}

// New creates a Dispatcher
func New(client *wecom.Client, sink *dump.Sink, logger *slog.Logger, opts Options) *Dispatcher {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	return &Dispatcher{
		client: client,
		sink:   sink,
		logger: logger,
		opts:   opts,
	}
}

// Run launches the agent, department and tag jobs concurrently and joins
// them. One job's failure never cancels the others.
func (d *Dispatcher) Run(ctx context.Context) Summary {
	var summary Summary
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		summary.Agents = d.runAgents(ctx)
	}()
	go func() {
		defer wg.Done()
		summary.Departments = d.runDepartments(ctx)
	}()
	go func() {
		defer wg.Done()
		summary.Tags = d.runTags(ctx)
	}()

	wg.Wait()

	for _, report := range summary.Reports() {
		if report.Err != nil {
			d.logger.Error("job failed", "job", report.Name, "error", report.Err)
		}
	}
	return summary
}

func (d *Dispatcher) runAgents(ctx context.Context) JobReport {
	report := JobReport{Name: "agents"}

	agents, err := d.client.ListAgents(ctx)
	if err != nil {
		report.Err = fmt.Errorf("failed to get agent list: %w", err)
		return report
	}
	report.Items = len(agents.Agents)

	names := make([]string, 0, len(agents.Agents))
	for _, a := range agents.Agents {
		names = append(names, fmt.Sprintf("%d - %s", a.ID, a.Name))
	}
	d.logger.Info("agents listed", "agents", strings.Join(names, ", "))

	if _, err := d.sink.WriteJSON("agents.json", agents); err != nil {
		report.Err = fmt.Errorf("failed to write agents.json: %w", err)
		return report
	}

	if !d.opts.AgentDetails {
		return report
	}

	if err := d.sink.EnsureDir("agents"); err != nil {
		report.Err = err
		return report
	}

	results := d.fanOut(ctx, len(agents.Agents), func(i int) SubResult {
		agent := agents.Agents[i]
		res := SubResult{ID: agent.ID, Name: agent.Name}

		detail, err := d.client.GetAgentDetail(ctx, agent.ID)
		if err != nil {
			res.Err = err
			d.logger.Error("failed to get agent detail", "id", agent.ID, "name", agent.Name, "error", err)
			return res
		}

		path, err := d.sink.WriteItem("agents", "detail", agent.ID, agent.Name, detail)
		if err != nil {
			res.Err = err
			d.logger.Error("failed to save agent detail", "id", agent.ID, "name", agent.Name, "error", err)
			return res
		}
		res.Path = path
		d.logger.Info("saved agent detail", "path", path)
		return res
	})
	tally(&report, results)
	return report
}

func (d *Dispatcher) runDepartments(ctx context.Context) JobReport {
	report := JobReport{Name: "departments"}

	departments, err := d.client.ListDepartments(ctx)
	if err != nil {
		report.Err = fmt.Errorf("failed to get department list: %w", err)
		return report
	}
	report.Items = len(departments.Departments)
	d.logger.Info("departments listed", "total", len(departments.Departments))

	if _, err := d.sink.WriteJSON("departments.json", departments); err != nil {
		report.Err = fmt.Errorf("failed to write departments.json: %w", err)
		return report
	}

	if err := d.sink.EnsureDir("departments"); err != nil {
		report.Err = err
		return report
	}

	results := d.fanOut(ctx, len(departments.Departments), func(i int) SubResult {
		dept := departments.Departments[i]
		res := SubResult{ID: dept.ID, Name: dept.Name}

		members, err := d.client.GetDepartmentMembers(ctx, dept.ID, d.opts.Recursive)
		if err != nil {
			res.Err = err
			d.logger.Error("failed to get department members", "id", dept.ID, "name", dept.Name, "error", err)
			return res
		}

		path, err := d.sink.WriteItem("departments", "members", dept.ID, dept.Name, members)
		if err != nil {
			res.Err = err
			d.logger.Error("failed to save department members", "id", dept.ID, "name", dept.Name, "error", err)
			return res
		}
		res.Path = path
		res.Count = len(members.Members)
		d.logger.Info("saved department members", "path", path, "total", len(members.Members))
		return res
	})
	tally(&report, results)
	return report
}

func (d *Dispatcher) runTags(ctx context.Context) JobReport {
	report := JobReport{Name: "tags"}

	tags, err := d.client.ListTags(ctx)
	if err != nil {
		report.Err = fmt.Errorf("failed to get tag list: %w", err)
		return report
	}
	report.Items = len(tags.Tags)
	d.logger.Info("tags listed", "total", len(tags.Tags))

	if _, err := d.sink.WriteJSON("tags.json", tags); err != nil {
		report.Err = fmt.Errorf("failed to write tags.json: %w", err)
		return report
	}

	if err := d.sink.EnsureDir("tags"); err != nil {
		report.Err = err
		return report
	}

	results := d.fanOut(ctx, len(tags.Tags), func(i int) SubResult {
		tag := tags.Tags[i]
		res := SubResult{ID: tag.ID, Name: tag.Name}

		members, err := d.client.GetTagMembers(ctx, tag.ID)
		if err != nil {
			res.Err = err
			d.logger.Error("failed to get tag members", "id", tag.ID, "name", tag.Name, "error", err)
			return res
		}

		// A tag that legitimately has no members goes to the empty log
		// instead of its own file.
		if len(members.Members) == 0 && members.OK() {
			res.Empty = true
			return res
		}

		path, err := d.sink.WriteItem("tags", "members", tag.ID, tag.Name, members)
		if err != nil {
			res.Err = err
			d.logger.Error("failed to save tag members", "id", tag.ID, "name", tag.Name, "error", err)
			return res
		}
		res.Path = path
		res.Count = len(members.Members)
		d.logger.Info("saved tag members", "path", path, "total", len(members.Members))
		return res
	})

	// The empty log is written once, by this job, after every sub-task has
	// reported back.
	var empties []dump.EmptyTag
	for _, res := range results {
		if res.Empty {
			empties = append(empties, dump.EmptyTag{ID: res.ID, Name: res.Name})
		}
	}
	if _, err := d.sink.WriteEmptyTags(empties); err != nil {
		d.logger.Error("failed to write empty tag log", "error", err)
		report.Failed++
	}

	tally(&report, results)
	return report
}

// fanOut launches one sub-task per item in list order, pacing launches with
// the configured delay, and returns every sub-task's result once all of
// them have finished. Launched sub-tasks keep running while later launches
// wait their turn.
func (d *Dispatcher) fanOut(ctx context.Context, n int, task func(i int) SubResult) []SubResult {
	results := make(chan SubResult, n)
	limiter := rate.NewLimiter(rate.Every(d.opts.Delay), 1)

	var wg sync.WaitGroup
	launched := 0
	for i := 0; i < n; i++ {
		if err := limiter.Wait(ctx); err != nil {
			d.logger.Error("fan-out interrupted", "launched", launched, "total", n, "error", err)
			break
		}
		launched++
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results <- task(i)
		}(i)
	}

	wg.Wait()
	close(results)

	collected := make([]SubResult, 0, launched)
	for res := range results {
		collected = append(collected, res)
	}
	return collected
}

func tally(report *JobReport, results []SubResult) {
	for _, res := range results {
		switch {
		case res.Err != nil:
			report.Failed++
		case res.Empty:
			report.Empty++
		default:
			report.Written++
		}
	}
}
