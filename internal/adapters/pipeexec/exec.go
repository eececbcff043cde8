// Package pipeexec runs a stage plan as a chain of external processes joined by pipes
package pipeexec

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"merchantfeed/internal/platform/logger"

	perr "merchantfeed/internal/platform/errors"
	dom "merchantfeed/internal/services/feedimport/domain"

	"github.com/kballard/go-shellquote"
	"golang.org/x/sync/errgroup"
)

const defaultStderrLimit = 4096

// Options configures the Executor
type Options struct {
	// Stdout receives the output of the last command, discarded when nil
	Stdout io.Writer
	// StderrLimit is how many trailing stderr bytes are kept per command
	StderrLimit int
	Dir         string
	Env         []string
}

// Executor implements the feed import execution port
type Executor struct {
	opts Options
	log  logger.Logger
}

// New constructs an Executor
func New(o Options) *Executor {
	if o.StderrLimit <= 0 {
		o.StderrLimit = defaultStderrLimit
	}
	if o.Stdout == nil {
		o.Stdout = io.Discard
	}
	return &Executor{opts: o, log: *logger.Named("pipeexec")}
}

type proc struct {
	stage     dom.StageName
	def       dom.CommandDefinition
	cmd       *exec.Cmd
	stderr    *tailBuffer
	afterWait []io.Closer
}

// Execute runs every group of plan in order; the first command of a group is in the main
// chain, further commands receive a copy of the group's input
// the first command whose exit code is not accepted is returned as a *dom.StageFailure
func (e *Executor) Execute(ctx context.Context, plan dom.StagePlan, params dom.ParameterSet) error {
	groups := make([]dom.StageGroup, 0, len(plan.Groups))
	for _, g := range plan.Groups {
		if len(g.Commands) > 0 {
			groups = append(groups, g)
		}
	}
	if len(groups) == 0 {
		return nil
	}

	var (
		procs      []*proc
		afterStart []io.Closer
		files      []io.Closer
		tees       errgroup.Group
		input      *os.File
		// pipe ends created for the next group and not yet owned by a command
		pendR, pendW *os.File
	)
	fail := func(err error) error {
		if pendR != nil {
			_ = pendR.Close()
		}
		if pendW != nil {
			_ = pendW.Close()
		}
		closeAll(afterStart)
		for _, p := range procs {
			closeAll(p.afterWait)
		}
		closeAll(files)
		_ = tees.Wait()
		return err
	}

	for gi, g := range groups {
		group := make([]*proc, 0, len(g.Commands))
		for _, def := range g.Commands {
			p, err := e.command(ctx, g.Name, def, params)
			if err != nil {
				return fail(err)
			}
			group = append(group, p)
			procs = append(procs, p)
		}

		if len(group) > 1 {
			if err := e.fanOut(&tees, input, group, &afterStart); err != nil {
				return fail(err)
			}
		} else if input != nil {
			group[0].cmd.Stdin = input
			afterStart = append(afterStart, input)
		}
		pendR = nil

		for _, side := range group[1:] {
			if side.def.Output == "" {
				continue
			}
			f, err := createOutput(side.def.Output)
			if err != nil {
				return fail(err)
			}
			side.cmd.Stdout = f
			files = append(files, f)
		}

		main := group[0]
		var sink io.Writer
		if gi == len(groups)-1 {
			sink = e.opts.Stdout
		} else {
			r, w, err := os.Pipe()
			if err != nil {
				return fail(perr.Wrap(err, perr.ErrorCodeExecution, "pipe"))
			}
			input, sink = r, w
			pendR, pendW = r, w
		}
		if main.def.Output != "" {
			f, err := createOutput(main.def.Output)
			if err != nil {
				return fail(err)
			}
			files = append(files, f)
			if w, ok := sink.(*os.File); ok {
				main.afterWait = append(main.afterWait, w)
			}
			sink = io.MultiWriter(f, sink)
		} else if w, ok := sink.(*os.File); ok && gi < len(groups)-1 {
			afterStart = append(afterStart, w)
		}
		main.cmd.Stdout = sink
		pendW = nil
	}

	for i, p := range procs {
		if err := p.cmd.Start(); err != nil {
			for _, s := range procs[:i] {
				_ = s.cmd.Process.Kill()
			}
			closeAll(afterStart)
			for _, s := range procs[:i] {
				_ = s.cmd.Wait()
			}
			return fail(perr.Wrapf(err, perr.ErrorCodeExecution, "start %s", p.cmd.Path))
		}
	}
	closeAll(afterStart)

	codes := make([]int, len(procs))
	for i, p := range procs {
		err := p.cmd.Wait()
		closeAll(p.afterWait)
		codes[i] = exitCode(err)
	}
	teeErr := tees.Wait()
	closeAll(files)

	if ctx.Err() != nil {
		return perr.Wrap(ctx.Err(), perr.ErrorCodeExecution, "pipeline interrupted")
	}

	if f := firstFailure(procs, codes, secret(params)); f != nil {
		e.log.Debug().
			Str("stage", string(f.Stage)).
			Int("exit_code", f.ExitCode).
			Msg("pipeline stage failed")
		return perr.Wrapf(f, perr.ErrorCodeExecution, "pipeline stage %s failed", f.Stage)
	}
	if teeErr != nil {
		e.log.Warn().Err(teeErr).Msg("stream fan out ended early")
	}
	return nil
}

// fanOut copies src into a fresh pipe per command of the group
func (e *Executor) fanOut(tees *errgroup.Group, src *os.File, group []*proc, afterStart *[]io.Closer) error {
	writers := make([]*os.File, 0, len(group))
	for _, p := range group {
		r, w, err := os.Pipe()
		if err != nil {
			closeAll(asClosers(writers))
			return perr.Wrap(err, perr.ErrorCodeExecution, "pipe")
		}
		p.cmd.Stdin = r
		*afterStart = append(*afterStart, r)
		writers = append(writers, w)
	}
	tees.Go(func() error {
		defer closeAll(asClosers(writers))
		if src == nil {
			return nil
		}
		defer func() { _ = src.Close() }()
		ws := make([]io.Writer, len(writers))
		for i, w := range writers {
			ws[i] = w
		}
		_, err := io.Copy(io.MultiWriter(ws...), src)
		return err
	})
	return nil
}

func (e *Executor) command(ctx context.Context, stage dom.StageName, def dom.CommandDefinition, params dom.ParameterSet) (*proc, error) {
	line := Render(def.Command, params)
	argv, err := shellquote.Split(line)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeConfiguration, "stage %s: bad command template", stage)
	}
	if len(argv) == 0 {
		return nil, perr.Configf("stage %s: empty command", stage)
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if cmd.Err != nil {
		return nil, perr.Wrapf(cmd.Err, perr.ErrorCodeExecution, "stage %s: %s", stage, argv[0])
	}
	cmd.Dir = e.opts.Dir
	if len(e.opts.Env) > 0 {
		cmd.Env = append(os.Environ(), e.opts.Env...)
	}
	tb := &tailBuffer{limit: e.opts.StderrLimit}
	cmd.Stderr = tb
	return &proc{stage: stage, def: def, cmd: cmd, stderr: tb}, nil
}

// Render substitutes {name} placeholders with parameter values; unknown placeholders stay
func Render(tmpl string, params dom.ParameterSet) string {
	if len(params) == 0 {
		return tmpl
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", params[k])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func firstFailure(procs []*proc, codes []int, mask string) *dom.StageFailure {
	var first *dom.StageFailure
	for i, p := range procs {
		if p.def.Accepts(codes[i]) {
			continue
		}
		f := &dom.StageFailure{
			Stage:    p.stage,
			Command:  describe(p.cmd, mask),
			ExitCode: codes[i],
			Stderr:   p.stderr.String(),
		}
		// killed by a signal, usually a broken pipe behind the real failure
		if codes[i] < 0 {
			if first == nil {
				first = f
			}
			continue
		}
		return f
	}
	return first
}

func describe(cmd *exec.Cmd, mask string) string {
	s := cmd.Path
	if len(cmd.Args) > 1 {
		s += " " + shellquote.Join(cmd.Args[1:]...)
	}
	if mask != "" {
		s = strings.ReplaceAll(s, shellquote.Join(mask), "'***'")
		s = strings.ReplaceAll(s, mask, "***")
	}
	return s
}

// secret returns the unquoted password so it never reaches a diagnostic
func secret(params dom.ParameterSet) string {
	raw := params[dom.ParamPassword]
	if raw == "" {
		return ""
	}
	parts, err := shellquote.Split(raw)
	if err != nil || len(parts) != 1 {
		return ""
	}
	return parts[0]
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}

func createOutput(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeExecution, "output dir for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeExecution, "create output %s", path)
	}
	return f, nil
}

func closeAll(cs []io.Closer) {
	for _, c := range cs {
		_ = c.Close()
	}
}

func asClosers(fs []*os.File) []io.Closer {
	out := make([]io.Closer, len(fs))
	for i, f := range fs {
		out[i] = f
	}
	return out
}

// tailBuffer keeps the last limit bytes written to it
type tailBuffer struct {
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string { return strings.TrimSpace(string(t.buf)) }
