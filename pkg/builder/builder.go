// Package builder is the interactive command loop of ansible-write. It maps
// operator commands onto the playbook document, drives the form for each
// new task and hands accepted top-level tasks to the execution coordinator.
//
// The builder is a single synchronous actor: every UI call blocks until the
// operator answers, and tasks run one at a time on the caller's goroutine.
package builder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mahespth/ansible-write/pkg/execute"
	"github.com/mahespth/ansible-write/pkg/form"
	"github.com/mahespth/ansible-write/pkg/modules"
	"github.com/mahespth/ansible-write/pkg/playbook"
	"github.com/mahespth/ansible-write/pkg/runner"
)

// Builder runs one editing session.
type Builder struct {
	state    *Context
	ui       UI
	provider modules.Provider
	coord    *execute.Coordinator
	logger   *slog.Logger
}

// New creates a builder over a fresh Context. logger may be nil.
func New(ui UI, provider modules.Provider, r runner.Runner, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	b := &Builder{
		state:    NewContext(),
		ui:       ui,
		provider: provider,
		logger:   logger,
	}
	b.coord = execute.New(r, b, logger)
	return b
}

// Context returns the session state.
func (b *Builder) Context() *Context { return b.state }

// Load replaces the session document, e.g. with a playbook given on the
// command line.
func (b *Builder) Load(doc *playbook.Document) {
	b.state.replace(doc)
	b.refresh()
}

// Report implements execute.Reporter by logging each result.
func (b *Builder) Report(r execute.Report) {
	b.ui.Log(Entry{Level: LevelResult, Title: r.Label, Text: r.Text(), Failed: r.Failed(), Skipped: r.Skipped})
}

// Run shows the prompt and dispatches commands until exit or until the UI
// is closed. Command errors are shown to the operator and do not end the
// loop.
func (b *Builder) Run(ctx context.Context) error {
	b.refresh()
	for {
		line, err := b.ui.Prompt(PromptLabel())
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		exit, err := b.Dispatch(ctx, line)
		if exit {
			return nil
		}
		if err != nil && KindOf(err) == 0 {
			// The UI failed rather than the command.
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// Dispatch executes one command line. It returns exit=true for exit. A
// rejected or failed command returns a *CommandError after it has been
// shown to the operator; any other error comes from the UI itself.
func (b *Builder) Dispatch(ctx context.Context, line string) (bool, error) {
	word, args := splitLine(line)
	if word == "" {
		return false, nil
	}
	cmd, ok := lookupCommand(word)
	if !ok {
		return false, b.fail(cmdErr(KindInvalidCommand, "", "unknown command %q; type help for the list", word))
	}
	if cmd.run == nil {
		b.logger.Info("session closed", "nodes", len(b.state.Doc.Nodes))
		return true, nil
	}
	b.logger.Debug("command", "command", cmd.name, "args", args, "state", b.state.State().String())
	return false, b.fail(cmd.run(b, ctx, args))
}

// fail shows a command error. Task failures are already in the result
// pane through Report.
func (b *Builder) fail(err error) error {
	if err == nil {
		return nil
	}
	var ce *CommandError
	if !errors.As(err, &ce) {
		return err
	}
	b.logger.Info("command rejected", "command", ce.Command, "kind", ce.Kind.String(), "error", ce.Err)
	if ce.Kind != KindTaskExecution {
		b.ui.Log(Entry{Level: LevelError, Title: ce.Kind.String(), Text: ce.Error()})
	}
	return err
}

func (b *Builder) info(format string, args ...any) {
	b.ui.Log(Entry{Level: LevelInfo, Text: fmt.Sprintf(format, args...)})
}

// refresh renders the document into the preview pane.
func (b *Builder) refresh() {
	out, err := playbook.Render(b.state.Doc)
	if err != nil {
		b.ui.Log(Entry{Level: LevelError, Title: "render", Text: err.Error()})
		return
	}
	b.ui.Preview(out)
}

// ask prompts for a value, using args[i] when the operator supplied it on
// the command line.
func (b *Builder) ask(args []string, i int, label string) (string, error) {
	if i < len(args) {
		return args[i], nil
	}
	return b.ui.Prompt(label)
}

// requireState rejects cmd unless the session is in want.
func (b *Builder) requireState(cmd string, want State) error {
	if got := b.state.State(); got != want {
		if want == Idle {
			return cmdErr(KindInvalidContext, cmd, "not allowed inside a block; run end_block first")
		}
		return cmdErr(KindInvalidContext, cmd, "no block is open; run start_block first")
	}
	return nil
}

// createTask prompts for the name and module, resolves the schema and
// drives the form. It returns nil, nil when the operator cancels.
func (b *Builder) createTask(ctx context.Context, cmd string) (*playbook.Task, error) {
	name, err := b.ui.Prompt("Enter task name: ")
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name == "" {
		return nil, cmdErr(KindEmptyRequiredInput, cmd, "task name must not be empty")
	}
	module, err := b.ui.Prompt("Enter Ansible module (e.g. ping, shell): ")
	if err != nil {
		return nil, err
	}
	if module = strings.TrimSpace(module); module == "" {
		return nil, cmdErr(KindEmptyRequiredInput, cmd, "module must not be empty")
	}

	schema, err := b.schema(ctx, cmd, module)
	if err != nil {
		return nil, err
	}
	return b.edit(form.New(name, module, schema))
}

// schema resolves a module schema. Provider lookup failures are command
// errors; anything else after cancellation ends the session.
func (b *Builder) schema(ctx context.Context, cmd, module string) (*modules.Schema, error) {
	schema, err := b.provider.Options(ctx, module)
	if err == nil {
		return schema, nil
	}
	if !modules.IsUnavailable(err) && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return nil, &CommandError{Kind: KindSchemaUnavailable, Command: cmd, Err: err}
}

// edit drives a form session until Accept or Cancel.
func (b *Builder) edit(s *form.Session) (*playbook.Task, error) {
	var message string
	for {
		nav, err := b.ui.Navigate(viewOf(s, message))
		if err != nil {
			return nil, err
		}
		message = ""
		switch nav.Kind {
		case NavUp:
			s.MoveCursor(-1)
		case NavDown:
			s.MoveCursor(1)
		case NavJump:
			if err := s.Select(nav.Index); err != nil {
				message = err.Error()
			}
		case NavConfirm:
			act, err := s.Ask(b.ui.Prompt)
			if errors.Is(err, form.ErrEmptyName) {
				message = err.Error()
				continue
			}
			if err != nil {
				return nil, err
			}
			switch act := act.(type) {
			case form.Info:
				message = act.Message
			case form.Accepted:
				return act.Task, nil
			case form.Cancelled:
				return nil, nil
			}
		}
	}
}

// viewOf snapshots a session for the UI.
func viewOf(s *form.Session, message string) View {
	v := View{
		Title:   fmt.Sprintf("%s (%s)", s.Name(), s.Module()),
		Cursor:  s.Cursor(),
		Message: message,
	}
	for _, f := range s.Fields() {
		row := Row{Key: f.Key(), Value: s.Display(f)}
		switch f := f.(type) {
		case form.NameField:
			row.Label = "name"
		case form.ModuleField:
			row.Label = "module"
		case form.OptionField:
			row.Label = f.Option.Name
			row.Help = f.Option.Summary()
			row.Required = f.Option.Required
		case form.AcceptControl:
			row.Label, row.Control = "Accept", true
		case form.CancelControl:
			row.Label, row.Control = "Cancel", true
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}

func (b *Builder) cmdAdd(ctx context.Context, _ []string) error {
	if err := b.requireState("add", Idle); err != nil {
		return err
	}
	task, err := b.createTask(ctx, "add")
	if err != nil {
		return err
	}
	if task == nil {
		b.info("task creation cancelled")
		return nil
	}
	b.state.Doc.Append(task)
	b.refresh()
	b.logger.Info("task added", "task", task.Name, "module", task.Module)

	if busy, ok := b.ui.(Busy); ok {
		busy.SetBusy("running "+task.Name, true)
		defer busy.SetBusy("", false)
	}
	rep := b.coord.RunTask(ctx, b.state.Doc, task)
	if rep.Failed() {
		if rep.Err != nil {
			return &CommandError{Kind: KindTaskExecution, Command: "add", Err: rep.Err}
		}
		return cmdErr(KindTaskExecution, "add", "task %q failed", task.Name)
	}
	return nil
}

func (b *Builder) cmdStartBlock(_ context.Context, args []string) error {
	if err := b.requireState("start_block", Idle); err != nil {
		return err
	}
	blk := &playbook.Block{Name: strings.Join(args, " ")}
	b.state.Doc.Append(blk)
	b.state.openBlock(blk)
	b.refresh()
	b.info("block started; use add_to_block, add_rescue, add_always and end_block")
	return nil
}

func (b *Builder) addToSection(ctx context.Context, cmd string, section playbook.Section) error {
	if err := b.requireState(cmd, InBlock); err != nil {
		return err
	}
	task, err := b.createTask(ctx, cmd)
	if err != nil {
		return err
	}
	if task == nil {
		b.info("task creation cancelled")
		return nil
	}
	b.state.Block().Add(section, task)
	b.refresh()
	b.logger.Info("task added to block", "task", task.Name, "module", task.Module, "section", section.String())
	return nil
}

func (b *Builder) cmdAddToBlock(ctx context.Context, _ []string) error {
	return b.addToSection(ctx, "add_to_block", playbook.SectionBody)
}

func (b *Builder) cmdAddRescue(ctx context.Context, _ []string) error {
	return b.addToSection(ctx, "add_rescue", playbook.SectionRescue)
}

func (b *Builder) cmdAddAlways(ctx context.Context, _ []string) error {
	return b.addToSection(ctx, "add_always", playbook.SectionAlways)
}

func (b *Builder) cmdEndBlock(_ context.Context, _ []string) error {
	if err := b.requireState("end_block", InBlock); err != nil {
		return err
	}
	blk := b.state.Block()
	b.state.closeBlock()
	b.info("block closed with %d task(s), %d rescue, %d always", len(blk.Body), len(blk.Rescue), len(blk.Always))
	return nil
}

func (b *Builder) cmdSetTarget(_ context.Context, args []string) error {
	selector := strings.Join(args, " ")
	if selector == "" {
		var err error
		if selector, err = b.ui.Prompt("Enter target hosts or groups: "); err != nil {
			return err
		}
	}
	if err := b.state.Doc.SetTarget(selector); err != nil {
		return &CommandError{Kind: KindEmptyRequiredInput, Command: "set_target", Err: err}
	}
	b.refresh()
	b.info("target set to %s", b.state.Doc.TargetPattern())
	return nil
}

// nameValue reads NAME and VALUE from args or prompts. The value is the
// rest of the line.
func (b *Builder) nameValue(cmd, kind string, args []string) (string, string, error) {
	name, err := b.ask(args, 0, fmt.Sprintf("Enter %s name: ", kind))
	if err != nil {
		return "", "", err
	}
	var value string
	if len(args) > 1 {
		value = strings.Join(args[1:], " ")
	} else if value, err = b.ui.Prompt(fmt.Sprintf("Enter %s value: ", kind)); err != nil {
		return "", "", err
	}
	name, value = strings.TrimSpace(name), strings.TrimSpace(value)
	if name == "" || value == "" {
		return "", "", cmdErr(KindEmptyRequiredInput, cmd, "%s name and value must not be empty", kind)
	}
	return name, value, nil
}

func (b *Builder) cmdEnv(_ context.Context, args []string) error {
	name, value, err := b.nameValue("env", "environment variable", args)
	if err != nil {
		return err
	}
	b.state.Doc.SetEnv(name, value)
	b.refresh()
	b.info("environment variable %s set to %s", name, value)
	return nil
}

func (b *Builder) cmdVar(_ context.Context, args []string) error {
	name, value, err := b.nameValue("var", "Ansible variable", args)
	if err != nil {
		return err
	}
	b.state.Doc.SetVar(name, form.Coerce(value))
	b.refresh()
	b.info("Ansible variable %s set to %s", name, value)
	return nil
}

func (b *Builder) cmdRun(ctx context.Context, _ []string) error {
	if len(b.state.Doc.Nodes) == 0 {
		b.info("nothing to run")
		return nil
	}
	if busy, ok := b.ui.(Busy); ok {
		busy.SetBusy("running playbook", true)
		defer busy.SetBusy("", false)
	}
	reports := b.coord.RunAll(ctx, b.state.Doc)
	var failed, skipped int
	for _, r := range reports {
		switch {
		case r.Skipped:
			skipped++
		case r.Failed():
			failed++
		}
	}
	b.info("ran %d node(s): %d failed, %d skipped", len(reports), failed, skipped)
	if failed > 0 {
		return cmdErr(KindTaskExecution, "run", "%d of %d task(s) failed", failed, len(reports)-skipped)
	}
	return nil
}

func (b *Builder) cmdEdit(ctx context.Context, args []string) error {
	raw, err := b.ask(args, 0, "Enter task number: ")
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 || n > len(b.state.Doc.Nodes) {
		return cmdErr(KindInvalidArgument, "edit", "task number %q is not between 1 and %d", raw, len(b.state.Doc.Nodes))
	}
	task, ok := b.state.Doc.Nodes[n-1].(*playbook.Task)
	if !ok {
		return cmdErr(KindInvalidArgument, "edit", "node %d is a block", n)
	}
	schema, err := b.schema(ctx, "edit", task.Module)
	if err != nil {
		return err
	}
	edited, err := b.edit(form.Edit(task, schema))
	if err != nil {
		return err
	}
	if edited == nil {
		b.info("edit cancelled")
		return nil
	}
	if err := b.state.Doc.Replace(n-1, edited); err != nil {
		return &CommandError{Kind: KindInvalidArgument, Command: "edit", Err: err}
	}
	b.refresh()
	b.info("task %d updated; use run to execute the playbook", n)
	return nil
}

func (b *Builder) cmdImport(_ context.Context, args []string) error {
	if err := b.requireState("import", Idle); err != nil {
		return err
	}
	path, err := b.ask(args, 0, "Enter filename of the playbook to import: ")
	if err != nil {
		return err
	}
	if path = strings.TrimSpace(path); path == "" {
		return cmdErr(KindEmptyRequiredInput, "import", "filename must not be empty")
	}
	doc, verrs, err := playbook.ValidateFile(path)
	if err != nil {
		return &CommandError{Kind: KindInvalidArgument, Command: "import", Err: err}
	}
	if len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		return cmdErr(KindInvalidArgument, "import", "%s: %s", path, strings.Join(msgs, "; "))
	}
	b.state.replace(doc)
	b.refresh()
	tasks, blocks := doc.Counts()
	b.info("playbook imported from %s: %d task(s), %d block(s)", path, tasks, blocks)
	return nil
}

func (b *Builder) cmdSave(_ context.Context, args []string) error {
	path, err := b.ask(args, 0, "Enter filename to save playbook (e.g. playbook.yml): ")
	if err != nil {
		return err
	}
	if path = strings.TrimSpace(path); path == "" {
		return cmdErr(KindEmptyRequiredInput, "save", "filename must not be empty")
	}
	if err := playbook.Save(path, b.state.Doc); err != nil {
		return &CommandError{Kind: KindInvalidArgument, Command: "save", Err: err}
	}
	b.info("playbook saved to %s", path)
	return nil
}

func (b *Builder) cmdDisplay(_ context.Context, _ []string) error {
	b.refresh()
	return nil
}

func (b *Builder) cmdHelp(_ context.Context, _ []string) error {
	b.ui.Log(Entry{Level: LevelHelp, Title: "help", Text: HelpMarkdown()})
	return nil
}
