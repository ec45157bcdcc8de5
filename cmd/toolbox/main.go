package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"

	"github.com/smileynet/toolbox"
	"github.com/smileynet/toolbox/internal/aggregate"
	"github.com/smileynet/toolbox/internal/assistant"
	"github.com/smileynet/toolbox/internal/config"
	"github.com/smileynet/toolbox/internal/contacts"
	"github.com/smileynet/toolbox/internal/logger"
	"github.com/smileynet/toolbox/internal/records"
	"github.com/smileynet/toolbox/internal/tree"
	"github.com/smileynet/toolbox/internal/tui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Globals are flags shared by every command.
type Globals struct {
	Config string `help:"Extra config file layered over user and project config." type:"path"`
	Debug  bool   `help:"Write debug logs to the log directory."`
}

// CLI is the top-level command structure for toolbox.
type CLI struct {
	Globals

	Version kong.VersionFlag `help:"Show version." short:"V"`
	Salary  SalaryCmd        `cmd:"" help:"Print total and average salary from a name,salary file."`
	Cats    CatsCmd          `cmd:"" help:"Parse an id,name,age cats file."`
	Tree    TreeCmd          `cmd:"" help:"Print a directory tree."`
	Bot     BotCmd           `cmd:"" help:"Start the contact assistant bot."`
	Demo    DemoCmd          `cmd:"" help:"Run salary, cats and tree in sequence."`
}

// setup loads layered config from user, project and --config paths with env
// overrides, then starts file logging if enabled. The returned func flushes logs.
func (g *Globals) setup(command string) (*config.Config, func(), error) {
	cfg, err := config.LoadLayered(
		os.ExpandEnv("$HOME/.config/toolbox/config.yaml"),
		".toolbox/config.yaml",
		g.Config,
	)
	if err != nil {
		return nil, nil, err
	}
	cfg.ApplyEnv()
	if g.Debug {
		cfg.Log.Enabled = true
		cfg.Log.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	done := func() {}
	if cfg.Log.Enabled {
		cleanup, err := logger.Setup(logger.Config{Dir: cfg.Log.Dir, Debug: cfg.Log.Debug})
		if err != nil {
			return nil, nil, fmt.Errorf("logger: %w", err)
		}
		done = func() { _ = cleanup() }
	}
	logger.L().Info("command.start", "command", command, "version", version)
	return cfg, done, nil
}

// --- Salary command ---

// SalaryCmd sums and averages the last field of each line in a file.
type SalaryCmd struct {
	Path string `arg:"" optional:"" help:"Salary file (default: files.salary from config)."`
}

// Run executes the salary command.
func (s *SalaryCmd) Run(g *Globals) error {
	cfg, done, err := g.setup("salary")
	if err != nil {
		return fmt.Errorf("salary: %w", err)
	}
	defer done()

	path := s.Path
	if path == "" {
		path = cfg.Files.Salary
	}
	salaries, err := records.ReadSalaryFile(path)
	if err != nil {
		return fmt.Errorf("salary: %w", err)
	}
	return printSalary(os.Stdout, salaries)
}

// printSalary writes the total and average of salaries.
func printSalary(w io.Writer, salaries []int) error {
	sum, err := aggregate.Summarize(salaries)
	if err != nil {
		return err
	}
	logger.L().Debug("salary.summary", "summary", sum.String())
	_, _ = fmt.Fprintf(w, "Total salary: %d, average salary: %s\n", sum.Total, aggregate.FormatFloat(sum.Average))
	return nil
}

// --- Cats command ---

// CatsCmd parses a cats info file and prints its records.
type CatsCmd struct {
	Path   string `arg:"" optional:"" help:"Cats file (default: files.cats from config)."`
	Format string `help:"Output format." enum:"text,json,yaml" default:"text"`
}

// Run executes the cats command.
func (c *CatsCmd) Run(g *Globals) error {
	cfg, done, err := g.setup("cats")
	if err != nil {
		return fmt.Errorf("cats: %w", err)
	}
	defer done()

	path := c.Path
	if path == "" {
		path = cfg.Files.Cats
	}
	cats, err := records.ReadCatsFile(path)
	if err != nil {
		return fmt.Errorf("cats: %w", err)
	}
	return printCats(os.Stdout, cats, c.Format)
}

// printCats renders cats in the given format.
func printCats(w io.Writer, cats []records.Cat, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(cats, "", "  ")
		if err != nil {
			return fmt.Errorf("cats: marshaling: %w", err)
		}
		_, _ = fmt.Fprintln(w, string(data))
	case "yaml":
		data, err := yaml.Marshal(cats)
		if err != nil {
			return fmt.Errorf("cats: marshaling: %w", err)
		}
		_, _ = fmt.Fprint(w, string(data))
	default:
		for _, cat := range cats {
			_, _ = fmt.Fprintf(w, "id: %s, name: %s, age: %s\n", cat.ID, cat.Name, cat.Age)
		}
	}
	return nil
}

// --- Tree command ---

// TreeCmd prints a directory tree, prompting for the path when none is given.
type TreeCmd struct {
	Path string `arg:"" optional:"" help:"Directory to print (prompted if omitted)."`
}

// Run executes the tree command.
func (tc *TreeCmd) Run(g *Globals) error {
	_, done, err := g.setup("tree")
	if err != nil {
		return fmt.Errorf("tree: %w", err)
	}
	defer done()

	return printTree(os.Stdin, os.Stdout, tc.Path)
}

// printTree resolves the directory (prompting on in when path is empty) and
// prints it to w.
func printTree(in io.Reader, w io.Writer, path string) error {
	if path == "" {
		_, _ = fmt.Fprint(w, "Input path: ")
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("tree: reading path: %w", err)
		}
		path = strings.TrimSpace(line)
	}
	return tree.NewWalker(w).Print(path)
}

// --- Bot command ---

// BotCmd runs the contact assistant.
type BotCmd struct {
	NoTUI      bool `help:"Force the plain line REPL even if stdout is a TTY." default:"false"`
	Permissive bool `help:"Store contacts that fail validation, reporting the problem." default:"false"`
}

// Run executes the bot command.
func (b *BotCmd) Run(g *Globals) error {
	cfg, done, err := g.setup("bot")
	if err != nil {
		return fmt.Errorf("bot: %w", err)
	}
	defer done()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return b.run(ctx, os.Stdin, os.Stdout, cfg.Assistant)
}

// run builds the dispatcher and frontend, enabling testable wiring.
// A cancelled session is a normal exit.
func (b *BotCmd) run(ctx context.Context, in io.Reader, w io.Writer, acfg config.Assistant) error {
	var opts []contacts.Option
	if b.Permissive || acfg.Permissive {
		opts = append(opts, contacts.WithPermissive())
	}
	d := assistant.NewDispatcher(contacts.NewBook(opts...))

	mode := acfg.Frontend
	if b.NoTUI {
		mode = tui.ModePlain
	}
	f := tui.NewFrontend(d, tui.FrontendOptions{In: in, Out: w, Mode: mode, Prompt: acfg.Prompt})

	err := f.Run(ctx)
	logger.L().Info("bot.session.end", "contacts", d.Book().Len(), "error", err)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// --- Demo command ---

// DemoCmd prints the salary summary, the cats records and a directory tree.
// Input files come from disk when present, else from the embedded samples.
type DemoCmd struct {
	Path string `arg:"" optional:"" help:"Directory to print (prompted if omitted)."`
}

// Run executes the demo command.
func (dc *DemoCmd) Run(g *Globals) error {
	cfg, done, err := g.setup("demo")
	if err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	defer done()

	fsys := toolbox.OverlayFS(".", toolbox.Samples)
	return dc.run(fsys, cfg.Files, os.Stdin, os.Stdout)
}

// run executes the demo steps against fsys, enabling testable wiring.
func (dc *DemoCmd) run(fsys fs.FS, files config.Files, in io.Reader, w io.Writer) error {
	salaries, err := parseInput(fsys, files.Salary, records.ParseSalaries)
	if err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	if err := printSalary(w, salaries); err != nil {
		return fmt.Errorf("demo: %w", err)
	}

	cats, err := parseInput(fsys, files.Cats, records.ParseCats)
	if err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	if err := printCats(w, cats, "text"); err != nil {
		return fmt.Errorf("demo: %w", err)
	}

	return printTree(in, w, dc.Path)
}

// parseInput opens name from fsys, or from disk when name is not a relative
// fs path, and runs parse over it.
func parseInput[T any](fsys fs.FS, name string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	var (
		f   io.ReadCloser
		err error
	)
	if fs.ValidPath(name) {
		f, err = fsys.Open(name)
	} else {
		f, err = os.Open(name)
	}
	if err != nil {
		return zero, fmt.Errorf("opening %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	v, err := parse(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

// Exit codes.
const (
	exitSuccess = 0
	exitInput   = 1
	exitSetup   = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	if errors.Is(err, records.ErrMalformed) ||
		errors.Is(err, aggregate.ErrEmpty) ||
		errors.Is(err, fs.ErrNotExist) {
		return exitInput
	}
	return exitSetup
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("toolbox"),
		kong.Description("Small file utilities and a contact assistant bot."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run(&cli.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
