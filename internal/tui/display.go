package tui

import (
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/smileynet/toolbox/internal/assistant"
	"github.com/smileynet/toolbox/internal/logger"
)

// Frontend modes accepted by NewFrontend.
const (
	ModeAuto  = "auto"
	ModePlain = "plain"
	ModeTUI   = "tui"
)

// Frontend drives an assistant session until the user quits.
type Frontend interface {
	Run(ctx context.Context) error
}

// FrontendOptions configures frontend creation.
type FrontendOptions struct {
	In     io.Reader // Input source (default: os.Stdin).
	Out    io.Writer // Output destination (default: os.Stdout).
	Mode   string    // ModeAuto, ModePlain or ModeTUI. Empty means ModeAuto.
	Prompt string    // Prompt shown before each command.
}

// NewFrontend returns a TUI frontend when both ends are a terminal, or a
// plain line REPL otherwise. Mode overrides the detection.
func NewFrontend(d *assistant.Dispatcher, opts FrontendOptions) Frontend {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	plain := &PlainFrontend{repl: assistant.NewREPL(d, opts.Prompt), in: opts.In, out: opts.Out}
	switch opts.Mode {
	case ModePlain:
		return plain
	case ModeTUI:
	default:
		if !isTTY(opts.In) || !isTTY(opts.Out) {
			return plain
		}
	}
	return &TUIFrontend{d: d, in: opts.In, out: opts.Out, prompt: opts.Prompt, fallback: plain}
}

// isTTY reports whether f is connected to a terminal.
func isTTY(f any) bool {
	file, ok := f.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

// PlainFrontend runs the line-based REPL.
type PlainFrontend struct {
	repl *assistant.REPL
	in   io.Reader
	out  io.Writer
}

// Run reads commands from the input until quit or end of input.
func (f *PlainFrontend) Run(ctx context.Context) error {
	return f.repl.Run(ctx, f.in, f.out)
}

// TUIFrontend runs the assistant as a Bubble Tea program.
// Falls back to the plain REPL if the program fails to start.
type TUIFrontend struct {
	d        *assistant.Dispatcher
	in       io.Reader
	out      io.Writer
	prompt   string
	fallback Frontend
}

// Run starts the Bubble Tea program and blocks until it exits.
func (f *TUIFrontend) Run(ctx context.Context) error {
	p := tea.NewProgram(NewModel(f.d, WithPrompt(f.prompt)),
		tea.WithInput(f.in),
		tea.WithOutput(f.out),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.L().Warn("tui.fallback", "error", err)
		// The dispatcher keeps its book, so contacts added so far survive.
		return f.fallback.Run(ctx)
	}
	return nil
}
