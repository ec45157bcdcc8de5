package assistant

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// REPL reads commands line by line and prints replies as plain text.
type REPL struct {
	d      *Dispatcher
	prompt string
}

// NewREPL creates a REPL over d. An empty prompt falls back to MsgPrompt.
func NewREPL(d *Dispatcher, prompt string) *REPL {
	if prompt == "" {
		prompt = MsgPrompt
	}
	return &REPL{d: d, prompt: prompt}
}

// Run loops until a quit command, end of input, or ctx cancellation.
// End of input is treated as an exit.
func (r *REPL) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	_, _ = fmt.Fprintln(out, MsgWelcome)
	br := bufio.NewReader(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, _ = fmt.Fprint(out, r.prompt)
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("assistant: reading input: %w", err)
		}
		if err != nil && line == "" {
			_, _ = fmt.Fprintln(out)
			_, _ = fmt.Fprintln(out, MsgFarewell)
			return nil
		}
		reply := r.d.Handle(strings.TrimRight(line, "\r\n"))
		for _, l := range reply.Lines {
			_, _ = fmt.Fprintln(out, l)
		}
		if reply.Quit {
			return nil
		}
	}
}
