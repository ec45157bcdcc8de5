// Package tree prints a directory hierarchy with colored icons.
package tree

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/toolbox/internal/logger"
)

// NotDirMessage is printed when the requested path is not an existing directory.
const NotDirMessage = "Вказаний шлях не є директорією або не існує."

const (
	dirIcon  = "📂"
	fileIcon = "📜"
	indentBy = "  "
)

// Walker prints directory trees to a writer. Colors follow the writer's
// terminal capabilities, so non-TTY output is plain text.
type Walker struct {
	w         io.Writer
	dirStyle  lipgloss.Style
	fileStyle lipgloss.Style
	errStyle  lipgloss.Style
}

// NewWalker creates a Walker that prints to w with styles rendered for w.
func NewWalker(w io.Writer) *Walker {
	r := lipgloss.NewRenderer(w)
	return &Walker{
		w:         w,
		dirStyle:  r.NewStyle().Foreground(lipgloss.Color("6")),
		fileStyle: r.NewStyle().Foreground(lipgloss.Color("2")),
		errStyle:  r.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

// Print validates that dir is an existing directory and prints its tree.
// A non-directory is reported with NotDirMessage and is not an error.
func (wk *Walker) Print(dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		_, _ = fmt.Fprintln(wk.w, wk.errStyle.Render(NotDirMessage))
		return nil
	}
	return wk.Walk(dir)
}

// Walk prints every entry under dir in directory order. Subdirectories are
// followed recursively, one indentation level per depth.
func (wk *Walker) Walk(dir string) error {
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return fmt.Errorf("tree: resolving %s: %w", dir, err)
	}
	return wk.walk(dir, 0, map[string]bool{real: true})
}

// walk prints dir's entries at level. onStack holds resolved paths of the
// directories being walked so symlink loops are printed but not re-entered.
func (wk *Walker) walk(dir string, level int, onStack map[string]bool) error {
	f, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("tree: opening %s: %w", dir, err)
	}
	entries, err := f.ReadDir(-1)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("tree: reading %s: %w", dir, err)
	}

	indent := strings.Repeat(indentBy, level)
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		info, err := os.Stat(path)
		if err != nil {
			logger.L().Debug("tree.skip", "path", path, "error", err)
			continue
		}

		switch {
		case info.IsDir():
			_, _ = fmt.Fprintf(wk.w, "%s%s\n", indent, wk.dirStyle.Render(dirIcon+" "+e.Name()))
			real, err := filepath.EvalSymlinks(path)
			if err != nil || onStack[real] {
				logger.L().Debug("tree.skip", "path", path, "reason", "loop")
				continue
			}
			onStack[real] = true
			err = wk.walk(path, level+1, onStack)
			delete(onStack, real)
			if err != nil {
				return err
			}
		case info.Mode().IsRegular():
			_, _ = fmt.Fprintf(wk.w, "%s|%s\n", indent, wk.fileStyle.Render(fileIcon+" "+e.Name()))
		default:
			logger.L().Debug("tree.skip", "path", path, "mode", info.Mode().String())
		}
	}
	return nil
}
