package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"github.com/satishbabariya/expand-go/cli/internal/config"
	"github.com/satishbabariya/expand-go/collect"
	"github.com/satishbabariya/expand-go/hirexpand"
)

// workspace is a database holding the source files named on the command
// line. File i of paths has FileID i.
type workspace struct {
	db       *hirexpand.Database
	paths    []string
	texts    []string
	maxDepth int
}

func (g *globals) openWorkspace(paths []string) (*workspace, error) {
	db := hirexpand.NewDatabase(hirexpand.Options{
		MemoCapacity: g.cfg.MemoCapacity,
		// Failures are reported from collected results instead.
		Sink: hirexpand.SinkFunc(func(*hirexpand.ExpandError) {}),
	})
	db.SetEnv(g.cfg.Env)

	w := &workspace{db: db, paths: paths, texts: make([]string, len(paths)), maxDepth: g.cfg.MaxDepth}
	for i, p := range paths {
		db.SetFilePath(hirexpand.FileID(i), p)
		if err := w.load(i); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func (w *workspace) load(i int) error {
	data, err := afero.ReadFile(config.AppFs, w.paths[i])
	if err != nil {
		return fmt.Errorf("read %s: %w", w.paths[i], err)
	}
	w.texts[i] = string(data)
	w.db.SetFileText(hirexpand.FileID(i), w.texts[i])
	return nil
}

func (w *workspace) expand(ctx context.Context, i int) (*collect.Result, error) {
	return collect.ExpandAll(ctx, w.db, hirexpand.FileID(i), collect.Options{MaxDepth: w.maxDepth})
}

// label names a site the way it is written.
func label(s collect.Site) string {
	if s.Kind == collect.Derive {
		return fmt.Sprintf("derive(%s)", s.Name)
	}
	return s.Name + "!"
}

// position returns the 1-based line and column of offset in text.
func position(text string, offset int) (int, int) {
	offset = min(max(offset, 0), len(text))
	before := text[:offset]
	return strings.Count(before, "\n") + 1, offset - strings.LastIndex(before, "\n")
}

// location renders where a site originates in its real file.
func (w *workspace) location(s collect.Site) string {
	span, ok := w.db.OriginalSpan(s.Node)
	if !ok || int(span.FileID) >= len(w.paths) {
		return "?"
	}
	line, col := position(w.texts[span.FileID], span.Start)
	return fmt.Sprintf("%s:%d:%d", w.paths[span.FileID], line, col)
}
