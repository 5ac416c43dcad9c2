// Package batch evaluates many documents with bounded concurrency.
package batch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/underwrite-cli/internal/model"
	"github.com/sells-group/underwrite-cli/internal/rules"
)

// Outcome is the result of evaluating one document. Exactly one of
// Assessment and Err is set.
type Outcome struct {
	Path       string
	Assessment *rules.Assessment
	Err        error
}

// OK reports whether the document evaluated successfully.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// EvaluateFunc evaluates the document at path.
type EvaluateFunc func(ctx context.Context, path string) (*rules.Assessment, error)

// Discover returns the .json files under root in lexical order. If root is a
// file it is returned as-is.
func Discover(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: stat %s", root)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".json") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "batch: walk %s", root)
	}

	sort.Strings(paths)
	return paths, nil
}

// Run evaluates every path with at most concurrency documents in flight.
// A failing document never stops the others. Outcomes are returned in the
// same order as paths. Once ctx is cancelled, documents not yet started are
// marked with the context error.
func Run(ctx context.Context, paths []string, concurrency int, eval EvaluateFunc) []Outcome {
	outcomes := make([]Outcome, len(paths))
	if len(paths) == 0 {
		zap.L().Info("batch: no documents found")
		return outcomes
	}
	if concurrency < 1 {
		concurrency = 1
	}

	zap.L().Info("batch: processing documents",
		zap.Int("documents", len(paths)),
		zap.Int("concurrency", concurrency),
	)

	g := new(errgroup.Group)
	g.SetLimit(concurrency)

	for i, path := range paths {
		i, path := i, path
		outcomes[i].Path = path
		if err := ctx.Err(); err != nil {
			outcomes[i].Err = eris.Wrap(err, "batch: cancelled")
			continue
		}
		g.Go(func() error {
			log := zap.L().With(zap.String("path", path))
			if err := ctx.Err(); err != nil {
				outcomes[i].Err = eris.Wrap(err, "batch: cancelled")
				return nil
			}

			a, err := eval(ctx, path)
			if err != nil {
				outcomes[i].Err = err
				log.Warn("batch: evaluation failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}
			outcomes[i].Assessment = a
			log.Debug("batch: evaluation complete")
			return nil
		})
	}

	_ = g.Wait()

	s := Summarize(outcomes)
	zap.L().Info("batch: complete",
		zap.Int("succeeded", s.Succeeded),
		zap.Int("failed", s.Failed),
	)
	return outcomes
}

// Summary tallies a batch.
type Summary struct {
	Total     int                               `json:"total"`
	Succeeded int                               `json:"succeeded"`
	Failed    int                               `json:"failed"`
	Flags     map[model.FlagName]map[string]int `json:"flags"`
}

// Summarize counts successes, failures and how often each flag value was
// assigned per flag name.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{
		Total: len(outcomes),
		Flags: make(map[model.FlagName]map[string]int, len(model.FlagNames())),
	}
	for _, name := range model.FlagNames() {
		s.Flags[name] = make(map[string]int)
	}
	for _, o := range outcomes {
		if !o.OK() {
			s.Failed++
			continue
		}
		s.Succeeded++
		if o.Assessment == nil {
			continue
		}
		for name, f := range o.Assessment.Flags {
			if _, ok := s.Flags[name]; !ok {
				s.Flags[name] = make(map[string]int)
			}
			s.Flags[name][f.String()]++
		}
	}
	return s
}
