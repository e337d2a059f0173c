package restructure

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/sourcegraph/conc/pool"
)

// inferBatchSize bounds how many inference processes run at once.
const inferBatchSize = 10

// BuildPlan scans baseDir for video files and proposes a move for each
// one. Files are processed in batches of inferBatchSize: inference calls
// within a batch run concurrently, batches run strictly in sequence, and
// results are consumed in scan order so plan output is deterministic.
//
// A failure on one file only lands that file in Unparseable; it never
// aborts the batch or the plan. Only an invalid baseDir is an error.
func BuildPlan(ctx context.Context, kind MediaKind, baseDir string, oracle Oracle) (Plan, error) {
	files, err := Scan(baseDir, VideoExtensions)
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{Kind: kind}
	if len(files) == 0 {
		return plan, nil
	}

	for start := 0; start < len(files); start += inferBatchSize {
		end := min(start+inferBatchSize, len(files))
		batch := files[start:end]

		type inference struct {
			meta Metadata
			err  error
		}
		results := make([]inference, len(batch))

		p := pool.New()
		for i, path := range batch {
			i, path := i, path
			p.Go(func() {
				meta, err := oracle.Infer(ctx, path)
				results[i] = inference{meta: meta, err: err}
			})
		}
		p.Wait()

		for i, path := range batch {
			if results[i].err != nil {
				plan.Unparseable = append(plan.Unparseable, path)
				continue
			}
			meta := results[i].meta

			target, err := targetFor(kind, baseDir, meta)
			if err != nil {
				plan.Unparseable = append(plan.Unparseable, path)
				continue
			}

			// Already in place; not an error, just nothing to do.
			if samePath(path, target) {
				continue
			}

			finalTarget, err := ResolveCollision(target)
			if err != nil {
				plan.Unparseable = append(plan.Unparseable, path)
				continue
			}

			plan.Operations = append(plan.Operations, MoveOperation{
				Source:      path,
				Target:      finalTarget,
				DisplayName: filepath.Base(path),
			})

			// Subtitles follow their video into the post-collision
			// target directory, renamed to the video's new stem with
			// their own suffix kept (".en.srt" stays ".en.srt"), each
			// re-resolved for collision independently.
			targetDir := filepath.Dir(finalTarget)
			sourceStem := stem(filepath.Base(path))
			targetStem := stem(filepath.Base(finalTarget))
			for _, sub := range MatchSubtitles(path) {
				name := filepath.Base(sub)
				suffix := strings.TrimPrefix(name, sourceStem)
				subTarget, err := ResolveCollision(filepath.Join(targetDir, targetStem+suffix))
				if err != nil {
					plan.Unparseable = append(plan.Unparseable, sub)
					continue
				}
				plan.Operations = append(plan.Operations, MoveOperation{
					Source:      sub,
					Target:      subTarget,
					DisplayName: name,
					Subtitle:    true,
				})
			}
		}
	}

	return plan, nil
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// samePath compares two paths after resolving symlinks where possible.
func samePath(a, b string) bool {
	return canonical(a) == canonical(b)
}

func canonical(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return filepath.Clean(path)
}
