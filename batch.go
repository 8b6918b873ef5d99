package dx7

import "golang.org/x/sync/errgroup"

// Job describes one note-render request for BatchRenderer.
type Job struct {
	Patch      Patch
	MIDINote   float64
	SampleRate float64
	DurationMS float64
}

// BatchRenderer runs independent Jobs concurrently, each through its
// own Voice and LFO, bounding the number of renders in flight at once.
// Voices share no state, so there is nothing to synchronize beyond the
// result slice each goroutine writes its own index of.
type BatchRenderer struct {
	// MaxConcurrency caps the number of jobs rendered in parallel. Zero
	// means unbounded (errgroup.SetLimit is not called).
	MaxConcurrency int
}

// Render renders every job and returns their outputs in the same
// order as jobs. If any job's render panics the goroutine, errgroup
// recovers nothing — render.go's GenerateSamples does not panic under
// well-formed Patch input (clamped at decode time), so Render has no
// error result.
func (r BatchRenderer) Render(jobs []Job) [][]float32 {
	var g errgroup.Group
	if r.MaxConcurrency > 0 {
		g.SetLimit(r.MaxConcurrency)
	}

	out := make([][]float32, len(jobs))
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			out[i] = GenerateSamples(job.Patch, job.MIDINote, job.SampleRate, job.DurationMS)
			return nil
		})
	}
	_ = g.Wait()

	return out
}
