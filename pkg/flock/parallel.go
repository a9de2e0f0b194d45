package flock

import "sync"

// parallelThreshold is the minimum population to fan the evaluate phase out.
// Smaller flocks evaluate on the calling goroutine.
const parallelThreshold = 64

// evaluateAll runs the evaluate phase over the whole population. Workers own
// disjoint chunks and their own scratch, and only read committed state, so
// the result does not depend on the number of workers.
func (f *Flock) evaluateAll() {
	n := len(f.agents)
	if n == 0 {
		return
	}
	if f.workers <= 1 || n < parallelThreshold {
		f.evaluateChunk(0, n, &f.scratches[0])
		return
	}

	chunk := (n + f.workers - 1) / f.workers
	var wg sync.WaitGroup
	for w := 0; w < f.workers; w++ {
		start := w * chunk
		if start >= n {
			break
		}
		end := min(start+chunk, n)
		wg.Add(1)
		go func(start, end int, scratch *Neighborhood) {
			defer wg.Done()
			f.evaluateChunk(start, end, scratch)
		}(start, end, &f.scratches[w])
	}
	wg.Wait()
}
