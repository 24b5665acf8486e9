package tracked

// Collect sweeps the registry: every record whose count is zero has its block
// released through the allocator that produced it (array form for array
// records) and is removed. Records are removed in place in a single stable
// pass. Returns true if at least one block was released.
//
// A block whose allocator reports an error on free is still dropped from the
// registry, so its address is never freed twice; the error is logged and
// counted in Stats().FreeErrors.
func (r *Registry[T]) Collect() bool {
	r.stats.Sweeps++
	freed := 0
	for i := 0; i < len(r.records); {
		rec := r.records[i]
		if rec.refs != 0 {
			i++
			continue
		}
		r.remove(i)
		r.release(rec)
		freed++
	}
	if freed > 0 {
		r.logger().Debug("tracked: sweep", "registry", r.name, "freed", freed, "live", len(r.records))
	}
	return freed > 0
}

func (r *Registry[T]) release(rec *record[T]) {
	var err error
	if rec.isArray {
		err = rec.owner.FreeArray(rec.block)
	} else {
		err = rec.owner.Free(&rec.block[0])
	}
	r.stats.Freed++
	if err != nil {
		r.stats.FreeErrors++
		r.logger().Warn("tracked: free failed",
			"registry", r.name, "addr", hexAddr(rec.addr), "allocator", rec.owner.Name(), "error", err)
	}
	rec.block = nil
}

// Shutdown releases every tracked block regardless of outstanding handles:
// all counts are forced to zero and one sweep runs. Handles still bound at
// this point become detached; releasing them later is a no-op. Returns the
// number of records released.
func (r *Registry[T]) Shutdown() int {
	n := len(r.records)
	for _, rec := range r.records {
		rec.refs = 0
	}
	r.Collect()
	r.epoch++
	if n > 0 {
		r.logger().Info("tracked: registry shut down", "registry", r.name, "released", n)
	}
	return n
}
