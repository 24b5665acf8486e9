package tracked

import (
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// maxDumpElems caps how many array elements a dump line shows.
const maxDumpElems = 8

// Dump writes a human-readable listing of the registry: one line per record
// with its address, count, shape and value, followed by allocator totals.
// The format is for debugging and may change.
func (r *Registry[T]) Dump(w io.Writer) error {
	p := message.NewPrinter(language.English)

	if _, err := p.Fprintf(w, "registry %s: %d live record(s), %d freed, %d sweep(s)\n",
		r.name, len(r.records), r.stats.Freed, r.stats.Sweeps); err != nil {
		return err
	}
	for _, rec := range r.records {
		var err error
		if rec.isArray {
			shown := rec.block[:min(len(rec.block), maxDumpElems)]
			more := ""
			if len(rec.block) > maxDumpElems {
				more = " ..."
			}
			_, err = p.Fprintf(w, "  [%#x] refs=%d array len=%d via %s value=%v%s\n",
				rec.addr, rec.refs, rec.length, rec.owner.Name(), shown, more)
		} else {
			_, err = p.Fprintf(w, "  [%#x] refs=%d scalar via %s value=%+v\n",
				rec.addr, rec.refs, rec.owner.Name(), rec.block[0])
		}
		if err != nil {
			return err
		}
	}

	st := r.alloc.Stats()
	_, err := p.Fprintf(w, "  allocator %s: %d alloc(s), %d free(s), %d live byte(s)\n",
		r.alloc.Name(), st.Allocs, st.Frees, st.LiveBytes)
	if err != nil {
		return err
	}
	if r.alloc != r.heap {
		hs := r.heap.Stats()
		_, err = p.Fprintf(w, "  adopted heap: %d block(s), %d live byte(s)\n", hs.Live(), hs.LiveBytes)
	}
	return err
}
