package reconcile

// pool is an ordered set of row handles that matching consumes. Handles
// keep their original relative order as rows are removed.
type pool []int

func newPool(rows []int) pool {
	p := make(pool, len(rows))
	copy(p, rows)
	return p
}

func (p pool) len() int { return len(p) }
func (p pool) at(i int) int { return p[i] }
func (p pool) empty() bool { return len(p) == 0 }
func (p *pool) remove(i int) { *p = append((*p)[:i], (*p)[i+1:]...) }
