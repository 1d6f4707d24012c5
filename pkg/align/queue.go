package align

import "container/heap"

// queueItem pairs a state with its sort cost f = g + h. seq breaks f-ties
// by insertion order so pops are stable.
type queueItem struct {
	f   Cost
	seq uint64
	st  State
}

// frontier is the A* priority queue. The design pushes fresh entries
// instead of decreasing keys; stale entries are dropped by the visited mask
// and by the optimize gate at insertion time.
type frontier struct {
	items []queueItem
	seq   uint64
}

func (q *frontier) Len() int { return len(q.items) }

func (q *frontier) Less(i, j int) bool {
	if q.items[i].f != q.items[j].f {
		return q.items[i].f < q.items[j].f
	}
	return q.items[i].seq < q.items[j].seq
}

func (q *frontier) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *frontier) Push(x any) { q.items = append(q.items, x.(queueItem)) }

func (q *frontier) Pop() any {
	old := q.items
	n := len(old)
	it := old[n-1]
	q.items = old[:n-1]
	return it
}

// push enqueues st with sort cost f.
func (q *frontier) push(f Cost, st State) {
	q.seq++
	heap.Push(q, queueItem{f: f, seq: q.seq, st: st})
}

// pop removes and returns the item with the smallest f.
func (q *frontier) pop() queueItem {
	return heap.Pop(q).(queueItem)
}

func (q *frontier) empty() bool { return len(q.items) == 0 }
