// Package colpool implements the ColumnPool: a deduplicating, aging cache of
// Columns keyed by content fingerprint, shared across pricing rounds at a
// single B&B node.
//
// Access is serialized under a mutex.
// The pricing loop itself mutates the pool from a single goroutine, but the
// pool's counters are also read by a concurrently-scraped metrics gauge, so
// the pool guards its own state rather than relying on its caller's
// threading discipline.
package colpool

import (
	"sync"

	"k8s.io/klog/v2"

	"github.com/scipgcg/pricing/pkg/column"
	"github.com/scipgcg/pricing/pkg/master"
	"github.com/scipgcg/pricing/pkg/pricingerr"
)

// Target is where ColumnPool.Price moves improving columns: PriceStore, kept
// narrow so colpool does not import pricestore and create a cycle (pricestore
// needs no reverse dependency on colpool's internals).
type Target interface {
	AddCol(col *column.Column, force bool)
}

// Pool is the deduplicating, aging cache of columns carried across rounds.
type Pool struct {
	logger klog.Logger

	mu      sync.Mutex
	cols    []*column.Column
	index   map[column.Fingerprint][]*column.Column

	ageLimit int // -1 disables eviction
	node     master.NodeIdentity
	nodeSet  bool
	inFarkas bool
}

// New builds an empty ColumnPool with the given age limit; -1 disables
// aging entirely.
func New(logger klog.Logger, ageLimit int) *Pool {
	return &Pool{
		logger:   logger,
		index:    make(map[column.Fingerprint][]*column.Column),
		ageLimit: ageLimit,
	}
}

// Len reports the current number of owned columns. Safe to call from a
// metrics-scraping goroutine while a round is in flight.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cols)
}

// Add takes ownership of col if no existing entry satisfies IsEqual,
// returning added=true. Otherwise the caller retains ownership and added is
// false.
func (p *Pool) Add(col *column.Column) (added bool) {
	if col.IsEmpty() {
		// The zero column must be rejected before entering the pool.
		p.logger.V(4).Info("rejecting empty column", "block", col.Block)
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	fp := column.Hash(col)
	for _, existing := range p.index[fp] {
		if column.IsEqual(existing, col) {
			return false
		}
	}

	p.index[fp] = append(p.index[fp], col)
	p.cols = append(p.cols, col)
	p.logger.V(5).Info("added column to pool", "block", col.Block, "poolSize", len(p.cols))
	return true
}

// Remove removes col from the pool. If freeIt, the reference is dropped
// entirely (Go's GC reclaims it); if not, the caller is expected to still
// hold a reference elsewhere. Returns a pricingerr Invalid error if col is
// not present.
func (p *Pool) Remove(col *column.Column, freeIt bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.removeLocked(col)
}

func (p *Pool) removeLocked(col *column.Column) error {
	fp := column.Hash(col)
	bucket := p.index[fp]
	found := -1
	for i, c := range bucket {
		if c == col {
			found = i
			break
		}
	}
	if found == -1 {
		return pricingerr.Invalidf("colpool.remove.absent", "column not present in pool")
	}
	p.index[fp] = append(bucket[:found], bucket[found+1:]...)
	if len(p.index[fp]) == 0 {
		delete(p.index, fp)
	}
	for i, c := range p.cols {
		if c == col {
			p.cols = append(p.cols[:i], p.cols[i+1:]...)
			break
		}
	}
	return nil
}

// Clear destroys all contents.
func (p *Pool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cols = nil
	p.index = make(map[column.Fingerprint][]*column.Column)
}

// SetFarkas toggles the Farkas evaluation mode used by subsequent Price /
// UpdateRedcostAndCoefs calls.
func (p *Pool) SetFarkas(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFarkas = on
}

// UpdateNode clears the pool if the active B&B node has changed since the
// last call, and records the new node number: a no-op within the same node.
func (p *Pool) UpdateNode(node master.NodeIdentity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.nodeSet && p.node == node {
		return
	}
	p.cols = nil
	p.index = make(map[column.Fingerprint][]*column.Column)
	p.node = node
	p.nodeSet = true
}

// DualContext supplies everything Price/UpdateRedcostAndCoefs need to
// recompute a column's master coefficients and reduced cost: the master rows
// and duals current for this round.
type DualContext struct {
	Rows            []master.Row
	LinkRows        []master.Row
	Duals           master.DualValues
	ObjCoefOf       func(varID string) float64
	BranchingDualOf func(b master.BlockIndex) float64
}

// UpdateRedcostAndCoefs recomputes master coefficients and reduced cost for
// every pool entry against the given dual context and the pool's current
// Farkas mode.
func (p *Pool) UpdateRedcostAndCoefs(ctx DualContext) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.cols {
		c.ComputeMasterCoefs(ctx.Rows, ctx.LinkRows)
		var branchingDual float64
		if ctx.BranchingDualOf != nil {
			branchingDual = ctx.BranchingDualOf(c.Block)
		}
		c.ComputeReducedCost(p.inFarkas, ctx.Duals, ctx.ObjCoefOf, branchingDual)
	}
}

// Price scans all pool entries in reverse; any with a dual-feasibly negative
// reduced cost is moved to target and its age reset to 0. Others age, and any
// entry whose age now exceeds ageLimit is dropped — unless ageLimit == -1,
// which disables eviction entirely.
func (p *Pool) Price(target Target) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := len(p.cols) - 1; i >= 0; i-- {
		c := p.cols[i]
		if c.RedCost < -column.Tolerance {
			target.AddCol(c, false)
			c.Age = 0
			_ = p.removeLocked(c)
			continue
		}

		c.UpdateAge(true)
		if p.ageLimit != -1 && c.Age > p.ageLimit {
			p.logger.V(5).Info("evicting aged column", "block", c.Block, "age", c.Age, "ageLimit", p.ageLimit)
			_ = p.removeLocked(c)
		}
	}
}
