package paymentsdb

import (
	"cmp"
	"slices"

	"github.com/mrz1836/lexe/pkg/types"
)

// view is one filtered, ordered projection of the store.
type view int

const (
	viewAll view = iota
	viewPending
	viewPendingNotJunk
	viewFinalized
	viewFinalizedNotJunk
	numViews
)

func (v view) contains(p *types.BasicPayment) bool {
	switch v {
	case viewAll:
		return true
	case viewPending:
		return p.IsPending()
	case viewPendingNotJunk:
		return p.IsPending() && !p.Junk
	case viewFinalized:
		return p.IsFinalized()
	case viewFinalizedNotJunk:
		return p.IsFinalized() && !p.Junk
	default:
		return false
	}
}

// newestFirst orders created indices from most to least recent.
func newestFirst(a, b types.PaymentCreatedIndex) int {
	return cmp.Compare(b, a)
}

// index is the in-memory state rebuilt from disk on open. Every view is
// kept sorted newest first, so its length doubles as the view's counter.
type index struct {
	byCreated  map[types.PaymentCreatedIndex]*types.BasicPayment
	views      [numViews][]types.PaymentCreatedIndex
	maxUpdated *types.PaymentUpdatedIndex
}

func newIndex() *index {
	return &index{byCreated: make(map[types.PaymentCreatedIndex]*types.BasicPayment)}
}

// upsert inserts or fully replaces p and reports whether it was new.
func (ix *index) upsert(p *types.BasicPayment) bool {
	old, existed := ix.byCreated[p.Index]

	for v := view(0); v < numViews; v++ {
		was := existed && v.contains(old)
		is := v.contains(p)
		switch {
		case was && !is:
			ix.remove(v, p.Index)
		case !was && is:
			ix.insert(v, p.Index)
		}
	}

	ix.byCreated[p.Index] = p
	if ix.maxUpdated == nil || ix.maxUpdated.Less(p.UpdatedIndex) {
		u := p.UpdatedIndex
		ix.maxUpdated = &u
	}
	return !existed
}

func (ix *index) insert(v view, idx types.PaymentCreatedIndex) {
	pos, found := slices.BinarySearchFunc(ix.views[v], idx, newestFirst)
	if found {
		return
	}
	ix.views[v] = slices.Insert(ix.views[v], pos, idx)
}

func (ix *index) remove(v view, idx types.PaymentCreatedIndex) {
	pos, found := slices.BinarySearchFunc(ix.views[v], idx, newestFirst)
	if !found {
		return
	}
	ix.views[v] = slices.Delete(ix.views[v], pos, pos+1)
}

func (ix *index) count(v view) int {
	return len(ix.views[v])
}

func (ix *index) at(v view, i int) *types.BasicPayment {
	if i < 0 || i >= len(ix.views[v]) {
		return nil
	}
	return ix.byCreated[ix.views[v][i]]
}

// nextLocal returns an updated index above every stored one without
// claiming a Seq the node could assign later.
func (ix *index) nextLocal() types.PaymentUpdatedIndex {
	if ix.maxUpdated == nil {
		return types.PaymentUpdatedIndex{Local: 1}
	}
	return types.PaymentUpdatedIndex{Seq: ix.maxUpdated.Seq, Local: ix.maxUpdated.Local + 1}
}
