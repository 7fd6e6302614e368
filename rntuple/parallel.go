package rntuple

import (
	"sync"

	"github.com/lobis/uproot-go/format"
)

// ColumnOp is one column's decode request and result, the unit submitted
// to Reader.DecodeColumns. After DecodeColumns returns, Values holds the
// decoded contiguous buffer (the same value DecodeColumn would return) or
// Err holds the reason the column could not be decoded.
type ColumnOp struct {
	ColumnID   uint32
	ColumnType format.ColumnType

	Values interface{}
	Err    error
}

// DecodeColumns decodes every op's column across the cluster range
// [firstCluster, lastCluster), fanning the independent columns out to one
// goroutine each (columns share no mutable state and each
// decoder owns its destination buffer, so the fan-out needs no locks).
// The page-list envelopes covering the range are fetched up front, before
// any goroutine starts, so the workers only ever read the shared page
// index. A column that fails records the failure in its own op's Err; the
// returned error is non-nil only when the shared page index itself could
// not be read, in which case no op was attempted.
func (r *Reader) DecodeColumns(ops []ColumnOp, firstCluster, lastCluster int) error {
	for c := firstCluster; c < lastCluster; c++ {
		gi, _, err := r.clusterGroupOf(c)
		if err != nil {
			return err
		}
		if _, err := r.pageList(gi); err != nil {
			return err
		}
	}

	wg := sync.WaitGroup{}
	wg.Add(len(ops))
	for i := range ops {
		go func(op *ColumnOp) {
			defer wg.Done()
			op.Values, op.Err = r.DecodeColumn(op.ColumnID, op.ColumnType, firstCluster, lastCluster)
		}(&ops[i])
	}
	wg.Wait()
	return nil
}
