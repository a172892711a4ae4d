package tablesink

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// tableRouter resolves the currently active table from a base name plus a
// time-derived suffix, creating each dated table on first use. The cached
// handle is superseded, not destroyed, when the suffix rotates.
type tableRouter struct {
	sync.Mutex

	service      ServiceAPI
	baseName     string
	suffixLayout string

	suffix string
	table  TableAPI
}

// resolve returns the table for the suffix derived from now, reusing the
// cached handle while the suffix is unchanged. The whole check-create sequence
// runs under the mutex so that concurrent flushes never bootstrap the same
// dated table twice or observe a half-initialized handle.
func (r *tableRouter) resolve(ctx context.Context, now time.Time) (TableAPI, error) {
	r.Lock()
	defer r.Unlock()

	suffix := now.UTC().Format(r.suffixLayout)
	if r.table != nil && r.suffix == suffix {
		return r.table, nil
	}
	table, err := r.service.EnsureTable(ctx, r.baseName+suffix)
	if err != nil {
		return nil, errors.Wrap(err, "could not resolve log table")
	}
	r.suffix, r.table = suffix, table
	return table, nil
}
