package tablesink

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// partitionBucketWidth is how far apart two events can be while still sharing
// a default partition key.
const partitionBucketWidth = 5 * time.Minute

// KeyGenerator produces the partition and row keys for a log event. The sink
// accepts whatever strings a generator returns; row key uniqueness within a
// partition is the generator's responsibility.
type KeyGenerator interface {
	PartitionKey(event *LogEvent) string
	RowKey(event *LogEvent, suffix string) string
}

// WithKeyGenerator allows substituting the default key generator.
func WithKeyGenerator(keys KeyGenerator) Option {
	return func(s *Sink) {
		s.mapper.keys = keys
	}
}

// defaultKeyGenerator buckets events into five-minute partitions so that rows
// written close together share a partition and batch well.
type defaultKeyGenerator struct{}

func (defaultKeyGenerator) PartitionKey(event *LogEvent) string {
	bucket := event.Timestamp.UTC().Truncate(partitionBucketWidth)
	return fmt.Sprintf("0%019d", bucket.UnixNano())
}

func (defaultKeyGenerator) RowKey(event *LogEvent, suffix string) string {
	return fmt.Sprintf("%020d-%s%s", event.Timestamp.UTC().UnixNano(), uuid.NewString(), suffix)
}
