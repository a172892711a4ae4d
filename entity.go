package tablesink

import (
	"regexp"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
)

// The table service caps an entity at 255 columns, of which PartitionKey,
// RowKey and Timestamp are implicit. Individual property columns stop one
// short of the remaining 252 so a slot is always left for the aggregate.
const maxColumnsPerRow = 252

const (
	columnMessageTemplate      = "MessageTemplate"
	columnRenderedMessage      = "RenderedMessage"
	columnLevel                = "Level"
	columnException            = "Exception"
	columnAggregatedProperties = "AggregatedProperties"
)

// Valid column names are dot-separated word segments, none starting with a
// digit. Anything else cannot become a storage column and is excluded.
var columnNamePattern = regexp.MustCompile(`^[A-Za-z_]\w*(?:\.[A-Za-z_]\w*)*$`)

// entityMapper builds one storage entity per log event. It performs no I/O.
type entityMapper struct {
	keys                 KeyGenerator
	formatter            ValueFormatter
	rowKeySuffix         string
	allowlist            map[string]struct{}
	includeMessageFields bool
}

func (m *entityMapper) Map(event *LogEvent) *aztables.EDMEntity {
	entity := &aztables.EDMEntity{
		Entity: aztables.Entity{
			PartitionKey: m.keys.PartitionKey(event),
			RowKey:       m.keys.RowKey(event, m.rowKeySuffix),
			Timestamp:    aztables.EDMDateTime(event.Timestamp),
		},
		Properties: map[string]any{},
	}

	if m.includeMessageFields {
		entity.Properties[columnMessageTemplate] = event.MessageTemplate
		entity.Properties[columnRenderedMessage] = renderMessage(event, m.formatter)
	}
	entity.Properties[columnLevel] = event.Level.String()
	if event.Exception != "" {
		entity.Properties[columnException] = event.Exception
	}

	var overflow []Property
	for _, p := range event.Properties {
		if !columnNamePattern.MatchString(p.Name) {
			continue
		}
		if m.allowlist != nil {
			if _, ok := m.allowlist[p.Name]; !ok {
				continue
			}
		}
		// Once a property has overflowed, all later ones follow it, even
		// if the count would still permit a column. Column slots are never
		// reopened mid-row.
		if overflow == nil && len(entity.Properties) < maxColumnsPerRow-1 {
			entity.Properties[p.Name] = m.formatter.Format(p.Value)
		} else {
			overflow = append(overflow, p)
		}
	}

	if len(overflow) > 0 {
		aggregate := DictionaryValue{Entries: make([]DictionaryEntry, 0, len(overflow))}
		for _, p := range overflow {
			aggregate.Entries = append(aggregate.Entries, DictionaryEntry{
				Key:   ScalarValue{Value: p.Name},
				Value: p.Value,
			})
		}
		entity.Properties[columnAggregatedProperties] = m.formatter.Format(aggregate)
	}
	return entity
}
