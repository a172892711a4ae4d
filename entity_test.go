package tablesink

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"
)

// staticKeys makes entity assertions independent of the default generator's
// UUID row keys.
type staticKeys struct{}

func (staticKeys) PartitionKey(event *LogEvent) string { return "pk" }

func (staticKeys) RowKey(event *LogEvent, suffix string) string { return "rk" + suffix }

func newTestMapper() *entityMapper {
	return &entityMapper{keys: staticKeys{}, formatter: defaultFormatter{}}
}

func scalarProperty(name string, value any) Property {
	return Property{Name: name, Value: ScalarValue{Value: value}}
}

func TestMapReservedColumns(t *testing.T) {
	mapper := newTestMapper()
	mapper.rowKeySuffix = "|suffix"
	mapper.includeMessageFields = true

	entity := mapper.Map(&LogEvent{
		Timestamp:       time.Unix(1, 0),
		Level:           LevelWarning,
		MessageTemplate: "Hello {Name}",
		Exception:       "something broke",
		Properties:      []Property{scalarProperty("Name", "world")},
	})

	assert.Equal(t, "pk", entity.PartitionKey)
	assert.Equal(t, "rk|suffix", entity.RowKey)
	assert.Equal(t, "Hello {Name}", entity.Properties[columnMessageTemplate])
	assert.Equal(t, "Hello world", entity.Properties[columnRenderedMessage])
	assert.Equal(t, "Warning", entity.Properties[columnLevel])
	assert.Equal(t, "something broke", entity.Properties[columnException])
	assert.Equal(t, "world", entity.Properties["Name"])
}

func TestMapNoExceptionColumnWithoutException(t *testing.T) {
	entity := newTestMapper().Map(&LogEvent{Level: LevelInformation})

	assert.Equal(t, "Information", entity.Properties[columnLevel])
	assert.NotContains(t, entity.Properties, columnException)
	assert.NotContains(t, entity.Properties, columnMessageTemplate)
	assert.NotContains(t, entity.Properties, columnRenderedMessage)
}

func TestMapInvalidNamesExcluded(t *testing.T) {
	entity := newTestMapper().Map(&LogEvent{Properties: []Property{
		scalarProperty("0bad", 1),
		scalarProperty("has space", 2),
		scalarProperty("trailing.", 3),
		scalarProperty("a.0b", 4),
		scalarProperty("ok.name", 5),
		scalarProperty("_x1", 6),
	}})

	assert.NotContains(t, entity.Properties, "0bad")
	assert.NotContains(t, entity.Properties, "has space")
	assert.NotContains(t, entity.Properties, "trailing.")
	assert.NotContains(t, entity.Properties, "a.0b")
	assert.Contains(t, entity.Properties, "ok.name")
	assert.Contains(t, entity.Properties, "_x1")

	// Exclusion is filtering, not overflow.
	assert.NotContains(t, entity.Properties, columnAggregatedProperties)
}

func TestMapAllowlistDropsNotAggregates(t *testing.T) {
	mapper := newTestMapper()
	mapper.allowlist = map[string]struct{}{"kept": {}}

	entity := mapper.Map(&LogEvent{Properties: []Property{
		scalarProperty("kept", 1),
		scalarProperty("dropped", 2),
	}})

	assert.Contains(t, entity.Properties, "kept")
	assert.NotContains(t, entity.Properties, "dropped")
	assert.NotContains(t, entity.Properties, columnAggregatedProperties)
}

func TestMapOverflowAggregation(t *testing.T) {
	mapper := newTestMapper()
	mapper.includeMessageFields = true

	properties := make([]Property, 260)
	for i := range properties {
		properties[i] = scalarProperty(fmt.Sprintf("p%03d", i+1), i+1)
	}

	entity := mapper.Map(&LogEvent{
		Level:           LevelInformation,
		MessageTemplate: "overflow",
		Properties:      properties,
	})

	// 2 message columns + Level + 248 individual properties + 1 aggregate.
	assert.Len(t, entity.Properties, maxColumnsPerRow)
	assert.Contains(t, entity.Properties, "p248")
	assert.NotContains(t, entity.Properties, "p249")

	aggregated, ok := entity.Properties[columnAggregatedProperties].(string)
	require.True(t, ok)

	parsed, err := fastjson.Parse(aggregated)
	require.NoError(t, err)
	obj, err := parsed.Object()
	require.NoError(t, err)
	assert.Equal(t, 12, obj.Len())
	assert.Equal(t, 249, parsed.GetInt("p249"))
	assert.Equal(t, 260, parsed.GetInt("p260"))
}

func TestMapOverflowRatchetDoesNotReopen(t *testing.T) {
	mapper := newTestMapper()

	// Duplicate names keep the column count flat, so room would remain if
	// the threshold were re-evaluated. It must not be.
	properties := make([]Property, 0, 300)
	for i := 0; i < 250; i++ {
		properties = append(properties, scalarProperty(fmt.Sprintf("p%03d", i+1), i+1))
	}
	for i := 0; i < 50; i++ {
		properties = append(properties, scalarProperty("p001", i))
	}

	entity := mapper.Map(&LogEvent{Properties: properties})

	aggregated, ok := entity.Properties[columnAggregatedProperties].(string)
	require.True(t, ok)
	parsed, err := fastjson.Parse(aggregated)
	require.NoError(t, err)
	obj, err := parsed.Object()
	require.NoError(t, err)
	assert.Equal(t, 1, obj.Len()) // repeated key, last value wins
	assert.Equal(t, 49, parsed.GetInt("p001"))
}
