package tablesink

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/google/uuid"
	"github.com/valyala/fastjson"
)

// ValueFormatter converts one log property value into a cell value native to
// the table service. Implementations must not fail for any variant of
// PropertyValue; unrepresentable values degrade to their string form.
type ValueFormatter interface {
	Format(value PropertyValue) any
}

// WithValueFormatter allows substituting the default property formatter.
func WithValueFormatter(formatter ValueFormatter) Option {
	return func(s *Sink) {
		s.mapper.formatter = formatter
	}
}

// defaultFormatter maps scalars to their closest native cell type and
// serializes composite values to JSON strings.
type defaultFormatter struct{}

func (f defaultFormatter) Format(value PropertyValue) any {
	switch v := value.(type) {
	case ScalarValue:
		return scalarCell(v.Value)
	case SequenceValue, StructureValue, DictionaryValue:
		return jsonString(value)
	default:
		return fmt.Sprintf("%v", value)
	}
}

func scalarCell(v any) any {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		return s
	case int8:
		return int32(s)
	case int16:
		return int32(s)
	case int32:
		return s
	case int:
		return aztables.EDMInt64(s)
	case int64:
		return aztables.EDMInt64(s)
	case uint32:
		return aztables.EDMInt64(s)
	case uint64:
		return aztables.EDMInt64(s)
	case float32:
		return float64(s)
	case float64:
		return s
	case time.Time:
		return aztables.EDMDateTime(s)
	case []byte:
		return aztables.EDMBinary(s)
	case uuid.UUID:
		return aztables.EDMGUID(s.String())
	default:
		return fmt.Sprintf("%v", s)
	}
}

// jsonString encodes a composite value as JSON. The fastjson arena keeps
// object members in insertion order, which the storage-side representation of
// ordered property sets relies on.
func jsonString(value PropertyValue) string {
	var arena fastjson.Arena
	return string(jsonValue(&arena, value).MarshalTo(nil))
}

func jsonValue(a *fastjson.Arena, value PropertyValue) *fastjson.Value {
	switch v := value.(type) {
	case ScalarValue:
		return jsonScalar(a, v.Value)
	case SequenceValue:
		arr := a.NewArray()
		for i, element := range v.Elements {
			arr.SetArrayItem(i, jsonValue(a, element))
		}
		return arr
	case StructureValue:
		obj := a.NewObject()
		if v.TypeTag != "" {
			obj.Set("_typeTag", a.NewString(v.TypeTag))
		}
		for _, field := range v.Fields {
			obj.Set(field.Name, jsonValue(a, field.Value))
		}
		return obj
	case DictionaryValue:
		obj := a.NewObject()
		for _, entry := range v.Entries {
			obj.Set(scalarString(entry.Key.Value), jsonValue(a, entry.Value))
		}
		return obj
	default:
		return a.NewString(fmt.Sprintf("%v", value))
	}
}

func jsonScalar(a *fastjson.Arena, v any) *fastjson.Value {
	switch s := v.(type) {
	case nil:
		return a.NewNull()
	case string:
		return a.NewString(s)
	case bool:
		if s {
			return a.NewTrue()
		}
		return a.NewFalse()
	case int:
		return a.NewNumberInt(s)
	case int8:
		return a.NewNumberInt(int(s))
	case int16:
		return a.NewNumberInt(int(s))
	case int32:
		return a.NewNumberInt(int(s))
	case int64:
		return a.NewNumberInt(int(s))
	case float32:
		return a.NewNumberFloat64(float64(s))
	case float64:
		return a.NewNumberFloat64(s)
	case time.Time:
		return a.NewString(s.Format(time.RFC3339Nano))
	default:
		return a.NewString(fmt.Sprintf("%v", s))
	}
}

func scalarString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// cellString renders a formatted cell for message substitution.
func cellString(cell any) string {
	switch c := cell.(type) {
	case string:
		return c
	case aztables.EDMInt64:
		return strconv.FormatInt(int64(c), 10)
	case aztables.EDMDateTime:
		return time.Time(c).Format(time.RFC3339Nano)
	case aztables.EDMGUID:
		return string(c)
	default:
		return fmt.Sprintf("%v", c)
	}
}

// renderMessage substitutes {Name} tokens in the event's message template with
// formatted property values. Doubled braces escape to literal braces; tokens
// naming no property are left as written.
func renderMessage(event *LogEvent, formatter ValueFormatter) string {
	var b strings.Builder
	t := event.MessageTemplate
	for i := 0; i < len(t); {
		switch {
		case t[i] == '{' && i+1 < len(t) && t[i+1] == '{':
			b.WriteByte('{')
			i += 2
		case t[i] == '}' && i+1 < len(t) && t[i+1] == '}':
			b.WriteByte('}')
			i += 2
		case t[i] == '{':
			end := strings.IndexByte(t[i:], '}')
			if end < 0 {
				b.WriteString(t[i:])
				return b.String()
			}
			if value, ok := event.property(t[i+1 : i+end]); ok {
				b.WriteString(cellString(formatter.Format(value)))
			} else {
				b.WriteString(t[i : i+end+1])
			}
			i += end + 1
		default:
			b.WriteByte(t[i])
			i++
		}
	}
	return b.String()
}
