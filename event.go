package tablesink

import (
	"time"
)

// Level is the severity of a log event.
type Level int

const (
	LevelVerbose Level = iota
	LevelDebug
	LevelInformation
	LevelWarning
	LevelError
	LevelFatal
)

var levelNames = [...]string{"Verbose", "Debug", "Information", "Warning", "Error", "Fatal"}

func (l Level) String() string {
	if l < LevelVerbose || l > LevelFatal {
		return "Unknown"
	}
	return levelNames[l]
}

// LogEvent is a single structured log event to be shipped. Events are consumed
// read-only by the sink.
type LogEvent struct {
	Timestamp       time.Time
	Level           Level
	MessageTemplate string

	// Exception holds the full textual description of an associated error,
	// if any.
	Exception string

	// Properties are mapped to columns in the order given here.
	Properties []Property
}

// Property is one named value attached to a LogEvent.
type Property struct {
	Name  string
	Value PropertyValue
}

// PropertyValue is the closed set of value shapes a log property may take.
// The formatter switches exhaustively over these, so adding a variant is a
// compile-time extension point.
type PropertyValue interface {
	propertyValue()
}

// ScalarValue holds a single primitive value.
type ScalarValue struct {
	Value any
}

// SequenceValue holds an ordered list of values.
type SequenceValue struct {
	Elements []PropertyValue
}

// StructureValue holds named fields, optionally tagged with the name of the
// type they were captured from.
type StructureValue struct {
	TypeTag string
	Fields  []Property
}

// DictionaryValue holds scalar-keyed entries, in insertion order.
type DictionaryValue struct {
	Entries []DictionaryEntry
}

// DictionaryEntry is one key-value pair of a DictionaryValue.
type DictionaryEntry struct {
	Key   ScalarValue
	Value PropertyValue
}

func (ScalarValue) propertyValue()     {}
func (SequenceValue) propertyValue()   {}
func (StructureValue) propertyValue()  {}
func (DictionaryValue) propertyValue() {}

func (e *LogEvent) property(name string) (PropertyValue, bool) {
	for _, p := range e.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}
