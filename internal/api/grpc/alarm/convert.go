package alarm

import (
	"errors"
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// Message field names.
const (
	fieldID      = "id"
	fieldTime    = "time"
	fieldTone    = "tone"
	fieldActive  = "active"
	fieldMinutes = "minutes"
	fieldKind    = "kind"
	fieldEntry   = "entry"
	fieldAt      = "at"
	fieldError   = "error"
)

// errFieldType is returned when a message field has the wrong type.
var errFieldType = errors.New("unexpected field type")

// EntryView is the wire form of an entry as seen by clients.
type EntryView struct {
	ID     string
	Time   string
	Tone   string
	Active bool
}

// EventView is the wire form of an event as seen by clients.
type EventView struct {
	Kind  string
	Entry EntryView
	At    time.Time
	Error string
}

// ToProtoEntry converts a domain entry to a Struct message.
func ToProtoEntry(entry domain.Entry) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			fieldID:     structpb.NewStringValue(entry.ID),
			fieldTime:   structpb.NewStringValue(entry.Time.String()),
			fieldTone:   structpb.NewStringValue(entry.Tone),
			fieldActive: structpb.NewBoolValue(entry.Active),
		},
	}
}

// ToProtoEntries converts a sequence of entries to a ListValue message.
func ToProtoEntries(entries []domain.Entry) *structpb.ListValue {
	list := &structpb.ListValue{
		Values: make([]*structpb.Value, 0, len(entries)),
	}

	for _, entry := range entries {
		list.Values = append(list.Values, structpb.NewStructValue(ToProtoEntry(entry)))
	}

	return list
}

// ToProtoEvent converts a domain event to a Struct message.
func ToProtoEvent(event domain.Event) *structpb.Struct {
	fields := map[string]*structpb.Value{
		fieldKind:  structpb.NewStringValue(string(event.Kind)),
		fieldEntry: structpb.NewStructValue(ToProtoEntry(event.Entry)),
		fieldAt:    structpb.NewStringValue(event.At.Format(time.RFC3339)),
	}

	if event.Err != nil {
		fields[fieldError] = structpb.NewStringValue(event.Err.Error())
	}

	return &structpb.Struct{Fields: fields}
}

// FromProtoEntry reads an entry message produced by ToProtoEntry.
func FromProtoEntry(msg *structpb.Struct) (EntryView, error) {
	var (
		view EntryView
		err  error
	)

	if view.ID, err = stringField(msg, fieldID); err != nil {
		return EntryView{}, err
	}

	if view.Time, err = stringField(msg, fieldTime); err != nil {
		return EntryView{}, err
	}

	if view.Tone, err = stringField(msg, fieldTone); err != nil {
		return EntryView{}, err
	}

	if view.Active, err = boolField(msg, fieldActive); err != nil {
		return EntryView{}, err
	}

	return view, nil
}

// FromProtoEntries reads a list produced by ToProtoEntries.
func FromProtoEntries(list *structpb.ListValue) ([]EntryView, error) {
	views := make([]EntryView, 0, len(list.GetValues()))

	for i, value := range list.GetValues() {
		msg := value.GetStructValue()
		if msg == nil {
			return nil, fmt.Errorf("entry %d: %w", i, errFieldType)
		}

		view, err := FromProtoEntry(msg)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}

		views = append(views, view)
	}

	return views, nil
}

// FromProtoEvent reads an event message produced by ToProtoEvent.
func FromProtoEvent(msg *structpb.Struct) (EventView, error) {
	kind, err := stringField(msg, fieldKind)
	if err != nil {
		return EventView{}, err
	}

	entryMsg := msg.GetFields()[fieldEntry].GetStructValue()
	if entryMsg == nil {
		return EventView{}, fmt.Errorf("%s: %w", fieldEntry, errFieldType)
	}

	entry, err := FromProtoEntry(entryMsg)
	if err != nil {
		return EventView{}, err
	}

	atText, err := stringField(msg, fieldAt)
	if err != nil {
		return EventView{}, err
	}

	at, err := time.Parse(time.RFC3339, atText)
	if err != nil {
		return EventView{}, fmt.Errorf("%s: %w", fieldAt, err)
	}

	return EventView{
		Kind:  kind,
		Entry: entry,
		At:    at,
		Error: msg.GetFields()[fieldError].GetStringValue(),
	}, nil
}

// NewAddRequest builds the AddAlarm request message.
func NewAddRequest(timeSpec, toneName string) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			fieldTime: structpb.NewStringValue(timeSpec),
			fieldTone: structpb.NewStringValue(toneName),
		},
	}
}

// NewSnoozeRequest builds the SnoozeAlarm request message.
// Zero minutes are left out so the server applies its default.
func NewSnoozeRequest(id string, minutes int) *structpb.Struct {
	msg := &structpb.Struct{
		Fields: map[string]*structpb.Value{
			fieldID: structpb.NewStringValue(id),
		},
	}

	if minutes != 0 {
		msg.Fields[fieldMinutes] = structpb.NewNumberValue(float64(minutes))
	}

	return msg
}

func stringField(msg *structpb.Struct, name string) (string, error) {
	value, ok := msg.GetFields()[name]
	if !ok {
		return "", fmt.Errorf("%s: missing", name)
	}

	text, ok := value.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%s: %w", name, errFieldType)
	}

	return text.StringValue, nil
}

func boolField(msg *structpb.Struct, name string) (bool, error) {
	value, ok := msg.GetFields()[name]
	if !ok {
		return false, fmt.Errorf("%s: missing", name)
	}

	flag, ok := value.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, fmt.Errorf("%s: %w", name, errFieldType)
	}

	return flag.BoolValue, nil
}

// intField reads a whole number carried as a protobuf number value.
func intField(msg *structpb.Struct, name string) (int, error) {
	value, ok := msg.GetFields()[name]
	if !ok {
		return 0, fmt.Errorf("%s: missing", name)
	}

	number, ok := value.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%s: %w", name, errFieldType)
	}

	if number.NumberValue != math.Trunc(number.NumberValue) ||
		math.Abs(number.NumberValue) > math.MaxInt32 {
		return 0, fmt.Errorf("%s: %v is not a whole number", name, number.NumberValue)
	}

	return int(number.NumberValue), nil
}
