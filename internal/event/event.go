package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Action is the udev event action.
type Action int

const (
	ActionAdd Action = iota
	ActionChange
	ActionRemove
)

func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionChange:
		return "change"
	case ActionRemove:
		return "remove"
	}
	return "unknown"
}

// ParseAction maps the ACTION field to an Action.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(s) {
	case "add":
		return ActionAdd, nil
	case "change":
		return ActionChange, nil
	case "remove":
		return ActionRemove, nil
	}
	return 0, fmt.Errorf("unrecognized action %q", s)
}

// DevType classifies the device for metadata purposes.
type DevType int

const (
	TypeOther DevType = iota
	TypeDisk
	TypePartition
)

func ParseDevType(s string) DevType {
	switch strings.ToLower(s) {
	case "disk":
		return TypeDisk
	case "partition":
		return TypePartition
	}
	return TypeOther
}

// Event is one parsed device-change record.
type Event struct {
	Action    Action
	DevName   string // /dev/sda
	DevPath   string // /devices/.../block/sda
	DevLinks  []string
	Major     string
	Minor     string
	DevType   DevType
	Holders   string // space-separated maj:min list, unresolved
	Slaves    string
	Timestamp int64             // µs since epoch, source time
	Attrs     map[string]string // opaque attribute fields
}

// Num returns the major:minor pair as recorded.
func (e *Event) Num() string {
	return e.Major + ":" + e.Minor
}

// Base returns the last component of the device node path.
func (e *Event) Base() string {
	if i := strings.LastIndexByte(e.DevName, '/'); i >= 0 {
		return e.DevName[i+1:]
	}
	return e.DevName
}

// ErrIrrelevant marks records that are valid JSON but not ours: wrong
// subsystem or wrong capture tag. These are dropped without a warning.
var ErrIrrelevant = errors.New("not a captured block event")

// Fields of the journald export consumed directly; everything else that
// looks like an attribute is kept opaquely in Attrs.
const (
	fieldAction    = "ACTION"
	fieldSubsystem = "SUBSYSTEM"
	fieldSyslogID  = "SYSLOG_IDENTIFIER"
	fieldDevName   = "DEVNAME"
	fieldDevPath   = "DEVPATH"
	fieldDevLinks  = "DEVLINKS"
	fieldDevType   = "DEVTYPE"
	fieldMajor     = "MAJOR"
	fieldMinor     = "MINOR"
	fieldHolders   = "HOLDERS"
	fieldSlaves    = "SLAVES"
	fieldSourceTS  = "_SOURCE_REALTIME_TIMESTAMP"
)

// Parse decodes one journald JSON line into an Event. Records for other
// subsystems or other writers return ErrIrrelevant. Structural problems
// (bad JSON, missing required fields, unknown action) return a
// descriptive error; the caller logs and skips.
func Parse(line []byte, tag string) (*Event, error) {
	var raw map[string]any
	if err := json.Unmarshal(line, &raw); err != nil {
		return nil, fmt.Errorf("malformed record: %w", err)
	}

	if field(raw, fieldSubsystem) != "block" {
		return nil, ErrIrrelevant
	}
	if tag != "" && field(raw, fieldSyslogID) != tag {
		return nil, ErrIrrelevant
	}

	action, err := ParseAction(field(raw, fieldAction))
	if err != nil {
		return nil, err
	}

	ev := &Event{
		Action:  action,
		DevName: field(raw, fieldDevName),
		DevPath: field(raw, fieldDevPath),
		Major:   field(raw, fieldMajor),
		Minor:   field(raw, fieldMinor),
		DevType: ParseDevType(field(raw, fieldDevType)),
		Holders: field(raw, fieldHolders),
		Slaves:  field(raw, fieldSlaves),
		Attrs:   make(map[string]string),
	}

	if ev.DevName == "" {
		return nil, errors.New("record has no DEVNAME")
	}
	if ev.DevPath == "" {
		return nil, errors.New("record has no DEVPATH")
	}
	if ev.Major == "" || ev.Minor == "" {
		return nil, errors.New("record has no MAJOR/MINOR")
	}

	if links := field(raw, fieldDevLinks); links != "" {
		ev.DevLinks = strings.Fields(links)
	}

	ts := field(raw, fieldSourceTS)
	if ts == "" {
		return nil, errors.New("record has no source timestamp")
	}
	ev.Timestamp, err = strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad source timestamp %q: %w", ts, err)
	}

	for k, v := range raw {
		switch k {
		case fieldAction, fieldSubsystem, fieldSyslogID, fieldDevName,
			fieldDevPath, fieldDevLinks, fieldDevType, fieldMajor,
			fieldMinor, fieldHolders, fieldSlaves, fieldSourceTS:
			continue
		}
		// Journald internal fields (cursor, boot id, ...) are not
		// device attributes.
		if strings.HasPrefix(k, "_") {
			continue
		}
		if s, ok := v.(string); ok {
			ev.Attrs[k] = s
		}
	}

	return ev, nil
}

// field coerces a journald value to string. Exported journal entries
// carry most values as strings already; numbers show up when a capture
// was post-processed, so both are accepted.
func field(raw map[string]any, key string) string {
	switch v := raw[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	}
	return ""
}
