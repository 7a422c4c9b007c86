package event

import (
	"encoding/json"
	"errors"
	"testing"
)

const testTag = "blkwatch"

func makeLine(t *testing.T, fields map[string]any) []byte {
	t.Helper()
	base := map[string]any{
		"ACTION":                     "add",
		"SUBSYSTEM":                  "block",
		"SYSLOG_IDENTIFIER":          testTag,
		"DEVNAME":                    "/dev/sda",
		"DEVPATH":                    "/devices/pci0000:00/0000:00:1f.2/host0/target0:0:0/0:0:0:0/block/sda",
		"MAJOR":                      "8",
		"MINOR":                      "0",
		"DEVTYPE":                    "disk",
		"_SOURCE_REALTIME_TIMESTAMP": "1724800000000000",
	}
	for k, v := range fields {
		if v == nil {
			delete(base, k)
			continue
		}
		base[k] = v
	}
	line, err := json.Marshal(base)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return line
}

func TestParseBasicAdd(t *testing.T) {
	line := makeLine(t, map[string]any{
		"DEVLINKS": "/dev/disk/by-id/ata-VBOX /dev/disk/by-path/pci-0000",
		"ID_MODEL": "VBOX HARDDISK",
		"HOLDERS":  "252:0",
	})

	ev, err := Parse(line, testTag)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if ev.Action != ActionAdd {
		t.Errorf("action = %v, want add", ev.Action)
	}
	if ev.DevName != "/dev/sda" || ev.Base() != "sda" {
		t.Errorf("devname = %q base = %q", ev.DevName, ev.Base())
	}
	if ev.Num() != "8:0" {
		t.Errorf("num = %q, want 8:0", ev.Num())
	}
	if ev.DevType != TypeDisk {
		t.Errorf("devtype = %v, want disk", ev.DevType)
	}
	if len(ev.DevLinks) != 2 {
		t.Errorf("devlinks = %v, want 2 entries", ev.DevLinks)
	}
	if ev.Timestamp != 1724800000000000 {
		t.Errorf("timestamp = %d", ev.Timestamp)
	}
	if ev.Attrs["ID_MODEL"] != "VBOX HARDDISK" {
		t.Errorf("ID_MODEL attr = %q", ev.Attrs["ID_MODEL"])
	}
	if ev.Holders != "252:0" {
		t.Errorf("holders = %q", ev.Holders)
	}
}

func TestParseIgnoresOtherSubsystemsAndTags(t *testing.T) {
	for _, fields := range []map[string]any{
		{"SUBSYSTEM": "usb"},
		{"SYSLOG_IDENTIFIER": "sshd"},
	} {
		_, err := Parse(makeLine(t, fields), testTag)
		if !errors.Is(err, ErrIrrelevant) {
			t.Errorf("fields %v: err = %v, want ErrIrrelevant", fields, err)
		}
	}
}

func TestParseRejectsUnknownAction(t *testing.T) {
	_, err := Parse(makeLine(t, map[string]any{"ACTION": "bind"}), testTag)
	if err == nil || errors.Is(err, ErrIrrelevant) {
		t.Fatalf("err = %v, want action error", err)
	}
}

func TestParseRejectsMissingRequiredFields(t *testing.T) {
	for _, missing := range []string{"DEVNAME", "DEVPATH", "MAJOR", "_SOURCE_REALTIME_TIMESTAMP"} {
		_, err := Parse(makeLine(t, map[string]any{missing: nil}), testTag)
		if err == nil {
			t.Errorf("missing %s: expected error", missing)
		}
	}
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	if _, err := Parse([]byte("{not json"), testTag); err == nil {
		t.Fatal("expected error for malformed record")
	}
}

func TestParseSkipsJournalInternalFields(t *testing.T) {
	ev, err := Parse(makeLine(t, map[string]any{
		"__CURSOR":    "s=abc",
		"_BOOT_ID":    "deadbeef",
		"QUEUE_ZONED": "none",
	}), testTag)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := ev.Attrs["__CURSOR"]; ok {
		t.Error("__CURSOR leaked into attrs")
	}
	if _, ok := ev.Attrs["_BOOT_ID"]; ok {
		t.Error("_BOOT_ID leaked into attrs")
	}
	if ev.Attrs["QUEUE_ZONED"] != "none" {
		t.Error("QUEUE_ZONED attr missing")
	}
}

func TestParseNumericMajorMinor(t *testing.T) {
	// Post-processed captures sometimes carry numbers instead of
	// strings.
	ev, err := Parse(makeLine(t, map[string]any{"MAJOR": 8, "MINOR": 1}), testTag)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if ev.Num() != "8:1" {
		t.Errorf("num = %q, want 8:1", ev.Num())
	}
}

func TestParseActionStrings(t *testing.T) {
	for s, want := range map[string]Action{"add": ActionAdd, "change": ActionChange, "REMOVE": ActionRemove} {
		got, err := ParseAction(s)
		if err != nil || got != want {
			t.Errorf("ParseAction(%q) = %v, %v", s, got, err)
		}
	}
}
