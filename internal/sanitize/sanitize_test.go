package sanitize

import (
	"errors"
	"testing"
)

func TestPathAcceptsDeviceNames(t *testing.T) {
	good := []string{
		"/dev/sda",
		"/dev/disk/by-id/ata-ST8000NM0075_ZA1DKJT7",
		"/devices/pci0000:00/0000:00:1f.2/ata1/host0/target0:0:0/0:0:0:0/block/sda",
		"/dev/mapper/vg0-root",
		"/dev/disk/by-path/pci-0000:0d:00.0-sas-exp0x5003048020b3fe7f-phy0-lun-0",
		"dm-0",
	}
	for _, s := range good {
		if _, err := Path(s); err != nil {
			t.Errorf("Path(%q) rejected: %v", s, err)
		}
	}
}

func TestPathRejectsTraversalAndBadChars(t *testing.T) {
	bad := []string{
		"",
		"../etc/passwd",
		"/dev/disk/by-id/../../etc/passwd",
		"/dev/sda/..",
		"..",
		"/dev/sd a",
		"/dev/sda;rm",
		"/dev/sda\n",
		"name$with$dollars",
	}
	for _, s := range bad {
		if _, err := Path(s); !errors.Is(err, ErrUnsafePath) {
			t.Errorf("Path(%q) = %v, want ErrUnsafePath", s, err)
		}
	}
}

func TestPathAllowsInnerDots(t *testing.T) {
	// Dots are legal as long as no component is exactly "..".
	ok := []string{"/dev/disk/by-id/wwn-0x5000c500...a", "/dev/v1.2.3", "a..b"}
	for _, s := range ok {
		if _, err := Path(s); err != nil {
			t.Errorf("Path(%q) rejected: %v", s, err)
		}
	}
}

func TestDevNum(t *testing.T) {
	for _, s := range []string{"8:0", "259:12", "0:0"} {
		if _, err := DevNum(s); err != nil {
			t.Errorf("DevNum(%q) rejected: %v", s, err)
		}
	}
	for _, s := range []string{"", "8", "8:", ":0", "8:0:1", "a:b", "8.0", " 8:0"} {
		if _, err := DevNum(s); !errors.Is(err, ErrBadDevNum) {
			t.Errorf("DevNum(%q) = %v, want ErrBadDevNum", s, err)
		}
	}
}

func TestValueStripping(t *testing.T) {
	cases := map[string]string{
		`"VBOX HARDDISK"`:  "VBOX HARDDISK",
		`  spaced  `:       "spaced",
		`'single'`:         "single",
		`" nested quote "`: "nested quote",
		`""`:               "",
		`   `:              "",
		`plain`:            "plain",
	}
	for in, want := range cases {
		if got := Value(in); got != want {
			t.Errorf("Value(%q) = %q, want %q", in, got, want)
		}
	}
}
