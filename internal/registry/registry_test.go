package registry

import "testing"

func TestPutGetEvict(t *testing.T) {
	r := New()
	r.Put(&Device{Num: "8:0", Name: "/dev/sda", DevPath: "/devices/a"})

	if d := r.Get("8:0"); d == nil || d.Name != "/dev/sda" {
		t.Fatalf("Get = %+v", r.Get("8:0"))
	}
	if r.Get("8:1") != nil {
		t.Error("Get of unknown num returned a device")
	}

	r.Evict("8:0")
	if r.Get("8:0") != nil || r.Len() != 0 {
		t.Error("entry survived eviction")
	}
	// Evicting again is harmless.
	r.Evict("8:0")
}

func TestRecycledNumberReplaces(t *testing.T) {
	r := New()
	r.Put(&Device{Num: "252:0", Name: "/dev/dm-0", Holders: "8:1"})
	r.Evict("252:0")
	r.Put(&Device{Num: "252:0", Name: "/dev/dm-1"})

	d := r.Get("252:0")
	if d.Name != "/dev/dm-1" || d.Holders != "" {
		t.Errorf("recycled entry = %+v", d)
	}
}

func TestNumsSorted(t *testing.T) {
	r := New()
	for _, n := range []string{"8:16", "252:0", "8:0"} {
		r.Put(&Device{Num: n})
	}
	nums := r.Nums()
	if len(nums) != 3 || nums[0] != "252:0" || nums[1] != "8:0" || nums[2] != "8:16" {
		t.Errorf("Nums = %v", nums)
	}
}
