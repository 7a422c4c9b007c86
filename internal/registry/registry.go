package registry

import "sort"

// Device is the per-devnum state needed after ingestion: where the
// device lives in the tree and the raw, still-unresolved holder/slave
// references captured with its last add/change event.
type Device struct {
	Num     string // major:minor
	Name    string // /dev/sda
	DevPath string // /devices/.../block/sda
	Holders string // space-separated maj:min list
	Slaves  string
}

// Registry maps device numbers to live devices for one reconstruction
// run. It is owned by the orchestrator and handed into the tree builder
// and the resolver; it is not safe for concurrent use and does not need
// to be (single-threaded ingestion).
type Registry struct {
	devices map[string]*Device
}

func New() *Registry {
	return &Registry{devices: make(map[string]*Device)}
}

// Put records or replaces the entry for dev.Num. A device re-added with
// a recycled number cleanly replaces the old entry.
func (r *Registry) Put(dev *Device) {
	r.devices[dev.Num] = dev
}

// Evict drops the entry for num, if any.
func (r *Registry) Evict(num string) {
	delete(r.devices, num)
}

// Get returns the live device for num, or nil.
func (r *Registry) Get(num string) *Device {
	return r.devices[num]
}

// Len returns the number of live devices.
func (r *Registry) Len() int {
	return len(r.devices)
}

// Nums returns all live device numbers in sorted order, so that
// resolution output is deterministic.
func (r *Registry) Nums() []string {
	nums := make([]string, 0, len(r.devices))
	for n := range r.devices {
		nums = append(nums, n)
	}
	sort.Strings(nums)
	return nums
}
