package tree

import (
	"fmt"
	"path/filepath"
	"strings"

	"blkhist/internal/event"
	"blkhist/internal/registry"
	"blkhist/internal/sanitize"
)

// Apply plays one validated event into the tree. Add and Change fully
// rewrite the device's metadata; Remove tears it down. The registry is
// kept in step so the resolver can translate device numbers later.
// Returned errors mean the whole event could not be applied; per-item
// problems (one bad alias, one unwritable attribute) are warned and
// skipped without failing the event.
func (t *Tree) Apply(ev *event.Event, reg *registry.Registry, extra bool) error {
	num, err := sanitize.DevNum(ev.Num())
	if err != nil {
		return fmt.Errorf("%w: %q", err, ev.Num())
	}

	switch ev.Action {
	case event.ActionAdd, event.ActionChange:
		return t.applyAdd(ev, num, reg, extra)
	case event.ActionRemove:
		return t.applyRemove(ev, num, reg)
	}
	return fmt.Errorf("unhandled action %v", ev.Action)
}

func (t *Tree) applyAdd(ev *event.Event, num string, reg *registry.Registry, extra bool) error {
	devname, err := sanitize.Path(ev.DevName)
	if err != nil {
		return fmt.Errorf("DEVNAME %q: %w", ev.DevName, err)
	}
	devpath, err := sanitize.Path(ev.DevPath)
	if err != nil {
		return fmt.Errorf("DEVPATH %q: %w", ev.DevPath, err)
	}

	nodeRel := NodeRel(devname)
	metaRel := MetaRel(devpath)

	// Device node stand-in plus alias symlinks. One bad alias must not
	// block its siblings.
	if err := t.MkdirAll(filepath.Dir(nodeRel)); err != nil {
		return err
	}
	if err := t.WriteFile(nodeRel, num+"\n"); err != nil {
		return err
	}
	for _, link := range ev.DevLinks {
		clean, err := sanitize.Path(link)
		if err != nil {
			t.log.Warn("skipping unsafe device link",
				t.log.Args("device", devname, "link", link))
			continue
		}
		linkRel := NodeRel(clean)
		if err := t.MkdirAll(filepath.Dir(linkRel)); err != nil {
			t.log.Warn("skipping device link", t.log.Args("link", clean, "error", err))
			continue
		}
		if err := t.Symlink(nodeRel, linkRel); err != nil {
			t.log.Warn("skipping device link", t.log.Args("link", clean, "error", err))
		}
	}

	// Metadata directory: fully rewritten on every add/change.
	if err := t.MkdirAll(metaRel); err != nil {
		return err
	}
	if err := t.WriteFile(filepath.Join(metaRel, "dev"), num+"\n"); err != nil {
		return err
	}
	if err := t.WriteFile(filepath.Join(metaRel, "uevent"), t.uevent(ev)); err != nil {
		return err
	}
	for _, d := range []string{"holders", "slaves"} {
		if err := t.MkdirAll(filepath.Join(metaRel, d)); err != nil {
			return err
		}
	}

	t.writeAttrs(ev, metaRel, topAttrs)
	t.writeAttrs(ev, metaRel, deviceAttrs)
	t.writeAttrs(ev, metaRel, queueAttrs)
	t.writeAttrs(ev, metaRel, dmAttrs)
	t.writeAttrs(ev, metaRel, mdAttrs)
	if extra {
		t.writeAttrs(ev, metaRel, extraAttrs)
		if strings.HasPrefix(ev.Base(), "dm-") {
			t.writeAttrs(ev, metaRel, dmExtraAttrs)
		}
	}

	// Listings: by-number always, by-name for whole disks only
	// (partitions do not appear under sys/block, same as the kernel).
	if err := t.MkdirAll("sys/dev/block"); err != nil {
		return err
	}
	if err := t.Symlink(metaRel, NumLinkRel(num)); err != nil {
		return err
	}
	if ev.DevType == event.TypeDisk {
		if err := t.MkdirAll("sys/block"); err != nil {
			return err
		}
		if err := t.Symlink(metaRel, BlockLinkRel(ev.Base())); err != nil {
			return err
		}
	}

	reg.Put(&registry.Device{
		Num:     num,
		Name:    devname,
		DevPath: devpath,
		Holders: ev.Holders,
		Slaves:  ev.Slaves,
	})
	return nil
}

func (t *Tree) applyRemove(ev *event.Event, num string, reg *registry.Registry) error {
	// Best effort throughout: one invalid field must not keep the rest
	// of the device from being torn down, and removing what is already
	// absent is a no-op.
	if devname, err := sanitize.Path(ev.DevName); err != nil {
		t.log.Warn("remove: unsafe DEVNAME, node kept",
			t.log.Args("devname", ev.DevName))
	} else {
		if err := t.Remove(NodeRel(devname)); err != nil {
			return err
		}
		if err := t.Remove(BlockLinkRel(ev.Base())); err != nil {
			return err
		}
	}

	for _, link := range ev.DevLinks {
		clean, err := sanitize.Path(link)
		if err != nil {
			t.log.Warn("remove: skipping unsafe device link",
				t.log.Args("link", link))
			continue
		}
		if err := t.Remove(NodeRel(clean)); err != nil {
			t.log.Warn("remove: device link not removed",
				t.log.Args("link", clean, "error", err))
		}
	}

	if err := t.Remove(NumLinkRel(num)); err != nil {
		return err
	}

	if devpath, err := sanitize.Path(ev.DevPath); err != nil {
		t.log.Warn("remove: unsafe DEVPATH, metadata kept",
			t.log.Args("devpath", ev.DevPath))
	} else {
		if err := t.RemoveAll(MetaRel(devpath)); err != nil {
			return err
		}
	}

	reg.Evict(num)
	return nil
}

// writeAttrs writes one attribute group. Absent or empty values write
// nothing (absence means unknown, never an empty file); per-file errors
// are warned and skipped.
func (t *Tree) writeAttrs(ev *event.Event, metaRel string, group []attrFile) {
	for _, a := range group {
		raw, ok := ev.Attrs[a.Key]
		if !ok {
			continue
		}
		val := sanitize.Value(raw)
		if val == "" {
			continue
		}
		rel := filepath.Join(metaRel, a.Rel)
		if err := t.MkdirAll(filepath.Dir(rel)); err != nil {
			t.log.Warn("attribute skipped", t.log.Args("file", rel, "error", err))
			continue
		}
		if err := t.WriteFile(rel, val+"\n"); err != nil {
			t.log.Warn("attribute skipped", t.log.Args("file", rel, "error", err))
		}
	}
}

// uevent renders the kernel-style uevent file enumeration tools read
// first.
func (t *Tree) uevent(ev *event.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "MAJOR=%s\n", ev.Major)
	fmt.Fprintf(&b, "MINOR=%s\n", ev.Minor)
	fmt.Fprintf(&b, "DEVNAME=%s\n", ev.Base())
	switch ev.DevType {
	case event.TypeDisk:
		b.WriteString("DEVTYPE=disk\n")
	case event.TypePartition:
		b.WriteString("DEVTYPE=partition\n")
	}
	return b.String()
}
