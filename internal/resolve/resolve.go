// Package resolve turns the holder/slave device-number lists collected
// during ingestion into the bidirectional symlink graph. It runs once,
// after the whole event window has been applied: relationships cannot
// be linked mid-stream because the other side may not have been seen
// yet, or may be re-added under a recycled number.
package resolve

import (
	"path/filepath"
	"strings"

	"blkhist/internal/registry"
	"blkhist/internal/sanitize"
	"blkhist/internal/tree"

	"github.com/pterm/pterm"
)

// Graph links every live device's holders and slaves lists. A reference
// whose devnum is malformed is warned and skipped; a reference to a
// device no longer (or never) in the registry is skipped silently, the
// known best-effort posture for mid-window removals. The pass is
// idempotent: links are recomputed from the registry alone.
func Graph(t *tree.Tree, reg *registry.Registry, log *pterm.Logger) error {
	for _, num := range reg.Nums() {
		dev := reg.Get(num)
		for _, ref := range strings.Fields(dev.Holders) {
			if err := link(t, reg, log, dev, ref, true); err != nil {
				return err
			}
		}
		for _, ref := range strings.Fields(dev.Slaves) {
			if err := link(t, reg, log, dev, ref, false); err != nil {
				return err
			}
		}
	}
	return nil
}

// link connects dev to one referenced device. With holder=true the
// reference names a device that holds dev: dev gets the entry in its
// holders directory and the referenced device gets the mirror entry in
// its slaves directory. holder=false is the symmetric case from a
// slaves list.
func link(t *tree.Tree, reg *registry.Registry, log *pterm.Logger, dev *registry.Device, ref string, holder bool) error {
	refNum, err := sanitize.DevNum(ref)
	if err != nil {
		log.Warn("dependency reference skipped",
			log.Args("device", dev.Name, "ref", ref, "error", err))
		return nil
	}
	other := reg.Get(refNum)
	if other == nil {
		// Referenced device was removed mid-window or never captured.
		return nil
	}

	devMeta := tree.MetaRel(dev.DevPath)
	otherMeta := tree.MetaRel(other.DevPath)
	devBase := filepath.Base(dev.Name)
	otherBase := filepath.Base(other.Name)

	var first, second [2]string // target, link
	if holder {
		first = [2]string{otherMeta, filepath.Join(devMeta, "holders", otherBase)}
		second = [2]string{devMeta, filepath.Join(otherMeta, "slaves", devBase)}
	} else {
		first = [2]string{otherMeta, filepath.Join(devMeta, "slaves", otherBase)}
		second = [2]string{devMeta, filepath.Join(otherMeta, "holders", devBase)}
	}

	for _, pair := range [][2]string{first, second} {
		if err := t.MkdirAll(filepath.Dir(pair[1])); err != nil {
			return err
		}
		if err := t.Symlink(pair[0], pair[1]); err != nil {
			return err
		}
	}
	return nil
}
