package tree

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
)

// maxPathLen is the per-path budget. Creating anything longer fails the
// operation rather than producing a tree the enumeration tool cannot
// walk.
const maxPathLen = 4096

// Tree builds the synthetic dev/ + sys/ hierarchy under a single
// working root. All paths handed to it are tree-relative and already
// sanitized by the caller. In dry-run mode every mutation is logged and
// nothing touches the filesystem.
type Tree struct {
	root   string
	log    *pterm.Logger
	dryRun bool
}

func New(root string, log *pterm.Logger, dryRun bool) *Tree {
	return &Tree{root: root, log: log, dryRun: dryRun}
}

// Root returns the working root directory.
func (t *Tree) Root() string {
	return t.root
}

// abs resolves a tree-relative path, enforcing the length budget.
func (t *Tree) abs(rel string) (string, error) {
	p := filepath.Join(t.root, rel)
	if len(p) > maxPathLen {
		return "", fmt.Errorf("path exceeds length budget (%d): %s...", maxPathLen, p[:64])
	}
	return p, nil
}

// MkdirAll creates a directory and its parents. Creating an existing
// directory is a silent no-op.
func (t *Tree) MkdirAll(rel string) error {
	p, err := t.abs(rel)
	if err != nil {
		return err
	}
	if t.dryRun {
		t.log.Debug("dry-run: mkdir", t.log.Args("path", rel))
		return nil
	}
	return os.MkdirAll(p, 0o755)
}

// WriteFile writes content to a metadata file atomically: staged into a
// temp file in the target directory, then renamed into place. A
// concurrently-replaced target of the wrong kind fails loudly instead
// of being silently overwritten.
func (t *Tree) WriteFile(rel, content string) error {
	p, err := t.abs(rel)
	if err != nil {
		return err
	}
	if t.dryRun {
		t.log.Debug("dry-run: write", t.log.Args("path", rel, "bytes", len(content)))
		return nil
	}

	if fi, err := os.Lstat(p); err == nil && !fi.Mode().IsRegular() {
		return fmt.Errorf("refusing to overwrite non-regular file %s", rel)
	}

	dir := filepath.Dir(p)
	tmp, err := os.CreateTemp(dir, ".stage-*")
	if err != nil {
		return fmt.Errorf("staging %s: %w", rel, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("staging %s: %w", rel, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("staging %s: %w", rel, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, p); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publishing %s: %w", rel, err)
	}
	return nil
}

// Symlink creates linkRel pointing at targetRel (both tree-relative).
// The stored target is computed relative to the link's own directory so
// the whole tree stays relocatable. An existing correct link is left
// alone; a wrong one is replaced atomically.
func (t *Tree) Symlink(targetRel, linkRel string) error {
	link, err := t.abs(linkRel)
	if err != nil {
		return err
	}
	target, err := t.abs(targetRel)
	if err != nil {
		return err
	}
	relTarget, err := filepath.Rel(filepath.Dir(link), target)
	if err != nil {
		return fmt.Errorf("relativizing %s -> %s: %w", linkRel, targetRel, err)
	}

	if t.dryRun {
		t.log.Debug("dry-run: symlink", t.log.Args("link", linkRel, "target", relTarget))
		return nil
	}

	if existing, err := os.Readlink(link); err == nil {
		if existing == relTarget {
			return nil
		}
	}

	tmp := filepath.Join(filepath.Dir(link), ".link-"+filepath.Base(link))
	os.Remove(tmp)
	if err := os.Symlink(relTarget, tmp); err != nil {
		return fmt.Errorf("linking %s: %w", linkRel, err)
	}
	if err := os.Rename(tmp, link); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("linking %s: %w", linkRel, err)
	}
	return nil
}

// Remove deletes a single entry, tolerating absence.
func (t *Tree) Remove(rel string) error {
	p, err := t.abs(rel)
	if err != nil {
		return err
	}
	if t.dryRun {
		t.log.Debug("dry-run: remove", t.log.Args("path", rel))
		return nil
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// RemoveAll deletes a subtree, tolerating absence.
func (t *Tree) RemoveAll(rel string) error {
	p, err := t.abs(rel)
	if err != nil {
		return err
	}
	if t.dryRun {
		t.log.Debug("dry-run: remove subtree", t.log.Args("path", rel))
		return nil
	}
	return os.RemoveAll(p)
}

// Layout helpers. DEVNAME and DEVPATH arrive absolute ("/dev/sda",
// "/devices/..."); inside the tree they live under the root with the
// sys area prefixed.

// NodeRel maps a device node path to its tree location.
func NodeRel(devname string) string {
	return strings.TrimPrefix(devname, "/")
}

// MetaRel maps a DEVPATH to the device's metadata directory.
func MetaRel(devpath string) string {
	return "sys" + devpath
}

// BlockLinkRel is the canonical by-name listing entry for a disk.
func BlockLinkRel(base string) string {
	return filepath.Join("sys/block", base)
}

// NumLinkRel is the by-number listing entry.
func NumLinkRel(num string) string {
	return filepath.Join("sys/dev/block", num)
}
