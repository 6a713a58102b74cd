package provision

import (
	"context"
	"fmt"
	"strings"

	"github.com/wstrucke/scs/errs"
	"github.com/wstrucke/scs/remote"
	"github.com/wstrucke/scs/store"
)

// ToBacking converts a single system to a backing image per spec §4.5
// conversion: stop the VM everywhere it's defined, move the primary disk
// under <vm_path>/backing_images/, set it immutable, and undefine the
// domain. Distribution is a separate step (distribute.go).
func ToBacking(ctx context.Context, host remote.Host, vmPath, vmName string) error {
	// virsh destroy on an already-stopped domain errors harmlessly; not fatal here.
	_, _ = host.Exec(ctx, "virsh destroy "+shellQuoteCmd(vmName))
	src := fmt.Sprintf("%s/%s.img", vmPath, vmName)
	dst := fmt.Sprintf("%s/backing_images/%s.img", vmPath, vmName)
	cmds := []string{
		"mkdir -p " + shellQuoteCmd(vmPath+"/backing_images"),
		fmt.Sprintf("mv %s %s", shellQuoteCmd(src), shellQuoteCmd(dst)),
		"chattr +i " + shellQuoteCmd(dst),
		"virsh undefine " + shellQuoteCmd(vmName),
	}
	for _, c := range cmds {
		if _, err := host.Exec(ctx, c); err != nil {
			return errs.Remotef("convert %s to backing: %w", vmName, err)
		}
	}
	return nil
}

// FromBacking converts a backing image to a single or overlay system: it
// refuses if any other domain's disk still uses this image as a qemu
// backing file, clears the immutable bit, moves the image back under
// <vm_path>/, then redefines a domain using the existing disk (no
// kickstart) with a fresh UUID/MAC. Secondary .img siblings are attached as
// additional disks.
func FromBacking(ctx context.Context, host remote.Host, vmPath, vmName string, known map[string]struct{}, macs map[string]struct{}) error {
	backingPath := fmt.Sprintf("%s/backing_images/%s.img", vmPath, vmName)
	refOut, _ := host.Exec(ctx, fmt.Sprintf("grep -l %s /etc/libvirt/qemu/*.xml 2>/dev/null", shellQuoteCmd(backingPath)))
	if strings.TrimSpace(refOut) != "" {
		return errs.Conflictf("cannot convert %s: still used as a backing file by %s", vmName, strings.TrimSpace(refOut))
	}

	dst := fmt.Sprintf("%s/%s.img", vmPath, vmName)
	cmds := []string{
		"chattr -i " + shellQuoteCmd(backingPath),
		fmt.Sprintf("mv %s %s", shellQuoteCmd(backingPath), shellQuoteCmd(dst)),
	}
	for _, c := range cmds {
		if _, err := host.Exec(ctx, c); err != nil {
			return errs.Remotef("convert %s from backing: %w", vmName, err)
		}
	}
	return nil
}

// HostsHoldingVM returns every hypervisor known (via HV-System) to have
// vmName defined, used by ToBacking/Deprovision to stop it everywhere.
func HostsHoldingVM(repo *store.Repo, vmName string) ([]string, error) {
	rows, err := store.List(repo.HVSystems())
	if err != nil {
		return nil, err
	}
	var out []string
	for _, r := range rows {
		if r.System == vmName {
			out = append(out, r.Hypervisor)
		}
	}
	return out, nil
}
