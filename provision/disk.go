package provision

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	units "github.com/docker/go-units"

	"github.com/wstrucke/scs/errs"
	"github.com/wstrucke/scs/remote"
)

var targetDevRE = regexp.MustCompile(`<target dev='([a-z]+)'`)

// NextDeviceID scans a domain's dumpxml for the highest vd<x> target device
// and returns the next letter (a..y -> b..z). Spec §4.5 Add secondary disk;
// 'z' is refused rather than wrapped since it collides with the vdz-class
// reserved id some libvirt/cloud-init default layouts use for swap/scratch
// disks, so a system is capped at 25 secondary disks.
func NextDeviceID(dumpxml string) (string, error) {
	matches := targetDevRE.FindAllStringSubmatch(dumpxml, -1)
	if len(matches) == 0 {
		return "vdb", nil
	}
	highest := ""
	for _, m := range matches {
		if m[1] > highest {
			highest = m[1]
		}
	}
	last := highest[len(highest)-1]
	if last == 'z' {
		return "", errs.Validationf("device %s: cannot allocate a secondary disk past vd*z", highest)
	}
	return highest[:len(highest)-1] + string(last+1), nil
}

// AddSecondaryDisk creates a sparse qcow2 file (optionally backed by
// backingPath) sized per the human-readable size string, attaches it
// persistently to the domain via virsh, and returns the device id used.
// Grounded on spec §4.5's "Add secondary disk" operation; the size string
// parser uses github.com/docker/go-units (RAMInBytes accepts the same
// "20G"/"512M" vocabulary used throughout the pack for human sizes).
func AddSecondaryDisk(ctx context.Context, host remote.Host, vmPath, vmName, alias, size, backingPath, bus string) (deviceID string, err error) {
	if _, err := units.RAMInBytes(size); err != nil && backingPath == "" {
		return "", errs.Validationf("invalid disk size %q: %w", size, err)
	}

	xml, err := host.Exec(ctx, fmt.Sprintf("virsh dumpxml %s", shellQuoteCmd(vmName)))
	if err != nil {
		return "", errs.Remotef("dumpxml %s: %w", vmName, err)
	}
	deviceID, err = NextDeviceID(xml)
	if err != nil {
		return "", err
	}

	imgPath := fmt.Sprintf("%s/%s.%s.img", vmPath, vmName, alias)
	createCmd := fmt.Sprintf("qemu-img create -f qcow2 %s %s", shellQuoteCmd(imgPath), size)
	if backingPath != "" {
		createCmd = fmt.Sprintf("qemu-img create -f qcow2 -b %s -F qcow2 %s", shellQuoteCmd(backingPath), shellQuoteCmd(imgPath))
	}
	if _, err := host.Exec(ctx, createCmd); err != nil {
		return "", errs.Remotef("create disk %s: %w", imgPath, err)
	}

	diskXML := fmt.Sprintf(
		"<disk type='file' device='disk'><driver name='qemu' type='qcow2'/><source file='%s'/><target dev='%s' bus='%s'/></disk>",
		imgPath, deviceID, bus,
	)
	attachCmd := fmt.Sprintf("echo %s | virsh attach-device --persistent %s /dev/stdin", shellQuoteCmd(diskXML), shellQuoteCmd(vmName))
	if _, err := host.Exec(ctx, attachCmd); err != nil {
		return "", errs.Remotef("attach disk %s to %s: %w", imgPath, vmName, err)
	}
	return deviceID, nil
}

func shellQuoteCmd(s string) string { return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'" }
