package provision

import (
	"context"
	"fmt"

	"github.com/wstrucke/scs/errs"
	"github.com/wstrucke/scs/ipam"
	"github.com/wstrucke/scs/remote"
	"github.com/wstrucke/scs/store"
	"github.com/wstrucke/scs/store/records"
)

// Deprovision locates every hypervisor hosting vmName, destroys and
// undefines the domain on each, removes its associated images (for backing
// images, every <name>.*img under backing_images/), frees its IP, and
// clears HV-System entries. confirmed must be true; the confirmation
// prompt itself is a CLI concern out of scope here.
func Deprovision(ctx context.Context, repo *store.Repo, dial HostDialer, sys records.System, confirmed bool) error {
	if !confirmed {
		return errs.Abortedf("deprovision %s requires confirmation", sys.Name)
	}

	hvs, err := HostsHoldingVM(repo, sys.Name)
	if err != nil {
		return err
	}
	hypervisors, err := store.List(repo.Hypervisors())
	if err != nil {
		return err
	}
	byName := make(map[string]records.Hypervisor, len(hypervisors))
	for _, h := range hypervisors {
		byName[h.Name] = h
	}

	for _, hvName := range hvs {
		hv, ok := byName[hvName]
		if !ok {
			continue
		}
		host, err := dial(hv.MgmtIP)
		if err != nil {
			return err
		}
		if err := destroyAndUndefine(ctx, host, hv.VMPath, sys); err != nil {
			return err
		}
	}

	if err := repo.DeleteHVSystemsFor(sys.Name); err != nil {
		return err
	}
	if !sys.IPIsDHCP() && sys.IP != "" {
		if err := ipam.Unassign(repo, sys.IP); err != nil {
			return err
		}
	}
	return nil
}

func destroyAndUndefine(ctx context.Context, host remote.Host, vmPath string, sys records.System) error {
	_, _ = host.Exec(ctx, "virsh destroy "+shellQuoteCmd(sys.Name))
	if _, err := host.Exec(ctx, "virsh undefine "+shellQuoteCmd(sys.Name)); err != nil {
		return errs.Remotef("undefine %s on %s: %w", sys.Name, host.Address(), err)
	}

	if sys.BackingImage {
		cmd := fmt.Sprintf("chattr -i %s/backing_images/%s.*img 2>/dev/null; rm -f %s/backing_images/%s.*img", vmPath, sys.Name, vmPath, sys.Name)
		if _, err := host.Exec(ctx, cmd); err != nil {
			return errs.Remotef("remove backing images for %s: %w", sys.Name, err)
		}
		return nil
	}
	if _, err := host.Exec(ctx, fmt.Sprintf("rm -f %s/%s.img", vmPath, sys.Name)); err != nil {
		return errs.Remotef("remove image for %s: %w", sys.Name, err)
	}
	return nil
}
