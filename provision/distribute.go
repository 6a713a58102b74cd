package provision

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/wstrucke/scs/errs"
	"github.com/wstrucke/scs/hypervisor"
	"github.com/wstrucke/scs/remote"
	"github.com/wstrucke/scs/store"
	"github.com/wstrucke/scs/store/records"
)

var backingImageRE = regexp.MustCompile(`\.img$`)

// Distribute copies every backing_images/<name>(.alias)?.img file from the
// source hypervisor to every eligible destination hypervisor (enabled,
// linked to sys's environment, build network, and final network, same
// location). It prefers a direct hypervisor-to-hypervisor scp; when that
// fails it falls back to staging the file through the controller via
// Fetch+Copy. The immutable bit is set on the destination after each file.
func Distribute(ctx context.Context, repo *store.Repo, dial HostDialer, sys records.System, buildNetKey, finalNetKey string) error {
	if !sys.BackingImage {
		return errs.Validationf("distribute: %s is not a backing system", sys.Name)
	}
	srcHosts, err := HostsHoldingVM(repo, sys.Name)
	if err != nil {
		return err
	}
	if len(srcHosts) == 0 {
		return errs.MissingReferencef("distribute: no hypervisor currently holds %s", sys.Name)
	}

	hypervisors, err := store.List(repo.Hypervisors())
	if err != nil {
		return err
	}
	byName := make(map[string]records.Hypervisor, len(hypervisors))
	for _, h := range hypervisors {
		byName[h.Name] = h
	}
	srcHV := byName[srcHosts[0]]
	srcHost, err := dial(srcHV.MgmtIP)
	if err != nil {
		return err
	}

	files, err := listBackingFiles(ctx, srcHost, srcHV.VMPath, sys.Name)
	if err != nil {
		return err
	}

	dests, err := hypervisor.CandidatesFor(repo, sys.Location, sys.Environment, buildNetKey, finalNetKey)
	if err != nil {
		return err
	}
	for _, dest := range dests {
		if dest.Name == srcHV.Name || !dest.Enabled {
			continue
		}
		destHost, err := dial(dest.MgmtIP)
		if err != nil {
			return err
		}
		if _, err := destHost.Exec(ctx, "mkdir -p "+shellQuoteCmd(dest.VMPath+"/backing_images")); err != nil {
			return errs.Remotef("mkdir backing_images on %s: %w", dest.Name, err)
		}
		for _, f := range files {
			destPath := dest.VMPath + "/backing_images/" + f
			if err := copyOne(ctx, srcHost, destHost, srcHV.VMPath+"/backing_images/"+f, destPath); err != nil {
				return err
			}
			if _, err := destHost.Exec(ctx, "chattr +i "+shellQuoteCmd(destPath)); err != nil {
				return errs.Remotef("set immutable on %s: %w", destPath, err)
			}
		}
	}
	return nil
}

func listBackingFiles(ctx context.Context, host remote.Host, vmPath, name string) ([]string, error) {
	out, err := host.Exec(ctx, fmt.Sprintf("ls -1 %s/backing_images/ 2>/dev/null | grep -E '^%s(\\..+)?\\.img$'", shellQuoteCmd(vmPath), regexp.QuoteMeta(name)))
	if err != nil {
		return nil, errs.Remotef("list backing images for %s on %s: %w", name, host.Address(), err)
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && backingImageRE.MatchString(line) {
			files = append(files, line)
		}
	}
	return files, nil
}

// copyOne tries a direct hypervisor-to-hypervisor scp first; on failure it
// stages the file through the controller process via Fetch+Copy, per spec
// §4.5 Distribute's documented fallback.
func copyOne(ctx context.Context, src, dst remote.Host, srcPath, dstPath string) error {
	scpCmd := fmt.Sprintf("scp -o StrictHostKeyChecking=accept-new %s root@%s:%s", shellQuoteCmd(srcPath), dst.Address(), shellQuoteCmd(dstPath))
	if _, err := src.Exec(ctx, scpCmd); err == nil {
		return nil
	}

	data, err := src.Fetch(ctx, srcPath)
	if err != nil {
		return errs.Remotef("stage fetch %s from %s: %w", srcPath, src.Address(), err)
	}
	if err := dst.Copy(ctx, dstPath, data, 0o644); err != nil { //nolint:mnd
		return errs.Remotef("stage copy %s to %s: %w", dstPath, dst.Address(), err)
	}
	return nil
}
