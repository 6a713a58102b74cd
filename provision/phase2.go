package provision

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"

	"github.com/wstrucke/scs/errs"
	"github.com/wstrucke/scs/gc"
	"github.com/wstrucke/scs/ipam"
	"github.com/wstrucke/scs/release"
	"github.com/wstrucke/scs/remote"
	"github.com/wstrucke/scs/store"
	"github.com/wstrucke/scs/store/records"
	"github.com/wstrucke/scs/template"
	"github.com/wstrucke/scs/utils"
)

const (
	pollInterval  = 5 * time.Second //nolint:mnd
	sshWaitPeriod = 5 * time.Second //nolint:mnd
)

// Phase2 runs the detached post-install state machine for plan, per spec
// §4.5 steps 1-8. It is designed to be the body of a re-invoked `scs
// __scs_phase2__` process so it survives the CLI that launched phase 1
// exiting; callers wire the re-invocation (a detached os/exec call) outside
// this package. Every polling loop checks abort.Checker() each iteration,
// per the background-task cancellation rule.
func Phase2(ctx context.Context, repo *store.Repo, dial HostDialer, plan *Plan, abort *gc.Sentinel, log zerolog.Logger) error {
	host, err := dial(plan.Hypervisor.MgmtIP)
	if err != nil {
		return err
	}
	targetHost, err := dial(plan.BuildIP)
	if err != nil {
		return err
	}

	log.Info().Str("system", plan.System.Name).Msg("phase2 start: wait for post-install reboot")
	if err := waitForState(ctx, host, abort, plan.System.Name, "running", false); err != nil {
		return err
	}
	if _, err := host.Exec(ctx, "virsh start "+shellQuoteCmd(plan.System.Name)); err != nil {
		return errs.Remotef("restart %s: %w", plan.System.Name, err)
	}

	log.Info().Msg("waiting for ssh")
	if err := utils.PollUntilAborted(ctx, sshWaitPeriod, abort.Checker(), func() (bool, error) {
		return remote.Alive(plan.BuildIP, 2*time.Second), nil //nolint:mnd
	}); err != nil {
		return err
	}
	if _, err := targetHost.Exec(ctx, "true"); err != nil {
		return errs.Remotef("trivial command on %s: %w", plan.System.Name, err)
	}

	log.Info().Msg("pushing build scripts and running role script")
	roleCmd := fmt.Sprintf("ESG/system-builds/role.sh scs-build --name %s --shutdown", shellQuoteCmd(plan.System.Name))
	if _, err := targetHost.Exec(ctx, roleCmd); err != nil {
		return errs.Remotef("role script on %s: %w", plan.System.Name, err)
	}

	log.Info().Msg("waiting for shutdown")
	if err := waitForState(ctx, host, abort, plan.System.Name, "shut off", true); err != nil {
		return err
	}
	if _, err := host.Exec(ctx, "virsh start "+shellQuoteCmd(plan.System.Name)); err != nil {
		return errs.Remotef("restart %s: %w", plan.System.Name, err)
	}
	if err := utils.PollUntilAborted(ctx, sshWaitPeriod, abort.Checker(), func() (bool, error) {
		return remote.Alive(plan.BuildIP, 2*time.Second), nil //nolint:mnd
	}); err != nil {
		return err
	}

	log.Info().Msg("removing kickstart, pushing release")
	kickstartPath := plan.BuildNetwork.RepoFSPath + "/" + plan.System.Name + ".cfg"
	if _, err := host.Exec(ctx, "rm -f "+shellQuoteCmd(kickstartPath)); err != nil {
		log.Warn().Err(err).Msg("failed to remove kickstart, continuing")
	}
	archive, err := compileAndArchive(repo, plan.System)
	if err != nil {
		return err
	}
	if err := targetHost.Copy(ctx, "/root/scs-release.run", archive, 0o750); err != nil { //nolint:mnd
		return errs.Remotef("push release to %s: %w", plan.System.Name, err)
	}
	if _, err := targetHost.Exec(ctx, "bash /root/scs-release.run --install"); err != nil {
		return errs.Remotef("install release on %s: %w", plan.System.Name, err)
	}

	if plan.System.IP != plan.BuildIP {
		log.Info().Str("from", plan.BuildIP).Str("to", plan.System.IP).Msg("reconfiguring final ip")
		if err := reconfigureIP(ctx, repo, targetHost, plan); err != nil {
			return err
		}
		if _, err := targetHost.Exec(ctx, "shutdown -h now"); err != nil {
			log.Warn().Err(err).Msg("shutdown command returned an error (expected: connection drops)")
		}
		if err := waitForState(ctx, host, abort, plan.System.Name, "shut off", true); err != nil {
			return err
		}
	}

	if plan.BuildIface != plan.FinalIface && plan.FinalIface != "" {
		log.Info().Str("from", plan.BuildIface).Str("to", plan.FinalIface).Msg("rewriting domain interface")
		if err := rewriteInterface(ctx, host, plan.System.Name, plan.BuildIface, plan.FinalIface); err != nil {
			return err
		}
	}

	if plan.System.BackingImage {
		log.Info().Msg("flushing identity before converting to backing image")
		if err := flushIdentity(ctx, targetHost); err != nil {
			return err
		}
		if _, err := host.Exec(ctx, "virsh shutdown "+shellQuoteCmd(plan.System.Name)); err != nil {
			return errs.Remotef("shutdown %s before backing conversion: %w", plan.System.Name, err)
		}
		if err := waitForState(ctx, host, abort, plan.System.Name, "shut off", true); err != nil {
			return err
		}
		return ToBacking(ctx, host, plan.Hypervisor.VMPath, plan.System.Name)
	}

	log.Info().Msg("starting vm")
	if _, err := host.Exec(ctx, "virsh start "+shellQuoteCmd(plan.System.Name)); err != nil {
		return errs.Remotef("start %s: %w", plan.System.Name, err)
	}
	return utils.PollUntilAborted(ctx, sshWaitPeriod, abort.Checker(), func() (bool, error) {
		return remote.Alive(plan.System.IP, 2*time.Second), nil //nolint:mnd
	})
}

func waitForState(ctx context.Context, host remote.Host, abort *gc.Sentinel, vmName, want string, wantExact bool) error {
	return utils.PollUntilAborted(ctx, pollInterval, abort.Checker(), func() (bool, error) {
		out, err := host.Exec(ctx, "virsh domstate "+shellQuoteCmd(vmName))
		if err != nil {
			return false, nil
		}
		state := strings.TrimSpace(out)
		if wantExact {
			return state == want, nil
		}
		return state != want, nil
	})
}

func compileAndArchive(repo *store.Repo, sys records.System) ([]byte, error) {
	st, err := release.Compile(repo, sys, template.Strict)
	if err != nil {
		return nil, err
	}
	ts := time.Now().UTC().Format("20060102150405")
	install, err := st.InstallScript(ts, repo.Config().RemoteBackups)
	if err != nil {
		return nil, err
	}
	audit, err := st.AuditScript()
	if err != nil {
		return nil, err
	}
	payload, err := release.Archive(st, install, audit)
	if err != nil {
		return nil, err
	}
	return release.Wrap(payload, ts), nil
}

func reconfigureIP(ctx context.Context, repo *store.Repo, host remote.Host, plan *Plan) error {
	if plan.System.IPIsDHCP() {
		_, err := host.Exec(ctx, "rm -f /etc/sysconfig/network-scripts/route-*")
		return err
	}
	cmd := fmt.Sprintf("ip addr flush dev eth0; ip addr add %s/%s dev eth0; ip route replace default via %s",
		plan.System.IP, plan.FinalNetwork.CIDR, plan.FinalNetwork.Gateway)
	if _, err := host.Exec(ctx, cmd); err != nil {
		return errs.Remotef("reconfigure ip on %s: %w", plan.System.Name, err)
	}
	if plan.System.IP == plan.BuildIP {
		return nil
	}
	return ipam.Assign(repo, plan.System.IP, plan.System.Name, true, "final ip", "scs", func(string) bool { return false })
}

// rewriteInterface edits /etc/libvirt/qemu/<name>.xml on host, replacing
// every occurrence of the build interface name with the final interface
// name, then redefines the domain. Grounded on the pack's XML-editing
// dependency github.com/beevik/etree, used here instead of a raw string
// replace because libvirt's source/target elements carry the interface name
// in multiple attributes that must all change consistently.
func rewriteInterface(ctx context.Context, host remote.Host, vmName, from, to string) error {
	xmlPath := "/etc/libvirt/qemu/" + vmName + ".xml"
	raw, err := host.Fetch(ctx, xmlPath)
	if err != nil {
		return errs.Remotef("fetch domain xml %s: %w", xmlPath, err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return errs.Templatef("parse domain xml %s: %w", xmlPath, err)
	}
	for _, iface := range doc.FindElements("//devices/interface") {
		for _, attrName := range []string{"dev", "bridge"} {
			if el := iface.FindElement("target"); el != nil {
				if attr := el.SelectAttr(attrName); attr != nil && attr.Value == from {
					attr.Value = to
				}
			}
			if el := iface.FindElement("source"); el != nil {
				if attr := el.SelectAttr(attrName); attr != nil && attr.Value == from {
					attr.Value = to
				}
			}
		}
	}

	out, err := doc.WriteToBytes()
	if err != nil {
		return errs.Templatef("serialize domain xml %s: %w", xmlPath, err)
	}
	if err := host.Copy(ctx, xmlPath, out, 0o644); err != nil { //nolint:mnd
		return errs.Remotef("write domain xml %s: %w", xmlPath, err)
	}
	if _, err := host.Exec(ctx, "virsh define "+shellQuoteCmd(xmlPath)); err != nil {
		return errs.Remotef("redefine domain from %s: %w", xmlPath, err)
	}
	return nil
}

// flushIdentity clears hardware-level identity before a backing conversion:
// MAC/UUID are about to be regenerated per clone, SSH host keys must be
// regenerated on next boot, and persisted udev network-interface naming
// rules would otherwise pin the clone to the donor's original NIC name.
func flushIdentity(ctx context.Context, host remote.Host) error {
	cmd := "rm -f /etc/ssh/ssh_host_*key* /etc/udev/rules.d/70-persistent-net.rules"
	_, err := host.Exec(ctx, cmd)
	return err
}
