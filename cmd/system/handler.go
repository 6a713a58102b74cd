package system

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wstrucke/scs/audit"
	cmdcore "github.com/wstrucke/scs/cmd/core"
	"github.com/wstrucke/scs/config"
	"github.com/wstrucke/scs/errs"
	"github.com/wstrucke/scs/gc"
	"github.com/wstrucke/scs/progress"
	progprovision "github.com/wstrucke/scs/progress/provision"
	"github.com/wstrucke/scs/provision"
	"github.com/wstrucke/scs/store"
	"github.com/wstrucke/scs/store/records"
	"github.com/wstrucke/scs/utils"
)

// Phase2Verb is the hidden sub-command name phase 2 re-execs itself as,
// receiving a serialized *provision.Plan on disk rather than re-deriving it,
// since Phase1's in-memory selections (hypervisor, build IP, UUID/MAC) must
// not be recomputed by the detached process.
const Phase2Verb = "__scs_phase2__"

// Phase2Command registers the hidden re-exec target. It is added to the
// root command alongside the "system" noun, not under it, since it is
// never invoked by a user directly.
func Phase2Command(base cmdcore.BaseHandler) *cobra.Command {
	h := Handler{BaseHandler: base}
	return &cobra.Command{
		Use:    Phase2Verb + " PLAN_FILE",
		Hidden: true,
		Args:   cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, repo, err := h.Init(cmd)
			if err != nil {
				return err
			}
			conf, err := h.Conf()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0]) //nolint:gosec // path written by our own Provision handler
			if err != nil {
				return err
			}
			var plan provision.Plan
			if err := json.Unmarshal(data, &plan); err != nil {
				return err
			}
			runErr := h.runPhase2(ctx, conf, repo, cmdcore.Dial(conf), &plan)
			_ = os.Remove(args[0])
			return runErr
		},
	}
}

var header = []string{
	"name", "build", "ip", "location", "environment",
	"virtual", "backing_image", "overlay", "locked", "build_date_unix",
}

type Handler struct {
	cmdcore.BaseHandler
}

func fromFlags(cmd *cobra.Command, name string) records.System {
	build, _ := cmd.Flags().GetString("build")
	ip, _ := cmd.Flags().GetString("ip")
	loc, _ := cmd.Flags().GetString("location")
	env, _ := cmd.Flags().GetString("environment")
	virtual, _ := cmd.Flags().GetBool("virtual")
	backing, _ := cmd.Flags().GetBool("backing-image")
	overlay, _ := cmd.Flags().GetString("overlay")
	return records.System{
		Name: name, Build: build, IP: ip, Location: loc, Environment: env,
		Virtual: virtual, BackingImage: backing, Overlay: overlay,
	}
}

func (h Handler) Create(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	return store.Create(repo.Systems(), fromFlags(cmd, args[0]))
}

func (h Handler) Update(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	sys, err := store.Get(repo.Systems(), args[0])
	if err != nil {
		return err
	}
	updated := fromFlags(cmd, args[0])
	updated.Locked = sys.Locked
	updated.BuildDateUnix = sys.BuildDateUnix
	return store.Update(repo.Systems(), args[0], updated)
}

func (h Handler) Delete(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	return cmdcore.DeleteRecord(repo.Systems(), args[0])
}

func (h Handler) List(cmd *cobra.Command, _ []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	return cmdcore.ListRecords(repo.Systems(), header)
}

func (h Handler) Show(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	return cmdcore.ShowRecord(repo.Systems(), args[0], header)
}

func (h Handler) setLocked(cmd *cobra.Command, name string, locked bool) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	sys, err := store.Get(repo.Systems(), name)
	if err != nil {
		return err
	}
	sys.Locked = locked
	return store.Update(repo.Systems(), name, sys)
}

func (h Handler) Lock(cmd *cobra.Command, args []string) error   { return h.setLocked(cmd, args[0], true) }
func (h Handler) Unlock(cmd *cobra.Command, args []string) error { return h.setLocked(cmd, args[0], false) }

// Provision runs phase 1 (synchronous: lock, select hypervisor, define VM,
// install, reserve build IP) then phase 2 (boot wait, reconfigure IP,
// compile and distribute release, finalize). Phase 2 logs to the background
// log and honors the abort sentinel; --foreground runs it inline instead of
// only reporting phase 1's plan.
func (h Handler) Provision(cmd *cobra.Command, args []string) error {
	ctx, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	conf, err := h.Conf()
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	sys, err := store.Get(repo.Systems(), args[0])
	if err != nil {
		return err
	}
	avoid, _ := cmd.Flags().GetString("avoid")
	foreground, _ := cmd.Flags().GetBool("foreground")

	plan, err := provision.Phase1(ctx, repo, cmdcore.Dial(conf), sys, avoid)
	if err != nil {
		return err
	}
	fmt.Printf("phase 1 complete: hypervisor=%s build_ip=%s\n", plan.Hypervisor.Name, plan.BuildIP)

	if !foreground {
		return h.detachPhase2(conf, plan)
	}
	return h.runPhase2(ctx, conf, repo, cmdcore.Dial(conf), plan)
}

// detachPhase2 serializes plan to a temp file and re-execs the current
// binary as the hidden Phase2Verb sub-command, detached into its own
// session so it survives the parent CLI invocation exiting.
func (h Handler) detachPhase2(conf *config.Config, plan *provision.Plan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return err
	}
	planPath := filepath.Join(conf.TempDir, fmt.Sprintf("phase2-%s.json", plan.System.Name))
	if err := utils.AtomicWriteFile(planPath, data, 0o600); err != nil { //nolint:mnd
		return err
	}
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	c := exec.Command(exe, Phase2Verb, planPath) //nolint:gosec // exe is our own binary path
	c.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := c.Start(); err != nil {
		return err
	}
	fmt.Printf("phase 2 detached as pid %d; see %s or `scs system provision-status %s`\n",
		c.Process.Pid, conf.BackgroundLogFile(), plan.System.Name)
	return c.Process.Release()
}

func (h Handler) runPhase2(ctx context.Context, conf *config.Config, repo *store.Repo, dial provision.HostDialer, plan *provision.Plan) error {
	hostname, _ := os.Hostname()
	logger, f, err := gc.NewBackgroundLogger(conf.BackgroundLogFile(), cmdcore.CurrentUser(), hostname)
	if err != nil {
		return err
	}
	defer f.Close()
	sentinel := gc.NewSentinel(conf.AbortFile())
	return provision.Phase2(ctx, repo, dial, plan, sentinel, logger)
}

func (h Handler) Deprovision(cmd *cobra.Command, args []string) error {
	ctx, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	conf, err := h.Conf()
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	sys, err := store.Get(repo.Systems(), args[0])
	if err != nil {
		return err
	}
	confirmed, _ := cmd.Flags().GetBool("yes-i-am-sure")
	return provision.Deprovision(ctx, repo, cmdcore.Dial(conf), sys, confirmed)
}

func (h Handler) Distribute(cmd *cobra.Command, args []string) error {
	ctx, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	conf, err := h.Conf()
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	sys, err := store.Get(repo.Systems(), args[0])
	if err != nil {
		return err
	}
	return provision.Distribute(ctx, repo, cmdcore.Dial(conf), sys, args[1], args[2])
}

func (h Handler) ToBacking(cmd *cobra.Command, args []string) error {
	ctx, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	conf, err := h.Conf()
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	sys, err := store.Get(repo.Systems(), args[0])
	if err != nil {
		return err
	}
	hv, err := hypervisorOf(repo, sys)
	if err != nil {
		return err
	}
	host, err := cmdcore.Dial(conf)(hv.MgmtIP)
	if err != nil {
		return err
	}
	if err := provision.ToBacking(ctx, host, hv.VMPath, sys.Name); err != nil {
		return err
	}
	sys.BackingImage = true
	return store.Update(repo.Systems(), sys.Name, sys)
}

func (h Handler) FromBacking(cmd *cobra.Command, args []string) error {
	ctx, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	conf, err := h.Conf()
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	sys, err := store.Get(repo.Systems(), args[0])
	if err != nil {
		return err
	}
	hv, err := hypervisorOf(repo, sys)
	if err != nil {
		return err
	}
	host, err := cmdcore.Dial(conf)(hv.MgmtIP)
	if err != nil {
		return err
	}
	known := map[string]struct{}{sys.Name: {}}
	macs := map[string]struct{}{}
	if err := provision.FromBacking(ctx, host, hv.VMPath, sys.Name, known, macs); err != nil {
		return err
	}
	sys.BackingImage = false
	return store.Update(repo.Systems(), sys.Name, sys)
}

// Audit exits 1 on a failed audit rather than returning a cobra error, per
// the CLI's "audit exits 0 on PASS, 1 on FAIL" exit-code contract.
func (h Handler) Audit(cmd *cobra.Command, args []string) error {
	ctx, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	conf, err := h.Conf()
	if err != nil {
		return err
	}
	sys, err := store.Get(repo.Systems(), args[0])
	if err != nil {
		return err
	}
	hv, err := hypervisorOf(repo, sys)
	if err != nil {
		return err
	}
	host, err := cmdcore.Dial(conf)(hv.MgmtIP)
	if err != nil {
		return err
	}
	report, err := audit.Audit(ctx, repo, host, sys)
	if err != nil {
		return err
	}
	for _, m := range report.Mismatches {
		fmt.Printf("%s: %s: %s\n", m.Path, m.Kind, m.Detail)
	}
	if !report.Pass() {
		fmt.Println("FAIL")
		os.Exit(1)
	}
	fmt.Println("PASS")
	return nil
}

func (h Handler) AddDisk(cmd *cobra.Command, args []string) error {
	ctx, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	conf, err := h.Conf()
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	sys, err := store.Get(repo.Systems(), args[0])
	if err != nil {
		return err
	}
	hv, err := hypervisorOf(repo, sys)
	if err != nil {
		return err
	}
	host, err := cmdcore.Dial(conf)(hv.MgmtIP)
	if err != nil {
		return err
	}
	backingPath, _ := cmd.Flags().GetString("backing-path")
	bus, _ := cmd.Flags().GetString("bus")
	deviceID, err := provision.AddSecondaryDisk(ctx, host, hv.VMPath, sys.Name, args[1], args[2], backingPath, bus)
	if err != nil {
		return err
	}
	fmt.Println("device:", deviceID)
	return nil
}

// ProvisionStatus reads the background log and reports every event recorded
// for a system's most recent phase-2 run, oldest first.
func (h Handler) ProvisionStatus(cmd *cobra.Command, args []string) error {
	conf, err := h.Conf()
	if err != nil {
		return err
	}
	f, err := os.Open(conf.BackgroundLogFile())
	if err != nil {
		return err
	}
	defer f.Close()

	events, err := progprovision.ReadLog(f)
	if err != nil {
		return err
	}
	events = progprovision.ForSystem(events, args[0])
	if len(events) == 0 {
		fmt.Println("no background-log entries for", args[0])
		return nil
	}
	progprovision.Report(events, progress.NewTracker(func(e progprovision.Event) {
		line := fmt.Sprintf("%s %s", e.Time.Format("15:04:05"), e.Message)
		if e.Error != "" {
			line += ": " + e.Error
		}
		fmt.Println(line)
	}))
	return nil
}

func hypervisorOf(repo *store.Repo, sys records.System) (records.Hypervisor, error) {
	names, err := provision.HostsHoldingVM(repo, sys.Name)
	if err != nil {
		return records.Hypervisor{}, err
	}
	if len(names) == 0 {
		return records.Hypervisor{}, errs.MissingReferencef("no hypervisor currently holds %s", sys.Name)
	}
	return store.Get(repo.Hypervisors(), names[0])
}
