package hypervisor

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	cmdcore "github.com/wstrucke/scs/cmd/core"
	scshv "github.com/wstrucke/scs/hypervisor"
	"github.com/wstrucke/scs/store"
	"github.com/wstrucke/scs/store/records"
)

var header = []string{"name", "mgmt_ip", "location", "vm_path", "min_free_disk_mb", "min_free_mem_mb", "enabled"}

type Handler struct {
	cmdcore.BaseHandler
}

func fromFlags(cmd *cobra.Command, name string) records.Hypervisor {
	mgmtIP, _ := cmd.Flags().GetString("mgmt-ip")
	loc, _ := cmd.Flags().GetString("location")
	vmPath, _ := cmd.Flags().GetString("vm-path")
	minDisk, _ := cmd.Flags().GetInt("min-free-disk-mb")
	minMem, _ := cmd.Flags().GetInt("min-free-mem-mb")
	enabled, _ := cmd.Flags().GetBool("enabled")
	return records.Hypervisor{
		Name: name, MgmtIP: mgmtIP, Location: loc, VMPath: vmPath,
		MinFreeDiskMB: minDisk, MinFreeMemMB: minMem, Enabled: enabled,
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
	return store.Create(repo.Hypervisors(), fromFlags(cmd, args[0]))
}

func (h Handler) Update(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	return store.Update(repo.Hypervisors(), args[0], fromFlags(cmd, args[0]))
}

func (h Handler) Delete(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	return cmdcore.DeleteRecord(repo.Hypervisors(), args[0])
}

func (h Handler) List(cmd *cobra.Command, _ []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	return cmdcore.ListRecords(repo.Hypervisors(), header)
}

func (h Handler) Show(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	return cmdcore.ShowRecord(repo.Hypervisors(), args[0], header)
}

func (h Handler) LinkEnvironment(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	return store.Create(repo.HVEnvironments(), records.HVEnvironment{Hypervisor: args[0], Environment: args[1]})
}

func (h Handler) UnlinkEnvironment(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	return cmdcore.DeleteRecord(repo.HVEnvironments(), args[1]+":"+args[0])
}

func (h Handler) LinkNetwork(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	return store.Create(repo.HVNetworks(), records.HVNetwork{NetworkKey: args[1], Hypervisor: args[0], Interface: args[2]})
}

func (h Handler) UnlinkNetwork(cmd *cobra.Command, args []string) error {
	_, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	if err := h.RequireLock(); err != nil {
		return err
	}
	return cmdcore.DeleteRecord(repo.HVNetworks(), args[1]+":"+args[0])
}

func (h Handler) Poll(cmd *cobra.Command, args []string) error {
	ctx, repo, err := h.Init(cmd)
	if err != nil {
		return err
	}
	conf, err := h.Conf()
	if err != nil {
		return err
	}
	hv, err := store.Get(repo.Hypervisors(), args[0])
	if err != nil {
		return err
	}
	host, err := cmdcore.Dial(conf)(hv.MgmtIP)
	if err != nil {
		return err
	}
	res, err := scshv.PollResources(ctx, host, hv.VMPath)
	if err != nil {
		return err
	}
	running, err := scshv.RunningVMs(ctx, host)
	if err != nil {
		return err
	}
	fmt.Printf("free_disk_mb: %d\nfree_mem_mb: %d\nrunning: %s\n", res.FreeDiskMB, res.FreeMemMB, strings.Join(running, ", "))
	return nil
}
