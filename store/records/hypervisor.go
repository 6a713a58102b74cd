package records

import (
	"strconv"

	"github.com/wstrucke/scs/errs"
)

// Hypervisor is the (name, mgmt_ip, location, vm_path, min_free_disk_mb,
// min_free_mem_mb, enabled) entity.
type Hypervisor struct {
	Name          string
	MgmtIP        string
	Location      string
	VMPath        string
	MinFreeDiskMB int
	MinFreeMemMB  int
	Enabled       bool
}

func (h *Hypervisor) Key() string { return h.Name }

func (h *Hypervisor) ToFields() []string {
	return []string{
		h.Name, h.MgmtIP, h.Location, h.VMPath,
		strconv.Itoa(h.MinFreeDiskMB), strconv.Itoa(h.MinFreeMemMB), boolField(h.Enabled),
	}
}

func (h *Hypervisor) FromFields(f []string) error {
	if err := expectFields("hypervisor", f, 7); err != nil {
		return err
	}
	h.Name, h.MgmtIP, h.Location, h.VMPath = f[0], f[1], f[2], f[3]
	var err error
	if h.MinFreeDiskMB, err = atoiField("min_free_disk_mb", f[4]); err != nil {
		return err
	}
	if h.MinFreeMemMB, err = atoiField("min_free_mem_mb", f[5]); err != nil {
		return err
	}
	if h.Enabled, err = parseYN("enabled", f[6]); err != nil {
		return err
	}
	return nil
}

func (h *Hypervisor) Validate() error {
	if h.Name == "" {
		return errs.Validationf("hypervisor: name is required")
	}
	if h.VMPath == "" {
		return errs.Validationf("hypervisor %s: vm_path is required", h.Name)
	}
	return nil
}

// HVEnvironment is the many-to-many (environment, hypervisor) relation.
type HVEnvironment struct {
	Environment string
	Hypervisor  string
}

func (r *HVEnvironment) Key() string { return r.Environment + ":" + r.Hypervisor }
func (r *HVEnvironment) ToFields() []string { return []string{r.Environment, r.Hypervisor} }
func (r *HVEnvironment) FromFields(f []string) error {
	if err := expectFields("hv-environment", f, 2); err != nil {
		return err
	}
	r.Environment, r.Hypervisor = f[0], f[1]
	return nil
}
func (r *HVEnvironment) Validate() error {
	if r.Environment == "" || r.Hypervisor == "" {
		return errs.Validationf("hv-environment: environment and hypervisor are required")
	}
	return nil
}

// HVNetwork is the (loc-zone-alias, hypervisor, interface) relation linking a
// hypervisor's physical NIC to a registered network.
type HVNetwork struct {
	NetworkKey string // "loc-zone-alias"
	Hypervisor string
	Interface  string
}

func (r *HVNetwork) Key() string { return r.NetworkKey + ":" + r.Hypervisor }
func (r *HVNetwork) ToFields() []string {
	return []string{r.NetworkKey, r.Hypervisor, r.Interface}
}
func (r *HVNetwork) FromFields(f []string) error {
	if err := expectFields("hv-network", f, 3); err != nil {
		return err
	}
	r.NetworkKey, r.Hypervisor, r.Interface = f[0], f[1], f[2]
	return nil
}
func (r *HVNetwork) Validate() error {
	if r.NetworkKey == "" || r.Hypervisor == "" || r.Interface == "" {
		return errs.Validationf("hv-network: network key, hypervisor, and interface are required")
	}
	return nil
}

// HVSystem caches where a VM has been observed running; Preferred marks the
// currently-running copy when a VM exists on more than one hypervisor (e.g.
// mid-distribute).
type HVSystem struct {
	System     string
	Hypervisor string
	Preferred  bool
}

func (r *HVSystem) Key() string { return r.System + ":" + r.Hypervisor }
func (r *HVSystem) ToFields() []string {
	return []string{r.System, r.Hypervisor, boolField(r.Preferred)}
}
func (r *HVSystem) FromFields(f []string) error {
	if err := expectFields("hv-system", f, 3); err != nil {
		return err
	}
	r.System, r.Hypervisor = f[0], f[1]
	preferred, err := parseYN("preferred", f[2])
	if err != nil {
		return err
	}
	r.Preferred = preferred
	return nil
}
func (r *HVSystem) Validate() error {
	if r.System == "" || r.Hypervisor == "" {
		return errs.Validationf("hv-system: system and hypervisor are required")
	}
	return nil
}
