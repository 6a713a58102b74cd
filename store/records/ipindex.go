package records

import "github.com/wstrucke/scs/errs"

// IPRow is one row of a per-/24 IP index file: (octal_ip, dotted_ip, reserved,
// dhcp, hostname, host_iface, comment, iface_comment, owner). Presence of a
// row implies the address is managed; absence implies out-of-range.
type IPRow struct {
	OctalIP       string
	DottedIP      string
	Reserved      bool
	DHCP          bool
	Hostname      string
	HostIface     string
	Comment       string
	IfaceComment  string
	Owner         string
}

func (r *IPRow) Key() string { return r.DottedIP }

func (r *IPRow) ToFields() []string {
	return []string{
		r.OctalIP, r.DottedIP, boolField(r.Reserved), boolField(r.DHCP),
		r.Hostname, r.HostIface, r.Comment, r.IfaceComment, r.Owner,
	}
}

func (r *IPRow) FromFields(f []string) error {
	if err := expectFields("ip-row", f, 9); err != nil {
		return err
	}
	r.OctalIP, r.DottedIP = f[0], f[1]
	var err error
	if r.Reserved, err = parseYN("reserved", f[2]); err != nil {
		return err
	}
	if r.DHCP, err = parseYN("dhcp", f[3]); err != nil {
		return err
	}
	r.Hostname, r.HostIface, r.Comment, r.IfaceComment, r.Owner = f[4], f[5], f[6], f[7], f[8]
	return nil
}

func (r *IPRow) Validate() error {
	if r.DottedIP == "" {
		return errs.Validationf("ip-row: dotted_ip is required")
	}
	return nil
}

// Assigned reports whether this address currently belongs to a system.
func (r *IPRow) Assigned() bool { return r.Hostname != "" }
