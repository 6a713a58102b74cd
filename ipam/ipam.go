// Package ipam implements Component C: per-/24 IP index files, allocation,
// reservation, scanning, and locate-by-address. IPv4 arithmetic is done with
// stdlib net/netip; the pack has no dedicated IPv4-math library and netip is
// the idiomatic modern-Go answer.
package ipam

import (
	"fmt"
	"net/netip"
	"sort"
	"strconv"
	"strings"

	"github.com/wstrucke/scs/errs"
	"github.com/wstrucke/scs/store"
	"github.com/wstrucke/scs/store/records"
)

// NetKey identifies a registered Network by its (location, zone, alias) key,
// the same string records.Network.Key() produces.
type NetKey = string

// Prefix returns the netip.Prefix for a Network's dotted network address and
// mask.
func Prefix(n records.Network) (netip.Prefix, error) {
	addr, err := netip.ParseAddr(n.NetworkAddr)
	if err != nil {
		return netip.Prefix{}, errs.Validationf("network %s: invalid network address %q: %w", n.Key(), n.NetworkAddr, err)
	}
	maskAddr, err := netip.ParseAddr(n.Mask)
	if err != nil {
		return netip.Prefix{}, errs.Validationf("network %s: invalid mask %q: %w", n.Key(), n.Mask, err)
	}
	return addr.Prefix(maskBits(maskAddr))
}

func maskBits(mask netip.Addr) int {
	bits := 0
	for _, b := range mask.AsSlice() {
		for i := 7; i >= 0; i-- {
			if b&(1<<uint(i)) == 0 {
				return bits
			}
			bits++
		}
	}
	return bits
}

// IndexFiles returns the sorted list of /24 network addresses covering
// prefix. A /24 or smaller network rounds up to a single /24; a network
// larger than /24 is split across consecutive /24s.
func IndexFiles(prefix netip.Prefix) []string {
	bits := prefix.Bits()
	base := prefix.Masked().Addr().As4()
	baseU32 := u32(base) &^ 0xff // zero the host octet

	if bits >= 24 { //nolint:mnd
		return []string{dotted(baseU32)}
	}

	subnets := uint32(1) << uint(24-bits) //nolint:mnd
	out := make([]string, 0, subnets)
	for i := uint32(0); i < subnets; i++ {
		out = append(out, dotted(baseU32+i*256)) //nolint:mnd
	}
	return out
}

func u32(b [4]byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]) //nolint:mnd
}

func dotted(v uint32) string {
	return fmt.Sprintf("%d.%d.%d.%d", byte(v>>24), byte(v>>16), byte(v>>8), byte(v)) //nolint:mnd
}

// octalOf renders the last octet of addr as a 3-digit zero-padded base-8
// string, the sortable key historically used for the index file's first
// column.
func octalOf(addr netip.Addr) string {
	a4 := addr.As4()
	return fmt.Sprintf("%03s", strconv.FormatInt(int64(a4[3]), 8)) //nolint:mnd
}

func indexFileFor(addr netip.Addr) string {
	a4 := addr.As4()
	return fmt.Sprintf("%d.%d.%d.0", a4[0], a4[1], a4[2])
}

func isNetworkOrBroadcast(prefix netip.Prefix, addr netip.Addr) bool {
	network := prefix.Masked().Addr()
	bc, err := Broadcast(prefix)
	if err != nil {
		return false
	}
	return addr == network || addr == bc
}

// Broadcast computes the broadcast address of prefix.
func Broadcast(prefix netip.Prefix) (netip.Addr, error) {
	base := prefix.Masked().Addr().As4()
	ones := prefix.Bits()
	var out [4]byte
	for i := range out {
		bitsInByte := ones - 8*i
		switch {
		case bitsInByte >= 8: //nolint:mnd
			out[i] = base[i]
		case bitsInByte <= 0:
			out[i] = 0xff
		default:
			out[i] = base[i] | byte(0xff>>uint(bitsInByte))
		}
	}
	return netip.AddrFrom4(out), nil
}

func store24(repo *store.Repo, netFile string) *store.FileStore[records.IPRow, *records.IPRow] {
	return repo.IPIndex(netFile)
}

// Assign implements `assign(ip, hostname, force, comment)`. It rejects an
// address absent from its /24 file, a reserved address (unless force), and
// an address already assigned to a different hostname (unless force). If
// the address is not yet assigned but responds to a liveness probe, it is
// instead marked reserved with an auto-comment and ErrBusy is returned.
func Assign(repo *store.Repo, ip, hostname string, force bool, comment, owner string, probe LivenessProbe) error {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return errs.Validationf("invalid ip %q: %w", ip, err)
	}
	fs := store24(repo, indexFileFor(addr))
	rows, err := fs.Load()
	if err != nil {
		return err
	}
	idx := -1
	for i := range rows {
		if rows[i].DottedIP == ip {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errs.MissingReferencef("%s is not a managed address", ip)
	}
	row := rows[idx]
	if row.Reserved && !force {
		return errs.Conflictf("%s is reserved", ip)
	}
	if row.Assigned() && row.Hostname != hostname && !force {
		return errs.Conflictf("%s is already assigned to %s", ip, row.Hostname)
	}
	if !row.Assigned() && probe != nil && probe(ip) {
		row.Reserved = true
		row.Comment = "auto-reserved: address responded to liveness probe"
		rows[idx] = row
		if err := fs.Save(rows); err != nil {
			return err
		}
		return errs.Conflictf("%s appears to be in use; reserved instead of assigned", ip)
	}
	row.Reserved = false
	row.DHCP = false
	row.Hostname = hostname
	row.Comment = cleanComment(comment)
	row.Owner = owner
	rows[idx] = row
	return fs.Save(rows)
}

func cleanComment(c string) string {
	c = strings.ReplaceAll(c, ",", " ")
	c = strings.ReplaceAll(c, "\n", " ")
	return strings.TrimSpace(c)
}

// Unassign implements `unassign(ip)`: clears hostname/owner, leaves
// reservation untouched.
func Unassign(repo *store.Repo, ip string) error {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return errs.Validationf("invalid ip %q: %w", ip, err)
	}
	fs := store24(repo, indexFileFor(addr))
	return store.Mutate(fs, func(rows []records.IPRow) ([]records.IPRow, error) {
		for i := range rows {
			if rows[i].DottedIP == ip {
				rows[i].Hostname = ""
				rows[i].Owner = ""
				return rows, nil
			}
		}
		return nil, errs.MissingReferencef("%s is not a managed address", ip)
	})
}

// ListAvailable implements `list-available(net-key)`: every row across the
// network's /24 files where reserved=n, dhcp=n, hostname="".
func ListAvailable(repo *store.Repo, n records.Network) ([]records.IPRow, error) {
	prefix, err := Prefix(n)
	if err != nil {
		return nil, err
	}
	var out []records.IPRow
	for _, file := range IndexFiles(prefix) {
		rows, err := store24(repo, file).Load()
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			if !r.Reserved && !r.DHCP && !r.Assigned() {
				out = append(out, r)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DottedIP < out[j].DottedIP })
	return out, nil
}

// LivenessProbe reports whether ip appears to be in use on the network.
type LivenessProbe func(ip string) bool

// Scan implements `scan(net-key)`: every unregistered address in range that
// responds to probe is inserted and marked reserved with an auto-comment.
// Returns the addresses newly reserved.
func Scan(repo *store.Repo, n records.Network, probe LivenessProbe) ([]string, error) {
	prefix, err := Prefix(n)
	if err != nil {
		return nil, err
	}
	var reserved []string
	for _, file := range IndexFiles(prefix) {
		fs := store24(repo, file)
		err := store.Mutate(fs, func(rows []records.IPRow) ([]records.IPRow, error) {
			byIP := make(map[string]int, len(rows))
			for i, r := range rows {
				byIP[r.DottedIP] = i
			}
			base, err := netip.ParseAddr(file)
			if err != nil {
				return rows, err
			}
			b4 := base.As4()
			for i := 0; i < 256; i++ { //nolint:mnd
				b4[3] = byte(i)
				addr := netip.AddrFrom4(b4)
				if !prefix.Contains(addr) || isNetworkOrBroadcast(prefix, addr) {
					continue
				}
				if idx, ok := byIP[addr.String()]; ok {
					if rows[idx].Assigned() || rows[idx].Reserved {
						continue
					}
				}
				if !probe(addr.String()) {
					continue
				}
				reserved = append(reserved, addr.String())
				newRow := records.IPRow{
					OctalIP: octalOf(addr), DottedIP: addr.String(),
					Reserved: true, Comment: "auto-reserved: scan detected a live host",
				}
				if idx, ok := byIP[addr.String()]; ok {
					rows[idx] = newRow
				} else {
					rows = append(rows, newRow)
				}
			}
			return rows, nil
		})
		if err != nil {
			return nil, err
		}
	}
	return reserved, nil
}

// Locate implements `locate(ip)`: every configured network whose range
// contains ip.
func Locate(repo *store.Repo, ip string) ([]records.Network, error) {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return nil, errs.Validationf("invalid ip %q: %w", ip, err)
	}
	all, err := store.List(repo.Networks())
	if err != nil {
		return nil, err
	}
	var out []records.Network
	for _, n := range all {
		prefix, err := Prefix(n)
		if err != nil {
			continue
		}
		if prefix.Contains(addr) {
			out = append(out, n)
		}
	}
	return out, nil
}

// AddRange implements `add-range(net-key, start, end)`: inserts rows for
// every address in [start, end] not already present, refusing to include
// the network address or broadcast of any covering /24.
func AddRange(repo *store.Repo, n records.Network, start, end netip.Addr) error {
	prefix, err := Prefix(n)
	if err != nil {
		return err
	}
	if !prefix.Contains(start) || !prefix.Contains(end) {
		return errs.Validationf("range %s-%s is not contained in network %s", start, end, n.Key())
	}
	return eachInRange(start, end, func(addr netip.Addr) error {
		file := indexFileFor(addr)
		return store.Mutate(store24(repo, file), func(rows []records.IPRow) ([]records.IPRow, error) {
			net24, err := netip.ParsePrefix(file + "/24")
			if err != nil {
				return rows, err
			}
			if isNetworkOrBroadcast(net24, addr) {
				return rows, nil
			}
			for _, r := range rows {
				if r.DottedIP == addr.String() {
					return rows, nil
				}
			}
			rows = append(rows, records.IPRow{OctalIP: octalOf(addr), DottedIP: addr.String()})
			return rows, nil
		})
	})
}

// RemoveRange implements `remove-range`: deletes rows for every address in
// [start, end].
func RemoveRange(repo *store.Repo, start, end netip.Addr) error {
	return eachInRange(start, end, func(addr netip.Addr) error {
		file := indexFileFor(addr)
		return store.Mutate(store24(repo, file), func(rows []records.IPRow) ([]records.IPRow, error) {
			out := rows[:0]
			for _, r := range rows {
				if r.DottedIP != addr.String() {
					out = append(out, r)
				}
			}
			return out, nil
		})
	})
}

// ReserveRange implements `reserve-range`: sets reserved=y for every address
// in [start, end], inserting a bare reserved row if absent.
func ReserveRange(repo *store.Repo, start, end netip.Addr) error {
	return eachInRange(start, end, func(addr netip.Addr) error {
		file := indexFileFor(addr)
		return store.Mutate(store24(repo, file), func(rows []records.IPRow) ([]records.IPRow, error) {
			for i, r := range rows {
				if r.DottedIP == addr.String() {
					rows[i].Reserved = true
					return rows, nil
				}
			}
			rows = append(rows, records.IPRow{OctalIP: octalOf(addr), DottedIP: addr.String(), Reserved: true})
			return rows, nil
		})
	})
}

func eachInRange(start, end netip.Addr, fn func(netip.Addr) error) error {
	if end.Less(start) {
		return errs.Validationf("range end %s precedes start %s", end, start)
	}
	addr := start
	for {
		if err := fn(addr); err != nil {
			return err
		}
		if addr == end {
			return nil
		}
		addr = addr.Next()
	}
}
