package ipam

import (
	"bufio"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

// webPorts are probed with a ~1s timeout after the 22/2s probe misses.
var webPorts = []int{80, 443, 8080, 8443} //nolint:mnd

// Probe is the default LivenessProbe: an address is "in use" if any of TCP
// 22 (~2s), one of webPorts (~1s), an ICMP echo (4 probes, any reply), or a
// conflicting /etc/hosts entry succeeds.
func Probe(ip string) bool {
	if tcpAlive(ip, 22, 2*time.Second) { //nolint:mnd
		return true
	}
	for _, port := range webPorts {
		if tcpAlive(ip, port, 1*time.Second) { //nolint:mnd
			return true
		}
	}
	if icmpAlive(ip, 4) { //nolint:mnd
		return true
	}
	return hostsConflict(ip)
}

func tcpAlive(ip string, port int, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(ip, strconv.Itoa(port)), timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// icmpAlive sends up to count ICMP echo requests and reports whether any
// reply was received within a short per-probe timeout.
func icmpAlive(ip string, count int) bool {
	conn, err := icmp.ListenPacket("udp4", "0.0.0.0")
	if err != nil {
		// Raw ICMP requires privilege; treat as "cannot determine" rather
		// than a false negative/positive.
		return false
	}
	defer conn.Close() //nolint:errcheck

	dst, err := net.ResolveIPAddr("ip4", ip)
	if err != nil {
		return false
	}

	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho, Code: 0,
		Body: &icmp.Echo{ID: os.Getpid() & 0xffff, Seq: 1, Data: []byte("scs-ipam-probe")}, //nolint:mnd
	}
	wb, err := msg.Marshal(nil)
	if err != nil {
		return false
	}

	for i := 0; i < count; i++ {
		if _, err := conn.WriteTo(wb, &net.UDPAddr{IP: dst.IP}); err != nil {
			continue
		}
		_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond)) //nolint:mnd
		rb := make([]byte, 1500)                                        //nolint:mnd
		n, _, err := conn.ReadFrom(rb)
		if err != nil {
			continue
		}
		reply, err := icmp.ParseMessage(1, rb[:n]) //nolint:mnd // protocol 1 = ICMP
		if err != nil {
			continue
		}
		if reply.Type == ipv4.ICMPTypeEchoReply {
			return true
		}
	}
	return false
}

// hostsConflict reports whether /etc/hosts contains ip mapped to a hostname,
// which the spec treats as evidence of a conflicting manual assignment.
func hostsConflict(ip string) bool {
	f, err := os.Open("/etc/hosts")
	if err != nil {
		return false
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == ip { //nolint:mnd
			return true
		}
	}
	return false
}
