package portal

import (
	"fmt"
	"net"
)

// LocalIP returns the address of the interface that routes to dnsServer.
// Dialing UDP only binds the socket and picks a route; no packet is sent.
func LocalIP(dnsServer string) (string, error) {
	conn, err := net.Dial("udp", net.JoinHostPort(dnsServer, "80"))
	if err != nil {
		return "", fmt.Errorf("find local ip via %s: %w", dnsServer, err)
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP == nil {
		return "", fmt.Errorf("find local ip via %s: unexpected local address %v", dnsServer, conn.LocalAddr())
	}
	return addr.IP.String(), nil
}
