package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"net/netip"
	"os"
	"strings"

	"bgpattr/attr"
	"bgpattr/update"

	"github.com/osrg/gobgp/v4/pkg/packet/bgp"
)

func main() {
	var sock string
	var aggregator string
	var nonInteractive bool

	flag.StringVar(&sock, "socket", "/tmp/attrcodec.sock", "Unix socket path to send raw BGP bytes to")
	flag.StringVar(&aggregator, "aggregator", "", "Address carried in ATOMIC_AGGREGATE (empty for 0.0.0.0)")
	flag.BoolVar(&nonInteractive, "non-interactive", false, "Run without interactive prompts")
	// suppress automatic usage output; only show usage on explicit errors
	flag.Usage = func() {}
	flag.Parse()

	reader := bufio.NewReader(os.Stdin)
	if !nonInteractive {
		fmt.Printf("Unix socket path (%s): ", sock)
		s, _ := reader.ReadString('\n')
		if s = strings.TrimSpace(s); s != "" {
			sock = s
		}

		fmt.Print("Aggregator address (e.g. 192.0.2.1 or 2001:db8::1): ")
		a, _ := reader.ReadString('\n')
		if a = strings.TrimSpace(a); a != "" {
			aggregator = a
		}
	}

	agg := netip.IPv4Unspecified()
	if aggregator != "" {
		var err error
		if agg, err = netip.ParseAddr(aggregator); err != nil {
			fmt.Fprintln(os.Stderr, "Error: bad aggregator address:", err)
			printUsage()
			os.Exit(1)
		}
	}

	fmt.Printf("About to send UPDATE to %s with ATOMIC_AGGREGATE=%s\n", sock, agg)

	data, err := constructUpdate(agg)
	if err != nil {
		fmt.Printf("Failed to build BGP message: %v\n", err)
		os.Exit(1)
	}

	c, err := net.Dial("unix", sock)
	if err != nil {
		fmt.Printf("Failed to connect to unix socket %s: %v\n", sock, err)
		os.Exit(1)
	}
	defer c.Close()

	if _, err = c.Write(data); err != nil {
		fmt.Printf("Failed to write to unix socket: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Sent UPDATE (%d bytes) to %s\n", len(data), sock)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [--socket path] [--aggregator IP] [--non-interactive]\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "If --non-interactive is not set, the program will prompt for values.")
	fmt.Fprintln(os.Stderr, "Examples:")
	fmt.Fprintln(os.Stderr, "  ", os.Args[0], "--aggregator 192.0.2.1 --non-interactive")
}

// constructUpdate lets gobgp encode ORIGIN, then rebuilds the message with
// our ATOMIC_AGGREGATE appended.
func constructUpdate(agg netip.Addr) ([]byte, error) {
	base, err := bgp.NewBGPUpdateMessage(nil, []bgp.PathAttributeInterface{bgp.NewPathAttributeOrigin(0)}, nil).Serialize()
	if err != nil {
		return nil, err
	}
	section, err := update.PathAttributes(base)
	if err != nil {
		return nil, err
	}
	attrs, err := (&update.Parser{}).ParseAttrs(section)
	if err != nil {
		return nil, err
	}
	attrs = append(attrs, attr.NewAtomicAggregate(agg))
	return update.NewMessage(nil, attrs...)
}
