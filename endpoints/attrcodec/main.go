// Command attrcodec decodes and encodes BGP ATOMIC_AGGREGATE payloads
// and checks them against UPDATE messages built with gobgp.
package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/netip"
	"os"
	"strings"

	"bgpattr/attr"
	"bgpattr/config"
	"bgpattr/update"

	"github.com/osrg/gobgp/v4/pkg/packet/bgp"
	"go.uber.org/zap"
)

func main() {
	var cfgPath string
	var mode string
	var payload string
	var address string
	var strict bool
	var lenient bool
	var asJSON bool
	var sock string

	flag.StringVar(&cfgPath, "config", "", "Path to a JSON config file")
	flag.StringVar(&mode, "mode", "decode", "mode: decode|encode|update|listen")
	flag.StringVar(&payload, "payload", "", "Hex ATOMIC_AGGREGATE payload (decode)")
	flag.StringVar(&address, "addr", "0.0.0.0", "Address to encode (encode, update)")
	flag.BoolVar(&strict, "strict", false, "Reject zero-length ATOMIC_AGGREGATE payloads")
	flag.BoolVar(&lenient, "lenient", false, "Skip malformed attributes instead of failing")
	flag.BoolVar(&asJSON, "json", false, "Print results as JSON")
	flag.StringVar(&sock, "socket", "/tmp/attrcodec.sock", "Unix socket to read UPDATE messages from (listen)")
	flag.Usage = printUsage
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	// flags win over the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "strict":
			cfg.Strict = strict
		case "lenient":
			cfg.Lenient = lenient
		}
	})

	logger, err := cfg.Logger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	switch mode {
	case "decode":
		err = runDecode(cfg, logger, payload, asJSON)
	case "encode":
		err = runEncode(cfg, address)
	case "update":
		err = runUpdate(cfg, logger, address, asJSON)
	case "listen":
		err = runListen(cfg, logger, sock)
	default:
		err = fmt.Errorf("unknown mode %q", mode)
	}
	if err != nil {
		logger.Error("attrcodec failed", zap.String("mode", mode), zap.Error(err))
		if merr := attr.NotificationFor(err); merr != nil {
			fmt.Fprintf(os.Stderr, "NOTIFICATION code=%d subcode=%d data=%x\n", merr.TypeCode, merr.SubTypeCode, merr.Data)
		}
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [--config path] [--mode decode|encode|update|listen] [--payload HEX] [--addr IP] [--socket path] [--strict] [--lenient] [--json]\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Examples:")
	fmt.Fprintln(os.Stderr, "  ", os.Args[0], "--mode decode --payload 0a000001")
	fmt.Fprintln(os.Stderr, "  ", os.Args[0], "--mode encode --addr 2001:db8::1")
	fmt.Fprintln(os.Stderr, "  ", os.Args[0], "--mode update --addr 192.0.2.1 --json")
	fmt.Fprintln(os.Stderr, "  ", os.Args[0], "--mode listen --socket /tmp/attrcodec.sock --lenient")
}

func parseHex(s string) ([]byte, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}

func runDecode(cfg config.Config, logger *zap.Logger, payload string, asJSON bool) error {
	b, err := parseHex(payload)
	if err != nil {
		return fmt.Errorf("bad payload: %w", err)
	}
	a, err := attr.DecodeAtomicAggregate(cfg.Session(), b)
	if err != nil {
		return err
	}
	logger.Debug("decoded", zap.Object("attr", a))
	if asJSON {
		return printJSON(a)
	}
	fmt.Printf("%s family=%s\n", a, a.Family())
	return nil
}

func runEncode(cfg config.Config, address string) error {
	ip, err := netip.ParseAddr(address)
	if err != nil {
		return err
	}
	a := attr.NewAtomicAggregate(ip)
	buf := make([]byte, a.Len())
	n, err := a.Encode(cfg.Session(), buf)
	if err != nil {
		return err
	}
	fmt.Println(hex.EncodeToString(buf[:n]))
	return nil
}

// runUpdate serialises an UPDATE carrying ORIGIN through gobgp, appends
// our ATOMIC_AGGREGATE record, and parses the section back.
func runUpdate(cfg config.Config, logger *zap.Logger, address string, asJSON bool) error {
	ip, err := netip.ParseAddr(address)
	if err != nil {
		return err
	}
	msg := bgp.NewBGPUpdateMessage(nil, []bgp.PathAttributeInterface{bgp.NewPathAttributeOrigin(0)}, nil)
	data, err := msg.Serialize()
	if err != nil {
		return fmt.Errorf("serialize update: %w", err)
	}
	section, err := update.PathAttributes(data)
	if err != nil {
		return err
	}
	section, err = update.AppendAttrs(cfg.Session(), append([]byte(nil), section...), attr.NewAtomicAggregate(ip))
	if err != nil {
		return err
	}
	logger.Info("built path attributes", zap.Int("bytes", len(section)), zap.String("hex", hex.EncodeToString(section)))

	p := &update.Parser{Session: cfg.Session(), Logger: logger, Lenient: cfg.Lenient}
	attrs, err := p.ParseAttrs(section)
	if err != nil {
		return err
	}
	attrs = update.Dedup(attrs)
	if asJSON {
		out := make([]string, 0, len(attrs))
		for _, a := range attrs {
			out = append(out, a.String())
		}
		return printJSON(out)
	}
	for _, a := range attrs {
		fmt.Println(a)
	}
	return nil
}

// runListen accepts connections on a unix socket and prints the path
// attributes of every UPDATE received.
func runListen(cfg config.Config, logger *zap.Logger, sock string) error {
	_ = os.Remove(sock)
	l, err := net.Listen("unix", sock)
	if err != nil {
		return err
	}
	defer l.Close()
	logger.Info("listening", zap.String("socket", sock))

	p := &update.Parser{Session: cfg.Session(), Logger: logger, Lenient: cfg.Lenient}
	for {
		conn, err := l.Accept()
		if err != nil {
			return err
		}
		go handleConn(p, logger, conn)
	}
}

func handleConn(p *update.Parser, logger *zap.Logger, conn net.Conn) {
	defer conn.Close()
	for {
		msg, err := update.ReadMessage(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Warn("read failed", zap.Error(err))
			}
			return
		}
		section, err := update.PathAttributes(msg)
		if err != nil {
			logger.Warn("not a usable UPDATE", zap.Error(err))
			continue
		}
		attrs, err := p.ParseAttrs(section)
		if err != nil {
			logger.Warn("bad path attributes", zap.Error(err))
			if merr := attr.NotificationFor(err); merr != nil {
				logger.Warn("would send NOTIFICATION", zap.Uint8("code", merr.TypeCode), zap.Uint8("subcode", merr.SubTypeCode))
			}
		}
		for _, a := range attrs {
			fmt.Println(a)
		}
	}
}

func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
