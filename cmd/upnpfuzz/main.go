// Command upnpfuzz is a protocol-aware network fuzzer for UPnP device
// stacks: SSDP discovery, SOAP action invocation, and eventing
// subscription, each driven through the same synthesize/mutate/send/
// probe loop.
package main

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"upnpfuzz/internal/config"
	"upnpfuzz/internal/discover"
	"upnpfuzz/internal/display"
	"upnpfuzz/internal/flog"
	"upnpfuzz/internal/fuzzloop"
	"upnpfuzz/internal/grammar/event"
	"upnpfuzz/internal/grammar/soap"
	"upnpfuzz/internal/grammar/ssdp"
	"upnpfuzz/internal/monitor"
	"upnpfuzz/internal/mutate"
	"upnpfuzz/internal/netio"
	"upnpfuzz/internal/radamsa"
	"upnpfuzz/internal/strategy"
	"upnpfuzz/internal/upnpclient"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// flagSet holds every raw CLI flag value before it's folded into a
// config.Options. Kept separate from Options because several flags
// (the mode selector, the strategy selector) are mutually exclusive
// and resolved only once parsing completes.
type flagSet struct {
	opts config.Options

	doDiscover                       bool
	ssdpTarget, soapTarget, espTarget string
	doList, doRaw                    bool
	doFuzz, doInjection, doOverflow  bool
	doRadamsa                        bool
	delaySeconds, restartDelaySeconds float64
	networkTimeoutSeconds            float64
}

func newRootCmd() *cobra.Command {
	var f flagSet

	cmd := &cobra.Command{
		Use:           "upnpfuzz",
		Short:         "protocol-aware fuzzer for UPnP device stacks",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.resolve(); err != nil {
				return err
			}

			flog.SetLevel(int(flog.Info))
			defer flog.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, &f.opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&f.doDiscover, "discover", false, "SSDP multicast discovery")
	flags.StringVar(&f.ssdpTarget, "ssdp", "", "fuzz SSDP at host:port")
	flags.StringVar(&f.soapTarget, "soap", "", "fuzz SOAP actions against a device description URL")
	flags.StringVar(&f.espTarget, "esp", "", "fuzz eventing against a device description URL")
	flags.BoolVar(&f.doList, "list", false, "print the SOAP action catalog and exit")
	flags.BoolVar(&f.doRaw, "raw", false, "raw-request mode, no mutation")
	flags.BoolVar(&f.doFuzz, "fuzz", false, "ALL strategy: pick radamsa/injection/overflow at random each request")
	flags.BoolVar(&f.doInjection, "injection", false, "injection strategy")
	flags.BoolVar(&f.doOverflow, "overflow", false, "overflow strategy")
	flags.BoolVar(&f.doRadamsa, "radamsa", false, "external mutator strategy")
	flags.Float64Var(&f.delaySeconds, "delay", 0, "inter-request delay in seconds")
	flags.StringVar(&f.opts.AliveURL, "alive-url", "", "URL polled to determine target liveness")
	flags.StringVar(&f.opts.CrashDir, "crash-dir", config.DefaultCrashDir, "directory crash-triggering requests are saved to")
	flags.StringVar(&f.opts.RestartCmd, "restart-cmd", "", "command run to restart the target after a crash")
	flags.Float64Var(&f.restartDelaySeconds, "restart-delay", 30, "seconds between liveness probes while restarting")
	flags.StringVar(&f.opts.RadamsaPath, "radamsa-path", "", "path to the external mutator binary")
	flags.Float64Var(&f.networkTimeoutSeconds, "network-timeout", 5, "network read/write timeout in seconds")
	flags.StringVar(&f.opts.InterfaceIP, "interface-ip", "", "outgoing interface IP for multicast discovery")
	flags.StringVar(&f.opts.EventCallback, "esp-callback", "", "callback URL advertised in NewSubscribe requests")
	flags.StringVar(&f.opts.ConfigFile, "config", "", "optional YAML config overlay")

	return cmd
}

// resolve folds the mutually exclusive mode/action flags into opts,
// applies the config overlay and defaults, and validates the result.
func (f *flagSet) resolve() error {
	switch {
	case f.doDiscover:
		f.opts.Action = config.ActionDiscover
	case f.ssdpTarget != "":
		f.opts.Mode, f.opts.Target = config.ModeSSDP, f.ssdpTarget
	case f.soapTarget != "":
		f.opts.Mode, f.opts.Target = config.ModeSOAP, f.soapTarget
	case f.espTarget != "":
		f.opts.Mode, f.opts.Target = config.ModeEvent, f.espTarget
	}

	switch {
	case f.opts.Action == config.ActionDiscover:
	case f.doList:
		f.opts.Action = config.ActionList
	case f.doRaw:
		f.opts.Action = config.ActionRaw
	case f.doInjection:
		f.opts.Action, f.opts.Strategy = config.ActionFuzz, "injection"
	case f.doOverflow:
		f.opts.Action, f.opts.Strategy = config.ActionFuzz, "overflow"
	case f.doRadamsa:
		f.opts.Action, f.opts.Strategy = config.ActionFuzz, "radamsa"
	case f.doFuzz:
		f.opts.Action, f.opts.Strategy = config.ActionFuzz, "all"
	}

	if f.opts.Action == config.ActionNone {
		return fmt.Errorf("one of --list, --raw, --fuzz, --injection, --overflow or --radamsa is required")
	}

	if f.delaySeconds > 0 {
		f.opts.Delay = time.Duration(f.delaySeconds * float64(time.Second))
	}
	if f.restartDelaySeconds > 0 {
		f.opts.RestartDelay = time.Duration(f.restartDelaySeconds * float64(time.Second))
	}
	if f.networkTimeoutSeconds > 0 {
		f.opts.NetworkTimeout = time.Duration(f.networkTimeoutSeconds * float64(time.Second))
	}

	return f.opts.Resolve()
}

func run(ctx context.Context, opts *config.Options) error {
	if opts.Action == config.ActionDiscover {
		return runDiscover(opts)
	}

	switch opts.Mode {
	case config.ModeSSDP:
		return runSSDP(ctx, opts)
	case config.ModeSOAP:
		return runSOAP(ctx, opts)
	case config.ModeEvent:
		return runEvent(ctx, opts)
	default:
		return fmt.Errorf("no protocol selected")
	}
}

func runDiscover(opts *config.Options) error {
	t := netio.New(ssdp.MulticastAddr, ssdp.MulticastPort, netio.UDP, opts.NetworkTimeout, opts.InterfaceIP)
	devices := discover.Run(t)
	discover.Print(devices)
	return nil
}

func runSSDP(ctx context.Context, opts *config.Options) error {
	host, portStr, err := net.SplitHostPort(opts.Target)
	if err != nil {
		return fmt.Errorf("--ssdp target must be host:port: %w", err)
	}
	port, err := parsePort(portStr)
	if err != nil {
		return err
	}

	gen := ssdp.New(host, port)
	disp := strategy.NewSSDP(gen, radamsa.New(opts.RadamsaPath))
	transport := netio.New(host, port, netio.UDP, opts.NetworkTimeout, opts.InterfaceIP)

	return runLoop(ctx, opts, "ssdp", disp.Dispatch, transport, nil, upnpclient.New(10*time.Second))
}

func runSOAP(ctx context.Context, opts *config.Options) error {
	client := upnpclient.New(10 * time.Second)

	catalog, err := soap.Bootstrap(ctx, client, opts.Target)
	if err != nil {
		flog.Errorf("SOAP grammar bootstrap failed: %v", err)
		return err
	}

	if opts.Action == config.ActionList {
		printCatalog(catalog)
		return nil
	}

	host, port, err := targetHostPort(opts.Target)
	if err != nil {
		return err
	}

	gen := soap.New(catalog, host, port)
	disp := strategy.NewSOAP(gen, radamsa.New(opts.RadamsaPath))
	transport := netio.New(host, port, netio.TCP, opts.NetworkTimeout, opts.InterfaceIP)

	return runLoop(ctx, opts, "soap", disp.Dispatch, transport, nil, client)
}

func runEvent(ctx context.Context, opts *config.Options) error {
	client := upnpclient.New(10 * time.Second)

	endpoints, err := event.Bootstrap(ctx, client, opts.Target)
	if err != nil {
		flog.Errorf("eventing grammar bootstrap failed: %v", err)
		return err
	}

	host, port, err := targetHostPort(opts.Target)
	if err != nil {
		return err
	}

	gen := event.New(endpoints, host, port, opts.EventCallback)
	disp := strategy.NewEvent(gen, radamsa.New(opts.RadamsaPath))
	transport := netio.New(host, port, netio.TCP, opts.NetworkTimeout, opts.InterfaceIP)

	return runLoop(ctx, opts, "esp", disp.Dispatch, transport, gen.TrackResponse, client)
}

// runLoop wires the generic fuzzloop.Params shared by all three
// protocols and blocks until ctx is cancelled.
func runLoop(ctx context.Context, opts *config.Options, generatorName string, dispatch fuzzloop.DispatchFunc, transport *netio.Transport, onResponse func([]byte), client *upnpclient.Client) error {
	selected := strategy.Raw
	if opts.Action == config.ActionFuzz {
		selected = parseStrategy(opts.Strategy)
	}

	fuzzloop.Run(ctx, fuzzloop.Params{
		GeneratorName:    generatorName,
		SelectedStrategy: selected,
		Dispatch:         dispatch,
		Transport:        transport,
		Prober:           client,
		AliveURL:         opts.AliveURL,
		Display:          display.New(),
		Monitor:          monitor.NewState(opts.CrashDir, opts.RestartCmd, opts.RestartDelay),
		Delay:            opts.Delay,
		RNG:              mutate.NewEntropyRand(),
		OnResponse:       onResponse,
	})
	return nil
}

func parseStrategy(s string) strategy.Strategy {
	switch s {
	case "injection":
		return strategy.Injection
	case "overflow":
		return strategy.Overflow
	case "radamsa":
		return strategy.Radamsa
	default:
		return strategy.All
	}
}

func parsePort(s string) (int, error) {
	var port int
	if _, err := fmt.Sscanf(s, "%d", &port); err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", s, err)
	}
	return port, nil
}

// targetHostPort derives the request Host/port pair from a device
// description URL, defaulting to port 80 (443 for https) when the URL
// omits one.
func targetHostPort(descriptionURL string) (string, int, error) {
	u, err := url.Parse(descriptionURL)
	if err != nil {
		return "", 0, fmt.Errorf("invalid target URL %q: %w", descriptionURL, err)
	}

	host := u.Hostname()
	if host == "" {
		return "", 0, fmt.Errorf("target URL %q has no host", descriptionURL)
	}

	if p := u.Port(); p != "" {
		port, err := parsePort(p)
		if err != nil {
			return "", 0, err
		}
		return host, port, nil
	}
	if u.Scheme == "https" {
		return host, 443, nil
	}
	return host, 80, nil
}

func printCatalog(catalog soap.Catalog) {
	for _, action := range catalog {
		dir := "OUT"
		if action.Direction == soap.In {
			dir = "IN"
		}
		fmt.Printf("%s %s %s (%s)\n", action.ControlURL, action.Name, dir, action.ServiceType)
		for _, arg := range action.Args {
			fmt.Printf("  - %s: %s\n", arg.Name, arg.DataType)
		}
	}
}
