// Package config resolves CLI flags (plus an optional YAML overlay)
// into a validated Options struct, following the same
// setDefaults/validate split the teacher's conf package uses.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// Mode selects which protocol the fuzzer targets.
type Mode int

const (
	ModeNone Mode = iota
	ModeSSDP
	ModeSOAP
	ModeEvent
)

// Action selects what the selected mode should do.
type Action int

const (
	ActionNone Action = iota
	ActionDiscover
	ActionList
	ActionRaw
	ActionFuzz
)

// Options holds every configurable value from §6 of the specification.
type Options struct {
	Mode   Mode
	Action Action

	Target string // host:port for ssdp, description URL for soap/event

	Strategy string // "all" | "injection" | "overflow" | "radamsa"

	Delay          time.Duration
	AliveURL       string
	CrashDir       string
	RestartCmd     string
	RestartDelay   time.Duration
	RadamsaPath    string
	NetworkTimeout time.Duration
	InterfaceIP    string
	EventCallback  string

	ConfigFile string
}

// overlay is the subset of Options an operator can pre-populate from a
// YAML file via --config, merged in before flag defaults apply.
type overlay struct {
	Delay          *float64 `yaml:"delay"`
	AliveURL       string   `yaml:"alive_url"`
	CrashDir       string   `yaml:"crash_dir"`
	RestartCmd     string   `yaml:"restart_cmd"`
	RestartDelay   *int     `yaml:"restart_delay"`
	RadamsaPath    string   `yaml:"radamsa_path"`
	NetworkTimeout *float64 `yaml:"network_timeout"`
	InterfaceIP    string   `yaml:"interface_ip"`
	EventCallback  string   `yaml:"esp_callback"`
}

// LoadOverlay reads the YAML file at path (if any) and applies its
// values onto o wherever the corresponding flag was left unset: at its
// zero value, or, for crash_dir, esp_callback, restart_delay and
// network_timeout, at its default (restart_delay and network_timeout
// are only overridden when still exactly at their default). A flag
// set to a non-default value always wins over the config file.
func (o *Options) LoadOverlay() error {
	if o.ConfigFile == "" {
		return nil
	}

	data, err := os.ReadFile(o.ConfigFile)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var ov overlay
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if o.AliveURL == "" {
		o.AliveURL = ov.AliveURL
	}
	if o.CrashDir == "" || o.CrashDir == DefaultCrashDir {
		if ov.CrashDir != "" {
			o.CrashDir = ov.CrashDir
		}
	}
	if o.RestartCmd == "" {
		o.RestartCmd = ov.RestartCmd
	}
	if o.RadamsaPath == "" {
		o.RadamsaPath = ov.RadamsaPath
	}
	if o.InterfaceIP == "" {
		o.InterfaceIP = ov.InterfaceIP
	}
	if o.EventCallback == "" || o.EventCallback == DefaultEventCallback {
		if ov.EventCallback != "" {
			o.EventCallback = ov.EventCallback
		}
	}
	if o.Delay == 0 && ov.Delay != nil {
		o.Delay = time.Duration(*ov.Delay * float64(time.Second))
	}
	if o.RestartDelay == DefaultRestartDelay && ov.RestartDelay != nil {
		o.RestartDelay = time.Duration(*ov.RestartDelay) * time.Second
	}
	if o.NetworkTimeout == DefaultNetworkTimeout && ov.NetworkTimeout != nil {
		o.NetworkTimeout = time.Duration(*ov.NetworkTimeout * float64(time.Second))
	}

	return nil
}

const (
	DefaultCrashDir       = "/tmp/fuzz_upnpfuzz"
	DefaultRestartDelay   = 30 * time.Second
	DefaultNetworkTimeout = 5 * time.Second
	DefaultEventCallback  = "http://192.168.2.159:8000/callback"
)

func (o *Options) setDefaults() {
	if o.CrashDir == "" {
		o.CrashDir = DefaultCrashDir
	}
	if o.RestartDelay == 0 {
		o.RestartDelay = DefaultRestartDelay
	}
	if o.NetworkTimeout == 0 {
		o.NetworkTimeout = DefaultNetworkTimeout
	}
	if o.EventCallback == "" {
		o.EventCallback = DefaultEventCallback
	}
}

func (o *Options) validate() []error {
	var errs []error

	if o.Action == ActionDiscover {
		return errs
	}

	if o.Mode == ModeNone {
		errs = append(errs, fmt.Errorf("one of --ssdp, --soap or --esp is required"))
	}
	if o.Target == "" {
		errs = append(errs, fmt.Errorf("target address is required"))
	}
	if o.Action == ActionFuzz {
		switch o.Strategy {
		case "all", "injection", "overflow", "radamsa":
		default:
			errs = append(errs, fmt.Errorf("unknown strategy %q", o.Strategy))
		}
	}
	if o.Action == ActionList && o.Mode != ModeSOAP {
		errs = append(errs, fmt.Errorf("--list is only valid with --soap"))
	}

	return errs
}

// Resolve applies the overlay (if configured), fills in defaults, and
// validates the final option set.
func (o *Options) Resolve() error {
	if err := o.LoadOverlay(); err != nil {
		return err
	}
	o.setDefaults()

	if errs := o.validate(); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		return fmt.Errorf("invalid configuration: %v", msgs)
	}
	return nil
}
