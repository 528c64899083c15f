package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/rigado/wimax/linux/tap"
)

// Config is the daemon configuration.
type Config struct {
	LogLevel      string
	EventSocket   string
	IdentityCache string
	HTTPAddr      string
	Devices       []DeviceConfig
}

// DeviceConfig describes one attached modem.
type DeviceConfig struct {
	Index int

	Uart string
	Baud uint

	Socket  string
	Timeout time.Duration

	MTU         int
	QoS         bool
	Aggregation bool
}

func (d DeviceConfig) Name() string {
	return fmt.Sprintf("wm%d", d.Index)
}

type fileDevice struct {
	Index       int    `toml:"index"`
	Uart        string `toml:"uart"`
	Baud        uint   `toml:"baud"`
	Socket      string `toml:"socket"`
	Timeout     string `toml:"timeout"`
	MTU         int    `toml:"mtu"`
	QoS         *bool  `toml:"qos"`
	Aggregation *bool  `toml:"aggregation"`
}

type fileConfig struct {
	LogLevel      string       `toml:"log_level"`
	EventSocket   string       `toml:"event_socket"`
	IdentityCache string       `toml:"identity_cache"`
	HTTPAddr      string       `toml:"http_addr"`
	Devices       []fileDevice `toml:"device"`
}

const defaultTimeout = 2 * time.Second

func defaultConfig() Config {
	return Config{
		LogLevel:      "info",
		EventSocket:   "/run/wimaxd/events.sock",
		IdentityCache: "/var/lib/wimaxd/identity.json",
		HTTPAddr:      "127.0.0.1:9680",
	}
}

func defaultDevice(idx int) DeviceConfig {
	return DeviceConfig{
		Index:       idx,
		Timeout:     defaultTimeout,
		MTU:         tap.DefaultMTU,
		QoS:         true,
		Aggregation: true,
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, errors.Wrap(err, "load config")
	}
	if un := meta.Undecoded(); len(un) > 0 {
		return Config{}, errors.Errorf("unknown config keys %v", un)
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("event_socket") {
		cfg.EventSocket = strings.TrimSpace(raw.EventSocket)
	}
	if meta.IsDefined("identity_cache") {
		cfg.IdentityCache = strings.TrimSpace(raw.IdentityCache)
	}
	if meta.IsDefined("http_addr") {
		cfg.HTTPAddr = strings.TrimSpace(raw.HTTPAddr)
	}

	for i, fd := range raw.Devices {
		d := defaultDevice(fd.Index)
		d.Uart = strings.TrimSpace(fd.Uart)
		d.Baud = fd.Baud
		d.Socket = strings.TrimSpace(fd.Socket)
		if fd.Timeout != "" {
			if d.Timeout, err = time.ParseDuration(strings.TrimSpace(fd.Timeout)); err != nil {
				return Config{}, errors.Wrapf(err, "parse device[%d].timeout", i)
			}
		}
		if fd.MTU != 0 {
			d.MTU = fd.MTU
		}
		if fd.QoS != nil {
			d.QoS = *fd.QoS
		}
		if fd.Aggregation != nil {
			d.Aggregation = *fd.Aggregation
		}
		cfg.Devices = append(cfg.Devices, d)
	}

	return cfg, nil
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if c.EventSocket == "" {
		return errors.New("event_socket is required")
	}
	if len(c.Devices) == 0 {
		return errors.New("no device configured")
	}

	seen := map[int]bool{}
	for _, d := range c.Devices {
		switch {
		case d.Index < 0 || d.Index > 0xFFFF:
			return errors.Errorf("%s: index out of range", d.Name())
		case seen[d.Index]:
			return errors.Errorf("%s: configured twice", d.Name())
		case d.Uart == "" && d.Socket == "":
			return errors.Errorf("%s: needs uart or socket", d.Name())
		case d.Uart != "" && d.Socket != "":
			return errors.Errorf("%s: uart and socket are exclusive", d.Name())
		case d.Socket != "" && d.Timeout <= 0:
			return errors.Errorf("%s: socket timeout must be positive", d.Name())
		case d.MTU < 576 || d.MTU > 9000:
			return errors.Errorf("%s: mtu %d out of range", d.Name(), d.MTU)
		}
		seen[d.Index] = true
	}
	return nil
}
