// Command wimaxd attaches WiMAX modems and exposes them as network
// interfaces.
package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rigado/wimax"
	"github.com/rigado/wimax/cache"
	"github.com/rigado/wimax/event"
	"github.com/rigado/wimax/linux/nic"
	"github.com/rigado/wimax/linux/tap"
	"github.com/rigado/wimax/stats"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "wimaxd"
	app.Usage = "WiMAX modem host daemon"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config, c", Usage: "TOML configuration file"},
		cli.StringFlag{Name: "log-level", Usage: "override log_level"},
		cli.BoolFlag{Name: "trace", Usage: "log at trace level, overrides log-level"},
		cli.StringFlag{Name: "events", Usage: "override event_socket"},
		cli.StringFlag{Name: "http", Usage: "override http_addr"},
		cli.StringFlag{Name: "uart", Usage: "single device on this serial port"},
		cli.UintFlag{Name: "baud", Usage: "serial baud rate"},
		cli.StringFlag{Name: "socket", Usage: "single device behind this TCP bridge"},
		cli.DurationFlag{Name: "timeout", Value: defaultTimeout, Usage: "TCP bridge timeout"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		wimax.GetLogger().Error(err)
		os.Exit(1)
	}
}

func configure(c *cli.Context) (Config, error) {
	cfg := defaultConfig()
	if p := c.String("config"); p != "" {
		var err error
		if cfg, err = loadConfig(p); err != nil {
			return Config{}, err
		}
	}

	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("events") {
		cfg.EventSocket = c.String("events")
	}
	if c.IsSet("http") {
		cfg.HTTPAddr = c.String("http")
	}
	if c.IsSet("uart") || c.IsSet("socket") {
		d := defaultDevice(0)
		d.Uart = c.String("uart")
		d.Baud = c.Uint("baud")
		d.Socket = c.String("socket")
		d.Timeout = c.Duration("timeout")
		cfg.Devices = []DeviceConfig{d}
	}

	return cfg, cfg.Validate()
}

type device struct {
	nic *nic.NIC
	tap *tap.Device
}

func run(c *cli.Context) error {
	cfg, err := configure(c)
	if err != nil {
		return err
	}
	if err := wimax.SetLogLevel(cfg.LogLevel); err != nil {
		return err
	}
	if c.Bool("trace") {
		wimax.SetLogLevelMax()
	}
	logger := wimax.GetLogger()

	events := event.NewRegistry(event.ListenUnix(cfg.EventSocket))
	ids := cache.New(cfg.IdentityCache)
	reg := prometheus.NewRegistry()

	var devs []device
	defer func() {
		for _, d := range devs {
			d.nic.Stop()
			d.nic.Close()
			d.tap.Close()
		}
	}()

	byIndex := map[int]stateDevice{}
	for _, dc := range cfg.Devices {
		d, err := attach(dc, events, ids, reg)
		if err != nil {
			return errors.Wrapf(err, "can't attach %s", dc.Name())
		}
		devs = append(devs, d)
		byIndex[dc.Index] = d.nic
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/state/", stateHandler(byIndex))
	mux.Handle("/address/", addressHandler(byIndex))
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("http: %v", err)
		}
	}()
	defer srv.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	logger.Infof("%v, shutting down", s)
	return nil
}

func attach(dc DeviceConfig, events wimax.EventChannel, ids wimax.IdentityCache, reg prometheus.Registerer) (device, error) {
	logger := wimax.GetLogger().ChildLogger(map[string]interface{}{"dev": dc.Name()})

	td, err := tap.Open(dc.Name(), dc.MTU)
	if err != nil {
		return device{}, err
	}

	counters := stats.New(td.Name())
	if err := reg.Register(counters); err != nil {
		td.Close()
		return device{}, err
	}

	opts := []wimax.Option{
		wimax.OptDeviceIndex(dc.Index),
		wimax.OptCapabilities(wimax.Capabilities{QoS: dc.QoS, Aggregation: dc.Aggregation}),
		wimax.OptNetIf(td),
		wimax.OptStats(counters),
		wimax.OptEventChannel(events),
		wimax.OptIdentityCache(ids),
		wimax.OptErrorHandler(func(err error) { logger.Errorf("device failed: %v", err) }),
	}
	if dc.Uart != "" {
		opts = append(opts, wimax.OptTransportUart(dc.Uart, dc.Baud))
	} else {
		opts = append(opts, wimax.OptTransportSocket(dc.Socket, dc.Timeout))
	}

	n, err := nic.New(opts...)
	if err == nil {
		err = n.Init()
	}
	if err != nil {
		td.Close()
		return device{}, err
	}

	go func() {
		if err := td.Serve(n.Transmit); err != nil {
			logger.Error(err)
		}
	}()

	if err := td.SetUp(true); err != nil {
		logger.Warnf("can't bring %s up: %v", td.Name(), err)
	} else {
		n.Open()
	}
	return device{nic: n, tap: td}, nil
}
