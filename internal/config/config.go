package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atomicstack/earctl/internal/app"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envTransport     = "EARCTL_TRANSPORT"
	envAddress       = "EARCTL_ADDRESS"
	envNamePrefix    = "EARCTL_NAME_PREFIX"
	envAdapter       = "EARCTL_ADAPTER"
	envSerialPort    = "EARCTL_SERIAL_PORT"
	envBaud          = "EARCTL_BAUD"
	envChannel       = "EARCTL_CHANNEL"
	envSimulateFail  = "EARCTL_SIMULATE_FAIL"
	envShutdownGrace = "EARCTL_SHUTDOWN_GRACE"
	envWidth         = "EARCTL_WIDTH"
	envTrace         = "EARCTL_TRACE"
	envLogFile       = "EARCTL_LOG_FILE"
)

const (
	defaultNamePrefix    = "Nothing Ear"
	defaultAdapter       = "hci0"
	defaultBaud          = 115200
	defaultChannel       = 15
	defaultShutdownGrace = 2 * time.Second
)

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	fs := flag.NewFlagSet("earctl", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	transport := fs.String("transport", envOrDefault(env, envTransport, app.TransportRFCOMM), "device transport: rfcomm, serial or simulated")
	address := fs.String("address", envOrDefault(env, envAddress, ""), "bluetooth address of the earbuds (default: first connected device matching -name-prefix)")
	namePrefix := fs.String("name-prefix", envOrDefault(env, envNamePrefix, defaultNamePrefix), "device alias prefix used when no address is given")
	adapter := fs.String("adapter", envOrDefault(env, envAdapter, defaultAdapter), "bluetooth adapter name")
	serialPort := fs.String("serial-port", envOrDefault(env, envSerialPort, ""), "tty bound to the device, for -transport serial")
	baud := fs.Int("baud", envOrInt(env, envBaud, defaultBaud), "serial baud rate")
	channel := fs.Int("channel", envOrInt(env, envChannel, defaultChannel), "rfcomm channel of the control service")
	simulateFail := fs.String("simulate-fail", envOrDefault(env, envSimulateFail, ""), "comma separated operations the simulated device rejects")
	grace := fs.Duration("shutdown-grace", envOrDuration(env, envShutdownGrace, defaultShutdownGrace), "how long to wait for the worker on exit before cancelling it (0 cancels immediately)")
	width := fs.Int("width", envOrInt(env, envWidth, 0), "viewport width in cells (0 uses terminal width)")
	trace := fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *width < 0 {
		return Config{}, fmt.Errorf("width must be >= 0 (got %d)", *width)
	}

	cfg := Config{
		App: app.Config{
			Transport:        strings.ToLower(strings.TrimSpace(*transport)),
			Address:          strings.TrimSpace(*address),
			NamePrefix:       *namePrefix,
			Adapter:          *adapter,
			SerialPort:       *serialPort,
			BaudRate:         *baud,
			Channel:          *channel,
			SimulateFailures: *simulateFail,
			ShutdownGrace:    *grace,
			Width:            *width,
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		Flags: map[string]string{
			"transport":     *transport,
			"address":       *address,
			"namePrefix":    *namePrefix,
			"adapter":       *adapter,
			"serialPort":    *serialPort,
			"baud":          strconv.Itoa(*baud),
			"channel":       strconv.Itoa(*channel),
			"simulateFail":  *simulateFail,
			"shutdownGrace": grace.String(),
			"width":         strconv.Itoa(*width),
			"trace":         strconv.FormatBool(*trace),
			"logFile":       *logFile,
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate checks option combinations that flag parsing cannot.
func Validate(cfg Config) error {
	a := cfg.App
	switch a.Transport {
	case app.TransportRFCOMM:
		if a.Channel < 1 || a.Channel > 30 {
			return fmt.Errorf("channel must be between 1 and 30 (got %d)", a.Channel)
		}
	case app.TransportSerial:
		if a.SerialPort == "" {
			return errors.New("-serial-port is required with -transport serial")
		}
		if a.BaudRate <= 0 {
			return fmt.Errorf("baud must be > 0 (got %d)", a.BaudRate)
		}
	case app.TransportSimulated:
	default:
		return fmt.Errorf("unknown transport %q (want rfcomm, serial or simulated)", a.Transport)
	}
	if a.SimulateFailures != "" && a.Transport != app.TransportSimulated {
		return errors.New("-simulate-fail only applies to -transport simulated")
	}
	if a.ShutdownGrace < 0 {
		return fmt.Errorf("shutdown-grace must be >= 0 (got %s)", a.ShutdownGrace)
	}
	return nil
}
