// Package config loads the runtime's environment-derived configuration,
// the way internal/config packages commonly load service
// configuration: a typed struct populated from environment variables with
// sane defaults, plus validation that turns malformed entries into a
// startup-time error instead of a panic deep inside a handler.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Platform selects module-lookup preferences (LLRT_PLATFORM).
type Platform string

const (
	PlatformNode    Platform = "node"
	PlatformBrowser Platform = "browser"
)

// Config holds every environment variable recognised by the runtime (see
// spec.md §6 "Environment variables (recognised)").
type Config struct {
	Handler       string // _HANDLER / LAMBDA_HANDLER
	RuntimeAPI    string // AWS_LAMBDA_RUNTIME_API
	TaskRoot      string // LAMBDA_TASK_ROOT

	FunctionName   string
	FunctionVer    string
	MemorySizeMB   int
	LogGroupName   string
	LogStreamName  string

	ExitIterations int // _EXIT_ITERATIONS

	NetAllow []string // LLRT_NET_ALLOW
	NetDeny  []string // LLRT_NET_DENY

	GCThresholdMB int // LLRT_GC_THRESHOLD_MB

	PseudoModuleDir string // LLRT_PSEUDO_MODULE_DIR
	Platform        Platform

	LogLevel  string
	LogFormat string
}

// rawConfig is the envdecode target: every scalar environment variable
// spec.md §6 recognises, tagged the way the teacher's pkg/config tags
// its own ServerConfig/DatabaseConfig/LoggingConfig fields. The handful
// of fields that need more than a straight string/int decode (the
// whitespace-separated net lists, the Platform enum) are decoded here
// as raw strings and post-processed by Load.
type rawConfig struct {
	Handler       string `env:"_HANDLER,LAMBDA_HANDLER"`
	RuntimeAPI    string `env:"AWS_LAMBDA_RUNTIME_API"`
	TaskRoot      string `env:"LAMBDA_TASK_ROOT"`
	FunctionName  string `env:"AWS_LAMBDA_FUNCTION_NAME"`
	FunctionVer   string `env:"AWS_LAMBDA_FUNCTION_VERSION"`
	MemorySizeMB  int    `env:"AWS_LAMBDA_FUNCTION_MEMORY_SIZE"`
	LogGroupName  string `env:"AWS_LAMBDA_LOG_GROUP_NAME"`
	LogStreamName string `env:"AWS_LAMBDA_LOG_STREAM_NAME"`

	ExitIterations int `env:"_EXIT_ITERATIONS"`

	NetAllowRaw string `env:"LLRT_NET_ALLOW"`
	NetDenyRaw  string `env:"LLRT_NET_DENY"`

	GCThresholdMB int `env:"LLRT_GC_THRESHOLD_MB"`

	PseudoModuleDir string `env:"LLRT_PSEUDO_MODULE_DIR"`
	PlatformRaw     string `env:"LLRT_PLATFORM"`

	LogLevel  string `env:"LLRT_LOG_LEVEL,default=info"`
	LogFormat string `env:"LLRT_LOG_FORMAT,default=text"`
}

// Load reads configuration from the process environment. An optional
// dotenv file at .env is loaded first (missing file is not an error,
// matching godotenv.Load's own semantics); explicit environment
// variables always take precedence since godotenv never overwrites an
// already-set variable. Decoding itself goes through envdecode, the
// same library the teacher's pkg/config uses for this exact concern.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var raw rawConfig
	if err := envdecode.Decode(&raw); err != nil {
		// envdecode errors when none of its tagged fields were set in
		// the environment; that just means "run with every default".
		if !strings.Contains(err.Error(), "none of the target fields were set") {
			return nil, fmt.Errorf("decoding environment: %w", err)
		}
	}

	cfg := &Config{
		Handler:         raw.Handler,
		RuntimeAPI:      raw.RuntimeAPI,
		TaskRoot:        raw.TaskRoot,
		FunctionName:    raw.FunctionName,
		FunctionVer:     raw.FunctionVer,
		MemorySizeMB:    raw.MemorySizeMB,
		LogGroupName:    raw.LogGroupName,
		LogStreamName:   raw.LogStreamName,
		ExitIterations:  raw.ExitIterations,
		GCThresholdMB:   raw.GCThresholdMB,
		PseudoModuleDir: raw.PseudoModuleDir,
		LogLevel:        raw.LogLevel,
		LogFormat:       raw.LogFormat,
	}

	allow, err := parseNetList(raw.NetAllowRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid LLRT_NET_ALLOW: %w", err)
	}
	cfg.NetAllow = allow

	deny, err := parseNetList(raw.NetDenyRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid LLRT_NET_DENY: %w", err)
	}
	cfg.NetDeny = deny

	switch strings.ToLower(raw.PlatformRaw) {
	case "browser":
		cfg.Platform = PlatformBrowser
	default:
		cfg.Platform = PlatformNode
	}

	return cfg, nil
}

// parseNetList splits a whitespace-separated list of URIs or host:port
// pairs, validating that each entry parses as a URI once http:// is
// prepended when no scheme is present (spec.md §6).
func parseNetList(raw string) ([]string, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if err := validateNetEntry(f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func validateNetEntry(entry string) error {
	candidate := entry
	if !strings.Contains(candidate, "://") {
		candidate = "http://" + candidate
	}
	u, err := url.ParseRequestURI(candidate)
	if err != nil {
		return fmt.Errorf("entry %q: %w", entry, err)
	}
	if u.Host == "" {
		return fmt.Errorf("entry %q: missing host", entry)
	}
	return nil
}
