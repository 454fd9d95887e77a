// Command pve-client performs a single Proxmox VE API call from the shell.
//
// Usage:
//
//	pve-client [flags] <get|create|set|delete> <path>
//
// Example:
//
//	PVE_TOKEN_VALUE=... pve-client --host pve1 --user root --token-name ci get /nodes
//	pve-client --config ~/.pve.yaml create /nodes/pve1/qemu/100/status/start
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/smnsjas/go-pve/client"
	"github.com/smnsjas/go-pve/internal/config"
	pvelog "github.com/smnsjas/go-pve/internal/log"
	"github.com/smnsjas/go-pve/pveapi/auth"
)

const (
	envPassword   = "PVE_PASSWORD"
	envTokenValue = "PVE_TOKEN_VALUE"
)

// options holds parsed command-line flags.
type options struct {
	configPath string
	host       string
	port       string
	realm      string
	user       string
	password   string
	tokenName  string
	tokenValue string
	data       []string
	insecure   bool
	timeout    time.Duration
	rateLimit  float64
	logLevel   string
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var opts options
	flagSet := pflag.NewFlagSet("pve-client", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&opts.configPath, "config", "", "YAML credential file")
	flagSet.StringVar(&opts.host, "host", "", "Proxmox VE hostname or address")
	flagSet.StringVar(&opts.port, "port", "", "API port (default 8006)")
	flagSet.StringVar(&opts.realm, "realm", "", "authentication realm (default pam)")
	flagSet.StringVarP(&opts.user, "user", "u", "", "user name without realm")
	flagSet.StringVar(&opts.password, "password", "", "password (prefer "+envPassword+" or the prompt)")
	flagSet.StringVar(&opts.tokenName, "token-name", "", "API token ID")
	flagSet.StringVar(&opts.tokenValue, "token-value", "", "API token secret (prefer "+envTokenValue+")")
	flagSet.StringArrayVarP(&opts.data, "data", "d", nil, "request parameter as key=value (repeatable)")
	flagSet.BoolVar(&opts.insecure, "insecure", false, "skip TLS certificate verification")
	flagSet.DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall timeout")
	flagSet.Float64Var(&opts.rateLimit, "rate-limit", 0, "max requests per second (0 = unlimited)")
	flagSet.StringVar(&opts.logLevel, "loglevel", "", "log level: debug, info, warn, error (empty = no logging)")
	flagSet.Usage = func() {
		fmt.Fprintf(stderr, "Usage: pve-client [flags] <get|create|set|delete> <path>\n\nFlags:\n")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if flagSet.NArg() != 2 {
		flagSet.Usage()
		return errors.New("expected an operation and a resource path")
	}
	op, path := strings.ToLower(flagSet.Arg(0)), flagSet.Arg(1)

	params, err := parseData(opts.data)
	if err != nil {
		return err
	}

	logger, err := newLogger(opts.logLevel, stderr)
	if err != nil {
		return err
	}

	src, err := buildSource(flagSet, &opts, os.Getenv, promptPassword)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	cfg := client.DefaultConfig()
	cfg.InsecureSkipVerify = opts.insecure
	cfg.Logger = logger
	if opts.rateLimit > 0 {
		cfg.RateLimit = opts.rateLimit
	}

	c, err := client.New(ctx, src, cfg)
	if err != nil {
		return err
	}
	logger.Debug("session ready", "credentials", c.Credentials(), "scheme", c.AuthScheme())

	data, err := call(ctx, c, op, path, params)
	if err != nil {
		return err
	}
	return writeJSON(stdout, data)
}

// call dispatches op to the matching client method.
func call(ctx context.Context, c *client.Client, op, path string, params url.Values) (json.RawMessage, error) {
	switch op {
	case "get":
		return c.Get(ctx, path, params)
	case "create":
		return c.Create(ctx, path, params)
	case "set":
		return c.Set(ctx, path, params)
	case "delete":
		return c.Delete(ctx, path, params)
	default:
		return nil, fmt.Errorf("unknown operation %q (want get, create, set or delete)", op)
	}
}

// parseData turns repeated key=value flags into request parameters.
func parseData(pairs []string) (url.Values, error) {
	params := url.Values{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --data %q: want key=value", pair)
		}
		params.Add(key, value)
	}
	return params, nil
}

// buildSource merges the credential file with flags and the environment.
// Flags override file values; secrets fall back to the environment and,
// for passwords, an interactive prompt.
func buildSource(flagSet *pflag.FlagSet, opts *options, getenv func(string) string, prompt func() (string, error)) (auth.Map, error) {
	src := auth.Map{}
	if opts.configPath != "" {
		f, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		src = f.Source()
	}

	for flagName, key := range map[string]string{
		"host":        auth.KeyHostname,
		"port":        auth.KeyPort,
		"realm":       auth.KeyRealm,
		"user":        auth.KeyUsername,
		"password":    auth.KeyPassword,
		"token-name":  auth.KeyTokenName,
		"token-value": auth.KeyTokenValue,
	} {
		if flagSet.Changed(flagName) {
			src[key] = flagSet.Lookup(flagName).Value.String()
		}
	}

	_, hasName := src[auth.KeyTokenName]
	_, hasValue := src[auth.KeyTokenValue]
	if hasName || hasValue {
		if v := getenv(envTokenValue); !hasValue && v != "" {
			src[auth.KeyTokenValue] = v
		}
		return src, nil
	}

	if _, ok := src[auth.KeyPassword]; !ok {
		if v := getenv(envPassword); v != "" {
			src[auth.KeyPassword] = v
		} else if prompt != nil {
			pw, err := prompt()
			if err != nil {
				return nil, fmt.Errorf("read password: %w", err)
			}
			src[auth.KeyPassword] = pw
		}
	}
	return src, nil
}

// promptPassword reads a password from the terminal without echo, or a
// single line from piped stdin.
func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		pw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// newLogger builds a redacting text logger, or a discarding one when level
// is empty.
func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "":
		return slog.New(slog.DiscardHandler), nil
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level %q: want debug, info, warn or error", level)
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(pvelog.NewRedactingHandler(handler)), nil
}

// writeJSON pretty-prints the response data.
func writeJSON(w io.Writer, data json.RawMessage) error {
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("format response: %w", err)
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}
