package main

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/songsmith/internal/server"
	"github.com/desertthunder/songsmith/internal/shared"
)

var mockKinds = []string{server.KindMelody, server.KindInstrumental, server.KindMix, server.KindVideo, server.KindFull}

// Mock serves the in-memory backend until interrupted.
func (r *Runner) Mock(ctx context.Context, cmd *cli.Command) error {
	fail, err := parseFailKinds(cmd.StringSlice("fail"))
	if err != nil {
		return err
	}

	headers, err := parseHeaderPairs(cmd.StringSlice("require-header"))
	if err != nil {
		return err
	}

	host := cmd.String("host")
	if host == "" {
		host = r.config.Server.Host
	}
	port := cmd.Int("port")
	if port == 0 {
		port = r.config.Server.Port
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	logger := shared.WithLogger(r.logger, "component", "mock")
	backend := server.NewMockBackend(server.MockOptions{Step: cmd.Float("step"), Fail: fail, Headers: headers}, logger)

	r.writePlain("Mock backend on http://%s (Ctrl-C to stop)\n", addr)
	r.writePlain("Point clients at it with %s=http://%s\n", shared.EnvBackendURL, addr)
	return server.Serve(ctx, addr, backend, logger)
}

func parseFailKinds(values []string) (map[string]bool, error) {
	fail := make(map[string]bool)
	for _, v := range values {
		for _, kind := range strings.Split(v, ",") {
			kind = strings.ToLower(strings.TrimSpace(kind))
			if kind == "" {
				continue
			}
			known := false
			for _, k := range mockKinds {
				if k == kind {
					known = true
					break
				}
			}
			if !known {
				return nil, fmt.Errorf("%w: unknown job kind %q (want one of %s)", shared.ErrInvalidFlag, kind, strings.Join(mockKinds, ", "))
			}
			fail[kind] = true
		}
	}
	return fail, nil
}

func parseHeaderPairs(values []string) (map[string]string, error) {
	headers := make(map[string]string, len(values))
	for _, v := range values {
		name, value, ok := strings.Cut(v, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: header %q is not Name=Value", shared.ErrInvalidFlag, v)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}
