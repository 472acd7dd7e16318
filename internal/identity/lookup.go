// Package identity resolves user identifiers to login names by running an
// external lookup command, one identifier at a time.
package identity

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/samber/lo"

	"github.com/janekbaraniewski/storagereport/internal/parsers"
)

// Placeholder in a lookup command argument is replaced with the identifier.
const Placeholder = "{}"

const (
	loginKey = "login"
	dnKey    = "dn"
)

// Lookup returns the candidate login names for an identifier.
type Lookup interface {
	Lookup(ctx context.Context, identifier string) ([]string, error)
}

type LookupFunc func(ctx context.Context, identifier string) ([]string, error)

func (f LookupFunc) Lookup(ctx context.Context, identifier string) ([]string, error) {
	return f(ctx, identifier)
}

// CommandLookup runs Command once per identifier and reads the output as
// blank-line separated directory records. Each record with a "login: <name>"
// line is one candidate; records repeating an earlier "dn:" are counted once.
type CommandLookup struct {
	Command []string
}

var ErrNoCommand = errors.New("no lookup command configured")

func (c CommandLookup) Lookup(ctx context.Context, identifier string) ([]string, error) {
	if len(c.Command) == 0 {
		return nil, ErrNoCommand
	}
	binary, args := c.argv(identifier)

	out, err := runLookup(ctx, binary, args...)
	if err != nil {
		return nil, err
	}

	records := lo.Filter(parsers.ParseRecords(out), func(rec []parsers.KeyValue, _ int) bool {
		return recordValue(rec, loginKey) != ""
	})
	records = lo.UniqBy(records, func(rec []parsers.KeyValue) string {
		if dn := recordValue(rec, dnKey); dn != "" {
			return dn
		}
		return fmt.Sprint(rec)
	})
	return lo.Map(records, func(rec []parsers.KeyValue, _ int) string {
		return recordValue(rec, loginKey)
	}), nil
}

func recordValue(rec []parsers.KeyValue, key string) string {
	for _, kv := range rec {
		if kv.Key == key && kv.Value != "" {
			return kv.Value
		}
	}
	return ""
}

func (c CommandLookup) argv(identifier string) (string, []string) {
	args := make([]string, 0, len(c.Command))
	substituted := false
	for _, a := range c.Command[1:] {
		if strings.Contains(a, Placeholder) {
			a = strings.ReplaceAll(a, Placeholder, identifier)
			substituted = true
		}
		args = append(args, a)
	}
	if !substituted {
		args = append(args, identifier)
	}
	return c.Command[0], args
}

// runLookup executes the command and returns stdout. A non-zero exit or
// signal is reported with whatever the command wrote to stderr.
func runLookup(ctx context.Context, binary string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return "", fmt.Errorf("%s %s failed: %w (%s)", binary, strings.Join(args, " "), err, detail)
		}
		return "", fmt.Errorf("%s %s failed: %w", binary, strings.Join(args, " "), err)
	}
	return stdout.String(), nil
}
