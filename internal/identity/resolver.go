package identity

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/janekbaraniewski/storagereport/internal/core"
)

var ErrAmbiguous = errors.New("more than one login matched")

// Names maps identifiers to resolved login names. Only successful lookups
// of non-special identifiers appear in it.
type Names map[string]string

// Resolver looks identifiers up strictly one after another so that the
// lookup service never sees more than one request from us at a time.
type Resolver struct {
	Lookup   Lookup
	Special  core.SpecialSet
	Disabled bool
	// Timeout bounds each lookup when positive. Zero waits indefinitely.
	Timeout time.Duration
	Sink    core.WarningSink
}

// Resolve walks ids in order. Failures are reported to the sink and leave
// the identifier unresolved; they never stop the remaining lookups.
func (r *Resolver) Resolve(ctx context.Context, ids []string) Names {
	names := make(Names)
	if r.Disabled || r.Lookup == nil {
		return names
	}
	sink := r.Sink
	if sink == nil {
		sink = core.Discard
	}

	for _, id := range ids {
		if r.Special.Contains(id) {
			continue
		}
		if ctx.Err() != nil {
			log.Printf("identity: stopping before %s: %v", id, ctx.Err())
			break
		}

		name, err := r.resolveOne(ctx, id)
		switch {
		case err != nil:
			sink.Warn(core.Warning{
				Kind:    core.WarnLookup,
				Subject: id,
				Message: fmt.Sprintf("resolving %s: %v", id, err),
			})
		case name != "":
			names[id] = name
		}
	}
	return names
}

func (r *Resolver) resolveOne(ctx context.Context, id string) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	start := time.Now()
	logins, err := r.Lookup.Lookup(ctx, id)
	log.Printf("identity: lookup %s took %s (%d matches, err=%v)", id, time.Since(start).Round(time.Millisecond), len(logins), err)
	if err != nil {
		return "", err
	}

	switch len(logins) {
	case 0:
		return "", nil
	case 1:
		return logins[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguous, strings.Join(logins, ", "))
	}
}

// Label is how an identifier is shown in the user table.
func (n Names) Label(id string, special core.SpecialSet) string {
	if special.Contains(id) {
		return id
	}
	if name, ok := n[id]; ok {
		return "login: " + name
	}
	return "uuid:  " + id
}
