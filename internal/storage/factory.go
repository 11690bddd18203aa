package storage

import (
	"fmt"
	"log/slog"
	"strings"
)

// New builds a provider from opts: the transport follows opts.Backend and the
// layout is dual whenever a public or private container name is set.
func New(opts Options, log *slog.Logger) (Provider, error) {
	if log == nil {
		log = slog.Default()
	}
	transport, err := newTransport(opts)
	if err != nil {
		return nil, err
	}
	if opts.Dual() {
		p, err := NewDual(transport, opts, log)
		if err != nil {
			return nil, err
		}
		log.Info("storage provider ready", "backend", backendName(opts), "layout", "dual",
			"public", p.public.BaseAddress, "private", p.private.BaseAddress)
		return p, nil
	}
	p, err := NewSingle(transport, opts, log)
	if err != nil {
		return nil, err
	}
	log.Info("storage provider ready", "backend", backendName(opts), "layout", "single",
		"container", p.container.BaseAddress)
	return p, nil
}

func backendName(opts Options) string {
	return pathOr(strings.ToLower(opts.Backend), BackendAzure)
}

func newTransport(opts Options) (Transport, error) {
	switch backendName(opts) {
	case BackendAzure:
		return NewAzureTransport(opts.Account, opts.AccountKey, opts.serviceURL())
	case BackendS3:
		return NewMinioTransport(opts.Endpoint, opts.Account, opts.AccountKey, opts.UseSSL)
	case BackendMemory:
		return NewMemoryTransport(), nil
	default:
		return nil, &ConfigurationError{Field: "backend", Err: fmt.Errorf("unsupported backend %q", opts.Backend)}
	}
}
