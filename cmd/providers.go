package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/capread/internal/config"
	"github.com/lehigh-university-libraries/capread/pkg/azure"
	"github.com/lehigh-university-libraries/capread/pkg/google"
	"github.com/lehigh-university-libraries/capread/pkg/providers"
)

// providerFactories holds providers compiled in behind build tags
var providerFactories = map[string]func(c *config.Config) providers.Provider{}

// newProvider returns the configured OCR provider and a func releasing
// whatever it holds open
func newProvider(ctx context.Context, c *config.Config) (providers.Provider, func(), error) {
	registry := providers.NewRegistry()
	registry.Register(azure.NewOCR(c.Azure.OCR.URL, c.Azure.OCR.Key))

	cleanup := func() {}
	name := strings.ToLower(c.Provider)
	if name == "google" {
		g, err := google.New(ctx, c.Google.CredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		registry.Register(g)
		cleanup = closer(g)
	}
	for _, factory := range providerFactories {
		registry.Register(factory(c))
	}

	p, err := registry.Get(name)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if err := providers.Validate(p); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("provider %s: %w", name, err)
	}
	slog.Debug("Using OCR provider", "provider", p.Name(), "available", registry.List())
	return p, cleanup, nil
}

func closer(c io.Closer) func() {
	return func() {
		if err := c.Close(); err != nil {
			slog.Warn("Failed to close provider", "err", err)
		}
	}
}
