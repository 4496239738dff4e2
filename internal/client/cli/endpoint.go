package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/farmkeeper/internal/client/endpoint"
)

// SetEndpoint validates, persists and applies a new server address. With
// strict (or StrictIP in the config) only dotted IPv4 addresses are accepted.
func (a *App) SetEndpoint(ctx context.Context, raw string, strict bool) error {
	if strict || a.config.StrictIP {
		if err := endpoint.ValidateIPv4(raw); err != nil {
			return err
		}
	}

	if err := a.registry.Update(ctx, raw); err != nil {
		return err
	}

	ep, _ := a.registry.Endpoint()
	fmt.Fprintln(a.out, "Endpoint set to", ep)
	return nil
}

func (a *App) ShowEndpoint(ctx context.Context) error {
	ep, ok := a.registry.Endpoint()
	if !ok {
		fmt.Fprintln(a.out, "Endpoint not set")
		return nil
	}
	fmt.Fprintf(a.out, "%s (entered as %q)\n", ep, a.registry.Raw())
	return nil
}

func (a *App) ClearEndpoint(ctx context.Context) error {
	if err := a.registry.Forget(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Endpoint cleared")
	return nil
}
