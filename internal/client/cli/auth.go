package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/farmkeeper/internal/client/services"
)

// Login authenticates with identifier (prompted when empty) and a password
// read without echo.
func (a *App) Login(ctx context.Context, identifier string) error {
	if identifier == "" {
		var err error
		identifier, err = getSimpleText(a.reader, "Enter username or email", a.out)
		if err != nil {
			return err
		}
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	if err := a.session.Login(ctx, identifier, string(password)); err != nil {
		return err
	}

	if u := a.session.User(); u != nil {
		fmt.Fprintln(a.out, "Logged in as", u.Username)
	} else {
		fmt.Fprintln(a.out, "Logged in; profile not loaded yet")
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// WhoAmI re-fetches and prints the current user.
func (a *App) WhoAmI(ctx context.Context) error {
	if a.session.Token() == "" {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	p, err := a.session.RefreshProfile(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Username:", p.Username)
	if p.Email != "" {
		fmt.Fprintln(a.out, "Email:   ", p.Email)
	}
	if name := p.FirstName + " " + p.LastName; name != " " {
		fmt.Fprintln(a.out, "Name:    ", name)
	}
	return nil
}

// Status prints the session state without network calls.
func (a *App) Status(ctx context.Context) error {
	snap := a.session.Snapshot()

	fmt.Fprintln(a.out, "State:   ", snap.State)
	if ep, ok := a.registry.Endpoint(); ok {
		fmt.Fprintln(a.out, "Endpoint:", ep)
	} else {
		fmt.Fprintln(a.out, "Endpoint: not set")
	}
	if snap.User != nil {
		fmt.Fprintln(a.out, "User:    ", snap.User.Username)
	}
	if exp, ok := services.TokenExpiry(snap.Token); ok {
		fmt.Fprintln(a.out, "Expires: ", exp.Local().Format(time.RFC1123))
	}

	entries, err := a.repo.Entries(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		saved := "unknown"
		if !e.UpdatedAt.IsZero() {
			saved = e.UpdatedAt.Local().Format(time.RFC1123)
		}
		fmt.Fprintf(a.out, "Stored:   %s (%d bytes, saved %s)\n", e.Key, e.Size, saved)
	}
	return nil
}

// Reset logs out and wipes everything kept in the local database, including
// the endpoint and any pending password reset.
func (a *App) Reset(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	if err := a.repo.Clear(ctx); err != nil {
		return err
	}
	if err := a.registry.Forget(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Local data cleared")
	return nil
}
