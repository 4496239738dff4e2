package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/farmkeeper/internal/client/client"
	"github.com/dmitrijs2005/farmkeeper/internal/client/models"
)

// Register prompts for the sign-up form and creates the account.
func (a *App) Register(ctx context.Context) error {
	var r models.Registration
	var err error

	if r.Username, err = getSimpleText(a.reader, "Enter username (letters and digits)", a.out); err != nil {
		return err
	}
	if r.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}
	if r.Password, r.ConfirmPassword, err = getNewPassword(a.out); err != nil {
		return err
	}

	if err := a.accounts.Register(ctx, r); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Registration successful, you can log in now")
	return nil
}

func (a *App) ForgotPassword(ctx context.Context, email string) error {
	if err := a.accounts.RequestPasswordReset(ctx, email); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "A reset code has been sent to", email)
	return nil
}

func (a *App) VerifyReset(ctx context.Context, otp string) error {
	if err := a.accounts.VerifyResetCode(ctx, otp); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Code accepted; run \"password confirm\" to set a new password")
	return nil
}

func (a *App) ConfirmReset(ctx context.Context) error {
	first, second, err := getNewPassword(a.out)
	if err != nil {
		return err
	}
	if first != second {
		return fmt.Errorf("%w: passwords do not match", client.ErrInvalidInput)
	}

	if err := a.accounts.ConfirmPasswordReset(ctx, first); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password updated")
	return nil
}

func (a *App) ShowProfile(ctx context.Context) error {
	d, err := a.accounts.Profile(ctx)
	if err != nil {
		return err
	}
	printDetails(a, d)
	return nil
}

// UpdateProfile applies the non-nil fields on top of the current details.
func (a *App) UpdateProfile(ctx context.Context, bio, location, address *string) error {
	d, err := a.accounts.Profile(ctx)
	if err != nil {
		return err
	}
	if bio != nil {
		d.Bio = *bio
	}
	if location != nil {
		d.Location = *location
	}
	if address != nil {
		d.Address = *address
	}

	updated, err := a.accounts.UpdateProfile(ctx, *d)
	if err != nil {
		return err
	}
	printDetails(a, updated)
	return nil
}

func printDetails(a *App, d *models.ProfileDetails) {
	fmt.Fprintln(a.out, "Username:", d.Username)
	fmt.Fprintln(a.out, "Bio:     ", d.Bio)
	fmt.Fprintln(a.out, "Location:", d.Location)
	fmt.Fprintln(a.out, "Address: ", d.Address)
}
