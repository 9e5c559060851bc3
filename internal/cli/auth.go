package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/stuverflow/stuverflow-go/internal/common"
	"github.com/stuverflow/stuverflow-go/internal/models"
)

func (a *App) Login(ctx context.Context) error {
	handle, err := GetSimpleText(a.reader, "Enter handle", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword("Enter password", a.out)
	if err != nil {
		return err
	}

	identity, err := a.client.LoginUser(ctx, models.LoginRequest{Handle: handle, Password: password})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUnauthorized):
			fmt.Fprintln(a.out, "Invalid handle or password.")
		case errors.Is(err, common.ErrUnavailable):
			fmt.Fprintln(a.out, "Server unavailable, try again later.")
		default:
			fmt.Fprintln(a.out, "Login failed:", err)
		}
		return err
	}

	if err := a.session.Login(ctx, *identity); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}
	fmt.Fprintf(a.out, "Logged in as @%s\n", identity.Handle)
	return nil
}

func (a *App) Signup(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	handle, err := GetSimpleText(a.reader, "Enter handle", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	confirm, err := GetPassword("Confirm password", a.out)
	if err != nil {
		return err
	}

	req := models.SignupRequest{Name: name, Handle: handle, Email: email, Password: password, ConfirmPassword: confirm}
	if err := req.Validate(); err != nil {
		fmt.Fprintln(a.out, "Invalid input:", err)
		return err
	}

	identity, err := a.client.SignupUser(ctx, req)
	if err != nil {
		fmt.Fprintln(a.out, "Signup failed:", err)
		return err
	}
	if err := a.session.Login(ctx, *identity); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}
	fmt.Fprintf(a.out, "Welcome, @%s\n", identity.Handle)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		fmt.Fprintln(a.out, "Logout failed:", err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	user := a.session.CurrentUser()
	if user == nil {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	fmt.Fprintf(a.out, "@%s: %s", user.Handle, user.Name)
	if user.Institution != "" {
		fmt.Fprintf(a.out, " (%s)", user.Institution)
	}
	fmt.Fprintln(a.out)
	return nil
}

func (a *App) UpdateBio(ctx context.Context) error {
	bio, err := GetSimpleText(a.reader, "Enter new bio", a.out)
	if err != nil {
		return err
	}

	patch := models.IdentityPatch{Bio: &bio}
	updated, err := a.client.UpdateProfile(ctx, models.ProfileUpdateRequest{Patch: patch})
	if err != nil {
		fmt.Fprintln(a.out, "Update failed:", err)
		return err
	}
	// keep the local session in sync with what the backend accepted
	if err := a.session.UpdateUser(ctx, models.IdentityPatch{Bio: &updated.Bio}); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Profile updated.")
	return nil
}
