package main

import (
	"context"
	"time"

	"github.com/desertthunder/flickx/internal/models"
	"github.com/urfave/cli/v3"
)

// AuthStatusView is the JSON shape of auth status.
type AuthStatusView struct {
	Authenticated bool             `json:"authenticated"`
	User          *models.Identity `json:"user,omitempty"`
	ExpiresAt     *time.Time       `json:"expires_at,omitempty"`
}

// AuthLogin signs in as a directory identity.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.state(ctx); err != nil {
		return err
	}

	id, err := r.session.Login(ctx, cmd.String("email"), cmd.String("password"))
	if err != nil {
		return err
	}
	return r.writePlain("✓ Signed in as %s (%s)\n", id.Name, id.Role)
}

// AuthRegister creates a standard identity and signs in as it.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	if err := r.state(ctx); err != nil {
		return err
	}

	id, err := r.session.Register(ctx, cmd.String("email"), cmd.String("password"), cmd.String("name"))
	if err != nil {
		return err
	}
	return r.writePlain("✓ Registered and signed in as %s <%s>\n", id.Name, id.Email)
}

// AuthLogout signs out. Signing out without a session is not an error.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.state(ctx); err != nil {
		return err
	}

	if err := r.session.Logout(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus reports the current identity, its role and when the session token expires.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.state(ctx); err != nil {
		return err
	}

	view := AuthStatusView{}
	if id, ok := r.session.Identity(); ok {
		view.Authenticated = true
		view.User = &id
		if claims, ok := r.session.Claims(); ok {
			exp := claims.Expiry()
			view.ExpiresAt = &exp
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(view, cmd.Bool("pretty"))
	}

	if !view.Authenticated {
		return r.writePlain("✗ Not signed in\n")
	}
	r.writePlain("✓ Signed in\n")
	r.writePlain("User:  %s <%s>\n", view.User.Name, view.User.Email)
	r.writePlain("Role:  %s\n", view.User.Role)
	if view.ExpiresAt != nil {
		r.writePlain("Token: expires %s\n", view.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}
