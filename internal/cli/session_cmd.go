// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jeranaias/eduportal-tui/internal/auth"
	"github.com/jeranaias/eduportal-tui/internal/session"
)

// =============================================================================
// LOGIN / LOGOUT
// =============================================================================

// HandleLogin signs in and stores the session for the TUI.
func HandleLogin(env *Env, args Args, prompt *Prompter, w io.Writer) error {
	user := args.User
	var err error
	if user == "" {
		if user, err = prompt.Ask("Username", ""); err != nil {
			return err
		}
	}
	pass, err := prompt.Password("Password")
	if err != nil {
		return err
	}
	if user == "" || pass == "" {
		return &UsageError{Message: "Please enter username and password", Usage: "eduportal login [--user NAME]"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), env.Config.Server.Timeout())
	defer cancel()
	res, err := env.Gateway.Login(ctx, user, pass)
	if err != nil {
		env.Log.Info().Err(err).Str("user", user).Msg("login failed")
		return err
	}

	if err := env.Store.Save(auth.StoredSession{
		Token:     res.Token,
		User:      res.User,
		ServerURL: env.Gateway.BaseURL(),
		SavedAt:   time.Now(),
	}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	env.Log.Info().Str("user", res.User.Username).Str("role", string(res.User.Role)).Msg("signed in")

	if args.JSON {
		return NewJSONResponse("login", map[string]any{
			"username": res.User.Username,
			"role":     res.User.Role,
			"message":  res.Message,
		}).Write(w, false)
	}
	fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("[OK]"), res.Message)
	fmt.Fprintf(w, "%s%s (%s)\n", RenderLabel("Signed in as"), res.User.Username, res.User.Role)
	if res.User.DefaultPassword && !res.User.PasswordChanged {
		fmt.Fprintln(w, WarningStyle.Render("You are using a default password. You will be asked to change it."))
	}
	if !args.Quiet {
		fmt.Fprintln(w, DimStyle.Render("Run eduportal to open the portal."))
	}
	return nil
}

// HandleLogout ends the server session and always removes the stored one.
func HandleLogout(env *Env, args Args, w io.Writer) error {
	if err := env.Auth.Hydrate(env.Store); err != nil {
		if errors.Is(err, auth.ErrNoSession) {
			fmt.Fprintln(w, DimStyle.Render("Not signed in."))
			return nil
		}
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), env.Config.Server.Timeout())
	defer cancel()
	serverErr := env.Gateway.Logout(ctx)
	if serverErr != nil {
		env.Log.Warn().Err(serverErr).Msg("server logout failed, clearing local session")
	}
	env.Auth.Clear()
	if err := env.Store.Clear(); err != nil {
		return fmt.Errorf("remove session file: %w", err)
	}

	if args.JSON {
		return NewJSONResponse("logout", map[string]any{"server_logout": serverErr == nil}).Write(w, false)
	}
	fmt.Fprintf(w, "%s Logged out successfully\n", SuccessStyle.Render("[OK]"))
	if serverErr != nil && !args.Quiet {
		fmt.Fprintln(w, DimStyle.Render("The server could not be reached; the local session was removed."))
	}
	return nil
}

// =============================================================================
// FORGOT PASSWORD
// =============================================================================

// HandleForgotPassword resets a password after checking the year of birth.
func HandleForgotPassword(env *Env, args Args, prompt *Prompter, w io.Writer) error {
	user := args.User
	var err error
	if user == "" {
		if user, err = prompt.Ask("Username", ""); err != nil {
			return err
		}
	}
	year, err := prompt.Ask("Year of birth (YYYY)", "")
	if err != nil {
		return err
	}
	pw, err := prompt.Password("New password")
	if err != nil {
		return err
	}
	confirm, err := prompt.Password("Confirm new password")
	if err != nil {
		return err
	}
	if pw != confirm {
		return &UsageError{Message: "Passwords do not match"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), env.Config.Server.Timeout())
	defer cancel()
	msg, err := env.Gateway.ForgotPassword(ctx, user, year, pw)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("[OK]"), msg)
	return nil
}

// =============================================================================
// STATUS
// =============================================================================

// StatusInfo is what `eduportal status --json` reports.
type StatusInfo struct {
	Server           string `json:"server"`
	SessionFile      string `json:"session_file"`
	SignedIn         bool   `json:"signed_in"`
	Username         string `json:"username,omitempty"`
	Role             string `json:"role,omitempty"`
	RemainingSeconds int    `json:"remaining_seconds"`
	Remaining        string `json:"remaining"`
	TotalSeconds     int    `json:"total_seconds,omitempty"`
	SavedAt          string `json:"saved_at,omitempty"`
	Error            string `json:"error,omitempty"`
}

// CollectStatus asks the server about the stored session.
func CollectStatus(ctx context.Context, env *Env) (StatusInfo, error) {
	info := StatusInfo{Server: env.Gateway.BaseURL(), SessionFile: env.Store.Path(), Remaining: session.FormatRemaining(0)}
	stored, err := env.Store.Load()
	if err != nil {
		return info, err
	}
	if err := env.Auth.Establish(stored.Token, stored.User); err != nil {
		return info, err
	}
	info.Username = stored.User.Username
	info.Role = string(stored.User.Role)
	if !stored.SavedAt.IsZero() {
		info.SavedAt = stored.SavedAt.Format(time.RFC3339)
	}

	st, err := env.Gateway.SessionStatus(ctx)
	if err != nil {
		info.Error = err.Error()
		return info, err
	}
	info.SignedIn = st.Remaining > 0
	info.RemainingSeconds = st.Remaining
	info.Remaining = session.FormatRemaining(st.Remaining)
	info.TotalSeconds = st.Total
	if st.Username != "" {
		info.Username = st.Username
		info.Role = string(st.Role)
	}
	return info, nil
}

// HandleStatus prints the stored session and its remaining time.
func HandleStatus(env *Env, args Args, w io.Writer) error {
	ctx, cancel := context.WithTimeout(context.Background(), env.Config.Server.Timeout())
	defer cancel()
	info, err := CollectStatus(ctx, env)

	if args.JSON {
		resp := NewJSONResponse("status", info)
		if err != nil && !errors.Is(err, auth.ErrNoSession) {
			resp.Success = false
			msg := err.Error()
			resp.Error = &msg
		}
		return resp.Write(w, ColorsEnabled())
	}

	fmt.Fprintln(w, TitleStyle.Render("EduPortal Status"))
	fmt.Fprintf(w, "%s%s\n", RenderLabel("Server"), info.Server)
	fmt.Fprintf(w, "%s%s\n", RenderLabel("Session file"), info.SessionFile)
	if errors.Is(err, auth.ErrNoSession) {
		fmt.Fprintf(w, "%s%s\n", RenderLabel("Session"), DimStyle.Render("not signed in"))
		return nil
	}
	fmt.Fprintf(w, "%s%s (%s)\n", RenderLabel("User"), info.Username, info.Role)
	if info.SavedAt != "" {
		if t, perr := time.Parse(time.RFC3339, info.SavedAt); perr == nil {
			fmt.Fprintf(w, "%s%s\n", RenderLabel("Signed in"), humanize.Time(t))
		}
	}
	if err != nil {
		fmt.Fprintf(w, "%s%s %s\n", RenderLabel("Session"), RenderStatus("expired"), session.ExpiredMessage)
		return err
	}
	fmt.Fprintf(w, "%s%s %s remaining\n", RenderLabel("Session"), RenderStatus("active"), RenderRemaining(info.RemainingSeconds))
	return nil
}
