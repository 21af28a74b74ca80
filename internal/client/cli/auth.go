package cli

import (
	"context"
	"os"
	"strings"

	"github.com/fitly/fitly/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for an email and password and attempts to
// create a new account.
//
// Registration does not sign the user in: on success the user is told the
// account is ready and can sign in. The password byte slice is securely
// wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	email = strings.TrimSpace(email)
	if email == "" || len(password) == 0 {
		printlnFn("Email and password are required.")
		return common.NewError(common.KindValidation, "email and password are required", nil)
	}

	if _, err := a.session.Register(ctx, email, string(password)); err != nil {
		printlnFn("Registration failed:", err.Error())
		return err
	}

	printlnFn("Account created. You can sign in now.")
	return nil
}

// Login prompts the user for credentials and tries to authenticate.
// Both fields are validated locally before any network call.
//
// The signed-in state lands through the session store's auth-change
// subscription, not through this method's return value; the screen only
// reports the outcome. The password is securely wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	email = strings.TrimSpace(email)
	if email == "" || len(password) == 0 {
		printlnFn("Email and password are required.")
		return common.NewError(common.KindValidation, "email and password are required", nil)
	}

	user, err := a.session.Login(ctx, email, string(password))
	if err != nil {
		printlnFn("Sign-in failed:", err.Error())
		return err
	}

	a.mu.Lock()
	a.lastEmail = user.Email
	a.mu.Unlock()

	printlnFn("Signed in as", user.Email)
	return nil
}

// WhoAmI reports the signed-in account, if any.
func (a *App) WhoAmI(ctx context.Context) error {
	if u := a.session.User(); u != nil {
		printlnFn("Signed in as", u.Email, "(id "+u.ID+")")
	} else {
		printlnFn("Not signed in.")
	}
	return nil
}

// Logout signs the user out. The store clears through the SignedOut event
// even when token revocation fails server-side; a revocation error is
// reported but does not keep the user signed in locally.
func (a *App) Logout(ctx context.Context) error {
	a.mu.Lock()
	a.signingOut = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.signingOut = false
		a.lastEmail = ""
		a.mu.Unlock()
	}()

	if err := a.session.Logout(ctx); err != nil {
		printlnFn("Signed out locally; token revocation failed:", err.Error())
		return err
	}
	printlnFn("Signed out.")
	return nil
}
