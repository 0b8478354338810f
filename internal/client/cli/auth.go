package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/skinkeeper/internal/common"
	"github.com/dmitrijs2005/skinkeeper/internal/models"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username, email and password and creates the
// account. It does not log in.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.authService.Register(ctx, userName, email, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered %s. Use 'login' to sign in.\n", u.Username)
	return nil
}

// Login prompts for a username or email and a password.
func (a *App) Login(ctx context.Context) error {
	login, err := getSimpleText(a.reader, "Enter username or email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.authService.Login(ctx, login, password)
	if err != nil {
		return err
	}

	a.user = u
	fmt.Fprintf(a.out, "Logged in as %s\n", u.Username)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.user = nil
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Whoami prints the current user, or "not logged in" when the server does
// not accept the stored session.
func (a *App) Whoami(ctx context.Context) error {
	u, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	if u == nil {
		fmt.Fprintln(a.out, "not logged in")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s> (%s)\n", u.Username, u.Email, completion(u.ProfileCompleted))
	return nil
}

func (a *App) currentUser(ctx context.Context) (*models.User, error) {
	u, err := a.authService.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	a.user = u
	return u, nil
}

func completion(done bool) string {
	if done {
		return "profile complete"
	}
	return "profile incomplete"
}
