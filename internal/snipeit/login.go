package snipeit

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gotrs-io/snipeit-e2e/internal/pages"
)

// ErrLoginRejected is returned when the login form reports bad credentials.
var ErrLoginRejected = errors.New("login rejected")

// LoginPage is the sign-in form.
type LoginPage struct {
	*pages.Base
}

func (p *LoginPage) Open() error {
	return p.Navigate("/login", LoginUsername)
}

// Login submits the credentials and waits to be redirected away from the
// login form. When the form is shown again its error message is returned
// wrapped in ErrLoginRejected.
func (p *LoginPage) Login(username, password string) error {
	if err := p.Fill(LoginUsername, username); err != nil {
		return err
	}
	if err := p.Fill(LoginPassword, password); err != nil {
		return err
	}
	if err := p.Click(LoginSubmit); err != nil {
		return err
	}
	err := p.WaitForURL("redirect away from /login", func(u string) bool { return !IsLoginURL(u) }, p.Timeouts().Default)
	if err == nil {
		p.Logger().Info("signed in", zap.String("username", username))
		return nil
	}
	if msg, _ := p.Read(LoginError); msg != "" {
		return fmt.Errorf("%w: %s", ErrLoginRejected, msg)
	}
	return err
}

// IsLoginURL reports whether raw points at the login form.
func IsLoginURL(raw string) bool {
	return strings.HasSuffix(urlPath(raw), "/login")
}
