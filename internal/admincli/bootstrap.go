// Package admincli implements the memoir-admin tool, which creates the first
// administrator account or promotes an existing one.
package admincli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/memoir/internal/flagx"
	"github.com/dmitrijs2005/memoir/internal/server/models"
)

// PasswordEnv is read before prompting for a password.
const PasswordEnv = "MEMOIR_ADMIN_PASSWORD"

// Options are the account details. Empty fields are prompted for.
type Options struct {
	Username string
	Email    string
}

// AdminEnsurer creates or promotes an administrator.
type AdminEnsurer interface {
	EnsureAdmin(ctx context.Context, username, email, password string) (*models.User, bool, error)
}

// ParseArgs reads -admin-user and -admin-email, ignoring server flags.
func ParseArgs(args []string) (Options, error) {
	var opts Options

	args = flagx.FilterArgs(args, []string{"-admin-user", "--admin-user", "-admin-email", "--admin-email"})

	fs := flag.NewFlagSet("memoir-admin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.Username, "admin-user", "", "administrator username")
	fs.StringVar(&opts.Email, "admin-email", "", "administrator email, used when the account is created")

	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Bootstrap fills in missing details interactively and ensures the account
// is an administrator.
type Bootstrap struct {
	users     AdminEnsurer
	in        *bufio.Reader
	out       io.Writer
	lookupEnv func(string) (string, bool)
}

func NewBootstrap(users AdminEnsurer, in io.Reader, out io.Writer, lookupEnv func(string) (string, bool)) *Bootstrap {
	return &Bootstrap{users: users, in: bufio.NewReader(in), out: out, lookupEnv: lookupEnv}
}

func (b *Bootstrap) Run(ctx context.Context, opts Options) error {
	var err error

	if opts.Username == "" {
		if opts.Username, err = promptText(b.in, "Administrator username", b.out); err != nil {
			return err
		}
	}
	if opts.Username == "" {
		return errors.New("username is required")
	}

	if opts.Email == "" {
		if opts.Email, err = promptText(b.in, "Email (ignored if the user exists)", b.out); err != nil {
			return err
		}
	}

	password, ok := b.lookupEnv(PasswordEnv)
	if !ok || password == "" {
		if password, err = promptPassword(b.out); err != nil {
			return err
		}
	}

	u, created, err := b.users.EnsureAdmin(ctx, opts.Username, opts.Email, password)
	if err != nil {
		return err
	}

	if created {
		fmt.Fprintf(b.out, "Created administrator %q (id=%d)\n", u.Username, u.ID)
	} else {
		fmt.Fprintf(b.out, "Promoted %q (id=%d) to administrator\n", u.Username, u.ID)
	}
	return nil
}
