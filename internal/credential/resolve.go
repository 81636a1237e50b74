package credential

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrMismatch = errors.New("two passwords don't match, try again")
	ErrEmpty    = errors.New("username and password must not be empty")
)

type Credential struct {
	Username string
	Password string
}

// Resolver fills in a Credential from the store, prompting for whatever is
// missing and writing the file back when something was entered.
type Resolver struct {
	Logger   *zap.Logger
	Store    *Store
	Prompter Prompter
	Out      io.Writer
}

func NewResolver(logger *zap.Logger, store *Store, p Prompter, out io.Writer) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Resolver{Logger: logger, Store: store, Prompter: p, Out: out}
}

// Resolve returns a complete credential. With force every field is asked
// again. A password that was typed is persisted only after the user agrees.
// On ErrMismatch nothing is written. A cancelled ctx aborts any open prompt.
func (r *Resolver) Resolve(ctx context.Context, force bool) (Credential, error) {
	f, exists, err := r.Store.Load()
	if err != nil {
		return Credential{}, err
	}

	askUser, askPass := true, true
	if exists && !force {
		askUser = f.User.Username == ""
		askPass = f.User.Password == ""
	}

	cred := Credential{Username: f.User.Username, Password: f.User.Password}
	if askUser {
		name, err := r.Prompter.Line(ctx, "Student ID: ")
		if err != nil {
			return Credential{}, err
		}
		cred.Username = strings.TrimSpace(name)
	}
	if askPass {
		first, err := r.Prompter.Secret(ctx, "Password: ")
		if err != nil {
			return Credential{}, err
		}
		again, err := r.Prompter.Secret(ctx, "Type again: ")
		if err != nil {
			return Credential{}, err
		}
		if first != again {
			return Credential{}, ErrMismatch
		}
		cred.Password = first
	}
	if cred.Username == "" || cred.Password == "" {
		return Credential{}, ErrEmpty
	}
	if !askUser && !askPass {
		return cred, nil
	}

	out := File{User: User{Username: cred.Username}}
	if askPass {
		keep, err := r.Prompter.Confirm(ctx, "write plain password? [y/N]")
		if err != nil {
			return Credential{}, err
		}
		if keep {
			fmt.Fprintln(r.Out, "Store plain password, Make sure nobody sees your password.")
			out.User.Password = cred.Password
		}
	} else {
		out.User.Password = f.User.Password
	}
	if err := r.Store.Save(out); err != nil {
		return Credential{}, fmt.Errorf("save credentials: %w", err)
	}
	r.Logger.Info("credentials_saved",
		zap.String("path", r.Store.Path()),
		zap.String("username", cred.Username),
		zap.Bool("password_stored", out.User.Password != ""),
	)
	return cred, nil
}
