package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/ccxpauth/internal/client/client"
	"github.com/dmitrijs2005/ccxpauth/internal/flagx"
)

// globalValued lists the config flags that consume the following argument.
var globalValued = map[string]bool{"a": true, "f": true, "t": true, "c": true, "config": true, "u": true}

// command returns the first positional argument and the remaining ones.
func command(args []string) (string, []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "-") {
			name := strings.TrimLeft(arg, "-")
			if !strings.Contains(name, "=") && globalValued[name] {
				i++
			}
			continue
		}
		rest := make([]string, 0, len(args)-1)
		rest = append(rest, args[:i]...)
		return arg, append(rest, args[i+1:]...)
	}
	return "", args
}

func studentIDFlag(name string, args []string) (string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	id := fs.String("u", "", "student id")
	if err := fs.Parse(flagx.FilterArgs(args, "u")); err != nil {
		return "", fmt.Errorf("%w\n%w", err, ErrUsage)
	}
	if *id == "" {
		return "", ErrUsage
	}
	return *id, nil
}

func (a *App) signIn(ctx context.Context, args []string) error {
	studentID, err := studentIDFlag("signin", args)
	if err != nil {
		return err
	}

	pw, err := GetPassword(a.out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	sess, err := a.session.SignIn(ctx, studentID, pw)
	if err != nil {
		return err
	}
	a.printSession(sess)
	return nil
}

func (a *App) refresh(ctx context.Context, args []string) error {
	studentID, err := studentIDFlag("refresh", args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	sess, err := a.session.Refresh(ctx, studentID)
	if err != nil {
		return err
	}
	a.printSession(sess)
	return nil
}

func (a *App) printSession(s *client.Session) {
	fmt.Fprintf(a.out, "session token: %s\n", s.SessionToken)
	if s.AccessToken != "" {
		fmt.Fprintf(a.out, "access token: %s\n", s.AccessToken)
	}
	if s.PasswordExpired {
		fmt.Fprintln(a.out, "warning: the campus system reports your password has expired")
	}
}
