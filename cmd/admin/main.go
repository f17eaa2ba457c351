// Command jobtrail-admin creates accounts directly in the configured
// datastore, e.g. the first admin on a fresh install.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/geocoder89/jobtrail/internal/config"
	"github.com/geocoder89/jobtrail/internal/db"
	"github.com/geocoder89/jobtrail/internal/domain/user"
	"github.com/geocoder89/jobtrail/internal/users"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("jobtrail-admin", flag.ContinueOnError)
	fs.SetOutput(out)

	email := fs.String("email", "", "account email (prompted when empty)")
	name := fs.String("name", "", "display name (prompted when empty)")
	role := fs.String("role", string(user.RoleAdmin), "user or admin")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	stores, err := db.OpenStores(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer stores.Close()

	if cfg.Store == config.StoreMemory {
		fmt.Fprintln(out, "warning: STORE=memory, the account will not outlive this process")
	}

	u, err := createAccount(ctx, users.NewDirectory(stores.Users), bufio.NewReader(in), out, users.CreateInput{
		Name:  *name,
		Email: *email,
		Role:  *role,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "created %s %s (%s)\n", u.Role, u.Email, u.ID)
	return nil
}

func createAccount(ctx context.Context, dir *users.Directory, reader *bufio.Reader, out io.Writer, in users.CreateInput) (user.User, error) {
	var err error

	if in.Email == "" {
		if in.Email, err = getSimpleText(reader, "Email", out); err != nil {
			return user.User{}, err
		}
	}
	if in.Name == "" {
		if in.Name, err = getSimpleText(reader, "Name", out); err != nil {
			return user.User{}, err
		}
	}

	pw, err := getPassword(out)
	if err != nil {
		return user.User{}, err
	}
	in.Password = string(pw)
	clear(pw)

	return dir.Create(ctx, in)
}
