// Command stockctl runs administrative tasks against the configured store.
//
//	stockctl ping
//	stockctl migrate
//	stockctl useradd -username alice -email alice@example.com
//	stockctl items -username alice [-search bolt]
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	"fsanano/stockroom/internal/app"
	"fsanano/stockroom/internal/config"
	"fsanano/stockroom/internal/logging"
	"fsanano/stockroom/internal/storage"
)

const usage = `usage: stockctl <command> [flags]

commands:
  ping      check that the store is reachable
  migrate   create or upgrade the store schema
  useradd   create a user (password is read from the terminal or stdin)
  items     list a user's items
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "stockctl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("missing command")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, stderr)
	if err != nil {
		return err
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "ping", "migrate", "useradd", "items":
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}

	if cmd == "ping" {
		return ping(ctx, cfg, log, stdout)
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	switch cmd {
	case "migrate":
		// app.New has already applied migrations.
		fmt.Fprintf(stdout, "%s schema is up to date\n", cfg.StoreDriver)
	case "useradd":
		return userAdd(ctx, a, rest, stdin, stdout)
	case "items":
		return listItems(ctx, a, rest, stdout)
	}
	return nil
}

// ping connects without migrating, so it never creates tables.
func ping(ctx context.Context, cfg *config.Config, log logging.Logger, stdout io.Writer) error {
	store, err := storage.Connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s store is reachable\n", cfg.StoreDriver)
	return nil
}

func userAdd(ctx context.Context, a *app.App, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("useradd", flag.ContinueOnError)
	username := fs.String("username", "", "username")
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *email == "" {
		return errors.New("useradd: -username and -email are required")
	}

	password, err := readPassword(stdin, stdout)
	if err != nil {
		return err
	}

	user, err := a.Users.Register(ctx, *username, *email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "created user %s (%s)\n", user.Username, user.ID)
	return nil
}

func listItems(ctx context.Context, a *app.App, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("items", flag.ContinueOnError)
	username := fs.String("username", "", "owner username")
	search := fs.String("search", "", "case-insensitive name filter")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := a.Users.FindByUsername(ctx, *username)
	if err != nil {
		return fmt.Errorf("user %q: %w", *username, err)
	}
	items, err := a.Items.SearchByOwner(ctx, user.ID, *search)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQUANTITY\tCREATED")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", it.ID, it.Name, it.Quantity, it.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

// readPassword prompts on a terminal without echo, or reads one line from
// piped input.
func readPassword(stdin io.Reader, stdout io.Writer) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(stdout, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(stdout)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
