package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/ericfisherdev/passkeep/internal/adapter/driven/backend"
	"github.com/ericfisherdev/passkeep/internal/adapter/driven/clipboard"
	"github.com/ericfisherdev/passkeep/internal/application"
	"github.com/ericfisherdev/passkeep/internal/config"
	"github.com/ericfisherdev/passkeep/internal/domain/port/driven"
)

const usage = `Usage: passkeep [global flags] <command> [args]

Commands:
  list                      list saved websites
  add <website>             save credentials for a website
  get <website>             print the credentials for a website
  copy <website>            copy the credentials to the clipboard
  rm <website>              delete the credentials for a website
  generate                  print a random password
  check                     report index entries whose record is missing

Global flags:
`

// errUsage marks errors already reported together with usage text.
var errUsage = errors.New("usage")

// cli holds the process streams and the adapters it opens, so tests can
// substitute both.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	openStore func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend.Backend, error)
	clipboard func(mode string, logger *slog.Logger) driven.Clipboard

	logger *slog.Logger
	cfg    *config.Config
}

// run parses args, executes one command and returns the process exit code.
func (c *cli) run(ctx context.Context, args []string) int {
	if err := c.execute(ctx, args); err != nil {
		if !errors.Is(err, errUsage) && !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(c.stderr, "error: %v\n", err)
		}
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 1
	}
	return 0
}

func (c *cli) execute(ctx context.Context, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	global := pflag.NewFlagSet("passkeep", pflag.ContinueOnError)
	global.SetOutput(c.stderr)
	global.SetInterspersed(false)
	backendName := global.String("backend", cfg.Backend, "secure store backend: sqlite, bolt, keyring or memory")
	dbPath := global.String("db-path", cfg.DBPath, "SQLite database file")
	boltPath := global.String("bolt-path", cfg.BoltPath, "bbolt database file")
	noClipboard := global.Bool("no-clipboard", cfg.Clipboard == config.ClipboardNone, "print payloads instead of using the system clipboard")
	verbose := global.BoolP("verbose", "v", false, "log at debug level")
	global.Usage = func() {
		fmt.Fprint(c.stderr, usage)
		fmt.Fprint(c.stderr, global.FlagUsages())
	}

	if err := global.Parse(args); err != nil {
		return err
	}

	cfg.Backend = strings.ToLower(*backendName)
	cfg.DBPath = *dbPath
	cfg.BoltPath = *boltPath
	if *noClipboard {
		cfg.Clipboard = config.ClipboardNone
	}
	c.cfg = cfg

	// The CLI stays quiet below warn unless asked otherwise.
	level := max(cfg.LogLevel, slog.LevelWarn)
	if *verbose {
		level = slog.LevelDebug
	}
	c.logger = slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: level}))

	rest := global.Args()
	if len(rest) == 0 {
		global.Usage()
		return errUsage
	}

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "generate":
		return c.generate(cmdArgs)
	case "list", "add", "get", "copy", "rm", "check":
	default:
		fmt.Fprintf(c.stderr, "unknown command %q\n\n", cmd)
		global.Usage()
		return errUsage
	}

	store, err := c.openStore(ctx, cfg, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			c.logger.Error("error closing store", "error", closeErr)
		}
	}()

	clip := c.clipboard(cfg.Clipboard, c.logger)
	svc := application.NewCredentialService(store.Store, clip, c.logger)

	switch cmd {
	case "list":
		return c.list(ctx, svc, cmdArgs)
	case "add":
		return c.add(ctx, svc, cmdArgs)
	case "get":
		return c.get(ctx, svc, cmdArgs)
	case "copy":
		_, discard := clip.(clipboard.Discard)
		return c.copy(ctx, svc, cmdArgs, discard)
	case "rm":
		return c.remove(ctx, svc, cmdArgs)
	default:
		return c.check(ctx, application.NewHealthService(store.Store, c.logger), cmdArgs)
	}
}

// newFlagSet creates a subcommand flag set that reports to stderr.
func (c *cli) newFlagSet(name, argsUsage string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() {
		fmt.Fprintf(c.stderr, "Usage: passkeep %s %s\n", name, argsUsage)
		fmt.Fprint(c.stderr, fs.FlagUsages())
	}
	return fs
}

// websiteArg parses fs and returns its single positional argument.
func websiteArg(fs *pflag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() != 1 || strings.TrimSpace(fs.Arg(0)) == "" {
		fs.Usage()
		return "", errUsage
	}
	return strings.TrimSpace(fs.Arg(0)), nil
}

func (c *cli) list(ctx context.Context, svc *application.CredentialService, args []string) error {
	fs := c.newFlagSet("list", "")
	if err := fs.Parse(args); err != nil {
		return err
	}

	websites, err := svc.Load(ctx)
	if err != nil {
		return err
	}
	for _, w := range websites {
		fmt.Fprintln(c.stdout, w)
	}
	return nil
}

func (c *cli) add(ctx context.Context, svc *application.CredentialService, args []string) error {
	fs := c.newFlagSet("add", "<website> [flags]")
	username := fs.StringP("username", "u", "", "username to store")
	password := fs.StringP("password", "p", "", "password to store; prompted for when omitted")
	generate := fs.BoolP("generate", "g", false, "store a generated password")
	length := fs.IntP("length", "n", c.cfg.PasswordLength, "generated password length")

	website, err := websiteArg(fs, args)
	if err != nil {
		return err
	}
	if *generate && fs.Changed("password") {
		return errors.New("--password and --generate are mutually exclusive")
	}

	pw := *password
	switch {
	case *generate:
		if err := validLength(*length); err != nil {
			return err
		}
		pw = application.GeneratePassword(*length)
	case !fs.Changed("password"):
		pw, err = c.promptPassword()
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
	}

	if err := svc.Save(ctx, website, *username, pw); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "Credentials saved successfully!")
	if *generate {
		fmt.Fprintf(c.stdout, "Password: %s\n", pw)
	}
	return nil
}

func (c *cli) get(ctx context.Context, svc *application.CredentialService, args []string) error {
	website, err := websiteArg(c.newFlagSet("get", "<website>"), args)
	if err != nil {
		return err
	}

	rec, ok, err := svc.Retrieve(ctx, website)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no credentials saved for %s", website)
	}
	fmt.Fprintf(c.stdout, "Username: %s\nPassword: %s\n", rec.Username, rec.Password)
	return nil
}

func (c *cli) copy(ctx context.Context, svc *application.CredentialService, args []string, printPayload bool) error {
	website, err := websiteArg(c.newFlagSet("copy", "<website>"), args)
	if err != nil {
		return err
	}

	payload, ok, err := svc.Copy(ctx, website)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no credentials saved for %s", website)
	}
	if printPayload {
		fmt.Fprintln(c.stdout, payload)
		return nil
	}
	fmt.Fprintln(c.stdout, "Credentials copied to clipboard!")
	return nil
}

func (c *cli) remove(ctx context.Context, svc *application.CredentialService, args []string) error {
	website, err := websiteArg(c.newFlagSet("rm", "<website>"), args)
	if err != nil {
		return err
	}

	if err := svc.Delete(ctx, website); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "Credentials deleted successfully!")
	return nil
}

func (c *cli) generate(args []string) error {
	fs := c.newFlagSet("generate", "[flags]")
	length := fs.IntP("length", "n", c.cfg.PasswordLength, "password length")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := validLength(*length); err != nil {
		return err
	}

	fmt.Fprintln(c.stdout, application.GeneratePassword(*length))
	return nil
}

func (c *cli) check(ctx context.Context, health *application.HealthService, args []string) error {
	fs := c.newFlagSet("check", "")
	if err := fs.Parse(args); err != nil {
		return err
	}

	report, err := health.CheckConsistency(ctx)
	if err != nil {
		return err
	}
	if report.Consistent() {
		fmt.Fprintf(c.stdout, "%d websites indexed, all records present\n", len(report.Websites))
		return nil
	}

	fmt.Fprintf(c.stdout, "%d websites indexed, %d without a record:\n", len(report.Websites), len(report.Dangling))
	for _, w := range report.Dangling {
		fmt.Fprintf(c.stdout, "  %s\n", w)
	}
	return errors.New("website index is inconsistent")
}

// promptPassword reads a password without echo when stdin is a terminal, or
// a single line otherwise.
func (c *cli) promptPassword() (string, error) {
	if f, ok := c.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(c.stderr, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(c.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func validLength(n int) error {
	if n < 1 || n > application.MaxPasswordLength {
		return fmt.Errorf("length must be between 1 and %d, got %d", application.MaxPasswordLength, n)
	}
	return nil
}
