package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/TooLazyToCreate/student-directory/internal/client"
	"github.com/TooLazyToCreate/student-directory/internal/model"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const usage = `usage: directory [flags] <command>

commands:
  login     log in and show the directory
  logout    forget the stored session token
  status    print whether a session token is stored
  list      print the student directory

flags:
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	defaultAPI := os.Getenv("DIRECTORY_API_URL")
	if defaultAPI == "" {
		defaultAPI = "http://localhost:3000"
	}
	defaultStore, err := client.DefaultStorePath()
	if err != nil {
		defaultStore = ".directory-session.json"
	}

	flags := pflag.NewFlagSet("directory", pflag.ContinueOnError)
	apiURL := flags.String("api", defaultAPI, "directory API base URL")
	storePath := flags.String("store", defaultStore, "session token file")
	email := flags.StringP("email", "e", "", "login email")
	query := flags.StringP("query", "q", "", "show only students matching this text")
	sendToken := flags.Bool("send-token", false, "attach the session token to directory requests")
	verbose := flags.BoolP("verbose", "v", false, "debug logging")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return errors.New("exactly one command expected")
	}

	logger := zap.NewNop()
	if *verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
	}
	opts := []client.Option{client.WithLogger(logger)}
	if *sendToken {
		opts = append(opts, client.WithAuthHeader())
	}
	c, err := client.New(*apiURL, client.NewFileStore(*storePath), opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch flags.Arg(0) {
	case "login":
		return login(ctx, c, *email, *query)
	case "logout":
		if err := c.Logout(); err != nil {
			return err
		}
		fmt.Println("logged out")
		return nil
	case "status":
		state, err := c.State()
		if err != nil {
			return err
		}
		fmt.Println(state)
		return nil
	case "list":
		return list(ctx, c, *query)
	default:
		flags.Usage()
		return fmt.Errorf("unknown command %q", flags.Arg(0))
	}
}

func login(ctx context.Context, c *client.Client, email, query string) error {
	reader := bufio.NewReader(os.Stdin)
	if email == "" {
		fmt.Print("Email: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		email = strings.TrimSpace(line)
	}
	password, err := readPassword(reader)
	if err != nil {
		return err
	}

	if err = c.Login(ctx, email, password); err != nil {
		return err
	}
	fmt.Println("Login successful")

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(client.RedirectDelay):
	}
	return list(ctx, c, query)
}

func readPassword(reader *bufio.Reader) (string, error) {
	fmt.Print("Password: ")
	if term.IsTerminal(int(os.Stdin.Fd())) {
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		return string(raw), err
	}
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func list(ctx context.Context, c *client.Client, query string) error {
	students, err := c.ListStudents(ctx)
	if err != nil {
		return err
	}
	students = client.Filter(students, query)
	if len(students) == 0 {
		if query != "" {
			fmt.Println("No results found")
		} else {
			fmt.Println("No students registered")
		}
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNOMBRE\tAPELLIDO\tEMAIL\tFECHA NACIMIENTO")
	for _, student := range students {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", student.ID, student.Nombre, student.Apellido,
			orDash(student.Email), birthDate(student.FechaNacimiento))
	}
	return w.Flush()
}

func orDash(value *string) string {
	if value == nil || *value == "" {
		return "-"
	}
	return *value
}

func birthDate(date *model.Date) string {
	if date == nil {
		return "-"
	}
	return date.String()
}
