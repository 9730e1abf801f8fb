package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vetdesk/vetdesk/internal/bootstrap"
	domainauth "github.com/vetdesk/vetdesk/internal/domain/auth"
	"github.com/vetdesk/vetdesk/internal/domain/model"
	"github.com/vetdesk/vetdesk/internal/service"
)

// adminPasswordEnv is read when --password-stdin is not given.
const adminPasswordEnv = "VETDESK_ADMIN_PASSWORD"

type createUserOptions struct {
	Email         string
	Name          string
	Role          domainauth.Role
	PasswordStdin bool
}

func parseCreateUserFlags(args []string) (createUserOptions, error) {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts createUserOptions
	var role string
	fs.StringVar(&opts.Email, "email", "", "Staff email (required)")
	fs.StringVar(&opts.Name, "name", "", "Display name (required)")
	fs.StringVar(&role, "role", string(domainauth.RoleSuperAdmin), "Role: admin, admin2 or super_admin")
	fs.BoolVar(&opts.PasswordStdin, "password-stdin", false, "Read the password from the first line of stdin")

	if err := fs.Parse(args); err != nil {
		return createUserOptions{}, err
	}
	if strings.TrimSpace(opts.Email) == "" || strings.TrimSpace(opts.Name) == "" {
		return createUserOptions{}, errors.New("--email and --name are required")
	}
	parsed, ok := domainauth.ParseRole(role)
	if !ok || !parsed.IsStaff() {
		return createUserOptions{}, fmt.Errorf("--role %q is not a staff role", role)
	}
	opts.Role = parsed
	return opts, nil
}

func readPassword(opts createUserOptions, stdin io.Reader) (string, error) {
	if !opts.PasswordStdin {
		if pw := os.Getenv(adminPasswordEnv); pw != "" {
			return pw, nil
		}
		return "", fmt.Errorf("set %s or pass --password-stdin", adminPasswordEnv)
	}
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return "", errors.New("password is empty")
	}
	return pw, nil
}

func runCreateUser(cmdCtx *commandContext, args []string) error {
	opts, err := parseCreateUserFlags(args)
	if err != nil {
		return err
	}
	password, err := readPassword(opts, cmdCtx.Stdin)
	if err != nil {
		return err
	}

	conns, err := connectInfra(cmdCtx.Ctx, cmdCtx.Logger, &cmdCtx.Config, true)
	if err != nil {
		return err
	}
	defer conns.close(cmdCtx.Logger)

	services, err := bootstrap.NewServices(&bootstrap.ServiceDeps{
		Config:      &cmdCtx.Config,
		DB:          conns.DB,
		RedisClient: conns.Redis,
		Logger:      cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("build services: %w", err)
	}
	return createUser(cmdCtx, services.Users, opts, password)
}

func createUser(cmdCtx *commandContext, users *service.UserService, opts createUserOptions, password string) error {
	role := opts.Role
	u, err := users.CreateBootstrap(cmdCtx.Ctx, &model.CreateUserRequest{
		Email:       opts.Email,
		DisplayName: opts.Name,
		Role:        &role,
		Password:    password,
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return writef(cmdCtx.Stdout, "created %s %s (%s)\n", u.Role, u.Email, u.ID)
}
