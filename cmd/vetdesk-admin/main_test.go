package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/vetdesk/vetdesk/internal/domain/auth"
	"github.com/vetdesk/vetdesk/internal/domain/model"
	mockauth "github.com/vetdesk/vetdesk/internal/mocks/auth"
	"github.com/vetdesk/vetdesk/internal/mocks/store"
	"github.com/vetdesk/vetdesk/internal/service"
)

func testContext(stdin string) (*commandContext, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &commandContext{
		Ctx:    context.Background(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Stdin:  strings.NewReader(stdin),
		Stdout: out,
	}, out
}

func TestPrintUsageListsCommandsSorted(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf))

	out := buf.String()
	create := strings.Index(out, "create-user")
	migrate := strings.Index(out, "migrate")
	normalize := strings.Index(out, "normalize-roles")
	require.True(t, create > 0 && migrate > 0 && normalize > 0, out)
	assert.Less(t, create, migrate)
	assert.Less(t, migrate, normalize)
}

func TestParseMigrateFlags(t *testing.T) {
	opts, err := parseMigrateFlags([]string{"--status"})
	require.NoError(t, err)
	assert.True(t, opts.Status)
	assert.Equal(t, defaultMigrationTimeout, opts.Timeout)

	_, err = parseMigrateFlags([]string{"--timeout", "0s"})
	require.Error(t, err)
}

func TestParseCreateUserFlags(t *testing.T) {
	opts, err := parseCreateUserFlags([]string{"--email", "root@clinic.example", "--name", "Root"})
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleSuperAdmin, opts.Role)

	opts, err = parseCreateUserFlags([]string{"--email", "a@clinic.example", "--name", "A", "--role", "admin2"})
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleAdmin2, opts.Role)

	_, err = parseCreateUserFlags([]string{"--email", "a@clinic.example", "--name", "A", "--role", "customer"})
	require.Error(t, err)

	_, err = parseCreateUserFlags([]string{"--name", "A"})
	require.Error(t, err)
}

func TestReadPassword(t *testing.T) {
	pw, err := readPassword(createUserOptions{PasswordStdin: true}, strings.NewReader("s3cret pass\nignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret pass", pw)

	_, err = readPassword(createUserOptions{PasswordStdin: true}, strings.NewReader("\n"))
	require.Error(t, err)

	t.Setenv(adminPasswordEnv, "from env pw")
	pw, err = readPassword(createUserOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "from env pw", pw)
}

func TestCreateUserKeepsRequestedRole(t *testing.T) {
	repo := store.NewMemoryDocuments[model.User]("user")
	creds := store.NewMemoryCredentials()
	users := service.MustNewUserService(service.UserServiceOptions{
		Repo:     repo,
		Accounts: service.AccountDeps{Credentials: creds, Hasher: mockauth.PlainHasher{}},
	})
	cmdCtx, out := testContext("")

	err := createUser(cmdCtx, users, createUserOptions{
		Email: "Root@Clinic.example",
		Name:  "Root",
		Role:  domainauth.RoleSuperAdmin,
	}, "long enough password")
	require.NoError(t, err)

	assert.Contains(t, out.String(), "created super_admin root@clinic.example")
	assert.Equal(t, 1, repo.Len())
}

func TestPrintRoleReport(t *testing.T) {
	cmdCtx, out := testContext("")
	report := &service.RoleNormalizationReport{
		DryRun:   true,
		Changed:  []service.RoleChange{{UserID: "u1", Email: "a@clinic.example", From: "Admin", To: domainauth.RoleAdmin}},
		Unmapped: []model.StoredRole{{UserID: "u2", Email: "b@clinic.example", Raw: "owner"}},
	}

	require.NoError(t, printRoleReport(cmdCtx, report))
	got := out.String()
	assert.Contains(t, got, "would normalize")
	assert.Contains(t, got, `"Admin" -> admin`)
	assert.Contains(t, got, "unmapped")
	assert.Contains(t, got, "1 changed, 1 unmapped")
}
