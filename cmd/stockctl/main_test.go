package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fsanano/stockroom/internal/app"
	"fsanano/stockroom/internal/config"
	"fsanano/stockroom/internal/logging"
	"fsanano/stockroom/internal/repository/memory"
)

func memoryEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("LOG_LEVEL", "error")
}

func TestRun_Ping(t *testing.T) {
	memoryEnv(t)
	var out, errOut bytes.Buffer

	require.NoError(t, run(context.Background(), []string{"ping"}, strings.NewReader(""), &out, &errOut))
	assert.Equal(t, "memory store is reachable\n", out.String())
}

func TestRun_Migrate(t *testing.T) {
	memoryEnv(t)
	var out, errOut bytes.Buffer

	require.NoError(t, run(context.Background(), []string{"migrate"}, strings.NewReader(""), &out, &errOut))
	assert.Equal(t, "memory schema is up to date\n", out.String())
}

func TestRun_UserAdd(t *testing.T) {
	memoryEnv(t)
	var out, errOut bytes.Buffer

	err := run(context.Background(),
		[]string{"useradd", "-username", "alice", "-email", "alice@example.com"},
		strings.NewReader("s3cret\n"), &out, &errOut)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "created user alice")
}

func TestRun_UserAddValidation(t *testing.T) {
	memoryEnv(t)
	var out, errOut bytes.Buffer

	err := run(context.Background(), []string{"useradd", "-username", "alice"}, strings.NewReader(""), &out, &errOut)
	assert.ErrorContains(t, err, "-username and -email are required")

	err = run(context.Background(),
		[]string{"useradd", "-username", "alice", "-email", "alice@example.com"},
		strings.NewReader("pw"), &out, &errOut)
	assert.ErrorContains(t, err, "password")
}

func TestListItems(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{StoreDriver: config.DriverMemory}
	cfg.Session.TTL = time.Hour
	a, err := app.Build(ctx, memory.New(), cfg, logging.Discard())
	require.NoError(t, err)
	defer a.Close()

	alice, err := a.Users.Register(ctx, "alice", "alice@example.com", "s3cret")
	require.NoError(t, err)
	_, err = a.Items.Create(ctx, "Hex Bolt", "", 12, alice.ID)
	require.NoError(t, err)
	_, err = a.Items.Create(ctx, "Washer", "", 40, alice.ID)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, listItems(ctx, a, []string{"-username", "alice"}, &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, out.String(), "Hex Bolt")
	assert.Contains(t, out.String(), "Washer")
	assert.Contains(t, out.String(), "40")

	out.Reset()
	require.NoError(t, listItems(ctx, a, []string{"-username", "alice", "-search", "BOLT"}, &out))
	assert.Contains(t, out.String(), "Hex Bolt")
	assert.NotContains(t, out.String(), "Washer")
}

func TestRun_Items_UnknownUser(t *testing.T) {
	memoryEnv(t)
	var out, errOut bytes.Buffer

	err := run(context.Background(), []string{"items", "-username", "ghost"}, strings.NewReader(""), &out, &errOut)
	assert.ErrorContains(t, err, `user "ghost"`)
}

func TestRun_UnknownCommand(t *testing.T) {
	memoryEnv(t)
	var out, errOut bytes.Buffer

	err := run(context.Background(), []string{"frobnicate"}, strings.NewReader(""), &out, &errOut)
	assert.ErrorContains(t, err, "unknown command")
	assert.Contains(t, errOut.String(), "usage: stockctl")

	err = run(context.Background(), nil, strings.NewReader(""), &out, &errOut)
	assert.ErrorContains(t, err, "missing command")
}
