package rtctx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ratpm/ratpm/internal/config"
	"github.com/ratpm/ratpm/internal/errs"
)

func TestRequireRootFailsWhenNotRoot(t *testing.T) {
	ctx := New(config.Default(), Backend{}, false)
	err := ctx.RequireRoot()
	require.Error(t, err)
	assert.Equal(t, errs.PermissionDenied, err.(*errs.Error).Kind)
}

func TestRequireRootSucceedsWhenRoot(t *testing.T) {
	ctx := New(config.Default(), Backend{}, true)
	assert.NoError(t, ctx.RequireRoot())
}

func TestConfirmTransactionAssumeYesShortCircuits(t *testing.T) {
	cfg := config.Default()
	cfg.System.AssumeYes = true
	ctx := New(cfg, Backend{}, true)
	assert.True(t, ctx.ConfirmTransaction())
}

func TestConfirmTransactionReadsYes(t *testing.T) {
	ctx := New(config.Default(), Backend{}, true)
	ctx.in = strings.NewReader("y\n")
	var errBuf strings.Builder
	ctx.err = &errBuf

	assert.True(t, ctx.ConfirmTransaction())
	assert.Contains(t, errBuf.String(), "Proceed?")
}

func TestConfirmTransactionDefaultsToNo(t *testing.T) {
	ctx := New(config.Default(), Backend{}, true)
	ctx.in = strings.NewReader("\n")
	ctx.err = &strings.Builder{}

	assert.False(t, ctx.ConfirmTransaction())
}

func TestConfirmTransactionRejectsOtherInput(t *testing.T) {
	ctx := New(config.Default(), Backend{}, true)
	ctx.in = strings.NewReader("no\n")
	ctx.err = &strings.Builder{}

	assert.False(t, ctx.ConfirmTransaction())
}
