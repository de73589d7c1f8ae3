package buildenv_test

import (
	"testing"

	"github.com/arthur-debert/assetpipe/pkg/buildenv"
	"github.com/arthur-debert/assetpipe/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    buildenv.Mode
		wantErr bool
	}{
		{"development", buildenv.ModeDevelopment, false},
		{"dev", buildenv.ModeDevelopment, false},
		{"Production", buildenv.ModeProduction, false},
		{"prod", buildenv.ModeProduction, false},
		{"test", buildenv.ModeTest, false},
		{"staging", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := buildenv.ParseMode(tt.in)
			if tt.wantErr {
				assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTarget(t *testing.T) {
	got, err := buildenv.ParseTarget("node")
	require.NoError(t, err)
	assert.Equal(t, buildenv.TargetServer, got)

	got, err = buildenv.ParseTarget("browser")
	require.NoError(t, err)
	assert.Equal(t, buildenv.TargetBrowser, got)

	_, err = buildenv.ParseTarget("electron")
	assert.Error(t, err)
}

func TestContext_Immutable(t *testing.T) {
	flags := map[string]string{"API_HOST": "https://api.example.com"}
	ctx, err := buildenv.New(buildenv.ModeProduction, buildenv.TargetBrowser, "/static", flags)
	require.NoError(t, err)

	flags["API_HOST"] = "mutated"
	v, ok := ctx.Flag("API_HOST")
	require.True(t, ok)
	assert.Equal(t, "https://api.example.com", v, "context must copy flags on creation")

	copied := ctx.Flags()
	copied["API_HOST"] = "mutated again"
	v, _ = ctx.Flag("API_HOST")
	assert.Equal(t, "https://api.example.com", v, "Flags must return a copy")

	assert.Equal(t, "/static/", ctx.PublicPath())
	assert.True(t, ctx.IsProduction())
	assert.Equal(t, "production/browser", ctx.String())
}

func TestContext_Validation(t *testing.T) {
	_, err := buildenv.New("weird", buildenv.TargetBrowser, "/", nil)
	assert.Error(t, err)

	_, err = buildenv.New(buildenv.ModeTest, "weird", "/", nil)
	assert.Error(t, err)

	ctx, err := buildenv.New(buildenv.ModeTest, buildenv.TargetServer, "", map[string]string{"b": "2", "a": "1"})
	require.NoError(t, err)
	assert.Equal(t, "/", ctx.PublicPath())
	assert.Equal(t, []string{"a", "b"}, ctx.FlagNames())
}
