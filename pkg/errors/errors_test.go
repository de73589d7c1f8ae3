// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, codes and details

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/arthur-debert/assetpipe/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "unmatched_asset",
			code:    errors.ErrUnmatchedAsset,
			message: "no rule matched src/a.xyz",
			wantStr: "[UNMATCHED_ASSET] no rule matched src/a.xyz",
		},
		{
			name:    "chunk_constraint",
			code:    errors.ErrChunkConstraint,
			message: "too many chunks",
			wantStr: "[CHUNK_CONSTRAINT] too many chunks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestWrap(t *testing.T) {
	t.Run("wraps_cause", func(t *testing.T) {
		cause := stderrors.New("exit status 1")
		err := errors.Wrapf(cause, errors.ErrTransformFailure, "transform %s failed", "css")

		assert.Equal(t, "[TRANSFORM_FAILURE] transform css failed: exit status 1", err.Error())
		assert.True(t, stderrors.Is(err, cause))
	})

	t.Run("nil_stays_nil", func(t *testing.T) {
		assert.Nil(t, errors.Wrap(nil, errors.ErrInternal, "nothing"))
		assert.Nil(t, errors.Wrapf(nil, errors.ErrInternal, "nothing %d", 1))
	})
}

func TestErrorCodes(t *testing.T) {
	collision := errors.New(errors.ErrOutputCollision, "collision").
		WithDetail("path", "js/main.1234abcd.js")
	wrapped := fmt.Errorf("build failed: %w", collision)

	assert.True(t, errors.IsErrorCode(wrapped, errors.ErrOutputCollision))
	assert.False(t, errors.IsErrorCode(wrapped, errors.ErrUnmatchedAsset))
	assert.Equal(t, errors.ErrOutputCollision, errors.GetErrorCode(wrapped))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(stderrors.New("plain")))
	assert.Nil(t, errors.GetErrorDetails(stderrors.New("plain")))

	details := errors.GetErrorDetails(wrapped)
	require.NotNil(t, details)
	assert.Equal(t, "js/main.1234abcd.js", details["path"])
}

func TestIs(t *testing.T) {
	a := errors.New(errors.ErrUnmatchedAsset, "a")
	b := errors.New(errors.ErrUnmatchedAsset, "b")
	c := errors.New(errors.ErrConfigValid, "c")

	assert.True(t, stderrors.Is(a, b), "same code should satisfy errors.Is")
	assert.False(t, stderrors.Is(a, c))

	var target *errors.AssetpipeError
	require.True(t, stderrors.As(fmt.Errorf("outer: %w", c), &target))
	assert.Equal(t, errors.ErrConfigValid, target.Code)
}

func TestWithDetails(t *testing.T) {
	err := errors.New(errors.ErrUnmatchedAsset, "unmatched").
		WithDetails(map[string]interface{}{
			"paths": []string{"a.xyz", "b.xyz"},
			"count": 2,
		})

	assert.Equal(t, 2, err.Details["count"])
	assert.Equal(t, []string{"a.xyz", "b.xyz"}, err.Details["paths"])
}

func TestIsErrorCode_Nested(t *testing.T) {
	inner := errors.New(errors.ErrTransformNotFound, "no such transform")
	outer := errors.Wrap(inner, errors.ErrRuleInvalid, "rule 'js'")

	assert.True(t, errors.IsErrorCode(outer, errors.ErrRuleInvalid))
	assert.True(t, errors.IsErrorCode(outer, errors.ErrTransformNotFound))
	assert.False(t, errors.IsErrorCode(outer, errors.ErrUnmatchedAsset))
	assert.False(t, errors.IsErrorCode(nil, errors.ErrUnmatchedAsset))
	assert.Equal(t, errors.ErrRuleInvalid, errors.GetErrorCode(outer))
}
