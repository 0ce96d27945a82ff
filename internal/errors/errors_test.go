package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *FixError
		want string
	}{
		{
			name: "code and message",
			err:  &FixError{Code: ErrCodeStalePath, Message: "path gone"},
			want: "[ERR_STALE_PATH] path gone",
		},
		{
			name: "with role and path",
			err: &FixError{
				Code:    ErrCodeRenameConflict,
				Role:    "my-role",
				Path:    "/tmp/roles/my-role",
				Message: "target exists as a file",
			},
			want: "[ERR_RENAME_CONFLICT] role:my-role /tmp/roles/my-role target exists as a file",
		},
		{
			name: "with cause",
			err: &FixError{
				Code:    ErrCodeParseFailed,
				Message: "could not parse document",
				Cause:   fmt.Errorf("yaml: line 3: mapping values"),
			},
			want: "[ERR_PARSE_FAILED] could not parse document: yaml: line 3: mapping values",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestFixError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := NewRenameError(ErrCodeRenameConflict, "rename failed", cause)

	assert.Equal(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
}

func TestFixError_Is(t *testing.T) {
	a := ErrStalePath("my-role", "/tmp/roles/my-role")
	b := ErrStalePath("other-role", "/tmp/roles/other-role")

	assert.True(t, errors.Is(a, b), "errors with same type and code should match")
	assert.False(t, errors.Is(a, ErrRenameConflict("my-role", "/tmp/x")))
}

func TestRecoverability(t *testing.T) {
	assert.True(t, IsRecoverable(ErrParseFailed("/tmp/x.yml", nil)))
	assert.True(t, IsRecoverable(ErrStalePath("r", "/tmp/r")))
	assert.True(t, IsRecoverable(ErrRenameConflict("r", "/tmp/r")))
	assert.False(t, IsRecoverable(ErrRootNotFound("/missing")), "fatal precondition is not recoverable")
	assert.False(t, IsRecoverable(errors.New("plain")))
}

func TestTypePredicates(t *testing.T) {
	assert.True(t, IsParseError(ErrParseFailed("/tmp/x.yml", nil)))
	assert.False(t, IsParseError(ErrStalePath("r", "/tmp/r")))
	assert.True(t, IsRenameError(ErrRenameConflict("r", "/tmp/r")))
	assert.True(t, IsRenameError(ErrStalePath("r", "/tmp/r")))
}

func TestErrorCollector(t *testing.T) {
	ec := NewErrorCollector()
	assert.False(t, ec.HasErrors())

	ec.Add(Warning{Role: "my-role", Path: "/tmp/a.yml", Message: "skipped"})
	ec.Add(Warning{Path: "/tmp/b.yml", Message: "unparseable", Err: errors.New("yaml error")})
	ec.AddError(errors.New("general failure"))
	ec.AddError(nil) // nil errors are ignored

	assert.True(t, ec.HasErrors())
	assert.Len(t, ec.Warnings(), 2)
	assert.Len(t, ec.GetAllErrors(), 3)

	forB := ec.WarningsForPath("/tmp/b.yml")
	require.Len(t, forB, 1)
	assert.Equal(t, "/tmp/b.yml: unparseable: yaml error", forB[0].Error())

	ec.Clear()
	assert.False(t, ec.HasErrors())
}
