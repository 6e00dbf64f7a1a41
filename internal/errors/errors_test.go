package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	err := New(CategoryFetch, "fetching GitHub profile: status code 404")
	assert.Equal(t, "fetch: fetching GitHub profile: status code 404", err.Error())

	wrapped := Wrap(fmt.Errorf("connection refused"), CategoryGeneration, "chat completion failed")
	assert.Equal(t, "generation: chat completion failed: connection refused", wrapped.Error())
}

func TestError_UnwrapAndAs(t *testing.T) {
	cause := stderrors.New("boom")
	err := fmt.Errorf("outer: %w", Wrap(cause, CategoryDeployment, "vercel failed"))

	assert.ErrorIs(t, err, cause)

	e, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, CategoryDeployment, e.Category)
	assert.True(t, IsCategory(err, CategoryDeployment))
	assert.False(t, IsCategory(err, CategoryFetch))
}

func TestError_Context(t *testing.T) {
	err := New(CategoryFetch, "bad status").WithContext("status_code", 404)
	assert.Equal(t, 404, err.Field("status_code"))
	assert.Nil(t, err.Field("missing"))
	assert.Nil(t, New(CategoryFetch, "x").Field("status_code"))
}

func TestGetCategory_Foreign(t *testing.T) {
	assert.Equal(t, CategoryInternal, GetCategory(stderrors.New("plain")))
	assert.Equal(t, CategoryConfig, GetCategory(Newf(CategoryConfig, "missing %s", "VERCEL_TOKEN")))
}
