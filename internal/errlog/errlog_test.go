package errlog

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	charmlog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTag(t *testing.T) {
	t.Run("Should wrap untagged errors", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Tag(cause, CodeUpstreamFailure, "generation failed")

		assert.Equal(t, CodeUpstreamFailure, As(err).Code)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("Should keep an existing tag", func(t *testing.T) {
		tagged := New(CodeInvalidRequest, "bad")
		wrapped := fmt.Errorf("x: %w", tagged)

		assert.Same(t, wrapped, Tag(wrapped, CodeUpstreamFailure, "y"))
		assert.Equal(t, CodeInvalidRequest, As(Tag(wrapped, CodeUpstreamFailure, "y")).Code)
		assert.NoError(t, Tag(nil, CodeInternal, "z"))
	})
}

func TestError(t *testing.T) {
	t.Run("Should assign default severity per code", func(t *testing.T) {
		assert.Equal(t, SeverityWarning, New(CodeEmptyResult, "x").Severity)
		assert.Equal(t, SeverityError, New(CodeUpstreamFailure, "x").Severity)
		assert.Equal(t, SeverityCritical, New(CodeInternal, "x").Severity)
		assert.Equal(t, SeverityInfo, New(CodeMalformedUpstream, "x").Severity)
	})

	t.Run("Should match sentinels through wrapping", func(t *testing.T) {
		sentinel := New(CodeEmptyResult, "No valid tasks returned")
		err := fmt.Errorf("suggest: %w", sentinel)

		assert.ErrorIs(t, err, sentinel)
		assert.NotErrorIs(t, err, New(CodeEmptyResult, "something else"))
	})

	t.Run("Should unwrap cause", func(t *testing.T) {
		cause := errors.New("dial tcp: refused")
		err := Wrap(CodeUpstreamFailure, "generation failed", cause)

		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "dial tcp: refused")
	})

	t.Run("Should copy context on With", func(t *testing.T) {
		base := New(CodeEmptyResult, "x")
		withKind := base.With("kind", "weekly")

		assert.Nil(t, base.Context)
		assert.Equal(t, "weekly", withKind.Context["kind"])
	})

	t.Run("Should treat untagged errors as internal", func(t *testing.T) {
		e := As(errors.New("boom"))
		require.NotNil(t, e)
		assert.Equal(t, CodeInternal, e.Code)
		assert.Nil(t, As(nil))
	})
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeInvalidRequest:    http.StatusBadRequest,
		CodeEmptyResult:       http.StatusUnprocessableEntity,
		CodeMalformedUpstream: http.StatusUnprocessableEntity,
		CodeUpstreamFailure:   http.StatusBadGateway,
		CodeInternal:          http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(New(code, "x")), string(code))
	}
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}

func TestLevel(t *testing.T) {
	assert.Equal(t, charmlog.InfoLevel, Level(SeverityInfo))
	assert.Equal(t, charmlog.WarnLevel, Level(SeverityWarning))
	assert.Equal(t, charmlog.ErrorLevel, Level(SeverityCritical))
}

func TestRing(t *testing.T) {
	t.Run("Should keep entries oldest first", func(t *testing.T) {
		r := NewRing(3)
		r.Record(New(CodeEmptyResult, "a"))
		r.Record(New(CodeEmptyResult, "b"))

		entries := r.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, "a", entries[0].Error.Details)
		assert.Equal(t, "b", entries[1].Error.Details)
	})

	t.Run("Should evict oldest when full", func(t *testing.T) {
		r := NewRing(2)
		for _, d := range []string{"a", "b", "c", "d"} {
			r.Record(New(CodeEmptyResult, d))
		}

		entries := r.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, "c", entries[0].Error.Details)
		assert.Equal(t, "d", entries[1].Error.Details)
		assert.Equal(t, 2, r.Cap())
	})

	t.Run("Should ignore nil and clear", func(t *testing.T) {
		r := NewRing(0)
		assert.Equal(t, DefaultCapacity, r.Cap())

		r.Record(nil)
		assert.Equal(t, 0, r.Len())

		r.Record(errors.New("plain"))
		assert.Equal(t, 1, r.Len())

		r.Clear()
		assert.Equal(t, 0, r.Len())
		assert.Empty(t, r.Entries())
	})

	t.Run("Should be safe for concurrent writers", func(t *testing.T) {
		r := NewRing(10)
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				r.Record(New(CodeUpstreamFailure, "x"))
			}()
		}
		wg.Wait()
		assert.Equal(t, 10, r.Len())
	})
}
