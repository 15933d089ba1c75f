package textgen

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"deadline exceeded", context.DeadlineExceeded, ErrTimeout},
		{"dial timeout string", errors.New("dial tcp 10.0.0.1:443: i/o timeout"), ErrTimeout},
		{"connection refused", errors.New("dial tcp 127.0.0.1:11434: connection refused"), ErrConnection},
		{"connection reset", errors.New("read: connection reset by peer"), ErrConnection},
		{"dns failure", errors.New("lookup api.example.test: no such host"), ErrConnection},
		{"unexpected eof", errors.New("unexpected EOF"), ErrConnection},
		{"model missing", errors.New("model 'resume-extractor' not found"), ErrModelNotFound},
		{"anything else", errors.New("status 500: internal error"), ErrProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classify(tt.err), tt.want)
		})
	}
}

func TestClassifyPreservesCancellation(t *testing.T) {
	assert.ErrorIs(t, classify(context.Canceled), context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(classify(errors.New("connection refused"))))
	assert.True(t, IsRetryable(classify(context.DeadlineExceeded)))
	assert.True(t, IsRetryable(classify(errors.New("status 502"))))
	assert.False(t, IsRetryable(classify(errors.New("model 'x' not found"))))
	assert.False(t, IsRetryable(classify(context.Canceled)))
	assert.False(t, IsRetryable(nil))
}
