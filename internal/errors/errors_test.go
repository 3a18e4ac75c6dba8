package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipelineError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *PipelineError
		want string
	}{
		{
			name: "without cause",
			err:  MissingComponent("GDP_by_POPTHM", "POPTHM"),
			want: `MISSING_COMPONENT [GDP_by_POPTHM]: required component "POPTHM" not in grid`,
		},
		{
			name: "with cause",
			err:  FatalIO("featured_grid_latest.csv", fs.ErrPermission),
			want: "FATAL_IO [featured_grid_latest.csv]: io failure: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestClassOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Class
	}{
		{"missing component", MissingComponent("a", "b"), ClassMissingComponent},
		{"wrapped in fmt", fmt.Errorf("stage: %w", DegenerateSignal("X", "too short")), ClassDegenerateSignal},
		{"worker failure", WorkerFailure("GSPC", errors.New("boom")), ClassWorkerFailure},
		{"unclassified defaults to fatal", errors.New("disk on fire"), ClassFatalIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassOf(tt.err))
		})
	}
}

func TestIsFatal(t *testing.T) {
	assert.False(t, IsFatal(nil))
	assert.False(t, IsFatal(EmptyInput("normalize", "no facts")))
	assert.True(t, IsFatal(FatalIO("stg_yahoo", errors.New("connection refused"))))
	assert.True(t, IsFatal(errors.New("unknown")))
}

func TestIsRecoverable(t *testing.T) {
	assert.False(t, IsRecoverable(nil))
	assert.True(t, IsRecoverable(WorkerFailure("QQQ", errors.New("nan overflow"))))
	assert.False(t, IsRecoverable(FatalIO("out", errors.New("no space"))))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(ClassWorkerFailure, "DGS10", "task failed", cause)
	assert.True(t, errors.Is(err, cause))
}
