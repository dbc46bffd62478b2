package nbi

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/signalsfoundry/coordinate-engine/core"
	"github.com/signalsfoundry/coordinate-engine/kb"
	"github.com/signalsfoundry/coordinate-engine/mgrs"
	"github.com/signalsfoundry/coordinate-engine/model"
)

func TestToStatusError(t *testing.T) {
	t.Parallel()

	_, mgrsErr := mgrs.BreakMGRSString("4QFJ1234567")

	tests := []struct {
		name    string
		err     error
		code    codes.Code
		wantNil bool
	}{
		{name: "nil", err: nil, wantNil: true},
		{name: "status passthrough", err: status.Error(codes.PermissionDenied, "denied"), code: codes.PermissionDenied},
		{name: "invalid request sentinel", err: fmt.Errorf("%w: bad", ErrInvalidRequest), code: codes.InvalidArgument},
		{name: "unknown system", err: model.ErrUnknownSystem, code: codes.InvalidArgument},
		{name: "system mismatch", err: fmt.Errorf("LLA to ECEF: %w", core.ErrSystemMismatch), code: codes.InvalidArgument},
		{name: "mgrs parse error", err: mgrsErr, code: codes.InvalidArgument},
		{name: "bad tle", err: core.ErrInvalidTLE, code: codes.InvalidArgument},
		{name: "origin not set", err: fmt.Errorf("ECEF to NED: %w", core.ErrReferenceOriginNotSet), code: codes.FailedPrecondition},
		{name: "degenerate origin", err: core.ErrDegenerateOrigin, code: codes.FailedPrecondition},
		{name: "site not found", err: fmt.Errorf("site %q: %w", "x", kb.ErrSiteNotFound), code: codes.NotFound},
		{name: "site exists", err: kb.ErrSiteExists, code: codes.AlreadyExists},
		{name: "deadline", err: context.DeadlineExceeded, code: codes.DeadlineExceeded},
		{name: "fallback", err: errors.New("boom"), code: codes.Internal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := ToStatusError(tc.err)
			if tc.wantNil {
				if got != nil {
					t.Fatalf("ToStatusError(nil) = %v, want nil", got)
				}
				return
			}

			if got == nil {
				t.Fatalf("ToStatusError(%v) = nil, want error", tc.err)
			}
			if code := status.Code(got); code != tc.code {
				t.Fatalf("ToStatusError(%v) code = %v, want %v", tc.err, code, tc.code)
			}
		})
	}
}
