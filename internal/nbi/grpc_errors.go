package nbi

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/signalsfoundry/coordinate-engine/core"
	"github.com/signalsfoundry/coordinate-engine/internal/nbi/types"
	"github.com/signalsfoundry/coordinate-engine/internal/track"
	"github.com/signalsfoundry/coordinate-engine/kb"
	"github.com/signalsfoundry/coordinate-engine/mgrs"
	"github.com/signalsfoundry/coordinate-engine/model"
)

// ErrInvalidRequest is a package-level sentinel used for client-side validation failures.
var ErrInvalidRequest = errors.New("invalid request")

// ToStatusError maps engine errors onto gRPC status codes.
func ToStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var parseErr *mgrs.ParseError
	switch {
	case errors.Is(err, kb.ErrSiteNotFound):
		return status.Error(codes.NotFound, err.Error())

	case errors.Is(err, kb.ErrSiteExists):
		return status.Error(codes.AlreadyExists, err.Error())

	case errors.Is(err, core.ErrReferenceOriginNotSet),
		errors.Is(err, core.ErrDegenerateOrigin):
		return status.Error(codes.FailedPrecondition, err.Error())

	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, types.ErrInvalidMessage),
		errors.Is(err, model.ErrUnknownSystem),
		errors.Is(err, model.ErrNonFinite),
		errors.Is(err, core.ErrSystemMismatch),
		errors.Is(err, core.ErrUnsupportedConversion),
		errors.Is(err, core.ErrInvalidTLE),
		errors.Is(err, kb.ErrInvalidSite),
		errors.Is(err, track.ErrInvalidWindow),
		errors.As(err, &parseErr),
		errors.Is(err, mgrs.ErrInvalidZone),
		errors.Is(err, mgrs.ErrInvalidLetters),
		errors.Is(err, mgrs.ErrOddPrecision),
		errors.Is(err, mgrs.ErrOutOfRange),
		errors.Is(err, mgrs.ErrNoConvergence):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())

	default:
		return status.Error(codes.Internal, err.Error())
	}
}
