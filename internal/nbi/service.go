package nbi

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/signalsfoundry/coordinate-engine/core"
	"github.com/signalsfoundry/coordinate-engine/internal/logging"
	"github.com/signalsfoundry/coordinate-engine/internal/nbi/types"
	"github.com/signalsfoundry/coordinate-engine/internal/observability"
	"github.com/signalsfoundry/coordinate-engine/internal/track"
	"github.com/signalsfoundry/coordinate-engine/kb"
	"github.com/signalsfoundry/coordinate-engine/mgrs"
	"github.com/signalsfoundry/coordinate-engine/model"
)

// DefaultMaxBatch bounds ConvertBatch inputs and Track samples when no
// limit is configured.
const DefaultMaxBatch = 10000

// CoordinateService implements CoordinateServiceServer on top of the
// conversion engine and a site catalog. Each request builds its own
// converter, so the service is safe for concurrent use.
type CoordinateService struct {
	catalog      *kb.Catalog
	metrics      *observability.ConversionCollector
	trackMetrics *observability.TrackCollector
	log          logging.Logger
	maxBatch     int
	now          func() time.Time
}

var _ CoordinateServiceServer = (*CoordinateService)(nil)

// ServiceOption configures a CoordinateService.
type ServiceOption func(*CoordinateService)

// WithMetrics records conversion and MGRS metrics.
func WithMetrics(m *observability.ConversionCollector) ServiceOption {
	return func(s *CoordinateService) { s.metrics = m }
}

// WithTrackMetrics records tracking metrics.
func WithTrackMetrics(m *observability.TrackCollector) ServiceOption {
	return func(s *CoordinateService) { s.trackMetrics = m }
}

// WithLogger sets the fallback logger used when the request context has none.
func WithLogger(l logging.Logger) ServiceOption {
	return func(s *CoordinateService) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMaxBatch bounds batch and track sizes.
func WithMaxBatch(n int) ServiceOption {
	return func(s *CoordinateService) {
		if n > 0 {
			s.maxBatch = n
		}
	}
}

// WithClock overrides the time used when a track request has no start.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *CoordinateService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewCoordinateService wires the service to a catalog. A nil catalog gets
// an empty one.
func NewCoordinateService(catalog *kb.Catalog, opts ...ServiceOption) *CoordinateService {
	if catalog == nil {
		catalog = kb.NewCatalog()
	}
	s := &CoordinateService{
		catalog:  catalog,
		log:      logging.Noop(),
		maxBatch: DefaultMaxBatch,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CoordinateService) logger(ctx context.Context) logging.Logger {
	return logging.FromContext(ctx, s.log)
}

// converterFor builds the converter a request's frame asks for.
func (s *CoordinateService) converterFor(ctx context.Context, f types.Frame) (*core.CoordinateConverter, error) {
	if err := ValidateFrame(f); err != nil {
		return nil, err
	}
	log := s.logger(ctx)
	switch {
	case f.SiteID != "":
		site, err := s.catalog.GetSite(f.SiteID)
		if err != nil {
			return nil, err
		}
		return site.Converter(core.WithLogger(log)), nil
	case f.Origin != nil:
		return f.Origin.Site().Converter(core.WithLogger(log)), nil
	default:
		return core.NewCoordinateConverter(core.WithLogger(log)), nil
	}
}

func (s *CoordinateService) convertOne(ctx context.Context, conv *core.CoordinateConverter, in model.Coordinate, out model.System, siteID string) (model.Coordinate, error) {
	_, span := StartConversionSpan(ctx, in.System(), out, siteID)
	defer span.End()

	start := time.Now()
	res, err := conv.Convert(in, out)
	s.metrics.ObserveConversion(in.System().String(), out.String(), err, time.Since(start))
	if err != nil {
		span.RecordError(err)
	}
	return res, err
}

func (s *CoordinateService) Convert(ctx context.Context, req *types.ConvertRequest) (*types.ConvertResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	outSys, err := ParseOutputSystem(req.Output)
	if err != nil {
		return nil, ToStatusError(err)
	}
	in, err := req.Input.ToModel(req.Degrees)
	if err != nil {
		return nil, ToStatusError(err)
	}
	conv, err := s.converterFor(ctx, req.Frame)
	if err != nil {
		return nil, ToStatusError(err)
	}

	out, err := s.convertOne(ctx, conv, in, outSys, req.SiteID)
	if err != nil {
		s.logger(ctx).Debug(ctx, "conversion failed",
			logging.String("from", in.System().String()),
			logging.String("to", outSys.String()),
			logging.Err(err),
		)
		return nil, ToStatusError(err)
	}

	route := core.Route(in.System(), outSys)
	names := make([]string, len(route))
	for i, sys := range route {
		names[i] = sys.String()
	}
	return &types.ConvertResponse{
		Output: types.CoordinateFromModel(out, req.Degrees),
		Route:  names,
	}, nil
}

func (s *CoordinateService) ConvertBatch(ctx context.Context, req *types.ConvertBatchRequest) (*types.ConvertBatchResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if err := ValidateBatchSize(len(req.Inputs), s.maxBatch); err != nil {
		return nil, ToStatusError(err)
	}
	outSys, err := ParseOutputSystem(req.Output)
	if err != nil {
		return nil, ToStatusError(err)
	}
	conv, err := s.converterFor(ctx, req.Frame)
	if err != nil {
		return nil, ToStatusError(err)
	}

	ctx, span := StartChildSpan(ctx, "convert batch",
		attribute.Int("coordinate.batch_size", len(req.Inputs)),
		attribute.String("coordinate.to", outSys.String()),
	)
	defer span.End()

	resp := &types.ConvertBatchResponse{Results: make([]types.BatchResult, len(req.Inputs))}
	for i, wire := range req.Inputs {
		if err := ctx.Err(); err != nil {
			return nil, ToStatusError(err)
		}
		in, err := wire.ToModel(req.Degrees)
		if err == nil {
			var out model.Coordinate
			if out, err = s.convertOne(ctx, conv, in, outSys, req.SiteID); err == nil {
				c := types.CoordinateFromModel(out, req.Degrees)
				resp.Results[i].Output = &c
				continue
			}
		}
		resp.Results[i].Error = err.Error()
		resp.Failed++
	}
	if resp.Failed > 0 {
		s.logger(ctx).Info(ctx, "batch conversion had failures",
			logging.Int("failed", resp.Failed),
			logging.Int("total", len(req.Inputs)),
		)
	}
	return resp, nil
}

func (s *CoordinateService) DecodeMGRS(ctx context.Context, req *types.DecodeMGRSRequest) (*types.DecodeMGRSResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	resp, err := decodeMGRS(req.MGRS)
	s.metrics.ObserveMGRS("decode", err)
	if err != nil {
		return nil, ToStatusError(err)
	}
	return resp, nil
}

func decodeMGRS(s string) (*types.DecodeMGRSResponse, error) {
	parts, err := mgrs.BreakMGRSString(s)
	if err != nil {
		return nil, err
	}
	lat, lon, err := mgrs.ConvertMGRSToGeodetic(s)
	if err != nil {
		return nil, err
	}
	resp := &types.DecodeMGRSResponse{
		LatDeg: core.RadToDeg(lat),
		LonDeg: core.RadToDeg(lon),
		Zone:   parts.Zone,
		Polar:  parts.Polar(),
	}
	if parts.Polar() {
		ups, err := mgrs.ConvertMGRSToUPS(parts.Letters, parts.Easting, parts.Northing)
		if err != nil {
			return nil, err
		}
		resp.Hemisphere, resp.Easting, resp.Northing = ups.Hemisphere.String(), ups.Easting, ups.Northing
	} else {
		utm, err := mgrs.ConvertMGRSToUTM(parts.Zone, parts.Letters, parts.Easting, parts.Northing)
		if err != nil {
			return nil, err
		}
		resp.Hemisphere, resp.Easting, resp.Northing = utm.Hemisphere.String(), utm.Easting, utm.Northing
	}
	return resp, nil
}

func (s *CoordinateService) EncodeMGRS(ctx context.Context, req *types.EncodeMGRSRequest) (*types.EncodeMGRSResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if err := ValidateMGRSEncode(req); err != nil {
		s.metrics.ObserveMGRS("encode", err)
		return nil, ToStatusError(err)
	}
	str, err := mgrs.ConvertGeodeticToMGRS(core.DegToRad(req.LatDeg), core.DegToRad(req.LonDeg), req.Precision)
	s.metrics.ObserveMGRS("encode", err)
	if err != nil {
		return nil, ToStatusError(err)
	}
	return &types.EncodeMGRSResponse{MGRS: str}, nil
}

func (s *CoordinateService) ListSystems(context.Context, *emptypb.Empty) (*types.ListSystemsResponse, error) {
	resp := &types.ListSystemsResponse{Systems: make([]types.SystemInfo, 0, len(model.ConvertibleSystems))}
	for _, sys := range model.ConvertibleSystems {
		resp.Systems = append(resp.Systems, types.SystemInfo{
			Name:        sys.String(),
			Value:       int(sys),
			NeedsOrigin: sys.NeedsReferenceOrigin(),
			FlatEarth:   sys.IsFlatEarth(),
		})
	}
	return resp, nil
}

func (s *CoordinateService) PutSite(ctx context.Context, req *types.PutSiteRequest) (*types.PutSiteResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	created, err := s.catalog.PutSite(req.Site.ToKB())
	if err != nil {
		return nil, ToStatusError(err)
	}
	stored, err := s.catalog.GetSite(req.Site.ToKB().ID)
	if err != nil {
		return nil, ToStatusError(err)
	}
	msg, err := types.SiteFromKB(stored)
	if err != nil {
		return nil, ToStatusError(err)
	}
	s.logger(ctx).Info(ctx, "site stored",
		logging.String("site_id", stored.ID),
		logging.Bool("created", created),
	)
	return &types.PutSiteResponse{Site: msg, Created: created}, nil
}

func (s *CoordinateService) GetSite(ctx context.Context, req *types.SiteRequest) (*types.SiteMessage, error) {
	if req == nil || req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	site, err := s.catalog.GetSite(req.ID)
	if err != nil {
		return nil, ToStatusError(err)
	}
	msg, err := types.SiteFromKB(site)
	if err != nil {
		return nil, ToStatusError(err)
	}
	return &msg, nil
}

func (s *CoordinateService) ListSites(context.Context, *emptypb.Empty) (*types.ListSitesResponse, error) {
	sites := s.catalog.ListSites()
	resp := &types.ListSitesResponse{Sites: make([]types.SiteMessage, 0, len(sites))}
	for _, site := range sites {
		msg, err := types.SiteFromKB(site)
		if err != nil {
			return nil, ToStatusError(err)
		}
		resp.Sites = append(resp.Sites, msg)
	}
	return resp, nil
}

func (s *CoordinateService) DeleteSite(ctx context.Context, req *types.SiteRequest) (*emptypb.Empty, error) {
	if req == nil || req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	if err := s.catalog.RemoveSite(req.ID); err != nil {
		return nil, ToStatusError(err)
	}
	s.logger(ctx).Info(ctx, "site removed", logging.String("site_id", req.ID))
	return &emptypb.Empty{}, nil
}

func (s *CoordinateService) Track(ctx context.Context, req *types.TrackRequest) (*types.TrackResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	window, err := ValidateTrackRequest(req, s.maxBatch, s.now())
	if err != nil {
		return nil, ToStatusError(err)
	}
	outSys, err := ParseOutputSystem(req.Output)
	if err != nil {
		return nil, ToStatusError(err)
	}
	motion, err := core.NewOrbitalModelFromTLE(req.TLELine1, req.TLELine2)
	if err != nil {
		return nil, ToStatusError(err)
	}
	conv, err := s.converterFor(ctx, req.Frame)
	if err != nil {
		return nil, ToStatusError(err)
	}

	ctx, span := StartChildSpan(ctx, "track",
		attribute.Int("track.count", window.Count),
		attribute.String("track.step", window.Step.String()),
		attribute.String("coordinate.to", outSys.String()),
	)
	defer span.End()

	sampler := &track.Sampler{
		Model:         motion,
		Converter:     conv,
		Output:        outSys,
		ElevationMask: core.DegToRad(req.ElevationMaskDeg),
		Metrics:       s.trackMetrics,
		Log:           s.logger(ctx),
	}
	samples, err := sampler.Run(ctx, window.Start, window.Step, window.Count)
	if err != nil {
		span.RecordError(err)
		return nil, ToStatusError(fmt.Errorf("track: %w", err))
	}

	resp := &types.TrackResponse{Samples: make([]types.TrackSample, 0, len(samples))}
	for _, smp := range samples {
		out := types.TrackSample{
			Time:       smp.Time.UTC().Format(time.RFC3339Nano),
			Coordinate: types.CoordinateFromModel(smp.Coordinate, req.Degrees),
		}
		if smp.Look != nil {
			az, el := core.RadToDeg(smp.Look.Azimuth), core.RadToDeg(smp.Look.Elevation)
			rng := smp.Look.Range
			out.AzimuthDeg, out.ElevationDeg, out.RangeM = &az, &el, &rng
			out.Visible = smp.Look.Visible
		}
		resp.Samples = append(resp.Samples, out)
	}
	return resp, nil
}
