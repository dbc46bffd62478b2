// Command coordconv converts coordinates, MGRS strings and satellite tracks
// from the command line. Every result is printed as one JSON object per line.
//
//	coordconv convert -from LLA -to ECEF -deg 32.5 -120.5 100
//	coordconv convert -from ECEF -to NED -origin 32.5,-120.5,0 -- -2431000 -4115000 3407000
//	coordconv mgrs decode 10SGA3487998613
//	coordconv mgrs encode -precision 3 32.5 -120.5
//	coordconv track -tle-file iss.tle -step 60s -count 10 -origin 35,-100,0
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/signalsfoundry/coordinate-engine/core"
	"github.com/signalsfoundry/coordinate-engine/internal/config"
	"github.com/signalsfoundry/coordinate-engine/internal/logging"
	"github.com/signalsfoundry/coordinate-engine/internal/nbi/types"
	"github.com/signalsfoundry/coordinate-engine/internal/track"
	"github.com/signalsfoundry/coordinate-engine/kb"
	"github.com/signalsfoundry/coordinate-engine/mgrs"
	"github.com/signalsfoundry/coordinate-engine/model"
)

var errUsage = errors.New("usage")

const usage = `usage: coordconv <command> [flags] [args]

commands:
  convert   convert one coordinate between systems
  mgrs      decode, encode, utm or ups
  track     propagate a TLE and print samples
  systems   list the supported coordinate systems`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, usage)
		return 2
	}
	log := logging.New(logging.ConfigFromEnv(logging.Config{Level: "warn", Output: stderr}))

	var err error
	switch args[0] {
	case "convert":
		err = runConvert(ctx, args[1:], stdout, stderr, log)
	case "mgrs":
		err = runMGRS(args[1:], stdout, stderr)
	case "track":
		err = runTrack(ctx, args[1:], stdout, stderr, log)
	case "systems":
		err = runSystems(stdout)
	case "-h", "-help", "--help", "help":
		fmt.Fprintln(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n%s\n", args[0], usage)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, err)
		}
		return 2
	default:
		fmt.Fprintf(stderr, "coordconv %s: %v\n", args[0], err)
		return 1
	}
}

// frameFlags selects the reference origin shared by convert and track.
type frameFlags struct {
	origin     string
	tangent    string
	siteID     string
	configPath string
}

func (f *frameFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.origin, "origin", "", "reference origin as lat,lon[,alt] in degrees and metres")
	fs.StringVar(&f.tangent, "tangent", "", "GTP offsets as x,y[,rotation] in metres and degrees")
	fs.StringVar(&f.siteID, "site", "", "use the origin of a configured site")
	fs.StringVar(&f.configPath, "config", "", "YAML config providing seeded or persisted sites")
}

func (f *frameFlags) converter(ctx context.Context, log logging.Logger) (*core.CoordinateConverter, error) {
	if f.siteID != "" {
		if f.origin != "" {
			return nil, fmt.Errorf("%w: -site and -origin are mutually exclusive", errUsage)
		}
		site, err := f.lookupSite(ctx)
		if err != nil {
			return nil, err
		}
		return site.Converter(core.WithLogger(log)), nil
	}

	conv := core.NewCoordinateConverter(core.WithLogger(log))
	if f.origin != "" {
		v, err := parseFloats(f.origin, 2, 3)
		if err != nil {
			return nil, fmt.Errorf("%w: -origin: %v", errUsage, err)
		}
		site := kb.Site{ID: "cli", LatDeg: v[0], LonDeg: v[1]}
		if len(v) == 3 {
			site.AltM = v[2]
		}
		if f.tangent != "" {
			t, err := parseFloats(f.tangent, 2, 3)
			if err != nil {
				return nil, fmt.Errorf("%w: -tangent: %v", errUsage, err)
			}
			site.OffsetX, site.OffsetY = t[0], t[1]
			if len(t) == 3 {
				site.RotationDeg = t[2]
			}
		}
		if err := site.Validate(); err != nil {
			return nil, err
		}
		conv = site.Converter(core.WithLogger(log))
	} else if f.tangent != "" {
		return nil, fmt.Errorf("%w: -tangent needs -origin", errUsage)
	}
	return conv, nil
}

func (f *frameFlags) lookupSite(ctx context.Context) (kb.Site, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return kb.Site{}, err
	}
	catalog := kb.NewCatalog()
	for _, s := range cfg.Sites.Seed {
		if _, err := catalog.PutSite(s); err != nil {
			return kb.Site{}, err
		}
	}
	if cfg.Sites.DB != "" {
		store, err := kb.OpenSQLiteStore(cfg.Sites.DB)
		if err != nil {
			return kb.Site{}, err
		}
		defer store.Close()
		if _, err := store.LoadInto(ctx, catalog); err != nil {
			return kb.Site{}, err
		}
	}
	return catalog.GetSite(f.siteID)
}

func runConvert(ctx context.Context, args []string, stdout, stderr io.Writer, log logging.Logger) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	from := fs.String("from", "LLA", "input coordinate system")
	to := fs.String("to", "ECEF", "output coordinate system")
	degrees := fs.Bool("deg", false, "LLA latitude/longitude and orientation are in degrees")
	orientation := fs.String("ori", "", "orientation as yaw,pitch,roll")
	velocity := fs.String("vel", "", "velocity as x,y,z")
	eciTime := fs.Float64("eci-time", 0, "elapsed ECI time in seconds")
	var frame frameFlags
	frame.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 3 {
		return fmt.Errorf("%w: convert takes exactly three position components", errUsage)
	}
	pos, err := parseFloats(strings.Join(fs.Args(), ","), 3, 3)
	if err != nil {
		return fmt.Errorf("%w: position: %v", errUsage, err)
	}

	in := types.Coordinate{
		System:         *from,
		Position:       types.Vec3{X: pos[0], Y: pos[1], Z: pos[2]},
		ElapsedECITime: *eciTime,
	}
	if in.Orientation, err = optionalVec(*orientation); err != nil {
		return fmt.Errorf("%w: -ori: %v", errUsage, err)
	}
	if in.Velocity, err = optionalVec(*velocity); err != nil {
		return fmt.Errorf("%w: -vel: %v", errUsage, err)
	}
	coord, err := in.ToModel(*degrees)
	if err != nil {
		return err
	}
	outSys, err := model.ParseSystem(*to)
	if err != nil {
		return err
	}
	conv, err := frame.converter(ctx, log)
	if err != nil {
		return err
	}

	out, err := conv.Convert(coord, outSys)
	if err != nil {
		return err
	}
	return writeJSON(stdout, types.CoordinateFromModel(out, *degrees))
}

func runMGRS(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: mgrs needs decode, encode, utm or ups", errUsage)
	}
	fs := flag.NewFlagSet("mgrs "+args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)
	precision := fs.Int("precision", 5, "MGRS digits per axis (encode)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	switch args[0] {
	case "decode":
		if fs.NArg() != 1 {
			return fmt.Errorf("%w: mgrs decode takes one MGRS string", errUsage)
		}
		lat, lon, err := mgrs.ConvertMGRSToGeodetic(fs.Arg(0))
		if err != nil {
			return err
		}
		return writeJSON(stdout, map[string]float64{"lat_deg": core.RadToDeg(lat), "lon_deg": core.RadToDeg(lon)})
	case "encode", "utm", "ups":
		if fs.NArg() != 2 {
			return fmt.Errorf("%w: mgrs %s takes latitude and longitude in degrees", errUsage, args[0])
		}
		ll, err := parseFloats(fs.Arg(0)+","+fs.Arg(1), 2, 2)
		if err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		lat, lon := core.DegToRad(ll[0]), core.DegToRad(ll[1])
		var out string
		switch args[0] {
		case "encode":
			out, err = mgrs.ConvertGeodeticToMGRS(lat, lon, *precision)
		case "utm":
			var u mgrs.UTM
			u, err = mgrs.ConvertGeodeticToUTM(lat, lon)
			out = u.String()
		default:
			var u mgrs.UPS
			u, err = mgrs.ConvertGeodeticToUPS(lat, lon)
			out = u.String()
		}
		if err != nil {
			return err
		}
		return writeJSON(stdout, map[string]string{args[0]: out})
	default:
		return fmt.Errorf("%w: unknown mgrs command %q", errUsage, args[0])
	}
}

func runTrack(ctx context.Context, args []string, stdout, stderr io.Writer, log logging.Logger) error {
	fs := flag.NewFlagSet("track", flag.ContinueOnError)
	fs.SetOutput(stderr)
	tle1 := fs.String("tle1", "", "TLE line 1")
	tle2 := fs.String("tle2", "", "TLE line 2")
	tleFile := fs.String("tle-file", "", "file holding a TLE, optionally preceded by a name line")
	start := fs.String("start", "", "RFC 3339 start time (default now)")
	step := fs.Duration("step", time.Minute, "time between samples")
	count := fs.Int("count", 10, "number of samples")
	to := fs.String("to", "LLA", "output coordinate system")
	degrees := fs.Bool("deg", true, "print LLA latitude/longitude in degrees")
	mask := fs.Float64("mask", 0, "elevation mask in degrees for visibility")
	var frame frameFlags
	frame.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	line1, line2 := *tle1, *tle2
	if *tleFile != "" {
		var err error
		if line1, line2, err = readTLEFile(*tleFile); err != nil {
			return err
		}
	}
	if line1 == "" || line2 == "" {
		return fmt.Errorf("%w: track needs -tle1 and -tle2 or -tle-file", errUsage)
	}
	startTime := time.Now().UTC()
	if *start != "" {
		t, err := time.Parse(time.RFC3339, *start)
		if err != nil {
			return fmt.Errorf("%w: -start: %v", errUsage, err)
		}
		startTime = t
	}
	outSys, err := model.ParseSystem(*to)
	if err != nil {
		return err
	}
	motion, err := core.NewOrbitalModelFromTLE(line1, line2)
	if err != nil {
		return err
	}
	conv, err := frame.converter(ctx, log)
	if err != nil {
		return err
	}

	sampler := &track.Sampler{
		Model:         motion,
		Converter:     conv,
		Output:        outSys,
		ElevationMask: core.DegToRad(*mask),
		Log:           log,
	}
	samples, err := sampler.Run(ctx, startTime, *step, *count)
	if err != nil {
		return err
	}
	for _, smp := range samples {
		row := types.TrackSample{
			Time:       smp.Time.UTC().Format(time.RFC3339Nano),
			Coordinate: types.CoordinateFromModel(smp.Coordinate, *degrees),
		}
		if smp.Look != nil {
			az, el, rng := core.RadToDeg(smp.Look.Azimuth), core.RadToDeg(smp.Look.Elevation), smp.Look.Range
			row.AzimuthDeg, row.ElevationDeg, row.RangeM = &az, &el, &rng
			row.Visible = smp.Look.Visible
		}
		if err := writeJSON(stdout, row); err != nil {
			return err
		}
	}
	return nil
}

func runSystems(stdout io.Writer) error {
	for _, sys := range model.ConvertibleSystems {
		info := types.SystemInfo{
			Name:        sys.String(),
			Value:       int(sys),
			NeedsOrigin: sys.NeedsReferenceOrigin(),
			FlatEarth:   sys.IsFlatEarth(),
		}
		if err := writeJSON(stdout, info); err != nil {
			return err
		}
	}
	return nil
}

// readTLEFile returns the first line-1/line-2 pair in path.
func readTLEFile(path string) (string, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	var line1 string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \r")
		switch {
		case strings.HasPrefix(line, "1 "):
			line1 = line
		case strings.HasPrefix(line, "2 ") && line1 != "":
			return line1, line, nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", "", err
	}
	return "", "", fmt.Errorf("%s: no two-line element set found: %w", path, core.ErrInvalidTLE)
}

func parseFloats(s string, minN, maxN int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) < minN || len(parts) > maxN {
		return nil, fmt.Errorf("want %d to %d comma-separated values, got %q", minN, maxN, s)
	}
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func optionalVec(s string) (*types.Vec3, error) {
	if s == "" {
		return nil, nil
	}
	v, err := parseFloats(s, 3, 3)
	if err != nil {
		return nil, err
	}
	return &types.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
}

func writeJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
