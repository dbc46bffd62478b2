package core

import "github.com/signalsfoundry/coordinate-engine/model"

type edge struct {
	from, to model.System
}

type stepFunc func(c *CoordinateConverter, in model.Coordinate) (model.Coordinate, error)

// conversionSteps holds every direct conversion. All other pairs are routed
// through these, with ECEF and LLA acting as hubs.
var conversionSteps = map[edge]stepFunc{
	{model.SystemLLA, model.SystemECEF}: func(_ *CoordinateConverter, in model.Coordinate) (model.Coordinate, error) {
		return ConvertGeodeticToECEF(in)
	},
	{model.SystemECEF, model.SystemLLA}: func(_ *CoordinateConverter, in model.Coordinate) (model.Coordinate, error) {
		return ConvertECEFToGeodetic(in)
	},
	{model.SystemECI, model.SystemECEF}: func(_ *CoordinateConverter, in model.Coordinate) (model.Coordinate, error) {
		return ConvertECIToECEF(in)
	},
	{model.SystemECEF, model.SystemECI}: func(_ *CoordinateConverter, in model.Coordinate) (model.Coordinate, error) {
		return ConvertECEFToECI(in)
	},
	{model.SystemECEF, model.SystemXEast}: (*CoordinateConverter).ConvertECEFToXEast,
	{model.SystemXEast, model.SystemECEF}: (*CoordinateConverter).ConvertXEastToECEF,
	{model.SystemXEast, model.SystemGTP}:  (*CoordinateConverter).ConvertXEastToGTP,
	{model.SystemGTP, model.SystemXEast}:  (*CoordinateConverter).ConvertGTPToXEast,
}

func init() {
	flat := []model.System{model.SystemNED, model.SystemNWU, model.SystemENU}
	for _, f := range flat {
		frame := f
		conversionSteps[edge{model.SystemLLA, frame}] = func(c *CoordinateConverter, in model.Coordinate) (model.Coordinate, error) {
			return c.ConvertGeodeticToFlat(in, frame)
		}
		conversionSteps[edge{frame, model.SystemLLA}] = (*CoordinateConverter).ConvertFlatToGeodetic
		for _, g := range flat {
			if g == frame {
				continue
			}
			target := g
			conversionSteps[edge{frame, target}] = func(_ *CoordinateConverter, in model.Coordinate) (model.Coordinate, error) {
				return ConvertFlatToFlat(in, target)
			}
		}
	}
	buildRouteTable()
}

// routeTable[from][to] lists the systems visited after from, ending in to.
var routeTable [model.SystemGTP + 1][model.SystemGTP + 1][]model.System

// buildRouteTable fills routeTable with shortest paths over conversionSteps.
// Neighbours are explored in enumeration order so routes are deterministic.
func buildRouteTable() {
	for _, from := range model.ConvertibleSystems {
		prev := map[model.System]model.System{from: from}
		queue := []model.System{from}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, next := range model.ConvertibleSystems {
				if _, seen := prev[next]; seen {
					continue
				}
				if _, ok := conversionSteps[edge{cur, next}]; !ok {
					continue
				}
				prev[next] = cur
				queue = append(queue, next)
			}
		}
		for _, to := range model.ConvertibleSystems {
			if to == from {
				continue
			}
			if _, ok := prev[to]; !ok {
				continue
			}
			var path []model.System
			for s := to; s != from; s = prev[s] {
				path = append([]model.System{s}, path...)
			}
			routeTable[from][to] = path
		}
	}
}

func routeFor(from, to model.System) ([]model.System, bool) {
	if !from.Valid() || !to.Valid() {
		return nil, false
	}
	r := routeTable[from][to]
	return r, len(r) > 0
}

// Route returns the sequence of systems a conversion from one system to
// another passes through, excluding the starting system.
func Route(from, to model.System) []model.System {
	r, _ := routeFor(from, to)
	return append([]model.System(nil), r...)
}
