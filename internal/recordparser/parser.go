package recordparser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/PlatosRepublic7/navdatamanager/internal/errs"
	"github.com/PlatosRepublic7/navdatamanager/internal/reader"
)

// airportStatusMarkers are legacy tokens stripped from an airport header
// line before the ICAO and name are extracted.
var airportStatusMarkers = map[string]bool{"[H]": true, "[S]": true, "[X]": true}

// Parser drives a LineReader and dispatches by row code into the per-record
// handlers described by the apt.dat dispatch table.
type Parser struct {
	filterSet map[int]bool
}

// New builds a Parser. A nil or empty filterOverride uses
// DefaultLinearFeatureFilter.
func New(filterOverride []int) *Parser {
	codes := DefaultLinearFeatureFilter
	if len(filterOverride) > 0 {
		codes = filterOverride
	}
	return &Parser{filterSet: toFilterSet(codes)}
}

// ParseFile reads path in full and returns the ParsedFile batch.
func (p *Parser) ParseFile(path string) (*ParsedFile, error) {
	r, err := reader.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	pf := &ParsedFile{Path: path}
	var curICAO string
	featureSeq := 0

	for {
		ok, err := r.Advance()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		code := r.RowCode()
		if curICAO == "" && code != 1 && code != 16 && code != 17 {
			// No accepted airport owns this row (before the first header, or
			// after a header whose ICAO was empty): skip it unparsed.
			continue
		}
		switch code {
		case 1, 16, 17:
			am, err := p.parseAirportMeta(path, r, code)
			if err != nil {
				return nil, err
			}
			if am == nil {
				curICAO = ""
				featureSeq = 0
				continue
			}
			curICAO = am.ICAO
			featureSeq = 0
			pf.Airports = append(pf.Airports, *am)

		case 100:
			rw, err := parseRunway(path, r, curICAO)
			if err != nil {
				return nil, err
			}
			pf.Runways = append(pf.Runways, *rw)

		case 1200:
			// Header row with no per-row payload of its own.

		case 1201:
			node, err := parseTaxiNode(path, r, curICAO)
			if err != nil {
				return nil, err
			}
			pf.TaxiNodes = append(pf.TaxiNodes, *node)

		case 1202:
			edge, err := parseTaxiEdge(path, r, curICAO)
			if err != nil {
				return nil, err
			}
			pf.TaxiEdges = append(pf.TaxiEdges, *edge)

		case 120:
			feat, nodes, err := p.parseLinearFeature(path, r, curICAO, &featureSeq)
			if err != nil {
				return nil, err
			}
			if feat != nil {
				pf.LinearFeatures = append(pf.LinearFeatures, *feat)
				pf.LinearFeatureNodes = append(pf.LinearFeatureNodes, nodes...)
			}

		case 1300:
			loc, err := parseStartupLocation(path, r, curICAO)
			if err != nil {
				return nil, err
			}
			pf.StartupLocations = append(pf.StartupLocations, *loc)

		default:
			// Unrecognized row code: ignored per the dispatch table.
		}
	}

	return pf, nil
}

// parseAirportMeta reads a 1|16|17 header and any following 1302
// continuation lines, merging them into a single AirportMeta.
func (p *Parser) parseAirportMeta(path string, r *reader.LineReader, code int) (*AirportMeta, error) {
	toks := r.Tokens()
	if len(toks) < 2 {
		return nil, errs.ParseErrorf(path, r.LineNumber(), r.Line(), toks, fmt.Errorf("airport header too short"))
	}

	elevFt, err := strconv.Atoi(toks[1])
	if err != nil {
		return nil, errs.ParseErrorf(path, r.LineNumber(), r.Line(), toks, fmt.Errorf("elevation: %w", err))
	}

	var kind AirportKind
	switch code {
	case 16:
		kind = KindSeaplane
	case 17:
		kind = KindHeliport
	default:
		kind = KindLand
	}

	icao, name := airportHeaderFields(toks)

	am := &AirportMeta{ICAO: icao, Kind: kind, ElevationFt: &elevFt}
	if name != "" {
		am.AirportName = &name
	}

	for {
		ok, err := r.Advance()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if r.RowCode() != 1302 {
			if err := r.Pushback(); err != nil {
				return nil, err
			}
			break
		}
		applyAirportContinuation(am, r.Tokens())
	}

	trimmed := trimICAO(am.ICAO)
	if trimmed == "" {
		return nil, nil
	}
	am.ICAO = trimmed
	return am, nil
}

// airportHeaderFields strips legacy status markers from tokens[3:] (tokens
// before index 3 are left untouched) and returns the ICAO and name derived
// from the filtered token list.
func airportHeaderFields(toks []string) (icao, name string) {
	if len(toks) <= 3 {
		return "", ""
	}
	full := make([]string, 0, len(toks))
	full = append(full, toks[:3]...)
	for _, t := range toks[3:] {
		if airportStatusMarkers[t] {
			continue
		}
		full = append(full, t)
	}
	if len(full) > 4 {
		icao = full[4]
	}
	if len(full) > 5 {
		name = strings.Join(full[5:], " ")
	}
	return icao, name
}

func applyAirportContinuation(am *AirportMeta, toks []string) {
	if len(toks) < 2 {
		return
	}
	key := toks[1]
	var value string
	if len(toks) > 2 {
		value = strings.Join(toks[2:], " ")
	}

	switch key {
	case "icao_code":
		am.ICAO = value
	case "iata_code":
		am.IATA = &value
	case "faa_code":
		am.FAA = &value
	case "city":
		am.City = &value
	case "country":
		am.Country = &value
	case "state":
		am.State = &value
	case "region_code":
		am.Region = &value
	case "transition_alt":
		am.TransitionAlt = &value
	case "transition_level":
		normalized := normalizeTransitionLevel(value)
		am.TransitionLevel = &normalized
	case "datum_lat":
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			am.Latitude = &f
		}
	case "datum_lon":
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			am.Longitude = &f
		}
	default:
		// Unknown keys are ignored.
	}
}

// normalizeTransitionLevel converts a bare integer value n to FL{n/100};
// anything already prefixed with FL, or non-numeric, passes through as-is.
func normalizeTransitionLevel(value string) string {
	n, err := strconv.Atoi(value)
	if err != nil {
		return value
	}
	return fmt.Sprintf("FL%d", n/100)
}

// trimICAO strips ASCII whitespace and control characters and uppercases
// the result.
func trimICAO(s string) string {
	trimmed := strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	})
	return strings.ToUpper(trimmed)
}

func parseRunway(path string, r *reader.LineReader, icao string) (*RunwayData, error) {
	toks := r.Tokens()
	if len(toks) < 24 {
		return nil, errs.ParseErrorf(path, r.LineNumber(), r.Line(), toks, fmt.Errorf("runway row too short"))
	}

	width, err := strconv.ParseFloat(toks[1], 64)
	if err != nil {
		return nil, errs.ParseErrorf(path, r.LineNumber(), r.Line(), toks, fmt.Errorf("width: %w", err))
	}
	surface, err := strconv.Atoi(toks[2])
	if err != nil {
		return nil, errs.ParseErrorf(path, r.LineNumber(), r.Line(), toks, fmt.Errorf("surface: %w", err))
	}

	end1, err := parseRunwayEnd(path, r, toks, 8)
	if err != nil {
		return nil, err
	}
	end2, err := parseRunwayEnd(path, r, toks, 17)
	if err != nil {
		return nil, err
	}

	return &RunwayData{
		AirportICAO: icao,
		WidthM:      width,
		SurfaceCode: surface,
		End1:        end1,
		End2:        end2,
	}, nil
}

func parseRunwayEnd(path string, r *reader.LineReader, toks []string, base int) (RunwayEnd, error) {
	lat, err := strconv.ParseFloat(toks[base+1], 64)
	if err != nil {
		return RunwayEnd{}, errs.ParseErrorf(path, r.LineNumber(), r.Line(), toks, fmt.Errorf("end lat: %w", err))
	}
	lon, err := strconv.ParseFloat(toks[base+2], 64)
	if err != nil {
		return RunwayEnd{}, errs.ParseErrorf(path, r.LineNumber(), r.Line(), toks, fmt.Errorf("end lon: %w", err))
	}
	displaced, err := strconv.ParseFloat(toks[base+3], 64)
	if err != nil {
		return RunwayEnd{}, errs.ParseErrorf(path, r.LineNumber(), r.Line(), toks, fmt.Errorf("displaced threshold: %w", err))
	}
	marking, err := strconv.Atoi(toks[base+5])
	if err != nil {
		return RunwayEnd{}, errs.ParseErrorf(path, r.LineNumber(), r.Line(), toks, fmt.Errorf("marking code: %w", err))
	}
	approach, err := strconv.Atoi(toks[base+6])
	if err != nil {
		return RunwayEnd{}, errs.ParseErrorf(path, r.LineNumber(), r.Line(), toks, fmt.Errorf("approach light code: %w", err))
	}

	return RunwayEnd{
		RwNumber:            padRwNumber(toks[base]),
		Lat:                 lat,
		Lon:                 lon,
		DisplacedThresholdM: displaced,
		MarkingCode:         marking,
		ApproachLightCode:   approach,
	}, nil
}

// padRwNumber adds a leading zero when the runway number is a two-character
// value with a L/C/R suffix (e.g. "4L" -> "04L").
func padRwNumber(s string) string {
	if len(s) == 2 {
		switch s[len(s)-1] {
		case 'L', 'C', 'R':
			return "0" + s
		}
	}
	return s
}

func parseTaxiNode(path string, r *reader.LineReader, icao string) (*TaxiwayNode, error) {
	toks := r.Tokens()
	if len(toks) < 5 {
		return nil, errs.ParseErrorf(path, r.LineNumber(), r.Line(), toks, fmt.Errorf("taxi node row too short"))
	}
	lat, err := strconv.ParseFloat(toks[1], 64)
	if err != nil {
		return nil, errs.ParseErrorf(path, r.LineNumber(), r.Line(), toks, fmt.Errorf("lat: %w", err))
	}
	lon, err := strconv.ParseFloat(toks[2], 64)
	if err != nil {
		return nil, errs.ParseErrorf(path, r.LineNumber(), r.Line(), toks, fmt.Errorf("lon: %w", err))
	}
	nodeID, err := strconv.Atoi(toks[4])
	if err != nil {
		return nil, errs.ParseErrorf(path, r.LineNumber(), r.Line(), toks, fmt.Errorf("node id: %w", err))
	}
	return &TaxiwayNode{
		NodeID:      nodeID,
		AirportICAO: icao,
		Latitude:    lat,
		Longitude:   lon,
		NodeKind:    toks[3],
	}, nil
}

func parseTaxiEdge(path string, r *reader.LineReader, icao string) (*TaxiwayEdge, error) {
	toks := r.Tokens()
	if len(toks) < 5 {
		return nil, errs.ParseErrorf(path, r.LineNumber(), r.Line(), toks, fmt.Errorf("taxi edge row too short"))
	}
	start, err := strconv.Atoi(toks[1])
	if err != nil {
		return nil, errs.ParseErrorf(path, r.LineNumber(), r.Line(), toks, fmt.Errorf("start node id: %w", err))
	}
	end, err := strconv.Atoi(toks[2])
	if err != nil {
		return nil, errs.ParseErrorf(path, r.LineNumber(), r.Line(), toks, fmt.Errorf("end node id: %w", err))
	}
	widthTok := toks[4]
	edge := &TaxiwayEdge{
		AirportICAO: icao,
		StartNodeID: start,
		EndNodeID:   end,
		IsTwoWay:    toks[3] == "twoway",
		WidthClass:  widthTok[len(widthTok)-1],
	}
	if len(toks) > 5 {
		name := strings.Join(toks[5:], " ")
		edge.TaxiwayName = &name
	}
	return edge, nil
}

// parseLinearFeature consumes the 111-116 node lines of one feature,
// deciding whether to keep the feature based on whether any node carries a
// line-type code in the retained filter set. feature_sequence is only
// assigned -- and counter only incremented -- for features that survive
// the filter, which keeps the persisted sequence dense per airport.
func (p *Parser) parseLinearFeature(path string, r *reader.LineReader, icao string, counter *int) (*LinearFeature, []LinearFeatureNode, error) {
	headerToks := r.Tokens()
	var lineType string
	if len(headerToks) > 1 {
		lineType = strings.Join(headerToks[1:], " ")
	}

	var nodes []LinearFeatureNode
	keep := false
	order := 0

	for {
		ok, err := r.Advance()
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			break
		}
		code := r.RowCode()
		if code < 111 || code > 116 {
			if err := r.Pushback(); err != nil {
				return nil, nil, err
			}
			break
		}

		toks := r.Tokens()
		lat, lon, bLat, bLon, lineCodes, err := parseFeatureNodeTokens(path, r, toks, code)
		if err != nil {
			return nil, nil, err
		}
		for _, c := range lineCodes {
			if p.filterSet[c] {
				keep = true
			}
		}
		nodes = append(nodes, LinearFeatureNode{
			AirportICAO: icao,
			Lat:         lat,
			Lon:         lon,
			BezierLat:   bLat,
			BezierLon:   bLon,
			NodeOrder:   order,
		})
		order++
	}

	if !keep {
		return nil, nil, nil
	}

	*counter++
	seq := *counter
	for i := range nodes {
		nodes[i].FeatureSequence = seq
	}
	return &LinearFeature{AirportICAO: icao, FeatureSequence: seq, LineType: lineType}, nodes, nil
}

// parseFeatureNodeTokens reads lat/lon at tokens 1-2. For bezier variants
// (112, 114, 116) tokens 3-4 are the bezier control point and the line-type
// codes follow at token 5 onward; for plain variants the line-type codes
// start at token 3. One or two line-type codes may be present.
func parseFeatureNodeTokens(path string, r *reader.LineReader, toks []string, code int) (lat, lon float64, bezierLat, bezierLon *float64, lineCodes []int, err error) {
	if len(toks) < 3 {
		return 0, 0, nil, nil, nil, errs.ParseErrorf(path, r.LineNumber(), r.Line(), toks, fmt.Errorf("feature node row too short"))
	}
	lat, err = strconv.ParseFloat(toks[1], 64)
	if err != nil {
		return 0, 0, nil, nil, nil, errs.ParseErrorf(path, r.LineNumber(), r.Line(), toks, fmt.Errorf("lat: %w", err))
	}
	lon, err = strconv.ParseFloat(toks[2], 64)
	if err != nil {
		return 0, 0, nil, nil, nil, errs.ParseErrorf(path, r.LineNumber(), r.Line(), toks, fmt.Errorf("lon: %w", err))
	}

	rest := toks[3:]
	if code == 112 || code == 114 || code == 116 {
		if len(toks) < 5 {
			return 0, 0, nil, nil, nil, errs.ParseErrorf(path, r.LineNumber(), r.Line(), toks, fmt.Errorf("bezier node row too short"))
		}
		bl, err := strconv.ParseFloat(toks[3], 64)
		if err != nil {
			return 0, 0, nil, nil, nil, errs.ParseErrorf(path, r.LineNumber(), r.Line(), toks, fmt.Errorf("bezier lat: %w", err))
		}
		blo, err := strconv.ParseFloat(toks[4], 64)
		if err != nil {
			return 0, 0, nil, nil, nil, errs.ParseErrorf(path, r.LineNumber(), r.Line(), toks, fmt.Errorf("bezier lon: %w", err))
		}
		bezierLat, bezierLon = &bl, &blo
		rest = toks[5:]
	}

	for _, t := range rest {
		if n, convErr := strconv.Atoi(t); convErr == nil {
			lineCodes = append(lineCodes, n)
		}
	}
	return lat, lon, bezierLat, bezierLon, lineCodes, nil
}

func parseStartupLocation(path string, r *reader.LineReader, icao string) (*StartupLocation, error) {
	toks := r.Tokens()
	if len(toks) < 5 {
		return nil, errs.ParseErrorf(path, r.LineNumber(), r.Line(), toks, fmt.Errorf("startup location row too short"))
	}
	lat, err := strconv.ParseFloat(toks[1], 64)
	if err != nil {
		return nil, errs.ParseErrorf(path, r.LineNumber(), r.Line(), toks, fmt.Errorf("lat: %w", err))
	}
	lon, err := strconv.ParseFloat(toks[2], 64)
	if err != nil {
		return nil, errs.ParseErrorf(path, r.LineNumber(), r.Line(), toks, fmt.Errorf("lon: %w", err))
	}
	heading, err := strconv.ParseFloat(toks[3], 64)
	if err != nil {
		return nil, errs.ParseErrorf(path, r.LineNumber(), r.Line(), toks, fmt.Errorf("heading: %w", err))
	}

	loc := &StartupLocation{AirportICAO: icao, Lat: lat, Lon: lon, HeadingDeg: heading, Kind: toks[4]}

	var aircraftRaw string
	var nameToks []string
	for _, t := range toks[5:] {
		if strings.Contains(t, "|") && aircraftRaw == "" {
			aircraftRaw = t
			continue
		}
		nameToks = append(nameToks, t)
	}
	if len(nameToks) > 0 {
		name := strings.Join(nameToks, " ")
		loc.RampName = &name
	}
	if aircraftRaw != "" {
		for _, a := range strings.Split(aircraftRaw, "|") {
			a = strings.TrimSpace(a)
			if a != "" {
				loc.AircraftTypes = append(loc.AircraftTypes, a)
			}
		}
	}
	return loc, nil
}
