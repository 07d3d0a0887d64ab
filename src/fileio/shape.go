package fileio

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mappichat/precinct-forecasts/src/project_types"
)

// ParseError reports a precinct shape that cannot be turned into coordinates.
type ParseError struct {
	Ring   int
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("ring %d: %s: %q", e.Ring, e.Reason, e.Token)
	}
	return fmt.Sprintf("ring %d: %s", e.Ring, e.Reason)
}

var (
	wktPrefix    = regexp.MustCompile(`^[A-Za-z]+(\s+[A-Za-z]+)?\s*\(`)
	wktRingBreak = regexp.MustCompile(`\)\s*,\s*\(`)
	wktParens    = strings.NewReplacer("(", "", ")", "")
)

// ParseShape reads rings separated by ';', points separated by ',' and
// whitespace separated ordinates. Tokens are paired in order, so a ring may
// also be a flat "x1 y1 x2 y2 ..." list. WKT polygon text is accepted too.
func ParseShape(s string) (project_types.Shape, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, &ParseError{Reason: "empty shape"}
	}
	if loc := wktPrefix.FindStringIndex(s); loc != nil {
		s = wktRingBreak.ReplaceAllString(s[loc[1]-1:], ";")
		s = wktParens.Replace(s)
	}

	rawRings := strings.Split(s, ";")
	shape := make(project_types.Shape, 0, len(rawRings))
	for i, raw := range rawRings {
		ring, err := parseRing(raw, i)
		if err != nil {
			return nil, err
		}
		shape = append(shape, ring)
	}
	return shape, nil
}

func parseRing(raw string, index int) (project_types.Ring, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &ParseError{Ring: index, Reason: "empty ring"}
	}
	ring := project_types.Ring{}
	for _, segment := range strings.Split(raw, ",") {
		tokens := strings.Fields(segment)
		if len(tokens) == 0 {
			return nil, &ParseError{Ring: index, Reason: "empty point"}
		}
		if len(tokens)%2 != 0 {
			return nil, &ParseError{Ring: index, Token: strings.TrimSpace(segment), Reason: "odd number of ordinates"}
		}
		for j := 0; j < len(tokens); j += 2 {
			x, err := parseOrdinate(tokens[j], index)
			if err != nil {
				return nil, err
			}
			y, err := parseOrdinate(tokens[j+1], index)
			if err != nil {
				return nil, err
			}
			ring = append(ring, project_types.Point{x, y})
		}
	}
	return ring, nil
}

func parseOrdinate(token string, ring int) (float64, error) {
	v, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ParseError{Ring: ring, Token: token, Reason: "not a finite number"}
	}
	return v, nil
}
