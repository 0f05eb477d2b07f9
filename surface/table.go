package surface

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ReadTable reads whitespace- or comma-separated x y z records from r.
// Blank lines and lines starting with # are skipped. Records with
// unparsable fields are an error; NaN values parse fine and are
// dropped later during ingestion.
func ReadTable(r io.Reader) ([][3]float64, error) {
	var points [][3]float64
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ">") {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ' ' || r == '\t' || r == ','
		})
		if len(fields) < 3 {
			return nil, fmt.Errorf("surface: line %d: need 3 columns, got %d", lineNo, len(fields))
		}
		var p [3]float64
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, fmt.Errorf("surface: line %d: %w", lineNo, err)
			}
			p[i] = v
		}
		points = append(points, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("surface: reading table: %w", err)
	}
	return points, nil
}

// ReadPolylines reads a multi-segment table: segments are separated by
// lines starting with >. Records may have 2 or 3 columns; with 2 the
// returned z is NaN and the caller supplies a level.
func ReadPolylines(r io.Reader) ([][][3]float64, error) {
	var lines [][][3]float64
	var cur [][3]float64
	flush := func() {
		if len(cur) > 0 {
			lines = append(lines, cur)
			cur = nil
		}
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, ">") {
			flush()
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ' ' || r == '\t' || r == ','
		})
		if len(fields) < 2 {
			return nil, fmt.Errorf("surface: line %d: need at least 2 columns, got %d", lineNo, len(fields))
		}
		p := [3]float64{0, 0, math.NaN()}
		for i := 0; i < len(fields) && i < 3; i++ {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, fmt.Errorf("surface: line %d: %w", lineNo, err)
			}
			p[i] = v
		}
		cur = append(cur, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("surface: reading polylines: %w", err)
	}
	flush()
	return lines, nil
}
