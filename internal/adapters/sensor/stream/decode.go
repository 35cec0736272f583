package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bnema/stride/internal/domain"
)

var errEmptyLine = errors.New("empty line")

type jsonSample struct {
	T *int64   `json:"t"`
	Z *float64 `json:"z"`
}

// ParseLine decodes one recorded sample. Two encodings are accepted:
//
//	{"t":1000,"z":9.81}
//	1000,9.81
//
// A missing or null z (or an empty CSV field) yields a sample with
// MissingVertical set. Blank lines and lines starting with # return
// errEmptyLine.
func ParseLine(line string) (domain.MotionSample, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return domain.MotionSample{}, errEmptyLine
	}

	if strings.HasPrefix(line, "{") {
		return parseJSON(line)
	}

	return parseCSV(line)
}

func parseJSON(line string) (domain.MotionSample, error) {
	var raw jsonSample
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return domain.MotionSample{}, fmt.Errorf("decode json sample: %w", err)
	}
	if raw.T == nil {
		return domain.MotionSample{}, errors.New("decode json sample: missing timestamp")
	}

	sample := domain.MotionSample{TimestampMs: *raw.T}
	if raw.Z == nil {
		sample.MissingVertical = true
	} else {
		sample.VerticalAcceleration = *raw.Z
	}

	return sample, nil
}

func parseCSV(line string) (domain.MotionSample, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 2 {
		return domain.MotionSample{}, fmt.Errorf("decode csv sample: want 2 fields, got %d", len(fields))
	}

	ts, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil {
		return domain.MotionSample{}, fmt.Errorf("decode csv timestamp: %w", err)
	}

	sample := domain.MotionSample{TimestampMs: ts}
	z := strings.TrimSpace(fields[1])
	if z == "" || z == "null" {
		sample.MissingVertical = true
		return sample, nil
	}

	sample.VerticalAcceleration, err = strconv.ParseFloat(z, 64)
	if err != nil {
		return domain.MotionSample{}, fmt.Errorf("decode csv acceleration: %w", err)
	}

	return sample, nil
}
