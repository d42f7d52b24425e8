package jsonl

import (
	"bufio"
	goerrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-sif/sif-jobs/datasource"
	"github.com/go-sif/sif-jobs/jobs/topwords"
	"github.com/tidwall/gjson"
)

// ParserConf configures a JSONL Parser, suitable for JSON lines data
type ParserConf struct {
	HeaderLines   int    // The number of lines to ignore from the beginning of each file. Defaults to 0.
	Comment       rune   // Lines beginning with the comment character are ignored. Defaults to no comment character.
	MaxBufferSize int    // Maximum size in bytes of the buffer used to read lines from the file
	WordPath      string // gjson path of an event's word. Defaults to "word".
	TimestampPath string // gjson path of an event's timestamp. Defaults to "ts".
}

// Parser produces records from JSONL data
type Parser struct {
	conf *ParserConf
}

// CreateParser returns a new JSONL Parser
func CreateParser(conf *ParserConf) *Parser {
	if conf == nil {
		conf = &ParserConf{}
	}
	if conf.MaxBufferSize == 0 {
		conf.MaxBufferSize = bufio.MaxScanTokenSize
	}
	if conf.WordPath == "" {
		conf.WordPath = "word"
	}
	if conf.TimestampPath == "" {
		conf.TimestampPath = "ts"
	}
	return &Parser{conf: conf}
}

// stopError ends parsing with an error which does not describe the input
type stopError struct {
	err error
}

func (s stopError) Error() string {
	return s.err.Error()
}

// Parse hands every JSON document of r to fn. Blank lines and comments are
// skipped. Lines which are not valid JSON, or are rejected by fn, are reported
// to reader, unless fn fails with a stopError.
func (p *Parser) Parse(r io.Reader, reader *datasource.Reader, fn func(doc gjson.Result) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), p.conf.MaxBufferSize)
	line := 0
	for scanner.Scan() {
		line++
		if line <= p.conf.HeaderLines {
			continue
		}
		text := strings.TrimSpace(scanner.Text())
		if len(text) == 0 || (p.conf.Comment != 0 && strings.HasPrefix(text, string(p.conf.Comment))) {
			continue
		}
		if !gjson.Valid(text) {
			if err := reader.Malformed(line, text, fmt.Errorf("invalid JSON")); err != nil {
				return err
			}
			continue
		}
		if err := fn(gjson.Parse(text)); err != nil {
			var stop stopError
			if goerrors.As(err, &stop) {
				return stop.err
			}
			if err := reader.Malformed(line, text, err); err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}

// parseTimestamp reads a timestamp in milliseconds, or an RFC 3339 time
func parseTimestamp(v gjson.Result) (int64, error) {
	switch v.Type {
	case gjson.Number:
		return v.Int(), nil
	case gjson.String:
		t, err := time.Parse(time.RFC3339Nano, v.Str)
		if err != nil {
			return 0, err
		}
		return t.UnixMilli(), nil
	default:
		return 0, fmt.Errorf("timestamp must be a number or an RFC 3339 string, was %s", v.Raw)
	}
}

// ParseEvent reads a topwords.Event from a JSON document
func (p *Parser) ParseEvent(doc gjson.Result) (topwords.Event, error) {
	word := doc.Get(p.conf.WordPath)
	if word.Type != gjson.String || word.Str == "" {
		return topwords.Event{}, fmt.Errorf("%s must be a non-empty string", p.conf.WordPath)
	}
	ts := doc.Get(p.conf.TimestampPath)
	if !ts.Exists() {
		return topwords.Event{}, fmt.Errorf("%s is missing", p.conf.TimestampPath)
	}
	millis, err := parseTimestamp(ts)
	if err != nil {
		return topwords.Event{}, err
	}
	return topwords.Event{Word: word.Str, Timestamp: millis}, nil
}

// ParseEvents hands every event of r to emit, in order
func (p *Parser) ParseEvents(r io.Reader, reader *datasource.Reader, emit func(topwords.Event) error) error {
	return p.Parse(r, reader, func(doc gjson.Result) error {
		e, err := p.ParseEvent(doc)
		if err != nil {
			return err
		}
		if err := emit(e); err != nil {
			return stopError{err: err}
		}
		return nil
	})
}

// ReadEvents reads every event of r
func (p *Parser) ReadEvents(r io.Reader, reader *datasource.Reader) ([]topwords.Event, error) {
	var events []topwords.Event
	err := p.ParseEvents(r, reader, func(e topwords.Event) error {
		events = append(events, e)
		return nil
	})
	return events, err
}
