package dsv

import (
	"encoding/csv"
	goerrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-sif/sif-jobs/datasource"
)

// ParserConf configures a DSV Parser
type ParserConf struct {
	HeaderLines int  // The number of lines to ignore from the beginning of each file. Defaults to 0.
	Delimiter   rune // The delimiter separating columns in the file. Defaults to ,
	Comment     rune // Lines beginning with the comment character are ignored. Cannot be equal to the Delimiter. Defaults to #.
}

// Parser produces records from DSV data
type Parser struct {
	conf *ParserConf
}

// CreateParser returns a new DSV Parser
func CreateParser(conf *ParserConf) *Parser {
	if conf == nil {
		conf = &ParserConf{}
	}
	if conf.Delimiter == 0 {
		conf.Delimiter = ','
	}
	if conf.Comment == 0 {
		conf.Comment = '#'
	}
	return &Parser{conf: conf}
}

// Parse reads every record of r, handing records with exactly numFields fields to
// fn along with their line number. Records which cannot be read, have the wrong
// number of fields, or are rejected by fn are reported to reader.
func (p *Parser) Parse(r io.Reader, reader *datasource.Reader, numFields int, fn func(fields []string) error) error {
	if p.conf.Comment == p.conf.Delimiter {
		return fmt.Errorf("Comment character cannot be equal to the delimiter %q", p.conf.Delimiter)
	}
	cr := csv.NewReader(r)
	cr.Comma = p.conf.Delimiter
	cr.Comment = p.conf.Comment
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	// ignore header lines, if configured to do so
	for i := 0; i < p.conf.HeaderLines; i++ {
		_, err := cr.Read()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
	}

	for {
		fields, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		var perr *csv.ParseError
		if goerrors.As(err, &perr) {
			if err := reader.Malformed(perr.Line, "", perr.Err); err != nil {
				return err
			}
			continue
		} else if err != nil {
			return err
		}
		line, _ := cr.FieldPos(0)
		record := strings.Join(fields, string(p.conf.Delimiter))
		if len(fields) != numFields {
			if err := reader.Malformed(line, record, fmt.Errorf("expected %d fields, found %d", numFields, len(fields))); err != nil {
				return err
			}
			continue
		}
		if err := fn(fields); err != nil {
			if err := reader.Malformed(line, record, err); err != nil {
				return err
			}
		}
	}
}
