package datasource

import (
	"github.com/go-sif/sif-jobs/errors"
	iutil "github.com/go-sif/sif-jobs/internal/util"
	"github.com/hashicorp/go-multierror"
)

// A Reader tracks the malformed records of one input. By default, the first
// malformed record fails parsing. When ErrorSink is set, malformed records are
// handed to it instead and parsing continues.
type Reader struct {
	Source    string                              // name of the input, used in errors
	ErrorSink func(err errors.MalformedInputError) // optional destination for malformed records
	errs      *multierror.Error
}

// NewReader creates a Reader for the named input, which fails on malformed records
func NewReader(source string) *Reader {
	return &Reader{Source: source}
}

// Malformed reports a malformed record. It returns a non-nil error iff parsing
// should stop.
func (r *Reader) Malformed(line int, record string, cause error) error {
	err := errors.MalformedInputError{Source: r.Source, Line: line, Record: record, Err: cause}
	if r.ErrorSink == nil {
		return err
	}
	r.errs = multierror.Append(r.errs, err)
	r.errs.ErrorFormat = iutil.FormatMultiError
	r.ErrorSink(err)
	return nil
}

// Errors returns every malformed record routed to the ErrorSink, or nil if there were none
func (r *Reader) Errors() error {
	return r.errs.ErrorOrNil()
}
