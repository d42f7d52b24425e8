// Package datasource reads job inputs. Subpackages open (optionally compressed)
// files and parse delimited and JSON Lines records; this package holds the
// malformed record policy shared by every parser, and plain line reading.
package datasource
