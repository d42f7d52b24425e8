package dsv

import (
	goerrors "errors"
	"io"
	"strconv"
	"strings"

	"github.com/go-sif/sif-jobs/datasource"
	"github.com/go-sif/sif-jobs/jobs/kmeans"
	"github.com/go-sif/sif-jobs/jobs/triangles"
)

var errNegativeNode = goerrors.New("node ids must not be negative")

func parseInt(field string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(field), 10, 64)
}

func parseFloat(field string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(field), 64)
}

// ParseEdges reads an edge list of "a,b" records, where a and b are node ids
func (p *Parser) ParseEdges(r io.Reader, reader *datasource.Reader) ([]triangles.Edge, error) {
	var edges []triangles.Edge
	err := p.Parse(r, reader, 2, func(fields []string) error {
		a, err := parseInt(fields[0])
		if err != nil {
			return err
		}
		b, err := parseInt(fields[1])
		if err != nil {
			return err
		}
		if a < 0 || b < 0 {
			return errNegativeNode
		}
		edges = append(edges, triangles.Edge{V1: a, V2: b})
		return nil
	})
	return edges, err
}

// ParsePoints reads "x,y" records
func (p *Parser) ParsePoints(r io.Reader, reader *datasource.Reader) ([]kmeans.Point, error) {
	var points []kmeans.Point
	err := p.Parse(r, reader, 2, func(fields []string) error {
		x, err := parseFloat(fields[0])
		if err != nil {
			return err
		}
		y, err := parseFloat(fields[1])
		if err != nil {
			return err
		}
		points = append(points, kmeans.Point{X: x, Y: y})
		return nil
	})
	return points, err
}
