// Package dsv parses delimiter-separated records, such as edge lists and point clouds in CSV form.
package dsv
