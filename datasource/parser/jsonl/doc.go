// Package jsonl parses JSON Lines data. This parser uses https://github.com/tidwall/gjson to process data, and locates fields with gjson paths.
package jsonl
