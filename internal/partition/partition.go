package partition

import (
	"log"

	uuid "github.com/gofrs/uuid"
)

// A Partition is a portion of a dataset processed by a single task. Keyed
// Partitions (produced by Shuffle) also carry the key bytes and key hash
// of every record.
type Partition[T any] struct {
	id      string
	records []T
	keys    [][]byte
	hashes  []uint64
	isKeyed bool
}

// A Group is the set of records within a Partition sharing identical key bytes
type Group[T any] struct {
	Key     []byte
	Records []T
}

func createPartition[T any](capacity int) *Partition[T] {
	id, err := uuid.NewV4()
	if err != nil {
		log.Fatalf("failed to generate UUID for Partition: %v", err)
	}
	return &Partition[T]{
		id:      id.String(),
		records: make([]T, 0, capacity),
	}
}

// CreatePartition creates a new, unkeyed Partition holding records
func CreatePartition[T any](records []T) *Partition[T] {
	p := createPartition[T](len(records))
	p.records = append(p.records, records...)
	return p
}

// ID retrieves the ID of this Partition
func (p *Partition[T]) ID() string {
	return p.id
}

// GetNumRows retrieves the number of records in this Partition
func (p *Partition[T]) GetNumRows() int {
	return len(p.records)
}

// Records retrieves the records in this Partition, in insertion order
func (p *Partition[T]) Records() []T {
	return p.records
}

// IsKeyed returns true iff the records in this Partition have been keyed
func (p *Partition[T]) IsKeyed() bool {
	return p.isKeyed
}

// GetKey retrieves the key hash of a specific record
func (p *Partition[T]) GetKey(rowNum int) uint64 {
	return p.hashes[rowNum]
}

// GetKeyBytes retrieves the key bytes of a specific record
func (p *Partition[T]) GetKeyBytes(rowNum int) []byte {
	return p.keys[rowNum]
}

func (p *Partition[T]) appendKeyed(rec T, key []byte, hash uint64) {
	p.records = append(p.records, rec)
	p.keys = append(p.keys, key)
	p.hashes = append(p.hashes, hash)
}

// Groups collects the records of a keyed Partition by key. Groups appear in the
// order their key was first seen, and records keep their insertion order within
// a Group.
func (p *Partition[T]) Groups() []Group[T] {
	index := make(map[string]int)
	groups := make([]Group[T], 0)
	for i, rec := range p.records {
		k := string(p.keys[i])
		gi, ok := index[k]
		if !ok {
			gi = len(groups)
			index[k] = gi
			groups = append(groups, Group[T]{Key: p.keys[i]})
		}
		groups[gi].Records = append(groups[gi].Records, rec)
	}
	return groups
}

// Split divides records into at most numPartitions contiguous, unkeyed Partitions of near-equal size
func Split[T any](records []T, numPartitions int) []*Partition[T] {
	if numPartitions < 1 {
		numPartitions = 1
	}
	size := (len(records) + numPartitions - 1) / numPartitions
	if size == 0 {
		return []*Partition[T]{CreatePartition[T](nil)}
	}
	parts := make([]*Partition[T], 0, numPartitions)
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		parts = append(parts, CreatePartition(records[start:end]))
	}
	return parts
}
