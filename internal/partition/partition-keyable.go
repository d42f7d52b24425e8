package partition

import (
	xxhash "github.com/cespare/xxhash/v2"
	sif "github.com/go-sif/sif-jobs"
	"github.com/hashicorp/go-multierror"
)

// Bucket assigns a key hash to one of numPartitions partitions
func Bucket(hash uint64, numPartitions int) int {
	return int(hash % uint64(numPartitions))
}

// Shuffle generates a key for every record and distributes the records into
// numPartitions keyed Partitions by the xxhash of their key. Records sharing a
// key always land in the same Partition, in input order. Keying errors do not
// stop the shuffle; they are collected and returned together, and the records
// which produced them are left out.
func Shuffle[T any](records []T, kfn sif.KeyingOperation[T], numPartitions int) ([]*Partition[T], error) {
	var multierr *multierror.Error
	if numPartitions < 1 {
		numPartitions = 1
	}
	parts := make([]*Partition[T], numPartitions)
	for i := range parts {
		parts[i] = createPartition[T](len(records)/numPartitions + 1)
		parts[i].isKeyed = true
	}
	for _, rec := range records {
		keyBuf, err := kfn(rec)
		if err != nil {
			multierr = multierror.Append(multierr, err)
			continue
		}
		hash := xxhash.Sum64(keyBuf)
		parts[Bucket(hash, numPartitions)].appendKeyed(rec, keyBuf, hash)
	}
	return parts, multierr.ErrorOrNil()
}
