package roster

import (
	"hash/fnv"
)

// Shard maps a shard key to a shard index in [0, total). The hash is stable
// across runs and processes so that independently scheduled workers always
// partition the same roster the same way, without coordination.
func Shard(key string, total int) int {
	if total <= 1 {
		return 0
	}

	h := fnv.New32a()
	h.Write([]byte(key))

	return int(h.Sum32() % uint32(total))
}

// Mine is true if the record belongs to the worker identified by (index,
// total). With a single worker every record is mine.
func Mine(r Record, index, total int) bool {
	return Shard(r.ShardKey(), total) == index
}
