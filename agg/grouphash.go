package agg

import (
	"encoding/binary"

	"github.com/dchest/siphash"
)

// siphash keys are fixed and arbitrary - this hash is used for shard
// selection only, never for anything security-sensitive, so a baked-in key
// pair is fine (sneller's own symbol-table hashing, vm/siphash_generic.go,
// does the same with a fixed key).
const (
	shardHashK0 = 0x9ae16a3b2f90404f
	shardHashK1 = 0xc1d49e76e5e7e6e2
)

// packGroupKey encodes a >2-column composite group key as a byte string, one
// GroupKeyEntry per 8 bytes, little-endian - a plain string so it can be
// used directly as a Go map key without a custom Equal/Hash pair.
func packGroupKey(entries []GroupKeyEntry) string {
	buf := make([]byte, 8*len(entries))
	for i, e := range entries {
		binary.LittleEndian.PutUint64(buf[i*8:], e)
	}
	return string(buf)
}

// shardFor picks a deterministic shard index for a group key: the same key
// value always hashes to the same shard, regardless of which goroutine or
// chunk produced it, which is what makes the sharded accumulator's
// per-shard maps safe to build concurrently without cross-shard locking.
func shardFor(key any, numShards int) int {
	if numShards <= 1 {
		return 0
	}
	var h uint64
	switch k := key.(type) {
	case struct{}:
		return 0
	case GroupKeyEntry:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], k)
		h = siphash.Hash(shardHashK0, shardHashK1, buf[:])
	case [2]GroupKeyEntry:
		var buf [16]byte
		binary.LittleEndian.PutUint64(buf[:8], k[0])
		binary.LittleEndian.PutUint64(buf[8:], k[1])
		h = siphash.Hash(shardHashK0, shardHashK1, buf[:])
	case string:
		h = siphash.Hash(shardHashK0, shardHashK1, []byte(k))
	default:
		panic("agg: shardFor called with an unrecognized group key type")
	}
	return int(h % uint64(numShards))
}
