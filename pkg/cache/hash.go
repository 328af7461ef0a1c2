package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/vmihailenco/msgpack/v5"
)

// Hash returns the hex encoded SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey builds "prefix:sha256(parts)". Parts are msgpack encoded, which is
// deterministic for structs and slices.
func hashKey(prefix string, parts ...any) string {
	data, err := msgpack.Marshal(parts)
	if err != nil {
		// only unencodable values (channels, funcs) end up here
		panic("cache: cannot encode key parts: " + err.Error())
	}
	return prefix + ":" + Hash(data)
}
