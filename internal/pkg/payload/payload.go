// Package payload encodes the opaque values the master hands us for
// caching and job returns. The wire format is msgpack, matching what
// configuration-management frameworks use for their own payload layer.
package payload

import "github.com/vmihailenco/msgpack/v5"

func Dumps(v interface{}) ([]byte, error) {
	return msgpack.Marshal(v)
}

func Loads(data []byte) (interface{}, error) {
	var v interface{}
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
