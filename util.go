package sluice

import (
	"fmt"
)

func asKV(op string, elem any) (KV, error) {
	kv, ok := elem.(KV)
	if !ok {
		return KV{}, fmt.Errorf("%s: element %#v is not a key/value pair", op, elem)
	}
	return kv, nil
}

// Keys projects a collection of KV elements onto its keys.
func Keys(c Collection) Collection {
	return ElementwiseMap(c, func(elem any) (any, error) {
		kv, err := asKV("Keys", elem)
		if err != nil {
			return nil, err
		}
		return kv.Key, nil
	})
}

// Values projects a collection of KV elements onto its values.
func Values(c Collection) Collection {
	return ElementwiseMap(c, func(elem any) (any, error) {
		kv, err := asKV("Values", elem)
		if err != nil {
			return nil, err
		}
		return kv.Value, nil
	})
}

// KvSwap exchanges the key and value of every element.
func KvSwap(c Collection) Collection {
	return ElementwiseMap(c, func(elem any) (any, error) {
		kv, err := asKV("KvSwap", elem)
		if err != nil {
			return nil, err
		}
		return KV{Key: kv.Value, Value: kv.Key}, nil
	})
}

// RemoveDuplicates yields the distinct elements of a collection. Elements
// must be comparable; output order is unspecified.
func RemoveDuplicates(c Collection) Collection {
	keyed := ElementwiseMap(c, func(elem any) (any, error) {
		return KV{Key: elem, Value: struct{}{}}, nil
	})
	distinct := PerKeyReduce(keyed, func(acc, _ any) (any, error) {
		return acc, nil
	})
	return Keys(distinct)
}
