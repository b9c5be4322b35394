package engine

import "fmt"

// LoadAsset loads path and decodes it into T
func LoadAsset[T any](assets Assets, path string, decode func([]byte) (T, error)) (T, error) {
	var zero T
	if assets == nil {
		return zero, ErrNoAssets
	}
	raw, err := assets.Load(path)
	if err != nil {
		return zero, err
	}
	out, err := decode(raw)
	if err != nil {
		return zero, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}
