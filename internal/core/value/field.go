package value

import "github.com/zeusync/zeuscore/internal/core/geom"

// Required* read a mandatory field at path and fail with a *FieldError when it
// is missing or has the wrong kind. Optional* return fallback when the field
// is missing but still fail on a wrong kind.

func RequiredString(def Value, path string) (string, error) {
	return required(def, path, KindString, Value.AsString)
}

func RequiredInt32(def Value, path string) (int32, error) {
	return required(def, path, KindInt, Value.AsInt32)
}

func RequiredUint32(def Value, path string) (uint32, error) {
	return required(def, path, KindInt, Value.AsUint32)
}

func RequiredFloat32(def Value, path string) (float32, error) {
	return required(def, path, KindFloat, Value.AsFloat32)
}

func RequiredVec3(def Value, path string) (geom.Vec3, error) {
	return required(def, path, KindVec3, Value.AsVec3)
}

func RequiredVec4(def Value, path string) (geom.Vec4, error) {
	return required(def, path, KindVec4, Value.AsVec4)
}

func RequiredAngles(def Value, path string) (geom.Angles, error) {
	return required(def, path, KindAngles, Value.AsAngles)
}

func RequiredQuat(def Value, path string) (geom.Quat, error) {
	return required(def, path, KindQuat, Value.AsQuat)
}

func OptionalString(def Value, path, fallback string) (string, error) {
	return optional(def, path, KindString, Value.AsString, fallback)
}

func OptionalInt32(def Value, path string, fallback int32) (int32, error) {
	return optional(def, path, KindInt, Value.AsInt32, fallback)
}

func OptionalFloat32(def Value, path string, fallback float32) (float32, error) {
	return optional(def, path, KindFloat, Value.AsFloat32, fallback)
}

func OptionalVec4(def Value, path string, fallback geom.Vec4) (geom.Vec4, error) {
	return optional(def, path, KindVec4, Value.AsVec4, fallback)
}

func OptionalAngles(def Value, path string, fallback geom.Angles) (geom.Angles, error) {
	return optional(def, path, KindAngles, Value.AsAngles, fallback)
}

func required[T any](def Value, path string, want Kind, as func(Value) (T, bool)) (T, error) {
	var zero T
	node, ok := def.Lookup(path)
	if !ok {
		return zero, &FieldError{Field: path, Want: want, Err: ErrMissingField}
	}
	out, ok := as(node)
	if !ok {
		return zero, &FieldError{Field: path, Want: want, Got: node.Kind(), Err: ErrWrongKind}
	}
	return out, nil
}

func optional[T any](def Value, path string, want Kind, as func(Value) (T, bool), fallback T) (T, error) {
	if _, ok := def.Lookup(path); !ok {
		return fallback, nil
	}
	return required(def, path, want, as)
}
