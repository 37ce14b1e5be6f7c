package keyvalues

import (
	"fmt"
	"reflect"
	"strconv"
)

// Scalar is the set of types a stored value can be converted to
type Scalar interface {
	~string | ~bool |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Get converts the value under key to T using strconv. It reports false when
// the key is missing and when the conversion fails; callers cannot tell the
// two apart.
func Get[T Scalar](kv *KeyValues, key string) (T, bool) {
	var zero T

	raw, ok := kv.Value(key)
	if !ok {
		return zero, false
	}

	v, err := convert[T](raw)
	if err != nil {
		return zero, false
	}
	return v, true
}

// GetOrDefault is Get returning T's zero value on a miss, like the GetInt
// and GetFloat accessors of the engine's KeyValues class
func GetOrDefault[T Scalar](kv *KeyValues, key string) T {
	v, _ := Get[T](kv, key)
	return v
}

func convert[T Scalar](raw string) (T, error) {
	var out T
	var err error

	switch p := any(&out).(type) {
	case *string:
		*p = raw
	case *bool:
		*p, err = strconv.ParseBool(raw)
	case *int:
		var n int64
		n, err = strconv.ParseInt(raw, 10, strconv.IntSize)
		*p = int(n)
	case *int64:
		*p, err = strconv.ParseInt(raw, 10, 64)
	case *uint64:
		*p, err = strconv.ParseUint(raw, 10, 64)
	case *float32:
		var f float64
		f, err = strconv.ParseFloat(raw, 32)
		*p = float32(f)
	case *float64:
		*p, err = strconv.ParseFloat(raw, 64)
	default:
		// sized integers and named types such as `type Flags uint16`
		err = convertKind(reflect.ValueOf(&out).Elem(), raw)
	}

	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func convertKind(rv reflect.Value, raw string) error {
	switch rv.Kind() {
	case reflect.String:
		rv.SetString(raw)

	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		rv.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, rv.Type().Bits())
		if err != nil {
			return err
		}
		rv.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, rv.Type().Bits())
		if err != nil {
			return err
		}
		rv.SetUint(n)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, rv.Type().Bits())
		if err != nil {
			return err
		}
		rv.SetFloat(f)

	default:
		return fmt.Errorf("unsupported kind %s", rv.Kind())
	}

	return nil
}
