// Package envconf fills tagged struct fields from environment variables.
//
//	type Config struct {
//		Port    uint16        `env:"PORT" default:"3001"`
//		Origins []string      `env:"CORS_ORIGIN" default:"http://localhost:3000"`
//		Timeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
//		Redis   RedisConfig
//	}
//
// A tagged field without a default is required. Untagged struct fields, and
// pointers to structs, are filled the same way; `env:"-"` skips a field.
// Slices are comma-separated lists. Types implementing
// encoding.TextUnmarshaler (slog.Level, decimal.Decimal) parse themselves.
//
// Load reports every missing or malformed variable in one joined error.
package envconf

import (
	"encoding"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingRequired = errors.New("missing required environment variable")
	ErrUnsupportedType = errors.New("unsupported field type")
)

var (
	durationType        = reflect.TypeFor[time.Duration]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

func Load(dst any) error {
	v := reflect.ValueOf(dst)
	if dst == nil || v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("envconf: destination must be a non-nil pointer to a struct, got %T", dst)
	}

	var errs []error

	fill(v.Elem(), &errs)

	return errors.Join(errs...)
}

func fill(st reflect.Value, errs *[]error) {
	t := st.Type()

	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		fv := st.Field(i)

		name, tagged := sf.Tag.Lookup("env")

		switch {
		case name == "-":
			continue
		case !tagged || name == "":
			fillNested(fv, errs)
			continue
		}

		raw, ok := os.LookupEnv(name)
		if !ok {
			raw, ok = sf.Tag.Lookup("default")
		}

		if !ok {
			*errs = append(*errs, fmt.Errorf("%w: %s (field %s)", ErrMissingRequired, name, sf.Name))
			continue
		}

		err := assign(fv, raw)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("%s (field %s): %w", name, sf.Name, err))
		}
	}
}

// fillNested descends into an untagged struct or pointer-to-struct field.
// Other untagged fields are left alone.
func fillNested(fv reflect.Value, errs *[]error) {
	switch {
	case fv.Kind() == reflect.Struct:
		fill(fv, errs)
	case fv.Kind() == reflect.Pointer && fv.Type().Elem().Kind() == reflect.Struct:
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}

		fill(fv.Elem(), errs)
	}
}

func assign(fv reflect.Value, raw string) error {
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}

		return assign(fv.Elem(), raw)
	}

	if reflect.PointerTo(fv.Type()).Implements(textUnmarshalerType) {
		u, _ := fv.Addr().Interface().(encoding.TextUnmarshaler)

		return u.UnmarshalText([]byte(raw))
	}

	if fv.Kind() == reflect.Slice {
		return assignList(fv, raw)
	}

	return assignScalar(fv, raw)
}

func assignScalar(fv reflect.Value, raw string) error {
	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}

		fv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := parseInt(fv.Type(), raw)
		if err != nil {
			return err
		}

		fv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, fv.Type().Bits())
		if err != nil {
			return err
		}

		fv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, fv.Type().Bits())
		if err != nil {
			return err
		}

		fv.SetFloat(f)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, fv.Type())
	}

	return nil
}

// parseInt reads durations as "250ms", "5m" and plain integers in base 10.
func parseInt(t reflect.Type, raw string) (int64, error) {
	if t == durationType {
		d, err := time.ParseDuration(raw)

		return int64(d), err
	}

	return strconv.ParseInt(raw, 10, t.Bits())
}

// assignList splits on commas and drops empty items, so "a, b,," is [a b].
func assignList(fv reflect.Value, raw string) error {
	var items []string

	for item := range strings.SplitSeq(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	list := reflect.MakeSlice(fv.Type(), len(items), len(items))

	for i, item := range items {
		err := assign(list.Index(i), item)
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}

	fv.Set(list)

	return nil
}
