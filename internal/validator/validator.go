package validator

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"watchtower/internal/dto"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var setupOnce sync.Once

// valuer is implemented by the partial-update field wrappers in dto
type valuer interface {
	ValidationValue() interface{}
}

// Setup teaches gin's validator engine about the dto field wrappers and
// makes field errors report JSON names. Safe to call more than once.
func Setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		Register(v)
	})
}

// Register installs the wrapper type funcs and JSON tag naming on v
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(jsonFieldName)
	v.RegisterCustomTypeFunc(unwrap,
		dto.Optional[string]{},
		dto.Optional[int]{},
		dto.Optional[bool]{},
		dto.Nullable[string]{},
		dto.Nullable[time.Time]{},
	)
}

func unwrap(field reflect.Value) interface{} {
	if w, ok := field.Interface().(valuer); ok {
		return w.ValidationValue()
	}
	return nil
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "" {
		name = strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
	}
	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	default:
		return name
	}
}
