package log

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// toFields turns logr style key-value pairs into zap fields. A trailing key
// without a value is kept under "ignored" and a non-string key is
// stringified.
func toFields(keysAndValues []any) []zap.Field {
	if len(keysAndValues) == 0 {
		return nil
	}

	fields := make([]zap.Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}

		if i+1 == len(keysAndValues) {
			fields = append(fields, zap.Any("ignored", key))
			break
		}
		fields = append(fields, typedField(key, keysAndValues[i+1]))
	}
	return fields
}

func typedField(key string, v any) zap.Field {
	switch val := v.(type) {
	case string:
		return zap.String(key, val)
	case error:
		return zap.NamedError(key, val)
	case time.Duration:
		return zap.Duration(key, val)
	case float64:
		return zap.Float64(key, val)
	case fmt.Stringer:
		return zap.Stringer(key, val)
	default:
		return zap.Any(key, val)
	}
}
