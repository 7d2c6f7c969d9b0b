package utils

import (
	"fmt"
	"reflect"
	"unicode"

	log "github.com/sirupsen/logrus"
)

const maskedValue = "*****"

// PrintConfig logs every exported field of config as key=value, masking fields tagged `sensitive`.
func PrintConfig(config interface{}) {
	log.Info("Loaded configuration:")
	for _, line := range ConfigLines(config) {
		log.Info(line)
	}
}

func ConfigLines(config interface{}) []string {
	lines := make([]string, 0)
	collectStruct("", reflect.ValueOf(config), &lines)
	return lines
}

func collectStruct(prefix string, v reflect.Value, lines *[]string) {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}
		key := lowerFirst(field.Name)
		if prefix != "" {
			key = prefix + "." + key
		}
		_, isSensitive := field.Tag.Lookup("sensitive")

		value := v.Field(i)
		if value.Kind() == reflect.Ptr {
			if value.IsNil() {
				*lines = append(*lines, key+"=<nil>")
				continue
			}
			value = value.Elem()
		}

		if value.Kind() == reflect.Struct {
			collectStruct(key, value, lines)
			continue
		}
		*lines = append(*lines, fmt.Sprintf("%s=%s", key, formatValue(value, isSensitive)))
	}
}

func formatValue(value reflect.Value, isSensitive bool) string {
	if isSensitive && !value.IsZero() {
		return maskedValue
	}
	if value.CanInterface() {
		return fmt.Sprintf("%v", value.Interface())
	}
	return ""
}

func lowerFirst(s string) string {
	runes := []rune(s)
	if len(runes) > 0 {
		runes[0] = unicode.ToLower(runes[0])
	}
	return string(runes)
}
