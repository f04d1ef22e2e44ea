package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// lookupTrimmed: 값이 없거나 공백뿐이면 ok=false 를 반환한다.
func lookupTrimmed(key string) (string, bool) {
	rawValue, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	rawValue = strings.TrimSpace(rawValue)
	if rawValue == "" {
		return "", false
	}
	return rawValue, true
}

// lookupFirst: keys 중 처음으로 값이 설정된 키와 값을 반환한다.
func lookupFirst(keys []string) (string, string, bool) {
	for _, key := range keys {
		if rawValue, ok := lookupTrimmed(key); ok {
			return key, rawValue, true
		}
	}
	return "", "", false
}

func splitList(rawValue string) []string {
	parts := strings.FieldsFunc(rawValue, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

func parseBool(key, rawValue string) (bool, error) {
	switch strings.ToLower(rawValue) {
	case "true", "1", "yes", "y":
		return true, nil
	case "false", "0", "no", "n":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool env %s=%q", key, rawValue)
	}
}

// IntFromEnv: 환경 변수에서 정수 값을 읽어옵니다.
func IntFromEnv(key string, defaultValue int) (int, error) {
	rawValue, ok := lookupTrimmed(key)
	if !ok {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(rawValue)
	if err != nil {
		return 0, fmt.Errorf("invalid int env %s=%q: %w", key, rawValue, err)
	}
	return value, nil
}

// Int64FromEnv: 환경 변수에서 64비트 정수 값을 읽어옵니다.
func Int64FromEnv(key string, defaultValue int64) (int64, error) {
	rawValue, ok := lookupTrimmed(key)
	if !ok {
		return defaultValue, nil
	}
	value, err := strconv.ParseInt(rawValue, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid int64 env %s=%q: %w", key, rawValue, err)
	}
	return value, nil
}

// Int64ListFromEnv: 콤마/공백으로 구분된 64비트 정수 목록을 읽어옵니다. (텔레그램 user id 목록 등)
func Int64ListFromEnv(key string) ([]int64, error) {
	rawValue, ok := lookupTrimmed(key)
	if !ok {
		return nil, nil
	}
	items := splitList(rawValue)
	out := make([]int64, 0, len(items))
	for _, item := range items {
		value, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid int64 list env %s item=%q: %w", key, item, err)
		}
		out = append(out, value)
	}
	return out, nil
}

// Float64FromEnv: 환경 변수에서 64비트 실수 값을 읽어옵니다.
func Float64FromEnv(key string, defaultValue float64) (float64, error) {
	rawValue, ok := lookupTrimmed(key)
	if !ok {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(rawValue, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float64 env %s=%q: %w", key, rawValue, err)
	}
	return value, nil
}

// DurationSecondsFromEnv: 환경 변수에서 초 단위 시간을 읽어 Duration으로 변환합니다.
func DurationSecondsFromEnv(key string, defaultSeconds int64) (time.Duration, error) {
	valueSeconds, err := Int64FromEnv(key, defaultSeconds)
	if err != nil {
		return 0, err
	}
	if valueSeconds < 0 {
		return 0, fmt.Errorf("invalid duration seconds env %s=%d", key, valueSeconds)
	}
	return time.Duration(valueSeconds) * time.Second, nil
}

// BoolFromEnv: 환경 변수에서 불리언 값을 읽어옵니다. (true/1/yes/y, false/0/no/n)
func BoolFromEnv(key string, defaultValue bool) (bool, error) {
	rawValue, ok := lookupTrimmed(key)
	if !ok {
		return defaultValue, nil
	}
	return parseBool(key, rawValue)
}

// StringFromEnv: 환경 변수에서 문자열 값을 읽어옵니다.
func StringFromEnv(key string, defaultValue string) string {
	if rawValue, ok := lookupTrimmed(key); ok {
		return rawValue
	}
	return defaultValue
}

// StringFromEnvFirstNonEmpty: 여러 환경 변수 키 중 첫 번째로 값이 존재하는 것을 반환합니다.
func StringFromEnvFirstNonEmpty(keys []string, defaultValue string) string {
	if _, rawValue, ok := lookupFirst(keys); ok {
		return rawValue
	}
	return defaultValue
}

// IntFromEnvFirstNonEmpty: 여러 환경 변수 키 중 첫 번째로 값이 존재하는 정수를 반환합니다.
func IntFromEnvFirstNonEmpty(keys []string, defaultValue int) (int, error) {
	key, rawValue, ok := lookupFirst(keys)
	if !ok {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(rawValue)
	if err != nil {
		return 0, fmt.Errorf("invalid int env %s=%q: %w", key, rawValue, err)
	}
	return value, nil
}
