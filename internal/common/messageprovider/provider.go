package messageprovider

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider: 점(.) 경로로 조회하는 YAML 메시지 템플릿 저장소.
// 값이 문자열 목록이면 줄바꿈으로 이어 붙여 하나의 템플릿으로 취급한다.
type Provider struct {
	root map[string]any
}

// NewFromYAML: YAML 문서 전체를 루트로 하는 Provider 를 만든다.
func NewFromYAML(yamlContent string) (*Provider, error) {
	var root map[string]any
	if err := yaml.Unmarshal([]byte(yamlContent), &root); err != nil {
		return nil, fmt.Errorf("unmarshal yaml failed: %w", err)
	}
	if root == nil {
		root = make(map[string]any)
	}
	return &Provider{root: root}, nil
}

// NewFromYAMLAtPath: rootKey 아래 객체를 루트로 하는 Provider 를 만든다.
func NewFromYAMLAtPath(yamlContent string, rootKey string) (*Provider, error) {
	provider, err := NewFromYAML(yamlContent)
	if err != nil {
		return nil, err
	}

	rootKey = strings.TrimSpace(rootKey)
	if rootKey == "" {
		return provider, nil
	}

	value, ok := provider.lookup(rootKey)
	if !ok {
		return nil, fmt.Errorf("yaml root key not found: %q", rootKey)
	}
	sub, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("yaml root key must be an object: %q (got %T)", rootKey, value)
	}
	return &Provider{root: sub}, nil
}

// Has: key 에 해당하는 값이 있는지 확인한다.
func (p *Provider) Has(key string) bool {
	if p == nil {
		return false
	}
	_, ok := p.lookup(key)
	return ok
}

// Get: 템플릿을 찾아 {name} 자리표시자를 치환한다. 키가 없으면 key 자체를 반환한다.
func (p *Provider) Get(key string, params ...Param) string {
	if p == nil || strings.TrimSpace(key) == "" {
		return key
	}

	value, ok := p.lookup(key)
	if !ok {
		return key
	}

	var template string
	switch typed := value.(type) {
	case string:
		template = typed
	case []any:
		lines := make([]string, 0, len(typed))
		for _, line := range typed {
			lines = append(lines, fmt.Sprint(line))
		}
		template = strings.Join(lines, "\n")
	default:
		return fmt.Sprint(value)
	}

	if len(params) == 0 {
		return template
	}
	pairs := make([]string, 0, len(params)*2)
	for _, param := range params {
		pairs = append(pairs, "{"+param.Key+"}", fmt.Sprint(param.Value))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Param: 템플릿 치환 인자.
type Param struct {
	Key   string
	Value any
}

// P 는 Param 생성 단축 함수다.
func P(key string, value any) Param {
	return Param{Key: key, Value: value}
}

func (p *Provider) lookup(key string) (any, bool) {
	var current any = p.root
	for _, part := range strings.Split(key, ".") {
		nextMap, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = nextMap[part]; !ok {
			return nil, false
		}
	}
	return current, true
}
