package messageprovider

import "testing"

func TestNewFromYAML(t *testing.T) {
	tests := []struct {
		name        string
		yamlContent string
		wantErr     bool
	}{
		{"valid", "key: value", false},
		{"valid nested", "section:\n  key: value", false},
		{"invalid yaml", "key: : value", true},
		{"not a map", "- list item", true},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFromYAML(tt.yamlContent)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewFromYAML() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProvider_Get(t *testing.T) {
	provider, err := NewFromYAML(`
menu:
  body:
    - "🎮 Попыток: <b>{attempts}</b>"
    - ""
    - "Выберите действие ниже 👇"
  title: "Меню"
template: "{a} then {b}, again {a}"
price: 5
`)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	tests := []struct {
		name   string
		key    string
		params []Param
		want   string
	}{
		{"simple", "menu.title", nil, "Меню"},
		{"line list joined", "menu.body", []Param{P("attempts", 3)}, "🎮 Попыток: <b>3</b>\n\nВыберите действие ниже 👇"},
		{"repeated placeholder", "template", []Param{P("a", 1), P("b", 2)}, "1 then 2, again 1"},
		{"missing param kept", "template", []Param{P("a", "x")}, "x then {b}, again x"},
		{"numeric value", "price", nil, "5"},
		{"unknown key", "menu.unknown", nil, "menu.unknown"},
		{"empty key", "", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := provider.Get(tt.key, tt.params...); got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}

	if !provider.Has("menu.title") || provider.Has("menu.none") {
		t.Error("Has returned unexpected result")
	}
}

func TestNewFromYAMLAtPath(t *testing.T) {
	yamlContent := `
ru:
  greeting: "Привет"
en:
  greeting: "Hello"
scalar: "x"
`
	p, err := NewFromYAMLAtPath(yamlContent, "ru")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := p.Get("greeting"); got != "Привет" {
		t.Errorf("expected Привет, got %s", got)
	}

	if _, err := NewFromYAMLAtPath(yamlContent, "de"); err == nil {
		t.Error("expected error for missing root")
	}
	if _, err := NewFromYAMLAtPath(yamlContent, "scalar"); err == nil {
		t.Error("expected error for non-object root")
	}
}

func TestProvider_NilReceiver(t *testing.T) {
	var p *Provider
	if got := p.Get("key"); got != "key" {
		t.Errorf("expected 'key', got '%s'", got)
	}
	if p.Has("key") {
		t.Error("nil provider should not have keys")
	}
}
