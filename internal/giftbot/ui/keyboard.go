package ui

// Button: 인라인 버튼. URL 이 있으면 링크 버튼, 아니면 콜백 버튼이다.
type Button struct {
	Text string
	Data string
	URL  string
}

// Keyboard: 인라인 키보드 행 목록. nil 이면 키보드 없음.
type Keyboard [][]Button

// Row: 한 줄짜리 행을 만든다.
func Row(buttons ...Button) []Button {
	return buttons
}

// Callback: 콜백 버튼
func Callback(text, data string) Button {
	return Button{Text: text, Data: data}
}

// Link: URL 버튼
func Link(text, url string) Button {
	return Button{Text: text, URL: url}
}

// Append: 다른 키보드의 행을 뒤에 이어 붙인 새 키보드를 반환한다.
func (k Keyboard) Append(other Keyboard) Keyboard {
	merged := make(Keyboard, 0, len(k)+len(other))
	merged = append(merged, k...)
	return append(merged, other...)
}
