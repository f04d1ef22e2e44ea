package assets

import _ "embed" // 에셋 임베드용

// MessagesYAML 는 봇 사용자 메시지 YAML이다. 루트 키는 로케일(ru)이다.
//
//go:embed messages/bot-messages.yml
var MessagesYAML string
