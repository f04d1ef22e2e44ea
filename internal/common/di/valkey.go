package di

import "github.com/valkey-io/valkey-go"

// DataValkeyClient 는 Wire 에서 valkey.Client 를 도메인 데이터 용도로 구분하기 위한 DI wrapper 타입이다.
// 사용자 락과 멤버십 캐시가 이 클라이언트를 공유한다.
type DataValkeyClient struct{ valkey.Client }
