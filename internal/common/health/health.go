// Package health: 서비스 상태 정보
package health

import (
	"runtime"
	"sync"
	"time"
)

var (
	startTime = time.Now()
	version   = "dev"
	initOnce  sync.Once
)

// Init: 서비스 시작 시 호출 (버전 정보 설정)
func Init(v string) {
	initOnce.Do(func() {
		startTime = time.Now()
		if v != "" {
			version = v
		}
	})
}

// Response: /health 엔드포인트 표준 응답
type Response struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Uptime     string `json:"uptime"`
	Goroutines int    `json:"goroutines"`
}

// Get: 현재 상태 반환
func Get() Response {
	return Response{
		Status:     "ok",
		Version:    version,
		Uptime:     time.Since(startTime).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
	}
}
