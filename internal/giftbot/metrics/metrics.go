// Package metrics 는 giftbot Prometheus 수집기를 정의한다. /metrics 에서 노출된다.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "giftbot"

var (
	// ReconcilerOutcomes: UI 메시지 표시 결과 (edited, not_modified, sent, recreated, adopted, revoked, failed)
	ReconcilerOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ui",
		Name:      "display_total",
		Help:      "UI reconciler display outcomes.",
	}, []string{"outcome"})

	// GameEvents: 게임 이벤트 (start, reveal, hit, burn, collect)
	GameEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "game",
		Name:      "events_total",
		Help:      "Game engine events.",
	}, []string{"event"})

	// SponsorChecks: 채널 구독 확인 결과 (member, cached, join_request, missing, error)
	SponsorChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sponsor",
		Name:      "checks_total",
		Help:      "Sponsor membership check results.",
	}, []string{"result"})

	// SponsorBonusAttempts: 과제 스폰서로 지급된 시도 수 합계
	SponsorBonusAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sponsor",
		Name:      "bonus_attempts_total",
		Help:      "Attempts credited by task sponsor bonuses.",
	})

	// RemindersDispatched: 리마인더 발송 결과 (sent, revoked, failed)
	RemindersDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reminder",
		Name:      "dispatched_total",
		Help:      "Reminder dispatch results.",
	}, []string{"result"})

	// ReminderSweepDuration: 스윕 1회 소요 시간
	ReminderSweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "reminder",
		Name:      "sweep_duration_seconds",
		Help:      "Duration of one reminder sweep.",
		Buckets:   prometheus.DefBuckets,
	})

	// UpdatesHandled: 처리한 텔레그램 업데이트 (kind, result)
	UpdatesHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "bot",
		Name:      "updates_total",
		Help:      "Telegram updates handled by kind and result.",
	}, []string{"kind", "result"})

	// PaymentsCredited: 결제로 지급된 시도 수 합계
	PaymentsCredited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "payments",
		Name:      "attempts_credited_total",
		Help:      "Attempts credited by successful payments.",
	})
)
