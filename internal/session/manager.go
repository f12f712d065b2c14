// Package session はクライアント側で保持するセッション状態と、
// アクセストークン失効前の自動更新タイマーを提供します。
// プロセス全体のシングルトンではなく、ログイン/ログアウトから
// 明示的にライフサイクル (Start/Stop) を操作されるオブジェクトです
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"devhub/internal/model"
)

// RefreshFunc はリフレッシュトークンを新しいトークンペアに交換します
type RefreshFunc func(ctx context.Context, refreshToken string) (*model.TokenPair, error)

// Manager は現在のユーザーとトークンペアのキャッシュ、および
// 更新タイマーを1つだけ保持します。
// タイマーは常に高々1本で、Startを重ねても積み上がらず置き換えられます。
// 更新呼び出しも高々1つしか同時実行されません (遅れて発火したタイマーは
// 実行中の更新と合流し、二重発火しません)
type Manager struct {
	mu       sync.Mutex
	user     *model.User
	pair     *model.TokenPair
	timer    *time.Timer
	inflight bool

	refresh RefreshFunc
	lead    time.Duration // 失効のどれだけ前に更新を仕掛けるか
	logger  *slog.Logger
	now     func() time.Time
}

func NewManager(refresh RefreshFunc, lead time.Duration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		refresh: refresh,
		lead:    lead,
		logger:  logger,
		now:     time.Now,
	}
}

// Start はセッションを開始し、更新タイマーを仕掛けます。
// 既にタイマーが動いていれば置き換えます (冪等)。
// 期限切れのペアでは何も仕掛けません (再読み込み時に古いセッションを
// 参照するタイマーが残るのを防ぐ)
func (m *Manager) Start(user *model.User, pair *model.TokenPair) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cancelTimerLocked()

	if pair == nil || m.now().After(pair.AccessExpiresAt) {
		m.user = nil
		m.pair = nil
		m.logger.Warn("Session not started: token pair absent or expired")
		return
	}

	m.user = user
	m.pair = pair
	m.armLocked()
}

// Stop はタイマーを同期的に止めてから保持情報を消去します。
// この順序でないと、消去後に発火したタイマーがセッションを再生させる
// 競合が生じます。繰り返し呼んでも安全です
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cancelTimerLocked()
	m.user = nil
	m.pair = nil
}

// Current は現在のユーザーとトークンペアを返します
func (m *Manager) Current() (*model.User, *model.TokenPair, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pair == nil {
		return nil, nil, false
	}
	return m.user, m.pair, true
}

// armLocked は次の更新タイマーを仕掛けます。呼び出し側がロックを保持していること
func (m *Manager) armLocked() {
	delay := m.pair.AccessExpiresAt.Sub(m.now()) - m.lead
	if delay < 0 {
		delay = 0
	}
	m.timer = time.AfterFunc(delay, m.refreshNow)
}

func (m *Manager) cancelTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// refreshNow はタイマーから呼ばれ、トークンペアを更新します。
// 実行中の更新がある間に発火した場合は何もしません (二重更新すると
// 自分自身の前回呼び出しに対して再利用検出を踏んでしまう)
func (m *Manager) refreshNow() {
	m.mu.Lock()
	if m.pair == nil || m.inflight {
		m.mu.Unlock()
		return
	}
	m.inflight = true
	refreshToken := m.pair.RefreshToken
	m.mu.Unlock()

	pair, err := m.refresh(context.Background(), refreshToken)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inflight = false

	// 更新中にStopされた場合は結果を破棄する
	if m.pair == nil {
		return
	}

	if err != nil {
		// 更新失敗。タイマーを止めてセッションを畳む。再試行の方針は呼び出し側に委ねる
		m.logger.Warn("Session refresh failed, stopping session", "error", err)
		m.cancelTimerLocked()
		m.user = nil
		m.pair = nil
		return
	}

	m.pair = pair
	m.cancelTimerLocked()
	m.armLocked()
	m.logger.Debug("Session tokens refreshed", "expires_at", pair.AccessExpiresAt)
}
