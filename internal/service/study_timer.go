package service

import (
	"context"
	"fmt"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"
	"sync"
	"time"
)

// TimerStatus 计时器当前状态
type TimerStatus struct {
	Running bool   `json:"running"`
	Elapsed int    `json:"elapsed"` // 秒
	Display string `json:"display"`
}

// StudyTimer 学习计时器，可暂停与继续。
// 运行期间每秒刷新一次显示值；Stop 时把累计时长记为一次学习。
type StudyTimer struct {
	Gamification *GamificationService
	Now          func() time.Time
	Interval     time.Duration

	mu        sync.Mutex
	running   bool
	startedAt time.Time
	banked    time.Duration
	display   string
	stop      chan struct{}
	done      chan struct{}
}

func NewStudyTimer(gamification *GamificationService) *StudyTimer {
	return &StudyTimer{
		Gamification: gamification,
		Now:          time.Now,
		Interval:     time.Second,
		display:      formatElapsed(0),
	}
}

// Start 开始或继续计时，已在运行时不做任何事
func (t *StudyTimer) Start() TimerStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return t.statusLocked()
	}
	t.running = true
	t.startedAt = t.Now()
	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	go t.tick(t.stop, t.done)
	return t.statusLocked()
}

// Pause 暂停计时并保留已累计的时长
func (t *StudyTimer) Pause() TimerStatus {
	t.mu.Lock()
	if !t.running {
		defer t.mu.Unlock()
		return t.statusLocked()
	}
	done := t.haltLocked()
	status := t.statusLocked()
	t.mu.Unlock()
	<-done
	return status
}

// Stop 结束计时；累计时长大于零时记录一次学习并清零
func (t *StudyTimer) Stop(ctx context.Context, courseID, lessonID int64) (*model.StudySession, error) {
	t.mu.Lock()
	var done chan struct{}
	if t.running {
		done = t.haltLocked()
	}
	seconds := int(t.banked / time.Second)
	t.banked = 0
	t.display = formatElapsed(0)
	t.mu.Unlock()
	if done != nil {
		<-done
	}

	if seconds <= 0 {
		return nil, util.ErrTimerNotRunning
	}
	return t.Gamification.RecordStudySession(ctx, courseID, lessonID, seconds)
}

// Elapsed 当前累计秒数
func (t *StudyTimer) Elapsed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return int(t.elapsedLocked() / time.Second)
}

func (t *StudyTimer) Status() TimerStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statusLocked()
}

func (t *StudyTimer) statusLocked() TimerStatus {
	return TimerStatus{
		Running: t.running,
		Elapsed: int(t.elapsedLocked() / time.Second),
		Display: t.display,
	}
}

func (t *StudyTimer) elapsedLocked() time.Duration {
	if !t.running {
		return t.banked
	}
	return t.banked + t.Now().Sub(t.startedAt)
}

// haltLocked 停止 ticker 并把本段时长计入累计值，返回 ticker 退出信号
func (t *StudyTimer) haltLocked() chan struct{} {
	t.banked += t.Now().Sub(t.startedAt)
	t.running = false
	t.display = formatElapsed(int(t.banked / time.Second))
	close(t.stop)
	return t.done
}

func (t *StudyTimer) tick(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	interval := t.Interval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.running {
				t.display = formatElapsed(int(t.elapsedLocked() / time.Second))
			}
			t.mu.Unlock()
		}
	}
}

// formatElapsed 格式化为 HH:MM:SS
func formatElapsed(seconds int) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
}
