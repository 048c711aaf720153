package model

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// IDSource 为课程、课时、成就等记录分配 ID
type IDSource interface {
	NextID() int64
}

// IDGenerator 基于毫秒时间戳的单调 ID 生成器。
// 同一毫秒内的多次调用会顺延，保证本进程内不重复。
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	Now  func() time.Time
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{Now: time.Now}
}

func (g *IDGenerator) NextID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	id := now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// Observe 让生成器跳过已存在的 ID（导入或加载旧数据后调用）
func (g *IDGenerator) Observe(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id > g.last {
		g.last = id
	}
}

// SameDay 判断两个时间在 loc 时区下是否为同一自然日
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay 返回 t 在其所在时区的零点
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CalendarDate 自然日，序列化为 2006-01-02。
// 兼容旧数据中的 "Mon Jan 02 2006" 与 RFC3339 写法。
type CalendarDate struct {
	time.Time
}

const calendarLayout = "2006-01-02"

var legacyDateLayouts = []string{calendarLayout, "Mon Jan 02 2006", "Mon Jan 2 2006", time.RFC3339Nano}

func NewCalendarDate(t time.Time) CalendarDate {
	return CalendarDate{Time: StartOfDay(t)}
}

func (d CalendarDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(calendarLayout) + `"`), nil
}

func (d *CalendarDate) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range legacyDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			d.Time = StartOfDay(t.In(time.Local))
			return nil
		}
	}
	return fmt.Errorf("invalid calendar date %q", s)
}

// Is 判断是否与 t 为同一自然日（按 t 的时区）
func (d CalendarDate) Is(t time.Time) bool {
	if d.IsZero() {
		return false
	}
	y, m, day := t.Date()
	return d.Year() == y && d.Month() == m && d.Day() == day
}

// Minutes 课时时长。旧数据中可能以字符串形式保存
type Minutes int

func (m *Minutes) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*m = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return fmt.Errorf("invalid duration %q", s)
		}
		n = int(f)
	}
	*m = Minutes(n)
	return nil
}

// FlexID 兼容字符串形式的 ID。浏览器端从页面参数取得的课程 ID 以字符串保存，如 "1001"
type FlexID int64

func (id *FlexID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", s)
	}
	*id = FlexID(n)
	return nil
}

func flexIDs(ids []FlexID) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
