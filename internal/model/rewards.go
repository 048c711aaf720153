package model

import "time"

// RewardRules 经验值规则的可配置部分
type RewardRules struct {
	// LevelUpBonusCredited 为 true 时，升级成就的 50 XP 在同一升级循环中计入当前经验；
	// 默认 false：升级成就只作记录，不再产生经验。
	LevelUpBonusCredited bool
}

// RewardLedger 记录一次文档变更中产生的经验、升级与成就。
// 变更提交成功后由服务层统一发出通知。
type RewardLedger struct {
	Now   time.Time
	IDs   IDSource
	Rules RewardRules

	XPGained int
	LevelUps []int
	Unlocked []Achievement
}

func NewRewardLedger(now time.Time, ids IDSource, rules RewardRules) *RewardLedger {
	return &RewardLedger{Now: now, IDs: ids, Rules: rules}
}

// Empty 本次变更没有产生任何奖励
func (l *RewardLedger) Empty() bool {
	return l.XPGained == 0 && len(l.LevelUps) == 0 && len(l.Unlocked) == 0
}

// GrantXP 增加经验并处理升级。
// 每次 xp >= maxXP：扣除 maxXP、等级加一、maxXP 乘 1.5 向下取整，并记录升级成就。
// 循环结束时保证 0 <= xp < maxXP。
func (d *Document) GrantXP(l *RewardLedger, points int) {
	if points <= 0 {
		return
	}
	if points > MaxXPPerGrant {
		points = MaxXPPerGrant
	}
	u := &d.User
	u.XP += points
	l.XPGained += points

	for u.XP >= u.MaxXP {
		u.XP -= u.MaxXP
		u.Level++
		next := u.MaxXP * 3 / 2
		if next <= u.MaxXP {
			next = u.MaxXP + 1
		}
		u.MaxXP = next
		l.LevelUps = append(l.LevelUps, u.Level)

		a, ok := d.recordAchievement(l, LevelUpTitle(u.Level), AchievementLevelUp, RewardLevelUp)
		if ok && l.Rules.LevelUpBonusCredited {
			u.XP += a.XPReward
			l.XPGained += a.XPReward
		}
	}
}

// UnlockAchievement 解锁成就并发放奖励经验。标题已存在时不做任何事，返回 false。
func (d *Document) UnlockAchievement(l *RewardLedger, title string, typ AchievementType, reward int) (Achievement, bool) {
	a, ok := d.recordAchievement(l, title, typ, reward)
	if !ok {
		return Achievement{}, false
	}
	d.GrantXP(l, reward)
	return a, true
}

// recordAchievement 追加成就与徽章，不发放经验
func (d *Document) recordAchievement(l *RewardLedger, title string, typ AchievementType, reward int) (Achievement, bool) {
	if d.HasAchievement(title) {
		return Achievement{}, false
	}
	a := Achievement{
		ID:       l.IDs.NextID(),
		Title:    title,
		Type:     typ,
		XPReward: reward,
		Date:     l.Now,
		Icon:     typ.Icon(),
	}
	d.Achievements = append(d.Achievements, a)
	d.User.Badges = append(d.User.Badges, typ)
	l.Unlocked = append(l.Unlocked, a)
	return a, true
}

// RecordStudySession 追加学习记录、累计学习时长，并按每 5 秒 1 XP 发放经验
func (d *Document) RecordStudySession(l *RewardLedger, courseID, lessonID int64, seconds int) StudySession {
	if seconds < 0 {
		seconds = 0
	}
	s := StudySession{
		ID:       l.IDs.NextID(),
		CourseID: courseID,
		LessonID: lessonID,
		Duration: seconds,
		Date:     l.Now,
	}
	d.StudyHistory = append(d.StudyHistory, s)
	d.User.TotalStudyTime += seconds
	d.GrantXP(l, seconds/StudySecondsPerXP)
	return s
}
