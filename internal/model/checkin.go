package model

// CheckIn 按自然日更新连续学习天数。
// 同一天重复调用不改变任何状态；昨天登录过则加一并检查里程碑成就；
// 其余情况（首次登录或中断两天以上）重置为 1。新的一天总会刷新 LastLogin。
func (d *Document) CheckIn(l *RewardLedger) (streak int, changed bool) {
	u := &d.User
	now := l.Now
	loc := now.Location()

	if u.LastLogin != nil && SameDay(*u.LastLogin, now, loc) {
		return u.Streak, false
	}

	yesterday := now.AddDate(0, 0, -1)
	if u.LastLogin != nil && SameDay(*u.LastLogin, yesterday, loc) {
		u.Streak++
		for _, m := range streakMilestones {
			if u.Streak == m.Days {
				d.UnlockAchievement(l, m.Title, AchievementStreak, m.Reward)
			}
		}
	} else {
		u.Streak = 1
	}

	login := now
	u.LastLogin = &login
	return u.Streak, true
}

// TodayGoal 返回当天的每日目标，跨天时清零完成数
func (d *Document) TodayGoal(l *RewardLedger) *DailyGoal {
	if d.DailyGoal == nil {
		d.DailyGoal = &DailyGoal{Target: DefaultDailyGoalTarget}
	}
	if d.DailyGoal.Target <= 0 {
		d.DailyGoal.Target = DefaultDailyGoalTarget
	}
	if !d.DailyGoal.Date.Is(l.Now) {
		d.DailyGoal.Completed = 0
		d.DailyGoal.Date = NewCalendarDate(l.Now)
	}
	return d.DailyGoal
}

// AdvanceDailyGoal 今日目标完成数加一（不超过目标），刚好达成时奖励经验
func (d *Document) AdvanceDailyGoal(l *RewardLedger) (goal DailyGoal, reached bool) {
	g := d.TodayGoal(l)
	if g.Completed >= g.Target {
		return *g, false
	}
	g.Completed++
	if g.Completed == g.Target {
		d.GrantXP(l, RewardDailyGoal)
		return *g, true
	}
	return *g, false
}
