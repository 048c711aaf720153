package model

import (
	"time"
)

const (
	DefaultUserName = "Learner"
	DefaultMaxXP    = 100
)

// User 学习者档案，整份文档只有一个用户
type User struct {
	Name           string            `json:"name"`
	Level          int               `json:"level"`
	XP             int               `json:"xp"`
	MaxXP          int               `json:"maxXP"`
	Streak         int               `json:"streak"`
	LastLogin      *time.Time        `json:"lastLogin"`
	Badges         []AchievementType `json:"badges"`
	TotalStudyTime int               `json:"totalStudyTime"` // 秒
}

func DefaultUser() User {
	return User{
		Name:   DefaultUserName,
		Level:  1,
		MaxXP:  DefaultMaxXP,
		Badges: []AchievementType{},
	}
}

// normalize 修正越界字段，保证 level>=1、maxXP>0、0<=xp
func (u *User) normalize() {
	if u.Name == "" {
		u.Name = DefaultUserName
	}
	if u.Level < 1 {
		u.Level = 1
	}
	if u.MaxXP <= 0 {
		u.MaxXP = DefaultMaxXP
	}
	if u.XP < 0 {
		u.XP = 0
	}
	if u.Streak < 0 {
		u.Streak = 0
	}
	if u.TotalStudyTime < 0 {
		u.TotalStudyTime = 0
	}
	if u.Badges == nil {
		u.Badges = []AchievementType{}
	}
}
