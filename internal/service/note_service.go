package service

import (
	"context"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"strings"
)

// CommentAuthor 单用户应用中评论作者固定
const CommentAuthor = "You"

type NoteService struct {
	Store    *repository.StateStore
	Notifier *NotificationService
}

func NewNoteService(store *repository.StateStore, notifier *NotificationService) *NoteService {
	return &NoteService{Store: store, Notifier: notifier}
}

// Notes 课时笔记，不存在时返回空字符串
func (s *NoteService) Notes(ctx context.Context, courseID, lessonID int64) string {
	doc := s.Store.Load(ctx)
	return doc.CourseNotes[courseID][lessonID]
}

// SaveNotes 保存笔记，非空笔记解锁 "Note Taker"
func (s *NoteService) SaveNotes(ctx context.Context, courseID, lessonID int64, text string) (string, error) {
	text = strings.TrimSpace(text)
	_, err := s.Store.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		course, _ := doc.FindCourse(courseID)
		if course == nil {
			return util.ErrCourseNotFound
		}
		if course.LessonIndex(lessonID) < 0 {
			return util.ErrLessonNotFound
		}
		notes, ok := doc.CourseNotes[courseID]
		if !ok {
			notes = map[int64]string{}
			doc.CourseNotes[courseID] = notes
		}
		notes[lessonID] = text
		if text != "" {
			doc.UnlockAchievement(l, model.TitleNoteTaker, model.AchievementNoteTaker, model.RewardNoteTaker)
		}
		return nil
	})
	if err != nil {
		return "", notifyFailure(ctx, s.Notifier, err)
	}
	if s.Notifier != nil {
		s.Notifier.Success(ctx, "Notes saved!")
	}
	return text, nil
}

// ClearNotes 清空课时笔记
func (s *NoteService) ClearNotes(ctx context.Context, courseID, lessonID int64) error {
	_, err := s.Store.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		if notes, ok := doc.CourseNotes[courseID]; ok {
			delete(notes, lessonID)
			if len(notes) == 0 {
				delete(doc.CourseNotes, courseID)
			}
		}
		return nil
	})
	if err != nil {
		return notifyFailure(ctx, s.Notifier, err)
	}
	if s.Notifier != nil {
		s.Notifier.Success(ctx, "Notes cleared!")
	}
	return nil
}

// Comments 课程评论，最新的在前
func (s *NoteService) Comments(ctx context.Context, courseID int64) []model.Comment {
	list := s.Store.Load(ctx).Comments[courseID]
	out := make([]model.Comment, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		out = append(out, list[i])
	}
	return out
}

// PostComment 发表评论；课程的第一条评论解锁 "First Comment"
func (s *NoteService) PostComment(ctx context.Context, courseID int64, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		if s.Notifier != nil {
			s.Notifier.Warning(ctx, "Please enter a comment")
		}
		return nil, util.ErrEmptyComment
	}

	var comment model.Comment
	_, err := s.Store.Mutate(ctx, func(doc *model.Document, l *model.RewardLedger) error {
		if course, _ := doc.FindCourse(courseID); course == nil {
			return util.ErrCourseNotFound
		}
		comment = model.Comment{
			ID:       l.IDs.NextID(),
			Text:     text,
			Author:   CommentAuthor,
			Date:     l.Now,
			CourseID: courseID,
		}
		doc.Comments[courseID] = append(doc.Comments[courseID], comment)
		if len(doc.Comments[courseID]) == 1 {
			doc.UnlockAchievement(l, model.TitleFirstComment, model.AchievementSocial, model.RewardFirstComment)
		}
		return nil
	})
	if err != nil {
		return nil, notifyFailure(ctx, s.Notifier, err)
	}
	if s.Notifier != nil {
		s.Notifier.Success(ctx, "Comment posted!")
	}
	return &comment, nil
}
