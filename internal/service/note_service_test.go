package service

import (
	"context"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveNotesUnlocksNoteTaker(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	notes := NewNoteService(env.store, env.notifier)
	course := env.createCourse(t, "Go", "Intro")
	lesson := course.Lessons[0].ID

	assert.Equal(t, "", notes.Notes(ctx, course.ID, lesson))

	// 空白笔记不解锁成就
	text, err := notes.SaveNotes(ctx, course.ID, lesson, "   ")
	require.NoError(t, err)
	assert.Equal(t, "", text)
	assert.False(t, env.store.Load(ctx).HasAchievement(model.TitleNoteTaker))

	text, err = notes.SaveNotes(ctx, course.ID, lesson, "  goroutines are cheap \n")
	require.NoError(t, err)
	assert.Equal(t, "goroutines are cheap", text)
	assert.Equal(t, text, notes.Notes(ctx, course.ID, lesson))
	assert.True(t, env.store.Load(ctx).HasAchievement(model.TitleNoteTaker))
	assert.Contains(t, env.messages(), "Notes saved!")

	require.NoError(t, notes.ClearNotes(ctx, course.ID, lesson))
	assert.Equal(t, "", notes.Notes(ctx, course.ID, lesson))

	_, err = notes.SaveNotes(ctx, course.ID, 999, "x")
	assert.ErrorIs(t, err, util.ErrLessonNotFound)
}

func TestPostCommentFirstCommentAchievement(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	notes := NewNoteService(env.store, env.notifier)
	course := env.createCourse(t, "Go")

	_, err := notes.PostComment(ctx, course.ID, "  ")
	assert.ErrorIs(t, err, util.ErrEmptyComment)
	assert.Contains(t, env.messages(), "Please enter a comment")

	first, err := notes.PostComment(ctx, course.ID, "Great course")
	require.NoError(t, err)
	assert.Equal(t, CommentAuthor, first.Author)
	assert.Equal(t, course.ID, first.CourseID)

	env.clock.Advance(time.Minute)
	_, err = notes.PostComment(ctx, course.ID, "Second")
	require.NoError(t, err)

	comments := notes.Comments(ctx, course.ID)
	require.Len(t, comments, 2)
	assert.Equal(t, "Second", comments[0].Text)
	assert.Equal(t, "Great course", comments[1].Text)

	doc := env.store.Load(ctx)
	count := 0
	for _, a := range doc.Achievements {
		if a.Title == model.TitleFirstComment {
			count++
			assert.Equal(t, model.AchievementSocial, a.Type)
			assert.Equal(t, model.RewardFirstComment, a.XPReward)
		}
	}
	assert.Equal(t, 1, count)

	_, err = notes.PostComment(ctx, 404, "hello")
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestDeleteCourseCascadesNotesAndComments(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	notes := NewNoteService(env.store, env.notifier)
	course := env.createCourse(t, "Go", "Intro")

	_, err := notes.SaveNotes(ctx, course.ID, course.Lessons[0].ID, "note")
	require.NoError(t, err)
	_, err = notes.PostComment(ctx, course.ID, "comment")
	require.NoError(t, err)

	removed, err := env.courses.Delete(ctx, course.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	doc := env.store.Load(ctx)
	assert.NotContains(t, doc.CourseNotes, course.ID)
	assert.NotContains(t, doc.Comments, course.ID)
	assert.Empty(t, notes.Comments(ctx, course.ID))
}
