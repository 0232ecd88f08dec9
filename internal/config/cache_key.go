package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StudentSessionKey returns the cache key for a student's login session.
func (r *CacheKeyStruct) StudentSessionKey(studentID string) string {
	return fmt.Sprintf("login:%s", studentID)
}

// ExamPayloadKey returns the cache key for a student-facing exam payload.
func (r *CacheKeyStruct) ExamPayloadKey(examID string) string {
	return fmt.Sprintf("exam:%s:payload", examID)
}

// AnswerDraftKey returns the cache key for a student's autosaved answer draft.
func (r *CacheKeyStruct) AnswerDraftKey(examID, studentID string) string {
	return fmt.Sprintf("student:%s:exam:%s:draft", studentID, examID)
}

var CacheKey = NewCacheKeyStruct()
