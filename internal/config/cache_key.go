package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// GraduationGradeKey returns the cache key for a student's graduation grade.
func (r *CacheKeyStruct) GraduationGradeKey(studentID int) string {
	return fmt.Sprintf("student:%d:graduation_grade", studentID)
}

// YearGradeKey returns the cache key for a student's per-year grade total.
func (r *CacheKeyStruct) YearGradeKey(studentID, year int) string {
	return fmt.Sprintf("student:%d:year:%d:grade", studentID, year)
}

// AuditChannel returns the Redis PubSub channel name carrying live audit
// entries for compliance stream consumers.
func (r *CacheKeyStruct) AuditChannel() string {
	return "audit:events"
}

var CacheKey = NewCacheKeyStruct()
