package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReadyScoreFreshJobIsVisibleImmediately(t *testing.T) {
	now := time.Now().Unix()
	job := Job{
		ID:        "job-1",
		Type:      JobNotifyUser,
		CreatedAt: now,
		ExpireAt:  now + 300,
	}

	// the dispatcher pops scores <= now, so a fresh job must not score
	// anywhere near its expiry
	assert.LessOrEqual(t, readyScore(job), float64(now))
	assert.Less(t, readyScore(job), float64(job.ExpireAt))
}

func TestReadyScoreIgnoresExpiry(t *testing.T) {
	now := time.Now().Unix()
	short := Job{ID: "job-1", Type: JobNotifyUser, CreatedAt: now, ExpireAt: now + 300}
	long := Job{ID: "job-2", Type: JobConsultationEnded, CreatedAt: now, ExpireAt: now + 3600}

	assert.Equal(t, readyScore(short), readyScore(long))
}

func TestReadyScoreOrdersByCreation(t *testing.T) {
	now := time.Now().Unix()
	first := Job{ID: "job-1", CreatedAt: now - 10, ExpireAt: now + 300}
	second := Job{ID: "job-2", CreatedAt: now, ExpireAt: now + 300}

	assert.Less(t, readyScore(first), readyScore(second))
}
