package service

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cydxin/chat-hub/call"
	"github.com/cydxin/chat-hub/event"
)

func TestCallService_SaveRecord(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	cs := NewCallService(&Service{DB: gormDB})
	start := time.Now().Add(-time.Minute)
	end := time.Now()

	mock.ExpectExec("INSERT INTO `im_call_record`").
		WithArgs("c-1", uint64(1), uint64(2), uint8(1), "ended", "manually", sqlmock.AnyArg(), sqlmock.AnyArg(), int64(60), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := cs.SaveRecord(call.Snapshot{
		ID:         "c-1",
		Caller:     1,
		Callee:     2,
		Conference: event.ConferenceAudioAndVideo,
		State:      "ended",
		Reason:     "manually",
		CreatedAt:  start,
		StartedAt:  &start,
		EndedAt:    &end,
	})
	if err != nil {
		t.Fatalf("SaveRecord: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}
