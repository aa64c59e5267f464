package service

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestMessageService_SaveMessage(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	ms := NewMessageService(&Service{DB: gormDB})

	mock.ExpectExec("INSERT INTO `im_message`").
		WillReturnResult(sqlmock.NewResult(100, 1))

	msg, err := ms.SaveMessage(SaveMessageReq{
		SenderID:    1,
		RecipientID: 2,
		Content:     "hi",
		Extra:       json.RawMessage(`{"k":"v"}`),
		PacketID:    "p-1",
	})
	if err != nil {
		t.Fatalf("SaveMessage: %v", err)
	}
	if msg.ID != 100 || msg.Type != 1 {
		t.Fatalf("unexpected message: %#v", msg)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestMessageService_SaveMessageValidation(t *testing.T) {
	gormDB, _, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	ms := NewMessageService(&Service{DB: gormDB})
	cases := []SaveMessageReq{
		{RecipientID: 2, Content: "x"},
		{SenderID: 1, Content: "x"},
		{SenderID: 1, RoomID: 3, RecipientID: 2, Content: "x"},
		{SenderID: 1, RecipientID: 2, Content: "   "},
		{SenderID: 1, RecipientID: 2, Content: "x", Extra: json.RawMessage(`{`)},
	}
	for i, c := range cases {
		if _, err := ms.SaveMessage(c); !errors.Is(err, ErrBadRequest) {
			t.Fatalf("case %d: expected ErrBadRequest, got %v", i, err)
		}
	}
}

func TestMessageService_GetPrivateMessages(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	ms := NewMessageService(&Service{DB: gormDB})
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "room_id", "sender_id", "recipient_id", "type", "content", "extra", "packet_id", "status", "created_at", "updated_at", "deleted_at"}).
		AddRow(uint64(8), uint64(0), uint64(2), uint64(1), 1, "yo", []byte(`{}`), "", 1, now, now, nil)

	mock.ExpectQuery("SELECT \\* FROM `im_message` WHERE .*room_id = 0 AND .*id < \\?").
		WillReturnRows(rows)

	out, err := ms.GetPrivateMessages(1, 2, 500, 50)
	if err != nil {
		t.Fatalf("GetPrivateMessages: %v", err)
	}
	if len(out) != 1 || out[0].Content != "yo" {
		t.Fatalf("unexpected: %#v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestClampLimit(t *testing.T) {
	if clampLimit(0) != defaultHistoryLimit || clampLimit(1000) != maxHistoryLimit || clampLimit(5) != 5 {
		t.Fatalf("clampLimit broken")
	}
}
