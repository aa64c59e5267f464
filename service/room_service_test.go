package service

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cydxin/chat-hub/room"
)

func roomRows(id uint64, name string, creator uint64, public bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "name", "description", "creator_id", "is_public", "member_limit", "created_at", "updated_at", "deleted_at"}).
		AddRow(id, name, "", creator, public, 200, now, now, nil)
}

func TestRoomService_CreateRoom(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	rs := NewRoomService(&Service{DB: gormDB})

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `im_room` WHERE name = \\?").
		WithArgs("lobby").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `im_room`").WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec("INSERT INTO `im_room_user`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `im_room_user`").WillReturnResult(sqlmock.NewResult(2, 2))
	mock.ExpectCommit()

	dto, err := rs.CreateRoom(1, CreateRoomReq{Name: "lobby", Members: []uint64{1, 2, 3, 2, 0}})
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if dto.ID != 11 || dto.Name != "lobby" || dto.CreatorID != 1 {
		t.Fatalf("unexpected room: %#v", dto)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRoomService_CreateRoomExists(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	rs := NewRoomService(&Service{DB: gormDB})
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `im_room`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	if _, err := rs.CreateRoom(1, CreateRoomReq{Name: "lobby"}); !errors.Is(err, ErrRoomExists) {
		t.Fatalf("expected ErrRoomExists, got %v", err)
	}
}

func TestRoomService_CanEnter(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	rs := NewRoomService(&Service{DB: gormDB})

	// 房间不存在
	mock.ExpectQuery("SELECT \\* FROM `im_room` WHERE name = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	if _, err := rs.CanEnter("ghost", 1); !errors.Is(err, room.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}

	// 私有房间，非成员
	mock.ExpectQuery("SELECT \\* FROM `im_room` WHERE name = \\?").
		WillReturnRows(roomRows(3, "ops", 1, false))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `im_room_user` WHERE room_id = \\? AND user_id = \\?").
		WithArgs(uint64(3), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	if _, err := rs.CanEnter("ops", 7); !errors.Is(err, room.ErrNotRoomMember) {
		t.Fatalf("expected ErrNotRoomMember, got %v", err)
	}

	// 公开房间不查成员表
	mock.ExpectQuery("SELECT \\* FROM `im_room` WHERE name = \\?").
		WillReturnRows(roomRows(4, "hall", 1, true))
	r, err := rs.CanEnter("hall", 7)
	if err != nil {
		t.Fatalf("CanEnter: %v", err)
	}
	if r.ID != 4 {
		t.Fatalf("expected room 4, got %d", r.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRoomService_JoinableUsers(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	rs := NewRoomService(&Service{DB: gormDB})
	mock.ExpectQuery("SELECT \\* FROM `im_room` WHERE name = \\?").
		WillReturnRows(roomRows(3, "ops", 1, false))
	mock.ExpectQuery("SELECT `user_id` FROM `im_room_user` WHERE room_id = \\?").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(1).AddRow(2))

	ids, err := rs.JoinableUsers("ops")
	if err != nil {
		t.Fatalf("JoinableUsers: %v", err)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("unexpected ids: %v", ids)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRoomService_JoinableUsersPublic(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	rs := NewRoomService(&Service{DB: gormDB})
	mock.ExpectQuery("SELECT \\* FROM `im_room` WHERE name = \\?").
		WillReturnRows(roomRows(4, "lobby", 1, true))
	// 公开房间不看成员表
	mock.ExpectQuery("SELECT `id` FROM `im_user`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2).AddRow(7))

	ids, err := rs.JoinableUsers("lobby")
	if err != nil {
		t.Fatalf("JoinableUsers: %v", err)
	}
	if len(ids) != 3 || ids[2] != 7 {
		t.Fatalf("unexpected ids: %v", ids)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRoomService_RemoveOwnerDenied(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	rs := NewRoomService(&Service{DB: gormDB})
	mock.ExpectQuery("SELECT \\* FROM `im_room` WHERE name = \\?").
		WillReturnRows(roomRows(3, "ops", 1, false))

	if err := rs.RemoveMember("ops", 2, 1); !errors.Is(err, ErrRoomPermission) {
		t.Fatalf("expected ErrRoomPermission, got %v", err)
	}
}
