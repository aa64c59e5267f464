package chat_hub

import "errors"

var (
	ErrPeerOffline       = errors.New("peer is offline")
	ErrRateLimited       = errors.New("sending too fast")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrSelfMessage       = errors.New("cannot send message to yourself")
	ErrBadPresence       = errors.New("unknown presence type")
	ErrSessionFailed     = errors.New("session failed, login again")
)
