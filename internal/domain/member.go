// Package domain contains entity without logic, just meta-data
package domain

import "time"

const MaxRoomIDLen = 128

// Member represents one connection's participation meta.
// No transport or lifecycle logic here.
type Member struct {
	// ClientToken identifies the browser, not the connection.
	ClientToken string
	RemoteAddr  string
	ConnectedAt time.Time
}

func NewMember(clientToken, remoteAddr string) *Member {
	return &Member{ClientToken: clientToken, RemoteAddr: remoteAddr, ConnectedAt: time.Now()}
}
